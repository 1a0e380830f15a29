package filter

import (
	"fmt"
	"maps"
	"sync"

	"github.com/filterware/inputfilter/spec"
)

// Constructor builds a filter from its declarative options.
type Constructor func(options map[string]any) (Filter, error)

// Registry is a keyed constructor registry for filters. It is the
// filter-chain provider collaborator the plugin manager threads into input
// filter factories.
type Registry struct {
	mu           sync.RWMutex
	constructors map[spec.Type]Constructor
}

// Default is the registry pre-populated with the built-in filters.
var Default = NewRegistry()

func init() {
	MustRegisterBuiltins(Default)
}

// MustRegisterBuiltins registers the built-in filters of this package under
// their versioned types and unversioned aliases.
func MustRegisterBuiltins(r *Registry) {
	r.MustRegister("stringTrim", func(options map[string]any) (Filter, error) {
		f := &StringTrim{}
		if err := spec.DecodeOptions(options, f); err != nil {
			return nil, err
		}
		return f, nil
	})
	r.MustRegister("stringToLower", func(map[string]any) (Filter, error) {
		return StringToLower{}, nil
	})
	r.MustRegister("stringToUpper", func(map[string]any) (Filter, error) {
		return StringToUpper{}, nil
	})
	r.MustRegister("stripNewlines", func(map[string]any) (Filter, error) {
		return StripNewlines{}, nil
	})
	r.MustRegister("toInt", func(map[string]any) (Filter, error) {
		return ToInt{}, nil
	})
}

// NewRegistry creates an empty filter registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[spec.Type]Constructor)}
}

// Clone returns a copy of the registry, so callers can extend the defaults
// without mutating them.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewRegistry()
	maps.Copy(clone.constructors, r.constructors)
	return clone
}

// Register adds a constructor under the versioned type for kind and its
// unversioned alias.
func (r *Registry) Register(kind string, ctor Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, typ := range []spec.Type{
		spec.NewVersionedType(kind, "v1"),
		spec.NewUnversionedType(kind),
	} {
		if _, exists := r.constructors[typ]; exists {
			return fmt.Errorf("filter type %q is already registered", typ)
		}
		r.constructors[typ] = ctor
	}
	return nil
}

func (r *Registry) MustRegister(kind string, ctor Constructor) {
	if err := r.Register(kind, ctor); err != nil {
		panic(err)
	}
}

// Has reports whether a constructor is registered for the given name.
func (r *Registry) Has(name string) bool {
	typ, err := spec.ParseType(name)
	if err != nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.constructors[typ]
	return exists
}

// New constructs a filter by registered name ("kind" or "kind/version") with
// the given options.
func (r *Registry) New(name string, options map[string]any) (Filter, error) {
	typ, err := spec.ParseType(name)
	if err != nil {
		return nil, err
	}
	return r.NewForType(typ, options)
}

// NewForType constructs a filter for a spec type with the given options.
func (r *Registry) NewForType(typ spec.Type, options map[string]any) (Filter, error) {
	r.mu.RLock()
	ctor, exists := r.constructors[typ]
	r.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("unsupported filter type: %s", typ)
	}
	f, err := ctor(options)
	if err != nil {
		return nil, fmt.Errorf("failed to construct filter %q: %w", typ, err)
	}
	return f, nil
}
