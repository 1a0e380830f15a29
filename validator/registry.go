package validator

import (
	"encoding/json"
	"fmt"
	"maps"
	"sync"

	"github.com/filterware/inputfilter/spec"
)

// Constructor builds a validator from its declarative options.
type Constructor func(options map[string]any) (Validator, error)

// Registry is a keyed constructor registry for validators. It is the
// validator-chain provider collaborator the plugin manager threads into
// input filter factories.
type Registry struct {
	mu           sync.RWMutex
	constructors map[spec.Type]Constructor
}

// Default is the registry pre-populated with the built-in validators.
var Default = NewRegistry()

func init() {
	MustRegisterBuiltins(Default)
}

// MustRegisterBuiltins registers the built-in validators of this package
// under their versioned types and unversioned aliases.
func MustRegisterBuiltins(r *Registry) {
	r.MustRegister("notEmpty", func(map[string]any) (Validator, error) {
		return NotEmpty{}, nil
	})
	r.MustRegister("stringLength", func(options map[string]any) (Validator, error) {
		v := &StringLength{}
		if err := spec.DecodeOptions(options, v); err != nil {
			return nil, err
		}
		return v, nil
	})
	r.MustRegister("regex", func(options map[string]any) (Validator, error) {
		v := &Regex{}
		if err := spec.DecodeOptions(options, v); err != nil {
			return nil, err
		}
		return NewRegex(v.Pattern)
	})
	r.MustRegister("glob", func(options map[string]any) (Validator, error) {
		v := &Glob{}
		if err := spec.DecodeOptions(options, v); err != nil {
			return nil, err
		}
		return NewGlob(v.Pattern)
	})
	r.MustRegister("inList", func(options map[string]any) (Validator, error) {
		v := &InList{}
		if err := spec.DecodeOptions(options, v); err != nil {
			return nil, err
		}
		return v, nil
	})
	r.MustRegister("jsonSchema", func(options map[string]any) (Validator, error) {
		schema, ok := options["schema"]
		if !ok {
			return nil, fmt.Errorf("jsonSchema validator requires a %q option", "schema")
		}
		data, err := json.Marshal(schema)
		if err != nil {
			return nil, fmt.Errorf("could not marshal schema option: %w", err)
		}
		return NewJSONSchema(data)
	})
}

// NewRegistry creates an empty validator registry.
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
			return fmt.Errorf("validator type %q is already registered", typ)
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

// New constructs a validator by registered name ("kind" or "kind/version")
// with the given options.
func (r *Registry) New(name string, options map[string]any) (Validator, error) {
	typ, err := spec.ParseType(name)
	if err != nil {
		return nil, err
	}
	return r.NewForType(typ, options)
}

// NewForType constructs a validator for a spec type with the given options.
func (r *Registry) NewForType(typ spec.Type, options map[string]any) (Validator, error) {
	r.mu.RLock()
	ctor, exists := r.constructors[typ]
	r.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("unsupported validator type: %s", typ)
	}
	v, err := ctor(options)
	if err != nil {
		return nil, fmt.Errorf("failed to construct validator %q: %w", typ, err)
	}
	return v, nil
}
