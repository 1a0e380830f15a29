package spec

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"sync"

	"sigs.k8s.io/yaml"
)

// Scheme is a dynamic registry for Typed spec objects. It maps types (and
// their aliases) to prototypes and constructs fresh instances on demand.
type Scheme struct {
	mu sync.RWMutex
	// allowUnknown makes NewObject fall back to a Raw instead of failing
	// when no prototype is registered for the requested type.
	allowUnknown bool
	types        map[Type]Typed
}

type SchemeOption func(*Scheme)

// WithAllowUnknown allows unknown types to be constructed as Raw.
func WithAllowUnknown() SchemeOption {
	return func(s *Scheme) {
		s.allowUnknown = true
	}
}

// NewScheme creates a new spec scheme.
func NewScheme(opts ...SchemeOption) *Scheme {
	s := &Scheme{
		types: make(map[Type]Typed),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheme) Clone() *Scheme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := NewScheme()
	clone.allowUnknown = s.allowUnknown
	maps.Copy(clone.types, s.types)
	return clone
}

// RegisterWithAlias registers a prototype under all given types. Versioned and
// unversioned forms of the same kind are typically both registered so specs
// may omit the version.
func (s *Scheme) RegisterWithAlias(prototype Typed, types ...Type) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, typ := range types {
		if _, exists := s.types[typ]; exists {
			return fmt.Errorf("type %q is already registered", typ)
		}
		s.types[typ] = prototype
	}
	return nil
}

func (s *Scheme) MustRegisterWithAlias(prototype Typed, types ...Type) {
	if err := s.RegisterWithAlias(prototype, types...); err != nil {
		panic(err)
	}
}

// MustRegister registers a prototype under the versioned type derived from
// its Go struct name.
func (s *Scheme) MustRegister(prototype Typed, version string) {
	t := reflect.TypeOf(prototype)
	if t.Kind() != reflect.Pointer {
		panic("all spec prototypes must be pointers to structs")
	}
	t = t.Elem()
	s.MustRegisterWithAlias(prototype, NewVersionedType(t.Name(), version))
}

func (s *Scheme) IsRegistered(typ Type) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.types[typ]
	return exists
}

// TypeForPrototype returns the versioned type a prototype was registered
// under.
func (s *Scheme) TypeForPrototype(prototype any) (Type, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for typ, proto := range s.types {
		// unversioned entries are aliases, never the canonical answer
		if !typ.HasVersion() {
			continue
		}
		if reflect.TypeOf(prototype).Elem() == reflect.TypeOf(proto).Elem() {
			return typ, nil
		}
	}
	return "", errors.New("prototype not found in scheme")
}

func (s *Scheme) MustTypeForPrototype(prototype Typed) Type {
	typ, err := s.TypeForPrototype(prototype)
	if err != nil {
		panic(err)
	}
	return typ
}

// DefaultType populates the type field of a registered object when it is
// empty. It reports whether the type was set.
func (s *Scheme) DefaultType(object Typed) (bool, error) {
	if !object.GetType().IsEmpty() {
		return false, nil
	}
	typ, err := s.TypeForPrototype(object)
	if err != nil {
		return false, fmt.Errorf("could not default type for %T: %w", object, err)
	}
	object.SetType(typ)
	return true, nil
}

// NewObject creates a fresh instance of the prototype registered for typ.
func (s *Scheme) NewObject(typ Type) (Typed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	proto, exists := s.types[typ]
	if exists {
		t := reflect.TypeOf(proto)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		object := reflect.New(t).Interface()
		return object.(Typed), nil //nolint:forcetypeassert // prototypes are always Typed
	}

	if s.allowUnknown {
		return &Raw{Type: typ}, nil
	}

	return nil, fmt.Errorf("unsupported type: %s", typ)
}

// Decode unmarshals YAML or JSON data into a fresh object for the type named
// inside the document.
func (s *Scheme) Decode(data []byte) (Typed, error) {
	var header struct {
		Type Type `json:"type"`
	}
	if err := yaml.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("could not read spec type: %w", err)
	}
	if header.Type.IsEmpty() {
		return nil, errors.New("spec document has no type")
	}
	obj, err := s.NewObject(header.Type)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, obj); err != nil {
		return nil, fmt.Errorf("failed to unmarshal spec %q: %w", header.Type, err)
	}
	obj.SetType(header.Type)
	return obj, nil
}

// Convert transforms one Typed spec object into another. Raw objects decode
// into typed ones (and vice versa) through their canonical JSON form; typed
// to typed conversion is a deep copy with a reflection-based assignment.
func (s *Scheme) Convert(from, into Typed) error {
	if from == nil || into == nil {
		return errors.New("both 'from' and 'into' must be non-nil")
	}

	if from.GetType().IsEmpty() {
		from = from.DeepCopyTyped()
		typ, err := s.TypeForPrototype(from)
		if err != nil && !s.allowUnknown {
			return fmt.Errorf("cannot convert from unregistered type: %w", err)
		}
		from.SetType(typ)
	}
	fromType := from.GetType()

	if rawFrom, ok := from.(*Raw); ok {
		if rawInto, ok := into.(*Raw); ok {
			rawFrom.DeepCopyTyped().(*Raw).deepCopyInto(rawInto)
			return nil
		}
		return s.convertRawToTyped(rawFrom, into, fromType)
	}

	if rawInto, ok := into.(*Raw); ok {
		return s.convertTypedToRaw(from, rawInto, fromType)
	}

	return convertTypedToTyped(from, into)
}

func (r *Raw) deepCopyInto(out *Raw) {
	out.Type = r.Type
	out.Data = append(out.Data[:0], r.Data...)
}

func (s *Scheme) convertRawToTyped(from *Raw, into Typed, fromType Type) error {
	if !s.IsRegistered(fromType) && !s.allowUnknown {
		return fmt.Errorf("cannot decode from unregistered type: %s", fromType)
	}
	if err := yaml.Unmarshal(from.Data, into); err != nil {
		return fmt.Errorf("failed to unmarshal from raw: %w", err)
	}
	return nil
}

func (s *Scheme) convertTypedToRaw(from Typed, into *Raw, fromType Type) error {
	if !s.IsRegistered(fromType) && !s.allowUnknown {
		return fmt.Errorf("cannot encode from unregistered type: %s", fromType)
	}
	data, err := yaml.Marshal(from)
	if err != nil {
		return fmt.Errorf("failed to marshal into raw: %w", err)
	}
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("failed to convert raw to JSON: %w", err)
	}
	tmp := &Raw{}
	if err := tmp.UnmarshalJSON(jsonData); err != nil {
		return err
	}
	into.Type = fromType
	into.Data = tmp.Data
	return nil
}

func convertTypedToTyped(from, into Typed) error {
	intoVal := reflect.ValueOf(into)
	if intoVal.Kind() != reflect.Pointer || intoVal.IsNil() {
		return errors.New("'into' must be a non-nil pointer")
	}
	copied := from.DeepCopyTyped()
	copiedVal := reflect.ValueOf(copied)
	if copiedVal.Kind() == reflect.Pointer {
		copiedVal = copiedVal.Elem()
	}
	intoElem := intoVal.Elem()
	if !copiedVal.Type().AssignableTo(intoElem.Type()) {
		return fmt.Errorf("cannot assign value of type %T to target of type %T", copied, into)
	}
	intoElem.Set(copiedVal)
	return nil
}
