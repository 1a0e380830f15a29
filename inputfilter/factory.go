package inputfilter

import (
	"fmt"

	"github.com/filterware/inputfilter/filter"
	"github.com/filterware/inputfilter/input"
	"github.com/filterware/inputfilter/service"
	"github.com/filterware/inputfilter/spec"
	v1 "github.com/filterware/inputfilter/spec/v1"
	"github.com/filterware/inputfilter/validator"
)

// Factory builds inputs and input filters from declarative v1 specs. It
// carries the collaborator references the plugin manager wires on
// resolution: the manager itself plus the filter and validator registries
// used to construct chain components.
type Factory struct {
	manager    service.Locator
	filters    *filter.Registry
	validators *validator.Registry
	scheme     *spec.Scheme
}

// NewFactory creates a factory backed by the package-default registries and
// the v1 spec scheme. All of them can be replaced afterwards.
func NewFactory() *Factory {
	return &Factory{
		filters:    filter.Default,
		validators: validator.Default,
		scheme:     v1.Scheme,
	}
}

// InputFilterManager returns the plugin manager this factory resolves named
// input filters from, or nil when unset.
func (f *Factory) InputFilterManager() service.Locator {
	return f.manager
}

// SetInputFilterManager wires the plugin manager reference.
func (f *Factory) SetInputFilterManager(m service.Locator) {
	f.manager = m
}

// FilterRegistry returns the registry filters are constructed from.
func (f *Factory) FilterRegistry() *filter.Registry {
	return f.filters
}

// SetFilterRegistry replaces the filter registry.
func (f *Factory) SetFilterRegistry(r *filter.Registry) {
	f.filters = r
}

// ValidatorRegistry returns the registry validators are constructed from.
func (f *Factory) ValidatorRegistry() *validator.Registry {
	return f.validators
}

// SetValidatorRegistry replaces the validator registry.
func (f *Factory) SetValidatorRegistry(r *validator.Registry) {
	f.validators = r
}

// NewInput builds a single input from its spec, constructing its filter and
// validator chains from the factory's registries.
func (f *Factory) NewInput(in *v1.Input) (*input.Basic, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("input spec has no name")
	}

	built := input.New(in.Name)
	built.SetRequired(in.Required)
	built.SetContinueIfEmpty(in.ContinueIfEmpty)
	built.SetErrorMessage(in.ErrorMessage)

	for _, fs := range in.Filters {
		component, err := f.filters.NewForType(fs.Type, fs.Options)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", in.Name, err)
		}
		built.FilterChain().Attach(component)
	}
	for _, vs := range in.Validators {
		component, err := f.validators.NewForType(vs.Type, vs.Options)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", in.Name, err)
		}
		if in.BreakOnFailure {
			built.ValidatorChain().AttachBreakOnFailure(component)
		} else {
			built.ValidatorChain().Attach(component)
		}
	}
	return built, nil
}

// NewInputFilter builds a composite filter from its spec. When a plugin
// manager is wired and exposes the default input filter service, the empty
// composite is resolved through it so manager-level wiring applies;
// otherwise a plain Base is constructed.
func (f *Factory) NewInputFilter(fs *v1.InputFilter) (*Base, error) {
	base := f.newBase()
	for i := range fs.Inputs {
		in, err := f.NewInput(&fs.Inputs[i])
		if err != nil {
			return nil, err
		}
		if err := base.Add(in, ""); err != nil {
			return nil, err
		}
	}
	return base, nil
}

// NewCollection builds a collection filter from its spec.
func (f *Factory) NewCollection(cs *v1.Collection) (*Collection, error) {
	inner, err := f.NewInputFilter(&cs.InputFilter)
	if err != nil {
		return nil, err
	}
	collection := NewCollection()
	collection.SetInputFilter(inner)
	collection.SetCount(cs.Count)
	return collection, nil
}

// NewFromDocument decodes a YAML or JSON spec document and builds the
// input filter it describes. The document is schema-validated first.
func (f *Factory) NewFromDocument(document []byte) (InputFilter, error) {
	decoded, err := f.scheme.Decode(document)
	if err != nil {
		return nil, fmt.Errorf("could not decode input filter document: %w", err)
	}

	switch s := decoded.(type) {
	case *v1.InputFilter:
		if err := v1.ValidateDocument(document); err != nil {
			return nil, err
		}
		return f.NewInputFilter(s)
	case *v1.Collection:
		if err := v1.ValidateCollectionDocument(document); err != nil {
			return nil, err
		}
		return f.NewCollection(s)
	default:
		return nil, fmt.Errorf("unsupported input filter document type %q", decoded.GetType())
	}
}

func (f *Factory) newBase() *Base {
	if f.manager != nil && f.manager.Has(DefaultServiceName) {
		if svc, err := f.manager.Get(DefaultServiceName); err == nil {
			if base, ok := svc.(*Base); ok {
				return base
			}
		}
	}
	base := New()
	base.factory = f
	return base
}

// DefaultServiceName is the canonical key the plugin manager registers the
// Base input filter factory under.
const DefaultServiceName = "inputfilter"
