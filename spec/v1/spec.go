// Package v1 contains the v1 declarative spec types consumed by the
// input-filter factory.
package v1

import (
	"maps"

	"github.com/filterware/inputfilter/spec"
)

const (
	// Version is the spec version of this package.
	Version = "v1"
	// InputFilterType is the kind of the top-level input filter document.
	InputFilterType = "inputFilter"
	// CollectionType is the kind of the collection input filter document.
	CollectionType = "collection"
)

// Scheme holds the spec types of this package.
var Scheme = spec.NewScheme()

func init() {
	MustAddToScheme(Scheme)
}

// MustAddToScheme registers the v1 spec types with their unversioned aliases.
func MustAddToScheme(s *spec.Scheme) {
	s.MustRegisterWithAlias(&InputFilter{},
		spec.NewVersionedType(InputFilterType, Version),
		spec.NewUnversionedType(InputFilterType),
	)
	s.MustRegisterWithAlias(&Collection{},
		spec.NewVersionedType(CollectionType, Version),
		spec.NewUnversionedType(CollectionType),
	)
}

// InputFilter describes a composite input filter: a named set of inputs,
// each with its filter and validator components.
type InputFilter struct {
	// Type may be empty when the filter is embedded in a collection
	// document; the scheme enforces it on top-level documents.
	Type spec.Type `json:"type,omitempty"`
	// Inputs are the named units of the filter, validated in declaration
	// order.
	Inputs []Input `json:"inputs"`
}

var _ spec.Typed = &InputFilter{}

func (f *InputFilter) GetType() spec.Type {
	return f.Type
}

func (f *InputFilter) SetType(t spec.Type) {
	f.Type = t
}

func (f *InputFilter) DeepCopyTyped() spec.Typed {
	out := &InputFilter{Type: f.Type}
	out.Inputs = make([]Input, len(f.Inputs))
	for i := range f.Inputs {
		out.Inputs[i] = *f.Inputs[i].DeepCopy()
	}
	return out
}

// Collection describes an input filter applied to a list of data rows.
type Collection struct {
	Type spec.Type `json:"type"`
	// InputFilter is the row prototype.
	InputFilter InputFilter `json:"inputFilter"`
	// Count is the minimum number of rows that must be present.
	Count int `json:"count,omitempty"`
}

var _ spec.Typed = &Collection{}

func (c *Collection) GetType() spec.Type {
	return c.Type
}

func (c *Collection) SetType(t spec.Type) {
	c.Type = t
}

func (c *Collection) DeepCopyTyped() spec.Typed {
	out := &Collection{Type: c.Type, Count: c.Count}
	out.InputFilter = *c.InputFilter.DeepCopyTyped().(*InputFilter)
	return out
}

// Input describes a single named unit.
type Input struct {
	// Name keys the input inside its filter.
	Name string `json:"name"`
	// Required marks the input as mandatory in the data set.
	Required bool `json:"required,omitempty"`
	// ContinueIfEmpty runs the validator chain even for empty values.
	ContinueIfEmpty bool `json:"continueIfEmpty,omitempty"`
	// BreakOnFailure stops the validator chain at the first failure.
	BreakOnFailure bool `json:"breakOnFailure,omitempty"`
	// ErrorMessage overrides all validator messages when set.
	ErrorMessage string `json:"errorMessage,omitempty"`
	// Filters name the filter components applied to the raw value, in order.
	Filters []Component `json:"filters,omitempty"`
	// Validators name the validator components run against the filtered
	// value, in order.
	Validators []Component `json:"validators,omitempty"`
}

func (in *Input) DeepCopy() *Input {
	out := *in
	out.Filters = make([]Component, len(in.Filters))
	for i := range in.Filters {
		out.Filters[i] = *in.Filters[i].DeepCopy()
	}
	out.Validators = make([]Component, len(in.Validators))
	for i := range in.Validators {
		out.Validators[i] = *in.Validators[i].DeepCopy()
	}
	return &out
}

// Component names a filter or validator by registry type with its options.
type Component struct {
	Type spec.Type `json:"type"`
	// Options are decoded into the component's typed options struct at
	// construction time.
	Options map[string]any `json:"options,omitempty"`
}

func (c *Component) DeepCopy() *Component {
	out := &Component{Type: c.Type}
	if c.Options != nil {
		out.Options = maps.Clone(c.Options)
	}
	return out
}
