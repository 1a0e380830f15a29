// Package input defines the single named unit of the input-filtering
// subsystem: one value with a filter chain and a validator chain.
package input

import (
	"errors"
	"fmt"

	"github.com/filterware/inputfilter/filter"
	"github.com/filterware/inputfilter/validator"
)

// Input is a single named unit. It is one of the two capabilities accepted
// by the input-filter plugin manager.
type Input interface {
	// Name returns the key of the input inside its composite filter.
	Name() string
	// SetName renames the input; composites call this when adding an input
	// under an explicit key.
	SetName(name string)
	// Required reports whether the input must be present in the data set.
	Required() bool
	// FilterChain returns the chain applied to the raw value.
	FilterChain() *filter.Chain
	// ValidatorChain returns the chain run against the filtered value.
	ValidatorChain() *validator.Chain
	// SetValue assigns the raw value for the next Validate call.
	SetValue(v any)
	// RawValue returns the value as assigned, before filtering.
	RawValue() any
	// Value returns the filtered value.
	Value() (any, error)
	// Validate filters the raw value and runs the validator chain.
	Validate() error
}

// ErrMissingRequired is wrapped by Validate when a required input received
// no value.
var ErrMissingRequired = errors.New("value is required")

// Basic is the default Input implementation.
type Basic struct {
	name            string
	required        bool
	continueIfEmpty bool
	errorMessage    string

	filterChain    *filter.Chain
	validatorChain *validator.Chain

	raw      any
	hasValue bool
}

var _ Input = &Basic{}

// Option configures a Basic input.
type Option func(*Basic)

// Required marks the input as mandatory.
func Required() Option {
	return func(b *Basic) {
		b.required = true
	}
}

// ContinueIfEmpty runs the validator chain even when the filtered value is
// empty.
func ContinueIfEmpty() Option {
	return func(b *Basic) {
		b.continueIfEmpty = true
	}
}

// WithErrorMessage replaces all validator failures with a single message.
func WithErrorMessage(msg string) Option {
	return func(b *Basic) {
		b.errorMessage = msg
	}
}

// New creates a named input with empty chains.
func New(name string, opts ...Option) *Basic {
	b := &Basic{
		name:           name,
		filterChain:    filter.NewChain(),
		validatorChain: validator.NewChain(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Basic) Name() string {
	return b.name
}

func (b *Basic) SetName(name string) {
	b.name = name
}

func (b *Basic) Required() bool {
	return b.required
}

// SetRequired toggles the required flag after construction.
func (b *Basic) SetRequired(required bool) {
	b.required = required
}

// SetContinueIfEmpty toggles empty-value validation after construction.
func (b *Basic) SetContinueIfEmpty(continueIfEmpty bool) {
	b.continueIfEmpty = continueIfEmpty
}

// SetErrorMessage sets the message that replaces validator failures.
func (b *Basic) SetErrorMessage(msg string) {
	b.errorMessage = msg
}

func (b *Basic) FilterChain() *filter.Chain {
	return b.filterChain
}

func (b *Basic) ValidatorChain() *validator.Chain {
	return b.validatorChain
}

func (b *Basic) SetValue(v any) {
	b.raw = v
	b.hasValue = true
}

// ClearValue removes any assigned value, returning the input to its
// pre-population state.
func (b *Basic) ClearValue() {
	b.raw = nil
	b.hasValue = false
}

// HasValue reports whether a value has been assigned since construction or
// the last ClearValue.
func (b *Basic) HasValue() bool {
	return b.hasValue
}

func (b *Basic) RawValue() any {
	return b.raw
}

func (b *Basic) Value() (any, error) {
	v, err := b.filterChain.Filter(b.raw)
	if err != nil {
		return nil, fmt.Errorf("input %q: %w", b.name, err)
	}
	return v, nil
}

// Validate filters the raw value and runs the validator chain against the
// result. A required input with no value fails; an optional empty value
// passes without consulting the validators unless ContinueIfEmpty is set.
func (b *Basic) Validate() error {
	if !b.hasValue {
		if b.required {
			return b.fail(fmt.Errorf("%w: input %q has no value", ErrMissingRequired, b.name))
		}
		return nil
	}

	value, err := b.filterChain.Filter(b.raw)
	if err != nil {
		return b.fail(fmt.Errorf("input %q: %w", b.name, err))
	}

	if validator.IsEmpty(value) && !b.continueIfEmpty {
		if b.required {
			return b.fail(fmt.Errorf("%w: input %q is empty", ErrMissingRequired, b.name))
		}
		return nil
	}

	if err := b.validatorChain.Validate(value); err != nil {
		return b.fail(fmt.Errorf("input %q: %w", b.name, err))
	}
	return nil
}

func (b *Basic) fail(err error) error {
	if b.errorMessage != "" {
		return errors.New(b.errorMessage)
	}
	return err
}
