package validator

import (
	"errors"
	"fmt"
)

// Chain runs an ordered list of validators against a value and aggregates
// their failures.
type Chain struct {
	validators []entry
}

type entry struct {
	validator      Validator
	breakOnFailure bool
}

// NewChain creates a chain over the given validators.
func NewChain(validators ...Validator) *Chain {
	c := &Chain{}
	for _, v := range validators {
		c.Attach(v)
	}
	return c
}

// Attach appends a validator to the chain.
func (c *Chain) Attach(v Validator) *Chain {
	c.validators = append(c.validators, entry{validator: v})
	return c
}

// AttachBreakOnFailure appends a validator that, when failing, stops the
// rest of the chain from running.
func (c *Chain) AttachBreakOnFailure(v Validator) *Chain {
	c.validators = append(c.validators, entry{validator: v, breakOnFailure: true})
	return c
}

// AttachByName appends a validator constructed from the given registry.
func (c *Chain) AttachByName(reg *Registry, name string, options map[string]any) error {
	v, err := reg.New(name, options)
	if err != nil {
		return fmt.Errorf("could not attach validator %q: %w", name, err)
	}
	c.Attach(v)
	return nil
}

// Len returns the number of attached validators.
func (c *Chain) Len() int {
	return len(c.validators)
}

// Validate runs every attached validator and joins their failures. A
// break-on-failure validator short-circuits the remainder of the chain.
func (c *Chain) Validate(v any) error {
	var errs []error
	for _, e := range c.validators {
		if err := e.validator.Validate(v); err != nil {
			errs = append(errs, err)
			if e.breakOnFailure {
				break
			}
		}
	}
	return errors.Join(errs...)
}

var _ Validator = &Chain{}
