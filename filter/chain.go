package filter

import (
	"fmt"
)

// Chain applies an ordered list of filters to a value.
type Chain struct {
	filters []Filter
}

// NewChain creates a chain over the given filters, applied in order.
func NewChain(filters ...Filter) *Chain {
	return &Chain{filters: filters}
}

// Attach appends a filter to the chain and returns the chain for fluent use.
func (c *Chain) Attach(f Filter) *Chain {
	c.filters = append(c.filters, f)
	return c
}

// AttachByName appends a filter constructed from the given registry by name.
func (c *Chain) AttachByName(reg *Registry, name string, options map[string]any) error {
	f, err := reg.New(name, options)
	if err != nil {
		return fmt.Errorf("could not attach filter %q: %w", name, err)
	}
	c.Attach(f)
	return nil
}

// Len returns the number of attached filters.
func (c *Chain) Len() int {
	return len(c.filters)
}

// Filter runs the value through every attached filter in order. The chain
// itself satisfies the Filter interface so chains can nest.
func (c *Chain) Filter(v any) (any, error) {
	var err error
	for i, f := range c.filters {
		if v, err = f.Filter(v); err != nil {
			return nil, fmt.Errorf("filter %d of %d failed: %w", i+1, len(c.filters), err)
		}
	}
	return v, nil
}

var _ Filter = &Chain{}
