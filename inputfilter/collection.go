package inputfilter

import (
	"fmt"
)

// Collection validates a slice of data rows against a prototype input
// filter. It satisfies the same capability contract as Base.
type Collection struct {
	inner InputFilter
	// count is the minimum number of rows that must be present.
	count int

	rows     []map[string]any
	values   map[string]any
	messages map[string][]string
}

var _ InputFilter = &Collection{}

// NewCollection creates a collection over an empty Base prototype.
func NewCollection() *Collection {
	return &Collection{inner: New()}
}

// InputFilter returns the row prototype.
func (c *Collection) InputFilter() InputFilter {
	return c.inner
}

// SetInputFilter replaces the row prototype.
func (c *Collection) SetInputFilter(f InputFilter) {
	c.inner = f
}

// Count returns the minimum row count.
func (c *Collection) Count() int {
	return c.count
}

// SetCount sets the minimum row count.
func (c *Collection) SetCount(count int) {
	c.count = count
}

// SetData assigns the rows to validate. Accepts []map[string]any, []any of
// maps, or nil.
func (c *Collection) SetData(data any) error {
	switch d := data.(type) {
	case nil:
		c.rows = nil
	case []map[string]any:
		c.rows = d
	case []any:
		rows := make([]map[string]any, 0, len(d))
		for i, raw := range d {
			row, ok := raw.(map[string]any)
			if !ok {
				return fmt.Errorf("collection row %d: expected map[string]any, got %T", i, raw)
			}
			rows = append(rows, row)
		}
		c.rows = rows
	default:
		return fmt.Errorf("expected a slice of rows, got %T", data)
	}
	return nil
}

// Validate runs the prototype filter over every row. Row failures are keyed
// "[i].name" in the messages.
func (c *Collection) Validate() error {
	c.values = make(map[string]any)
	c.messages = make(map[string][]string)

	if len(c.rows) < c.count {
		c.messages["count"] = []string{
			fmt.Sprintf("expected at least %d rows, got %d", c.count, len(c.rows)),
		}
	}

	rowValues := make([]map[string]any, len(c.rows))
	for i, row := range c.rows {
		if err := c.inner.SetData(row); err != nil {
			c.messages[fmt.Sprintf("[%d]", i)] = []string{err.Error()}
			continue
		}
		if err := c.inner.Validate(); err != nil {
			for name, msgs := range c.inner.Messages() {
				c.messages[fmt.Sprintf("[%d].%s", i, name)] = msgs
			}
			continue
		}
		rowValues[i] = c.inner.Values()
	}
	c.values["rows"] = rowValues

	if len(c.messages) > 0 {
		return &ValidationError{Messages: c.messages}
	}
	return nil
}

// Values returns the filtered row values of the last Validate under the
// "rows" key.
func (c *Collection) Values() map[string]any {
	return c.values
}

func (c *Collection) RawValues() map[string]any {
	out := make(map[string]any, 1)
	rows := make([]map[string]any, len(c.rows))
	copy(rows, c.rows)
	out["rows"] = rows
	return out
}

func (c *Collection) Messages() map[string][]string {
	return c.messages
}
