// Package inputfilter provides composite input filters: named collections
// of inputs validated together, a collection filter for row data, and the
// factory that builds both from declarative specs.
package inputfilter

import (
	"errors"
	"fmt"
	"sort"

	"github.com/filterware/inputfilter/input"
)

// InputFilter is a composite of named input units. It is the second
// capability accepted by the input-filter plugin manager, next to
// input.Input.
type InputFilter interface {
	// SetData assigns the data to validate. Base filters accept a
	// map[string]any, collections a slice of such maps.
	SetData(data any) error
	// Validate filters and validates all inputs against the assigned data.
	Validate() error
	// Values returns the filtered values computed by the last Validate.
	Values() map[string]any
	// RawValues returns the unfiltered values of the assigned data.
	RawValues() map[string]any
	// Messages returns the per-input failure messages of the last Validate.
	Messages() map[string][]string
}

// Initializable is the post-construction hook contract. The plugin manager
// invokes Init on every registered and every resolved service implementing
// it.
type Initializable interface {
	Init() error
}

// ValidationError aggregates per-input failures of a composite filter.
type ValidationError struct {
	// Messages holds the failure messages keyed by input name. Nested
	// filter failures use dotted keys, collection rows use "[i].name".
	Messages map[string][]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Messages))
	for name := range e.Messages {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("input filter validation failed for %v", names)
}

// Base is the default InputFilter implementation. It owns a Factory through
// which the plugin manager threads its collaborator references.
type Base struct {
	factory *Factory

	order  []string
	inputs map[string]any // input.Input or InputFilter

	data     map[string]any
	values   map[string]any
	messages map[string][]string
}

var _ InputFilter = &Base{}

// New creates an empty Base input filter with a default factory.
func New() *Base {
	return &Base{
		factory: NewFactory(),
		inputs:  make(map[string]any),
	}
}

// Factory returns the factory used to build inputs for this filter. The
// plugin manager populates its collaborator references on resolution.
func (b *Base) Factory() *Factory {
	return b.factory
}

// Add attaches an input.Input or a nested InputFilter under the given name.
// If name is empty, the unit's own name is used. Any other value is
// rejected.
func (b *Base) Add(v any, name string) error {
	switch unit := v.(type) {
	case input.Input:
		if name != "" {
			unit.SetName(name)
		}
		name = unit.Name()
	case InputFilter:
		if name == "" {
			return errors.New("nested input filters must be added under an explicit name")
		}
	default:
		return fmt.Errorf("expected an input or input filter, got %T", v)
	}

	if name == "" {
		return errors.New("input has no name")
	}
	if _, exists := b.inputs[name]; !exists {
		b.order = append(b.order, name)
	}
	b.inputs[name] = v
	return nil
}

// Has reports whether an input is attached under name.
func (b *Base) Has(name string) bool {
	_, exists := b.inputs[name]
	return exists
}

// Get returns the input or nested filter attached under name.
func (b *Base) Get(name string) (any, error) {
	v, exists := b.inputs[name]
	if !exists {
		return nil, fmt.Errorf("no input named %q", name)
	}
	return v, nil
}

// Remove detaches the input under name, if any.
func (b *Base) Remove(name string) {
	if _, exists := b.inputs[name]; !exists {
		return
	}
	delete(b.inputs, name)
	for i, n := range b.order {
		if n == name {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Count returns the number of attached inputs.
func (b *Base) Count() int {
	return len(b.inputs)
}

// Names returns the attached input names in declaration order.
func (b *Base) Names() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// SetData assigns the data set to validate. Accepts a map[string]any or nil.
func (b *Base) SetData(data any) error {
	switch d := data.(type) {
	case nil:
		b.data = nil
	case map[string]any:
		b.data = d
	default:
		return fmt.Errorf("expected map[string]any data, got %T", data)
	}
	return nil
}

// Validate runs every attached input against the assigned data in
// declaration order. It returns a *ValidationError carrying the per-input
// messages when any unit fails.
func (b *Base) Validate() error {
	b.values = make(map[string]any, len(b.inputs))
	b.messages = make(map[string][]string)

	for _, name := range b.order {
		switch unit := b.inputs[name].(type) {
		case input.Input:
			raw, present := b.data[name]
			if present {
				unit.SetValue(raw)
			} else if clearable, ok := unit.(interface{ ClearValue() }); ok {
				clearable.ClearValue()
			}
			if err := unit.Validate(); err != nil {
				b.messages[name] = append(b.messages[name], err.Error())
				continue
			}
			if !present && !unit.Required() {
				continue
			}
			value, err := unit.Value()
			if err != nil {
				b.messages[name] = append(b.messages[name], err.Error())
				continue
			}
			b.values[name] = value
		case InputFilter:
			sub, _ := b.data[name].(map[string]any)
			if err := unit.SetData(sub); err != nil {
				b.messages[name] = append(b.messages[name], err.Error())
				continue
			}
			if err := unit.Validate(); err != nil {
				for subName, msgs := range unit.Messages() {
					b.messages[name+"."+subName] = msgs
				}
				continue
			}
			b.values[name] = unit.Values()
		}
	}

	if len(b.messages) > 0 {
		return &ValidationError{Messages: b.messages}
	}
	return nil
}

func (b *Base) Values() map[string]any {
	return b.values
}

func (b *Base) RawValues() map[string]any {
	return b.data
}

func (b *Base) Messages() map[string][]string {
	return b.messages
}
