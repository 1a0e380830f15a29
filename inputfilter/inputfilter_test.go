package inputfilter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filterware/inputfilter/filter"
	"github.com/filterware/inputfilter/input"
	"github.com/filterware/inputfilter/validator"
)

func emailInput() *input.Basic {
	in := input.New("email", input.Required())
	in.FilterChain().Attach(&filter.StringTrim{}).Attach(filter.StringToLower{})
	in.ValidatorChain().Attach(&validator.StringLength{Min: 3})
	return in
}

func TestBaseAddAndLookup(t *testing.T) {
	r := require.New(t)
	f := New()

	r.NoError(f.Add(emailInput(), ""))
	r.True(f.Has("email"))
	r.Equal(1, f.Count())
	r.Equal([]string{"email"}, f.Names())

	// explicit name renames the input
	r.NoError(f.Add(input.New("ignored"), "age"))
	got, err := f.Get("age")
	r.NoError(err)
	r.Equal("age", got.(input.Input).Name())

	r.Error(f.Add("nonsense", "x"))
	r.Error(f.Add(New(), ""))

	f.Remove("age")
	r.False(f.Has("age"))
	r.Equal([]string{"email"}, f.Names())
}

func TestBaseValidateFiltersAndCollectsValues(t *testing.T) {
	r := require.New(t)
	f := New()
	r.NoError(f.Add(emailInput(), ""))

	r.NoError(f.SetData(map[string]any{"email": "  USER@Example.COM "}))
	r.NoError(f.Validate())
	r.Equal("user@example.com", f.Values()["email"])
	r.Empty(f.Messages())
}

func TestBaseValidateMissingRequired(t *testing.T) {
	r := require.New(t)
	f := New()
	r.NoError(f.Add(emailInput(), ""))

	r.NoError(f.SetData(map[string]any{}))
	err := f.Validate()
	r.Error(err)

	var verr *ValidationError
	r.ErrorAs(err, &verr)
	r.Contains(verr.Messages, "email")
}

func TestBaseOptionalInputSkipped(t *testing.T) {
	r := require.New(t)
	f := New()
	opt := input.New("nickname")
	opt.ValidatorChain().Attach(&validator.StringLength{Min: 100})
	r.NoError(f.Add(opt, ""))

	// absent optional input passes without running validators
	r.NoError(f.SetData(map[string]any{}))
	r.NoError(f.Validate())
	r.NotContains(f.Values(), "nickname")
}

func TestBaseNestedFilter(t *testing.T) {
	r := require.New(t)
	outer := New()
	inner := New()
	r.NoError(inner.Add(emailInput(), ""))
	r.NoError(outer.Add(inner, "contact"))

	r.NoError(outer.SetData(map[string]any{
		"contact": map[string]any{"email": " a@b.io "},
	}))
	r.NoError(outer.Validate())
	r.Equal(map[string]any{"email": "a@b.io"}, outer.Values()["contact"])

	// nested failures surface under dotted keys
	r.NoError(outer.SetData(map[string]any{"contact": map[string]any{}}))
	err := outer.Validate()
	r.Error(err)
	r.Contains(outer.Messages(), "contact.email")
}

func TestBaseRejectsNonMapData(t *testing.T) {
	f := New()
	require.Error(t, f.SetData([]string{"nope"}))
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Messages: map[string][]string{
		"b": {"broken"},
		"a": {"also broken"},
	}}
	require.Equal(t, "input filter validation failed for [a b]", err.Error())
}

func TestCollectionValidatesRows(t *testing.T) {
	r := require.New(t)

	inner := New()
	r.NoError(inner.Add(emailInput(), ""))
	c := NewCollection()
	c.SetInputFilter(inner)

	r.NoError(c.SetData([]map[string]any{
		{"email": " ONE@example.com "},
		{"email": "two@example.com"},
	}))
	r.NoError(c.Validate())
	rows := c.Values()["rows"].([]map[string]any)
	r.Len(rows, 2)
	r.Equal("one@example.com", rows[0]["email"])
}

func TestCollectionRowFailures(t *testing.T) {
	r := require.New(t)

	inner := New()
	r.NoError(inner.Add(emailInput(), ""))
	c := NewCollection()
	c.SetInputFilter(inner)

	r.NoError(c.SetData([]any{
		map[string]any{"email": "good@example.com"},
		map[string]any{},
	}))
	err := c.Validate()
	r.Error(err)
	r.Contains(c.Messages(), "[1].email")
	r.NotContains(c.Messages(), "[0].email")
}

func TestCollectionMinimumCount(t *testing.T) {
	r := require.New(t)
	c := NewCollection()
	c.SetCount(2)

	r.NoError(c.SetData([]map[string]any{{}}))
	err := c.Validate()
	r.Error(err)
	r.Contains(c.Messages(), "count")
}

func TestCollectionRejectsNonSliceData(t *testing.T) {
	c := NewCollection()
	require.Error(t, c.SetData(map[string]any{}))
	require.Error(t, c.SetData([]any{"not a row"}))
}
