package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringTrim(t *testing.T) {
	r := require.New(t)

	v, err := (&StringTrim{}).Filter("  hello \n")
	r.NoError(err)
	r.Equal("hello", v)

	v, err = (&StringTrim{CharList: "/"}).Filter("/path/")
	r.NoError(err)
	r.Equal("path", v)

	// non-strings pass through
	v, err = (&StringTrim{}).Filter(42)
	r.NoError(err)
	r.Equal(42, v)
}

func TestStringCaseFilters(t *testing.T) {
	r := require.New(t)

	v, err := StringToLower{}.Filter("HeLLo")
	r.NoError(err)
	r.Equal("hello", v)

	v, err = StringToUpper{}.Filter("HeLLo")
	r.NoError(err)
	r.Equal("HELLO", v)
}

func TestStripNewlines(t *testing.T) {
	v, err := StripNewlines{}.Filter("a\r\nb\nc")
	require.NoError(t, err)
	require.Equal(t, "abc", v)
}

func TestToInt(t *testing.T) {
	r := require.New(t)

	for _, tc := range []struct {
		in   any
		want int64
	}{
		{in: "42", want: 42},
		{in: " 7 ", want: 7},
		{in: 13, want: 13},
		{in: int64(9), want: 9},
		{in: float64(3), want: 3},
	} {
		v, err := ToInt{}.Filter(tc.in)
		r.NoError(err, "input %v", tc.in)
		r.Equal(tc.want, v, "input %v", tc.in)
	}

	_, err := ToInt{}.Filter("nope")
	r.Error(err)
	_, err = ToInt{}.Filter([]string{})
	r.Error(err)
	_, err = ToInt{}.Filter(3.9)
	r.Error(err)
	_, err = ToInt{}.Filter(math.Inf(1))
	r.Error(err)
}

func TestChainAppliesInOrder(t *testing.T) {
	r := require.New(t)

	c := NewChain(&StringTrim{}, StringToUpper{})
	r.Equal(2, c.Len())

	v, err := c.Filter("  shout  ")
	r.NoError(err)
	r.Equal("SHOUT", v)
}

func TestChainStopsOnError(t *testing.T) {
	c := NewChain(ToInt{}, Func(func(v any) (any, error) {
		t.Fatal("must not run after a failing filter")
		return v, nil
	}))
	_, err := c.Filter("nope")
	require.Error(t, err)
}

func TestRegistryConstructsByName(t *testing.T) {
	r := require.New(t)

	f, err := Default.New("stringTrim", map[string]any{"charList": "-"})
	r.NoError(err)
	v, err := f.Filter("-x-")
	r.NoError(err)
	r.Equal("x", v)

	// versioned and unversioned names hit the same constructor
	r.True(Default.Has("stringTrim"))
	r.True(Default.Has("stringTrim/v1"))
	_, err = Default.New("stringTrim/v1", nil)
	r.NoError(err)
}

func TestRegistryUnknownType(t *testing.T) {
	_, err := Default.New("noSuchFilter", nil)
	require.ErrorContains(t, err, "unsupported filter type")
}

func TestRegistryRejectsUnknownOptions(t *testing.T) {
	_, err := Default.New("stringTrim", map[string]any{"bogus": true})
	require.Error(t, err)
}

func TestRegistryDuplicateRegistration(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("custom", func(map[string]any) (Filter, error) {
		return StringToLower{}, nil
	}))
	require.Error(t, reg.Register("custom", func(map[string]any) (Filter, error) {
		return StringToLower{}, nil
	}))
}

func TestRegistryClone(t *testing.T) {
	r := require.New(t)

	clone := Default.Clone()
	clone.MustRegister("extra", func(map[string]any) (Filter, error) {
		return StringToLower{}, nil
	})
	r.True(clone.Has("extra"))
	r.False(Default.Has("extra"))
	r.True(clone.Has("stringTrim"))
}
