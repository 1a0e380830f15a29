// Package filter provides value filters and filter chains for the
// input-filtering subsystem. Filters normalize a raw value before it is
// handed to the validator chain.
package filter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Filter transforms a value. Implementations must not mutate the input.
type Filter interface {
	Filter(v any) (any, error)
}

// Func adapts a plain function to the Filter interface.
type Func func(v any) (any, error)

func (f Func) Filter(v any) (any, error) {
	return f(v)
}

// StringTrim removes leading and trailing whitespace from string values.
// Non-string values pass through unchanged.
type StringTrim struct {
	// CharList overrides the set of trimmed characters, defaulting to
	// whitespace.
	CharList string `json:"charList,omitempty"`
}

func (f *StringTrim) Filter(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return v, nil
	}
	if f.CharList != "" {
		return strings.Trim(s, f.CharList), nil
	}
	return strings.TrimSpace(s), nil
}

// StringToLower lowercases string values, passing everything else through.
type StringToLower struct{}

func (StringToLower) Filter(v any) (any, error) {
	if s, ok := v.(string); ok {
		return strings.ToLower(s), nil
	}
	return v, nil
}

// StringToUpper uppercases string values, passing everything else through.
type StringToUpper struct{}

func (StringToUpper) Filter(v any) (any, error) {
	if s, ok := v.(string); ok {
		return strings.ToUpper(s), nil
	}
	return v, nil
}

// StripNewlines removes newline characters from string values.
type StripNewlines struct{}

func (StripNewlines) Filter(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return v, nil
	}
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return s, nil
}

// ToInt converts string and float values to int64. Values that are already
// integers pass through; non-integral floats and anything unparsable are an
// error.
type ToInt struct{}

func (ToInt) Filter(v any) (any, error) {
	switch value := v.(type) {
	case int:
		return int64(value), nil
	case int64:
		return value, nil
	case float64:
		if math.IsInf(value, 0) || value != math.Trunc(value) {
			return nil, fmt.Errorf("cannot convert non-integral %v to int", value)
		}
		return int64(value), nil
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to int: %w", value, err)
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to int", v)
	}
}
