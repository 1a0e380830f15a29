// Package validator provides value validators and validator chains for the
// input-filtering subsystem.
package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"unicode/utf8"

	"github.com/gobwas/glob"
)

// Validator checks a single (already filtered) value.
type Validator interface {
	// Validate returns nil if v is acceptable, an error describing the
	// failure otherwise.
	Validate(v any) error
}

// Func adapts a plain function to the Validator interface.
type Func func(v any) error

func (f Func) Validate(v any) error {
	return f(v)
}

// IsEmpty reports whether a value counts as empty for the purpose of
// required-input handling: nil, "", empty slices and empty maps.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch value := v.(type) {
	case string:
		return value == ""
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Map, reflect.Array:
			return rv.Len() == 0
		default:
			return false
		}
	}
}

// NotEmpty fails for empty values as defined by IsEmpty.
type NotEmpty struct{}

func (NotEmpty) Validate(v any) error {
	if IsEmpty(v) {
		return fmt.Errorf("value is required and can't be empty")
	}
	return nil
}

// StringLength checks that a string value's rune count lies within
// [Min, Max]. Max of 0 means unbounded.
type StringLength struct {
	Min int `json:"min,omitempty"`
	Max int `json:"max,omitempty"`
}

func (l *StringLength) Validate(v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("expected a string, got %T", v)
	}
	n := utf8.RuneCountInString(s)
	if n < l.Min {
		return fmt.Errorf("value is less than %d characters long", l.Min)
	}
	if l.Max > 0 && n > l.Max {
		return fmt.Errorf("value is more than %d characters long", l.Max)
	}
	return nil
}

// Regex checks a string value against an anchored regular expression.
type Regex struct {
	Pattern string `json:"pattern"`

	compiled *regexp.Regexp
}

// NewRegex compiles the pattern eagerly so construction fails fast.
func NewRegex(pattern string) (*Regex, error) {
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
	}
	return &Regex{Pattern: pattern, compiled: compiled}, nil
}

func (r *Regex) Validate(v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("expected a string, got %T", v)
	}
	if r.compiled == nil {
		compiled, err := regexp.Compile(r.Pattern)
		if err != nil {
			return fmt.Errorf("invalid regex pattern %q: %w", r.Pattern, err)
		}
		r.compiled = compiled
	}
	if !r.compiled.MatchString(s) {
		return fmt.Errorf("value does not match pattern %q", r.Pattern)
	}
	return nil
}

// Glob checks a string value against a glob pattern.
type Glob struct {
	Pattern string `json:"pattern"`

	compiled glob.Glob
}

// NewGlob compiles the pattern eagerly so construction fails fast.
func NewGlob(pattern string) (*Glob, error) {
	compiled, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	return &Glob{Pattern: pattern, compiled: compiled}, nil
}

func (g *Glob) Validate(v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("expected a string, got %T", v)
	}
	if g.compiled == nil {
		compiled, err := glob.Compile(g.Pattern)
		if err != nil {
			return fmt.Errorf("invalid glob pattern %q: %w", g.Pattern, err)
		}
		g.compiled = compiled
	}
	if !g.compiled.Match(s) {
		return fmt.Errorf("value does not match pattern %q", g.Pattern)
	}
	return nil
}

// InList checks that the value equals one of the allowed entries.
type InList struct {
	List []any `json:"list"`
}

func (l *InList) Validate(v any) error {
	for _, allowed := range l.List {
		if reflect.DeepEqual(v, allowed) {
			return nil
		}
	}
	return fmt.Errorf("value %v is not in the allowed list", v)
}
