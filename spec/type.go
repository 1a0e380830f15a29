package spec

import (
	"fmt"
	"strings"
)

// Typed is any declarative spec object identified by a versioned type.
type Typed interface {
	// GetType returns the object's type and version.
	GetType() Type
	// SetType sets the object's type and version.
	SetType(Type)
	// DeepCopyTyped returns a deep copy of the object.
	DeepCopyTyped() Typed
}

// Type identifies a spec object as "kind/version", e.g. "stringTrim/v1".
// An unversioned Type is a plain kind and acts as an alias for its versioned
// form.
type Type string

// NewVersionedType builds a Type from kind and version.
func NewVersionedType(kind, version string) Type {
	return Type(fmt.Sprintf("%s/%s", kind, version))
}

// NewUnversionedType builds a Type carrying only a kind.
func NewUnversionedType(kind string) Type {
	return Type(kind)
}

// ParseType parses a "kind" or "kind/version" string.
func ParseType(s string) (Type, error) {
	parts := strings.Split(s, "/")
	switch len(parts) {
	case 1:
		if parts[0] == "" {
			return "", fmt.Errorf("invalid type %q, missing kind", s)
		}
		return NewUnversionedType(parts[0]), nil
	case 2:
		if parts[0] == "" {
			return "", fmt.Errorf("invalid type %q, missing kind", s)
		}
		if parts[1] == "" {
			return "", fmt.Errorf("invalid type %q, missing version", s)
		}
		return NewVersionedType(parts[0], parts[1]), nil
	default:
		return "", fmt.Errorf("invalid type %q, expected kind or kind/version", s)
	}
}

func (t Type) String() string {
	return string(t)
}

func (t Type) IsEmpty() bool {
	return t == ""
}

// GetKind returns the kind part of the type.
func (t Type) GetKind() string {
	return strings.Split(string(t), "/")[0]
}

// GetVersion returns the version part of the type, or "" if unversioned.
func (t Type) GetVersion() string {
	parts := strings.Split(string(t), "/")
	if len(parts) > 1 {
		return parts[1]
	}
	return ""
}

// HasVersion reports whether the type carries a version.
func (t Type) HasVersion() bool {
	return t.GetVersion() != ""
}

func (t Type) Equal(other Type) bool {
	return t == other
}
