package v1

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filterware/inputfilter/spec"
)

func TestGetJSONSchema(t *testing.T) {
	schema, err := GetJSONSchema()
	require.NoError(t, err)
	require.Contains(t, string(schema), `"inputs"`)
}

func TestValidateDocument(t *testing.T) {
	r := require.New(t)

	r.NoError(ValidateDocument([]byte(`
type: inputFilter/v1
inputs:
  - name: email
    required: true
    validators:
      - type: notEmpty
`)))

	// inputs must be a list
	r.Error(ValidateDocument([]byte(`
type: inputFilter/v1
inputs: notalist
`)))

	r.Error(ValidateDocument([]byte(`{"type": 42, "inputs": []}`)))
}

func TestValidateCollectionDocument(t *testing.T) {
	r := require.New(t)

	r.NoError(ValidateCollectionDocument([]byte(`
type: collection/v1
count: 2
inputFilter:
  inputs:
    - name: name
      required: true
`)))

	// unknown keys inside the embedded filter are rejected
	r.Error(ValidateCollectionDocument([]byte(`
type: collection/v1
inputFilter:
  imputs:
    - name: name
`)))

	// the embedded filter is mandatory
	r.Error(ValidateCollectionDocument([]byte(`
type: collection/v1
count: 2
`)))
}

func TestSchemeRegistersAliases(t *testing.T) {
	r := require.New(t)

	for _, typ := range []spec.Type{
		spec.NewVersionedType(InputFilterType, Version),
		spec.NewUnversionedType(InputFilterType),
		spec.NewVersionedType(CollectionType, Version),
		spec.NewUnversionedType(CollectionType),
	} {
		r.True(Scheme.IsRegistered(typ), "type %q", typ)
	}
}

func TestDeepCopy(t *testing.T) {
	r := require.New(t)

	original := &InputFilter{
		Type: spec.NewVersionedType(InputFilterType, Version),
		Inputs: []Input{{
			Name:    "email",
			Filters: []Component{{Type: "stringTrim", Options: map[string]any{"charList": "-"}}},
		}},
	}
	clone := original.DeepCopyTyped().(*InputFilter)
	clone.Inputs[0].Name = "changed"
	clone.Inputs[0].Filters[0].Options["charList"] = "+"

	r.Equal("email", original.Inputs[0].Name)
	r.Equal("-", original.Inputs[0].Filters[0].Options["charList"])
}
