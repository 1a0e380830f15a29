package validator

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// JSONSchema validates a value against a compiled JSON schema. The value is
// round-tripped through JSON so arbitrary Go values can be checked.
type JSONSchema struct {
	schema *jsonschema.Schema
}

// NewJSONSchema compiles the given JSON schema document.
func NewJSONSchema(schema []byte) (*JSONSchema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("value.schema.json", doc); err != nil {
		return nil, fmt.Errorf("failed to add JSON schema resource: %w", err)
	}
	compiled, err := compiler.Compile("value.schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile JSON schema: %w", err)
	}
	return &JSONSchema{schema: compiled}, nil
}

func (j *JSONSchema) Validate(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("value is not JSON-encodable: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("could not parse value as JSON: %w", err)
	}
	if err := j.schema.Validate(doc); err != nil {
		return fmt.Errorf("value does not conform to schema: %w", err)
	}
	return nil
}
