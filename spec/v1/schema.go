package v1

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	stjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"sigs.k8s.io/yaml"
)

// GetJSONSchema generates the JSON schema for the v1 input filter document.
func GetJSONSchema() ([]byte, error) {
	return generateSchema(&InputFilter{})
}

// GetCollectionJSONSchema generates the JSON schema for the v1 collection
// document.
func GetCollectionJSONSchema() ([]byte, error) {
	return generateSchema(&Collection{})
}

func generateSchema(prototype any) ([]byte, error) {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		Anonymous:      true,
	}
	schema := reflector.Reflect(prototype)
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document schema: %w", err)
	}
	return data, nil
}

// ValidateDocument checks a raw YAML/JSON input filter document against the
// generated v1 schema before it is handed to the factory.
func ValidateDocument(document []byte) error {
	schemaData, err := GetJSONSchema()
	if err != nil {
		return err
	}
	return validateDocument(schemaData, document)
}

// ValidateCollectionDocument checks a raw YAML/JSON collection document
// against the generated v1 collection schema.
func ValidateCollectionDocument(document []byte) error {
	schemaData, err := GetCollectionJSONSchema()
	if err != nil {
		return err
	}
	return validateDocument(schemaData, document)
}

func validateDocument(schemaData, document []byte) error {
	schemaJSON, err := stjsonschema.UnmarshalJSON(bytes.NewReader(schemaData))
	if err != nil {
		return fmt.Errorf("failed to parse input filter schema: %w", err)
	}
	compiler := stjsonschema.NewCompiler()
	if err := compiler.AddResource("inputfilter.schema.json", schemaJSON); err != nil {
		return fmt.Errorf("failed to add input filter schema resource: %w", err)
	}
	schema, err := compiler.Compile("inputfilter.schema.json")
	if err != nil {
		return fmt.Errorf("failed to compile input filter schema: %w", err)
	}

	documentJSON, err := yaml.YAMLToJSON(document)
	if err != nil {
		return fmt.Errorf("failed to convert input filter document to JSON: %w", err)
	}
	doc, err := stjsonschema.UnmarshalJSON(bytes.NewReader(documentJSON))
	if err != nil {
		return fmt.Errorf("failed to parse input filter document: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("input filter document is invalid: %w", err)
	}
	return nil
}
