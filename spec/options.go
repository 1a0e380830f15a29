package spec

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// DecodeOptions decodes a generic options map (as produced by YAML or JSON
// unmarshalling of a spec document) into a typed options struct.
func DecodeOptions(options map[string]any, into any) error {
	if len(options) == 0 {
		return nil
	}
	data, err := yaml.Marshal(options)
	if err != nil {
		return fmt.Errorf("could not marshal options: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, into); err != nil {
		return fmt.Errorf("could not decode options into %T: %w", into, err)
	}
	return nil
}
