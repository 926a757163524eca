package config

import (
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Validate validates an inventory file against the JSON schema. The YAML
// document is decoded into a generic value first so the schema can be applied
// to it directly.
func Validate(inventoryFile string) error {
	raw, err := os.ReadFile(inventoryFile)
	if err != nil {
		return fmt.Errorf("failed to read inventory file: %w", err)
	}

	var document interface{}
	if err := yaml.Unmarshal(raw, &document); err != nil {
		return fmt.Errorf("failed to parse inventory file: %w: %v", ErrInvalidInventory, err)
	}

	schemaLoader := gojsonschema.NewStringLoader(Schema)
	documentLoader := gojsonschema.NewGoLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate schema: %w", err)
	}

	if !result.Valid() {
		fmt.Fprintf(os.Stderr, "Inventory validation errors:\n")
		for _, desc := range result.Errors() {
			fmt.Fprintf(os.Stderr, "  - %s\n", desc)
		}
		return fmt.Errorf("inventory file is not valid: %w", ErrInvalidInventory)
	}

	return nil
}
