package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// schemaBundle is the top-level document shape for an exported schema
// file: a list so a single export can carry the whole registry, not
// just one schema.
type schemaBundle struct {
	Schemas []*Schema `yaml:"schemas"`
}

// ExportYAML renders schemas as a single YAML document, suitable for
// checking into version control or replaying with ImportYAML.
func ExportYAML(schemas []*Schema) ([]byte, error) {
	return yaml.Marshal(schemaBundle{Schemas: schemas})
}

// ImportYAML parses a document produced by ExportYAML.
func ImportYAML(data []byte) ([]*Schema, error) {
	var bundle schemaBundle
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSchemaRecord, err)
	}
	return bundle.Schemas, nil
}

// ExportSchemas renders every registered schema as a YAML document.
func (m *Manager) ExportSchemas() ([]byte, error) {
	schemas, err := m.ListSchemas()
	if err != nil {
		return nil, err
	}
	return ExportYAML(schemas)
}

// ImportSchemas parses data and persists each schema it contains,
// updating any schema already registered under the same name.
func (m *Manager) ImportSchemas(data []byte) ([]*Schema, error) {
	schemas, err := ImportYAML(data)
	if err != nil {
		return nil, err
	}
	for _, s := range schemas {
		if err := m.saveSchema(s); err != nil {
			return nil, err
		}
	}
	return schemas, nil
}
