package schema

import "strings"

// ParseFields parses a comma-separated list of "name:type[:modifier]*"
// field definitions. Recognized modifiers: unique, required/notnull
// (clears Nullable), indexed/index. An empty definition is skipped;
// defs with no usable name return ErrInvalidFieldGrammar.
func ParseFields(fieldsStr string) ([]SchemaField, error) {
	var fields []SchemaField

	for _, def := range strings.Split(fieldsStr, ",") {
		def = strings.TrimSpace(def)
		if def == "" {
			continue
		}

		parts := strings.Split(def, ":")
		name := strings.TrimSpace(parts[0])
		if name == "" {
			return nil, ErrInvalidFieldGrammar
		}

		fieldType := TypeString
		modIdx := 2
		if len(parts) > 1 {
			typeTok := strings.TrimSpace(parts[1])
			// "ref:target" / "reference:target" spans two colon-separated
			// parts; reassemble them before the rest are read as modifiers.
			if low := strings.ToLower(typeTok); (low == "ref" || low == "reference") && len(parts) > 2 {
				typeTok = typeTok + ":" + strings.TrimSpace(parts[2])
				modIdx = 3
			}
			fieldType = ParseFieldType(typeTok)
		}

		field := NewSchemaField(name, fieldType)
		if modIdx > len(parts) {
			modIdx = len(parts)
		}
		for _, mod := range parts[modIdx:] {
			switch strings.ToLower(strings.TrimSpace(mod)) {
			case "unique":
				field.Unique = true
			case "required", "notnull":
				field.Nullable = false
			case "indexed", "index":
				field.Indexed = true
			}
		}

		fields = append(fields, field)
	}

	return fields, nil
}
