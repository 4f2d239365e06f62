package schema

import (
	"fmt"

	"github.com/coredb/coredb/internal/model"
)

// SchemaField is a single field descriptor in a Schema.
type SchemaField struct {
	Name        string    `json:"name" yaml:"name"`
	Type        FieldType `json:"type" yaml:"type"`
	Nullable    bool      `json:"nullable" yaml:"nullable"`
	Unique      bool      `json:"unique" yaml:"unique"`
	Indexed     bool      `json:"indexed" yaml:"indexed"`
	Default     *string   `json:"default,omitempty" yaml:"default,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
}

// NewSchemaField builds a field descriptor, nullable by default.
func NewSchemaField(name string, t FieldType) SchemaField {
	return SchemaField{Name: name, Type: t, Nullable: true}
}

// WithNullable returns a copy with Nullable set.
func (f SchemaField) WithNullable(nullable bool) SchemaField {
	f.Nullable = nullable
	return f
}

// WithUnique returns a copy with Unique set.
func (f SchemaField) WithUnique(unique bool) SchemaField {
	f.Unique = unique
	return f
}

// WithIndexed returns a copy with Indexed set.
func (f SchemaField) WithIndexed(indexed bool) SchemaField {
	f.Indexed = indexed
	return f
}

// WithDefault returns a copy carrying a literal default value.
func (f SchemaField) WithDefault(def string) SchemaField {
	f.Default = &def
	return f
}

// Schema is a named collection of field descriptors, versioned for
// migration tracking.
type Schema struct {
	Name      string        `json:"name" yaml:"name"`
	Fields    []SchemaField `json:"fields" yaml:"fields"`
	Version   uint32        `json:"version" yaml:"version"`
	CreatedAt int64         `json:"created_at" yaml:"created_at"`
	UpdatedAt int64         `json:"updated_at" yaml:"updated_at"`
}

// NewSchema builds a fresh schema at version 1, timestamped now.
func NewSchema(name string, fields []SchemaField) *Schema {
	now := int64(model.Now())
	return &Schema{
		Name:      name,
		Fields:    fields,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetField returns the field named name, if present.
func (s *Schema) GetField(name string) (*SchemaField, bool) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// IndexedFields returns every field flagged indexed or unique.
func (s *Schema) IndexedFields() []SchemaField {
	var out []SchemaField
	for _, f := range s.Fields {
		if f.Indexed || f.Unique {
			out = append(out, f)
		}
	}
	return out
}

// RequiredFields returns every non-nullable field.
func (s *Schema) RequiredFields() []SchemaField {
	var out []SchemaField
	for _, f := range s.Fields {
		if !f.Nullable {
			out = append(out, f)
		}
	}
	return out
}

// Validate checks properties against the schema's fields, returning every
// violation found (missing required fields, type mismatches). A nil
// result means properties satisfy the schema.
func (s *Schema) Validate(properties *model.Object) []string {
	var errs []string
	if properties == nil {
		properties = model.NewObject()
	}

	for _, field := range s.Fields {
		if !field.Nullable {
			if _, ok := properties.Get(field.Name); !ok {
				errs = append(errs, fmt.Sprintf("missing required field: %s", field.Name))
			}
		}
	}

	for _, key := range properties.Keys() {
		field, ok := s.GetField(key)
		if !ok {
			continue
		}
		value, _ := properties.Get(key)
		if !field.Type.Matches(value) {
			errs = append(errs, fmt.Sprintf("field %q type mismatch: expected %s, got %s", key, field.Type, value.Kind()))
		}
	}

	return errs
}

// ToSQL renders a reference CREATE TABLE statement for the schema; not
// executed anywhere, kept for parity with the grounding source's
// diagnostic output.
func (s *Schema) ToSQL() string {
	columns := []string{"id UUID PRIMARY KEY"}
	for _, f := range s.Fields {
		col := fmt.Sprintf("%s %s", f.Name, f.Type.SQLType())
		if !f.Nullable {
			col += " NOT NULL"
		}
		if f.Unique {
			col += " UNIQUE"
		}
		if f.Default != nil {
			col += " DEFAULT " + *f.Default
		}
		columns = append(columns, col)
	}
	columns = append(columns, "created_at TIMESTAMP NOT NULL DEFAULT NOW()")
	columns = append(columns, "updated_at TIMESTAMP NOT NULL DEFAULT NOW()")

	sql := fmt.Sprintf("CREATE TABLE %s (\n", s.Name)
	for i, c := range columns {
		sql += "  " + c
		if i < len(columns)-1 {
			sql += ","
		}
		sql += "\n"
	}
	sql += ");"
	return sql
}

// RelationType is the kind of a schema relationship.
type RelationType string

const (
	HasOne     RelationType = "has_one"
	HasMany    RelationType = "has_many"
	BelongsTo  RelationType = "belongs_to"
	ManyToMany RelationType = "many_to_many"
)

// ParseRelationType maps user-facing relation-type spellings onto a
// RelationType, accepting both snake_case and mashed-together forms.
func ParseRelationType(s string) (RelationType, error) {
	switch s {
	case "has_one", "hasone":
		return HasOne, nil
	case "has_many", "hasmany":
		return HasMany, nil
	case "belongs_to", "belongsto":
		return BelongsTo, nil
	case "many_to_many", "manytomany":
		return ManyToMany, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRelationType, s)
	}
}

// SchemaRelation is a named relationship between two schemas.
type SchemaRelation struct {
	FromSchema string       `json:"from_schema"`
	ToSchema   string       `json:"to_schema"`
	Kind       RelationType `json:"relation_type"`
	Alias      string       `json:"alias,omitempty"`
	EdgeType   string       `json:"edge_type"`
}
