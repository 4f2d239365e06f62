// Package schema implements the typed schema registry: field-descriptor
// schemas and relations persisted as reserved-type nodes, grammar-based
// field parsing, and property validation against a schema.
//
// Grounded on nornicdb/pkg/storage/schema.go for the manager shape
// (thread-safe, backed by the store) and on the original aresadb
// schema/registry.rs for the field grammar and validation rules.
package schema

import "errors"

var (
	// ErrNotFound is returned when a named schema does not exist.
	ErrNotFound = errors.New("schema: not found")
	// ErrInUse is returned by Drop when the schema has live data and force
	// was not requested.
	ErrInUse = errors.New("schema: in use, pass force to drop anyway")
	// ErrInvalidFieldGrammar is returned when a field definition string
	// cannot be parsed.
	ErrInvalidFieldGrammar = errors.New("schema: invalid field definition")
	// ErrUnknownRelationType is returned for an unrecognized relation kind.
	ErrUnknownRelationType = errors.New("schema: unknown relation type")
	// ErrCorruptSchemaRecord is returned when a stored schema node's
	// schema_data property cannot be decoded.
	ErrCorruptSchemaRecord = errors.New("schema: corrupt schema record")
)
