// Package migrate compares two schema.Schema values and synthesizes the
// ordered, rule-based migration actions that transform one into the
// other, plus a deterministic risk estimate.
//
// Grounded on original_source's schema/migration.rs (MigrationGenerator)
// and ai/migration_suggest.rs (risk table), per SPEC_FULL.md §4.7.
package migrate

import (
	"fmt"

	"github.com/coredb/coredb/internal/model"
	"github.com/coredb/coredb/internal/schema"
)

// ActionKind discriminates a MigrationAction.
type ActionKind string

const (
	ActionCreateSchema ActionKind = "create_schema"
	ActionDropSchema   ActionKind = "drop_schema"
	ActionAddField     ActionKind = "add_field"
	ActionRemoveField  ActionKind = "remove_field"
	ActionModifyField  ActionKind = "modify_field"
	ActionRenameField  ActionKind = "rename_field"
	ActionRenameSchema ActionKind = "rename_schema"
	ActionAddIndex     ActionKind = "add_index"
	ActionRemoveIndex  ActionKind = "remove_index"
	ActionRawSQL       ActionKind = "raw_sql"
)

// Action is a single migration step. Only the fields relevant to Kind
// are populated.
type Action struct {
	Kind       ActionKind      `json:"kind"`
	Schema     *schema.Schema  `json:"schema,omitempty"`
	SchemaName string          `json:"schema_name,omitempty"`
	Field      *schema.SchemaField `json:"field,omitempty"`
	OldField   *schema.SchemaField `json:"old_field,omitempty"`
	NewField   *schema.SchemaField `json:"new_field,omitempty"`
	FieldName  string          `json:"field_name,omitempty"`
	OldName    string          `json:"old_name,omitempty"`
	NewName    string          `json:"new_name,omitempty"`
	Unique     bool            `json:"unique,omitempty"`
	SQL        string          `json:"sql,omitempty"`
}

// ToSQL renders the reference SQL statement for this action, for
// diagnostics only; nothing in coredb executes it.
func (a Action) ToSQL() string {
	switch a.Kind {
	case ActionCreateSchema:
		if a.Schema == nil {
			return ""
		}
		return a.Schema.ToSQL()
	case ActionDropSchema:
		return fmt.Sprintf("DROP TABLE IF EXISTS %s", a.SchemaName)
	case ActionAddField:
		sql := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", a.SchemaName, a.Field.Name, a.Field.Type.SQLType())
		if !a.Field.Nullable {
			sql += " NOT NULL"
		}
		if a.Field.Default != nil {
			sql += " DEFAULT " + *a.Field.Default
		}
		return sql
	case ActionRemoveField:
		return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", a.SchemaName, a.FieldName)
	case ActionModifyField:
		return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s", a.SchemaName, a.NewField.Name, a.NewField.Type.SQLType())
	case ActionRenameField:
		return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", a.SchemaName, a.OldName, a.NewName)
	case ActionRenameSchema:
		return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", a.OldName, a.NewName)
	case ActionAddIndex:
		indexType := "INDEX"
		if a.Unique {
			indexType = "UNIQUE INDEX"
		}
		return fmt.Sprintf("CREATE %s %s_%s_idx ON %s (%s)", indexType, a.SchemaName, a.FieldName, a.SchemaName, a.FieldName)
	case ActionRemoveIndex:
		return fmt.Sprintf("DROP INDEX IF EXISTS %s_%s_idx", a.SchemaName, a.FieldName)
	case ActionRawSQL:
		return a.SQL
	default:
		return ""
	}
}

// Migration is a named, ordered set of actions with apply-state tracking.
type Migration struct {
	ID          string    `json:"id"`
	Version     uint32    `json:"version"`
	Description string    `json:"description"`
	Actions     []Action  `json:"actions"`
	CreatedAt   int64     `json:"created_at"`
	Applied     bool      `json:"applied"`
	AppliedAt   *int64    `json:"applied_at,omitempty"`
}

// NewMigration builds a Pending migration at version 1.
func NewMigration(description string, actions []Action) *Migration {
	return &Migration{
		ID:          model.NewNodeID().String(),
		Version:     1,
		Description: description,
		Actions:     actions,
		CreatedAt:   int64(model.Now()),
	}
}

// Apply transitions the migration to Applied. Re-applying an already
// Applied migration is a no-op, matching the one-way state machine.
func (m *Migration) Apply() {
	if m.Applied {
		return
	}
	now := int64(model.Now())
	m.Applied = true
	m.AppliedAt = &now
}
