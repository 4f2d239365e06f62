package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coredb/coredb/internal/schema"
)

func TestGenerateAddField(t *testing.T) {
	old := schema.NewSchema("users", []schema.SchemaField{
		schema.NewSchemaField("name", schema.TypeString),
		schema.NewSchemaField("email", schema.TypeString),
	})
	updated := schema.NewSchema("users", []schema.SchemaField{
		schema.NewSchemaField("name", schema.TypeString),
		schema.NewSchemaField("email", schema.TypeString),
		schema.NewSchemaField("age", schema.TypeInt),
	})

	actions := Generate(old, updated)
	require.Len(t, actions, 1)
	assert.Equal(t, ActionAddField, actions[0].Kind)
	assert.Equal(t, "age", actions[0].Field.Name)
}

func TestGenerateRenameSchema(t *testing.T) {
	old := schema.NewSchema("person", nil)
	updated := schema.NewSchema("people", nil)

	actions := Generate(old, updated)
	require.Len(t, actions, 1)
	assert.Equal(t, ActionRenameSchema, actions[0].Kind)
	assert.Equal(t, "person", actions[0].OldName)
	assert.Equal(t, "people", actions[0].NewName)
}

func TestGenerateRemoveField(t *testing.T) {
	old := schema.NewSchema("users", []schema.SchemaField{
		schema.NewSchemaField("name", schema.TypeString),
		schema.NewSchemaField("legacy", schema.TypeString),
	})
	updated := schema.NewSchema("users", []schema.SchemaField{
		schema.NewSchemaField("name", schema.TypeString),
	})

	actions := Generate(old, updated)
	require.Len(t, actions, 1)
	assert.Equal(t, ActionRemoveField, actions[0].Kind)
	assert.Equal(t, "legacy", actions[0].FieldName)
}

func TestGenerateModifyFieldAndIndexFlip(t *testing.T) {
	old := schema.NewSchema("users", []schema.SchemaField{
		schema.NewSchemaField("age", schema.TypeInt),
	})
	newAge := schema.NewSchemaField("age", schema.TypeFloat).WithIndexed(true)
	updated := schema.NewSchema("users", []schema.SchemaField{newAge})

	actions := Generate(old, updated)
	require.Len(t, actions, 2)
	assert.Equal(t, ActionModifyField, actions[0].Kind)
	assert.Equal(t, ActionAddIndex, actions[1].Kind)
}

func TestGenerateEmissionOrder(t *testing.T) {
	old := schema.NewSchema("person", []schema.SchemaField{
		schema.NewSchemaField("name", schema.TypeString),
		schema.NewSchemaField("legacy", schema.TypeString),
		schema.NewSchemaField("age", schema.TypeInt),
	})
	newAge := schema.NewSchemaField("age", schema.TypeFloat)
	updated := schema.NewSchema("people", []schema.SchemaField{
		schema.NewSchemaField("name", schema.TypeString),
		schema.NewSchemaField("nickname", schema.TypeString),
		newAge,
	})

	actions := Generate(old, updated)
	require.Len(t, actions, 4)
	assert.Equal(t, ActionRenameSchema, actions[0].Kind)
	assert.Equal(t, ActionAddField, actions[1].Kind)
	assert.Equal(t, ActionRemoveField, actions[2].Kind)
	assert.Equal(t, ActionModifyField, actions[3].Kind)
}

func TestActionToSQL(t *testing.T) {
	field := schema.NewSchemaField("age", schema.TypeInt).WithNullable(false)
	action := Action{Kind: ActionAddField, SchemaName: "users", Field: &field}
	assert.Contains(t, action.ToSQL(), "ALTER TABLE users ADD COLUMN age BIGINT NOT NULL")
}
