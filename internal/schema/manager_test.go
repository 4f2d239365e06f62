package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coredb/coredb/internal/kv"
	"github.com/coredb/coredb/internal/model"
)

func TestManagerCreateAndGetSchema(t *testing.T) {
	m := NewManager(kv.NewMemoryEngine())

	s, err := m.CreateSchema("users", "name:string:required,email:string:unique")
	require.NoError(t, err)
	assert.Equal(t, "users", s.Name)

	got, err := m.GetSchema("users")
	require.NoError(t, err)
	assert.Equal(t, s.Name, got.Name)
	assert.Len(t, got.Fields, 2)
}

func TestManagerCreateSchemaUpdatesExisting(t *testing.T) {
	m := NewManager(kv.NewMemoryEngine())

	_, err := m.CreateSchema("users", "name:string")
	require.NoError(t, err)
	_, err = m.CreateSchema("users", "name:string,age:int")
	require.NoError(t, err)

	schemas, err := m.ListSchemas()
	require.NoError(t, err)
	require.Len(t, schemas, 1)
	assert.Len(t, schemas[0].Fields, 2)
}

func TestManagerGetSchemaNotFound(t *testing.T) {
	m := NewManager(kv.NewMemoryEngine())
	_, err := m.GetSchema("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManagerDropSchemaRefusesWithData(t *testing.T) {
	engine := kv.NewMemoryEngine()
	m := NewManager(engine)

	_, err := m.CreateSchema("users", "name:string")
	require.NoError(t, err)
	require.NoError(t, engine.CreateNode(model.NewNode("users", nil)))

	err = m.DropSchema("users", false)
	assert.ErrorIs(t, err, ErrInUse)

	require.NoError(t, m.DropSchema("users", true))
	_, err = m.GetSchema("users")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManagerListSchemasReportsCorruptRecord(t *testing.T) {
	engine := kv.NewMemoryEngine()
	m := NewManager(engine)

	props := model.NewObject()
	props.Set("name", model.String("users"))
	props.Set("schema_data", model.Bytes([]byte("not json")))
	require.NoError(t, engine.CreateNode(model.NewNode(SchemaNodeType, props)))

	_, err := m.ListSchemas()
	assert.ErrorIs(t, err, ErrCorruptSchemaRecord)

	_, err = m.GetSchema("users")
	assert.ErrorIs(t, err, ErrCorruptSchemaRecord)
}

func TestManagerCreateRelationship(t *testing.T) {
	m := NewManager(kv.NewMemoryEngine())

	rel, err := m.CreateRelationship("users", "posts", "has_many", "authored")
	require.NoError(t, err)
	assert.Equal(t, HasMany, rel.Kind)
	assert.Equal(t, "users_posts", rel.EdgeType)
}
