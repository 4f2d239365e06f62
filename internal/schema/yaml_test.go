package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coredb/coredb/internal/kv"
)

func TestExportImportYAMLRoundTrips(t *testing.T) {
	fields, err := ParseFields("name:string:required, email:string:unique, tags:array<string>")
	require.NoError(t, err)
	s := NewSchema("users", fields)

	data, err := ExportYAML([]*Schema{s})
	require.NoError(t, err)

	got, err := ImportYAML(data)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, s.Name, got[0].Name)
	require.Len(t, got[0].Fields, 3)
	assert.Equal(t, "email", got[0].Fields[1].Name)
	assert.True(t, got[0].Fields[1].Unique)
	assert.Equal(t, TypeString, got[0].Fields[0].Type)
	assert.Equal(t, Array(TypeString), got[0].Fields[2].Type)
}

func TestImportYAMLRejectsMalformedDocument(t *testing.T) {
	_, err := ImportYAML([]byte("not: [valid"))
	assert.ErrorIs(t, err, ErrCorruptSchemaRecord)
}

func TestManagerExportImportSchemas(t *testing.T) {
	engine := kv.NewMemoryEngine()
	m := NewManager(engine)

	_, err := m.CreateSchema("users", "name:string:required,age:int")
	require.NoError(t, err)

	data, err := m.ExportSchemas()
	require.NoError(t, err)

	other := NewManager(kv.NewMemoryEngine())
	imported, err := other.ImportSchemas(data)
	require.NoError(t, err)
	require.Len(t, imported, 1)

	got, err := other.GetSchema("users")
	require.NoError(t, err)
	assert.Equal(t, "users", got.Name)
	assert.Len(t, got.Fields, 2)
}
