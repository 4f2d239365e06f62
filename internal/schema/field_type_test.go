package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coredb/coredb/internal/model"
)

func TestParseFieldTypePrimitives(t *testing.T) {
	assert.Equal(t, TypeString, ParseFieldType("string"))
	assert.Equal(t, TypeInt, ParseFieldType("integer"))
	assert.Equal(t, TypeBool, ParseFieldType("boolean"))
	assert.Equal(t, TypeUUID, ParseFieldType("id"))
	// Unrecognized primitives fall back to String.
	assert.Equal(t, TypeString, ParseFieldType("mystery"))
}

func TestParseFieldTypeEnum(t *testing.T) {
	ft := ParseFieldType("enum(pending,active,inactive)")
	assert.Equal(t, KindEnum, ft.Kind)
	assert.Equal(t, []string{"pending", "active", "inactive"}, ft.EnumValues)
}

func TestParseFieldTypeArray(t *testing.T) {
	ft := ParseFieldType("array<int>")
	assert.Equal(t, KindArray, ft.Kind)
	assert.Equal(t, KindInt, ft.Elem.Kind)
}

func TestParseFieldTypeReference(t *testing.T) {
	ft := ParseFieldType("ref:Person")
	assert.Equal(t, KindReference, ft.Kind)
	assert.Equal(t, "Person", ft.Reference)

	ft2 := ParseFieldType("reference:Company")
	assert.Equal(t, "Company", ft2.Reference)
}

func TestFieldTypeStringRoundTrip(t *testing.T) {
	for _, s := range []string{"string", "int", "enum(a,b)", "array<float>", "ref:Thing"} {
		ft := ParseFieldType(s)
		assert.Equal(t, s, ft.String())
	}
}

func TestFieldTypeMatches(t *testing.T) {
	assert.True(t, TypeString.Matches(model.Null))
	assert.True(t, TypeString.Matches(model.String("hi")))
	assert.False(t, TypeString.Matches(model.Int(1)))

	assert.True(t, TypeFloat.Matches(model.Int(3)))
	assert.True(t, TypeFloat.Matches(model.Float(3.5)))

	enumType := Enum("pending", "active")
	assert.True(t, enumType.Matches(model.String("pending")))
	assert.False(t, enumType.Matches(model.String("archived")))

	arrType := Array(TypeInt)
	assert.True(t, arrType.Matches(model.Array([]model.Value{model.Int(1), model.Int(2)})))
	assert.False(t, arrType.Matches(model.Array([]model.Value{model.String("x")})))

	id := model.NewNodeID()
	assert.True(t, TypeUUID.Matches(model.String(id.String())))
	assert.False(t, TypeUUID.Matches(model.String("not-a-uuid")))
}
