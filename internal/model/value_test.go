package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueEqualByKind(t *testing.T) {
	assert.True(t, Null.Equal(Null))
	assert.True(t, Int(5).Equal(Int(5)))
	assert.False(t, Int(5).Equal(Int(6)))
	assert.False(t, Int(5).Equal(Float(5)))
	assert.True(t, String("a").Equal(String("a")))
	assert.True(t, Bytes([]byte("abc")).Equal(Bytes([]byte("abc"))))
	assert.True(t, Array([]Value{Int(1), Int(2)}).Equal(Array([]Value{Int(1), Int(2)})))
	assert.False(t, Array([]Value{Int(1)}).Equal(Array([]Value{Int(1), Int(2)})))
}

func TestObjectDeterministicKeyOrder(t *testing.T) {
	obj := NewObject()
	obj.Set("zebra", Int(1))
	obj.Set("apple", Int(2))
	obj.Set("mango", Int(3))

	assert.Equal(t, []string{"apple", "mango", "zebra"}, obj.Keys())
}

func TestObjectMergeOverwrites(t *testing.T) {
	base := NewObject()
	base.Set("a", Int(1))
	base.Set("b", Int(2))

	patch := NewObject()
	patch.Set("b", Int(20))
	patch.Set("c", Int(3))

	base.Merge(patch)

	v, ok := base.Get("b")
	require.True(t, ok)
	assert.Equal(t, int64(20), valInt(v))

	v, ok = base.Get("c")
	require.True(t, ok)
	assert.Equal(t, int64(3), valInt(v))
}

func valInt(v Value) int64 {
	i, _ := v.AsInt()
	return i
}

func TestValueJSONRoundTripLossless(t *testing.T) {
	obj := NewObject()
	obj.Set("name", String("ada"))
	obj.Set("age", Int(42))
	obj.Set("score", Float(3.5))
	obj.Set("active", Bool(true))
	obj.Set("tags", Array([]Value{String("x"), String("y")}))
	obj.Set("nothing", Null)
	original := ObjectValue(obj)

	data, err := original.MarshalJSON()
	require.NoError(t, err)

	var decoded Value
	require.NoError(t, decoded.UnmarshalJSON(data))

	assert.True(t, original.Equal(decoded), "expected %+v to equal %+v", original, decoded)
}

func TestValueJSONBytesRoundTripThroughBase64(t *testing.T) {
	original := Bytes([]byte{0x00, 0x01, 0xFF, 0x10})

	data, err := original.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"AAH/EA=="`, string(data))

	// Bytes decode back as String (base64 form) since JSON has no byte
	// type of its own; only a schema-aware caller can recover Bytes.
	var decoded Value
	require.NoError(t, decoded.UnmarshalJSON(data))
	s, ok := decoded.AsString()
	require.True(t, ok)
	assert.Equal(t, "AAH/EA==", s)
}

func TestFromJSONIntVsFloat(t *testing.T) {
	v, err := ParseJSON([]byte(`42`))
	require.NoError(t, err)
	assert.Equal(t, KindInt, v.Kind())

	v, err = ParseJSON([]byte(`42.5`))
	require.NoError(t, err)
	assert.Equal(t, KindFloat, v.Kind())
}
