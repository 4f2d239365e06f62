package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coredb/coredb/internal/model"
)

func TestEncodeDecodeNodeRoundTrips(t *testing.T) {
	n := model.NewNode("Person", nil)
	data, err := encodeNode(n)
	require.NoError(t, err)

	got, err := decodeNode(data)
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.ID)
	assert.Equal(t, n.Type, got.Type)
}

func TestDecodeNodeRejectsFlippedByte(t *testing.T) {
	n := model.NewNode("Person", nil)
	data, err := encodeNode(n)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF

	_, err = decodeNode(data)
	assert.ErrorIs(t, err, ErrCorrupted)
}

func TestDecodeNodeRejectsTruncatedRecord(t *testing.T) {
	_, err := decodeNode([]byte{0x01})
	assert.ErrorIs(t, err, ErrCorrupted)
}

func TestEncodeDecodeEdgeRoundTrips(t *testing.T) {
	from := model.NewNode("Person", nil)
	to := model.NewNode("Person", nil)
	e := model.NewEdge(from.ID, to.ID, "KNOWS", nil)

	data, err := encodeEdge(e)
	require.NoError(t, err)

	got, err := decodeEdge(data)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, e.Type, got.Type)
}

func TestDecodeEdgeRejectsFlippedByte(t *testing.T) {
	from := model.NewNode("Person", nil)
	to := model.NewNode("Person", nil)
	e := model.NewEdge(from.ID, to.ID, "KNOWS", nil)

	data, err := encodeEdge(e)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF

	_, err = decodeEdge(data)
	assert.ErrorIs(t, err, ErrCorrupted)
}
