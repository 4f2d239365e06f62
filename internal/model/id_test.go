package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeIDRoundTrip(t *testing.T) {
	id := NewNodeID()
	s := id.String()
	assert.Len(t, s, 36)

	parsed, err := ParseNodeID(s)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestParseNodeIDWithPrefix(t *testing.T) {
	id := NewNodeID()
	bare := id.String()

	for _, prefixed := range []string{"node:" + bare, "node/" + bare} {
		parsed, err := ParseNodeID(prefixed)
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	}
}

func TestParseNodeIDInvalid(t *testing.T) {
	tests := []string{"", "not-an-id", "node:short-hex", "node:" + "zz000000-0000-0000-0000-000000000000"}
	for _, in := range tests {
		_, err := ParseNodeID(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestEdgeIDRoundTrip(t *testing.T) {
	id := NewEdgeID()
	parsed, err := ParseEdgeID("edge:" + id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestIDIsZero(t *testing.T) {
	var zero NodeID
	assert.True(t, zero.IsZero())
	assert.False(t, NewNodeID().IsZero())
}
