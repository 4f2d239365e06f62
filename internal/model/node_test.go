package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNodeStampsTimestamps(t *testing.T) {
	n := NewNode("person", nil)
	assert.False(t, n.ID.IsZero())
	assert.Equal(t, "person", n.Type)
	assert.Equal(t, n.CreatedAt, n.UpdatedAt)
}

func TestNodeApplyUpdateMergesAndBumps(t *testing.T) {
	n := NewNode("person", nil)
	n.Set("name", String("ada"))
	createdAt := n.CreatedAt
	updatedAt := n.UpdatedAt

	time.Sleep(2 * time.Millisecond)

	patch := NewObject()
	patch.Set("name", String("grace"))
	patch.Set("age", Int(36))
	n.ApplyUpdate(patch)

	name, ok := n.Get("name")
	require.True(t, ok)
	s, _ := name.AsString()
	assert.Equal(t, "grace", s)

	age, ok := n.Get("age")
	require.True(t, ok)
	a, _ := age.AsInt()
	assert.Equal(t, int64(36), a)

	assert.Equal(t, createdAt, n.CreatedAt)
	assert.GreaterOrEqual(t, int64(n.UpdatedAt), int64(updatedAt))
}

func TestNodeCloneIsIndependent(t *testing.T) {
	n := NewNode("person", nil)
	n.Set("name", String("ada"))

	clone := n.Clone()
	clone.Set("name", String("changed"))

	original, _ := n.Get("name")
	s, _ := original.AsString()
	assert.Equal(t, "ada", s)
}
