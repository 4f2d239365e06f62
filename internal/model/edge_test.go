package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEdgeLinksFromTo(t *testing.T) {
	from := NewNodeID()
	to := NewNodeID()
	e := NewEdge(from, to, "KNOWS", nil)

	assert.Equal(t, from, e.From)
	assert.Equal(t, to, e.To)
	assert.Equal(t, "KNOWS", e.Type)
	assert.False(t, e.ID.IsZero())
}

func TestEdgeCloneIsIndependent(t *testing.T) {
	e := NewEdge(NewNodeID(), NewNodeID(), "KNOWS", nil)
	e.Properties.Set("since", Int(2020))

	clone := e.Clone()
	clone.Properties.Set("since", Int(1999))

	v, _ := e.Get("since")
	since, _ := v.AsInt()
	assert.Equal(t, int64(2020), since)
}
