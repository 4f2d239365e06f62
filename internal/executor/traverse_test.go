package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coredb/coredb/internal/kv"
	"github.com/coredb/coredb/internal/model"
)

func buildChain(t *testing.T, store kv.Engine, edgeType string) (alice, bob, charlie *model.Node) {
	t.Helper()
	alice = model.NewNode("user", nil)
	bob = model.NewNode("user", nil)
	charlie = model.NewNode("user", nil)
	require.NoError(t, store.CreateNode(alice))
	require.NoError(t, store.CreateNode(bob))
	require.NoError(t, store.CreateNode(charlie))
	require.NoError(t, store.CreateEdge(model.NewEdge(alice.ID, bob.ID, edgeType, nil)))
	require.NoError(t, store.CreateEdge(model.NewEdge(bob.ID, charlie.ID, edgeType, nil)))
	return
}

func TestTraverseReachesWithinDepth(t *testing.T) {
	store := kv.NewMemoryEngine()
	alice, bob, charlie := buildChain(t, store, "follows")

	result, err := Traverse(store, alice.ID, 2, nil)
	require.NoError(t, err)
	assert.Len(t, result.Nodes, 3)
	assert.Len(t, result.Edges, 2)
	assert.Equal(t, alice.ID, result.Root.ID)
	assert.ElementsMatch(t, result.Adjacency[alice.ID.String()], []string{bob.ID.String()})
	_ = charlie
}

func TestTraverseRespectsDepthLimit(t *testing.T) {
	store := kv.NewMemoryEngine()
	alice, _, _ := buildChain(t, store, "follows")

	result, err := Traverse(store, alice.ID, 1, nil)
	require.NoError(t, err)
	assert.Len(t, result.Nodes, 2)
	assert.Len(t, result.Edges, 1)
}

func TestTraverseFiltersByEdgeType(t *testing.T) {
	store := kv.NewMemoryEngine()
	alice := model.NewNode("user", nil)
	bob := model.NewNode("user", nil)
	require.NoError(t, store.CreateNode(alice))
	require.NoError(t, store.CreateNode(bob))
	require.NoError(t, store.CreateEdge(model.NewEdge(alice.ID, bob.ID, "blocks", nil)))

	result, err := Traverse(store, alice.ID, 2, []string{"follows"})
	require.NoError(t, err)
	assert.Len(t, result.Nodes, 1)
	assert.Empty(t, result.Edges)
}

func TestTraverseUnknownNodeFails(t *testing.T) {
	store := kv.NewMemoryEngine()
	_, err := Traverse(store, model.NewNodeID(), 1, nil)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestShortestPathFindsRoute(t *testing.T) {
	store := kv.NewMemoryEngine()
	alice, bob, charlie := buildChain(t, store, "follows")

	path, err := ShortestPath(store, alice.ID, charlie.ID, 5)
	require.NoError(t, err)
	require.Len(t, path, 3)
	assert.Equal(t, alice.ID, path[0].ID)
	assert.Equal(t, bob.ID, path[1].ID)
	assert.Equal(t, charlie.ID, path[2].ID)
}

func TestShortestPathRespectsMaxDepth(t *testing.T) {
	store := kv.NewMemoryEngine()
	alice, _, charlie := buildChain(t, store, "follows")

	path, err := ShortestPath(store, alice.ID, charlie.ID, 1)
	require.NoError(t, err)
	assert.Nil(t, path)
}

func TestConnectedComponentsGroupsUndirected(t *testing.T) {
	store := kv.NewMemoryEngine()
	a := model.NewNode("user", nil)
	b := model.NewNode("user", nil)
	c := model.NewNode("user", nil)
	require.NoError(t, store.CreateNode(a))
	require.NoError(t, store.CreateNode(b))
	require.NoError(t, store.CreateNode(c))
	require.NoError(t, store.CreateEdge(model.NewEdge(a.ID, b.ID, "knows", nil)))

	components, err := ConnectedComponents(store, "user")
	require.NoError(t, err)
	require.Len(t, components, 2)

	sizes := []int{len(components[0]), len(components[1])}
	assert.ElementsMatch(t, []int{1, 2}, sizes)
}

func TestParallelTraverseMatchesSerialTraverse(t *testing.T) {
	store := kv.NewMemoryEngine()
	alice, _, _ := buildChain(t, store, "follows")

	serial, err := Traverse(store, alice.ID, 2, nil)
	require.NoError(t, err)
	parallel, err := ParallelTraverse(store, alice.ID, 2, nil)
	require.NoError(t, err)

	assert.Len(t, parallel.Nodes, len(serial.Nodes))
	assert.Len(t, parallel.Edges, len(serial.Edges))
}
