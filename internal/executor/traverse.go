package executor

import (
	"fmt"
	"sort"

	"github.com/coredb/coredb/internal/kv"
	"github.com/coredb/coredb/internal/model"
	"github.com/coredb/coredb/internal/query"
)

// traverseQueueItem is one pending BFS frontier entry: a node id and its
// distance from the traversal root.
type traverseQueueItem struct {
	id    model.NodeID
	depth uint32
}

// Traverse performs a breadth-first walk outward from start, following
// edges up to maxDepth hops and, when edgeTypes is non-empty, only
// through edges of those types. It returns every node reached (including
// the root) plus the edges walked and an adjacency map, per spec.md §9's
// requirement that cyclic graphs be explored with an explicit queue, not
// recursion (BFS here rules out stack overflow on a cycle or long chain).
//
// Grounded on original_source/tools/aresadb/src/query/executor.rs's
// traverse().
func Traverse(store kv.Engine, start model.NodeID, maxDepth uint32, edgeTypes []string) (*query.TraversalResult, error) {
	root, err := store.GetNode(start)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, start)
	}

	visited := map[model.NodeID]bool{}
	nodesByID := map[model.NodeID]*model.Node{}
	var edges []*model.Edge
	adjacency := map[string][]string{}

	typeFilter := make(map[string]bool, len(edgeTypes))
	for _, t := range edgeTypes {
		typeFilter[t] = true
	}

	queue := []traverseQueueItem{{id: start, depth: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current.id] {
			continue
		}
		visited[current.id] = true

		node, err := store.GetNode(current.id)
		if err == nil {
			nodesByID[current.id] = node
		}

		if current.depth >= maxDepth {
			continue
		}

		outgoing, err := store.OutgoingEdges(current.id)
		if err != nil {
			return nil, fmt.Errorf("executor: traverse outgoing edges of %s: %w", current.id, err)
		}

		var neighbors []string
		for _, edge := range outgoing {
			if len(typeFilter) > 0 && !typeFilter[edge.Type] {
				continue
			}
			neighbors = append(neighbors, edge.To.String())
			edges = append(edges, edge)
			if !visited[edge.To] {
				queue = append(queue, traverseQueueItem{id: edge.To, depth: current.depth + 1})
			}
		}
		sort.Strings(neighbors)
		adjacency[current.id.String()] = neighbors
	}

	nodes := make([]*model.Node, 0, len(nodesByID))
	for _, n := range nodesByID {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID.String() < nodes[j].ID.String() })

	return &query.TraversalResult{
		Root:      root,
		Nodes:     nodes,
		Edges:     edges,
		Depth:     maxDepth,
		Adjacency: adjacency,
	}, nil
}

// ShortestPath returns the node sequence from -> to, the fewest hops
// possible within maxDepth, found via BFS (guaranteed shortest for an
// unweighted graph). A nil, nil result means no path exists within
// maxDepth.
//
// Grounded on executor.rs's shortest_path().
func ShortestPath(store kv.Engine, from, to model.NodeID, maxDepth uint32) ([]*model.Node, error) {
	if _, err := store.GetNode(from); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, from)
	}

	type pathItem struct {
		id   model.NodeID
		path []model.NodeID
	}

	visited := map[model.NodeID]bool{}
	queue := []pathItem{{id: from, path: []model.NodeID{from}}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.id == to {
			nodes := make([]*model.Node, 0, len(current.path))
			for _, id := range current.path {
				n, err := store.GetNode(id)
				if err != nil {
					continue
				}
				nodes = append(nodes, n)
			}
			return nodes, nil
		}

		if visited[current.id] || uint32(len(current.path)-1) >= maxDepth {
			continue
		}
		visited[current.id] = true

		edges, err := store.OutgoingEdges(current.id)
		if err != nil {
			return nil, fmt.Errorf("executor: shortest path outgoing edges of %s: %w", current.id, err)
		}
		for _, edge := range edges {
			if visited[edge.To] {
				continue
			}
			newPath := make([]model.NodeID, len(current.path), len(current.path)+1)
			copy(newPath, current.path)
			newPath = append(newPath, edge.To)
			queue = append(queue, pathItem{id: edge.To, path: newPath})
		}
	}

	return nil, nil
}

// ConnectedComponents groups every node of nodeType into its connected
// component, treating edges as undirected (both OutgoingEdges and
// IncomingEdges are followed), via BFS from each unvisited node.
//
// Grounded on executor.rs's connected_components().
func ConnectedComponents(store kv.Engine, nodeType string) ([][]*model.Node, error) {
	all, err := store.NodesByType(nodeType)
	if err != nil {
		return nil, fmt.Errorf("executor: connected components of %q: %w", nodeType, err)
	}

	visited := map[model.NodeID]bool{}
	var components [][]*model.Node

	for _, start := range all {
		if visited[start.ID] {
			continue
		}

		var component []*model.Node
		queue := []model.NodeID{start.ID}

		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]

			if visited[current] {
				continue
			}
			visited[current] = true

			if n, err := store.GetNode(current); err == nil {
				component = append(component, n)
			}

			outgoing, err := store.OutgoingEdges(current)
			if err != nil {
				return nil, fmt.Errorf("executor: connected components outgoing edges of %s: %w", current, err)
			}
			for _, edge := range outgoing {
				if !visited[edge.To] {
					queue = append(queue, edge.To)
				}
			}

			incoming, err := store.IncomingEdges(current)
			if err != nil {
				return nil, fmt.Errorf("executor: connected components incoming edges of %s: %w", current, err)
			}
			for _, edge := range incoming {
				if !visited[edge.From] {
					queue = append(queue, edge.From)
				}
			}
		}

		if len(component) > 0 {
			components = append(components, component)
		}
	}

	return components, nil
}
