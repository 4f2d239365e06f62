package executor

import (
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/coredb/coredb/internal/kv"
	"github.com/coredb/coredb/internal/model"
	"github.com/coredb/coredb/internal/query"
)

// ParallelTraverse performs the same breadth-first walk as Traverse, but
// fetches each BFS frontier's outgoing edges concurrently: one goroutine
// per frontier node, each reading through its own read-only transaction,
// synchronized through an errgroup and a single RWMutex guarding the
// shared visited set and result accumulators, per spec.md §9's
// parallel-traversal discipline (workers take RLock to test membership
// before queuing a neighbor; after the layer's workers finish, the
// calling goroutine takes the write lock to merge their results and mark
// each newly reached node visited exactly once).
//
// Layer-at-a-time fan-out is correct for BFS because every node at depth
// d only has edges explored once all of depth d is known to be visited,
// which this function enforces by processing one full frontier per
// errgroup.Wait before starting the next.
func ParallelTraverse(store kv.Engine, start model.NodeID, maxDepth uint32, edgeTypes []string) (*query.TraversalResult, error) {
	root, err := store.GetNode(start)
	if err != nil {
		return nil, ErrNodeNotFound
	}

	typeFilter := make(map[string]bool, len(edgeTypes))
	for _, t := range edgeTypes {
		typeFilter[t] = true
	}

	var mu sync.RWMutex
	visited := map[model.NodeID]bool{start: true}
	nodesByID := map[model.NodeID]*model.Node{start: root}
	var edges []*model.Edge
	adjacency := map[string][]string{}

	frontier := []model.NodeID{start}

	for depth := uint32(0); depth < maxDepth && len(frontier) > 0; depth++ {
		type frontierResult struct {
			id        model.NodeID
			neighbors []string
			edges     []*model.Edge
			nextIDs   []model.NodeID
		}

		results := make([]frontierResult, len(frontier))
		g := new(errgroup.Group)

		for i, id := range frontier {
			i, id := i, id
			g.Go(func() error {
				tx, err := store.BeginTx(false)
				if err != nil {
					return err
				}
				defer tx.Rollback()
				outgoing, err := tx.OutgoingEdges(id)
				if err != nil {
					return err
				}

				var next []model.NodeID
				var neighbors []string
				var kept []*model.Edge
				for _, edge := range outgoing {
					if len(typeFilter) > 0 && !typeFilter[edge.Type] {
						continue
					}
					kept = append(kept, edge)
					neighbors = append(neighbors, edge.To.String())

					mu.RLock()
					seen := visited[edge.To]
					mu.RUnlock()
					if !seen {
						next = append(next, edge.To)
					}
				}
				sort.Strings(neighbors)
				results[i] = frontierResult{id: id, neighbors: neighbors, edges: kept, nextIDs: next}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}

		var nextFrontier []model.NodeID
		for _, r := range results {
			mu.Lock()
			adjacency[r.id.String()] = r.neighbors
			edges = append(edges, r.edges...)
			for _, id := range r.nextIDs {
				if !visited[id] {
					visited[id] = true
					nextFrontier = append(nextFrontier, id)
				}
			}
			mu.Unlock()
		}

		// Fetch next frontier's node records concurrently too.
		fetched := make([]*model.Node, len(nextFrontier))
		g2 := new(errgroup.Group)
		for i, id := range nextFrontier {
			i, id := i, id
			g2.Go(func() error {
				n, err := store.GetNode(id)
				if err != nil {
					return nil // a dangling reference simply yields no node
				}
				fetched[i] = n
				return nil
			})
		}
		if err := g2.Wait(); err != nil {
			return nil, err
		}

		mu.Lock()
		for i, id := range nextFrontier {
			if fetched[i] != nil {
				nodesByID[id] = fetched[i]
			}
		}
		mu.Unlock()

		frontier = nextFrontier
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
