package executor

import (
	"fmt"

	"github.com/coredb/coredb/internal/kv"
	"github.com/coredb/coredb/internal/model"
	"github.com/coredb/coredb/internal/planner"
	"github.com/coredb/coredb/internal/query"
)

// Executor runs a planner.QueryPlan against a kv.Engine, producing the
// QueryResult the plan describes. It holds no query-specific state; all
// scratch state lives on the stack of Execute, mirroring the teacher's
// stateless-per-call StorageExecutor.Execute path.
type Executor struct {
	store kv.Engine
	cache *QueryCache
}

// New returns an Executor reading and writing through store. cache may be
// nil, in which case results are never cached.
func New(store kv.Engine, cache *QueryCache) *Executor {
	return &Executor{store: store, cache: cache}
}

// Execute interprets plan's steps in order and returns the resulting
// QueryResult, consulting and populating the result cache for read-only
// Select plans.
func (e *Executor) Execute(plan *planner.QueryPlan, q *query.ParsedQuery) (query.QueryResult, error) {
	if e.cache != nil && q.Operation == query.OpSelect {
		if cached, ok := e.cache.Get(q); ok {
			return cached, nil
		}
	}

	var nodes []*model.Node
	var nodesSet bool
	var insertedNode *model.Node
	var rowsAffected uint64

	for _, step := range plan.Steps {
		switch step.Kind {
		case planner.StepFullScan:
			n, err := e.store.NodesByType(step.NodeType)
			if err != nil {
				return query.QueryResult{}, fmt.Errorf("executor: full scan %q: %w", step.NodeType, err)
			}
			nodes, nodesSet = n, true

		case planner.StepIndexLookup:
			// The physical store exposes only a type multimap index, not a
			// per-field one (spec.md §9's open question on IndexLookup
			// permits falling back to scan+filter). Fetch by type and let
			// the implicit equality on step.Field narrow it below.
			n, err := e.store.NodesByType(step.NodeType)
			if err != nil {
				return query.QueryResult{}, fmt.Errorf("executor: index lookup %q: %w", step.NodeType, err)
			}
			filtered := n[:0:0]
			for _, node := range n {
				if matchesCondition(node, query.Condition{Column: step.Field, Operator: query.OpEq, Value: step.Value}) {
					filtered = append(filtered, node)
				}
			}
			nodes, nodesSet = filtered, true

		case planner.StepFilter:
			if nodesSet {
				nodes = filterNodes(nodes, step.Conditions)
			}

		case planner.StepSort:
			if nodesSet {
				sortNodesByField(nodes, step.SortField, step.Descending)
			}

		case planner.StepLimit:
			if nodesSet {
				nodes = limitNodes(nodes, step.Count, step.Offset)
			}

		case planner.StepProject:
			// Projection is applied once at result-build time below, after
			// the full node set is known.

		case planner.StepInsertNode:
			n := model.NewNode(step.NodeType, step.Data)
			if err := e.store.CreateNode(n); err != nil {
				return query.QueryResult{}, fmt.Errorf("executor: insert into %q: %w", step.NodeType, err)
			}
			insertedNode = n
			rowsAffected = 1

		case planner.StepUpdateNodes:
			if nodesSet {
				for _, n := range nodes {
					n.ApplyUpdate(step.Data)
					if err := e.store.UpdateNode(n); err != nil {
						return query.QueryResult{}, fmt.Errorf("executor: update %s: %w", n.ID, err)
					}
					rowsAffected++
				}
			}

		case planner.StepDeleteNodes:
			if nodesSet {
				for _, n := range nodes {
					// kv.Engine.DeleteNode cascades to every edge touching
					// the node (spec.md §4.1's cascade-delete invariant).
					if err := e.store.DeleteNode(n.ID); err != nil {
						return query.QueryResult{}, fmt.Errorf("executor: delete %s: %w", n.ID, err)
					}
					rowsAffected++
				}
			}

		case planner.StepTraverse:
			// Handled by the dedicated Traverse entry point; a bare
			// Traverse plan produces its result there, not here.

		default:
			return query.QueryResult{}, fmt.Errorf("%w: %s", ErrUnknownStep, step.Kind)
		}
	}

	var result query.QueryResult
	switch {
	case insertedNode != nil:
		result = query.FromNodes([]*model.Node{insertedNode})
	case nodesSet:
		result = query.FromNodes(nodes)
		result = projectColumns(result, q.Columns)
	default:
		result = query.Empty()
	}
	result.RowsAffected = rowsAffected

	if e.cache != nil && q.Operation == query.OpSelect {
		e.cache.Put(q, result)
	} else if e.cache != nil && q.Operation != query.OpSelect {
		e.cache.InvalidateTarget(q.Target)
	}

	return result, nil
}

func filterNodes(nodes []*model.Node, conditions []query.Condition) []*model.Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		if matchesConditions(n, conditions) {
			out = append(out, n)
		}
	}
	return out
}

func matchesConditions(n *model.Node, conditions []query.Condition) bool {
	for _, c := range conditions {
		if !matchesCondition(n, c) {
			return false
		}
	}
	return true
}

func matchesCondition(n *model.Node, c query.Condition) bool {
	actual := fieldValue(n, c.Column)
	return Matches(c.Operator, actual, c.Value)
}

func limitNodes(nodes []*model.Node, count, offset uint64) []*model.Node {
	if offset >= uint64(len(nodes)) {
		return nil
	}
	nodes = nodes[offset:]
	if count < uint64(len(nodes)) {
		nodes = nodes[:count]
	}
	return nodes
}

// projectColumns narrows result to the named columns, always keeping id
// and type, matching the teacher's id/type-pinned projection semantics.
func projectColumns(result query.QueryResult, columns []string) query.QueryResult {
	if len(columns) == 0 {
		return result
	}
	keep := map[string]bool{"id": true, "type": true}
	for _, c := range columns {
		keep[c] = true
	}

	var keepIdx []int
	var newColumns []string
	for i, c := range result.Columns {
		if keep[c] {
			keepIdx = append(keepIdx, i)
			newColumns = append(newColumns, c)
		}
	}

	newRows := make([][]model.Value, len(result.Rows))
	for i, row := range result.Rows {
		newRow := make([]model.Value, len(keepIdx))
		for j, idx := range keepIdx {
			newRow[j] = row[idx]
		}
		newRows[i] = newRow
	}

	return query.QueryResult{Columns: newColumns, Rows: newRows, RowsAffected: result.RowsAffected}
}
