// Package executor interprets planner.QueryPlan steps against a kv.Engine,
// implements operator semantics for WHERE conditions, and performs BFS-based
// graph traversal (traverse, shortest_path, connected_components), per
// spec.md §4.6/§9.
//
// Grounded on original_source/tools/aresadb/src/query/executor.rs's
// QueryEngine (execute_plan/matches_conditions/compare_values/traverse/
// shortest_path/connected_components), and on the teacher's pkg/cypher
// executor.go/traversal.go/shortest_path.go for the surrounding Go
// idiom (slice-backed BFS queues, visited maps, RWMutex-guarded shared
// state for the parallel variant).
package executor

import "errors"

var (
	// ErrNodeNotFound is returned when a traversal or mutation names a
	// node id absent from the store.
	ErrNodeNotFound = errors.New("executor: node not found")

	// ErrUnknownStep is returned for a PlanStep.Kind the executor does
	// not recognize.
	ErrUnknownStep = errors.New("executor: unknown plan step")
)
