package planner

import (
	"fmt"

	"github.com/coredb/coredb/internal/query"
	"github.com/coredb/coredb/internal/schema"
)

const (
	costFullScan    = 1.0
	costIndexLookup = 0.1
	costFilterEach  = 0.1
	costSort        = 0.5
	costTraverse    = 10.0
	costInsert      = 1.0
	costMutateEach  = 0.5
)

// indexKey identifies a (node type, field) pair flagged unique or
// indexed by a schema.
type indexKey struct {
	nodeType string
	field    string
}

// Planner compiles ParsedQuery values into QueryPlans, using registered
// schemas to decide between a full scan and an index lookup.
type Planner struct {
	indexedFields map[indexKey]bool
}

// New returns a planner with no index knowledge; every scan is a
// FullScan.
func New() *Planner {
	return &Planner{indexedFields: make(map[indexKey]bool)}
}

// NewWithSchemas builds a planner whose indexed_fields set is populated
// from every field flagged unique or indexed across the given schemas.
func NewWithSchemas(schemas []*schema.Schema) *Planner {
	p := New()
	for _, s := range schemas {
		for _, f := range s.Fields {
			if f.Indexed || f.Unique {
				p.indexedFields[indexKey{nodeType: s.Name, field: f.Name}] = true
			}
		}
	}
	return p
}

// Plan compiles q into an ordered QueryPlan.
func (p *Planner) Plan(q *query.ParsedQuery) (*QueryPlan, error) {
	switch q.Operation {
	case query.OpSelect:
		return p.planSelect(q)
	case query.OpInsert:
		return p.planInsert(q)
	case query.OpUpdate:
		return p.planMutation(q, StepUpdateNodes)
	case query.OpDelete:
		return p.planMutation(q, StepDeleteNodes)
	case query.OpTraverse:
		return p.planTraverse(q), nil
	case query.OpCreateSchema:
		return &QueryPlan{Steps: []PlanStep{{Kind: StepCreateSchema, SchemaName: q.Target}}, EstimatedCost: costInsert}, nil
	case query.OpDropSchema:
		return &QueryPlan{Steps: []PlanStep{{Kind: StepDropSchema, SchemaName: q.Target}}, EstimatedCost: costInsert}, nil
	default:
		return nil, fmt.Errorf("planner: unknown operation %q", q.Operation)
	}
}

// planScan selects a FullScan or IndexLookup for target given conditions,
// returning the step, its cost, whether an index was used, and (when an
// index was used) the column consumed by it. Tie-breaking among multiple
// indexed conditions: the first encountered wins.
func (p *Planner) planScan(target string, conditions []query.Condition) (PlanStep, float64, bool, string) {
	for _, c := range conditions {
		if p.indexedFields[indexKey{nodeType: target, field: c.Column}] {
			return PlanStep{Kind: StepIndexLookup, NodeType: target, Field: c.Column, Value: c.Value}, costIndexLookup, true, c.Column
		}
	}
	return PlanStep{Kind: StepFullScan, NodeType: target}, costFullScan, false, ""
}

func (p *Planner) planSelect(q *query.ParsedQuery) (*QueryPlan, error) {
	scanStep, scanCost, usesIndex, indexedColumn := p.planScan(q.Target, q.Conditions)
	steps := []PlanStep{scanStep}
	cost := scanCost

	remaining := q.Conditions
	if usesIndex {
		remaining = nil
		for _, c := range q.Conditions {
			if c.Column == indexedColumn {
				continue
			}
			remaining = append(remaining, c)
		}
	}
	if len(remaining) > 0 {
		steps = append(steps, PlanStep{Kind: StepFilter, Conditions: remaining})
		cost += costFilterEach * float64(len(remaining))
	}

	for _, o := range q.OrderBy {
		steps = append(steps, PlanStep{Kind: StepSort, SortField: o.Column, Descending: o.Descending})
		cost += costSort
	}

	if q.Limit != nil {
		var offset uint64
		if q.Offset != nil {
			offset = *q.Offset
		}
		steps = append(steps, PlanStep{Kind: StepLimit, Count: *q.Limit, Offset: offset})
	}

	if len(q.Columns) > 0 {
		steps = append(steps, PlanStep{Kind: StepProject, Columns: q.Columns})
	}

	return &QueryPlan{Steps: steps, EstimatedCost: cost, UsesIndex: usesIndex}, nil
}

func (p *Planner) planInsert(q *query.ParsedQuery) (*QueryPlan, error) {
	if q.Data == nil {
		return nil, fmt.Errorf("planner: INSERT requires data")
	}
	step := PlanStep{Kind: StepInsertNode, NodeType: q.Target, Data: q.Data}
	return &QueryPlan{Steps: []PlanStep{step}, EstimatedCost: costInsert}, nil
}

// planMutation builds the scan/filter prefix shared by UPDATE and DELETE,
// then appends the named terminal mutation step.
func (p *Planner) planMutation(q *query.ParsedQuery, kind StepKind) (*QueryPlan, error) {
	scanStep, scanCost, usesIndex, indexedColumn := p.planScan(q.Target, q.Conditions)
	steps := []PlanStep{scanStep}
	cost := scanCost

	remaining := q.Conditions
	if usesIndex {
		remaining = nil
		for _, c := range q.Conditions {
			if c.Column == indexedColumn {
				continue
			}
			remaining = append(remaining, c)
		}
	}
	if len(remaining) > 0 {
		steps = append(steps, PlanStep{Kind: StepFilter, Conditions: remaining})
		cost += costFilterEach * float64(len(remaining))
	}

	switch kind {
	case StepUpdateNodes:
		if q.Data == nil {
			return nil, fmt.Errorf("planner: UPDATE requires data")
		}
		steps = append(steps, PlanStep{Kind: StepUpdateNodes, Data: q.Data})
	case StepDeleteNodes:
		steps = append(steps, PlanStep{Kind: StepDeleteNodes})
	}
	cost += costMutateEach

	return &QueryPlan{Steps: steps, EstimatedCost: cost, UsesIndex: usesIndex}, nil
}

func (p *Planner) planTraverse(q *query.ParsedQuery) *QueryPlan {
	depth := uint32(2)
	if q.Limit != nil {
		depth = uint32(*q.Limit)
	}
	step := PlanStep{Kind: StepTraverse, StartNode: q.Target, Depth: depth}
	if len(q.Columns) > 0 {
		step.EdgeTypes = q.Columns
	}
	return &QueryPlan{Steps: []PlanStep{step}, EstimatedCost: costTraverse}
}
