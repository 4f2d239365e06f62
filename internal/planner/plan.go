// Package planner compiles a query.ParsedQuery into an ordered QueryPlan
// of PlanSteps plus an estimated cost and a uses-index flag, per
// spec.md §4.5.
package planner

import (
	"github.com/coredb/coredb/internal/model"
	"github.com/coredb/coredb/internal/query"
)

// StepKind identifies a PlanStep's shape.
type StepKind string

const (
	StepFullScan     StepKind = "FullScan"
	StepIndexLookup  StepKind = "IndexLookup"
	StepFilter       StepKind = "Filter"
	StepSort         StepKind = "Sort"
	StepLimit        StepKind = "Limit"
	StepProject      StepKind = "Project"
	StepTraverse     StepKind = "Traverse"
	StepInsertNode   StepKind = "InsertNode"
	StepUpdateNodes  StepKind = "UpdateNodes"
	StepDeleteNodes  StepKind = "DeleteNodes"
	StepCreateSchema StepKind = "CreateSchemaStep"
	StepDropSchema   StepKind = "DropSchemaStep"
)

// PlanStep is a single, named, ordered unit of plan execution. Only the
// fields relevant to Kind are meaningful, mirroring the teacher's
// tagged-struct style for heterogeneous plan operators.
type PlanStep struct {
	Kind StepKind

	// FullScan / IndexLookup
	NodeType string
	Field    string
	Value    model.Value

	// Filter
	Conditions []query.Condition

	// Sort
	SortField  string
	Descending bool

	// Limit
	Count  uint64
	Offset uint64

	// Project
	Columns []string

	// Traverse
	StartNode string
	Depth     uint32
	EdgeTypes []string // nil means "all"

	// InsertNode / UpdateNodes
	Data *model.Object

	// CreateSchemaStep / DropSchemaStep
	SchemaName string
}

// QueryPlan is an ordered plan of steps plus an advisory cost estimate
// and whether the plan is able to use an index.
type QueryPlan struct {
	Steps         []PlanStep
	EstimatedCost float64
	UsesIndex     bool
}
