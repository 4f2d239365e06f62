package query

import "github.com/coredb/coredb/internal/model"

// Operation names the kind of statement a ParsedQuery represents.
type Operation string

const (
	OpSelect       Operation = "Select"
	OpInsert       Operation = "Insert"
	OpUpdate       Operation = "Update"
	OpDelete       Operation = "Delete"
	OpTraverse     Operation = "Traverse"
	OpCreateSchema Operation = "CreateSchema"
	OpDropSchema   Operation = "DropSchema"
)

// Operator names a Condition's comparison.
type Operator string

const (
	OpEq        Operator = "Eq"
	OpNe        Operator = "Ne"
	OpLt        Operator = "Lt"
	OpLe        Operator = "Le"
	OpGt        Operator = "Gt"
	OpGe        Operator = "Ge"
	OpLike      Operator = "Like"
	OpIn        Operator = "In"
	OpIsNull    Operator = "IsNull"
	OpIsNotNull Operator = "IsNotNull"
)

// Condition is a single WHERE comparison: column OP value.
type Condition struct {
	Column   string      `json:"column"`
	Operator Operator    `json:"operator"`
	Value    model.Value `json:"value"`
}

// OrderBy names a sort column and direction.
type OrderBy struct {
	Column     string `json:"column"`
	Descending bool   `json:"descending"`
}

// ParsedQuery is the wire contract between the SQL parser, the
// natural-language translator collaborator, and the planner (spec.md
// §4.4/§6). Any valid JSON-serializable instance of this shape is
// accepted downstream — this struct is that shape's canonical Go form.
type ParsedQuery struct {
	Operation  Operation     `json:"operation"`
	Target     string        `json:"target"`
	Columns    []string      `json:"columns,omitempty"`
	Conditions []Condition   `json:"conditions,omitempty"`
	OrderBy    []OrderBy     `json:"order_by,omitempty"`
	Limit      *uint64       `json:"limit,omitempty"`
	Offset     *uint64       `json:"offset,omitempty"`
	Data       *model.Object `json:"data,omitempty"`
}
