package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coredb/coredb/internal/model"
	"github.com/coredb/coredb/internal/query"
	"github.com/coredb/coredb/internal/schema"
)

func TestPlanSelectNoIndexUsesFullScanAndFilter(t *testing.T) {
	p := New()
	limit := uint64(10)
	q := &query.ParsedQuery{
		Operation:  query.OpSelect,
		Target:     "users",
		Columns:    []string{"name"},
		Conditions: []query.Condition{{Column: "age", Operator: query.OpGt, Value: model.Int(25)}},
		Limit:      &limit,
	}

	plan, err := p.Plan(q)
	require.NoError(t, err)
	assert.False(t, plan.UsesIndex)
	require.GreaterOrEqual(t, len(plan.Steps), 2)
	assert.Equal(t, StepFullScan, plan.Steps[0].Kind)
	assert.Equal(t, StepFilter, plan.Steps[1].Kind)
}

func TestPlanSelectWithIndexSkipsFilterForIndexedColumn(t *testing.T) {
	p := NewWithSchemas([]*schema.Schema{
		{Name: "users", Fields: []schema.SchemaField{
			schema.NewSchemaField("email", schema.TypeString).WithIndexed(true),
		}},
	})

	q := &query.ParsedQuery{
		Operation:  query.OpSelect,
		Target:     "users",
		Conditions: []query.Condition{{Column: "email", Operator: query.OpEq, Value: model.String("a@b.c")}},
	}

	plan, err := p.Plan(q)
	require.NoError(t, err)
	assert.True(t, plan.UsesIndex)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, StepIndexLookup, plan.Steps[0].Kind)
	assert.Equal(t, "email", plan.Steps[0].Field)
}

func TestPlanSelectIndexTieBreakIsFirstEncountered(t *testing.T) {
	p := NewWithSchemas([]*schema.Schema{
		{Name: "users", Fields: []schema.SchemaField{
			schema.NewSchemaField("email", schema.TypeString).WithIndexed(true),
			schema.NewSchemaField("name", schema.TypeString).WithIndexed(true),
		}},
	})

	q := &query.ParsedQuery{
		Operation: query.OpSelect,
		Target:    "users",
		Conditions: []query.Condition{
			{Column: "name", Operator: query.OpEq, Value: model.String("Alice")},
			{Column: "email", Operator: query.OpEq, Value: model.String("a@b.c")},
		},
	}

	plan, err := p.Plan(q)
	require.NoError(t, err)
	assert.Equal(t, "name", plan.Steps[0].Field)
}

func TestPlanSelectOrderByLimitProject(t *testing.T) {
	p := New()
	limit := uint64(5)
	offset := uint64(2)
	q := &query.ParsedQuery{
		Operation: query.OpSelect,
		Target:    "users",
		Columns:   []string{"name"},
		OrderBy:   []query.OrderBy{{Column: "age", Descending: true}},
		Limit:     &limit,
		Offset:    &offset,
	}

	plan, err := p.Plan(q)
	require.NoError(t, err)
	kinds := stepKinds(plan.Steps)
	assert.Equal(t, []StepKind{StepFullScan, StepSort, StepLimit, StepProject}, kinds)
}

func TestPlanInsert(t *testing.T) {
	p := New()
	data := model.NewObject()
	data.Set("name", model.String("Alice"))
	q := &query.ParsedQuery{Operation: query.OpInsert, Target: "users", Data: data}

	plan, err := p.Plan(q)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, StepInsertNode, plan.Steps[0].Kind)
	assert.Equal(t, costInsert, plan.EstimatedCost)
}

func TestPlanUpdateEmitsScanFilterUpdate(t *testing.T) {
	p := New()
	data := model.NewObject()
	data.Set("age", model.Int(31))
	q := &query.ParsedQuery{
		Operation:  query.OpUpdate,
		Target:     "users",
		Conditions: []query.Condition{{Column: "id", Operator: query.OpEq, Value: model.String("1")}},
		Data:       data,
	}

	plan, err := p.Plan(q)
	require.NoError(t, err)
	assert.Equal(t, []StepKind{StepFullScan, StepFilter, StepUpdateNodes}, stepKinds(plan.Steps))
}

func TestPlanDeleteEmitsScanFilterDelete(t *testing.T) {
	p := New()
	q := &query.ParsedQuery{
		Operation:  query.OpDelete,
		Target:     "users",
		Conditions: []query.Condition{{Column: "age", Operator: query.OpLt, Value: model.Int(18)}},
	}

	plan, err := p.Plan(q)
	require.NoError(t, err)
	assert.Equal(t, []StepKind{StepFullScan, StepFilter, StepDeleteNodes}, stepKinds(plan.Steps))
}

func TestPlanUpdateWithIndexDedupesFilterConditions(t *testing.T) {
	p := NewWithSchemas([]*schema.Schema{
		{Name: "users", Fields: []schema.SchemaField{
			schema.NewSchemaField("email", schema.TypeString).WithIndexed(true),
		}},
	})
	data := model.NewObject()
	data.Set("age", model.Int(31))
	q := &query.ParsedQuery{
		Operation: query.OpUpdate,
		Target:    "users",
		Conditions: []query.Condition{
			{Column: "email", Operator: query.OpEq, Value: model.String("a@b.c")},
			{Column: "age", Operator: query.OpLt, Value: model.Int(40)},
		},
		Data: data,
	}

	plan, err := p.Plan(q)
	require.NoError(t, err)
	assert.True(t, plan.UsesIndex)
	assert.Equal(t, []StepKind{StepIndexLookup, StepFilter, StepUpdateNodes}, stepKinds(plan.Steps))
	require.Len(t, plan.Steps[1].Conditions, 1)
	assert.Equal(t, "age", plan.Steps[1].Conditions[0].Column)
}

func TestPlanDeleteWithIndexSkipsFilterWhenOnlyIndexedConditionGiven(t *testing.T) {
	p := NewWithSchemas([]*schema.Schema{
		{Name: "users", Fields: []schema.SchemaField{
			schema.NewSchemaField("email", schema.TypeString).WithIndexed(true),
		}},
	})
	q := &query.ParsedQuery{
		Operation:  query.OpDelete,
		Target:     "users",
		Conditions: []query.Condition{{Column: "email", Operator: query.OpEq, Value: model.String("a@b.c")}},
	}

	plan, err := p.Plan(q)
	require.NoError(t, err)
	assert.True(t, plan.UsesIndex)
	assert.Equal(t, []StepKind{StepIndexLookup, StepDeleteNodes}, stepKinds(plan.Steps))
}

func TestPlanTraverse(t *testing.T) {
	p := New()
	limit := uint64(3)
	q := &query.ParsedQuery{Operation: query.OpTraverse, Target: "node-1", Limit: &limit}

	plan, err := p.Plan(q)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, StepTraverse, plan.Steps[0].Kind)
	assert.Equal(t, uint32(3), plan.Steps[0].Depth)
	assert.Equal(t, costTraverse, plan.EstimatedCost)
}

func TestExplainRendersSteps(t *testing.T) {
	p := New()
	limit := uint64(10)
	q := &query.ParsedQuery{
		Operation:  query.OpSelect,
		Target:     "users",
		Conditions: []query.Condition{{Column: "age", Operator: query.OpGt, Value: model.Int(25)}},
		Limit:      &limit,
	}
	plan, err := p.Plan(q)
	require.NoError(t, err)

	out := Explain(plan)
	assert.Contains(t, out, "Query Plan")
	assert.Contains(t, out, "Full Scan on \"users\"")
	assert.Contains(t, out, "Filter:")
	assert.Contains(t, out, "Limit 10 offset 0")
}

func stepKinds(steps []PlanStep) []StepKind {
	kinds := make([]StepKind, len(steps))
	for i, s := range steps {
		kinds[i] = s.Kind
	}
	return kinds
}
