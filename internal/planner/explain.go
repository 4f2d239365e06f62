package planner

import (
	"fmt"
	"strings"
)

// Explain renders a human-readable trace of plan, in the teacher's
// numbered-step EXPLAIN format (estimated cost, uses_index flag, then
// one line per step).
func Explain(plan *QueryPlan) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Query Plan (estimated cost: %.2f)", plan.EstimatedCost))
	lines = append(lines, fmt.Sprintf("Uses index: %t", plan.UsesIndex))
	lines = append(lines, "Steps:")

	for i, step := range plan.Steps {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, explainStep(step)))
	}
	return strings.Join(lines, "\n")
}

func explainStep(step PlanStep) string {
	switch step.Kind {
	case StepFullScan:
		return fmt.Sprintf("Full Scan on %q", step.NodeType)
	case StepIndexLookup:
		return fmt.Sprintf("Index Lookup on %s.%s = %s", step.NodeType, step.Field, step.Value.ToJSON())
	case StepFilter:
		parts := make([]string, len(step.Conditions))
		for i, c := range step.Conditions {
			parts[i] = fmt.Sprintf("%s %s %v", c.Column, c.Operator, c.Value.ToJSON())
		}
		return fmt.Sprintf("Filter: %s", strings.Join(parts, " AND "))
	case StepSort:
		dir := "ASC"
		if step.Descending {
			dir = "DESC"
		}
		return fmt.Sprintf("Sort by %q %s", step.SortField, dir)
	case StepLimit:
		return fmt.Sprintf("Limit %d offset %d", step.Count, step.Offset)
	case StepProject:
		return fmt.Sprintf("Project: %s", strings.Join(step.Columns, ", "))
	case StepTraverse:
		edges := "all"
		if len(step.EdgeTypes) > 0 {
			edges = strings.Join(step.EdgeTypes, ", ")
		}
		return fmt.Sprintf("Traverse from %q depth %d edges [%s]", step.StartNode, step.Depth, edges)
	case StepInsertNode:
		return fmt.Sprintf("Insert into %q", step.NodeType)
	case StepUpdateNodes:
		return "Update nodes"
	case StepDeleteNodes:
		return "Delete nodes"
	case StepCreateSchema:
		return fmt.Sprintf("Create schema %q", step.SchemaName)
	case StepDropSchema:
		return fmt.Sprintf("Drop schema %q", step.SchemaName)
	default:
		return string(step.Kind)
	}
}
