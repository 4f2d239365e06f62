package query

import (
	"sort"

	"github.com/coredb/coredb/internal/model"
)

// QueryResult is a tabular result: a column list plus rows of Values in
// that column order, matching the original engine's QueryResult.
type QueryResult struct {
	Columns      []string        `json:"columns"`
	Rows         [][]model.Value `json:"rows"`
	RowsAffected uint64          `json:"rows_affected"`
}

// Empty returns a zero-row result.
func Empty() QueryResult {
	return QueryResult{}
}

// RowCount returns the number of rows.
func (r QueryResult) RowCount() int { return len(r.Rows) }

// IsEmpty reports whether the result has no rows.
func (r QueryResult) IsEmpty() bool { return len(r.Rows) == 0 }

// FromNodes builds a QueryResult from a set of nodes. The column union is
// sorted, with id and type pinned first.
func FromNodes(nodes []*model.Node) QueryResult {
	if len(nodes) == 0 {
		return Empty()
	}

	seen := map[string]bool{"id": true, "type": true}
	for _, n := range nodes {
		for _, k := range n.Properties.Keys() {
			seen[k] = true
		}
	}
	var rest []string
	for k := range seen {
		if k != "id" && k != "type" {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	columns := append([]string{"id", "type"}, rest...)

	rows := make([][]model.Value, len(nodes))
	for i, n := range nodes {
		row := make([]model.Value, len(columns))
		for c, col := range columns {
			switch col {
			case "id":
				row[c] = model.String(n.ID.String())
			case "type":
				row[c] = model.String(n.Type)
			default:
				if v, ok := n.Properties.Get(col); ok {
					row[c] = v
				} else {
					row[c] = model.Null
				}
			}
		}
		rows[i] = row
	}

	return QueryResult{Columns: columns, Rows: rows}
}

// FromEdges builds a QueryResult with a fixed id/from/to/type column set.
func FromEdges(edges []*model.Edge) QueryResult {
	if len(edges) == 0 {
		return Empty()
	}
	columns := []string{"id", "from", "to", "type"}
	rows := make([][]model.Value, len(edges))
	for i, e := range edges {
		rows[i] = []model.Value{
			model.String(e.ID.String()),
			model.String(e.From.String()),
			model.String(e.To.String()),
			model.String(e.Type),
		}
	}
	return QueryResult{Columns: columns, Rows: rows}
}

// TraversalResult is the outcome of a graph traversal: the root, every
// visited node, every traversed edge, the depth reached, and an
// adjacency map from NodeId string to its outgoing neighbor id strings.
type TraversalResult struct {
	Root      *model.Node         `json:"root"`
	Nodes     []*model.Node       `json:"nodes"`
	Edges     []*model.Edge       `json:"edges"`
	Depth     uint32              `json:"depth"`
	Adjacency map[string][]string `json:"adjacency"`
}

// ToQueryResult renders the visited node set as a tabular QueryResult.
func (t TraversalResult) ToQueryResult() QueryResult {
	return FromNodes(t.Nodes)
}
