// Package query compiles a SQL subset into ParsedQuery, the wire shape
// shared with the (out of scope) natural-language translator and consumed
// by the planner.
package query

import "errors"

// ErrUnsupported is returned for constructs the subset deliberately
// rejects: OR, subqueries, joins, aggregates, multi-row VALUES.
var ErrUnsupported = errors.New("query: unsupported construct")

// ErrSyntax is returned for malformed input that doesn't match any
// supported statement shape.
var ErrSyntax = errors.New("query: syntax error")
