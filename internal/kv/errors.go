// Package kv implements the embedded physical store: a key/value engine
// with secondary multimap indexes (by node type, by edge endpoint, by edge
// type) shared by the graph, key/value, and tabular views layered on top of
// it. Two implementations satisfy the Engine interface: an in-memory engine
// for tests and small datasets, and a badger-backed engine for durable,
// disk-resident databases.
package kv

import "errors"

var (
	ErrNotFound      = errors.New("kv: not found")
	ErrAlreadyExists = errors.New("kv: already exists")
	ErrClosed        = errors.New("kv: engine closed")
	ErrInvalidID     = errors.New("kv: invalid id")
	ErrDanglingEdge  = errors.New("kv: edge references a node that does not exist")
	ErrReadOnly      = errors.New("kv: transaction is read-only")
	ErrCorrupted     = errors.New("kv: corrupted record")
)
