package kv

import "github.com/coredb/coredb/internal/model"

// Engine is the physical store contract. Every layer above it (key/value
// view, graph view, tabular view, query executor) goes through an Engine
// rather than touching bytes directly.
//
// All methods are safe for concurrent use. Readers may run concurrently;
// BeginTx(true) serializes writers (single-writer, MVCC-snapshot readers).
type Engine interface {
	CreateNode(node *model.Node) error
	GetNode(id model.NodeID) (*model.Node, error)
	UpdateNode(node *model.Node) error
	DeleteNode(id model.NodeID) error
	NodesByType(nodeType string) ([]*model.Node, error)
	AllNodes() ([]*model.Node, error)
	NodeCount() (int64, error)

	CreateEdge(edge *model.Edge) error
	GetEdge(id model.EdgeID) (*model.Edge, error)
	UpdateEdge(edge *model.Edge) error
	DeleteEdge(id model.EdgeID) error
	EdgesByType(edgeType string) ([]*model.Edge, error)
	OutgoingEdges(id model.NodeID) ([]*model.Edge, error)
	IncomingEdges(id model.NodeID) ([]*model.Edge, error)
	AllEdges() ([]*model.Edge, error)
	EdgeCount() (int64, error)

	// BeginTx opens a transaction. A writable transaction holds the
	// engine's single-writer slot until Commit or Rollback; a read-only
	// transaction observes a consistent MVCC snapshot and never blocks
	// writers.
	BeginTx(writable bool) (Transaction, error)

	Close() error
}

// Transaction buffers reads and writes and applies them atomically on
// Commit. All Engine read/write methods are also available on Transaction
// so callers can use the same code path inside or outside a transaction.
type Transaction interface {
	Engine
	Commit() error
	Rollback() error
}
