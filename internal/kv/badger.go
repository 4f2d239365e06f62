package kv

import (
	"sync"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/coredb/coredb/internal/model"
)

// BadgerEngine is the durable Engine backed by BadgerDB, an LSM-tree
// key/value store with MVCC snapshots and transactions — the same
// primitives the graph/KV/tabular views above it need, so the engine
// itself is a thin, prefix-keyed layer over badger's own guarantees.
type BadgerEngine struct {
	db      *badger.DB
	writeMu sync.Mutex
	closed  bool
	mu      sync.RWMutex
}

// Open opens (creating if necessary) a durable badger-backed engine
// rooted at dataDir.
func Open(dataDir string) (*BadgerEngine, error) {
	opts := badger.DefaultOptions(dataDir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerEngine{db: db}, nil
}

// OpenInMemory opens a badger engine that never touches disk, useful for
// tests that want BadgerEngine's exact code path without file I/O.
func OpenInMemory() (*BadgerEngine, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerEngine{db: db}, nil
}

func (b *BadgerEngine) checkOpen() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	return nil
}

func (b *BadgerEngine) CreateNode(node *model.Node) error {
	tx, err := b.BeginTx(true)
	if err != nil {
		return err
	}
	if err := tx.CreateNode(node); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (b *BadgerEngine) GetNode(id model.NodeID) (*model.Node, error) {
	tx, err := b.BeginTx(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	return tx.GetNode(id)
}

func (b *BadgerEngine) UpdateNode(node *model.Node) error {
	tx, err := b.BeginTx(true)
	if err != nil {
		return err
	}
	if err := tx.UpdateNode(node); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (b *BadgerEngine) DeleteNode(id model.NodeID) error {
	tx, err := b.BeginTx(true)
	if err != nil {
		return err
	}
	if err := tx.DeleteNode(id); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (b *BadgerEngine) NodesByType(nodeType string) ([]*model.Node, error) {
	tx, err := b.BeginTx(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	return tx.NodesByType(nodeType)
}

func (b *BadgerEngine) AllNodes() ([]*model.Node, error) {
	tx, err := b.BeginTx(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	return tx.AllNodes()
}

func (b *BadgerEngine) NodeCount() (int64, error) {
	tx, err := b.BeginTx(false)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	return tx.NodeCount()
}

func (b *BadgerEngine) CreateEdge(edge *model.Edge) error {
	tx, err := b.BeginTx(true)
	if err != nil {
		return err
	}
	if err := tx.CreateEdge(edge); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (b *BadgerEngine) GetEdge(id model.EdgeID) (*model.Edge, error) {
	tx, err := b.BeginTx(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	return tx.GetEdge(id)
}

func (b *BadgerEngine) UpdateEdge(edge *model.Edge) error {
	tx, err := b.BeginTx(true)
	if err != nil {
		return err
	}
	if err := tx.UpdateEdge(edge); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (b *BadgerEngine) DeleteEdge(id model.EdgeID) error {
	tx, err := b.BeginTx(true)
	if err != nil {
		return err
	}
	if err := tx.DeleteEdge(id); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (b *BadgerEngine) EdgesByType(edgeType string) ([]*model.Edge, error) {
	tx, err := b.BeginTx(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	return tx.EdgesByType(edgeType)
}

func (b *BadgerEngine) OutgoingEdges(id model.NodeID) ([]*model.Edge, error) {
	tx, err := b.BeginTx(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	return tx.OutgoingEdges(id)
}

func (b *BadgerEngine) IncomingEdges(id model.NodeID) ([]*model.Edge, error) {
	tx, err := b.BeginTx(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	return tx.IncomingEdges(id)
}

func (b *BadgerEngine) AllEdges() ([]*model.Edge, error) {
	tx, err := b.BeginTx(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	return tx.AllEdges()
}

func (b *BadgerEngine) EdgeCount() (int64, error) {
	tx, err := b.BeginTx(false)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	return tx.EdgeCount()
}

// BeginTx opens a transaction. Writable transactions additionally hold
// writeMu, giving the engine the single-writer discipline §4.1 asks for
// on top of badger's own MVCC snapshot isolation.
func (b *BadgerEngine) BeginTx(writable bool) (Transaction, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	if writable {
		b.writeMu.Lock()
	}
	txn := b.db.NewTransaction(writable)
	return &badgerTxn{engine: b, txn: txn, writable: writable}, nil
}

func (b *BadgerEngine) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.db.Close()
}

// DB exposes the underlying badger handle for raw access outside the
// graph/node/edge model; Database.Status uses it to read the on-disk size.
func (b *BadgerEngine) DB() *badger.DB { return b.db }
