package wal

import (
	"encoding/json"
	"fmt"

	"github.com/coredb/coredb/internal/kv"
	"github.com/coredb/coredb/internal/model"
)

// Engine wraps a kv.Engine, logging every mutation to a WAL before
// applying it. Reads pass straight through.
type Engine struct {
	inner kv.Engine
	wal   *WAL
}

// NewEngine wraps inner with write-ahead logging through wal.
func NewEngine(inner kv.Engine, w *WAL) *Engine {
	return &Engine{inner: inner, wal: w}
}

func (e *Engine) CreateNode(node *model.Node) error {
	if _, err := e.wal.Append(OpCreateNode, node); err != nil {
		return err
	}
	return e.inner.CreateNode(node)
}

func (e *Engine) UpdateNode(node *model.Node) error {
	if _, err := e.wal.Append(OpUpdateNode, node); err != nil {
		return err
	}
	return e.inner.UpdateNode(node)
}

func (e *Engine) DeleteNode(id model.NodeID) error {
	if _, err := e.wal.Append(OpDeleteNode, deleteNodePayload{ID: id}); err != nil {
		return err
	}
	return e.inner.DeleteNode(id)
}

func (e *Engine) CreateEdge(edge *model.Edge) error {
	if _, err := e.wal.Append(OpCreateEdge, edge); err != nil {
		return err
	}
	return e.inner.CreateEdge(edge)
}

func (e *Engine) UpdateEdge(edge *model.Edge) error {
	if _, err := e.wal.Append(OpUpdateEdge, edge); err != nil {
		return err
	}
	return e.inner.UpdateEdge(edge)
}

func (e *Engine) DeleteEdge(id model.EdgeID) error {
	if _, err := e.wal.Append(OpDeleteEdge, deleteEdgePayload{ID: id}); err != nil {
		return err
	}
	return e.inner.DeleteEdge(id)
}

func (e *Engine) GetNode(id model.NodeID) (*model.Node, error) { return e.inner.GetNode(id) }
func (e *Engine) GetEdge(id model.EdgeID) (*model.Edge, error) { return e.inner.GetEdge(id) }
func (e *Engine) NodesByType(t string) ([]*model.Node, error)  { return e.inner.NodesByType(t) }
func (e *Engine) EdgesByType(t string) ([]*model.Edge, error)  { return e.inner.EdgesByType(t) }
func (e *Engine) OutgoingEdges(id model.NodeID) ([]*model.Edge, error) {
	return e.inner.OutgoingEdges(id)
}
func (e *Engine) IncomingEdges(id model.NodeID) ([]*model.Edge, error) {
	return e.inner.IncomingEdges(id)
}
func (e *Engine) AllNodes() ([]*model.Node, error) { return e.inner.AllNodes() }
func (e *Engine) AllEdges() ([]*model.Edge, error) { return e.inner.AllEdges() }
func (e *Engine) NodeCount() (int64, error)        { return e.inner.NodeCount() }
func (e *Engine) EdgeCount() (int64, error)        { return e.inner.EdgeCount() }

// BeginTx is not WAL-logged at the transaction level: individual mutating
// calls inside the transaction still go through inner directly, so a
// WAL-wrapped engine is only meaningful for the non-transactional API.
// Callers that need WAL-covered transactions should log a checkpoint
// around BeginTx/Commit themselves.
func (e *Engine) BeginTx(writable bool) (kv.Transaction, error) { return e.inner.BeginTx(writable) }

func (e *Engine) Close() error {
	if err := e.wal.Close(); err != nil {
		return err
	}
	return e.inner.Close()
}

type deleteNodePayload struct {
	ID model.NodeID `json:"id"`
}

type deleteEdgePayload struct {
	ID model.EdgeID `json:"id"`
}

// Recover replays every entry in the WAL at dir against a fresh
// kv.MemoryEngine and returns it, reconstructing the pre-crash state.
func Recover(dir string) (*kv.MemoryEngine, error) {
	path := dir + "/wal.log"
	entries, err := ReadEntries(path)
	if err != nil {
		return nil, fmt.Errorf("wal: reading log for recovery: %w", err)
	}
	engine := kv.NewMemoryEngine()
	for _, entry := range entries {
		if err := replay(engine, entry); err != nil {
			return nil, fmt.Errorf("wal: replaying sequence %d: %w", entry.Sequence, err)
		}
	}
	return engine, nil
}

func replay(engine *kv.MemoryEngine, entry Entry) error {
	switch entry.Operation {
	case OpCreateNode:
		var n model.Node
		if err := json.Unmarshal(entry.Data, &n); err != nil {
			return err
		}
		return engine.CreateNode(&n)
	case OpUpdateNode:
		var n model.Node
		if err := json.Unmarshal(entry.Data, &n); err != nil {
			return err
		}
		return engine.UpdateNode(&n)
	case OpDeleteNode:
		var p deleteNodePayload
		if err := json.Unmarshal(entry.Data, &p); err != nil {
			return err
		}
		return engine.DeleteNode(p.ID)
	case OpCreateEdge:
		var e model.Edge
		if err := json.Unmarshal(entry.Data, &e); err != nil {
			return err
		}
		return engine.CreateEdge(&e)
	case OpUpdateEdge:
		var e model.Edge
		if err := json.Unmarshal(entry.Data, &e); err != nil {
			return err
		}
		return engine.UpdateEdge(&e)
	case OpDeleteEdge:
		var p deleteEdgePayload
		if err := json.Unmarshal(entry.Data, &p); err != nil {
			return err
		}
		return engine.DeleteEdge(p.ID)
	case OpCheckpoint:
		return nil
	default:
		return fmt.Errorf("wal: unknown operation %q", entry.Operation)
	}
}
