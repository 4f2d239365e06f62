package kv

import (
	"errors"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/coredb/coredb/internal/model"
)

// badgerTxn adapts a native badger transaction to the Transaction
// interface, maintaining the nodeByType/edgeFrom/edgeTo/edgeByType
// secondary indexes alongside the primary node/edge records.
type badgerTxn struct {
	engine   *BadgerEngine
	txn      *badger.Txn
	writable bool
	done     bool
}

func (t *badgerTxn) guard(needWrite bool) error {
	if t.done {
		return ErrClosed
	}
	if needWrite && !t.writable {
		return ErrReadOnly
	}
	return nil
}

func (t *badgerTxn) CreateNode(node *model.Node) error {
	if err := t.guard(true); err != nil {
		return err
	}
	if node.ID.IsZero() {
		return ErrInvalidID
	}
	key := nodeKey(node.ID)
	if _, err := t.txn.Get(key); err == nil {
		return ErrAlreadyExists
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}
	data, err := encodeNode(node)
	if err != nil {
		return err
	}
	if err := t.txn.Set(key, data); err != nil {
		return err
	}
	return t.txn.Set(nodeByTypeKey(node.Type, node.ID), []byte{})
}

func (t *badgerTxn) GetNode(id model.NodeID) (*model.Node, error) {
	if err := t.guard(false); err != nil {
		return nil, err
	}
	item, err := t.txn.Get(nodeKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var node *model.Node
	err = item.Value(func(val []byte) error {
		var decodeErr error
		node, decodeErr = decodeNode(val)
		return decodeErr
	})
	return node, err
}

func (t *badgerTxn) UpdateNode(node *model.Node) error {
	if err := t.guard(true); err != nil {
		return err
	}
	existing, err := t.GetNode(node.ID)
	if err != nil {
		return err
	}
	if existing.Type != node.Type {
		if err := t.txn.Delete(nodeByTypeKey(existing.Type, node.ID)); err != nil {
			return err
		}
		if err := t.txn.Set(nodeByTypeKey(node.Type, node.ID), []byte{}); err != nil {
			return err
		}
	}
	data, err := encodeNode(node)
	if err != nil {
		return err
	}
	return t.txn.Set(nodeKey(node.ID), data)
}

// DeleteNode removes the node and cascades to every incident edge in both
// directions, matching the memory engine's cascade-delete invariant.
func (t *badgerTxn) DeleteNode(id model.NodeID) error {
	if err := t.guard(true); err != nil {
		return err
	}
	node, err := t.GetNode(id)
	if err != nil {
		return err
	}
	if err := t.deleteEdgesWithPrefix(edgeFromPrefix(id)); err != nil {
		return err
	}
	if err := t.deleteEdgesWithPrefix(edgeToPrefix(id)); err != nil {
		return err
	}
	if err := t.txn.Delete(nodeByTypeKey(node.Type, id)); err != nil {
		return err
	}
	return t.txn.Delete(nodeKey(id))
}

func (t *badgerTxn) deleteEdgesWithPrefix(prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := t.txn.NewIterator(opts)
	var ids []model.EdgeID
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		ids = append(ids, trailingEdgeID(it.Item().KeyCopy(nil)))
	}
	it.Close()

	for _, id := range ids {
		if err := t.deleteEdgeLocked(id); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return nil
}

func (t *badgerTxn) CreateEdge(edge *model.Edge) error {
	if err := t.guard(true); err != nil {
		return err
	}
	if edge.ID.IsZero() {
		return ErrInvalidID
	}
	key := edgeKey(edge.ID)
	if _, err := t.txn.Get(key); err == nil {
		return ErrAlreadyExists
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}
	if _, err := t.GetNode(edge.From); err != nil {
		return ErrDanglingEdge
	}
	if _, err := t.GetNode(edge.To); err != nil {
		return ErrDanglingEdge
	}
	data, err := encodeEdge(edge)
	if err != nil {
		return err
	}
	if err := t.txn.Set(key, data); err != nil {
		return err
	}
	if err := t.txn.Set(edgeFromKey(edge.From, edge.ID), []byte{}); err != nil {
		return err
	}
	if err := t.txn.Set(edgeToKey(edge.To, edge.ID), []byte{}); err != nil {
		return err
	}
	return t.txn.Set(edgeByTypeKey(edge.Type, edge.ID), []byte{})
}

func (t *badgerTxn) GetEdge(id model.EdgeID) (*model.Edge, error) {
	if err := t.guard(false); err != nil {
		return nil, err
	}
	item, err := t.txn.Get(edgeKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var edge *model.Edge
	err = item.Value(func(val []byte) error {
		var decodeErr error
		edge, decodeErr = decodeEdge(val)
		return decodeErr
	})
	return edge, err
}

func (t *badgerTxn) UpdateEdge(edge *model.Edge) error {
	if err := t.guard(true); err != nil {
		return err
	}
	if _, err := t.GetEdge(edge.ID); err != nil {
		return err
	}
	data, err := encodeEdge(edge)
	if err != nil {
		return err
	}
	return t.txn.Set(edgeKey(edge.ID), data)
}

func (t *badgerTxn) DeleteEdge(id model.EdgeID) error {
	if err := t.guard(true); err != nil {
		return err
	}
	return t.deleteEdgeLocked(id)
}

func (t *badgerTxn) deleteEdgeLocked(id model.EdgeID) error {
	edge, err := t.GetEdge(id)
	if err != nil {
		return err
	}
	if err := t.txn.Delete(edgeFromKey(edge.From, id)); err != nil {
		return err
	}
	if err := t.txn.Delete(edgeToKey(edge.To, id)); err != nil {
		return err
	}
	if err := t.txn.Delete(edgeByTypeKey(edge.Type, id)); err != nil {
		return err
	}
	return t.txn.Delete(edgeKey(id))
}

func (t *badgerTxn) NodesByType(nodeType string) ([]*model.Node, error) {
	if err := t.guard(false); err != nil {
		return nil, err
	}
	prefix := nodeByTypePrefix(nodeType)
	var out []*model.Node
	err := t.scan(prefix, func(key []byte) error {
		n, err := t.GetNode(trailingNodeID(key))
		if err != nil {
			return err
		}
		out = append(out, n)
		return nil
	})
	return out, err
}

func (t *badgerTxn) AllNodes() ([]*model.Node, error) {
	if err := t.guard(false); err != nil {
		return nil, err
	}
	var out []*model.Node
	err := t.scan([]byte{prefixNode}, func(key []byte) error {
		item, err := t.txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			n, err := decodeNode(val)
			if err != nil {
				return err
			}
			out = append(out, n)
			return nil
		})
	})
	return out, err
}

func (t *badgerTxn) NodeCount() (int64, error) {
	nodes, err := t.AllNodes()
	if err != nil {
		return 0, err
	}
	return int64(len(nodes)), nil
}

func (t *badgerTxn) EdgesByType(edgeType string) ([]*model.Edge, error) {
	if err := t.guard(false); err != nil {
		return nil, err
	}
	var out []*model.Edge
	err := t.scan(edgeByTypePrefix(edgeType), func(key []byte) error {
		e, err := t.GetEdge(trailingEdgeID(key))
		if err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	return out, err
}

func (t *badgerTxn) OutgoingEdges(id model.NodeID) ([]*model.Edge, error) {
	if err := t.guard(false); err != nil {
		return nil, err
	}
	var out []*model.Edge
	err := t.scan(edgeFromPrefix(id), func(key []byte) error {
		e, err := t.GetEdge(trailingEdgeID(key))
		if err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	return out, err
}

func (t *badgerTxn) IncomingEdges(id model.NodeID) ([]*model.Edge, error) {
	if err := t.guard(false); err != nil {
		return nil, err
	}
	var out []*model.Edge
	err := t.scan(edgeToPrefix(id), func(key []byte) error {
		e, err := t.GetEdge(trailingEdgeID(key))
		if err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	return out, err
}

func (t *badgerTxn) AllEdges() ([]*model.Edge, error) {
	if err := t.guard(false); err != nil {
		return nil, err
	}
	var out []*model.Edge
	err := t.scan([]byte{prefixEdge}, func(key []byte) error {
		item, err := t.txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			e, err := decodeEdge(val)
			if err != nil {
				return err
			}
			out = append(out, e)
			return nil
		})
	})
	return out, err
}

func (t *badgerTxn) EdgeCount() (int64, error) {
	edges, err := t.AllEdges()
	if err != nil {
		return 0, err
	}
	return int64(len(edges)), nil
}

// scan iterates every key matching prefix, key-only (PrefetchValues
// disabled), invoking fn with a copy of each key. fn may perform further
// reads against the same transaction.
func (t *badgerTxn) scan(prefix []byte, fn func(key []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := t.txn.NewIterator(opts)
	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, k := range keys {
		if err := fn(k); err != nil {
			return err
		}
	}
	return nil
}

func (t *badgerTxn) BeginTx(bool) (Transaction, error) { return nil, ErrClosed }

func (t *badgerTxn) Close() error { return t.guard(false) }

func (t *badgerTxn) Commit() error {
	if err := t.guard(false); err != nil {
		return err
	}
	t.done = true
	err := t.txn.Commit()
	if t.writable {
		t.engine.writeMu.Unlock()
	}
	return err
}

func (t *badgerTxn) Rollback() error {
	if err := t.guard(false); err != nil {
		return err
	}
	t.done = true
	t.txn.Discard()
	if t.writable {
		t.engine.writeMu.Unlock()
	}
	return nil
}
