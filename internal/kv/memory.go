package kv

import (
	"sync"

	"github.com/coredb/coredb/internal/model"
)

// MemoryEngine is a thread-safe, in-memory Engine. It never touches disk;
// everything is lost on process exit. Used for tests, small datasets, and
// as the reference implementation the disk-backed engine is checked
// against.
type MemoryEngine struct {
	mu    sync.RWMutex
	nodes map[model.NodeID]*model.Node
	edges map[model.EdgeID]*model.Edge

	nodeByType map[string]map[model.NodeID]struct{}
	edgeFrom   map[model.NodeID]map[model.EdgeID]struct{}
	edgeTo     map[model.NodeID]map[model.EdgeID]struct{}
	edgeByType map[string]map[model.EdgeID]struct{}

	writeMu sync.Mutex
	closed  bool
}

// NewMemoryEngine returns an empty, ready-to-use in-memory engine.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{
		nodes:      make(map[model.NodeID]*model.Node),
		edges:      make(map[model.EdgeID]*model.Edge),
		nodeByType: make(map[string]map[model.NodeID]struct{}),
		edgeFrom:   make(map[model.NodeID]map[model.EdgeID]struct{}),
		edgeTo:     make(map[model.NodeID]map[model.EdgeID]struct{}),
		edgeByType: make(map[string]map[model.EdgeID]struct{}),
	}
}

func (m *MemoryEngine) CreateNode(node *model.Node) error {
	if node.ID.IsZero() {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if _, exists := m.nodes[node.ID]; exists {
		return ErrAlreadyExists
	}
	m.createNodeLocked(node.Clone())
	return nil
}

func (m *MemoryEngine) createNodeLocked(node *model.Node) {
	m.nodes[node.ID] = node
	if m.nodeByType[node.Type] == nil {
		m.nodeByType[node.Type] = make(map[model.NodeID]struct{})
	}
	m.nodeByType[node.Type][node.ID] = struct{}{}
}

func (m *MemoryEngine) GetNode(id model.NodeID) (*model.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return n.Clone(), nil
}

func (m *MemoryEngine) UpdateNode(node *model.Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	existing, ok := m.nodes[node.ID]
	if !ok {
		return ErrNotFound
	}
	if existing.Type != node.Type {
		delete(m.nodeByType[existing.Type], node.ID)
		if m.nodeByType[node.Type] == nil {
			m.nodeByType[node.Type] = make(map[model.NodeID]struct{})
		}
		m.nodeByType[node.Type][node.ID] = struct{}{}
	}
	m.nodes[node.ID] = node.Clone()
	return nil
}

// DeleteNode removes the node and, per the cascade-delete invariant, every
// edge incident to it in either direction.
func (m *MemoryEngine) DeleteNode(id model.NodeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	node, ok := m.nodes[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.nodeByType[node.Type], id)

	for edgeID := range m.edgeFrom[id] {
		m.removeEdgeIndexesLocked(edgeID)
		delete(m.edges, edgeID)
	}
	delete(m.edgeFrom, id)

	for edgeID := range m.edgeTo[id] {
		m.removeEdgeIndexesLocked(edgeID)
		delete(m.edges, edgeID)
	}
	delete(m.edgeTo, id)

	delete(m.nodes, id)
	return nil
}

// removeEdgeIndexesLocked strips edgeID out of the edgeFrom, edgeTo and
// edgeByType indexes. Caller holds m.mu.
func (m *MemoryEngine) removeEdgeIndexesLocked(edgeID model.EdgeID) {
	edge, ok := m.edges[edgeID]
	if !ok {
		return
	}
	if from := m.edgeFrom[edge.From]; from != nil {
		delete(from, edgeID)
	}
	if to := m.edgeTo[edge.To]; to != nil {
		delete(to, edgeID)
	}
	if byType := m.edgeByType[edge.Type]; byType != nil {
		delete(byType, edgeID)
	}
}

func (m *MemoryEngine) NodesByType(nodeType string) ([]*model.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.nodeByType[nodeType]
	out := make([]*model.Node, 0, len(ids))
	for id := range ids {
		out = append(out, m.nodes[id].Clone())
	}
	return out, nil
}

func (m *MemoryEngine) AllNodes() ([]*model.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Node, 0, len(m.nodes))
	for _, n := range m.nodes {
		out = append(out, n.Clone())
	}
	return out, nil
}

func (m *MemoryEngine) NodeCount() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.nodes)), nil
}

func (m *MemoryEngine) CreateEdge(edge *model.Edge) error {
	if edge.ID.IsZero() {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if _, exists := m.edges[edge.ID]; exists {
		return ErrAlreadyExists
	}
	if _, ok := m.nodes[edge.From]; !ok {
		return ErrDanglingEdge
	}
	if _, ok := m.nodes[edge.To]; !ok {
		return ErrDanglingEdge
	}
	m.createEdgeLocked(edge.Clone())
	return nil
}

func (m *MemoryEngine) createEdgeLocked(edge *model.Edge) {
	m.edges[edge.ID] = edge
	if m.edgeFrom[edge.From] == nil {
		m.edgeFrom[edge.From] = make(map[model.EdgeID]struct{})
	}
	m.edgeFrom[edge.From][edge.ID] = struct{}{}

	if m.edgeTo[edge.To] == nil {
		m.edgeTo[edge.To] = make(map[model.EdgeID]struct{})
	}
	m.edgeTo[edge.To][edge.ID] = struct{}{}

	if m.edgeByType[edge.Type] == nil {
		m.edgeByType[edge.Type] = make(map[model.EdgeID]struct{})
	}
	m.edgeByType[edge.Type][edge.ID] = struct{}{}
}

func (m *MemoryEngine) GetEdge(id model.EdgeID) (*model.Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.edges[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e.Clone(), nil
}

func (m *MemoryEngine) UpdateEdge(edge *model.Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if _, ok := m.edges[edge.ID]; !ok {
		return ErrNotFound
	}
	m.edges[edge.ID] = edge.Clone()
	return nil
}

func (m *MemoryEngine) DeleteEdge(id model.EdgeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if _, ok := m.edges[id]; !ok {
		return ErrNotFound
	}
	m.removeEdgeIndexesLocked(id)
	delete(m.edges, id)
	return nil
}

func (m *MemoryEngine) EdgesByType(edgeType string) ([]*model.Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.edgeByType[edgeType]
	out := make([]*model.Edge, 0, len(ids))
	for id := range ids {
		out = append(out, m.edges[id].Clone())
	}
	return out, nil
}

func (m *MemoryEngine) OutgoingEdges(id model.NodeID) ([]*model.Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.edgeFrom[id]
	out := make([]*model.Edge, 0, len(ids))
	for eid := range ids {
		out = append(out, m.edges[eid].Clone())
	}
	return out, nil
}

func (m *MemoryEngine) IncomingEdges(id model.NodeID) ([]*model.Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.edgeTo[id]
	out := make([]*model.Edge, 0, len(ids))
	for eid := range ids {
		out = append(out, m.edges[eid].Clone())
	}
	return out, nil
}

func (m *MemoryEngine) AllEdges() ([]*model.Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Edge, 0, len(m.edges))
	for _, e := range m.edges {
		out = append(out, e.Clone())
	}
	return out, nil
}

func (m *MemoryEngine) EdgeCount() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.edges)), nil
}

func (m *MemoryEngine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// BeginTx opens a transaction over the engine. Writable transactions hold
// the engine's single-writer slot until Commit or Rollback, buffering
// their effects so Rollback can undo them cleanly. Read-only transactions
// take an immediate snapshot and never block writers.
func (m *MemoryEngine) BeginTx(writable bool) (Transaction, error) {
	if writable {
		m.writeMu.Lock()
		return newWritableTxn(m), nil
	}
	return &readOnlyTxn{engine: m.snapshot()}, nil
}

// snapshot returns a new MemoryEngine whose maps are point-in-time copies;
// since CreateNode/UpdateNode/DeleteNode always replace (never mutate in
// place) the stored *model.Node/*model.Edge, a shallow copy of the index
// maps is a correct MVCC snapshot.
func (m *MemoryEngine) snapshot() *MemoryEngine {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := NewMemoryEngine()
	for k, v := range m.nodes {
		s.nodes[k] = v
	}
	for k, v := range m.edges {
		s.edges[k] = v
	}
	for k, set := range m.nodeByType {
		s.nodeByType[k] = cloneIDSet(set)
	}
	for k, set := range m.edgeFrom {
		s.edgeFrom[k] = cloneIDSet(set)
	}
	for k, set := range m.edgeTo {
		s.edgeTo[k] = cloneIDSet(set)
	}
	for k, set := range m.edgeByType {
		s.edgeByType[k] = cloneIDSet(set)
	}
	return s
}

func cloneIDSet[T comparable](set map[T]struct{}) map[T]struct{} {
	out := make(map[T]struct{}, len(set))
	for k := range set {
		out[k] = struct{}{}
	}
	return out
}

