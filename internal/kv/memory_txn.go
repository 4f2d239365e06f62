package kv

import "github.com/coredb/coredb/internal/model"

// readOnlyTxn serves every read from an immutable point-in-time snapshot
// and rejects all writes. It never blocks a concurrent writer.
type readOnlyTxn struct {
	engine *MemoryEngine
	done   bool
}

func (t *readOnlyTxn) guard() error {
	if t.done {
		return ErrClosed
	}
	return nil
}

func (t *readOnlyTxn) CreateNode(*model.Node) error      { return ErrReadOnly }
func (t *readOnlyTxn) UpdateNode(*model.Node) error      { return ErrReadOnly }
func (t *readOnlyTxn) DeleteNode(model.NodeID) error     { return ErrReadOnly }
func (t *readOnlyTxn) CreateEdge(*model.Edge) error      { return ErrReadOnly }
func (t *readOnlyTxn) UpdateEdge(*model.Edge) error      { return ErrReadOnly }
func (t *readOnlyTxn) DeleteEdge(model.EdgeID) error     { return ErrReadOnly }
func (t *readOnlyTxn) BeginTx(bool) (Transaction, error) { return nil, ErrClosed }

func (t *readOnlyTxn) GetNode(id model.NodeID) (*model.Node, error) {
	if err := t.guard(); err != nil {
		return nil, err
	}
	return t.engine.GetNode(id)
}
func (t *readOnlyTxn) NodesByType(nodeType string) ([]*model.Node, error) {
	if err := t.guard(); err != nil {
		return nil, err
	}
	return t.engine.NodesByType(nodeType)
}
func (t *readOnlyTxn) AllNodes() ([]*model.Node, error) {
	if err := t.guard(); err != nil {
		return nil, err
	}
	return t.engine.AllNodes()
}
func (t *readOnlyTxn) NodeCount() (int64, error) {
	if err := t.guard(); err != nil {
		return 0, err
	}
	return t.engine.NodeCount()
}
func (t *readOnlyTxn) GetEdge(id model.EdgeID) (*model.Edge, error) {
	if err := t.guard(); err != nil {
		return nil, err
	}
	return t.engine.GetEdge(id)
}
func (t *readOnlyTxn) EdgesByType(edgeType string) ([]*model.Edge, error) {
	if err := t.guard(); err != nil {
		return nil, err
	}
	return t.engine.EdgesByType(edgeType)
}
func (t *readOnlyTxn) OutgoingEdges(id model.NodeID) ([]*model.Edge, error) {
	if err := t.guard(); err != nil {
		return nil, err
	}
	return t.engine.OutgoingEdges(id)
}
func (t *readOnlyTxn) IncomingEdges(id model.NodeID) ([]*model.Edge, error) {
	if err := t.guard(); err != nil {
		return nil, err
	}
	return t.engine.IncomingEdges(id)
}
func (t *readOnlyTxn) AllEdges() ([]*model.Edge, error) {
	if err := t.guard(); err != nil {
		return nil, err
	}
	return t.engine.AllEdges()
}
func (t *readOnlyTxn) EdgeCount() (int64, error) {
	if err := t.guard(); err != nil {
		return 0, err
	}
	return t.engine.EdgeCount()
}
func (t *readOnlyTxn) Close() error { return t.guard() }
func (t *readOnlyTxn) Commit() error {
	if err := t.guard(); err != nil {
		return err
	}
	t.done = true
	return nil
}
func (t *readOnlyTxn) Rollback() error {
	if err := t.guard(); err != nil {
		return err
	}
	t.done = true
	return nil
}

// writableTxn buffers every write against an overlay so that reads inside
// the transaction see a read-your-writes view, while the live engine stays
// untouched until Commit replays the buffered operations in call order.
// Rollback simply discards the buffer and releases the writer slot.
type writableTxn struct {
	engine *MemoryEngine
	done   bool

	pendingNodes map[model.NodeID]*model.Node
	deletedNodes map[model.NodeID]struct{}
	pendingEdges map[model.EdgeID]*model.Edge
	deletedEdges map[model.EdgeID]struct{}

	ops []func(*MemoryEngine) error
}

func newWritableTxn(engine *MemoryEngine) *writableTxn {
	return &writableTxn{
		engine:       engine,
		pendingNodes: make(map[model.NodeID]*model.Node),
		deletedNodes: make(map[model.NodeID]struct{}),
		pendingEdges: make(map[model.EdgeID]*model.Edge),
		deletedEdges: make(map[model.EdgeID]struct{}),
	}
}

func (t *writableTxn) guard() error {
	if t.done {
		return ErrClosed
	}
	return nil
}

func (t *writableTxn) visibleNode(id model.NodeID) (*model.Node, bool) {
	if _, deleted := t.deletedNodes[id]; deleted {
		return nil, false
	}
	if n, ok := t.pendingNodes[id]; ok {
		return n.Clone(), true
	}
	n, err := t.engine.GetNode(id)
	if err != nil {
		return nil, false
	}
	return n, true
}

func (t *writableTxn) visibleEdge(id model.EdgeID) (*model.Edge, bool) {
	if _, deleted := t.deletedEdges[id]; deleted {
		return nil, false
	}
	if e, ok := t.pendingEdges[id]; ok {
		return e.Clone(), true
	}
	e, err := t.engine.GetEdge(id)
	if err != nil {
		return nil, false
	}
	return e, true
}

func (t *writableTxn) CreateNode(node *model.Node) error {
	if err := t.guard(); err != nil {
		return err
	}
	if node.ID.IsZero() {
		return ErrInvalidID
	}
	if _, exists := t.visibleNode(node.ID); exists {
		return ErrAlreadyExists
	}
	clone := node.Clone()
	t.pendingNodes[node.ID] = clone
	delete(t.deletedNodes, node.ID)
	t.ops = append(t.ops, func(e *MemoryEngine) error { return e.CreateNode(clone) })
	return nil
}

func (t *writableTxn) GetNode(id model.NodeID) (*model.Node, error) {
	if err := t.guard(); err != nil {
		return nil, err
	}
	n, ok := t.visibleNode(id)
	if !ok {
		return nil, ErrNotFound
	}
	return n, nil
}

func (t *writableTxn) UpdateNode(node *model.Node) error {
	if err := t.guard(); err != nil {
		return err
	}
	if _, exists := t.visibleNode(node.ID); !exists {
		return ErrNotFound
	}
	clone := node.Clone()
	t.pendingNodes[node.ID] = clone
	t.ops = append(t.ops, func(e *MemoryEngine) error { return e.UpdateNode(clone) })
	return nil
}

// DeleteNode marks the node, and every edge incident to it, deleted in the
// transaction's overlay, matching the engine's cascade-delete invariant.
func (t *writableTxn) DeleteNode(id model.NodeID) error {
	if err := t.guard(); err != nil {
		return err
	}
	if _, exists := t.visibleNode(id); !exists {
		return ErrNotFound
	}
	t.deletedNodes[id] = struct{}{}
	delete(t.pendingNodes, id)

	for _, edges := range [][]*model.Edge{t.committedIncident(id)} {
		for _, e := range edges {
			t.deletedEdges[e.ID] = struct{}{}
			delete(t.pendingEdges, e.ID)
		}
	}
	for eid, e := range t.pendingEdges {
		if e.From == id || e.To == id {
			t.deletedEdges[eid] = struct{}{}
			delete(t.pendingEdges, eid)
		}
	}

	t.ops = append(t.ops, func(e *MemoryEngine) error { return e.DeleteNode(id) })
	return nil
}

// committedIncident returns the edges incident to id as currently stored
// in the live (not-yet-committed) engine.
func (t *writableTxn) committedIncident(id model.NodeID) []*model.Edge {
	out, _ := t.engine.OutgoingEdges(id)
	in, _ := t.engine.IncomingEdges(id)
	return append(out, in...)
}

func (t *writableTxn) NodesByType(nodeType string) ([]*model.Node, error) {
	if err := t.guard(); err != nil {
		return nil, err
	}
	base, err := t.engine.NodesByType(nodeType)
	if err != nil {
		return nil, err
	}
	byID := make(map[model.NodeID]*model.Node, len(base))
	for _, n := range base {
		byID[n.ID] = n
	}
	for id := range t.deletedNodes {
		delete(byID, id)
	}
	for id, n := range t.pendingNodes {
		if n.Type == nodeType {
			byID[id] = n
		} else {
			delete(byID, id)
		}
	}
	out := make([]*model.Node, 0, len(byID))
	for _, n := range byID {
		out = append(out, n)
	}
	return out, nil
}

func (t *writableTxn) AllNodes() ([]*model.Node, error) {
	if err := t.guard(); err != nil {
		return nil, err
	}
	base, err := t.engine.AllNodes()
	if err != nil {
		return nil, err
	}
	byID := make(map[model.NodeID]*model.Node, len(base))
	for _, n := range base {
		byID[n.ID] = n
	}
	for id := range t.deletedNodes {
		delete(byID, id)
	}
	for id, n := range t.pendingNodes {
		byID[id] = n
	}
	out := make([]*model.Node, 0, len(byID))
	for _, n := range byID {
		out = append(out, n)
	}
	return out, nil
}

func (t *writableTxn) NodeCount() (int64, error) {
	nodes, err := t.AllNodes()
	if err != nil {
		return 0, err
	}
	return int64(len(nodes)), nil
}

func (t *writableTxn) CreateEdge(edge *model.Edge) error {
	if err := t.guard(); err != nil {
		return err
	}
	if edge.ID.IsZero() {
		return ErrInvalidID
	}
	if _, exists := t.visibleEdge(edge.ID); exists {
		return ErrAlreadyExists
	}
	if _, ok := t.visibleNode(edge.From); !ok {
		return ErrDanglingEdge
	}
	if _, ok := t.visibleNode(edge.To); !ok {
		return ErrDanglingEdge
	}
	clone := edge.Clone()
	t.pendingEdges[edge.ID] = clone
	delete(t.deletedEdges, edge.ID)
	t.ops = append(t.ops, func(e *MemoryEngine) error { return e.CreateEdge(clone) })
	return nil
}

func (t *writableTxn) GetEdge(id model.EdgeID) (*model.Edge, error) {
	if err := t.guard(); err != nil {
		return nil, err
	}
	e, ok := t.visibleEdge(id)
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (t *writableTxn) UpdateEdge(edge *model.Edge) error {
	if err := t.guard(); err != nil {
		return err
	}
	if _, exists := t.visibleEdge(edge.ID); !exists {
		return ErrNotFound
	}
	clone := edge.Clone()
	t.pendingEdges[edge.ID] = clone
	t.ops = append(t.ops, func(e *MemoryEngine) error { return e.UpdateEdge(clone) })
	return nil
}

func (t *writableTxn) DeleteEdge(id model.EdgeID) error {
	if err := t.guard(); err != nil {
		return err
	}
	if _, exists := t.visibleEdge(id); !exists {
		return ErrNotFound
	}
	t.deletedEdges[id] = struct{}{}
	delete(t.pendingEdges, id)
	t.ops = append(t.ops, func(e *MemoryEngine) error { return e.DeleteEdge(id) })
	return nil
}

func (t *writableTxn) EdgesByType(edgeType string) ([]*model.Edge, error) {
	if err := t.guard(); err != nil {
		return nil, err
	}
	base, err := t.engine.EdgesByType(edgeType)
	if err != nil {
		return nil, err
	}
	return t.mergeEdges(base, func(e *model.Edge) bool { return e.Type == edgeType }), nil
}

func (t *writableTxn) OutgoingEdges(id model.NodeID) ([]*model.Edge, error) {
	if err := t.guard(); err != nil {
		return nil, err
	}
	base, err := t.engine.OutgoingEdges(id)
	if err != nil {
		return nil, err
	}
	return t.mergeEdges(base, func(e *model.Edge) bool { return e.From == id }), nil
}

func (t *writableTxn) IncomingEdges(id model.NodeID) ([]*model.Edge, error) {
	if err := t.guard(); err != nil {
		return nil, err
	}
	base, err := t.engine.IncomingEdges(id)
	if err != nil {
		return nil, err
	}
	return t.mergeEdges(base, func(e *model.Edge) bool { return e.To == id }), nil
}

func (t *writableTxn) AllEdges() ([]*model.Edge, error) {
	if err := t.guard(); err != nil {
		return nil, err
	}
	base, err := t.engine.AllEdges()
	if err != nil {
		return nil, err
	}
	return t.mergeEdges(base, func(*model.Edge) bool { return true }), nil
}

func (t *writableTxn) EdgeCount() (int64, error) {
	edges, err := t.AllEdges()
	if err != nil {
		return 0, err
	}
	return int64(len(edges)), nil
}

func (t *writableTxn) mergeEdges(base []*model.Edge, match func(*model.Edge) bool) []*model.Edge {
	byID := make(map[model.EdgeID]*model.Edge, len(base))
	for _, e := range base {
		byID[e.ID] = e
	}
	for id := range t.deletedEdges {
		delete(byID, id)
	}
	for id, e := range t.pendingEdges {
		if match(e) {
			byID[id] = e
		} else {
			delete(byID, id)
		}
	}
	out := make([]*model.Edge, 0, len(byID))
	for _, e := range byID {
		out = append(out, e)
	}
	return out
}

func (t *writableTxn) BeginTx(bool) (Transaction, error) { return nil, ErrClosed }
func (t *writableTxn) Close() error                      { return t.guard() }

// Commit replays every buffered operation against the live engine in call
// order, then releases the writer slot.
func (t *writableTxn) Commit() error {
	if err := t.guard(); err != nil {
		return err
	}
	t.done = true
	defer t.engine.writeMu.Unlock()
	for _, op := range t.ops {
		if err := op(t.engine); err != nil {
			return err
		}
	}
	return nil
}

// Rollback discards the buffer without touching the live engine.
func (t *writableTxn) Rollback() error {
	if err := t.guard(); err != nil {
		return err
	}
	t.done = true
	t.engine.writeMu.Unlock()
	return nil
}
