package model

import "encoding/json"

// Node is a labeled vertex: an identity, a type, and a bag of properties.
type Node struct {
	ID         NodeID
	Type       string
	Properties *Object
	CreatedAt  Timestamp
	UpdatedAt  Timestamp
}

// NewNode builds a Node with a fresh random ID and the current time stamped
// into both CreatedAt and UpdatedAt.
func NewNode(nodeType string, props *Object) *Node {
	if props == nil {
		props = NewObject()
	}
	now := Now()
	return &Node{
		ID:         NewNodeID(),
		Type:       nodeType,
		Properties: props,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Get returns a property value, or (Null, false) if absent.
func (n *Node) Get(key string) (Value, bool) {
	return n.Properties.Get(key)
}

// Set assigns a property value directly, without touching UpdatedAt. Use
// ApplyUpdate for the merge-and-bump semantics callers normally want.
func (n *Node) Set(key string, v Value) {
	n.Properties.Set(key, v)
}

// ApplyUpdate merges patch into the node's properties, overwriting any
// matching keys, and bumps UpdatedAt to now.
func (n *Node) ApplyUpdate(patch *Object) {
	n.Properties.Merge(patch)
	n.UpdatedAt = Now()
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	return &Node{
		ID:         n.ID,
		Type:       n.Type,
		Properties: n.Properties.Clone(),
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
}

type nodeJSON struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Properties json.RawMessage `json:"properties"`
	CreatedAt  int64           `json:"created_at"`
	UpdatedAt  int64           `json:"updated_at"`
}

// MarshalJSON implements json.Marshaler.
func (n *Node) MarshalJSON() ([]byte, error) {
	props, err := ObjectValue(n.Properties).MarshalJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(nodeJSON{
		ID:         n.ID.String(),
		Type:       n.Type,
		Properties: props,
		CreatedAt:  int64(n.CreatedAt),
		UpdatedAt:  int64(n.UpdatedAt),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w nodeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	id, err := ParseNodeID(w.ID)
	if err != nil {
		return err
	}
	props, err := ParseJSON(w.Properties)
	if err != nil {
		return err
	}
	obj, _ := props.AsObject()
	n.ID = id
	n.Type = w.Type
	n.Properties = obj
	n.CreatedAt = Timestamp(w.CreatedAt)
	n.UpdatedAt = Timestamp(w.UpdatedAt)
	return nil
}
