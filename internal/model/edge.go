package model

import "encoding/json"

// Edge is a directed, typed relationship between two nodes, carrying its
// own property bag.
type Edge struct {
	ID         EdgeID
	From       NodeID
	To         NodeID
	Type       string
	Properties *Object
	CreatedAt  Timestamp
}

// NewEdge builds an Edge with a fresh random ID and the current time
// stamped into CreatedAt.
func NewEdge(from, to NodeID, edgeType string, props *Object) *Edge {
	if props == nil {
		props = NewObject()
	}
	return &Edge{
		ID:         NewEdgeID(),
		From:       from,
		To:         to,
		Type:       edgeType,
		Properties: props,
		CreatedAt:  Now(),
	}
}

// Get returns a property value, or (Null, false) if absent.
func (e *Edge) Get(key string) (Value, bool) {
	return e.Properties.Get(key)
}

// Clone returns a deep copy of the edge.
func (e *Edge) Clone() *Edge {
	return &Edge{
		ID:         e.ID,
		From:       e.From,
		To:         e.To,
		Type:       e.Type,
		Properties: e.Properties.Clone(),
		CreatedAt:  e.CreatedAt,
	}
}

type edgeJSON struct {
	ID         string          `json:"id"`
	From       string          `json:"from"`
	To         string          `json:"to"`
	Type       string          `json:"type"`
	Properties json.RawMessage `json:"properties"`
	CreatedAt  int64           `json:"created_at"`
}

// MarshalJSON implements json.Marshaler.
func (e *Edge) MarshalJSON() ([]byte, error) {
	props, err := ObjectValue(e.Properties).MarshalJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(edgeJSON{
		ID:         e.ID.String(),
		From:       e.From.String(),
		To:         e.To.String(),
		Type:       e.Type,
		Properties: props,
		CreatedAt:  int64(e.CreatedAt),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Edge) UnmarshalJSON(data []byte) error {
	var w edgeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	id, err := ParseEdgeID(w.ID)
	if err != nil {
		return err
	}
	from, err := ParseNodeID(w.From)
	if err != nil {
		return err
	}
	to, err := ParseNodeID(w.To)
	if err != nil {
		return err
	}
	props, err := ParseJSON(w.Properties)
	if err != nil {
		return err
	}
	obj, _ := props.AsObject()
	e.ID = id
	e.From = from
	e.To = to
	e.Type = w.Type
	e.Properties = obj
	e.CreatedAt = Timestamp(w.CreatedAt)
	return nil
}
