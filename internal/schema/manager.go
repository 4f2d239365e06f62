package schema

import (
	"encoding/json"
	"fmt"

	"github.com/coredb/coredb/internal/kv"
	"github.com/coredb/coredb/internal/model"
)

// Reserved node types under which schemas and relations are persisted.
const (
	SchemaNodeType   = "__schema__"
	RelationNodeType = "__relation__"
)

// Manager creates, loads, and drops schemas and relations, persisting
// them as reserved-type nodes in the backing store.
type Manager struct {
	engine kv.Engine
}

// NewManager returns a schema Manager backed by engine.
func NewManager(engine kv.Engine) *Manager {
	return &Manager{engine: engine}
}

// CreateSchema parses fieldsStr with ParseFields and persists a new
// Schema named name, or updates the existing one if name is already
// registered.
func (m *Manager) CreateSchema(name, fieldsStr string) (*Schema, error) {
	fields, err := ParseFields(fieldsStr)
	if err != nil {
		return nil, err
	}
	s := NewSchema(name, fields)
	if err := m.saveSchema(s); err != nil {
		return nil, err
	}
	return s, nil
}

// CreateRelationship registers a relation between two schemas.
func (m *Manager) CreateRelationship(from, to, relationType, alias string) (*SchemaRelation, error) {
	kind, err := ParseRelationType(relationType)
	if err != nil {
		return nil, err
	}
	rel := &SchemaRelation{
		FromSchema: from,
		ToSchema:   to,
		Kind:       kind,
		Alias:      alias,
		EdgeType:   fmt.Sprintf("%s_%s", from, to),
	}
	if err := m.saveRelation(rel); err != nil {
		return nil, err
	}
	return rel, nil
}

// ListSchemas returns every registered schema.
func (m *Manager) ListSchemas() ([]*Schema, error) {
	return m.loadSchemas()
}

// GetSchema returns the schema named name.
func (m *Manager) GetSchema(name string) (*Schema, error) {
	schemas, err := m.loadSchemas()
	if err != nil {
		return nil, err
	}
	for _, s := range schemas {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// DropSchema removes the schema named name. Unless force is true, it
// refuses when any node of that type still exists.
func (m *Manager) DropSchema(name string, force bool) error {
	if !force {
		nodes, err := m.engine.NodesByType(name)
		if err != nil {
			return err
		}
		if len(nodes) > 0 {
			return fmt.Errorf("%w: %s", ErrInUse, name)
		}
	}
	return m.removeSchema(name)
}

func (m *Manager) saveSchema(s *Schema) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	props := model.NewObject()
	props.Set("name", model.String(s.Name))
	props.Set("schema_data", model.Bytes(data))

	existing, err := m.engine.NodesByType(SchemaNodeType)
	if err != nil {
		return err
	}
	for _, node := range existing {
		if n, ok := nodeSchemaName(node); ok && n == s.Name {
			node.Properties = props
			return m.engine.UpdateNode(node)
		}
	}

	node := model.NewNode(SchemaNodeType, props)
	return m.engine.CreateNode(node)
}

func (m *Manager) saveRelation(rel *SchemaRelation) error {
	data, err := json.Marshal(rel)
	if err != nil {
		return err
	}
	props := model.NewObject()
	props.Set("from", model.String(rel.FromSchema))
	props.Set("to", model.String(rel.ToSchema))
	props.Set("relation_data", model.Bytes(data))

	node := model.NewNode(RelationNodeType, props)
	return m.engine.CreateNode(node)
}

func (m *Manager) loadSchemas() ([]*Schema, error) {
	nodes, err := m.engine.NodesByType(SchemaNodeType)
	if err != nil {
		return nil, err
	}
	var schemas []*Schema
	for _, node := range nodes {
		raw, ok := node.Properties.Get("schema_data")
		if !ok {
			continue
		}
		data, ok := raw.AsBytes()
		if !ok {
			continue
		}
		var s Schema
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSchemaRecord, node.ID, err)
		}
		schemas = append(schemas, &s)
	}
	return schemas, nil
}

func (m *Manager) removeSchema(name string) error {
	nodes, err := m.engine.NodesByType(SchemaNodeType)
	if err != nil {
		return err
	}
	for _, node := range nodes {
		if n, ok := nodeSchemaName(node); ok && n == name {
			return m.engine.DeleteNode(node.ID)
		}
	}
	return nil
}

func nodeSchemaName(node *model.Node) (string, bool) {
	v, ok := node.Properties.Get("name")
	if !ok {
		return "", false
	}
	return v.AsString()
}
