package migrate

import "github.com/coredb/coredb/internal/schema"

// Generate compares old and updated and emits the ordered actions that
// transform old into updated: rename, then added fields, then removed
// fields, then modified fields and index flips — exactly in that order.
func Generate(old, updated *schema.Schema) []Action {
	var actions []Action

	if old.Name != updated.Name {
		actions = append(actions, Action{
			Kind:    ActionRenameSchema,
			OldName: old.Name,
			NewName: updated.Name,
		})
	}

	for i := range updated.Fields {
		field := updated.Fields[i]
		if _, ok := old.GetField(field.Name); !ok {
			actions = append(actions, Action{
				Kind:       ActionAddField,
				SchemaName: updated.Name,
				Field:      &field,
			})
		}
	}

	for i := range old.Fields {
		field := old.Fields[i]
		if _, ok := updated.GetField(field.Name); !ok {
			actions = append(actions, Action{
				Kind:       ActionRemoveField,
				SchemaName: updated.Name,
				FieldName:  field.Name,
			})
		}
	}

	for i := range updated.Fields {
		newField := updated.Fields[i]
		oldField, ok := old.GetField(newField.Name)
		if !ok {
			continue
		}

		if fieldChanged(*oldField, newField) {
			actions = append(actions, Action{
				Kind:       ActionModifyField,
				SchemaName: updated.Name,
				OldField:   oldField,
				NewField:   &newField,
			})
		}

		switch {
		case newField.Indexed && !oldField.Indexed:
			actions = append(actions, Action{
				Kind:       ActionAddIndex,
				SchemaName: updated.Name,
				FieldName:  newField.Name,
				Unique:     newField.Unique,
			})
		case !newField.Indexed && oldField.Indexed:
			actions = append(actions, Action{
				Kind:       ActionRemoveIndex,
				SchemaName: updated.Name,
				FieldName:  newField.Name,
			})
		}
	}

	return actions
}

func fieldChanged(old, updated schema.SchemaField) bool {
	if old.Type.Kind != updated.Type.Kind || old.Type.String() != updated.Type.String() {
		return true
	}
	if old.Nullable != updated.Nullable || old.Unique != updated.Unique {
		return true
	}
	if (old.Default == nil) != (updated.Default == nil) {
		return true
	}
	if old.Default != nil && updated.Default != nil && *old.Default != *updated.Default {
		return true
	}
	return false
}
