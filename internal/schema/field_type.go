package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coredb/coredb/internal/model"
)

// FieldKind is the discriminant of a FieldType.
type FieldKind string

const (
	KindString    FieldKind = "string"
	KindInt       FieldKind = "int"
	KindFloat     FieldKind = "float"
	KindBool      FieldKind = "bool"
	KindDateTime  FieldKind = "datetime"
	KindJSON      FieldKind = "json"
	KindBytes     FieldKind = "bytes"
	KindUUID      FieldKind = "uuid"
	KindEnum      FieldKind = "enum"
	KindArray     FieldKind = "array"
	KindReference FieldKind = "reference"
)

// FieldType describes the shape a field's values must take. Enum carries
// its allowed literals, Array carries its element type, Reference carries
// the target schema name; every other kind is a bare scalar.
type FieldType struct {
	Kind       FieldKind
	EnumValues []string
	Elem       *FieldType
	Reference  string
}

func scalar(k FieldKind) FieldType { return FieldType{Kind: k} }

var (
	TypeString   = scalar(KindString)
	TypeInt      = scalar(KindInt)
	TypeFloat    = scalar(KindFloat)
	TypeBool     = scalar(KindBool)
	TypeDateTime = scalar(KindDateTime)
	TypeJSON     = scalar(KindJSON)
	TypeBytes    = scalar(KindBytes)
	TypeUUID     = scalar(KindUUID)
)

// Enum builds an Enum field type over the given literals.
func Enum(values ...string) FieldType { return FieldType{Kind: KindEnum, EnumValues: values} }

// Array builds an Array field type over elem.
func Array(elem FieldType) FieldType { return FieldType{Kind: KindArray, Elem: &elem} }

// Reference builds a Reference field type pointing at target schema name.
func Reference(target string) FieldType { return FieldType{Kind: KindReference, Reference: target} }

// ParseFieldType parses the grammar used in field definitions:
// case-insensitive primitive names, "enum(a,b,c)", "array<T>", and
// "ref:name" / "reference:name". Unrecognized primitives default to
// String, matching the original's permissive parser.
func ParseFieldType(s string) FieldType {
	trimmed := strings.TrimSpace(s)
	lower := strings.ToLower(trimmed)

	if strings.HasPrefix(lower, "enum(") && strings.HasSuffix(lower, ")") {
		inner := trimmed[5 : len(trimmed)-1]
		var values []string
		for _, v := range strings.Split(inner, ",") {
			values = append(values, strings.TrimSpace(v))
		}
		return Enum(values...)
	}

	if strings.HasPrefix(lower, "array<") && strings.HasSuffix(lower, ">") {
		inner := trimmed[6 : len(trimmed)-1]
		elem := ParseFieldType(inner)
		return Array(elem)
	}

	if strings.HasPrefix(lower, "ref:") || strings.HasPrefix(lower, "reference:") {
		parts := strings.SplitN(trimmed, ":", 2)
		target := "unknown"
		if len(parts) == 2 {
			target = strings.TrimSpace(parts[1])
		}
		return Reference(target)
	}

	switch lower {
	case "string", "text", "varchar":
		return TypeString
	case "int", "integer", "bigint", "i64":
		return TypeInt
	case "float", "double", "decimal", "f64":
		return TypeFloat
	case "bool", "boolean":
		return TypeBool
	case "datetime", "timestamp", "date":
		return TypeDateTime
	case "json", "jsonb", "object":
		return TypeJSON
	case "bytes", "binary", "blob":
		return TypeBytes
	case "uuid", "id":
		return TypeUUID
	default:
		return TypeString
	}
}

// String renders the type back into its grammar form, the inverse of
// ParseFieldType. Used both for to_sql-style display and as the type's
// own JSON representation.
func (t FieldType) String() string {
	switch t.Kind {
	case KindEnum:
		return fmt.Sprintf("enum(%s)", strings.Join(t.EnumValues, ","))
	case KindArray:
		elem := "string"
		if t.Elem != nil {
			elem = t.Elem.String()
		}
		return fmt.Sprintf("array<%s>", elem)
	case KindReference:
		return "ref:" + t.Reference
	default:
		return string(t.Kind)
	}
}

// SQLType renders the closest SQL column type, for reference only.
func (t FieldType) SQLType() string {
	switch t.Kind {
	case KindString:
		return "TEXT"
	case KindInt:
		return "BIGINT"
	case KindFloat:
		return "DOUBLE PRECISION"
	case KindBool:
		return "BOOLEAN"
	case KindDateTime:
		return "TIMESTAMP"
	case KindJSON:
		return "JSONB"
	case KindBytes:
		return "BYTEA"
	case KindUUID:
		return "UUID"
	case KindEnum:
		return "TEXT"
	case KindArray:
		return "JSONB"
	case KindReference:
		return "UUID"
	default:
		return "TEXT"
	}
}

// Matches reports whether v is an acceptable value for this field type.
// Null always matches (nullability is checked separately); Int satisfies
// a Float field; Uuid/Reference accept a String that parses as a NodeID.
func (t FieldType) Matches(v model.Value) bool {
	if v.IsNull() {
		return true
	}
	switch t.Kind {
	case KindString:
		_, ok := v.AsString()
		return ok
	case KindInt:
		_, ok := v.AsInt()
		return ok
	case KindFloat:
		if _, ok := v.AsFloat(); ok {
			return true
		}
		_, ok := v.AsInt()
		return ok
	case KindBool:
		_, ok := v.AsBool()
		return ok
	case KindDateTime:
		_, ok := v.AsInt()
		return ok
	case KindJSON:
		if _, ok := v.AsObject(); ok {
			return true
		}
		_, ok := v.AsArray()
		return ok
	case KindBytes:
		_, ok := v.AsBytes()
		return ok
	case KindUUID:
		s, ok := v.AsString()
		if !ok {
			return false
		}
		_, err := model.ParseNodeID(s)
		return err == nil
	case KindEnum:
		s, ok := v.AsString()
		if !ok {
			return false
		}
		for _, allowed := range t.EnumValues {
			if allowed == s {
				return true
			}
		}
		return false
	case KindArray:
		arr, ok := v.AsArray()
		if !ok {
			return false
		}
		if t.Elem == nil {
			return true
		}
		for _, item := range arr {
			if !t.Elem.Matches(item) {
				return false
			}
		}
		return true
	case KindReference:
		s, ok := v.AsString()
		if !ok {
			return false
		}
		_, err := model.ParseNodeID(s)
		return err == nil
	default:
		return false
	}
}

// MarshalJSON renders the type as its grammar string.
func (t FieldType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses the type from its grammar string.
func (t *FieldType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseFieldType(s)
	return nil
}

// MarshalYAML renders the type as its grammar string, the same
// representation MarshalJSON uses, so a schema round-trips identically
// through either codec.
func (t FieldType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// UnmarshalYAML parses the type from its grammar string.
func (t *FieldType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*t = ParseFieldType(s)
	return nil
}
