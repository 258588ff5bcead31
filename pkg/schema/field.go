package schema

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// FieldDescriptor is an immutable snapshot of one field's raw schema
// properties in one version. It carries exactly the dimensions the contract
// matrix derives behavior from; nothing here is computed.
type FieldDescriptor struct {
	Name        string
	Number      int32
	Kind        protoreflect.Kind
	TypeName    string // fully qualified message/enum type name, empty for scalars
	Cardinality Cardinality
	Syntax      Syntax

	// Required is the proto2 required label.
	Required bool
	// Optional is the explicit optional keyword (proto2 optional label or
	// proto3 optional).
	Optional bool

	// OneofIndex is -1 when the field is not a oneof member. Synthetic
	// oneofs (proto3 optional) set SyntheticOneof instead of counting as
	// real group membership.
	OneofIndex     int
	OneofName      string
	SyntheticOneof bool

	// Map holds key/value entry info when Cardinality is CardinalityMap.
	Map *MapInfo
}

// MapInfo describes the synthetic key/value entry of a map field.
type MapInfo struct {
	KeyKind       protoreflect.Kind
	ValueKind     protoreflect.Kind
	ValueTypeName string // fully qualified name when the value is a message or enum
}

// Category returns the coarse type category of the field.
func (f *FieldDescriptor) Category() TypeCategory {
	return CategoryOf(f.Kind)
}

// InGroup reports real oneof membership. Synthetic single-field oneofs do
// not count; they are a presence mechanism, not a group.
func (f *FieldDescriptor) InGroup() bool {
	return f.OneofIndex >= 0 && !f.SyntheticOneof
}

// Presence derives the presence semantics from the dialect, the label, and
// synthetic-oneof membership.
func (f *FieldDescriptor) Presence() Presence {
	if f.Syntax == SyntaxProto2 {
		if f.Required {
			return PresenceExplicitRequired
		}
		return PresenceExplicitOptional
	}
	if f.SyntheticOneof {
		return PresenceExplicitOptionalSynthetic
	}
	return PresenceImplicit
}

// TypeDescription renders the field's type for error messages, e.g.
// "repeated int32" or "map<string, Item>".
func (f *FieldDescriptor) TypeDescription() string {
	switch f.Cardinality {
	case CardinalityMap:
		if f.Map != nil {
			v := f.Map.ValueTypeName
			if v == "" {
				v = f.Map.ValueKind.String()
			}
			return fmt.Sprintf("map<%s, %s>", f.Map.KeyKind, v)
		}
		return "map<?, ?>"
	case CardinalityRepeated:
		return "repeated " + f.typeName()
	default:
		return f.typeName()
	}
}

func (f *FieldDescriptor) typeName() string {
	if f.TypeName != "" {
		return f.TypeName
	}
	return f.Kind.String()
}
