package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/reflect/protoreflect"
)

func TestPresenceDerivation(t *testing.T) {
	tests := []struct {
		name  string
		field FieldDescriptor
		want  Presence
	}{
		{
			name:  "proto2 required",
			field: FieldDescriptor{Syntax: SyntaxProto2, Required: true, OneofIndex: -1},
			want:  PresenceExplicitRequired,
		},
		{
			name:  "proto2 optional",
			field: FieldDescriptor{Syntax: SyntaxProto2, Optional: true, OneofIndex: -1},
			want:  PresenceExplicitOptional,
		},
		{
			name:  "proto3 implicit",
			field: FieldDescriptor{Syntax: SyntaxProto3, OneofIndex: -1},
			want:  PresenceImplicit,
		},
		{
			name:  "proto3 optional keyword",
			field: FieldDescriptor{Syntax: SyntaxProto3, Optional: true, OneofIndex: 0, SyntheticOneof: true},
			want:  PresenceExplicitOptionalSynthetic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.field.Presence())
		})
	}
}

func TestInGroupExcludesSyntheticOneofs(t *testing.T) {
	real := FieldDescriptor{OneofIndex: 0, OneofName: "choice"}
	assert.True(t, real.InGroup())

	synthetic := FieldDescriptor{OneofIndex: 0, OneofName: "_note", SyntheticOneof: true}
	assert.False(t, synthetic.InGroup())

	plain := FieldDescriptor{OneofIndex: -1}
	assert.False(t, plain.InGroup())
}

func TestTypeDescription(t *testing.T) {
	f := FieldDescriptor{Kind: protoreflect.Int32Kind, OneofIndex: -1}
	assert.Equal(t, "int32", f.TypeDescription())

	f.Cardinality = CardinalityRepeated
	assert.Equal(t, "repeated int32", f.TypeDescription())

	m := FieldDescriptor{
		Kind:        protoreflect.MessageKind,
		Cardinality: CardinalityMap,
		OneofIndex:  -1,
		Map: &MapInfo{
			KeyKind:       protoreflect.StringKind,
			ValueKind:     protoreflect.MessageKind,
			ValueTypeName: "acme.Item",
		},
	}
	assert.Equal(t, "map<string, acme.Item>", m.TypeDescription())

	e := FieldDescriptor{Kind: protoreflect.EnumKind, TypeName: "acme.Status", OneofIndex: -1}
	assert.Equal(t, "acme.Status", e.TypeDescription())
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, IsInteger(protoreflect.Sfixed64Kind))
	assert.False(t, IsInteger(protoreflect.FloatKind))

	assert.True(t, IsUnsigned(protoreflect.Fixed32Kind))
	assert.False(t, IsUnsigned(protoreflect.Sint32Kind))

	assert.True(t, IsSigned(protoreflect.Sint64Kind))
	assert.False(t, IsSigned(protoreflect.Uint64Kind))
	assert.False(t, IsSigned(protoreflect.StringKind))

	assert.True(t, IsFloat(protoreflect.DoubleKind))

	assert.Equal(t, 32, BitWidth(protoreflect.Fixed32Kind))
	assert.Equal(t, 64, BitWidth(protoreflect.Int64Kind))
	assert.Equal(t, 0, BitWidth(protoreflect.StringKind))

	assert.True(t, ZigZag(protoreflect.Sint32Kind))
	assert.False(t, ZigZag(protoreflect.Int32Kind))
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, TypeMessage, CategoryOf(protoreflect.MessageKind))
	assert.Equal(t, TypeMessage, CategoryOf(protoreflect.GroupKind))
	assert.Equal(t, TypeEnum, CategoryOf(protoreflect.EnumKind))
	assert.Equal(t, TypeScalarString, CategoryOf(protoreflect.StringKind))
	assert.Equal(t, TypeScalarBytes, CategoryOf(protoreflect.BytesKind))
	assert.Equal(t, TypeScalarNumeric, CategoryOf(protoreflect.BoolKind))
	assert.Equal(t, TypeScalarNumeric, CategoryOf(protoreflect.Sint64Kind))

	assert.True(t, TypeScalarBytes.IsScalar())
	assert.False(t, TypeMessage.IsScalar())
}

func TestEnumSchemaLookup(t *testing.T) {
	e := NewEnumSchema("Status", "acme.Status", []EnumValue{
		{Name: "UNKNOWN", Number: 0},
		{Name: "PAID", Number: 1},
		{Name: "VOID", Number: 5},
	})

	assert.True(t, e.HasNumber(0))
	assert.True(t, e.HasNumber(5))
	assert.False(t, e.HasNumber(2))
	assert.Equal(t, EnumValue{Name: "UNKNOWN", Number: 0}, e.First())

	empty := NewEnumSchema("E", "acme.E", nil)
	assert.Equal(t, EnumValue{}, empty.First())
}

func TestVersionSchemaLookup(t *testing.T) {
	field := &FieldDescriptor{Name: "id", Number: 1, Kind: protoreflect.Int32Kind, OneofIndex: -1}
	msg := &MessageSchema{
		Name:         "Order",
		FullName:     "acme.Order",
		Fields:       map[int32]*FieldDescriptor{1: field},
		FieldsByName: map[string]*FieldDescriptor{"id": field},
		FieldOrder:   []int32{1},
	}
	vs := &VersionSchema{
		Version:  "v1",
		Syntax:   SyntaxProto3,
		Messages: map[string]*MessageSchema{"acme.Order": msg},
		Enums:    map[string]*EnumSchema{},
	}

	got, ok := vs.Message("acme.Order")
	assert.True(t, ok)
	assert.Same(t, msg, got)

	_, ok = vs.Message("acme.Nope")
	assert.False(t, ok)

	f, ok := msg.Field(1)
	assert.True(t, ok)
	assert.Same(t, field, f)

	_, ok = msg.Field(2)
	assert.False(t, ok)
}
