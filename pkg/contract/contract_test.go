package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/protounify/protounify/pkg/schema"
)

func proto2Field(kind protoreflect.Kind, required bool) *schema.FieldDescriptor {
	return &schema.FieldDescriptor{
		Name:       "f",
		Number:     1,
		Kind:       kind,
		Syntax:     schema.SyntaxProto2,
		Required:   required,
		Optional:   !required,
		OneofIndex: -1,
	}
}

func proto3Field(kind protoreflect.Kind) *schema.FieldDescriptor {
	return &schema.FieldDescriptor{
		Name:       "f",
		Number:     1,
		Kind:       kind,
		Syntax:     schema.SyntaxProto3,
		OneofIndex: -1,
	}
}

func proto3OptionalField(kind protoreflect.Kind) *schema.FieldDescriptor {
	f := proto3Field(kind)
	f.Optional = true
	f.OneofIndex = 0
	f.OneofName = "_f"
	f.SyntheticOneof = true
	return f
}

func repeatedField(kind protoreflect.Kind) *schema.FieldDescriptor {
	f := proto3Field(kind)
	f.Cardinality = schema.CardinalityRepeated
	return f
}

func mapField(key, value protoreflect.Kind) *schema.FieldDescriptor {
	f := proto3Field(protoreflect.MessageKind)
	f.Cardinality = schema.CardinalityMap
	f.Map = &schema.MapInfo{KeyKind: key, ValueKind: value}
	return f
}

func TestContractMatrixRows(t *testing.T) {
	tests := []struct {
		name          string
		field         *schema.FieldDescriptor
		wantAvailable bool
		wantReader    bool
		wantNullable  bool
		wantDefault   DefaultValueKind
	}{
		{
			name:          "proto2 required int32",
			field:         proto2Field(protoreflect.Int32Kind, true),
			wantAvailable: true,
			wantReader:    false,
			wantNullable:  false,
			wantDefault:   DefaultZeroInt32,
		},
		{
			name:          "proto2 optional int32",
			field:         proto2Field(protoreflect.Int32Kind, false),
			wantAvailable: true,
			wantReader:    true,
			wantNullable:  true,
			wantDefault:   DefaultNull,
		},
		{
			name:          "proto3 implicit int32",
			field:         proto3Field(protoreflect.Int32Kind),
			wantAvailable: false,
			wantReader:    false,
			wantNullable:  false,
			wantDefault:   DefaultZeroInt32,
		},
		{
			name:          "proto3 optional int64",
			field:         proto3OptionalField(protoreflect.Int64Kind),
			wantAvailable: true,
			wantReader:    true,
			wantNullable:  true,
			wantDefault:   DefaultNull,
		},
		{
			name:          "proto3 implicit string",
			field:         proto3Field(protoreflect.StringKind),
			wantAvailable: false,
			wantReader:    false,
			wantNullable:  false,
			wantDefault:   DefaultEmptyString,
		},
		{
			name:          "proto3 implicit bytes",
			field:         proto3Field(protoreflect.BytesKind),
			wantAvailable: false,
			wantReader:    false,
			wantNullable:  false,
			wantDefault:   DefaultEmptyBytes,
		},
		{
			name:          "proto3 implicit bool",
			field:         proto3Field(protoreflect.BoolKind),
			wantAvailable: false,
			wantReader:    false,
			wantNullable:  false,
			wantDefault:   DefaultFalse,
		},
		{
			name:          "proto3 implicit uint32",
			field:         proto3Field(protoreflect.Uint32Kind),
			wantAvailable: false,
			wantReader:    false,
			wantNullable:  false,
			wantDefault:   DefaultZeroUint32,
		},
		{
			name:          "proto3 implicit fixed64",
			field:         proto3Field(protoreflect.Fixed64Kind),
			wantAvailable: false,
			wantReader:    false,
			wantNullable:  false,
			wantDefault:   DefaultZeroUint64,
		},
		{
			name:          "proto3 implicit float",
			field:         proto3Field(protoreflect.FloatKind),
			wantAvailable: false,
			wantReader:    false,
			wantNullable:  false,
			wantDefault:   DefaultZeroFloat,
		},
		{
			name:          "proto3 implicit double",
			field:         proto3Field(protoreflect.DoubleKind),
			wantAvailable: false,
			wantReader:    false,
			wantNullable:  false,
			wantDefault:   DefaultZeroDouble,
		},
		{
			name: "proto3 implicit enum",
			field: func() *schema.FieldDescriptor {
				f := proto3Field(protoreflect.EnumKind)
				f.TypeName = "acme.Status"
				return f
			}(),
			wantAvailable: false,
			wantReader:    false,
			wantNullable:  false,
			wantDefault:   DefaultFirstEnumValue,
		},
		{
			name: "proto3 singular message",
			field: func() *schema.FieldDescriptor {
				f := proto3Field(protoreflect.MessageKind)
				f.TypeName = "acme.Item"
				return f
			}(),
			wantAvailable: true,
			wantReader:    true,
			wantNullable:  true,
			wantDefault:   DefaultNull,
		},
		{
			name: "proto3 oneof member scalar",
			field: func() *schema.FieldDescriptor {
				f := proto3Field(protoreflect.StringKind)
				f.OneofIndex = 0
				f.OneofName = "choice"
				return f
			}(),
			wantAvailable: true,
			wantReader:    true,
			wantNullable:  true,
			wantDefault:   DefaultNull,
		},
		{
			name:          "repeated int32",
			field:         repeatedField(protoreflect.Int32Kind),
			wantAvailable: false,
			wantReader:    false,
			wantNullable:  false,
			wantDefault:   DefaultEmptyList,
		},
		{
			name: "repeated message",
			field: func() *schema.FieldDescriptor {
				f := repeatedField(protoreflect.MessageKind)
				f.TypeName = "acme.Item"
				return f
			}(),
			wantAvailable: false,
			wantReader:    false,
			wantNullable:  false,
			wantDefault:   DefaultEmptyList,
		},
		{
			name:          "map field",
			field:         mapField(protoreflect.StringKind, protoreflect.Int32Kind),
			wantAvailable: false,
			wantReader:    false,
			wantNullable:  false,
			wantDefault:   DefaultEmptyMap,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Of(tt.field)
			assert.Equal(t, tt.wantAvailable, c.PresenceCheckAvailable, "presenceCheckAvailable")
			assert.Equal(t, tt.wantReader, c.ReaderUsesPresenceCheck, "readerUsesPresenceCheck")
			assert.Equal(t, tt.wantNullable, c.NullableRead, "nullableRead")
			assert.Equal(t, tt.wantDefault, c.DefaultValue, "defaultValue")
		})
	}
}

func TestContractPurity(t *testing.T) {
	f := proto2Field(protoreflect.Sint64Kind, false)
	first := Of(f)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Of(f))
	}

	// Structurally equal descriptors produce equal contracts.
	other := proto2Field(protoreflect.Sint64Kind, false)
	assert.Equal(t, first, Of(other))
}

// Every derivable contract must satisfy the matrix's structural properties,
// no matter which descriptor it came from.
func TestContractProperties(t *testing.T) {
	kinds := []protoreflect.Kind{
		protoreflect.Int32Kind, protoreflect.Int64Kind, protoreflect.Uint32Kind,
		protoreflect.Uint64Kind, protoreflect.Sint32Kind, protoreflect.Fixed64Kind,
		protoreflect.FloatKind, protoreflect.DoubleKind, protoreflect.BoolKind,
		protoreflect.StringKind, protoreflect.BytesKind,
		protoreflect.MessageKind, protoreflect.EnumKind,
	}
	cardinalities := []schema.Cardinality{
		schema.CardinalitySingular, schema.CardinalityRepeated, schema.CardinalityMap,
	}
	syntaxes := []schema.Syntax{schema.SyntaxProto2, schema.SyntaxProto3}

	for _, kind := range kinds {
		for _, card := range cardinalities {
			for _, syntax := range syntaxes {
				for _, required := range []bool{false, true} {
					for _, synthetic := range []bool{false, true} {
						if required && syntax != schema.SyntaxProto2 {
							continue
						}
						if synthetic && (syntax != schema.SyntaxProto3 || card != schema.CardinalitySingular) {
							continue
						}
						f := &schema.FieldDescriptor{
							Name:        "f",
							Number:      1,
							Kind:        kind,
							Cardinality: card,
							Syntax:      syntax,
							Required:    required,
							OneofIndex:  -1,
						}
						if synthetic {
							f.Optional = true
							f.OneofIndex = 0
							f.SyntheticOneof = true
						}
						c := Of(f)

						if c.ReaderUsesPresenceCheck {
							assert.True(t, c.PresenceCheckAvailable,
								"reader implies available: %s", c.Describe())
							assert.True(t, c.NullableRead,
								"reader implies nullable: %s", c.Describe())
						}
						if c.Cardinality != schema.CardinalitySingular {
							assert.False(t, c.PresenceCheckAvailable,
								"collections never track presence: %s", c.Describe())
							assert.False(t, c.NullableRead,
								"collections never read null: %s", c.Describe())
						}
						if c.NullableRead && c.Cardinality == schema.CardinalitySingular {
							assert.Equal(t, DefaultNull, c.DefaultValue,
								"nullable reads default to null: %s", c.Describe())
						}
					}
				}
			}
		}
	}
}
