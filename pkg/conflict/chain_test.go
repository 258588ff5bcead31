package conflict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/protounify/protounify/pkg/contract"
	"github.com/protounify/protounify/pkg/schema"
)

func scalarDesc(kind protoreflect.Kind) *schema.FieldDescriptor {
	return &schema.FieldDescriptor{
		Name:       "f",
		Number:     1,
		Kind:       kind,
		Syntax:     schema.SyntaxProto3,
		OneofIndex: -1,
	}
}

func enumDesc(typeName string) *schema.FieldDescriptor {
	f := scalarDesc(protoreflect.EnumKind)
	f.TypeName = typeName
	return f
}

func messageDesc(typeName string) *schema.FieldDescriptor {
	f := scalarDesc(protoreflect.MessageKind)
	f.TypeName = typeName
	return f
}

func repeatedDesc(kind protoreflect.Kind) *schema.FieldDescriptor {
	f := scalarDesc(kind)
	f.Cardinality = schema.CardinalityRepeated
	return f
}

func mapDesc(key, value protoreflect.Kind) *schema.FieldDescriptor {
	f := scalarDesc(protoreflect.MessageKind)
	f.Cardinality = schema.CardinalityMap
	f.Map = &schema.MapInfo{KeyKind: key, ValueKind: value}
	return f
}

// resolveField runs the full classify/merge/dispatch pipeline for a hand
// built set of per-version descriptors.
func resolveField(t *testing.T, perVersion map[string]*schema.FieldDescriptor, enums map[string]*schema.EnumSchema) *Resolution {
	t.Helper()

	ref := contract.FieldRef{Message: "acme.Order", Name: "f", Number: 1}
	signals := signalsFor(perVersion)

	ct, err := contract.Classify(ref, perVersion, signals)
	require.NoError(t, err)

	contracts := make(map[string]contract.FieldContract, len(perVersion))
	for v, fd := range perVersion {
		contracts[v] = contract.Of(fd)
	}
	mc, err := contract.Merge(contracts, ct, signals)
	require.NoError(t, err)

	res, err := NewChain().Resolve(&Field{
		Message:  "acme.Order",
		Name:     "f",
		Number:   1,
		Contract: mc,
		Versions: perVersion,
		Enums:    enums,
	})
	require.NoError(t, err)
	return res
}

func signalsFor(perVersion map[string]*schema.FieldDescriptor) contract.Signals {
	var anyRepeated, anySingular, anyMessage, anyScalar bool
	for _, fd := range perVersion {
		switch fd.Cardinality {
		case schema.CardinalityRepeated:
			anyRepeated = true
		case schema.CardinalitySingular:
			anySingular = true
		}
		if fd.Category() == schema.TypeMessage {
			anyMessage = true
		} else {
			anyScalar = true
		}
	}
	return contract.Signals{
		RepeatedSingleSplit: anyRepeated && anySingular,
		ScalarMessageSplit:  anyMessage && anyScalar,
	}
}

func TestChainSelection(t *testing.T) {
	statusEnum := schema.NewEnumSchema("Status", "acme.Status", []schema.EnumValue{
		{Name: "UNKNOWN", Number: 0},
		{Name: "PAID", Number: 1},
	})

	tests := []struct {
		name        string
		perVersion  map[string]*schema.FieldDescriptor
		enums       map[string]*schema.EnumSchema
		wantHandler HandlerType
	}{
		{
			name: "conflict-free scalar takes default",
			perVersion: map[string]*schema.FieldDescriptor{
				"v1": scalarDesc(protoreflect.BoolKind),
				"v2": scalarDesc(protoreflect.BoolKind),
			},
			wantHandler: HandlerDefault,
		},
		{
			name: "conflict-free repeated takes default",
			perVersion: map[string]*schema.FieldDescriptor{
				"v1": repeatedDesc(protoreflect.StringKind),
				"v2": repeatedDesc(protoreflect.StringKind),
			},
			wantHandler: HandlerDefault,
		},
		{
			name: "map field",
			perVersion: map[string]*schema.FieldDescriptor{
				"v1": mapDesc(protoreflect.StringKind, protoreflect.Int32Kind),
				"v2": mapDesc(protoreflect.StringKind, protoreflect.Int64Kind),
			},
			wantHandler: HandlerMapField,
		},
		{
			name: "conflict-free map still routes to map handler",
			perVersion: map[string]*schema.FieldDescriptor{
				"v1": mapDesc(protoreflect.StringKind, protoreflect.StringKind),
				"v2": mapDesc(protoreflect.StringKind, protoreflect.StringKind),
			},
			wantHandler: HandlerMapField,
		},
		{
			name: "repeated single split",
			perVersion: map[string]*schema.FieldDescriptor{
				"v1": scalarDesc(protoreflect.StringKind),
				"v2": repeatedDesc(protoreflect.StringKind),
			},
			wantHandler: HandlerRepeatedSingle,
		},
		{
			name: "repeated scalar conflict",
			perVersion: map[string]*schema.FieldDescriptor{
				"v1": repeatedDesc(protoreflect.Int32Kind),
				"v2": repeatedDesc(protoreflect.Int64Kind),
			},
			wantHandler: HandlerRepeatedConflict,
		},
		{
			name: "primitive message",
			perVersion: map[string]*schema.FieldDescriptor{
				"v1": scalarDesc(protoreflect.Int64Kind),
				"v2": messageDesc("acme.Amount"),
			},
			wantHandler: HandlerPrimitiveMessage,
		},
		{
			name: "int enum",
			perVersion: map[string]*schema.FieldDescriptor{
				"v1": scalarDesc(protoreflect.Int32Kind),
				"v2": enumDesc("acme.Status"),
			},
			enums:       map[string]*schema.EnumSchema{"v2": statusEnum},
			wantHandler: HandlerIntEnum,
		},
		{
			name: "enum enum",
			perVersion: map[string]*schema.FieldDescriptor{
				"v1": enumDesc("acme.StatusV1"),
				"v2": enumDesc("acme.StatusV2"),
			},
			enums:       map[string]*schema.EnumSchema{"v1": statusEnum, "v2": statusEnum},
			wantHandler: HandlerEnumEnum,
		},
		{
			name: "string bytes",
			perVersion: map[string]*schema.FieldDescriptor{
				"v1": scalarDesc(protoreflect.StringKind),
				"v2": scalarDesc(protoreflect.BytesKind),
			},
			wantHandler: HandlerStringBytes,
		},
		{
			name: "widening",
			perVersion: map[string]*schema.FieldDescriptor{
				"v1": scalarDesc(protoreflect.Int32Kind),
				"v2": scalarDesc(protoreflect.Int64Kind),
			},
			wantHandler: HandlerWidening,
		},
		{
			name: "float double",
			perVersion: map[string]*schema.FieldDescriptor{
				"v1": scalarDesc(protoreflect.FloatKind),
				"v2": scalarDesc(protoreflect.DoubleKind),
			},
			wantHandler: HandlerFloatDouble,
		},
		{
			name: "signed unsigned",
			perVersion: map[string]*schema.FieldDescriptor{
				"v1": scalarDesc(protoreflect.Int32Kind),
				"v2": scalarDesc(protoreflect.Uint32Kind),
			},
			wantHandler: HandlerSignedUnsigned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := resolveField(t, tt.perVersion, tt.enums)
			assert.Equal(t, tt.wantHandler, res.Handler)
			assert.NotNil(t, res.Converter)
		})
	}
}

// Every reachable merged contract must match exactly one handler.
func TestChainExactlyOneMatch(t *testing.T) {
	chain := NewChain()
	cases := []map[string]*schema.FieldDescriptor{
		{"v1": scalarDesc(protoreflect.BoolKind), "v2": scalarDesc(protoreflect.BoolKind)},
		{"v1": scalarDesc(protoreflect.Int32Kind), "v2": scalarDesc(protoreflect.Int64Kind)},
		{"v1": repeatedDesc(protoreflect.Int32Kind), "v2": repeatedDesc(protoreflect.Int64Kind)},
		{"v1": scalarDesc(protoreflect.StringKind), "v2": repeatedDesc(protoreflect.StringKind)},
		{"v1": mapDesc(protoreflect.StringKind, protoreflect.Int32Kind), "v2": mapDesc(protoreflect.StringKind, protoreflect.Int64Kind)},
		{"v1": scalarDesc(protoreflect.Int64Kind), "v2": messageDesc("acme.Amount")},
	}

	for _, perVersion := range cases {
		ref := contract.FieldRef{Message: "acme.Order", Name: "f", Number: 1}
		signals := signalsFor(perVersion)
		ct, err := contract.Classify(ref, perVersion, signals)
		require.NoError(t, err)
		contracts := make(map[string]contract.FieldContract)
		for v, fd := range perVersion {
			contracts[v] = contract.Of(fd)
		}
		mc, err := contract.Merge(contracts, ct, signals)
		require.NoError(t, err)

		matched := 0
		for _, h := range chain.Handlers() {
			if h.Matches(mc) {
				matched++
			}
		}
		assert.Equal(t, 1, matched, "contract %s", mc.Describe())
	}
}

func TestChainSelectErrors(t *testing.T) {
	mc, err := contract.Merge(map[string]contract.FieldContract{
		"v1": contract.Of(scalarDesc(protoreflect.BoolKind)),
	}, contract.ConflictNone, contract.Signals{})
	require.NoError(t, err)

	// No handler matches.
	empty := &Chain{}
	_, err = empty.Select("acme.Order.f", mc)
	var ce *ChainError
	require.ErrorAs(t, err, &ce)
	assert.Empty(t, ce.Matched)

	// More than one handler matches.
	overlapping := &Chain{handlers: []Handler{defaultHandler{}, defaultHandler{}}}
	_, err = overlapping.Select("acme.Order.f", mc)
	require.ErrorAs(t, err, &ce)
	assert.Len(t, ce.Matched, 2)
}

func TestHandlerTypeStrings(t *testing.T) {
	for _, h := range NewChain().Handlers() {
		assert.NotEmpty(t, h.Type().String())
		assert.NotEmpty(t, h.Type().Description())
	}
}

func TestUnifiedTypeFromResolution(t *testing.T) {
	res := resolveField(t, map[string]*schema.FieldDescriptor{
		"v1": scalarDesc(protoreflect.Int32Kind),
		"v2": scalarDesc(protoreflect.Int64Kind),
	}, nil)
	assert.Equal(t, protoreflect.Int64Kind, res.Unified.Kind)
	assert.Equal(t, schema.CardinalitySingular, res.Unified.Cardinality)
	assert.Equal(t, schema.TypeScalarNumeric, res.Unified.Category)
	assert.False(t, res.Unified.DualView)

	res = resolveField(t, map[string]*schema.FieldDescriptor{
		"v1": scalarDesc(protoreflect.Uint32Kind),
		"v2": scalarDesc(protoreflect.Uint64Kind),
	}, nil)
	assert.Equal(t, protoreflect.Uint64Kind, res.Unified.Kind, "all-unsigned widening keeps the unsigned carrier")

	res = resolveField(t, map[string]*schema.FieldDescriptor{
		"v1": scalarDesc(protoreflect.Int64Kind),
		"v2": messageDesc("acme.Amount"),
	}, nil)
	assert.True(t, res.Unified.DualView)
	assert.Equal(t, schema.TypeMessage, res.Unified.Category)
	assert.Equal(t, protoreflect.Int64Kind, res.Unified.Kind)
}
