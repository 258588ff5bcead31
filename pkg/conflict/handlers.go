package conflict

import (
	"sort"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/protounify/protounify/pkg/contract"
	"github.com/protounify/protounify/pkg/schema"
)

func sortedVersions(f *Field) []string {
	out := make([]string, 0, len(f.Versions))
	for v := range f.Versions {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func versionKinds(f *Field) map[string]protoreflect.Kind {
	kinds := make(map[string]protoreflect.Kind, len(f.Versions))
	for v, fd := range f.Versions {
		kinds[v] = fd.Kind
	}
	return kinds
}

func mapValueKinds(f *Field) map[string]protoreflect.Kind {
	kinds := make(map[string]protoreflect.Kind, len(f.Versions))
	for v, fd := range f.Versions {
		if fd.Map != nil {
			kinds[v] = fd.Map.ValueKind
		}
	}
	return kinds
}

func enumSets(f *Field) map[string]*enumSet {
	sets := make(map[string]*enumSet, len(f.Enums))
	for v, es := range f.Enums {
		if es == nil {
			continue
		}
		sets[v] = &enumSet{name: es.FullName, has: es.HasNumber}
	}
	return sets
}

// firstKind picks the lowest version's kind; used when the kind is known
// to be identical across versions.
func firstKind(f *Field, kinds map[string]protoreflect.Kind) protoreflect.Kind {
	for _, v := range sortedVersions(f) {
		if k, ok := kinds[v]; ok {
			return k
		}
	}
	return 0
}

// scalarConverter builds the value converter for one scalar conflict type
// over the given per-version kinds, returning the unified carrier kind
// alongside it.
func scalarConverter(f *Field, ct contract.ConflictType, kinds map[string]protoreflect.Kind) (Converter, protoreflect.Kind) {
	switch ct {
	case contract.ConflictWidening, contract.ConflictSignedUnsigned,
		contract.ConflictMapValueWidening:
		ic := newIntConverter(f, kinds)
		return ic, ic.carrierKind()
	case contract.ConflictFloatDouble:
		return &floatConverter{field: f, kinds: kinds}, protoreflect.DoubleKind
	case contract.ConflictIntEnum, contract.ConflictEnumEnum,
		contract.ConflictMapValueIntEnum:
		return &enumCodeConverter{field: f, kinds: kinds, enums: enumSets(f)}, protoreflect.Int32Kind
	case contract.ConflictStringBytes:
		return &stringBytesConverter{field: f, kinds: kinds}, protoreflect.StringKind
	default:
		return identityConverter{}, firstKind(f, kinds)
	}
}

// isScalarConflict reports whether the conflict type is resolved by an
// element-level value converter.
func isScalarConflict(ct contract.ConflictType) bool {
	switch ct {
	case contract.ConflictWidening, contract.ConflictFloatDouble,
		contract.ConflictSignedUnsigned, contract.ConflictIntEnum,
		contract.ConflictEnumEnum, contract.ConflictStringBytes:
		return true
	}
	return false
}

// mapFieldHandler owns every map field, conflicted or not. Keys are
// identical across versions; values may need widening or enum decoding.
type mapFieldHandler struct{}

func (mapFieldHandler) Type() HandlerType { return HandlerMapField }

func (mapFieldHandler) Matches(mc *contract.MergedFieldContract) bool {
	return mc.Unified().Cardinality == schema.CardinalityMap
}

func (mapFieldHandler) Resolve(f *Field) (*Resolution, error) {
	kinds := mapValueKinds(f)
	elem, carrier := scalarConverter(f, f.Contract.Conflict(), kinds)
	return &Resolution{
		Handler: HandlerMapField,
		Unified: UnifiedType{
			Category:    f.Contract.Unified().TypeCategory,
			Kind:        carrier,
			Cardinality: schema.CardinalityMap,
		},
		Converter: &MapConverter{field: f, elem: elem},
	}, nil
}

// repeatedSingleHandler lifts singular versions into the unified sequence
// shape and rejects writes for every version.
type repeatedSingleHandler struct{}

func (repeatedSingleHandler) Type() HandlerType { return HandlerRepeatedSingle }

func (repeatedSingleHandler) Matches(mc *contract.MergedFieldContract) bool {
	return mc.Conflict() == contract.ConflictRepeatedSingle
}

func (repeatedSingleHandler) Resolve(f *Field) (*Resolution, error) {
	return &Resolution{
		Handler: HandlerRepeatedSingle,
		Unified: UnifiedType{
			Category:    f.Contract.Unified().TypeCategory,
			Kind:        firstKind(f, versionKinds(f)),
			Cardinality: schema.CardinalityRepeated,
		},
		Converter: &RepeatedSingleConverter{field: f},
	}, nil
}

// repeatedConflictHandler applies a scalar conflict element-wise across a
// repeated field.
type repeatedConflictHandler struct{}

func (repeatedConflictHandler) Type() HandlerType { return HandlerRepeatedConflict }

func (repeatedConflictHandler) Matches(mc *contract.MergedFieldContract) bool {
	return mc.Unified().Cardinality == schema.CardinalityRepeated && isScalarConflict(mc.Conflict())
}

func (repeatedConflictHandler) Resolve(f *Field) (*Resolution, error) {
	elem, carrier := scalarConverter(f, f.Contract.Conflict(), versionKinds(f))
	return &Resolution{
		Handler: HandlerRepeatedConflict,
		Unified: UnifiedType{
			Category:    f.Contract.Unified().TypeCategory,
			Kind:        carrier,
			Cardinality: schema.CardinalityRepeated,
		},
		Converter: elem,
	}, nil
}

// primitiveMessageHandler exposes the scalar and structured views side by
// side; each version activates exactly one.
type primitiveMessageHandler struct{}

func (primitiveMessageHandler) Type() HandlerType { return HandlerPrimitiveMessage }

func (primitiveMessageHandler) Matches(mc *contract.MergedFieldContract) bool {
	return mc.Conflict() == contract.ConflictPrimitiveMessage
}

func (primitiveMessageHandler) Resolve(f *Field) (*Resolution, error) {
	// The scalar side's kind names the scalar view; the structured side
	// contributes no kind.
	scalar := protoreflect.Kind(0)
	for _, v := range sortedVersions(f) {
		if fd := f.Versions[v]; fd.Category() != schema.TypeMessage {
			scalar = fd.Kind
			break
		}
	}
	return &Resolution{
		Handler: HandlerPrimitiveMessage,
		Unified: UnifiedType{
			Category:    f.Contract.Unified().TypeCategory,
			Kind:        scalar,
			Cardinality: f.Contract.Unified().Cardinality,
			DualView:    true,
		},
		Converter: &DualViewConverter{field: f},
	}, nil
}

// scalarHandler resolves one singular scalar conflict type.
type scalarHandler struct {
	handler  HandlerType
	conflict contract.ConflictType
}

func (h scalarHandler) Type() HandlerType { return h.handler }

func (h scalarHandler) Matches(mc *contract.MergedFieldContract) bool {
	return mc.Conflict() == h.conflict && mc.Unified().Cardinality == schema.CardinalitySingular
}

func (h scalarHandler) Resolve(f *Field) (*Resolution, error) {
	conv, carrier := scalarConverter(f, h.conflict, versionKinds(f))
	return &Resolution{
		Handler: h.handler,
		Unified: UnifiedType{
			Category:    f.Contract.Unified().TypeCategory,
			Kind:        carrier,
			Cardinality: schema.CardinalitySingular,
		},
		Converter: conv,
	}, nil
}

// defaultHandler passes conflict-free non-map fields through untouched.
type defaultHandler struct{}

func (defaultHandler) Type() HandlerType { return HandlerDefault }

func (defaultHandler) Matches(mc *contract.MergedFieldContract) bool {
	return mc.Conflict() == contract.ConflictNone && mc.Unified().Cardinality != schema.CardinalityMap
}

func (defaultHandler) Resolve(f *Field) (*Resolution, error) {
	return &Resolution{
		Handler: HandlerDefault,
		Unified: UnifiedType{
			Category:    f.Contract.Unified().TypeCategory,
			Kind:        firstKind(f, versionKinds(f)),
			Cardinality: f.Contract.Unified().Cardinality,
		},
		Converter: identityConverter{},
	}, nil
}
