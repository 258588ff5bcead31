package contract

import (
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/protounify/protounify/pkg/schema"
)

// ConflictType classifies how a field's native representation differs across
// versions. The set is closed: every entry has a defined lossless-or-reject
// conversion rule, and anything outside it is a fatal schema-shape error.
type ConflictType int

const (
	ConflictNone ConflictType = iota
	ConflictWidening
	ConflictFloatDouble
	ConflictSignedUnsigned
	ConflictIntEnum
	ConflictStringBytes
	ConflictPrimitiveMessage
	ConflictRepeatedSingle
	ConflictEnumEnum
	ConflictMapValueWidening
	ConflictMapValueIntEnum
)

func (c ConflictType) String() string {
	return []string{
		"NONE", "WIDENING", "FLOAT_DOUBLE", "SIGNED_UNSIGNED", "INT_ENUM",
		"STRING_BYTES", "PRIMITIVE_MESSAGE", "REPEATED_SINGLE", "ENUM_ENUM",
		"MAP_VALUE_WIDENING", "MAP_VALUE_INT_ENUM",
	}[c]
}

// MutationSupported reports whether the unified API exposes write access for
// fields carrying this conflict. REPEATED_SINGLE writes are rejected by
// contract: there is no lossless way to target the singular versions.
func (c ConflictType) MutationSupported() bool {
	return c != ConflictRepeatedSingle
}

// IsMapValue reports whether the conflict lives in a map field's value type.
func (c ConflictType) IsMapValue() bool {
	return c == ConflictMapValueWidening || c == ConflictMapValueIntEnum
}

// Signals carry externally supplied identity-resolution hints: when two
// fields were judged "the same field" across versions despite a structural
// split, the resolver flags the split here instead of letting
// classification treat the shapes as irreconcilable.
type Signals struct {
	RepeatedSingleSplit bool
	ScalarMessageSplit  bool
}

// FieldRef names a logical field for error reporting.
type FieldRef struct {
	Message string
	Name    string
	Number  int32
}

// Classify compares one logical field's raw descriptors across versions and
// assigns a conflict type from the closed taxonomy. A shape change with no
// taxonomy entry returns a *SchemaError; the caller must abort the merge for
// that field. Classification is order-independent: it operates on property
// sets, never on iteration order.
func Classify(ref FieldRef, perVersion map[string]*schema.FieldDescriptor, signals Signals) (ConflictType, error) {
	if len(perVersion) == 0 {
		return ConflictNone, &SchemaError{
			Code:    CodeEmptyMerge,
			Message: ref.Message,
			Field:   ref.Name,
			Number:  ref.Number,
			Types:   map[string]string{},
			Reason:  "no versions supplied",
		}
	}

	var anyMap, anyRepeated, anySingular bool
	for _, f := range perVersion {
		switch f.Cardinality {
		case schema.CardinalityMap:
			anyMap = true
		case schema.CardinalityRepeated:
			anyRepeated = true
		default:
			anySingular = true
		}
	}

	if anyMap {
		if anyRepeated || anySingular {
			return ConflictNone, shapeError(ref, perVersion, CodeCardinalityClash,
				"map and non-map shapes cannot be unified")
		}
		return classifyMapValues(ref, perVersion)
	}

	if signals.RepeatedSingleSplit || (anyRepeated && anySingular) {
		if err := requireUniformElementType(ref, perVersion); err != nil {
			return ConflictNone, err
		}
		return ConflictRepeatedSingle, nil
	}

	return classifyElementTypes(ref, perVersion, signals)
}

// classifyElementTypes handles fields with uniform cardinality; for repeated
// fields the per-element rule applies across the whole sequence.
func classifyElementTypes(ref FieldRef, perVersion map[string]*schema.FieldDescriptor, signals Signals) (ConflictType, error) {
	kinds := make(map[protoreflect.Kind]struct{})
	typeNames := make(map[string]struct{})
	var anyScalar, anyMessage, anyEnum bool
	for _, f := range perVersion {
		kinds[f.Kind] = struct{}{}
		typeNames[f.TypeName] = struct{}{}
		switch f.Category() {
		case schema.TypeMessage:
			anyMessage = true
		case schema.TypeEnum:
			anyEnum = true
		default:
			anyScalar = true
		}
	}

	if len(kinds) == 1 && len(typeNames) == 1 && !signals.ScalarMessageSplit {
		return ConflictNone, nil
	}

	if anyMessage {
		if anyEnum {
			return ConflictNone, shapeError(ref, perVersion, CodeIncompatibleTypes,
				"enum and message shapes have no defined conversion")
		}
		if anyScalar || signals.ScalarMessageSplit {
			return ConflictPrimitiveMessage, nil
		}
		// Message in every version but with different type names.
		return ConflictNone, shapeError(ref, perVersion, CodeIncompatibleTypes,
			"message type changed across versions")
	}

	if anyEnum {
		if anyScalar {
			if allNonEnumAre(perVersion, isInt32Like) {
				return ConflictIntEnum, nil
			}
			return ConflictNone, shapeError(ref, perVersion, CodeIncompatibleTypes,
				"enum conflicts only unify with 32-bit signed integers")
		}
		// All enum; type names differ (len(typeNames) > 1 here).
		return ConflictEnumEnum, nil
	}

	return classifyScalars(ref, perVersion, kinds)
}

func classifyScalars(ref FieldRef, perVersion map[string]*schema.FieldDescriptor, kinds map[protoreflect.Kind]struct{}) (ConflictType, error) {
	var anyString, anyBytes, anyBool, anyFloat32, anyFloat64 bool
	var anyInt, anySignedInt, anyUnsignedInt, anyZigZag bool
	widths := make(map[int]struct{})
	for k := range kinds {
		switch {
		case k == protoreflect.StringKind:
			anyString = true
		case k == protoreflect.BytesKind:
			anyBytes = true
		case k == protoreflect.BoolKind:
			anyBool = true
		case k == protoreflect.FloatKind:
			anyFloat32 = true
		case k == protoreflect.DoubleKind:
			anyFloat64 = true
		case schema.IsInteger(k):
			anyInt = true
			widths[schema.BitWidth(k)] = struct{}{}
			if schema.IsUnsigned(k) {
				anyUnsignedInt = true
			} else {
				anySignedInt = true
			}
			if schema.ZigZag(k) {
				anyZigZag = true
			}
		}
	}

	switch {
	case anyString && anyBytes && !anyBool && !anyInt && !anyFloat32 && !anyFloat64:
		return ConflictStringBytes, nil
	case anyString || anyBytes || anyBool:
		// Mixed with anything else: no defined conversion.
		return ConflictNone, shapeError(ref, perVersion, CodeIncompatibleTypes,
			"scalar type change has no defined conversion")
	case anyFloat32 && anyFloat64 && !anyInt:
		return ConflictFloatDouble, nil
	case anyFloat32 || anyFloat64:
		// Integer/floating-point mix is lossy in both directions.
		return ConflictNone, shapeError(ref, perVersion, CodeIncompatibleTypes,
			"integer and floating-point shapes have no lossless conversion")
	case anyInt && len(widths) > 1:
		return ConflictWidening, nil
	case anyInt && anySignedInt && anyUnsignedInt:
		return ConflictSignedUnsigned, nil
	case anyInt && (anyZigZag || countSignedKinds(kinds) > 1):
		// Same width and signedness but mixed wire encodings (sint32 vs
		// int32) still go through the signed/unsigned validation path.
		return ConflictSignedUnsigned, nil
	case anyInt:
		// Multiple unsigned encodings of the same width decode to the
		// same value domain; nothing to convert.
		return ConflictNone, nil
	}

	return ConflictNone, shapeError(ref, perVersion, CodeIncompatibleTypes,
		"unclassifiable type change")
}

func countSignedKinds(kinds map[protoreflect.Kind]struct{}) int {
	n := 0
	for k := range kinds {
		if schema.IsSigned(k) {
			n++
		}
	}
	return n
}

func classifyMapValues(ref FieldRef, perVersion map[string]*schema.FieldDescriptor) (ConflictType, error) {
	keyKinds := make(map[protoreflect.Kind]struct{})
	valueKinds := make(map[protoreflect.Kind]struct{})
	valueNames := make(map[string]struct{})
	var anyEnumValue, anyIntValue bool
	widths := make(map[int]struct{})
	for _, f := range perVersion {
		if f.Map == nil {
			return ConflictNone, shapeError(ref, perVersion, CodeMapShapeClash,
				"map field missing entry info")
		}
		keyKinds[f.Map.KeyKind] = struct{}{}
		valueKinds[f.Map.ValueKind] = struct{}{}
		valueNames[f.Map.ValueTypeName] = struct{}{}
		switch {
		case f.Map.ValueKind == protoreflect.EnumKind:
			anyEnumValue = true
		case schema.IsInteger(f.Map.ValueKind):
			anyIntValue = true
			widths[schema.BitWidth(f.Map.ValueKind)] = struct{}{}
		}
	}

	if len(keyKinds) > 1 {
		return ConflictNone, shapeError(ref, perVersion, CodeMapShapeClash,
			"map key type changed across versions")
	}
	if len(valueKinds) == 1 && len(valueNames) == 1 {
		return ConflictNone, nil
	}
	if anyIntValue && anyEnumValue && allMapValues(perVersion, func(k protoreflect.Kind) bool {
		return k == protoreflect.EnumKind || isInt32Kind(k)
	}) {
		return ConflictMapValueIntEnum, nil
	}
	if anyIntValue && !anyEnumValue && len(widths) > 1 && allMapValues(perVersion, func(k protoreflect.Kind) bool {
		return schema.IsInteger(k)
	}) {
		return ConflictMapValueWidening, nil
	}
	return ConflictNone, shapeError(ref, perVersion, CodeMapShapeClash,
		"map value type change has no defined conversion")
}

func requireUniformElementType(ref FieldRef, perVersion map[string]*schema.FieldDescriptor) error {
	kinds := make(map[protoreflect.Kind]struct{})
	typeNames := make(map[string]struct{})
	for _, f := range perVersion {
		kinds[f.Kind] = struct{}{}
		typeNames[f.TypeName] = struct{}{}
	}
	if len(kinds) > 1 || len(typeNames) > 1 {
		return shapeError(ref, perVersion, CodeIncompatibleTypes,
			"repeated/singular split with differing element types")
	}
	return nil
}

func isInt32Like(f *schema.FieldDescriptor) bool {
	return isInt32Kind(f.Kind)
}

func isInt32Kind(k protoreflect.Kind) bool {
	return schema.IsSigned(k) && schema.BitWidth(k) == 32
}

func allNonEnumAre(perVersion map[string]*schema.FieldDescriptor, pred func(*schema.FieldDescriptor) bool) bool {
	for _, f := range perVersion {
		if f.Category() == schema.TypeEnum {
			continue
		}
		if !pred(f) {
			return false
		}
	}
	return true
}

func allMapValues(perVersion map[string]*schema.FieldDescriptor, pred func(protoreflect.Kind) bool) bool {
	for _, f := range perVersion {
		if f.Map == nil || !pred(f.Map.ValueKind) {
			return false
		}
	}
	return true
}

func shapeError(ref FieldRef, perVersion map[string]*schema.FieldDescriptor, code, reason string) *SchemaError {
	types := make(map[string]string, len(perVersion))
	for v, f := range perVersion {
		types[v] = f.TypeDescription()
	}
	return &SchemaError{
		Code:    code,
		Message: ref.Message,
		Field:   ref.Name,
		Number:  ref.Number,
		Types:   types,
		Reason:  reason,
	}
}
