package conflict

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/protounify/protounify/pkg/contract"
	"github.com/protounify/protounify/pkg/schema"
)

// HandlerType identifies which handler resolved a field. Useful for
// logging, metrics, and verifying handler selection in tests.
type HandlerType int

const (
	HandlerMapField HandlerType = iota
	HandlerRepeatedSingle
	HandlerRepeatedConflict
	HandlerPrimitiveMessage
	HandlerIntEnum
	HandlerEnumEnum
	HandlerStringBytes
	HandlerWidening
	HandlerFloatDouble
	HandlerSignedUnsigned
	HandlerDefault
)

func (h HandlerType) String() string {
	return []string{
		"MAP_FIELD", "REPEATED_SINGLE", "REPEATED_CONFLICT", "PRIMITIVE_MESSAGE",
		"INT_ENUM", "ENUM_ENUM", "STRING_BYTES", "WIDENING", "FLOAT_DOUBLE",
		"SIGNED_UNSIGNED", "DEFAULT",
	}[h]
}

// Description returns a human-readable label for logs.
func (h HandlerType) Description() string {
	return []string{
		"map field", "repeated/single conflict", "repeated element conflict",
		"primitive/message conflict", "int/enum conflict", "enum/enum conflict",
		"string/bytes conflict", "numeric widening", "float/double conflict",
		"signed/unsigned conflict", "default (no conflict)",
	}[h]
}

// Field is the resolved view of one logical field a handler works from: the
// merged contract plus the raw per-version descriptors and, for enum-typed
// versions, the backing enum value sets.
type Field struct {
	Message  string
	Name     string
	Number   int32
	Contract *contract.MergedFieldContract
	Versions map[string]*schema.FieldDescriptor
	// Enums maps a version to the enum schema backing the field (or the
	// map value) in that version. Nil entries mean the version is not
	// enum-typed.
	Enums map[string]*schema.EnumSchema
}

func (f *Field) ref() string {
	return f.Message + "." + f.Name
}

// UnifiedType describes the single representation the unified API exposes
// for the field. The emitter turns this into concrete accessor signatures.
type UnifiedType struct {
	Category    schema.TypeCategory
	Kind        protoreflect.Kind
	Cardinality schema.Cardinality
	// DualView marks the PRIMITIVE_MESSAGE accessor pair: a scalar view
	// and a structured view, of which at most one is active per version.
	DualView bool
}

func (u UnifiedType) String() string {
	s := fmt.Sprintf("%s %s/%s", u.Cardinality, u.Category, u.Kind)
	if u.DualView {
		s += " (dual view)"
	}
	return s
}

// Converter converts single values between a version's native
// representation and the unified representation. Read is total; Write
// validates and rejects. Collection fields apply the same converter
// element-wise via ReadSlice/WriteSlice or MapConverter.
type Converter interface {
	// Read converts a native value of the given version into the unified
	// representation. It never fails.
	Read(v protoreflect.Value, version string) protoreflect.Value
	// Write converts a unified value into the given version's native
	// representation, validating the target's representable range.
	Write(v protoreflect.Value, version string) (protoreflect.Value, error)
}

// Resolution is the emission directive produced for one field: which
// handler claimed it, what the unified representation is, and the value
// converter for it.
type Resolution struct {
	Handler   HandlerType
	Unified   UnifiedType
	Converter Converter
}

// Handler resolves one taxonomy entry. Matches must be mutually exclusive
// across the chain: exactly one handler claims any well-formed contract.
type Handler interface {
	Type() HandlerType
	Matches(mc *contract.MergedFieldContract) bool
	Resolve(f *Field) (*Resolution, error)
}

// ReadSlice converts a sequence element-wise into the unified
// representation, preserving order.
func ReadSlice(c Converter, vals []protoreflect.Value, version string) []protoreflect.Value {
	if vals == nil {
		return nil
	}
	out := make([]protoreflect.Value, len(vals))
	for i, v := range vals {
		out[i] = c.Read(v, version)
	}
	return out
}

// WriteSlice converts a sequence element-wise into a version's native
// representation. A single invalid element fails the whole write.
func WriteSlice(c Converter, vals []protoreflect.Value, version string) ([]protoreflect.Value, error) {
	out := make([]protoreflect.Value, len(vals))
	for i, v := range vals {
		converted, err := c.Write(v, version)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = converted
	}
	return out, nil
}
