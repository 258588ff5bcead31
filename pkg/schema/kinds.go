package schema

import (
	"google.golang.org/protobuf/reflect/protoreflect"
)

// Cardinality describes how many values a field carries.
type Cardinality int

const (
	CardinalitySingular Cardinality = iota
	CardinalityRepeated
	CardinalityMap
)

func (c Cardinality) String() string {
	return []string{"SINGULAR", "REPEATED", "MAP"}[c]
}

// TypeCategory is the coarse type classification used by the contract matrix.
type TypeCategory int

const (
	TypeScalarNumeric TypeCategory = iota
	TypeScalarString
	TypeScalarBytes
	TypeMessage
	TypeEnum
)

func (t TypeCategory) String() string {
	return []string{"SCALAR_NUMERIC", "SCALAR_STRING", "SCALAR_BYTES", "MESSAGE", "ENUM"}[t]
}

// IsScalar reports whether the category is one of the scalar variants.
func (t TypeCategory) IsScalar() bool {
	return t == TypeScalarNumeric || t == TypeScalarString || t == TypeScalarBytes
}

// Presence describes how a field distinguishes "explicitly set" from
// "absent/default".
type Presence int

const (
	// PresenceExplicitRequired is a proto2 required field: always set,
	// presence tracked but never absent in a valid message.
	PresenceExplicitRequired Presence = iota
	// PresenceExplicitOptional is a proto2 optional field: presence tracked.
	PresenceExplicitOptional
	// PresenceImplicit is a proto3 field without the optional keyword:
	// absence is indistinguishable from the zero value for scalars.
	PresenceImplicit
	// PresenceExplicitOptionalSynthetic is a proto3 scalar declared with the
	// optional keyword, which the compiler wraps in a synthetic single-field
	// oneof to restore presence tracking.
	PresenceExplicitOptionalSynthetic
)

func (p Presence) String() string {
	return []string{
		"EXPLICIT_REQUIRED", "EXPLICIT_OPTIONAL", "IMPLICIT", "EXPLICIT_OPTIONAL_SYNTHETIC",
	}[p]
}

// ScalarNullable reports whether a scalar with this presence reads as null
// when unset.
func (p Presence) ScalarNullable() bool {
	return p == PresenceExplicitOptional || p == PresenceExplicitOptionalSynthetic
}

// Syntax identifies the schema dialect a field was declared under.
type Syntax int

const (
	SyntaxProto2 Syntax = iota
	SyntaxProto3
)

func (s Syntax) String() string {
	return []string{"proto2", "proto3"}[s]
}

// CategoryOf maps a descriptor kind to its type category.
func CategoryOf(k protoreflect.Kind) TypeCategory {
	switch k {
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return TypeMessage
	case protoreflect.EnumKind:
		return TypeEnum
	case protoreflect.StringKind:
		return TypeScalarString
	case protoreflect.BytesKind:
		return TypeScalarBytes
	default:
		return TypeScalarNumeric
	}
}

// IsInteger reports whether the kind is an integer numeric kind.
func IsInteger(k protoreflect.Kind) bool {
	switch k {
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Uint32Kind, protoreflect.Fixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind,
		protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return true
	}
	return false
}

// IsUnsigned reports whether the kind is an unsigned integer kind.
func IsUnsigned(k protoreflect.Kind) bool {
	switch k {
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind,
		protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return true
	}
	return false
}

// IsSigned reports whether the kind is a signed integer kind.
func IsSigned(k protoreflect.Kind) bool {
	return IsInteger(k) && !IsUnsigned(k)
}

// IsFloat reports whether the kind is a floating-point kind.
func IsFloat(k protoreflect.Kind) bool {
	return k == protoreflect.FloatKind || k == protoreflect.DoubleKind
}

// BitWidth returns the integer width of the kind in bits, or 0 for
// non-integer kinds.
func BitWidth(k protoreflect.Kind) int {
	switch k {
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return 32
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind,
		protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return 64
	}
	return 0
}

// ZigZag reports whether the kind uses ZigZag varint encoding on the wire.
func ZigZag(k protoreflect.Kind) bool {
	return k == protoreflect.Sint32Kind || k == protoreflect.Sint64Kind
}
