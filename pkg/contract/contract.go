package contract

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/protounify/protounify/pkg/schema"
)

// DefaultValueKind identifies what a read returns when the field is unset.
type DefaultValueKind int

const (
	DefaultNull DefaultValueKind = iota
	DefaultZeroInt32
	DefaultZeroInt64
	DefaultZeroUint32
	DefaultZeroUint64
	DefaultZeroFloat
	DefaultZeroDouble
	DefaultFalse
	DefaultEmptyString
	DefaultEmptyBytes
	DefaultFirstEnumValue
	DefaultEmptyList
	DefaultEmptyMap
)

func (d DefaultValueKind) String() string {
	return []string{
		"NULL", "ZERO_INT32", "ZERO_INT64", "ZERO_UINT32", "ZERO_UINT64",
		"ZERO_FLOAT", "ZERO_DOUBLE", "FALSE", "EMPTY_STRING", "EMPTY_BYTES",
		"FIRST_ENUM_VALUE", "EMPTY_LIST", "EMPTY_MAP",
	}[d]
}

// FieldContract is the single source of truth for how one field behaves in
// the version-independent API. The first four fields are input dimensions;
// the last four are derived by the contract matrix and never supplied
// directly. Two contracts built from equal inputs are always equal.
type FieldContract struct {
	Cardinality  schema.Cardinality
	TypeCategory schema.TypeCategory
	Presence     schema.Presence
	InGroup      bool

	PresenceCheckAvailable  bool
	ReaderUsesPresenceCheck bool
	NullableRead            bool
	DefaultValue            DefaultValueKind
}

// Of computes the contract for one version's field snapshot. It is pure and
// total over the descriptor space.
func Of(f *schema.FieldDescriptor) FieldContract {
	cardinality := f.Cardinality
	category := f.Category()
	presence := f.Presence()
	inGroup := f.InGroup()

	available := presenceCheckAvailable(cardinality, category, presence, inGroup)
	nullable := nullableRead(cardinality, category, presence, inGroup)
	reader := readerUsesPresenceCheck(cardinality, category, presence, inGroup, available)

	return FieldContract{
		Cardinality:             cardinality,
		TypeCategory:            category,
		Presence:                presence,
		InGroup:                 inGroup,
		PresenceCheckAvailable:  available,
		ReaderUsesPresenceCheck: reader,
		NullableRead:            nullable,
		DefaultValue:            defaultValueKind(cardinality, category, f.Kind, nullable),
	}
}

// Matrix rule 1: the presence-check accessor exists only for singular
// fields, and only when the version can actually track presence.
func presenceCheckAvailable(c schema.Cardinality, t schema.TypeCategory, p schema.Presence, inGroup bool) bool {
	if c != schema.CardinalitySingular {
		return false
	}
	if inGroup {
		return true
	}
	if t == schema.TypeMessage {
		return true
	}
	switch p {
	case schema.PresenceExplicitRequired, schema.PresenceExplicitOptional, schema.PresenceExplicitOptionalSynthetic:
		return true
	}
	return false
}

// Matrix rule 2: reads route through the presence check only when the check
// exists and the read can actually come back null.
func readerUsesPresenceCheck(c schema.Cardinality, t schema.TypeCategory, p schema.Presence, inGroup, available bool) bool {
	if !available {
		return false
	}
	if p == schema.PresenceExplicitRequired {
		return false
	}
	if c != schema.CardinalitySingular {
		return false
	}
	if t == schema.TypeMessage {
		return true
	}
	return p.ScalarNullable() || inGroup
}

// Matrix rule 3: nullable reads are a singular-only property; required
// fields and collections never read as null.
func nullableRead(c schema.Cardinality, t schema.TypeCategory, p schema.Presence, inGroup bool) bool {
	if c != schema.CardinalitySingular {
		return false
	}
	if p == schema.PresenceExplicitRequired {
		return false
	}
	if t == schema.TypeMessage {
		return true
	}
	if inGroup {
		return true
	}
	return p.ScalarNullable()
}

// Matrix rule 4: the unset default.
func defaultValueKind(c schema.Cardinality, t schema.TypeCategory, k protoreflect.Kind, nullable bool) DefaultValueKind {
	if c == schema.CardinalityRepeated {
		return DefaultEmptyList
	}
	if c == schema.CardinalityMap {
		return DefaultEmptyMap
	}
	if nullable {
		return DefaultNull
	}
	switch t {
	case schema.TypeScalarString:
		return DefaultEmptyString
	case schema.TypeScalarBytes:
		return DefaultEmptyBytes
	case schema.TypeEnum:
		return DefaultFirstEnumValue
	case schema.TypeMessage:
		// Unreachable when the nullability rule is correct: message
		// reads are always nullable.
		return DefaultNull
	default:
		return numericDefault(k)
	}
}

func numericDefault(k protoreflect.Kind) DefaultValueKind {
	switch k {
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return DefaultZeroInt32
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return DefaultZeroInt64
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return DefaultZeroUint32
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return DefaultZeroUint64
	case protoreflect.FloatKind:
		return DefaultZeroFloat
	case protoreflect.DoubleKind:
		return DefaultZeroDouble
	case protoreflect.BoolKind:
		return DefaultFalse
	}
	return DefaultZeroInt32
}

// IsSingular reports singular cardinality.
func (c FieldContract) IsSingular() bool {
	return c.Cardinality == schema.CardinalitySingular
}

// Describe renders the contract for logs and error messages.
func (c FieldContract) Describe() string {
	group := ""
	if c.InGroup {
		group = " (oneof)"
	}
	return fmt.Sprintf("FieldContract[%s %s %s%s] -> check=%v, reader=%v, nullable=%v, default=%s",
		c.Presence, c.Cardinality, c.TypeCategory, group,
		c.PresenceCheckAvailable, c.ReaderUsesPresenceCheck, c.NullableRead, c.DefaultValue)
}
