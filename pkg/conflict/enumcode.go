package conflict

import (
	"google.golang.org/protobuf/reflect/protoreflect"
)

// enumCodeConverter unifies INT_ENUM and ENUM_ENUM fields onto the raw
// numeric code. Enum-typed sources read their declared code unchanged:
// never the named enumerant, since the versions' value sets differ.
// Enum-typed targets validate the code against the version's declared
// enumerants and reject unknown codes outright.
type enumCodeConverter struct {
	field *Field
	kinds map[string]protoreflect.Kind
	enums map[string]*enumSet
}

// enumSet is the declared value set of one version's enum type.
type enumSet struct {
	name string
	has  func(int32) bool
}

func (c *enumCodeConverter) Read(v protoreflect.Value, version string) protoreflect.Value {
	if c.kinds[version] == protoreflect.EnumKind {
		return protoreflect.ValueOfInt32(int32(v.Enum()))
	}
	return protoreflect.ValueOfInt32(int32(v.Int()))
}

func (c *enumCodeConverter) Write(v protoreflect.Value, version string) (protoreflect.Value, error) {
	code := int32(v.Int())
	if c.kinds[version] != protoreflect.EnumKind {
		return protoreflect.ValueOfInt32(code), nil
	}
	set := c.enums[version]
	if set == nil || !set.has(code) {
		name := "<unknown enum>"
		if set != nil {
			name = set.name
		}
		return protoreflect.Value{}, &EnumValueError{
			Field:   c.field.ref(),
			Version: version,
			Enum:    name,
			Code:    code,
		}
	}
	return protoreflect.ValueOfEnum(protoreflect.EnumNumber(code)), nil
}

// stringBytesConverter unifies string/bytes fields onto text. Byte sources
// decode as UTF-8 on read; text written back to a bytes version re-encodes
// as UTF-8. The re-encoding is accepted policy and is not validated.
type stringBytesConverter struct {
	field *Field
	kinds map[string]protoreflect.Kind
}

func (c *stringBytesConverter) Read(v protoreflect.Value, version string) protoreflect.Value {
	if c.kinds[version] == protoreflect.BytesKind {
		return protoreflect.ValueOfString(string(v.Bytes()))
	}
	return protoreflect.ValueOfString(v.String())
}

func (c *stringBytesConverter) Write(v protoreflect.Value, version string) (protoreflect.Value, error) {
	if c.kinds[version] == protoreflect.BytesKind {
		return protoreflect.ValueOfBytes([]byte(v.String())), nil
	}
	return protoreflect.ValueOfString(v.String()), nil
}

// identityConverter passes values through unchanged: the field's native
// representation already is the unified representation.
type identityConverter struct{}

func (identityConverter) Read(v protoreflect.Value, version string) protoreflect.Value {
	return v
}

func (identityConverter) Write(v protoreflect.Value, version string) (protoreflect.Value, error) {
	return v, nil
}
