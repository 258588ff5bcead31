package conflict

import (
	"math"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/protounify/protounify/pkg/schema"
)

// intConverter unifies integer fields whose kinds differ across versions in
// width, signedness, or wire encoding. The unified carrier is a 64-bit
// signed integer unless every version is unsigned, in which case it is a
// 64-bit unsigned integer.
//
// Reads are total: 32-bit unsigned sources are zero-extended (the bit
// pattern is treated as unsigned, never sign-extended) and 64-bit unsigned
// sources are reinterpreted bit-for-bit into the signed carrier. Writes
// validate the target kind's representable range; for an unsigned 64-bit
// target only the non-negative half of the signed carrier is representable.
type intConverter struct {
	field           *Field
	kinds           map[string]protoreflect.Kind
	unsignedCarrier bool
}

func newIntConverter(f *Field, kinds map[string]protoreflect.Kind) *intConverter {
	unsigned := true
	for _, k := range kinds {
		if !schema.IsUnsigned(k) {
			unsigned = false
			break
		}
	}
	return &intConverter{field: f, kinds: kinds, unsignedCarrier: unsigned}
}

func (c *intConverter) carrierKind() protoreflect.Kind {
	if c.unsignedCarrier {
		return protoreflect.Uint64Kind
	}
	return protoreflect.Int64Kind
}

func (c *intConverter) Read(v protoreflect.Value, version string) protoreflect.Value {
	k := c.kinds[version]
	if c.unsignedCarrier {
		return protoreflect.ValueOfUint64(v.Uint())
	}
	if schema.IsUnsigned(k) {
		if schema.BitWidth(k) == 32 {
			// Zero-extend: bit pattern 0xFFFFFFFF reads as 4294967295.
			return protoreflect.ValueOfInt64(int64(uint32(v.Uint())))
		}
		return protoreflect.ValueOfInt64(int64(v.Uint()))
	}
	return protoreflect.ValueOfInt64(v.Int())
}

func (c *intConverter) Write(v protoreflect.Value, version string) (protoreflect.Value, error) {
	k := c.kinds[version]
	if c.unsignedCarrier {
		return c.writeUnsignedCarrier(v.Uint(), k, version)
	}
	return c.writeSignedCarrier(v.Int(), k, version)
}

func (c *intConverter) writeSignedCarrier(s int64, k protoreflect.Kind, version string) (protoreflect.Value, error) {
	switch {
	case schema.IsUnsigned(k) && schema.BitWidth(k) == 32:
		if s < 0 || s > math.MaxUint32 {
			return protoreflect.Value{}, c.rangeError(version, k, s, 0, int64(math.MaxUint32))
		}
		return protoreflect.ValueOfUint32(uint32(s)), nil
	case schema.IsUnsigned(k):
		if s < 0 {
			return protoreflect.Value{}, c.rangeError(version, k, s, 0, int64(math.MaxInt64))
		}
		return protoreflect.ValueOfUint64(uint64(s)), nil
	case schema.BitWidth(k) == 32:
		if s < math.MinInt32 || s > math.MaxInt32 {
			return protoreflect.Value{}, c.rangeError(version, k, s, math.MinInt32, math.MaxInt32)
		}
		return protoreflect.ValueOfInt32(int32(s)), nil
	default:
		return protoreflect.ValueOfInt64(s), nil
	}
}

func (c *intConverter) writeUnsignedCarrier(u uint64, k protoreflect.Kind, version string) (protoreflect.Value, error) {
	if schema.BitWidth(k) == 32 {
		if u > math.MaxUint32 {
			return protoreflect.Value{}, c.rangeError(version, k, u, 0, uint64(math.MaxUint32))
		}
		return protoreflect.ValueOfUint32(uint32(u)), nil
	}
	return protoreflect.ValueOfUint64(u), nil
}

func (c *intConverter) rangeError(version string, k protoreflect.Kind, value, min, max any) error {
	return &RangeError{
		Field:      c.field.ref(),
		Version:    version,
		TargetType: k.String(),
		Value:      value,
		Min:        min,
		Max:        max,
	}
}

// floatConverter unifies float/double fields. The unified representation is
// a double; float sources widen exactly on read. Writes targeting a float
// version reject finite values whose magnitude exceeds single-precision
// range; NaN and the infinities pass through unchecked.
type floatConverter struct {
	field *Field
	kinds map[string]protoreflect.Kind
}

func (c *floatConverter) Read(v protoreflect.Value, version string) protoreflect.Value {
	return protoreflect.ValueOfFloat64(v.Float())
}

func (c *floatConverter) Write(v protoreflect.Value, version string) (protoreflect.Value, error) {
	f := v.Float()
	if c.kinds[version] != protoreflect.FloatKind {
		return protoreflect.ValueOfFloat64(f), nil
	}
	if !math.IsNaN(f) && !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
		return protoreflect.Value{}, &RangeError{
			Field:      c.field.ref(),
			Version:    version,
			TargetType: protoreflect.FloatKind.String(),
			Value:      f,
			Min:        -math.MaxFloat32,
			Max:        math.MaxFloat32,
		}
	}
	return protoreflect.ValueOfFloat32(float32(f)), nil
}
