package conflict

import (
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/protounify/protounify/pkg/schema"
)

// DualViewConverter backs PRIMITIVE_MESSAGE fields: the unified API exposes
// a scalar view and a structured view side by side, and each version
// activates exactly one of them. The inactive view reads as absent; calling
// the mutator for the inactive view is a usage error, never a coercion.
type DualViewConverter struct {
	field *Field
}

// ScalarActive reports whether the version stores the scalar form.
func (c *DualViewConverter) ScalarActive(version string) bool {
	f, ok := c.field.Versions[version]
	return ok && f.Category() != schema.TypeMessage
}

// MessageActive reports whether the version stores the structured form.
func (c *DualViewConverter) MessageActive(version string) bool {
	f, ok := c.field.Versions[version]
	return ok && f.Category() == schema.TypeMessage
}

// ReadScalar returns the scalar view of a native value, or an invalid
// (absent) value when the version stores the structured form.
func (c *DualViewConverter) ReadScalar(v protoreflect.Value, version string) protoreflect.Value {
	if !c.ScalarActive(version) {
		return protoreflect.Value{}
	}
	return v
}

// ReadMessage returns the structured view of a native value, or an invalid
// (absent) value when the version stores the scalar form.
func (c *DualViewConverter) ReadMessage(v protoreflect.Value, version string) protoreflect.Value {
	if !c.MessageActive(version) {
		return protoreflect.Value{}
	}
	return v
}

// WriteScalar validates a scalar-view write against the version.
func (c *DualViewConverter) WriteScalar(v protoreflect.Value, version string) (protoreflect.Value, error) {
	if !c.ScalarActive(version) {
		return protoreflect.Value{}, &ViewError{
			Field:     c.field.ref(),
			Version:   version,
			Active:    "message",
			Requested: "scalar",
		}
	}
	return v, nil
}

// WriteMessage validates a structured-view write against the version.
func (c *DualViewConverter) WriteMessage(v protoreflect.Value, version string) (protoreflect.Value, error) {
	if !c.MessageActive(version) {
		return protoreflect.Value{}, &ViewError{
			Field:     c.field.ref(),
			Version:   version,
			Active:    "scalar",
			Requested: "message",
		}
	}
	return v, nil
}

// Read passes the native value through; per-view access goes through
// ReadScalar/ReadMessage.
func (c *DualViewConverter) Read(v protoreflect.Value, version string) protoreflect.Value {
	return v
}

// Write routes to the view matching the value's form and rejects the
// mismatch the same way the per-view mutators do.
func (c *DualViewConverter) Write(v protoreflect.Value, version string) (protoreflect.Value, error) {
	if _, isMessage := v.Interface().(protoreflect.Message); isMessage {
		return c.WriteMessage(v, version)
	}
	return c.WriteScalar(v, version)
}

// RepeatedSingleConverter backs REPEATED_SINGLE fields. The unified
// representation is an ordered sequence; a singular version reads as a
// one-element sequence, or an empty one when the field is absent. Mutation
// is rejected by contract for every version: there is no lossless way to
// write a sequence back into a singular slot.
type RepeatedSingleConverter struct {
	field *Field
}

// ReadAsSequence lifts one version's native value into the unified
// sequence shape.
func (c *RepeatedSingleConverter) ReadAsSequence(v protoreflect.Value, present bool, version string) []protoreflect.Value {
	f, ok := c.field.Versions[version]
	if !ok || !present {
		return nil
	}
	if f.Cardinality == schema.CardinalityRepeated {
		if list, isList := v.Interface().(protoreflect.List); isList {
			out := make([]protoreflect.Value, list.Len())
			for i := 0; i < list.Len(); i++ {
				out[i] = list.Get(i)
			}
			return out
		}
	}
	return []protoreflect.Value{v}
}

// Read passes elements through unchanged; the element type is identical
// across versions for this conflict.
func (c *RepeatedSingleConverter) Read(v protoreflect.Value, version string) protoreflect.Value {
	return v
}

// Write is rejected by contract, explicitly rather than by omitting the
// mutator from the API surface.
func (c *RepeatedSingleConverter) Write(v protoreflect.Value, version string) (protoreflect.Value, error) {
	return protoreflect.Value{}, &MutationError{
		Field:    c.field.ref(),
		Version:  version,
		Conflict: "REPEATED_SINGLE",
	}
}
