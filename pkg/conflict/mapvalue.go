package conflict

import (
	"fmt"
	"sync/atomic"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// Entry is one key/value pair of a map field in the unified representation.
// Entries keep the iteration order they were materialized in.
type Entry struct {
	Key   protoreflect.Value
	Value protoreflect.Value
}

// MapConverter backs MAP_VALUE_WIDENING and MAP_VALUE_INT_ENUM fields. Keys
// are identical across versions and pass through untouched; values go
// through the element converter entry by entry.
type MapConverter struct {
	field *Field
	elem  Converter
}

// Elem exposes the per-entry value converter.
func (c *MapConverter) Elem() Converter { return c.elem }

// ReadEntries converts a materialized list of native entries into the
// unified value domain, preserving order.
func (c *MapConverter) ReadEntries(entries []Entry, version string) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{Key: e.Key, Value: c.elem.Read(e.Value, version)}
	}
	return out
}

// ReadMap converts a native protoreflect map, preserving the ranging order.
func (c *MapConverter) ReadMap(m protoreflect.Map, version string) []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, 0, m.Len())
	m.Range(func(k protoreflect.MapKey, v protoreflect.Value) bool {
		out = append(out, Entry{Key: k.Value(), Value: c.elem.Read(v, version)})
		return true
	})
	return out
}

// WriteEntries validates and converts unified entries back into one
// version's value domain. Validation is fail-fast: the first rejected
// entry aborts the whole write and nothing is applied.
func (c *MapConverter) WriteEntries(entries []Entry, version string) ([]Entry, error) {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		v, err := c.elem.Write(e.Value, version)
		if err != nil {
			return nil, fmt.Errorf("map entry %v: %w", e.Key.Interface(), err)
		}
		out[i] = Entry{Key: e.Key, Value: v}
	}
	return out, nil
}

// Read converts a single map value; keys never need conversion.
func (c *MapConverter) Read(v protoreflect.Value, version string) protoreflect.Value {
	return c.elem.Read(v, version)
}

// Write validates a single map value.
func (c *MapConverter) Write(v protoreflect.Value, version string) (protoreflect.Value, error) {
	return c.elem.Write(v, version)
}

// ConvertedMapView memoizes the converted form of one source map. The
// conversion runs at most once per view and the result is published
// atomically, so concurrent readers after the first either both convert
// (one result wins) or share the published slice. Views are snapshots;
// a mutated source map needs a fresh view.
type ConvertedMapView struct {
	conv    *MapConverter
	version string
	source  []Entry

	converted atomic.Pointer[[]Entry]
}

// NewConvertedMapView captures a source snapshot for lazy conversion.
func (c *MapConverter) NewConvertedMapView(source []Entry, version string) *ConvertedMapView {
	return &ConvertedMapView{conv: c, version: version, source: source}
}

// Entries returns the converted entries, converting on first use.
func (v *ConvertedMapView) Entries() []Entry {
	if p := v.converted.Load(); p != nil {
		return *p
	}
	out := v.conv.ReadEntries(v.source, v.version)
	candidate := &out
	if v.converted.CompareAndSwap(nil, candidate) {
		return out
	}
	return *v.converted.Load()
}

// Len reports the entry count without forcing a conversion.
func (v *ConvertedMapView) Len() int { return len(v.source) }
