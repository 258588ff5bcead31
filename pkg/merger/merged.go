package merger

import (
	"github.com/protounify/protounify/pkg/conflict"
	"github.com/protounify/protounify/pkg/contract"
	"github.com/protounify/protounify/pkg/schema"
)

// MergedSchema is the unified view over every message and enum declared by
// at least one version.
type MergedSchema struct {
	Versions []string // sorted
	Messages map[string]*MergedMessage
	Enums    map[string]*MergedEnum
}

// MergedMessage is one message unified across versions.
type MergedMessage struct {
	Name     string
	FullName string

	Fields     map[int32]*MergedField
	FieldOrder []int32 // ascending field number

	Oneofs map[string]*MergedOneof

	// Warnings carries non-fatal drift noticed during the merge: field
	// renames without a configured canonical name, required/optional
	// drift, oneof membership mismatches.
	Warnings []string
}

// MergedField is one logical field: the descriptors that share a field
// number across versions, their merged contract, and the handler
// resolution that fixes the unified type and converter.
type MergedField struct {
	Name   string
	Number int32

	Contract   *contract.MergedFieldContract
	Resolution *conflict.Resolution
	Versions   map[string]*schema.FieldDescriptor
}

// Conflict returns the field's classified conflict type.
func (f *MergedField) Conflict() contract.ConflictType {
	return f.Contract.Conflict()
}

// MergedOneof is a real oneof group unified across versions.
type MergedOneof struct {
	Name    string
	Members []string // union, sorted

	// Mismatch is set when versions disagree on the member set.
	Mismatch bool
}

// MergedEnum is one enum unified across versions: the union of declared
// enumerants plus the per-version value sets kept for write validation.
type MergedEnum struct {
	Name     string
	FullName string
	Values   []schema.EnumValue // union, ascending number

	PerVersion map[string]*schema.EnumSchema
}

// HasNumberIn reports whether the version's enum declares the code.
func (e *MergedEnum) HasNumberIn(version string, code int32) bool {
	es, ok := e.PerVersion[version]
	return ok && es.HasNumber(code)
}

// Field returns the logical field with the given number, if present.
func (m *MergedMessage) Field(number int32) (*MergedField, bool) {
	f, ok := m.Fields[number]
	return f, ok
}

// FieldByName returns the logical field with the given unified name.
func (m *MergedMessage) FieldByName(name string) (*MergedField, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Message returns the merged message with the given fully qualified name.
func (s *MergedSchema) Message(fullName string) (*MergedMessage, bool) {
	m, ok := s.Messages[fullName]
	return m, ok
}

// Enum returns the merged enum with the given fully qualified name.
func (s *MergedSchema) Enum(fullName string) (*MergedEnum, bool) {
	e, ok := s.Enums[fullName]
	return e, ok
}
