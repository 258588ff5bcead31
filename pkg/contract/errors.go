package contract

import (
	"fmt"
	"sort"
	"strings"
)

// Stable error codes for schema-shape failures.
const (
	CodeIncompatibleTypes = "SCHEMA-001"
	CodeCardinalityClash  = "SCHEMA-002"
	CodeMapShapeClash     = "SCHEMA-003"
	CodeEmptyMerge        = "SCHEMA-004"
)

// SchemaError is a fatal schema-shape error detected at merge time: the
// field's cross-version type change has no entry in the conflict taxonomy,
// so the merge aborts rather than guess at a lossy conversion. It carries
// enough context for a human to fix the schema.
type SchemaError struct {
	Code    string
	Message string // owning message full name
	Field   string
	Number  int32
	Types   map[string]string // version -> type description
	Reason  string
}

func (e *SchemaError) Error() string {
	versions := make([]string, 0, len(e.Types))
	for v := range e.Types {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	parts := make([]string, 0, len(versions))
	for _, v := range versions {
		parts = append(parts, v+":"+e.Types[v])
	}
	return fmt.Sprintf("%s: field %s.%s (#%d): %s [%s]",
		e.Code, e.Message, e.Field, e.Number, e.Reason, strings.Join(parts, ", "))
}

// Versions returns the sorted versions involved in the error.
func (e *SchemaError) Versions() []string {
	versions := make([]string, 0, len(e.Types))
	for v := range e.Types {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}
