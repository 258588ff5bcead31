package conflict

import (
	"errors"
	"fmt"
	"strings"
)

// Stable error codes for runtime conversion failures.
const (
	CodeEnumValueNotSupported = "CONV-001"
	CodeRangeExceeded         = "CONV-002"
	CodeWrongView             = "CONV-003"
	CodeMutationUnsupported   = "CONV-004"
)

// ErrMutationUnsupported is the sentinel under every MutationError: the
// unified API rejects writes for conflicts that have no lossless write rule.
var ErrMutationUnsupported = errors.New("mutation unsupported for this conflict")

// RangeError reports a write whose value does not fit the target version's
// native representation. The value passes through unchanged on failure;
// clamping is never performed.
type RangeError struct {
	Field      string
	Version    string
	TargetType string
	Value      any
	Min        any
	Max        any
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: value %v exceeds %s range [%v, %v] for field '%s' in version %s",
		CodeRangeExceeded, e.Value, e.TargetType, e.Min, e.Max, e.Field, e.Version)
}

// EnumValueError reports a numeric code absent from the target version's
// declared enumerants. No default is ever substituted.
type EnumValueError struct {
	Field   string
	Version string
	Enum    string
	Code    int32
}

func (e *EnumValueError) Error() string {
	return fmt.Sprintf("%s: enum code %d is not declared by %s for field '%s' in version %s",
		CodeEnumValueNotSupported, e.Code, e.Enum, e.Field, e.Version)
}

// ViewError reports a mutator call against the representation a version does
// not use (PRIMITIVE_MESSAGE dual accessors). There is no coercion between
// the scalar and structured forms.
type ViewError struct {
	Field     string
	Version   string
	Active    string // "scalar" or "message"
	Requested string
}

func (e *ViewError) Error() string {
	return fmt.Sprintf("%s: field '%s' uses the %s representation in version %s; the %s mutator is not applicable",
		CodeWrongView, e.Field, e.Active, e.Version, e.Requested)
}

// MutationError reports a write attempt for a conflict whose mutation is
// unsupported by contract. Unwraps to ErrMutationUnsupported.
type MutationError struct {
	Field    string
	Version  string
	Conflict string
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s: field '%s' carries a %s conflict; writes targeting version %s are rejected by contract",
		CodeMutationUnsupported, e.Field, e.Conflict, e.Version)
}

func (e *MutationError) Unwrap() error {
	return ErrMutationUnsupported
}

// ChainError reports a dispatcher defect: zero or more than one handler
// matched a merged contract. This indicates a configuration problem in the
// handler chain, not a property of the schema.
type ChainError struct {
	Field    string
	Matched  []HandlerType
	Contract string
}

func (e *ChainError) Error() string {
	if len(e.Matched) == 0 {
		return fmt.Sprintf("no conflict handler matches field '%s': %s", e.Field, e.Contract)
	}
	names := make([]string, len(e.Matched))
	for i, h := range e.Matched {
		names[i] = h.String()
	}
	return fmt.Sprintf("overlapping conflict handlers [%s] for field '%s': %s",
		strings.Join(names, ", "), e.Field, e.Contract)
}
