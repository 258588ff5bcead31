// Package conflict implements the conversion and validation rules for every
// entry in the cross-version conflict taxonomy, and the dispatcher that
// selects exactly one handler per merged field.
//
// Each handler fixes the unified representation the version-independent API
// exposes and yields a Converter for it. Read-direction conversions are
// total: they never fail for any value the source version can hold.
// Write-direction conversions validate against the target version's native
// representation and reject out-of-range values, unknown enum codes, and
// wrong-view mutations with descriptive errors; nothing is ever silently
// clamped, truncated, or defaulted.
package conflict
