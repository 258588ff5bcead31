package contract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/protounify/protounify/pkg/schema"
)

// MergedFieldContract is the unified contract for one logical field across
// every version that declares it. Immutable once built.
type MergedFieldContract struct {
	perVersion map[string]FieldContract
	unified    FieldContract
	presentIn  []string // sorted
	conflict   ConflictType
}

// Merge combines the per-version contracts of one logical field into the
// unified contract governing the version-independent API. The conflict type
// comes from Classify; the signals are the same identity-resolution hints
// handed to classification. Merge is commutative and associative over the
// contract set: only property sets matter, never input order.
func Merge(perVersion map[string]FieldContract, conflict ConflictType, signals Signals) (*MergedFieldContract, error) {
	if len(perVersion) == 0 {
		return nil, &SchemaError{
			Code:   CodeEmptyMerge,
			Types:  map[string]string{},
			Reason: "cannot merge an empty contract set",
		}
	}

	versions := make([]string, 0, len(perVersion))
	for v := range perVersion {
		versions = append(versions, v)
	}
	sort.Strings(versions)

	contracts := make(map[string]FieldContract, len(perVersion))
	for v, c := range perVersion {
		contracts[v] = c
	}

	return &MergedFieldContract{
		perVersion: contracts,
		unified:    unify(contracts, versions, conflict, signals),
		presentIn:  versions,
		conflict:   conflict,
	}, nil
}

func unify(contracts map[string]FieldContract, versions []string, conflict ConflictType, signals Signals) FieldContract {
	first := contracts[versions[0]]
	if len(contracts) == 1 {
		return first
	}

	cardinality := mergeCardinality(contracts, conflict, signals)
	category := mergeTypeCategory(contracts, conflict, signals)
	presence := mergePresence(contracts)

	inGroup := false
	allAvailable := true
	anyNullable := false
	for _, c := range contracts {
		inGroup = inGroup || c.InGroup
		allAvailable = allAvailable && c.PresenceCheckAvailable
		anyNullable = anyNullable || c.NullableRead
	}

	// The presence-check accessor exists in the unified API only if it
	// exists unconditionally: an intersection, and never for collections.
	available := allAvailable && cardinality == schema.CardinalitySingular
	nullable := anyNullable && cardinality == schema.CardinalitySingular
	reader := available && nullable

	return FieldContract{
		Cardinality:             cardinality,
		TypeCategory:            category,
		Presence:                presence,
		InGroup:                 inGroup,
		PresenceCheckAvailable:  available,
		ReaderUsesPresenceCheck: reader,
		NullableRead:            nullable,
		DefaultValue:            unifiedDefault(cardinality, category, nullable, contracts, versions),
	}
}

func mergeCardinality(contracts map[string]FieldContract, conflict ConflictType, signals Signals) schema.Cardinality {
	if conflict == ConflictRepeatedSingle || signals.RepeatedSingleSplit {
		return schema.CardinalityRepeated
	}
	result := schema.CardinalitySingular
	for _, c := range contracts {
		switch c.Cardinality {
		case schema.CardinalityMap:
			return schema.CardinalityMap
		case schema.CardinalityRepeated:
			result = schema.CardinalityRepeated
		}
	}
	return result
}

func mergeTypeCategory(contracts map[string]FieldContract, conflict ConflictType, signals Signals) schema.TypeCategory {
	// Message semantics are the superset: always nullable, always carries
	// a presence check.
	if conflict == ConflictPrimitiveMessage || signals.ScalarMessageSplit {
		return schema.TypeMessage
	}
	for _, c := range contracts {
		if c.TypeCategory == schema.TypeMessage {
			return schema.TypeMessage
		}
	}
	switch conflict {
	case ConflictIntEnum, ConflictEnumEnum:
		// The unified representation is the raw numeric code.
		return schema.TypeScalarNumeric
	case ConflictStringBytes:
		return schema.TypeScalarString
	case ConflictWidening, ConflictFloatDouble, ConflictSignedUnsigned:
		return schema.TypeScalarNumeric
	}
	// Identical across versions for every remaining classification.
	var category schema.TypeCategory
	for _, c := range contracts {
		category = c.TypeCategory
		break
	}
	return category
}

func mergePresence(contracts map[string]FieldContract) schema.Presence {
	anyExplicitDialect := false
	allRequired := true
	anySynthetic := false
	for _, c := range contracts {
		switch c.Presence {
		case schema.PresenceExplicitRequired:
			anyExplicitDialect = true
		case schema.PresenceExplicitOptional:
			anyExplicitDialect = true
			allRequired = false
		case schema.PresenceExplicitOptionalSynthetic:
			anySynthetic = true
			allRequired = false
		default:
			allRequired = false
		}
	}
	if anyExplicitDialect {
		if allRequired {
			return schema.PresenceExplicitRequired
		}
		return schema.PresenceExplicitOptional
	}
	if anySynthetic {
		return schema.PresenceExplicitOptionalSynthetic
	}
	return schema.PresenceImplicit
}

func unifiedDefault(cardinality schema.Cardinality, category schema.TypeCategory, nullable bool, contracts map[string]FieldContract, versions []string) DefaultValueKind {
	if cardinality == schema.CardinalityRepeated {
		return DefaultEmptyList
	}
	if cardinality == schema.CardinalityMap {
		return DefaultEmptyMap
	}
	if nullable {
		return DefaultNull
	}
	// A text-unified field defaults to empty text even when the lowest
	// version is bytes-typed: the merged category owns the default.
	if category == schema.TypeScalarString {
		return DefaultEmptyString
	}
	// Nothing forces null: fall back to a consistent per-version default.
	// The lowest version decides, so the result does not depend on map
	// iteration order.
	return contracts[versions[0]].DefaultValue
}

// Unified returns the merged contract governing the unified API.
func (m *MergedFieldContract) Unified() FieldContract {
	return m.unified
}

// Conflict returns the conflict classification assigned at build time.
func (m *MergedFieldContract) Conflict() ConflictType {
	return m.conflict
}

// PresentIn returns the sorted versions that declare the field. Never empty.
func (m *MergedFieldContract) PresentIn() []string {
	return append([]string(nil), m.presentIn...)
}

// IsPresentIn reports whether the field is declared in the given version.
func (m *MergedFieldContract) IsPresentIn(version string) bool {
	_, ok := m.perVersion[version]
	return ok
}

// ForVersion returns the single-version contract for the given version.
func (m *MergedFieldContract) ForVersion(version string) (FieldContract, bool) {
	c, ok := m.perVersion[version]
	return c, ok
}

// VersionCount returns the number of versions declaring the field.
func (m *MergedFieldContract) VersionCount() int {
	return len(m.presentIn)
}

// HasConflict reports whether any cross-version conflict was classified.
func (m *MergedFieldContract) HasConflict() bool {
	return m.conflict != ConflictNone
}

// Describe renders the merged contract for logs and error messages.
func (m *MergedFieldContract) Describe() string {
	var sb strings.Builder
	sb.WriteString("MergedFieldContract[\n")
	fmt.Fprintf(&sb, "  unified:  %s\n", m.unified.Describe())
	fmt.Fprintf(&sb, "  versions: %s\n", strings.Join(m.presentIn, ", "))
	if m.conflict != ConflictNone {
		fmt.Fprintf(&sb, "  conflict: %s\n", m.conflict)
	}
	for _, v := range m.presentIn {
		fmt.Fprintf(&sb, "  %s: %s\n", v, m.perVersion[v].Describe())
	}
	sb.WriteString("]")
	return sb.String()
}
