package merger

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/protounify/protounify/pkg/config"
	"github.com/protounify/protounify/pkg/conflict"
	"github.com/protounify/protounify/pkg/contract"
	"github.com/protounify/protounify/pkg/schema"
)

// Merger unifies per-version schemas under a merge policy.
type Merger struct {
	cfg    config.MergeConfig
	chain  *conflict.Chain
	logger *logrus.Logger
}

// New creates a merger. A nil policy means no exclusions or renames; a nil
// logger falls back to a default logrus logger.
func New(cfg *config.MergeConfig, logger *logrus.Logger) *Merger {
	var policy config.MergeConfig
	if cfg != nil {
		policy = *cfg
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Merger{
		cfg:    policy,
		chain:  conflict.NewChain(),
		logger: logger,
	}
}

// Merge unifies every message and enum declared by at least one version.
// Incompatible field shapes abort the merge with a *contract.SchemaError.
func (m *Merger) Merge(schemas map[string]*schema.VersionSchema) (*MergedSchema, error) {
	if len(schemas) == 0 {
		return nil, ErrNoVersions
	}

	versions := make([]string, 0, len(schemas))
	for v := range schemas {
		versions = append(versions, v)
	}
	sort.Strings(versions)

	out := &MergedSchema{
		Versions: versions,
		Messages: make(map[string]*MergedMessage),
		Enums:    make(map[string]*MergedEnum),
	}

	for _, name := range m.messageNames(versions, schemas) {
		mm, err := m.mergeMessage(name, versions, schemas)
		if err != nil {
			return nil, err
		}
		out.Messages[name] = mm
	}

	for _, name := range enumNames(versions, schemas) {
		out.Enums[name] = mergeEnum(name, versions, schemas)
	}

	return out, nil
}

// MergeMessage unifies a single message across the given versions.
func (m *Merger) MergeMessage(fullName string, schemas map[string]*schema.VersionSchema) (*MergedMessage, error) {
	if len(schemas) == 0 {
		return nil, ErrNoVersions
	}
	if m.cfg.MessageExcluded(fullName) {
		return nil, fmt.Errorf("%s: %w", fullName, ErrMessageNotFound)
	}
	versions := make([]string, 0, len(schemas))
	for v := range schemas {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return m.mergeMessage(fullName, versions, schemas)
}

func (m *Merger) messageNames(versions []string, schemas map[string]*schema.VersionSchema) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, v := range versions {
		for name := range schemas[v].Messages {
			if _, dup := seen[name]; dup {
				continue
			}
			if m.cfg.MessageExcluded(name) {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func enumNames(versions []string, schemas map[string]*schema.VersionSchema) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, v := range versions {
		for name := range schemas[v].Enums {
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

func (m *Merger) mergeMessage(fullName string, versions []string, schemas map[string]*schema.VersionSchema) (*MergedMessage, error) {
	perVersionMsg := make(map[string]*schema.MessageSchema)
	shortName := ""
	for _, v := range versions {
		if msg, ok := schemas[v].Message(fullName); ok {
			perVersionMsg[v] = msg
			if shortName == "" {
				shortName = msg.Name
			}
		}
	}
	if len(perVersionMsg) == 0 {
		return nil, fmt.Errorf("%s: %w", fullName, ErrMessageNotFound)
	}

	merged := &MergedMessage{
		Name:     shortName,
		FullName: fullName,
		Fields:   make(map[int32]*MergedField),
		Oneofs:   make(map[string]*MergedOneof),
	}

	for _, number := range fieldNumbers(versions, perVersionMsg) {
		perVersion := make(map[string]*schema.FieldDescriptor)
		excluded := false
		for _, v := range versions {
			msg, ok := perVersionMsg[v]
			if !ok {
				continue
			}
			fd, ok := msg.Field(number)
			if !ok {
				continue
			}
			if m.cfg.FieldExcluded(fullName, fd.Name) {
				excluded = true
				break
			}
			perVersion[v] = fd
		}
		if excluded || len(perVersion) == 0 {
			continue
		}

		mf, warnings, err := m.mergeField(fullName, number, versions, perVersion, schemas)
		if err != nil {
			return nil, err
		}
		merged.Fields[number] = mf
		merged.FieldOrder = append(merged.FieldOrder, number)
		merged.Warnings = append(merged.Warnings, warnings...)
	}

	mergeOneofs(merged, versions, perVersionMsg)

	return merged, nil
}

// mergeField unifies one logical field: classify, merge contracts, resolve
// the handler.
func (m *Merger) mergeField(message string, number int32, versions []string, perVersion map[string]*schema.FieldDescriptor, schemas map[string]*schema.VersionSchema) (*MergedField, []string, error) {
	name, warnings := m.unifiedName(message, number, versions, perVersion)
	ref := contract.FieldRef{Message: message, Name: name, Number: number}
	signals := computeSignals(perVersion)

	ct, err := contract.Classify(ref, perVersion, signals)
	if err != nil {
		return nil, nil, err
	}

	contracts := make(map[string]contract.FieldContract, len(perVersion))
	for v, fd := range perVersion {
		contracts[v] = contract.Of(fd)
	}
	mc, err := contract.Merge(contracts, ct, signals)
	if err != nil {
		return nil, nil, err
	}

	field := &conflict.Field{
		Message:  message,
		Name:     name,
		Number:   number,
		Contract: mc,
		Versions: perVersion,
		Enums:    enumSchemas(perVersion, schemas),
	}
	res, err := m.chain.Resolve(field)
	if err != nil {
		return nil, nil, err
	}

	if ct != contract.ConflictNone {
		fields := logrus.Fields{
			"message":  message,
			"field":    name,
			"number":   number,
			"conflict": ct.String(),
			"handler":  res.Handler.String(),
			"types":    typeDescriptions(versions, perVersion),
		}
		declared, acknowledged := m.cfg.ResolvedConflict(message, name)
		switch {
		case !acknowledged:
			m.logger.WithFields(fields).Warn("field type conflict resolved")
		case declared != ct.String():
			warnings = append(warnings, fmt.Sprintf(
				"field %s.%s declares conflict resolution %s but the detected conflict is %s",
				message, name, declared, ct))
			m.logger.WithFields(fields).WithField("declared", declared).
				Warn("configured conflict resolution does not match the detected conflict")
		default:
			m.logger.WithFields(fields).Debug("field type conflict acknowledged by configuration")
		}
	}

	if w := requiredDrift(message, name, versions, perVersion); w != "" {
		warnings = append(warnings, w)
		m.logger.WithFields(logrus.Fields{
			"message": message,
			"field":   name,
		}).Warn("required/optional drift across versions")
	}

	return &MergedField{
		Name:       name,
		Number:     number,
		Contract:   mc,
		Resolution: res,
		Versions:   perVersion,
	}, warnings, nil
}

// unifiedName picks the configured canonical name, else the lowest
// version's declared name, warning when the declared name drifted.
func (m *Merger) unifiedName(message string, number int32, versions []string, perVersion map[string]*schema.FieldDescriptor) (string, []string) {
	if canonical, ok := m.cfg.CanonicalName(message, number); ok {
		return canonical, nil
	}

	name := ""
	drift := false
	for _, v := range versions {
		fd, ok := perVersion[v]
		if !ok {
			continue
		}
		if name == "" {
			name = fd.Name
		} else if fd.Name != name {
			drift = true
		}
	}
	if !drift {
		return name, nil
	}
	warning := fmt.Sprintf("field %s.%s (number %d) renamed across versions; using %q", message, name, number, name)
	m.logger.WithFields(logrus.Fields{
		"message": message,
		"number":  number,
		"name":    name,
	}).Warn("field renamed across versions without a configured canonical name")
	return name, []string{warning}
}

// enumSchemas resolves, per version, the enum type backing the field or
// its map value, when there is one.
func enumSchemas(perVersion map[string]*schema.FieldDescriptor, schemas map[string]*schema.VersionSchema) map[string]*schema.EnumSchema {
	var out map[string]*schema.EnumSchema
	for v, fd := range perVersion {
		typeName := ""
		switch {
		case fd.Kind == protoreflect.EnumKind:
			typeName = fd.TypeName
		case fd.Map != nil && fd.Map.ValueKind == protoreflect.EnumKind:
			typeName = fd.Map.ValueTypeName
		}
		if typeName == "" {
			continue
		}
		vs, ok := schemas[v]
		if !ok {
			continue
		}
		es, ok := vs.Enum(typeName)
		if !ok {
			continue
		}
		if out == nil {
			out = make(map[string]*schema.EnumSchema)
		}
		out[v] = es
	}
	return out
}

func computeSignals(perVersion map[string]*schema.FieldDescriptor) contract.Signals {
	var anyRepeated, anySingular, anyMessage, anyScalar bool
	for _, fd := range perVersion {
		switch fd.Cardinality {
		case schema.CardinalityRepeated:
			anyRepeated = true
		case schema.CardinalitySingular:
			anySingular = true
		}
		if fd.Category() == schema.TypeMessage {
			anyMessage = true
		} else {
			anyScalar = true
		}
	}
	return contract.Signals{
		RepeatedSingleSplit: anyRepeated && anySingular,
		ScalarMessageSplit:  anyMessage && anyScalar,
	}
}

func fieldNumbers(versions []string, perVersionMsg map[string]*schema.MessageSchema) []int32 {
	seen := make(map[int32]struct{})
	var numbers []int32
	for _, v := range versions {
		msg, ok := perVersionMsg[v]
		if !ok {
			continue
		}
		for _, n := range msg.FieldOrder {
			if _, dup := seen[n]; !dup {
				seen[n] = struct{}{}
				numbers = append(numbers, n)
			}
		}
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	return numbers
}

func typeDescriptions(versions []string, perVersion map[string]*schema.FieldDescriptor) map[string]string {
	out := make(map[string]string, len(perVersion))
	for _, v := range versions {
		if fd, ok := perVersion[v]; ok {
			out[v] = fd.TypeDescription()
		}
	}
	return out
}

func requiredDrift(message, name string, versions []string, perVersion map[string]*schema.FieldDescriptor) string {
	var anyRequired, anyNotRequired bool
	for _, fd := range perVersion {
		if fd.Presence() == schema.PresenceExplicitRequired {
			anyRequired = true
		} else {
			anyNotRequired = true
		}
	}
	if anyRequired && anyNotRequired {
		return fmt.Sprintf("field %s.%s is required in some versions and optional in others; unified presence is optional", message, name)
	}
	return ""
}

func mergeOneofs(merged *MergedMessage, versions []string, perVersionMsg map[string]*schema.MessageSchema) {
	memberSets := make(map[string]map[string]struct{})
	mismatch := make(map[string]bool)

	for _, v := range versions {
		msg, ok := perVersionMsg[v]
		if !ok {
			continue
		}
		for name, oneof := range msg.Oneofs {
			set, seen := memberSets[name]
			if !seen {
				set = make(map[string]struct{}, len(oneof.Members))
				for _, member := range oneof.Members {
					set[member] = struct{}{}
				}
				memberSets[name] = set
				continue
			}
			if !sameMembers(set, oneof.Members) {
				mismatch[name] = true
			}
			for _, member := range oneof.Members {
				set[member] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(memberSets))
	for name := range memberSets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		members := make([]string, 0, len(memberSets[name]))
		for member := range memberSets[name] {
			members = append(members, member)
		}
		sort.Strings(members)
		merged.Oneofs[name] = &MergedOneof{
			Name:     name,
			Members:  members,
			Mismatch: mismatch[name],
		}
		if mismatch[name] {
			merged.Warnings = append(merged.Warnings,
				fmt.Sprintf("oneof %s.%s has differing members across versions; unified group is the union", merged.FullName, name))
		}
	}
}

func sameMembers(set map[string]struct{}, members []string) bool {
	if len(set) != len(members) {
		return false
	}
	for _, m := range members {
		if _, ok := set[m]; !ok {
			return false
		}
	}
	return true
}

func mergeEnum(fullName string, versions []string, schemas map[string]*schema.VersionSchema) *MergedEnum {
	merged := &MergedEnum{
		FullName:   fullName,
		PerVersion: make(map[string]*schema.EnumSchema),
	}
	byNumber := make(map[int32]schema.EnumValue)
	var numbers []int32

	for _, v := range versions {
		es, ok := schemas[v].Enum(fullName)
		if !ok {
			continue
		}
		merged.PerVersion[v] = es
		if merged.Name == "" {
			merged.Name = es.Name
		}
		for _, val := range es.Values {
			if _, dup := byNumber[val.Number]; !dup {
				byNumber[val.Number] = val
				numbers = append(numbers, val.Number)
			}
		}
	}

	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	for _, n := range numbers {
		merged.Values = append(merged.Values, byNumber[n])
	}
	return merged
}
