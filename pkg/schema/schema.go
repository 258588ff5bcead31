package schema

// VersionSchema is the complete parsed schema of one published version.
type VersionSchema struct {
	Version  string
	Syntax   Syntax
	Messages map[string]*MessageSchema // fully qualified name -> message
	Enums    map[string]*EnumSchema    // fully qualified name -> enum
}

// MessageSchema holds one message definition with field lookup by number and
// by name.
type MessageSchema struct {
	Name         string
	FullName     string
	Fields       map[int32]*FieldDescriptor
	FieldsByName map[string]*FieldDescriptor
	FieldOrder   []int32 // declaration order
	Oneofs       map[string]*OneofSchema
}

// OneofSchema is a real (non-synthetic) oneof group and its member fields.
type OneofSchema struct {
	Name    string
	Members []string // field names in declaration order
}

// EnumSchema holds one enum definition and its declared value set.
type EnumSchema struct {
	Name     string
	FullName string
	Values   []EnumValue
	numbers  map[int32]struct{}
}

// EnumValue is a single declared enumerant.
type EnumValue struct {
	Name   string
	Number int32
}

// NewEnumSchema builds an EnumSchema with its number index.
func NewEnumSchema(name, fullName string, values []EnumValue) *EnumSchema {
	numbers := make(map[int32]struct{}, len(values))
	for _, v := range values {
		numbers[v.Number] = struct{}{}
	}
	return &EnumSchema{
		Name:     name,
		FullName: fullName,
		Values:   append([]EnumValue(nil), values...),
		numbers:  numbers,
	}
}

// HasNumber reports whether the enum declares the given numeric code.
func (e *EnumSchema) HasNumber(code int32) bool {
	_, ok := e.numbers[code]
	return ok
}

// First returns the first declared enumerant.
func (e *EnumSchema) First() EnumValue {
	if len(e.Values) == 0 {
		return EnumValue{}
	}
	return e.Values[0]
}

// Enum resolves an enum by fully qualified name.
func (s *VersionSchema) Enum(fullName string) (*EnumSchema, bool) {
	e, ok := s.Enums[fullName]
	return e, ok
}

// Message resolves a message by fully qualified name.
func (s *VersionSchema) Message(fullName string) (*MessageSchema, bool) {
	m, ok := s.Messages[fullName]
	return m, ok
}

// Field returns the field with the given number, if declared.
func (m *MessageSchema) Field(number int32) (*FieldDescriptor, bool) {
	f, ok := m.Fields[number]
	return f, ok
}
