package analyzer

import (
	"context"
	"fmt"
	"sort"

	"github.com/bufbuild/protocompile"
	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/protounify/protounify/pkg/schema"
)

// Analyzer turns .proto sources into schema snapshots.
type Analyzer struct {
	logger *logrus.Logger
}

// New creates an analyzer. A nil logger falls back to a default logrus
// logger.
func New(logger *logrus.Logger) *Analyzer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Analyzer{logger: logger}
}

// AnalyzeSources compiles one version's sources (path -> content) and
// walks every compiled file into a single VersionSchema.
func (a *Analyzer) AnalyzeSources(ctx context.Context, version string, sources map[string]string) (*schema.VersionSchema, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("version %s: %w", version, ErrNoSources)
	}

	compiler := protocompile.Compiler{
		Resolver: &protocompile.SourceResolver{
			Accessor: protocompile.SourceAccessorFromMap(sources),
		},
	}

	paths := make([]string, 0, len(sources))
	for p := range sources {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	files, err := compiler.Compile(ctx, paths...)
	if err != nil {
		return nil, fmt.Errorf("version %s: compiling proto sources: %w", version, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("version %s: %w", version, ErrNoFiles)
	}

	descs := make([]protoreflect.FileDescriptor, len(files))
	for i, f := range files {
		descs[i] = f
	}
	return a.AnalyzeFiles(version, descs)
}

// AnalyzeFiles walks already-compiled file descriptors into a
// VersionSchema.
func (a *Analyzer) AnalyzeFiles(version string, files []protoreflect.FileDescriptor) (*schema.VersionSchema, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("version %s: %w", version, ErrNoFiles)
	}

	vs := &schema.VersionSchema{
		Version:  version,
		Syntax:   syntaxOf(files[0]),
		Messages: make(map[string]*schema.MessageSchema),
		Enums:    make(map[string]*schema.EnumSchema),
	}

	for _, fd := range files {
		syntax := syntaxOf(fd)
		walkMessages(vs, fd.Messages(), syntax)
		walkEnums(vs, fd.Enums())
	}

	a.logger.WithFields(logrus.Fields{
		"version":  version,
		"messages": len(vs.Messages),
		"enums":    len(vs.Enums),
	}).Debug("analyzed proto sources")

	return vs, nil
}

func syntaxOf(fd protoreflect.FileDescriptor) schema.Syntax {
	if fd.Syntax() == protoreflect.Proto2 {
		return schema.SyntaxProto2
	}
	return schema.SyntaxProto3
}

func walkMessages(vs *schema.VersionSchema, messages protoreflect.MessageDescriptors, syntax schema.Syntax) {
	for i := 0; i < messages.Len(); i++ {
		md := messages.Get(i)
		if md.IsMapEntry() {
			continue
		}
		vs.Messages[string(md.FullName())] = convertMessage(md, syntax)
		walkMessages(vs, md.Messages(), syntax)
		walkEnums(vs, md.Enums())
	}
}

func walkEnums(vs *schema.VersionSchema, enums protoreflect.EnumDescriptors) {
	for i := 0; i < enums.Len(); i++ {
		ed := enums.Get(i)
		vs.Enums[string(ed.FullName())] = convertEnum(ed)
	}
}

func convertEnum(ed protoreflect.EnumDescriptor) *schema.EnumSchema {
	values := ed.Values()
	out := make([]schema.EnumValue, 0, values.Len())
	for i := 0; i < values.Len(); i++ {
		vd := values.Get(i)
		out = append(out, schema.EnumValue{
			Name:   string(vd.Name()),
			Number: int32(vd.Number()),
		})
	}
	return schema.NewEnumSchema(string(ed.Name()), string(ed.FullName()), out)
}

func convertMessage(md protoreflect.MessageDescriptor, syntax schema.Syntax) *schema.MessageSchema {
	msg := &schema.MessageSchema{
		Name:         string(md.Name()),
		FullName:     string(md.FullName()),
		Fields:       make(map[int32]*schema.FieldDescriptor),
		FieldsByName: make(map[string]*schema.FieldDescriptor),
		Oneofs:       make(map[string]*schema.OneofSchema),
	}

	fields := md.Fields()
	for i := 0; i < fields.Len(); i++ {
		fd := convertField(fields.Get(i), syntax)
		msg.Fields[fd.Number] = fd
		msg.FieldsByName[fd.Name] = fd
		msg.FieldOrder = append(msg.FieldOrder, fd.Number)
	}

	oneofs := md.Oneofs()
	for i := 0; i < oneofs.Len(); i++ {
		od := oneofs.Get(i)
		if od.IsSynthetic() {
			continue
		}
		members := make([]string, 0, od.Fields().Len())
		for j := 0; j < od.Fields().Len(); j++ {
			members = append(members, string(od.Fields().Get(j).Name()))
		}
		msg.Oneofs[string(od.Name())] = &schema.OneofSchema{
			Name:    string(od.Name()),
			Members: members,
		}
	}

	return msg
}

func convertField(fd protoreflect.FieldDescriptor, syntax schema.Syntax) *schema.FieldDescriptor {
	out := &schema.FieldDescriptor{
		Name:       string(fd.Name()),
		Number:     int32(fd.Number()),
		Kind:       fd.Kind(),
		Syntax:     syntax,
		Required:   fd.Cardinality() == protoreflect.Required,
		Optional:   fd.HasOptionalKeyword(),
		OneofIndex: -1,
	}

	switch {
	case fd.IsMap():
		out.Cardinality = schema.CardinalityMap
		out.Map = &schema.MapInfo{
			KeyKind:       fd.MapKey().Kind(),
			ValueKind:     fd.MapValue().Kind(),
			ValueTypeName: typeNameOf(fd.MapValue()),
		}
	case fd.IsList():
		out.Cardinality = schema.CardinalityRepeated
	default:
		out.Cardinality = schema.CardinalitySingular
	}

	out.TypeName = typeNameOf(fd)

	if od := fd.ContainingOneof(); od != nil {
		out.OneofIndex = od.Index()
		out.OneofName = string(od.Name())
		out.SyntheticOneof = od.IsSynthetic()
	}

	return out
}

func typeNameOf(fd protoreflect.FieldDescriptor) string {
	switch fd.Kind() {
	case protoreflect.MessageKind, protoreflect.GroupKind:
		if fd.IsMap() {
			return ""
		}
		return string(fd.Message().FullName())
	case protoreflect.EnumKind:
		return string(fd.Enum().FullName())
	default:
		return ""
	}
}
