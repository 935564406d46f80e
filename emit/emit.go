// Package emit renders class descriptors into typed mock bindings. Output is
// destructive and deterministic: each run replaces the output directory, and
// the same descriptors always produce byte-identical files.
package emit

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/tmdgusya/typedmock/descriptor"
)

// Consts.
const outputDirPermissions = 0o750

// Vars.

// reservedMockIdents are identifiers a generated mock already exposes through
// its embedded composite; accessors with these names get a numeric suffix.
var reservedMockIdents = []string{
	"CompositeProxy",
	"Class",
	"Method",
	"Async",
	"Property",
	"Attr",
	"ResetRecordedCalls",
	"FinalizeStrictChecks",
}

// Types - Public

// Binding names the artifacts generated for one class.
type Binding struct {
	QualifiedName string
	MockName      string
	File          string
}

// Manifest summarizes one emit run.
type Manifest struct {
	Bindings []Binding
	Files    []string
}

// Emitter writes typed mock bindings for a set of classes.
type Emitter struct {
	FS       FileSystem
	Out      io.Writer
	Package  string
	registry *TemplateRegistry
}

// Types - Private

type accessorData struct {
	MockName     string
	AccessorName string
	MemberName   string
	ProxyType    string
	Getter       string
	Signature    string
}

type memberData struct {
	descriptor.Member

	KindIdent string
}

type classData struct {
	Package         string
	QualifiedName   string
	MockName        string
	ClassFunc       string
	IncludesPrivate bool
	Members         []memberData
}

type manifestEntry struct {
	QualifiedName string
	ClassFunc     string
}

// Functions - Public

// NewEmitter builds an emitter writing through fileSystem, reporting progress
// to out, and generating files in the named package.
func NewEmitter(fileSystem FileSystem, out io.Writer, packageName string) *Emitter {
	return &Emitter{
		FS:       fileSystem,
		Out:      out,
		Package:  packageName,
		registry: NewTemplateRegistry(),
	}
}

// Emit replaces outputDir with bindings for classes. Classes render in
// qualified-name order, one file each, plus a manifest indexing every
// binding.
func (e *Emitter) Emit(outputDir string, classes []*descriptor.Class) (*Manifest, error) {
	if err := e.FS.RemoveAll(outputDir); err != nil {
		return nil, fmt.Errorf("error clearing %s: %w", outputDir, err)
	}

	if err := e.FS.MkdirAll(outputDir, outputDirPermissions); err != nil {
		return nil, fmt.Errorf("error creating %s: %w", outputDir, err)
	}

	ordered := append([]*descriptor.Class(nil), classes...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].QualifiedName < ordered[j].QualifiedName
	})

	manifest := &Manifest{}
	entries := make([]manifestEntry, 0, len(ordered))
	taken := map[string]bool{}

	for _, class := range ordered {
		ident := uniqueIdent(class.Name(), taken)
		data := e.classData(class, ident)

		path := filepath.Join(outputDir, toSnake(ident)+".go")
		if err := writeSource(e.FS, path, e.renderClass(data), e.Out); err != nil {
			return nil, err
		}

		manifest.Bindings = append(manifest.Bindings, Binding{
			QualifiedName: class.QualifiedName,
			MockName:      data.MockName,
			File:          path,
		})
		manifest.Files = append(manifest.Files, path)
		entries = append(entries, manifestEntry{
			QualifiedName: class.QualifiedName,
			ClassFunc:     data.ClassFunc,
		})
	}

	manifestPath := filepath.Join(outputDir, "manifest.go")

	var buf bytes.Buffer

	e.registry.WriteManifest(&buf, struct {
		Package string
		Entries []manifestEntry
	}{Package: e.Package, Entries: entries})

	if err := writeSource(e.FS, manifestPath, buf.String(), e.Out); err != nil {
		return nil, err
	}

	manifest.Files = append(manifest.Files, manifestPath)

	return manifest, nil
}

// Functions - Private

func (e *Emitter) classData(class *descriptor.Class, ident string) classData {
	members := make([]memberData, 0, len(class.Members))
	for _, member := range class.Members {
		members = append(members, memberData{Member: member, KindIdent: kindIdent(member.Kind)})
	}

	// Member order within a binding follows member name, so regenerating from
	// an equivalent descriptor yields identical bytes.
	sort.Slice(members, func(i, j int) bool {
		return members[i].Name < members[j].Name
	})

	return classData{
		Package:         e.Package,
		QualifiedName:   class.QualifiedName,
		MockName:        ident + "Mock",
		ClassFunc:       lowerFirst(ident) + "Class",
		IncludesPrivate: class.IncludesPrivate,
		Members:         members,
	}
}

func (e *Emitter) renderClass(data classData) string {
	var buf bytes.Buffer

	e.registry.WriteHeader(&buf, data)
	e.registry.WriteMockStruct(&buf, data)

	// Accessor names may not collide with the identifiers promoted from the
	// embedded composite, or the binding stops compiling.
	taken := map[string]bool{}
	for _, name := range reservedMockIdents {
		taken[name] = true
	}

	for _, member := range data.Members {
		proxyType, getter := proxyBinding(member.Kind)

		e.registry.WriteAccessor(&buf, accessorData{
			MockName:     data.MockName,
			AccessorName: uniqueIdent(member.Name, taken),
			MemberName:   member.Name,
			ProxyType:    proxyType,
			Getter:       getter,
			Signature:    member.Name + member.Signature(),
		})
	}

	e.registry.WriteClassFunc(&buf, data)

	return buf.String()
}

// proxyBinding maps a member kind onto its runtime proxy type and composite
// getter.
func proxyBinding(kind descriptor.MemberKind) (proxyType, getter string) {
	switch kind {
	case descriptor.KindAsyncMethod:
		return "mock.AsyncMethodProxy", "Async"
	case descriptor.KindProperty:
		return "mock.PropertyProxy", "Property"
	case descriptor.KindNestedAttribute:
		return "mock.CompositeProxy", "Attr"
	default:
		return "mock.MethodProxy", "Method"
	}
}

func kindIdent(kind descriptor.MemberKind) string {
	switch kind {
	case descriptor.KindAsyncMethod:
		return "KindAsyncMethod"
	case descriptor.KindProperty:
		return "KindProperty"
	case descriptor.KindClassMethod:
		return "KindClassMethod"
	case descriptor.KindStaticMethod:
		return "KindStaticMethod"
	case descriptor.KindNestedAttribute:
		return "KindNestedAttribute"
	default:
		return "KindMethod"
	}
}

// uniqueIdent disambiguates classes that share a bare name across packages.
// Suffixes are assigned in emit order, which is qualified-name order, so
// reruns are stable.
func uniqueIdent(name string, taken map[string]bool) string {
	candidate := name
	for suffix := 2; taken[candidate]; suffix++ {
		candidate = fmt.Sprintf("%s%d", name, suffix)
	}

	taken[candidate] = true

	return candidate
}

func lowerFirst(name string) string {
	if name == "" {
		return name
	}

	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])

	return string(runes)
}

func toSnake(name string) string {
	var builder strings.Builder

	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				builder.WriteByte('_')
			}

			builder.WriteRune(unicode.ToLower(r))

			continue
		}

		builder.WriteRune(r)
	}

	return builder.String()
}
