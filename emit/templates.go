package emit

import (
	"bytes"
	"fmt"
	"text/template"
)

// Types - Public

// TemplateRegistry holds all parsed text templates for stub generation.
// Create a registry using NewTemplateRegistry() to initialize all templates.
type TemplateRegistry struct {
	headerTmpl     *template.Template
	mockStructTmpl *template.Template
	accessorTmpl   *template.Template
	classFuncTmpl  *template.Template
	manifestTmpl   *template.Template
}

// Functions - Public

// NewTemplateRegistry creates and initializes a new template registry with
// all templates parsed. Templates are hardcoded constants, so parsing cannot
// fail at runtime.
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{}

	templates := []struct {
		target  **template.Template
		name    string
		content string
	}{
		{&registry.headerTmpl, "header", tmplHeader},
		{&registry.mockStructTmpl, "mockStruct", tmplMockStruct},
		{&registry.accessorTmpl, "accessor", tmplAccessor},
		{&registry.classFuncTmpl, "classFunc", tmplClassFunc},
		{&registry.manifestTmpl, "manifest", tmplManifest},
	}

	for _, def := range templates {
		*def.target = template.Must(template.New(def.name).Parse(def.content))
	}

	return registry
}

// WriteHeader writes the generated file header and imports.
func (r *TemplateRegistry) WriteHeader(buf *bytes.Buffer, data any) {
	err := r.headerTmpl.Execute(buf, data)
	if err != nil {
		panic(fmt.Sprintf("failed to execute header template: %v", err))
	}
}

// WriteMockStruct writes the mock wrapper struct and its constructor.
func (r *TemplateRegistry) WriteMockStruct(buf *bytes.Buffer, data any) {
	err := r.mockStructTmpl.Execute(buf, data)
	if err != nil {
		panic(fmt.Sprintf("failed to execute mockStruct template: %v", err))
	}
}

// WriteAccessor writes one typed member accessor.
func (r *TemplateRegistry) WriteAccessor(buf *bytes.Buffer, data any) {
	err := r.accessorTmpl.Execute(buf, data)
	if err != nil {
		panic(fmt.Sprintf("failed to execute accessor template: %v", err))
	}
}

// WriteClassFunc writes the descriptor constructor function.
func (r *TemplateRegistry) WriteClassFunc(buf *bytes.Buffer, data any) {
	err := r.classFuncTmpl.Execute(buf, data)
	if err != nil {
		panic(fmt.Sprintf("failed to execute classFunc template: %v", err))
	}
}

// WriteManifest writes the manifest file indexing every generated binding.
func (r *TemplateRegistry) WriteManifest(buf *bytes.Buffer, data any) {
	err := r.manifestTmpl.Execute(buf, data)
	if err != nil {
		panic(fmt.Sprintf("failed to execute manifest template: %v", err))
	}
}

// Consts.

const tmplHeader = `// Code generated by typedmock; DO NOT EDIT.

package {{.Package}}

import (
	"github.com/tmdgusya/typedmock/descriptor"
	"github.com/tmdgusya/typedmock/mock"
)
`

const tmplMockStruct = `
// {{.MockName}} mocks {{.QualifiedName}}.
type {{.MockName}} struct {
	*mock.CompositeProxy
}

// New{{.MockName}} builds a mock for {{.QualifiedName}}, wired to resolve
// nested attribute descriptors from this package's bindings.
func New{{.MockName}}(t mock.TestReporter, opts ...mock.CompositeOption) *{{.MockName}} {
	opts = append([]mock.CompositeOption{mock.WithDescriber(Describe)}, opts...)

	return &{{.MockName}}{CompositeProxy: mock.NewCompositeProxy(t, {{.ClassFunc}}(), opts...)}
}
`

const tmplAccessor = `
// {{.AccessorName}} returns the proxy for {{.Signature}}.
func (m *{{.MockName}}) {{.AccessorName}}() *{{.ProxyType}} {
	return m.CompositeProxy.{{.Getter}}({{printf "%q" .MemberName}})
}
`

const tmplClassFunc = `
func {{.ClassFunc}}() *descriptor.Class {
	return &descriptor.Class{
		QualifiedName: {{printf "%q" .QualifiedName}},
		{{- if .IncludesPrivate}}
		IncludesPrivate: true,
		{{- end}}
		Members: []descriptor.Member{
			{{- range .Members}}
			{
				Name: {{printf "%q" .Name}},
				Kind: descriptor.{{.KindIdent}},
				{{- if .Params}}
				Params: []descriptor.Param{
					{{- range .Params}}
					{Name: {{printf "%q" .Name}}, Type: {{printf "%q" .Type}}},
					{{- end}}
				},
				{{- end}}
				{{- if .Return}}
				Return: {{printf "%q" .Return}},
				{{- end}}
				{{- if .Class}}
				Class: {{printf "%q" .Class}},
				{{- end}}
			},
			{{- end}}
		},
	}
}
`

const tmplManifest = `// Code generated by typedmock; DO NOT EDIT.

package {{.Package}}

import (
	"fmt"

	"github.com/tmdgusya/typedmock/descriptor"
)

// Bindings maps qualified class names to their generated descriptor
// constructors.
var Bindings = map[string]func() *descriptor.Class{
	{{- range .Entries}}
	{{printf "%q" .QualifiedName}}: {{.ClassFunc}},
	{{- end}}
}

// Describe resolves a generated class descriptor by qualified name.
func Describe(qualifiedName string) (*descriptor.Class, error) {
	classFunc, ok := Bindings[qualifiedName]
	if !ok {
		return nil, fmt.Errorf("no generated descriptor for %s", qualifiedName)
	}

	return classFunc(), nil
}
`
