package extract

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dave/dst"

	"github.com/tmdgusya/typedmock/descriptor"
	"github.com/tmdgusya/typedmock/inventory"
)

// Consts.
const defaultAccurateTimeout = 5 * time.Second

// Interfaces - Public

// PackageLoader loads a package's source as DST files.
type PackageLoader interface {
	Load(pkgPath string) ([]*dst.File, error)
}

// Types - Public

// AccurateBackend extracts member descriptors by parsing the target's package
// source. It is much slower than the fast backend but preserves real
// parameter names and declared type strings. Loading runs under a timeout; on
// timeout or load failure the class fails with ErrBackend — it is never
// silently downgraded to the fast backend's result.
type AccurateBackend struct {
	Loader  PackageLoader
	Timeout time.Duration
}

// Functions - Public

// NewAccurateBackend creates an accurate backend with the default timeout.
func NewAccurateBackend(loader PackageLoader) *AccurateBackend {
	return &AccurateBackend{Loader: loader, Timeout: defaultAccurateTimeout}
}

// Name returns the configuration name of this backend.
func (b *AccurateBackend) Name() string { return "accurate" }

// Extract parses the entry's package and builds a class descriptor from its
// declarations.
func (b *AccurateBackend) Extract(
	ctx context.Context,
	inv *inventory.Inventory,
	entry inventory.Entry,
	includePrivate bool,
) (*descriptor.Class, error) {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = defaultAccurateTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type loaded struct {
		files []*dst.File
		err   error
	}

	resultChan := make(chan loaded, 1)

	go func() {
		files, err := b.Loader.Load(entry.PkgPath)
		resultChan <- loaded{files: files, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: loading %s: %v", ErrBackend, entry.PkgPath, ctx.Err())
	case res := <-resultChan:
		if res.err != nil {
			return nil, fmt.Errorf("%w: loading %s: %v", ErrBackend, entry.PkgPath, res.err)
		}

		return classFromSource(res.files, inv, entry, includePrivate)
	}
}

// Functions - Private

// classFromSource builds the descriptor for one declared type.
func classFromSource(
	files []*dst.File, inv *inventory.Inventory, entry inventory.Entry, includePrivate bool,
) (*descriptor.Class, error) {
	if findTypeSpec(files, entry.Name) == nil {
		return nil, fmt.Errorf("%w: %s not declared in package source", ErrImport, entry.QualifiedName)
	}

	scope := &sourceScope{
		files:   files,
		inv:     inv,
		pkgPath: entry.PkgPath,
		imports: importsMap(files),
	}
	members := scope.typeMembers(entry.Name, includePrivate, map[string]bool{})

	return &descriptor.Class{
		QualifiedName:   entry.QualifiedName,
		Members:         descriptor.Dedupe(members),
		IncludesPrivate: includePrivate,
	}, nil
}

// sourceScope carries what member collection needs about the package being
// analyzed.
type sourceScope struct {
	files   []*dst.File
	inv     *inventory.Inventory
	pkgPath string
	imports map[string]string
}

// typeMembers collects the members of a named type, derived-first so that
// Dedupe keeps overrides. Embedded types play the role of base classes and
// are walked recursively within the package.
func (s *sourceScope) typeMembers(
	typeName string, includePrivate bool, visited map[string]bool,
) []descriptor.Member {
	if visited[typeName] {
		return nil
	}

	visited[typeName] = true

	spec := findTypeSpec(s.files, typeName)
	if spec == nil {
		return nil
	}

	var members []descriptor.Member

	switch typeExpr := spec.Type.(type) {
	case *dst.InterfaceType:
		members = s.interfaceTypeMembers(typeExpr, includePrivate, visited)
	case *dst.StructType:
		members = s.methodDecls(typeName, includePrivate)
		members = append(members, s.structFieldMembers(typeExpr, includePrivate, visited)...)
	default:
		members = s.methodDecls(typeName, includePrivate)
	}

	return members
}

// interfaceTypeMembers collects interface methods and walks embedded
// interfaces declared in the same package.
func (s *sourceScope) interfaceTypeMembers(
	iface *dst.InterfaceType, includePrivate bool, visited map[string]bool,
) []descriptor.Member {
	var members []descriptor.Member

	for _, field := range iface.Methods.List {
		if len(field.Names) == 0 {
			if ident, ok := field.Type.(*dst.Ident); ok {
				members = append(members, s.typeMembers(ident.Name, includePrivate, visited)...)
			}

			continue
		}

		funcType, ok := field.Type.(*dst.FuncType)
		if !ok {
			continue
		}

		for _, name := range field.Names {
			if isPrivateName(name.Name) && !includePrivate {
				continue
			}

			members = append(members, methodFromFuncType(name.Name, funcType, false))
		}
	}

	return members
}

// structFieldMembers classifies a struct's declared fields and walks embedded
// structs.
func (s *sourceScope) structFieldMembers(
	structType *dst.StructType, includePrivate bool, visited map[string]bool,
) []descriptor.Member {
	var members []descriptor.Member

	for _, field := range structType.Fields.List {
		if len(field.Names) == 0 {
			if ident, ok := baseIdent(field.Type); ok {
				members = append(members, s.typeMembers(ident, includePrivate, visited)...)
			}

			continue
		}

		for _, name := range field.Names {
			if isPrivateName(name.Name) && !includePrivate {
				continue
			}

			members = append(members, s.fieldMember(name.Name, field.Type))
		}
	}

	return members
}

// fieldMember classifies one named struct field, mirroring the fast backend's
// rules: func-typed fields are static methods, fields of a describable named
// type are nested attributes, everything else is a property.
func (s *sourceScope) fieldMember(name string, typeExpr dst.Expr) descriptor.Member {
	if funcType, ok := typeExpr.(*dst.FuncType); ok {
		return descriptor.Member{
			Name:   name,
			Kind:   descriptor.KindStaticMethod,
			Params: paramsFrom(funcType),
			Return: resultsFrom(funcType),
		}
	}

	if qualified, ok := s.qualifiedTypeName(typeExpr); ok && s.inv.Has(qualified) {
		return descriptor.Member{
			Name:   name,
			Kind:   descriptor.KindNestedAttribute,
			Return: typeString(typeExpr),
			Class:  qualified,
		}
	}

	return descriptor.Member{
		Name:   name,
		Kind:   descriptor.KindProperty,
		Return: typeString(typeExpr),
	}
}

// qualifiedTypeName resolves a field type expression to an inventory key,
// using the package's imports for selector-qualified names.
func (s *sourceScope) qualifiedTypeName(typeExpr dst.Expr) (string, bool) {
	if star, ok := typeExpr.(*dst.StarExpr); ok {
		typeExpr = star.X
	}

	switch t := typeExpr.(type) {
	case *dst.Ident:
		return s.pkgPath + "." + t.Name, true
	case *dst.SelectorExpr:
		qualifier, ok := t.X.(*dst.Ident)
		if !ok {
			return "", false
		}

		path, ok := s.imports[qualifier.Name]
		if !ok {
			return "", false
		}

		return path + "." + t.Sel.Name, true
	default:
		return "", false
	}
}

// methodDecls collects receiver methods declared for a type across the
// package's files.
func (s *sourceScope) methodDecls(typeName string, includePrivate bool) []descriptor.Member {
	var members []descriptor.Member

	for _, file := range s.files {
		for _, decl := range file.Decls {
			funcDecl, ok := decl.(*dst.FuncDecl)
			if !ok || funcDecl.Recv == nil || len(funcDecl.Recv.List) == 0 {
				continue
			}

			pointerReceiver, matches := matchesReceiverType(funcDecl.Recv.List[0].Type, typeName)
			if !matches {
				continue
			}

			if isPrivateName(funcDecl.Name.Name) && !includePrivate {
				continue
			}

			members = append(members, methodFromFuncType(funcDecl.Name.Name, funcDecl.Type, !pointerReceiver))
		}
	}

	return members
}

// methodFromFuncType classifies one method signature. A context.Context first
// parameter marks the method asynchronous; a value receiver makes it a
// classmethod.
func methodFromFuncType(name string, funcType *dst.FuncType, valueReceiver bool) descriptor.Member {
	params := paramsFrom(funcType)

	kind := descriptor.KindMethod
	if valueReceiver {
		kind = descriptor.KindClassMethod
	}

	if len(params) > 0 && params[0].Type == "context.Context" {
		kind = descriptor.KindAsyncMethod
	}

	return descriptor.Member{
		Name:   name,
		Kind:   kind,
		Params: params,
		Return: resultsFrom(funcType),
	}
}

// paramsFrom renders a parameter list with its declared names. Unnamed
// parameters are synthesized as arg0, arg1, ...
func paramsFrom(funcType *dst.FuncType) []descriptor.Param {
	if funcType.Params == nil {
		return nil
	}

	var params []descriptor.Param

	for _, field := range funcType.Params.List {
		paramType := typeString(field.Type)

		if len(field.Names) == 0 {
			params = append(params, descriptor.Param{
				Name: fmt.Sprintf("arg%d", len(params)),
				Type: paramType,
			})

			continue
		}

		for _, name := range field.Names {
			params = append(params, descriptor.Param{Name: name.Name, Type: paramType})
		}
	}

	return params
}

// resultsFrom renders the declared result list.
func resultsFrom(funcType *dst.FuncType) string {
	if funcType.Results == nil || len(funcType.Results.List) == 0 {
		return ""
	}

	var parts []string

	for _, field := range funcType.Results.List {
		resultType := typeString(field.Type)

		count := len(field.Names)
		if count == 0 {
			count = 1
		}

		for range count {
			parts = append(parts, resultType)
		}
	}

	if len(parts) == 1 {
		return parts[0]
	}

	return "(" + strings.Join(parts, ", ") + ")"
}

// typeString renders a type expression as declared in source.
func typeString(expr dst.Expr) string {
	switch t := expr.(type) {
	case *dst.Ident:
		return t.Name
	case *dst.SelectorExpr:
		return typeString(t.X) + "." + t.Sel.Name
	case *dst.StarExpr:
		return "*" + typeString(t.X)
	case *dst.ArrayType:
		return "[]" + typeString(t.Elt)
	case *dst.MapType:
		return "map[" + typeString(t.Key) + "]" + typeString(t.Value)
	case *dst.Ellipsis:
		return "..." + typeString(t.Elt)
	case *dst.ChanType:
		return "chan " + typeString(t.Value)
	case *dst.FuncType:
		return funcTypeString(t)
	case *dst.InterfaceType:
		return "any"
	default:
		return "any"
	}
}

// funcTypeString renders a func type expression.
func funcTypeString(funcType *dst.FuncType) string {
	params := paramsFrom(funcType)
	parts := make([]string, 0, len(params))

	for _, p := range params {
		parts = append(parts, p.Type)
	}

	rendered := "func(" + strings.Join(parts, ", ") + ")"
	if results := resultsFrom(funcType); results != "" {
		rendered += " " + results
	}

	return rendered
}

// findTypeSpec locates a type declaration by name across the package's files.
func findTypeSpec(files []*dst.File, typeName string) *dst.TypeSpec {
	for _, file := range files {
		for _, decl := range file.Decls {
			genDecl, ok := decl.(*dst.GenDecl)
			if !ok {
				continue
			}

			for _, spec := range genDecl.Specs {
				typeSpec, ok := spec.(*dst.TypeSpec)
				if ok && typeSpec.Name.Name == typeName {
					return typeSpec
				}
			}
		}
	}

	return nil
}

// matchesReceiverType checks a receiver type expression against a type name,
// handling value and pointer receivers. Returns (pointer, matches).
func matchesReceiverType(expr dst.Expr, typeName string) (bool, bool) {
	switch recv := expr.(type) {
	case *dst.Ident:
		return false, recv.Name == typeName
	case *dst.StarExpr:
		if ident, ok := recv.X.(*dst.Ident); ok {
			return true, ident.Name == typeName
		}
	}

	return false, false
}

// baseIdent unwraps an embedded field's type expression to its local name.
func baseIdent(expr dst.Expr) (string, bool) {
	if star, ok := expr.(*dst.StarExpr); ok {
		expr = star.X
	}

	if ident, ok := expr.(*dst.Ident); ok {
		return ident.Name, true
	}

	return "", false
}

// importsMap builds a qualifier-to-import-path map across the package's
// files, honoring aliases and falling back to the last path segment.
func importsMap(files []*dst.File) map[string]string {
	imports := make(map[string]string)

	for _, file := range files {
		for _, imp := range file.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			if err != nil {
				continue
			}

			qualifier := path
			if idx := strings.LastIndex(path, "/"); idx >= 0 {
				qualifier = path[idx+1:]
			}

			if imp.Name != nil && imp.Name.Name != "" {
				qualifier = imp.Name.Name
			}

			imports[qualifier] = path
		}
	}

	return imports
}
