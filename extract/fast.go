package extract

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/tmdgusya/typedmock/descriptor"
	"github.com/tmdgusya/typedmock/inventory"
)

// Vars.
var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Types - Public

// FastBackend extracts member descriptors using in-process reflection only.
// It never loads source, so it is fast, but it cannot recover parameter names
// (they are synthesized as arg0, arg1, ...) and it widens every type it
// cannot trivially print to "any". Entries discovered by source scanning have
// no reflect type and fail with ErrImport.
type FastBackend struct{}

// Functions - Public

// Name returns the configuration name of this backend.
func (FastBackend) Name() string { return "fast" }

// Extract builds a class descriptor from the entry's reflect type.
func (FastBackend) Extract(
	_ context.Context,
	inv *inventory.Inventory,
	entry inventory.Entry,
	includePrivate bool,
) (*descriptor.Class, error) {
	rt := entry.Type
	if rt == nil {
		return nil, fmt.Errorf("%w: %s is not registered in-process", ErrImport, entry.QualifiedName)
	}

	var members []descriptor.Member

	if rt.Kind() == reflect.Interface {
		members = interfaceMembers(rt)
	} else {
		members = concreteMembers(rt, inv, includePrivate)
	}

	return &descriptor.Class{
		QualifiedName:   entry.QualifiedName,
		Members:         descriptor.Dedupe(members),
		IncludesPrivate: includePrivate,
	}, nil
}

// Functions - Private

// interfaceMembers lists the methods of an interface type. Interface method
// signatures carry no receiver, so parameters start at index 0.
func interfaceMembers(rt reflect.Type) []descriptor.Member {
	members := make([]descriptor.Member, 0, rt.NumMethod())

	for i := range rt.NumMethod() {
		method := rt.Method(i)
		members = append(members, methodMember(method.Name, method.Type, 0, false))
	}

	return members
}

// concreteMembers lists methods and fields of a struct (or other named) type.
// The pointer method set is the full set; methods also present on the value
// type have value receivers and are classified as classmethods.
func concreteMembers(
	rt reflect.Type, inv *inventory.Inventory, includePrivate bool,
) []descriptor.Member {
	valueReceiver := make(map[string]bool, rt.NumMethod())
	for i := range rt.NumMethod() {
		valueReceiver[rt.Method(i).Name] = true
	}

	ptr := reflect.PointerTo(rt)
	members := make([]descriptor.Member, 0, ptr.NumMethod())

	for i := range ptr.NumMethod() {
		method := ptr.Method(i)
		members = append(members, methodMember(method.Name, method.Type, 1, valueReceiver[method.Name]))
	}

	if rt.Kind() == reflect.Struct {
		for _, field := range reflect.VisibleFields(rt) {
			if field.Anonymous {
				continue
			}

			if !field.IsExported() && !includePrivate {
				continue
			}

			members = append(members, fieldMember(field, inv))
		}
	}

	return members
}

// methodMember classifies one method. A context.Context first parameter marks
// the method asynchronous regardless of receiver kind.
func methodMember(name string, funcType reflect.Type, skip int, valueReceiver bool) descriptor.Member {
	kind := descriptor.KindMethod
	if valueReceiver {
		kind = descriptor.KindClassMethod
	}

	if funcType.NumIn() > skip && funcType.In(skip) == contextType {
		kind = descriptor.KindAsyncMethod
	}

	return descriptor.Member{
		Name:   name,
		Kind:   kind,
		Params: widenParams(funcType, skip),
		Return: widenResults(funcType),
	}
}

// fieldMember classifies one struct field: func-typed fields are static
// methods, fields of a describable named struct are nested attributes, and
// everything else is a property.
func fieldMember(field reflect.StructField, inv *inventory.Inventory) descriptor.Member {
	fieldType := field.Type

	if fieldType.Kind() == reflect.Func {
		return descriptor.Member{
			Name:   field.Name,
			Kind:   descriptor.KindStaticMethod,
			Params: widenParams(fieldType, 0),
			Return: widenResults(fieldType),
		}
	}

	base := fieldType
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	if base.Kind() == reflect.Struct && base.Name() != "" && inv.Has(inventory.QualifiedNameOf(base)) {
		return descriptor.Member{
			Name:   field.Name,
			Kind:   descriptor.KindNestedAttribute,
			Return: widenType(fieldType),
			Class:  inventory.QualifiedNameOf(base),
		}
	}

	return descriptor.Member{
		Name:   field.Name,
		Kind:   descriptor.KindProperty,
		Return: widenType(fieldType),
	}
}

// widenParams synthesizes parameter descriptors, skipping the receiver when
// present. Reflection does not preserve parameter names.
func widenParams(funcType reflect.Type, skip int) []descriptor.Param {
	params := make([]descriptor.Param, 0, funcType.NumIn()-skip)

	for i := skip; i < funcType.NumIn(); i++ {
		params = append(params, descriptor.Param{
			Name: fmt.Sprintf("arg%d", i-skip),
			Type: widenType(funcType.In(i)),
		})
	}

	return params
}

// widenResults renders the result list, widened member-wise.
func widenResults(funcType reflect.Type) string {
	switch funcType.NumOut() {
	case 0:
		return ""
	case 1:
		return widenType(funcType.Out(0))
	default:
		parts := make([]string, 0, funcType.NumOut())
		for i := range funcType.NumOut() {
			parts = append(parts, widenType(funcType.Out(i)))
		}

		return "(" + strings.Join(parts, ", ") + ")"
	}
}

// widenType prints a type when that is trivially safe, and widens everything
// else to "any". Only predeclared types print unambiguously without import
// information.
func widenType(rt reflect.Type) string {
	if rt == contextType {
		return "context.Context"
	}

	if rt == errorType {
		return "error"
	}

	if rt.PkgPath() == "" && rt.Name() != "" {
		return rt.Name()
	}

	return "any"
}
