package mock

import (
	"fmt"
	"reflect"

	"github.com/tmdgusya/typedmock/descriptor"
)

// Functions - Public

// NewSpy builds a composite proxy whose members forward to a real target
// while recording every interaction. Method and async members call the
// target's methods of the same name; property members start from the
// target's field value and write back to it when the target is addressable.
// Assertions work exactly as on a plain mock, and individual members can
// still be overridden afterwards with SetCall or SetError. Nested attribute
// members stay plain mocks.
func NewSpy(t TestReporter, class *descriptor.Class, target any, opts ...CompositeOption) *CompositeProxy {
	t.Helper()

	proxy := NewCompositeProxy(t, class, opts...)
	value := reflect.ValueOf(target)

	for _, member := range class.Members {
		switch member.Kind {
		case descriptor.KindMethod, descriptor.KindClassMethod, descriptor.KindAsyncMethod:
			method := value.MethodByName(member.Name)
			if !method.IsValid() {
				t.Fatalf("spy target %T has no method %s", target, member.Name)

				continue
			}

			if member.Kind == descriptor.KindAsyncMethod {
				proxy.Async(member.Name).SetCall(forwardTo(method))
			} else {
				proxy.Method(member.Name).SetCall(forwardTo(method))
			}
		case descriptor.KindStaticMethod:
			if field, ok := spyField(value, member.Name); ok && field.Kind() == reflect.Func && !field.IsNil() {
				proxy.Method(member.Name).SetCall(forwardTo(field))
			}
		case descriptor.KindProperty:
			field, ok := spyField(value, member.Name)
			if !ok {
				continue
			}

			prop := proxy.Property(member.Name)
			prop.SetValue(field.Interface())

			if field.CanSet() {
				prop.OnSet(writeBack(field, member.Name))
			}
		case descriptor.KindNestedAttribute:
		}
	}

	return proxy
}

// Functions - Private

// forwardTo converts recorded arguments into a reflective call on the real
// target and maps the results back onto the effect's (value, error) shape.
func forwardTo(method reflect.Value) CallableEffect {
	methodType := method.Type()

	return func(args ...any) (any, error) {
		in := make([]reflect.Value, len(args))
		for i, arg := range args {
			if arg == nil {
				in[i] = reflect.Zero(paramType(methodType, i))

				continue
			}

			in[i] = reflect.ValueOf(arg)
		}

		return splitResults(method.Call(in))
	}
}

// paramType resolves the declared type of the i-th argument, unwrapping the
// variadic slice when needed.
func paramType(methodType reflect.Type, i int) reflect.Type {
	last := methodType.NumIn() - 1
	if methodType.IsVariadic() && i >= last {
		return methodType.In(last).Elem()
	}

	return methodType.In(i)
}

// splitResults peels a trailing error off the call results. One remaining
// value passes through as-is, several collapse into a []any.
func splitResults(out []reflect.Value) (any, error) {
	var err error

	if len(out) > 0 {
		if last := out[len(out)-1]; last.Type().Implements(errInterfaceType) {
			if !last.IsNil() {
				err, _ = last.Interface().(error)
			}

			out = out[:len(out)-1]
		}
	}

	switch len(out) {
	case 0:
		return nil, err
	case 1:
		return out[0].Interface(), err
	default:
		values := make([]any, len(out))
		for i, result := range out {
			values[i] = result.Interface()
		}

		return values, err
	}
}

// spyField resolves an exported field on the target, dereferencing one
// pointer level.
func spyField(value reflect.Value, name string) (reflect.Value, bool) {
	structValue := value
	if structValue.Kind() == reflect.Pointer {
		structValue = structValue.Elem()
	}

	if structValue.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}

	field := structValue.FieldByName(name)
	if !field.IsValid() || !field.CanInterface() {
		return reflect.Value{}, false
	}

	return field, true
}

// writeBack mirrors property writes onto the target's field.
func writeBack(field reflect.Value, name string) func(value any) error {
	return func(value any) error {
		if value == nil {
			field.Set(reflect.Zero(field.Type()))

			return nil
		}

		written := reflect.ValueOf(value)
		if !written.Type().AssignableTo(field.Type()) {
			return fmt.Errorf("cannot assign %T to %s", value, name)
		}

		field.Set(written)

		return nil
	}
}

// Vars.
var errInterfaceType = reflect.TypeOf((*error)(nil)).Elem()
