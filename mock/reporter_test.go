package mock_test

import (
	"fmt"

	"github.com/tmdgusya/typedmock/descriptor"
)

// recordingReporter captures failures instead of stopping the test, so the
// failure paths of the assertion helpers can themselves be asserted on.
type recordingReporter struct {
	failed  bool
	message string
}

func (r *recordingReporter) Helper() {}

func (r *recordingReporter) Fatalf(format string, args ...any) {
	r.failed = true
	r.message = fmt.Sprintf(format, args...)
}

func serviceClass() *descriptor.Class {
	return &descriptor.Class{
		QualifiedName: "example.com/app.Service",
		Members: []descriptor.Member{
			{
				Name:   "Fetch",
				Kind:   descriptor.KindMethod,
				Params: []descriptor.Param{{Name: "id", Type: "int"}},
				Return: "(string, error)",
			},
			{
				Name:   "Stream",
				Kind:   descriptor.KindAsyncMethod,
				Params: []descriptor.Param{{Name: "ctx", Type: "context.Context"}},
				Return: "error",
			},
			{Name: "Status", Kind: descriptor.KindProperty, Return: "string"},
			{
				Name:  "Conn",
				Kind:  descriptor.KindNestedAttribute,
				Class: "example.com/app.Connection",
			},
		},
	}
}

func connectionClass() *descriptor.Class {
	return &descriptor.Class{
		QualifiedName: "example.com/app.Connection",
		Members: []descriptor.Member{
			{Name: "Open", Kind: descriptor.KindMethod},
			{Name: "State", Kind: descriptor.KindProperty, Return: "string"},
		},
	}
}
