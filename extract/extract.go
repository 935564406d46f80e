// Package extract turns classes from an inventory into descriptor models via
// one of two interchangeable backends. Both backends produce the same member
// names and kinds; they differ only in how faithfully parameter names and
// types are recovered.
package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmdgusya/typedmock/descriptor"
	"github.com/tmdgusya/typedmock/inventory"
)

// Vars.
var (
	// ErrImport reports a class that cannot be introspected at all.
	ErrImport = errors.New("class cannot be introspected")
	// ErrBackend reports an accurate-backend failure for one class.
	ErrBackend = errors.New("extraction backend failed")

	errUnknownBackend = errors.New("unknown extraction backend")
)

// Interfaces - Public

// Backend is an interchangeable signature-extraction strategy.
type Backend interface {
	Name() string
	Extract(
		ctx context.Context,
		inv *inventory.Inventory,
		entry inventory.Entry,
		includePrivate bool,
	) (*descriptor.Class, error)
}

// Functions - Public

// ByName returns the backend for a configuration value. The empty string
// selects the fast backend.
func ByName(name string) (Backend, error) {
	switch name {
	case "", "fast":
		return FastBackend{}, nil
	case "accurate":
		return NewAccurateBackend(NewSourceLoader()), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownBackend, name)
	}
}

// Functions - Private

// isPrivateName reports whether a member name is unexported.
func isPrivateName(name string) bool {
	if name == "" {
		return true
	}

	first := name[0]

	return first == '_' || (first >= 'a' && first <= 'z')
}
