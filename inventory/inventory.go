// Package inventory tracks the set of types that may be described, proxied,
// or generated against. An Inventory is an explicit per-run value: callers
// build one, thread it through resolution and extraction, and discard it.
// Nothing here is process-global, so repeated runs cannot see stale state.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"go/types"
	"reflect"
	"sort"

	"golang.org/x/tools/go/packages"
)

// Vars.
var (
	errUnnamedType = errors.New("type has no package-qualified name")
	errLoadFailed  = errors.New("package load reported errors")
)

// Types - Public

// Entry is one mockable type known to the inventory. Type is nil for entries
// discovered by scanning source; only registered entries can be introspected
// in-process.
type Entry struct {
	QualifiedName string
	PkgPath       string
	Name          string
	Type          reflect.Type
}

// Inventory is the set of known types, keyed by qualified name.
type Inventory struct {
	entries map[string]Entry
}

// Functions - Public

// New returns an empty inventory.
func New() *Inventory {
	return &Inventory{entries: make(map[string]Entry)}
}

// QualifiedNameOf returns the inventory key for a reflect type, in the form
// "import/path.TypeName".
func QualifiedNameOf(rt reflect.Type) string {
	return rt.PkgPath() + "." + rt.Name()
}

// Register adds the dynamic type of sample to the inventory and returns its
// entry. Pointer samples are unwrapped to their element type.
func (inv *Inventory) Register(sample any) (Entry, error) {
	rt := reflect.TypeOf(sample)
	if rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	return inv.RegisterType(rt)
}

// RegisterType adds a reflect type to the inventory. The type must be named
// and declared in a package.
func (inv *Inventory) RegisterType(rt reflect.Type) (Entry, error) {
	if rt == nil || rt.Name() == "" || rt.PkgPath() == "" {
		return Entry{}, fmt.Errorf("%w: %v", errUnnamedType, rt)
	}

	entry := Entry{
		QualifiedName: QualifiedNameOf(rt),
		PkgPath:       rt.PkgPath(),
		Name:          rt.Name(),
		Type:          rt,
	}
	inv.entries[entry.QualifiedName] = entry

	return entry, nil
}

// Scan loads the given package patterns from source and registers every named
// struct and interface type they declare. Scanned entries have no reflect
// type; they are reachable by the accurate extraction backend only.
func (inv *Inventory) Scan(ctx context.Context, patterns ...string) error {
	cfg := &packages.Config{
		Context: ctx,
		Mode:    packages.NeedName | packages.NeedTypes,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return fmt.Errorf("failed to load packages %v: %w", patterns, err)
	}

	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return fmt.Errorf("%w: %s: %v", errLoadFailed, pkg.PkgPath, pkg.Errors[0])
		}

		inv.addScanned(pkg)
	}

	return nil
}

// Lookup returns the entry for a qualified name and whether it exists.
func (inv *Inventory) Lookup(qualifiedName string) (Entry, bool) {
	entry, ok := inv.entries[qualifiedName]
	return entry, ok
}

// Has reports whether the qualified name is known.
func (inv *Inventory) Has(qualifiedName string) bool {
	_, ok := inv.entries[qualifiedName]
	return ok
}

// Entries returns all entries sorted by qualified name.
func (inv *Inventory) Entries() []Entry {
	out := make([]Entry, 0, len(inv.entries))
	for _, entry := range inv.entries {
		out = append(out, entry)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].QualifiedName < out[j].QualifiedName })

	return out
}

// Functions - Private

// addScanned registers the named struct and interface types of one loaded
// package.
func (inv *Inventory) addScanned(pkg *packages.Package) {
	scope := pkg.Types.Scope()

	for _, name := range scope.Names() {
		typeName, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || typeName.IsAlias() {
			continue
		}

		switch typeName.Type().Underlying().(type) {
		case *types.Struct, *types.Interface:
		default:
			continue
		}

		qualified := pkg.PkgPath + "." + name
		inv.entries[qualified] = Entry{
			QualifiedName: qualified,
			PkgPath:       pkg.PkgPath,
			Name:          name,
		}
	}
}
