package inventory_test

import (
	"reflect"
	"sort"
	"testing"

	"github.com/tmdgusya/typedmock/inventory"
)

type widget struct {
	Label string
}

type gadget struct {
	Count int
}

func TestRegister_ByValueAndPointer(t *testing.T) {
	t.Parallel()

	inv := inventory.New()

	entry, err := inv.Register(widget{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := inventory.QualifiedNameOf(reflect.TypeOf(widget{}))
	if entry.QualifiedName != want {
		t.Errorf("expected qualified name %q, got %q", want, entry.QualifiedName)
	}

	// Registering a pointer registers the pointed-to type.
	pointerEntry, err := inv.Register(&gadget{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pointerEntry.Name != "gadget" {
		t.Errorf("expected name %q, got %q", "gadget", pointerEntry.Name)
	}

	if !inv.Has(entry.QualifiedName) || !inv.Has(pointerEntry.QualifiedName) {
		t.Error("expected both registered types to be present")
	}
}

func TestRegisterType_RejectsUnnamedTypes(t *testing.T) {
	t.Parallel()

	inv := inventory.New()

	_, err := inv.RegisterType(reflect.TypeOf(struct{ X int }{}))
	if err == nil {
		t.Fatal("expected an error for an unnamed type")
	}
}

func TestLookup_MissingName(t *testing.T) {
	t.Parallel()

	inv := inventory.New()

	if _, ok := inv.Lookup("example.com/pkg.Nope"); ok {
		t.Error("expected lookup of an unregistered name to fail")
	}
}

func TestEntries_SortedByQualifiedName(t *testing.T) {
	t.Parallel()

	inv := inventory.New()

	if _, err := inv.Register(widget{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := inv.Register(gadget{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := inv.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	names := []string{entries[0].QualifiedName, entries[1].QualifiedName}
	if !sort.StringsAreSorted(names) {
		t.Errorf("expected sorted entries, got %v", names)
	}
}

func TestRegister_IsIdempotent(t *testing.T) {
	t.Parallel()

	inv := inventory.New()

	for range 3 {
		if _, err := inv.Register(widget{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := len(inv.Entries()); got != 1 {
		t.Errorf("expected 1 entry after repeated registration, got %d", got)
	}
}
