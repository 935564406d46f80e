package resolve_test

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/tmdgusya/typedmock/inventory"
	"github.com/tmdgusya/typedmock/resolve"
)

type Alpha struct{ ID int }

type Beta struct{ ID int }

type hidden struct{ ID int }

func testInventory(t *testing.T) (*inventory.Inventory, string) {
	t.Helper()

	inv := inventory.New()

	for _, sample := range []any{Alpha{}, Beta{}, hidden{}} {
		if _, err := inv.Register(sample); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	return inv, reflect.TypeOf(Alpha{}).PkgPath()
}

func qualifiedNames(entries []inventory.Entry) []string {
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.QualifiedName)
	}

	return names
}

func TestResolve_WildcardSkipsUnexported(t *testing.T) {
	t.Parallel()

	inv, pkgPath := testInventory(t)

	entries, warnings := resolve.Resolve([]string{pkgPath + ".*"}, nil, inv, false)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	got := qualifiedNames(entries)
	want := []string{pkgPath + ".Alpha", pkgPath + ".Beta"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestResolve_IncludePrivate(t *testing.T) {
	t.Parallel()

	inv, pkgPath := testInventory(t)

	entries, _ := resolve.Resolve([]string{pkgPath + ".*"}, nil, inv, true)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %v", qualifiedNames(entries))
	}
}

func TestResolve_ExactName(t *testing.T) {
	t.Parallel()

	inv, pkgPath := testInventory(t)

	entries, warnings := resolve.Resolve([]string{pkgPath + ".Beta"}, nil, inv, false)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	if len(entries) != 1 || entries[0].Name != "Beta" {
		t.Errorf("expected exactly Beta, got %v", qualifiedNames(entries))
	}
}

func TestResolve_ExclusionWins(t *testing.T) {
	t.Parallel()

	inv, pkgPath := testInventory(t)

	entries, _ := resolve.Resolve(
		[]string{pkgPath + ".*"},
		[]string{pkgPath + ".Beta"},
		inv,
		false,
	)

	got := qualifiedNames(entries)
	want := []string{pkgPath + ".Alpha"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestResolve_ZeroMatchWarnings(t *testing.T) {
	t.Parallel()

	inv, pkgPath := testInventory(t)

	entries, warnings := resolve.Resolve(
		[]string{pkgPath + ".Alpha", "example.com/nothing.*"},
		[]string{"example.com/nothing.Gone"},
		inv,
		false,
	)

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %v", qualifiedNames(entries))
	}

	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", warnings)
	}

	if warnings[0].IsExclusion {
		t.Error("expected the first warning to be for a target pattern")
	}

	if !warnings[1].IsExclusion {
		t.Error("expected the second warning to be for an exclusion pattern")
	}
}

func TestResolve_RecursiveWildcard(t *testing.T) {
	t.Parallel()

	inv, pkgPath := testInventory(t)

	// A ** pattern rooted above the package matches through the extra path
	// segments.
	entries, _ := resolve.Resolve([]string{"github.com/tmdgusya.**"}, nil, inv, false)
	if len(entries) != 2 {
		t.Errorf("expected 2 entries for recursive wildcard rooted at %s, got %v",
			pkgPath, qualifiedNames(entries))
	}
}

// TestResolve_Deterministic verifies that pattern order and duplication never
// change the resolved set or its ordering.
func TestResolve_Deterministic(t *testing.T) {
	t.Parallel()

	inv, pkgPath := testInventory(t)

	patterns := []string{pkgPath + ".*", pkgPath + ".Alpha", pkgPath + ".Beta"}

	baseline, _ := resolve.Resolve(patterns, nil, inv, false)

	rapid.Check(t, func(rt *rapid.T) {
		shuffled := rapid.Permutation(patterns).Draw(rt, "order")

		repeats := rapid.IntRange(1, 3).Draw(rt, "repeats")

		var targets []string
		for range repeats {
			targets = append(targets, shuffled...)
		}

		entries, _ := resolve.Resolve(targets, nil, inv, false)

		if !reflect.DeepEqual(qualifiedNames(entries), qualifiedNames(baseline)) {
			rt.Fatalf("expected %v, got %v", qualifiedNames(baseline), qualifiedNames(entries))
		}
	})
}
