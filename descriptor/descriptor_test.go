package descriptor_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/tmdgusya/typedmock/descriptor"
)

func TestSignature_RendersParamsAndReturn(t *testing.T) {
	t.Parallel()

	member := descriptor.Member{
		Name: "Fetch",
		Kind: descriptor.KindMethod,
		Params: []descriptor.Param{
			{Name: "id", Type: "int"},
			{Name: "verbose", Type: "bool"},
		},
		Return: "(string, error)",
	}

	got := member.Signature()
	want := "(id int, verbose bool) (string, error)"

	if got != want {
		t.Errorf("expected signature %q, got %q", want, got)
	}
}

func TestSignature_NoReturn(t *testing.T) {
	t.Parallel()

	member := descriptor.Member{Name: "Close", Kind: descriptor.KindMethod}

	if got := member.Signature(); got != "()" {
		t.Errorf("expected signature %q, got %q", "()", got)
	}
}

func TestClassName_StripsPackagePath(t *testing.T) {
	t.Parallel()

	class := descriptor.Class{QualifiedName: "example.com/pkg/sub.Service"}

	if got := class.Name(); got != "Service" {
		t.Errorf("expected name %q, got %q", "Service", got)
	}
}

func TestClassMember_FindsByName(t *testing.T) {
	t.Parallel()

	class := descriptor.Class{
		QualifiedName: "example.com/pkg.Service",
		Members: []descriptor.Member{
			{Name: "Fetch", Kind: descriptor.KindMethod},
			{Name: "Status", Kind: descriptor.KindProperty},
		},
	}

	member, ok := class.Member("Status")
	if !ok {
		t.Fatal("expected Status to be found")
	}

	if member.Kind != descriptor.KindProperty {
		t.Errorf("expected property kind, got %v", member.Kind)
	}

	if _, ok := class.Member("Missing"); ok {
		t.Error("expected Missing to not be found")
	}
}

// TestDedupe_KeepsFirstOccurrence verifies that when an embedded type and its
// embedder both declare a member, the embedder's definition wins: extraction
// appends the most-derived definition first.
func TestDedupe_KeepsFirstOccurrence(t *testing.T) {
	t.Parallel()

	deduped := descriptor.Dedupe([]descriptor.Member{
		{Name: "Fetch", Kind: descriptor.KindAsyncMethod},
		{Name: "Status", Kind: descriptor.KindProperty},
		{Name: "Fetch", Kind: descriptor.KindMethod},
	})

	if len(deduped) != 2 {
		t.Fatalf("expected 2 members, got %d", len(deduped))
	}

	if deduped[0].Name != "Fetch" || deduped[0].Kind != descriptor.KindAsyncMethod {
		t.Errorf("expected the first Fetch definition to win, got %+v", deduped[0])
	}
}

func TestDedupe_PreservesOrder(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		names := rapid.SliceOf(rapid.StringMatching(`[A-Z][a-z]{0,5}`)).Draw(rt, "names")

		members := make([]descriptor.Member, 0, len(names))
		for _, name := range names {
			members = append(members, descriptor.Member{Name: name})
		}

		deduped := descriptor.Dedupe(members)

		seen := make(map[string]bool)
		for _, member := range deduped {
			if seen[member.Name] {
				rt.Fatalf("duplicate member %q survived", member.Name)
			}

			seen[member.Name] = true
		}

		// Every input name must survive exactly once, in first-seen order.
		var expected []string

		firstSeen := make(map[string]bool)

		for _, name := range names {
			if !firstSeen[name] {
				firstSeen[name] = true
				expected = append(expected, name)
			}
		}

		if len(expected) != len(deduped) {
			rt.Fatalf("expected %d members, got %d", len(expected), len(deduped))
		}

		for i, name := range expected {
			if deduped[i].Name != name {
				rt.Fatalf("expected member %d to be %q, got %q", i, name, deduped[i].Name)
			}
		}
	})
}
