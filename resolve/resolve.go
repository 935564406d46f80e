// Package resolve expands target patterns over an inventory into a concrete,
// deduplicated, deterministically ordered set of classes.
//
// Three pattern forms are supported:
//
//	pkg/path.Name  exact: the single named class
//	pkg/path.*     single-level: classes declared directly in pkg/path
//	pkg/path.**    recursive: classes in pkg/path and any of its subpackages
//
// Exclusions use the same forms, are applied after inclusion, and always win.
package resolve

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/tmdgusya/typedmock/inventory"
)

// Types - Public

// Spec is one target or exclusion pattern.
type Spec struct {
	Pattern     string
	IsExclusion bool
}

// Warning reports a pattern that matched zero classes. It is advisory: the
// rest of the resolution proceeds.
type Warning struct {
	Pattern     string
	IsExclusion bool
}

// Functions - Public

// String renders the warning for batch reporting.
func (w Warning) String() string {
	kind := "target"
	if w.IsExclusion {
		kind = "exclusion"
	}

	return fmt.Sprintf("%s pattern %q matched no classes", kind, w.Pattern)
}

// Resolve expands targets minus excludes over the inventory. The result is
// deduplicated by qualified name and sorted lexicographically, so repeated
// resolutions over an unchanged inventory yield an identical ordering.
// Unexported class names are skipped unless includePrivate is set, even when
// a wildcard includes their whole package.
func Resolve(
	targets, excludes []string, inv *inventory.Inventory, includePrivate bool,
) ([]inventory.Entry, []Warning) {
	entries := inv.Entries()

	var warnings []Warning

	included := make(map[string]bool)

	for _, pattern := range targets {
		matched := false

		for _, entry := range entries {
			if !includePrivate && isPrivateName(entry.Name) {
				continue
			}

			if matchPattern(pattern, entry) {
				included[entry.QualifiedName] = true
				matched = true
			}
		}

		if !matched {
			warnings = append(warnings, Warning{Pattern: pattern})
		}
	}

	for _, pattern := range excludes {
		matched := false

		for _, entry := range entries {
			if matchPattern(pattern, entry) {
				delete(included, entry.QualifiedName)

				matched = true
			}
		}

		if !matched {
			warnings = append(warnings, Warning{Pattern: pattern, IsExclusion: true})
		}
	}

	// entries is already sorted by qualified name; filtering it preserves
	// the deterministic order.
	out := make([]inventory.Entry, 0, len(included))

	for _, entry := range entries {
		if included[entry.QualifiedName] {
			out = append(out, entry)
		}
	}

	return out, warnings
}

// Functions - Private

// isPrivateName reports whether a class name is unexported.
func isPrivateName(name string) bool {
	if name == "" {
		return true
	}

	first := name[0]

	return first == '_' || (first >= 'a' && first <= 'z')
}

// matchPattern checks one entry against one pattern.
func matchPattern(pattern string, entry inventory.Entry) bool {
	switch {
	case strings.HasSuffix(pattern, ".**"):
		glob := strings.TrimSuffix(pattern, ".**") + "/**"
		ok, err := doublestar.Match(glob, entry.PkgPath+"/"+entry.Name)

		return err == nil && ok
	case strings.HasSuffix(pattern, ".*"):
		glob := strings.TrimSuffix(pattern, ".*") + "/*"
		ok, err := doublestar.Match(glob, entry.PkgPath+"/"+entry.Name)

		return err == nil && ok
	default:
		return pattern == entry.QualifiedName
	}
}
