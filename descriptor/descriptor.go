// Package descriptor defines the static member model shared by the extractor,
// the proxy runtime, and the binding emitter.
package descriptor

import "strings"

// Types - Public

// MemberKind identifies what sort of member a descriptor stands for. The kind
// is fixed at extraction time and selects which proxy the runtime builds.
type MemberKind int

// Member kinds, one per proxy builder.
const (
	KindMethod MemberKind = iota
	KindAsyncMethod
	KindProperty
	KindClassMethod
	KindStaticMethod
	KindNestedAttribute
)

// Param describes one parameter of a member signature. Type is "any" when the
// extraction backend could not resolve it.
type Param struct {
	Name string
	Type string
}

// Member is the static description of one member of a class: its name, kind,
// and signature. Class is set only for KindNestedAttribute and names the
// nested type so the runtime can describe it on demand.
type Member struct {
	Name   string
	Kind   MemberKind
	Params []Param
	Return string
	Class  string
}

// Class describes one mockable type: its qualified name and its members,
// ordered and deduplicated by name with the most-derived definition winning.
type Class struct {
	QualifiedName   string
	Members         []Member
	IncludesPrivate bool
}

// Functions - Public

// String returns the lowercase kind name.
func (k MemberKind) String() string {
	switch k {
	case KindMethod:
		return "method"
	case KindAsyncMethod:
		return "async method"
	case KindProperty:
		return "property"
	case KindClassMethod:
		return "classmethod"
	case KindStaticMethod:
		return "staticmethod"
	case KindNestedAttribute:
		return "nested attribute"
	default:
		return "unknown"
	}
}

// Signature renders the member's signature, e.g. "(id int) map[string]any".
func (m *Member) Signature() string {
	var b strings.Builder

	b.WriteString("(")

	for i, p := range m.Params {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(p.Name)
		b.WriteString(" ")
		b.WriteString(p.Type)
	}

	b.WriteString(")")

	if m.Return != "" {
		b.WriteString(" ")
		b.WriteString(m.Return)
	}

	return b.String()
}

// Member returns the named member and whether it exists.
func (c *Class) Member(name string) (*Member, bool) {
	for i := range c.Members {
		if c.Members[i].Name == name {
			return &c.Members[i], true
		}
	}

	return nil, false
}

// Name returns the local type name, without the package path.
func (c *Class) Name() string {
	if idx := strings.LastIndex(c.QualifiedName, "."); idx >= 0 {
		return c.QualifiedName[idx+1:]
	}

	return c.QualifiedName
}

// Dedupe returns members deduplicated by name, keeping the first occurrence.
// Extraction appends most-derived members first, so the override wins.
func Dedupe(members []Member) []Member {
	seen := make(map[string]bool, len(members))
	out := make([]Member, 0, len(members))

	for _, m := range members {
		if seen[m.Name] {
			continue
		}

		seen[m.Name] = true
		out = append(out, m)
	}

	return out
}
