// Package mock is the call-recording proxy runtime. A CompositeProxy mocks a
// whole class from its descriptor; each member gets a proxy matching its
// kind, and every proxy in the composite shares one sequence clock so
// interactions are ordered across members and nested children.
package mock

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tmdgusya/typedmock/descriptor"
)

// Types - Public

// Describer resolves a qualified class name to its descriptor. Composites use
// it to build children for nested attributes on first access.
type Describer func(qualifiedName string) (*descriptor.Class, error)

// CompositeOption configures a CompositeProxy at construction.
type CompositeOption func(*CompositeProxy)

// UnconfiguredAccessError describes an access to a member the class does not
// declare. Strict composites fail the test with it; loose composites hand out
// a recording fallback proxy instead.
type UnconfiguredAccessError struct {
	Class  string
	Member string
}

// CompositeProxy mocks a whole class. It holds one proxy per declared member,
// all sharing a single sequence clock, so call ordering is comparable across
// members and across nested children.
type CompositeProxy struct {
	t         TestReporter
	class     *descriptor.Class
	clock     *clock
	strict    bool
	describer Describer

	methods map[string]*MethodProxy
	asyncs  map[string]*AsyncMethodProxy
	props   map[string]*PropertyProxy
	nested  map[string]string

	mu             sync.Mutex
	children       map[string]*CompositeProxy
	fallbackCalls  map[string]*MethodProxy
	fallbackAsyncs map[string]*AsyncMethodProxy
	fallbackProps  map[string]*PropertyProxy
}

// Functions - Public

func (e *UnconfiguredAccessError) Error() string {
	return fmt.Sprintf("%s has no member %q", e.Class, e.Member)
}

// WithStrict makes accesses to undeclared members fail the test immediately,
// and arms FinalizeStrictChecks.
func WithStrict() CompositeOption {
	return func(c *CompositeProxy) { c.strict = true }
}

// WithDescriber configures how nested attribute classes are described on
// first access.
func WithDescriber(describer Describer) CompositeOption {
	return func(c *CompositeProxy) { c.describer = describer }
}

// NewCompositeProxy builds a mock for class, with one proxy per declared
// member.
func NewCompositeProxy(t TestReporter, class *descriptor.Class, opts ...CompositeOption) *CompositeProxy {
	composite := &CompositeProxy{
		t:              t,
		class:          class,
		clock:          &clock{},
		methods:        make(map[string]*MethodProxy),
		asyncs:         make(map[string]*AsyncMethodProxy),
		props:          make(map[string]*PropertyProxy),
		nested:         make(map[string]string),
		children:       make(map[string]*CompositeProxy),
		fallbackCalls:  make(map[string]*MethodProxy),
		fallbackAsyncs: make(map[string]*AsyncMethodProxy),
		fallbackProps:  make(map[string]*PropertyProxy),
	}

	for _, opt := range opts {
		opt(composite)
	}

	for _, member := range class.Members {
		composite.register(member)
	}

	return composite
}

// Class returns the descriptor this composite was built from.
func (c *CompositeProxy) Class() *descriptor.Class { return c.class }

// Method returns the proxy for a declared callable member. Accessing an
// undeclared name hands out a cached fallback proxy, or fails the test when
// the composite is strict.
func (c *CompositeProxy) Method(name string) *MethodProxy {
	c.t.Helper()

	if proxy, ok := c.methods[name]; ok {
		return proxy
	}

	c.reportMisuse(name, "a method", c.asyncs, c.props, c.nested)

	return c.fallbackMethod(name)
}

// Async returns the proxy for a declared asynchronous member.
func (c *CompositeProxy) Async(name string) *AsyncMethodProxy {
	c.t.Helper()

	if proxy, ok := c.asyncs[name]; ok {
		return proxy
	}

	c.reportMisuse(name, "an asynchronous method", c.methods, c.props, c.nested)

	return c.fallbackAsync(name)
}

// Property returns the proxy for a declared attribute.
func (c *CompositeProxy) Property(name string) *PropertyProxy {
	c.t.Helper()

	if proxy, ok := c.props[name]; ok {
		return proxy
	}

	c.reportMisuse(name, "a property", c.methods, c.asyncs, c.nested)

	return c.fallbackProperty(name)
}

// Attr returns the child composite for a nested attribute. The child is built
// on first access and cached, so repeated accesses observe the same mock.
func (c *CompositeProxy) Attr(name string) *CompositeProxy {
	c.t.Helper()

	c.mu.Lock()
	defer c.mu.Unlock()

	if child, ok := c.children[name]; ok {
		return child
	}

	qualified, declared := c.nested[name]
	if !declared {
		if c.strict {
			c.t.Fatalf("%v", &UnconfiguredAccessError{Class: c.class.QualifiedName, Member: name})
		}

		qualified = c.class.QualifiedName + "." + name
	}

	child := c.child(qualified, declared)
	c.children[name] = child

	return child
}

// ResetRecordedCalls discards recorded interactions on every member proxy and
// on every child composite. Configured side effects survive.
func (c *CompositeProxy) ResetRecordedCalls() {
	for _, proxy := range c.methods {
		proxy.ResetCalls()
	}

	for _, proxy := range c.asyncs {
		proxy.ResetCalls()
	}

	for _, proxy := range c.props {
		proxy.ResetCalls()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, proxy := range c.fallbackCalls {
		proxy.ResetCalls()
	}

	for _, proxy := range c.fallbackAsyncs {
		proxy.ResetCalls()
	}

	for _, proxy := range c.fallbackProps {
		proxy.ResetCalls()
	}

	for _, child := range c.children {
		child.ResetRecordedCalls()
	}
}

// FinalizeStrictChecks fails the test if any declared member of a strict
// composite, or of its accessed children, saw no interaction. Loose
// composites treat it as a no-op.
func (c *CompositeProxy) FinalizeStrictChecks() {
	c.t.Helper()

	if !c.strict {
		return
	}

	untouched := c.untouchedMembers("")
	if len(untouched) > 0 {
		c.t.Fatalf("strict mock %s finished with uninteracted members:\n  %s",
			c.class.QualifiedName, strings.Join(untouched, "\n  "))
	}
}

// Functions - Private

// register dispatches one declared member into its kind's proxy map. This is
// the only place member kinds map onto proxy types.
func (c *CompositeProxy) register(member descriptor.Member) {
	label := c.class.Name() + "." + member.Name

	switch member.Kind {
	case descriptor.KindMethod, descriptor.KindClassMethod, descriptor.KindStaticMethod:
		c.methods[member.Name] = newMethodProxy(label, c.t, c.clock)
	case descriptor.KindAsyncMethod:
		c.asyncs[member.Name] = newAsyncMethodProxy(label, c.t, c.clock)
	case descriptor.KindProperty:
		c.props[member.Name] = newPropertyProxy(label, c.t, c.clock)
	case descriptor.KindNestedAttribute:
		c.nested[member.Name] = member.Class
	}
}

// reportMisuse fails the test when a name is declared under a different kind,
// or when a strict composite sees an undeclared name.
func (c *CompositeProxy) reportMisuse(name, wanted string, otherKinds ...any) {
	c.t.Helper()

	for _, kinds := range otherKinds {
		if kindHasName(kinds, name) {
			c.t.Fatalf("%s.%s is not %s; check the member's declared kind",
				c.class.Name(), name, wanted)

			return
		}
	}

	if c.strict {
		c.t.Fatalf("%v", &UnconfiguredAccessError{Class: c.class.QualifiedName, Member: name})
	}
}

func kindHasName(kinds any, name string) bool {
	switch m := kinds.(type) {
	case map[string]*MethodProxy:
		_, ok := m[name]

		return ok
	case map[string]*AsyncMethodProxy:
		_, ok := m[name]

		return ok
	case map[string]*PropertyProxy:
		_, ok := m[name]

		return ok
	case map[string]string:
		_, ok := m[name]

		return ok
	default:
		return false
	}
}

func (c *CompositeProxy) fallbackMethod(name string) *MethodProxy {
	c.mu.Lock()
	defer c.mu.Unlock()

	if proxy, ok := c.fallbackCalls[name]; ok {
		return proxy
	}

	proxy := newMethodProxy(c.class.Name()+"."+name, c.t, c.clock)
	c.fallbackCalls[name] = proxy

	return proxy
}

func (c *CompositeProxy) fallbackAsync(name string) *AsyncMethodProxy {
	c.mu.Lock()
	defer c.mu.Unlock()

	if proxy, ok := c.fallbackAsyncs[name]; ok {
		return proxy
	}

	proxy := newAsyncMethodProxy(c.class.Name()+"."+name, c.t, c.clock)
	c.fallbackAsyncs[name] = proxy

	return proxy
}

func (c *CompositeProxy) fallbackProperty(name string) *PropertyProxy {
	c.mu.Lock()
	defer c.mu.Unlock()

	if proxy, ok := c.fallbackProps[name]; ok {
		return proxy
	}

	proxy := newPropertyProxy(c.class.Name()+"."+name, c.t, c.clock)
	c.fallbackProps[name] = proxy

	return proxy
}

// child builds a nested composite sharing this composite's clock, reporter,
// strictness, and describer. An undescribable child still records calls; it
// just declares no members.
func (c *CompositeProxy) child(qualifiedName string, declared bool) *CompositeProxy {
	class := &descriptor.Class{QualifiedName: qualifiedName}

	if declared && c.describer != nil {
		described, err := c.describer(qualifiedName)
		if err != nil {
			c.t.Fatalf("describing nested attribute class %s: %v", qualifiedName, err)
		} else {
			class = described
		}
	}

	child := NewCompositeProxy(c.t, class, WithDescriber(c.describer))
	child.strict = c.strict
	child.clock = c.clock
	child.rebind()

	return child
}

// rebind points every member proxy at the composite's current clock. Needed
// after construction when a child adopts its parent's clock.
func (c *CompositeProxy) rebind() {
	for _, proxy := range c.methods {
		proxy.clock = c.clock
	}

	for _, proxy := range c.asyncs {
		proxy.clock = c.clock
	}

	for _, proxy := range c.props {
		proxy.clock = c.clock
	}
}

// untouchedMembers lists declared members with zero interaction, prefixed for
// nested attribution.
func (c *CompositeProxy) untouchedMembers(prefix string) []string {
	var untouched []string

	for _, member := range c.class.Members {
		name := prefix + member.Name

		switch member.Kind {
		case descriptor.KindAsyncMethod:
			if c.asyncs[member.Name].CallCount() == 0 {
				untouched = append(untouched, name)
			}
		case descriptor.KindProperty:
			if !c.props[member.Name].accessed() {
				untouched = append(untouched, name)
			}
		case descriptor.KindNestedAttribute:
			c.mu.Lock()
			child, accessed := c.children[member.Name]
			c.mu.Unlock()

			if !accessed {
				untouched = append(untouched, name)
			} else {
				untouched = append(untouched, child.untouchedMembers(name+".")...)
			}
		default:
			if c.methods[member.Name].CallCount() == 0 {
				untouched = append(untouched, name)
			}
		}
	}

	return untouched
}
