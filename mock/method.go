package mock

import (
	"fmt"
	"strings"
	"sync"

	"github.com/akedrou/textdiff"
)

// Interfaces - Public

// TestReporter is the minimal testing interface the proxies report through.
// *testing.T satisfies it.
type TestReporter interface {
	Helper()
	Fatalf(format string, args ...any)
}

// Types - Public

// SequenceExhaustedError signals that a configured return sequence ran out of
// values.
type SequenceExhaustedError struct {
	Member string
}

// CallableEffect is a configured implementation for a mocked method. It
// receives the invocation's arguments.
type CallableEffect func(args ...any) (any, error)

// MethodProxy records invocations of one mocked method and resolves each
// invocation from its configured side effects. Configuration and invocation
// are safe for concurrent use.
type MethodProxy struct {
	name  string
	t     TestReporter
	clock *clock

	mu          sync.Mutex
	calls       []CallRecord
	returnValue any
	hasReturn   bool
	errValue    error
	callable    CallableEffect
	sequence    []any
	hasSequence bool
}

// Functions - Public

func (e *SequenceExhaustedError) Error() string {
	return fmt.Sprintf("side effect sequence for %s is exhausted", e.Member)
}

// Name returns the mocked member's name.
func (p *MethodProxy) Name() string { return p.name }

// SetReturn configures a fixed return value for every invocation.
func (p *MethodProxy) SetReturn(value any) *MethodProxy {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.returnValue = value
	p.hasReturn = true

	return p
}

// SetError configures every invocation to fail with err. An error takes
// priority over every other configured effect.
func (p *MethodProxy) SetError(err error) *MethodProxy {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.errValue = err

	return p
}

// SetCall configures a callable implementation, invoked with the call's
// arguments.
func (p *MethodProxy) SetCall(callable CallableEffect) *MethodProxy {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.callable = callable

	return p
}

// SetSequence configures per-call outcomes, consumed in order. A value that
// is an error fails that one call. Once the values run out, further
// invocations fail with SequenceExhaustedError.
func (p *MethodProxy) SetSequence(values ...any) *MethodProxy {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sequence = append([]any(nil), values...)
	p.hasSequence = true

	return p
}

// Invoke records a call and resolves its configured effect. Effects resolve
// in priority order: error, callable, sequence, fixed return, and finally a
// fresh placeholder when nothing is configured.
func (p *MethodProxy) Invoke(args ...any) (any, error) {
	p.record(args)

	return p.resolve(args)
}

// Calls returns a copy of the recorded calls in invocation order.
func (p *MethodProxy) Calls() []CallRecord {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]CallRecord(nil), p.calls...)
}

// CallCount returns how many times the method was invoked.
func (p *MethodProxy) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.calls)
}

// ResetCalls discards recorded calls. Configured side effects are kept.
func (p *MethodProxy) ResetCalls() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = nil
}

// AssertCalled fails the test if the method was never invoked.
func (p *MethodProxy) AssertCalled() {
	p.t.Helper()

	if p.CallCount() == 0 {
		p.t.Fatalf("expected %s to have been called, but it was never called", p.name)
	}
}

// AssertCalledOnce fails the test unless the method was invoked exactly once.
func (p *MethodProxy) AssertCalledOnce() {
	p.t.Helper()

	if count := p.CallCount(); count != 1 {
		p.t.Fatalf("expected %s to have been called once, but it was called %d times\ncalls:\n%s",
			p.name, count, formatCalls(p.name, p.Calls()))
	}
}

// AssertCalledWith fails the test unless the most recent call's arguments
// match expected. Elements of expected may be Matchers.
func (p *MethodProxy) AssertCalledWith(expected ...any) {
	p.t.Helper()

	calls := p.Calls()
	if len(calls) == 0 {
		p.t.Fatalf("expected %s to have been called with %s, but it was never called",
			p.name, formatArgs(expected))

		return
	}

	last := calls[len(calls)-1]
	if ok, msg := matchArgs(last.Args, expected); !ok {
		p.t.Fatalf("unexpected arguments in last call to %s: %s\n%s",
			p.name, msg, argsDiff(expected, last.Args))
	}
}

// AssertCalledOnceWith fails the test unless the method was invoked exactly
// once, with matching arguments.
func (p *MethodProxy) AssertCalledOnceWith(expected ...any) {
	p.t.Helper()

	if count := p.CallCount(); count != 1 {
		p.t.Fatalf("expected %s to have been called once with %s, but it was called %d times\ncalls:\n%s",
			p.name, formatArgs(expected), count, formatCalls(p.name, p.Calls()))

		return
	}

	p.AssertCalledWith(expected...)
}

// AssertAnyCallWith fails the test unless some recorded call's arguments
// match expected.
func (p *MethodProxy) AssertAnyCallWith(expected ...any) {
	p.t.Helper()

	calls := p.Calls()
	for _, call := range calls {
		if ok, _ := matchArgs(call.Args, expected); ok {
			return
		}
	}

	p.t.Fatalf("expected some call to %s with %s, but none matched\ncalls:\n%s",
		p.name, formatArgs(expected), formatCalls(p.name, calls))
}

// AssertNotCalled fails the test if the method was invoked.
func (p *MethodProxy) AssertNotCalled() {
	p.t.Helper()

	calls := p.Calls()
	if len(calls) > 0 {
		p.t.Fatalf("expected %s to never have been called, but it was called %d times\ncalls:\n%s",
			p.name, len(calls), formatCalls(p.name, calls))
	}
}

// Functions - Private

func newMethodProxy(name string, t TestReporter, clk *clock) *MethodProxy {
	return &MethodProxy{name: name, t: t, clock: clk}
}

// record appends one call and returns its composite-wide sequence index.
// The index is taken and the record appended under one lock, so the recorded
// list stays in call order even under concurrent invocations.
func (p *MethodProxy) record(args []any) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	index := p.clock.tick()
	p.calls = append(p.calls, CallRecord{Args: args, SequenceIndex: index})

	return index
}

// markAwaited flags the recorded call bearing the given sequence index as
// awaited. Sequence indices never repeat, so a call recorded before a reset
// can no longer be confused with whatever was recorded after it; when no
// record carries the index, nothing is left to flag.
func (p *MethodProxy) markAwaited(sequence int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := len(p.calls) - 1; i >= 0; i-- {
		if p.calls[i].SequenceIndex == sequence {
			p.calls[i].Awaited = true

			return
		}
	}
}

// resolve applies the configured effects in priority order. The callable runs
// outside the lock so it may invoke other proxies.
func (p *MethodProxy) resolve(args []any) (any, error) {
	p.mu.Lock()

	if p.errValue != nil {
		err := p.errValue
		p.mu.Unlock()

		return nil, err
	}

	if p.callable != nil {
		callable := p.callable
		p.mu.Unlock()

		return callable(args...)
	}

	if p.hasSequence {
		defer p.mu.Unlock()

		if len(p.sequence) == 0 {
			return nil, &SequenceExhaustedError{Member: p.name}
		}

		value := p.sequence[0]
		p.sequence = p.sequence[1:]

		// A sequence item that is an error resolves as a per-call failure.
		if err, ok := value.(error); ok {
			return nil, err
		}

		return value, nil
	}

	if p.hasReturn {
		defer p.mu.Unlock()

		return p.returnValue, nil
	}

	p.mu.Unlock()

	return newPlaceholder(p.name), nil
}

// formatArgs renders an argument list for diagnostics.
func formatArgs(args []any) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, fmt.Sprintf("%#v", arg))
	}

	return "(" + strings.Join(parts, ", ") + ")"
}

// formatCalls renders recorded calls, one per line.
func formatCalls(name string, calls []CallRecord) string {
	if len(calls) == 0 {
		return "  (none)"
	}

	lines := make([]string, 0, len(calls))

	for _, call := range calls {
		line := fmt.Sprintf("  [%d] %s%s", call.SequenceIndex, name, formatArgs(call.Args))
		if call.Awaited {
			line += " (awaited)"
		}

		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// argsDiff renders a unified diff of expected vs actual arguments, one arg
// per line, so long argument lists stay readable in failure output.
func argsDiff(expected, actual []any) string {
	return textdiff.Unified("expected", "actual", argLines(expected), argLines(actual))
}

func argLines(args []any) string {
	var builder strings.Builder

	for _, arg := range args {
		fmt.Fprintf(&builder, "%#v\n", arg)
	}

	return builder.String()
}
