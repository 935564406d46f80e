package mock

import (
	"context"
	"sync"
)

// Types - Public

// AsyncMethodProxy records invocations of a mocked asynchronous method.
// Invoking it returns a Deferred immediately; the configured side effect
// resolves when the deferred is awaited. The call itself is recorded at
// invocation time, so call ordering reflects when work was started, not when
// its result was collected.
type AsyncMethodProxy struct {
	*MethodProxy
}

// Deferred is the pending result of one asynchronous invocation. Awaiting it
// more than once returns the same resolution.
type Deferred struct {
	proxy    *AsyncMethodProxy
	args     []any
	sequence int

	once  sync.Once
	value any
	err   error
}

// Functions - Public

// Invoke records a call and returns its pending result.
func (p *AsyncMethodProxy) Invoke(args ...any) *Deferred {
	sequence := p.record(args)

	return &Deferred{proxy: p, args: args, sequence: sequence}
}

// AssertAwaited fails the test unless at least one recorded call was awaited.
func (p *AsyncMethodProxy) AssertAwaited() {
	p.t.Helper()

	for _, call := range p.Calls() {
		if call.Awaited {
			return
		}
	}

	p.t.Fatalf("expected a call to %s to have been awaited, but none was\ncalls:\n%s",
		p.name, formatCalls(p.name, p.Calls()))
}

// AssertNotAwaited fails the test if any recorded call was awaited.
func (p *AsyncMethodProxy) AssertNotAwaited() {
	p.t.Helper()

	for _, call := range p.Calls() {
		if call.Awaited {
			p.t.Fatalf("expected no call to %s to have been awaited\ncalls:\n%s",
				p.name, formatCalls(p.name, p.Calls()))

			return
		}
	}
}

// Await resolves the deferred result. Cancellation before resolution returns
// the context's error; the invocation stays recorded either way.
func (d *Deferred) Await(ctx context.Context) (any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	d.once.Do(func() {
		d.proxy.markAwaited(d.sequence)
		d.value, d.err = d.proxy.resolve(d.args)
	})

	return d.value, d.err
}

// Functions - Private

func newAsyncMethodProxy(name string, t TestReporter, clk *clock) *AsyncMethodProxy {
	return &AsyncMethodProxy{MethodProxy: newMethodProxy(name, t, clk)}
}
