package mock

import "sync"

// Types - Public

// PropertyProxy records reads and writes of a mocked attribute. Reads return
// the configured value, or a placeholder until one is configured. A write
// replaces the value seen by later reads.
type PropertyProxy struct {
	name  string
	t     TestReporter
	clock *clock

	mu          sync.Mutex
	value       any
	hasValue    bool
	placeholder *Placeholder
	gets        []CallRecord
	sets        []CallRecord
	onSet       func(value any) error
}

// Functions - Public

// Name returns the mocked attribute's name.
func (p *PropertyProxy) Name() string { return p.name }

// SetValue configures the value returned by Get without recording a write.
func (p *PropertyProxy) SetValue(value any) *PropertyProxy {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.value = value
	p.hasValue = true

	return p
}

// OnSet configures a callback invoked with each written value. Its error, if
// any, is returned from Set; the write stays recorded either way.
func (p *PropertyProxy) OnSet(callback func(value any) error) *PropertyProxy {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.onSet = callback

	return p
}

// Get records a read and returns the current value. Unconfigured reads all
// return the same placeholder, so code that reads a property twice sees a
// consistent value.
func (p *PropertyProxy) Get() any {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.gets = append(p.gets, CallRecord{SequenceIndex: p.clock.tick()})

	if p.hasValue {
		return p.value
	}

	if p.placeholder == nil {
		p.placeholder = newPlaceholder(p.name)
	}

	return p.placeholder
}

// Set records a write, stores the value for later reads, and runs the
// configured callback.
func (p *PropertyProxy) Set(value any) error {
	p.mu.Lock()
	p.sets = append(p.sets, CallRecord{Args: []any{value}, SequenceIndex: p.clock.tick()})
	p.value = value
	p.hasValue = true
	callback := p.onSet
	p.mu.Unlock()

	if callback != nil {
		return callback(value)
	}

	return nil
}

// GetCount returns how many times the attribute was read.
func (p *PropertyProxy) GetCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.gets)
}

// SetCalls returns a copy of the recorded writes in order.
func (p *PropertyProxy) SetCalls() []CallRecord {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]CallRecord(nil), p.sets...)
}

// SetCount returns how many times the attribute was written.
func (p *PropertyProxy) SetCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.sets)
}

// ResetCalls discards recorded reads and writes. The configured value is
// kept.
func (p *PropertyProxy) ResetCalls() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.gets = nil
	p.sets = nil
}

// AssertSetWith fails the test unless the most recent write matches expected.
func (p *PropertyProxy) AssertSetWith(expected any) {
	p.t.Helper()

	sets := p.SetCalls()
	if len(sets) == 0 {
		p.t.Fatalf("expected %s to have been set to %#v, but it was never set", p.name, expected)

		return
	}

	last := sets[len(sets)-1].Args[0]
	if ok, msg := MatchValue(last, expected); !ok {
		p.t.Fatalf("unexpected value in last write to %s: %s", p.name, msg)
	}
}

// Functions - Private

func newPropertyProxy(name string, t TestReporter, clk *clock) *PropertyProxy {
	return &PropertyProxy{name: name, t: t, clock: clk}
}

// accessed reports whether the attribute was read or written at all.
func (p *PropertyProxy) accessed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.gets) > 0 || len(p.sets) > 0
}
