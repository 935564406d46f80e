package mock

import (
	"fmt"
	"sync"
)

// Types - Public

// CallRecord captures one invocation of a mocked member.
type CallRecord struct {
	// Args holds the invocation's arguments in positional order.
	Args []any
	// SequenceIndex orders this call across every member of the owning
	// composite. Indices start at zero and never repeat.
	SequenceIndex int
	// Awaited reports whether the deferred result of an asynchronous call was
	// resolved. Always false for synchronous calls.
	Awaited bool
}

// Placeholder is the default result of any unconfigured invocation or
// attribute access. Each one is distinct, so accidental equality between two
// unconfigured results never passes an assertion.
type Placeholder struct {
	origin string
	serial uint64
}

// Functions - Public

// Origin names the member access that produced this placeholder.
func (p *Placeholder) Origin() string { return p.origin }

// String renders the placeholder for diagnostics.
func (p *Placeholder) String() string {
	return fmt.Sprintf("<unconfigured result #%d of %s>", p.serial, p.origin)
}

// Functions - Private

func newPlaceholder(origin string) *Placeholder {
	return &Placeholder{origin: origin, serial: nextPlaceholderSerial()}
}

func nextPlaceholderSerial() uint64 {
	placeholderMu.Lock()
	defer placeholderMu.Unlock()

	placeholderSerial++

	return placeholderSerial
}

// clock hands out sequence indices shared across every proxy of a composite.
type clock struct {
	mu   sync.Mutex
	next int
}

func (c *clock) tick() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	index := c.next
	c.next++

	return index
}

// Vars.
var (
	placeholderMu     sync.Mutex
	placeholderSerial uint64
)
