// Package process provides the per-cycle processing context handed to a
// plugin's processor.
package process

import (
	"github.com/wehiroi/flchen/pkg/framework/transport"
	"github.com/wehiroi/flchen/pkg/midi"
)

// Context carries everything a processor sees during one host cycle: the
// audio buffers, the performance events queued since the last cycle and the
// host transport.
type Context struct {
	Input      [][]float32
	Output     [][]float32
	SampleRate float64

	// Transport is the host transport for this instance. It may be nil when
	// the host offers none.
	Transport transport.Host

	inputEvents *midi.EventQueue
	maxBlock    int
}

// NewContext creates a process context for blocks of up to maxBlockSize
// samples that queues at most maxEvents events between blocks. maxEvents of
// zero or less means no limit.
func NewContext(maxBlockSize, maxEvents int, host transport.Host) *Context {
	return &Context{
		Transport:   host,
		inputEvents: midi.NewEventQueue(maxEvents),
		maxBlock:    maxBlockSize,
	}
}

// MaxBlockSize returns the largest block the host announced.
func (c *Context) MaxBlockSize() int {
	return c.maxBlock
}

// SetMaxBlockSize records a new maximum block size.
func (c *Context) SetMaxBlockSize(n int) {
	c.maxBlock = n
}

// NumSamples returns the length of the current block.
func (c *Context) NumSamples() int {
	if len(c.Input) > 0 && len(c.Input[0]) > 0 {
		return len(c.Input[0])
	}
	if len(c.Output) > 0 {
		return len(c.Output[0])
	}
	return 0
}

// TimeInfo queries the host transport. A context without a transport
// reports transport.ErrUnavailable.
func (c *Context) TimeInfo(request transport.Flags) (transport.TimeInfo, error) {
	if c.Transport == nil {
		return transport.TimeInfo{}, transport.ErrUnavailable
	}
	return c.Transport.TimeInfo(request)
}

// AddInputEvent queues an event for the next cycle. It returns false when
// the queue is full.
func (c *Context) AddInputEvent(event midi.Event) bool {
	return c.inputEvents.Add(event)
}

// InputEventCount returns how many events are queued.
func (c *Context) InputEventCount() int {
	return c.inputEvents.Len()
}

// DrainInputEvents hands every queued event to fn in delivery order and
// empties the queue without allocating.
func (c *Context) DrainInputEvents(fn func(midi.Event)) {
	c.inputEvents.Drain(fn)
}

// ClearInputEvents drops all queued events.
func (c *Context) ClearInputEvents() {
	c.inputEvents.Clear()
}
