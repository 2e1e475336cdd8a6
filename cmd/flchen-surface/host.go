package main

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/wehiroi/flchen/pkg/framework/debug"
	"github.com/wehiroi/flchen/pkg/framework/transport"
	"github.com/wehiroi/flchen/pkg/plugin"
)

// inboxSize bounds the events waiting for the audio goroutine.
const inboxSize = 256

// host plays the part of a plugin host: it owns the audio goroutine that
// delivers events and runs one block per block period, advancing the clock
// after each.
type host struct {
	inst      *plugin.Instance
	clock     *transport.Clock
	blockSize int
	logger    *debug.Logger

	inbox   chan plugin.RawEvent
	pending []plugin.RawEvent
	in      [][]float32
	out     [][]float32

	blocks    atomic.Uint64
	overflows atomic.Uint64
	errors    *debug.Limiter
}

func newHost(inst *plugin.Instance, clock *transport.Clock, blockSize int, logger *debug.Logger) *host {
	h := &host{
		inst:      inst,
		clock:     clock,
		blockSize: blockSize,
		logger:    logger,
		inbox:     make(chan plugin.RawEvent, inboxSize),
		pending:   make([]plugin.RawEvent, 0, inboxSize),
		errors:    debug.Every(1000),
	}
	inputs, outputs := inst.Channels()
	h.in = buffers(int(inputs), blockSize)
	h.out = buffers(int(outputs), blockSize)
	return h
}

func buffers(channels, n int) [][]float32 {
	bufs := make([][]float32, channels)
	for ch := range bufs {
		bufs[ch] = make([]float32, n)
	}
	return bufs
}

// Send hands an event to the audio goroutine without blocking. Events that
// do not fit are counted and dropped.
func (h *host) Send(ev plugin.RawEvent) bool {
	select {
	case h.inbox <- ev:
		return true
	default:
		if h.overflows.Add(1) == 1 {
			h.logger.Warn("host inbox full, dropping events")
		}
		return false
	}
}

// NoteOn sends a note-on for code at full velocity.
func (h *host) NoteOn(code uint8) bool {
	return h.Send(plugin.RawEvent{Data: [3]byte{0x90, code & 0x7F, 100}})
}

// period is the wall-clock duration of one block.
func (h *host) period() time.Duration {
	rate := h.inst.SampleRate()
	if rate <= 0 {
		return 0
	}
	return time.Duration(float64(h.blockSize) / rate * float64(time.Second))
}

// step delivers waiting events and processes one block.
func (h *host) step() {
	h.pending = h.pending[:0]
drain:
	for len(h.pending) < cap(h.pending) {
		select {
		case ev := <-h.inbox:
			h.pending = append(h.pending, ev)
		default:
			break drain
		}
	}
	if len(h.pending) > 0 {
		h.inst.ProcessEvents(h.pending)
	}

	if err := h.inst.Process(h.in, h.out); err != nil {
		if ok, n := h.errors.Allow(); ok {
			h.logger.Error("process failed (%d times): %v", n, err)
		}
	}
	h.clock.Advance(h.blockSize)
	h.blocks.Add(1)
}

// Run processes blocks until ctx is cancelled.
func (h *host) Run(ctx context.Context) {
	period := h.period()
	if period <= 0 {
		h.logger.Error("cannot run with block period %v", period)
		return
	}
	h.logger.Info("audio loop started: %d samples every %v", h.blockSize, period)

	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("audio loop stopped after %d blocks", h.blocks.Load())
			return
		case <-ticker.C:
			h.step()
		}
	}
}

// Blocks returns how many blocks have been processed.
func (h *host) Blocks() uint64 {
	return h.blocks.Load()
}

// Overflows returns how many events Send dropped.
func (h *host) Overflows() uint64 {
	return h.overflows.Load()
}
