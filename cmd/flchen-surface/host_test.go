package main

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/wehiroi/flchen/pkg/flchen"
	"github.com/wehiroi/flchen/pkg/framework/config"
	"github.com/wehiroi/flchen/pkg/framework/debug"
	"github.com/wehiroi/flchen/pkg/framework/transport"
	"github.com/wehiroi/flchen/pkg/plugin"
)

// Half-second blocks at 120 BPM move the transport exactly one beat.
const (
	testRate  = 48000
	testBlock = 24000
)

func newTestHost(t *testing.T) (*host, *transport.Clock, *flchen.Processor) {
	t.Helper()

	cfg := config.Default()
	cfg.SampleRate = testRate
	cfg.BlockSize = testBlock
	logger := debug.New(io.Discard, "test", 0)

	clock := transport.NewClock(testRate, 120)
	flchen.Register(cfg, logger)
	inst, err := plugin.NewInstance(clock)
	if err != nil {
		t.Fatalf("NewInstance failed: %v", err)
	}
	t.Cleanup(func() { inst.Close() })
	if err := inst.SetActive(true); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}

	proc, ok := inst.Processor().(*flchen.Processor)
	if !ok {
		t.Fatalf("Unexpected processor type %T", inst.Processor())
	}
	return newHost(inst, clock, testBlock, logger), clock, proc
}

func TestHostStep(t *testing.T) {
	h, clock, proc := newTestHost(t)

	if len(h.in) != 2 || len(h.out) != 2 || len(h.out[1]) != testBlock {
		t.Fatalf("Expected two %d-sample buffers each way, got %d/%d", testBlock, len(h.in), len(h.out))
	}
	if !h.NoteOn(74) {
		t.Fatal("NoteOn was not accepted")
	}
	h.step()
	if got := proc.State().Mode(); got != 3 {
		t.Errorf("Expected mode 3, got %d", got)
	}

	clock.Play()
	h.step()
	h.step()
	if got := proc.State().Position(); got != 1.0 {
		t.Errorf("Expected position 1.0, got %v", got)
	}
	if h.Blocks() != 3 {
		t.Errorf("Expected 3 blocks, got %d", h.Blocks())
	}
}

func TestHostSendOverflow(t *testing.T) {
	h, _, proc := newTestHost(t)

	for i := 0; i < inboxSize+5; i++ {
		h.NoteOn(72)
	}
	if h.Overflows() != 5 {
		t.Errorf("Expected 5 overflows, got %d", h.Overflows())
	}

	h.step()
	if h.inst.DroppedEvents() != 0 {
		t.Errorf("Expected no dropped events, got %d", h.inst.DroppedEvents())
	}
	if got := proc.State().Mode(); got != 2 {
		t.Errorf("Expected mode 2 from the queued events, got %d", got)
	}
	if len(h.inbox) != 0 {
		t.Errorf("Expected inbox drained, %d left", len(h.inbox))
	}
}

func TestHostPeriod(t *testing.T) {
	h, _, _ := newTestHost(t)

	if got := h.period(); got != 500*time.Millisecond {
		t.Errorf("Expected 500ms, got %v", got)
	}
}

func TestHostRunStops(t *testing.T) {
	h, _, _ := newTestHost(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
