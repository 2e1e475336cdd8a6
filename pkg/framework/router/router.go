// Package router applies performance events and host transport snapshots to
// an instance's shared state. It runs on the real-time processing path.
package router

import (
	"sync/atomic"

	"github.com/wehiroi/flchen/pkg/framework/debug"
	"github.com/wehiroi/flchen/pkg/framework/process"
	"github.com/wehiroi/flchen/pkg/framework/state"
	"github.com/wehiroi/flchen/pkg/framework/transport"
	"github.com/wehiroi/flchen/pkg/midi"
)

// Mapping pairs an event code with the mode it selects.
type Mapping struct {
	Code uint8
	Mode state.Mode
}

// modeTable maps event codes to modes. Codes are the white keys from A4 to
// B5; anything else is ignored.
var modeTable = [...]Mapping{
	{69, 0},
	{71, 1},
	{72, 2},
	{74, 3},
	{76, 4},
	{77, 5},
	{79, 6},
	{81, 7},
	{83, 8},
}

// lookup is modeTable indexed by code; 0xFF marks an unmapped code.
var lookup = func() (t [128]uint8) {
	for i := range t {
		t[i] = 0xFF
	}
	for _, m := range modeTable {
		t[m.Code] = uint8(m.Mode)
	}
	return t
}()

// Table returns the code to mode mapping in code order.
func Table() []Mapping {
	out := make([]Mapping, len(modeTable))
	copy(out, modeTable[:])
	return out
}

// ModeFor returns the mode selected by code.
func ModeFor(code uint8) (state.Mode, bool) {
	if code >= uint8(len(lookup)) || lookup[code] == 0xFF {
		return 0, false
	}
	return state.Mode(lookup[code]), true
}

// Router writes decoded modes and transport positions into shared state.
// One Router serves one plugin instance and is driven from a single
// processing goroutine.
type Router struct {
	state  *state.Shared
	logger *debug.Logger

	available    atomic.Bool
	missed       atomic.Uint64
	lastPosition float64
	stillMissing *debug.Limiter
}

// New creates a router writing into s. A nil logger uses the package default.
func New(s *state.Shared, logger *debug.Logger) *Router {
	if logger == nil {
		logger = debug.Default().Named("router")
	}
	r := &Router{
		state:        s,
		logger:       logger,
		stillMissing: debug.Every(1000),
	}
	r.available.Store(true)
	return r
}

// ProcessEvent applies a single event. Events without a mapped code leave
// the mode unchanged.
func (r *Router) ProcessEvent(e midi.Event) {
	code, ok := midi.Code(e)
	if !ok {
		return
	}
	if mode, ok := ModeFor(code); ok {
		r.state.SetMode(mode)
	}
}

// ProcessEvents applies a batch of events in order.
func (r *Router) ProcessEvents(events []midi.Event) {
	for _, e := range events {
		r.ProcessEvent(e)
	}
}

// UpdatePosition reads the transport position from host and stores it.
// When the host cannot answer, or answers with an unusable position, the
// last stored position is kept and the cycle is counted as missed. It
// reports whether the position was updated.
func (r *Router) UpdatePosition(host transport.Host) bool {
	var (
		info transport.TimeInfo
		err  error
	)
	if host == nil {
		err = transport.ErrUnavailable
	} else {
		info, err = host.TimeInfo(transport.RequestAll)
	}

	if err != nil || !info.HasPosition() {
		missed := r.missed.Add(1)
		if r.available.Swap(false) {
			if err != nil {
				r.logger.Warn("transport unavailable, holding position %v: %v", r.lastPosition, err)
			} else {
				r.logger.Warn("transport reported no usable position, holding %v", r.lastPosition)
			}
		} else if ok, _ := r.stillMissing.Allow(); ok {
			r.logger.Debug("transport still unavailable (%d missed cycles)", missed)
		}
		return false
	}

	r.state.SetPosition(info.PPQPosition)
	r.lastPosition = info.PPQPosition
	if !r.available.Swap(true) {
		r.logger.Info("transport available again at position %v after %d missed cycles",
			info.PPQPosition, r.missed.Load())
	}
	return true
}

// ProcessBlock runs one processing cycle: queued events first, in delivery
// order, then the transport position.
func (r *Router) ProcessBlock(ctx *process.Context) {
	ctx.DrainInputEvents(r.ProcessEvent)
	r.UpdatePosition(ctx)
}

// Reset forgets an ongoing transport outage so that the next one after
// reactivation is reported again. The stored mode and position and the
// missed cycle count are kept.
func (r *Router) Reset() {
	r.available.Store(true)
	r.stillMissing.Reset()
}

// MissedCycles returns how many cycles could not read a position.
func (r *Router) MissedCycles() uint64 {
	return r.missed.Load()
}

// TransportAvailable reports whether the last cycle read a position.
func (r *Router) TransportAvailable() bool {
	return r.available.Load()
}
