// Package transport defines the host transport query contract and a
// simulated host clock that satisfies it.
package transport

import (
	"errors"
	"math"
)

// Flags mark which TimeInfo fields the host filled in, and which fields a
// caller asks for.
type Flags uint32

const (
	FlagPlaying Flags = 1 << iota
	FlagPPQPosValid
	FlagTempoValid
	FlagBarsValid
	FlagTimeSigValid
)

// RequestAll asks the host for every field it can provide.
const RequestAll Flags = math.MaxInt32

// ErrUnavailable is returned when the host cannot report transport state for
// the current cycle.
var ErrUnavailable = errors.New("transport: host time info unavailable")

// TimeInfo is a host transport snapshot for one processing cycle.
type TimeInfo struct {
	SamplePosition float64 // samples since transport start
	SampleRate     float64
	PPQPosition    float64 // quarter notes
	Tempo          float64 // BPM
	BarStartPPQ    float64
	TimeSigNum     int32
	TimeSigDen     int32
	Flags          Flags
}

// Playing reports whether the host transport is running.
func (t TimeInfo) Playing() bool {
	return t.Flags&FlagPlaying != 0
}

// validityFlags are the flags a host sets to say which fields are filled in.
const validityFlags = FlagPPQPosValid | FlagTempoValid | FlagBarsValid | FlagTimeSigValid

// HasPosition reports whether PPQPosition carries a usable value. The
// position must be finite. A host that marks no field valid at all is taken
// to fill PPQPosition unconditionally; a host that marks other fields valid
// but not FlagPPQPosValid is reporting that the position is missing.
func (t TimeInfo) HasPosition() bool {
	if math.IsNaN(t.PPQPosition) || math.IsInf(t.PPQPosition, 0) {
		return false
	}
	return t.Flags&validityFlags == 0 || t.Flags&FlagPPQPosValid != 0
}

// Host is the transport side of the plugin host.
type Host interface {
	// TimeInfo returns the transport state for the current cycle, or an
	// error (usually ErrUnavailable) when the host cannot supply it.
	TimeInfo(request Flags) (TimeInfo, error)
}

// HostFunc adapts an ordinary function to the Host interface.
type HostFunc func(request Flags) (TimeInfo, error)

// TimeInfo calls f(request).
func (f HostFunc) TimeInfo(request Flags) (TimeInfo, error) {
	return f(request)
}
