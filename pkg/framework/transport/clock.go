package transport

import (
	"sync"
)

// Clock is a simulated host transport. The processing side calls Advance
// once per block; any goroutine may start, stop, seek or retune it.
type Clock struct {
	mu          sync.Mutex
	sampleRate  float64
	tempo       float64
	samplePos   float64
	ppq         float64
	playing     bool
	unavailable bool
}

// NewClock creates a stopped clock at position zero in 4/4.
func NewClock(sampleRate, tempo float64) *Clock {
	return &Clock{
		sampleRate: sampleRate,
		tempo:      tempo,
	}
}

// Play starts the transport.
func (c *Clock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = true
}

// Stop halts the transport without rewinding.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = false
}

// Toggle flips the play state and returns the new one.
func (c *Clock) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = !c.playing
	return c.playing
}

// Seek moves the transport to a quarter-note position.
func (c *Clock) Seek(ppq float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ppq = ppq
	if c.tempo > 0 {
		c.samplePos = ppq * 60 / c.tempo * c.sampleRate
	}
}

// SetTempo changes the tempo in BPM. Non-positive values are ignored.
func (c *Clock) SetTempo(bpm float64) {
	if bpm <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tempo = bpm
}

// SetSampleRate changes the rate used to convert samples to beats.
func (c *Clock) SetSampleRate(rate float64) {
	if rate <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sampleRate = rate
}

// SetUnavailable makes TimeInfo fail with ErrUnavailable while true.
func (c *Clock) SetUnavailable(unavailable bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unavailable = unavailable
}

// Advance moves a playing transport forward by n samples.
func (c *Clock) Advance(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing || n <= 0 || c.sampleRate <= 0 {
		return
	}
	c.samplePos += float64(n)
	c.ppq += float64(n) / c.sampleRate * c.tempo / 60
}

// TimeInfo implements Host.
func (c *Clock) TimeInfo(request Flags) (TimeInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unavailable {
		return TimeInfo{}, ErrUnavailable
	}

	info := TimeInfo{
		SamplePosition: c.samplePos,
		SampleRate:     c.sampleRate,
		TimeSigNum:     4,
		TimeSigDen:     4,
	}
	if request&FlagPPQPosValid != 0 {
		info.PPQPosition = c.ppq
		info.Flags |= FlagPPQPosValid
	}
	if request&FlagTempoValid != 0 {
		info.Tempo = c.tempo
		info.Flags |= FlagTempoValid
	}
	if request&FlagBarsValid != 0 {
		info.BarStartPPQ = float64(int64(c.ppq/4)) * 4
		info.Flags |= FlagBarsValid
	}
	if request&FlagTimeSigValid != 0 {
		info.Flags |= FlagTimeSigValid
	}
	if c.playing {
		info.Flags |= FlagPlaying
	}
	return info, nil
}
