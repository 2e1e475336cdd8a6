// Package plugin provides plugin metadata, capability negotiation and a
// base processor to embed.
package plugin

import (
	"fmt"

	"github.com/wehiroi/flchen/pkg/framework/bus"
)

// BaseProcessor supplies the bookkeeping half of a processor: its bus
// layout, format checks, latency and tail, and a reset hook run when the
// host stops processing. Embedders add ProcessAudio.
type BaseProcessor struct {
	buses   *bus.Configuration
	onReset func()
}

// NewBaseProcessor creates a base processor with the given bus layout. A
// nil layout means stereo in and out.
func NewBaseProcessor(buses *bus.Configuration) *BaseProcessor {
	if buses == nil {
		buses = bus.NewStereoConfiguration()
	}
	return &BaseProcessor{buses: buses}
}

// Initialize checks the processing format.
func (b *BaseProcessor) Initialize(sampleRate float64, maxBlockSize int32) error {
	if sampleRate <= 0 || maxBlockSize <= 0 {
		return fmt.Errorf("invalid format %v Hz, %d samples", sampleRate, maxBlockSize)
	}
	return nil
}

// GetBuses returns the bus layout.
func (b *BaseProcessor) GetBuses() *bus.Configuration {
	return b.buses
}

// SetActive runs the reset hook when processing stops.
func (b *BaseProcessor) SetActive(active bool) error {
	if !active && b.onReset != nil {
		b.onReset()
	}
	return nil
}

// GetLatencySamples reports no latency.
func (b *BaseProcessor) GetLatencySamples() int32 {
	return 0
}

// GetTailSamples reports no tail.
func (b *BaseProcessor) GetTailSamples() int32 {
	return 0
}

// OnReset sets the function run on deactivation.
func (b *BaseProcessor) OnReset(fn func()) {
	b.onReset = fn
}
