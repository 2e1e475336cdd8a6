// Package plugin hosts a registered plugin behind a host-facing instance
// API: lifecycle calls, event delivery, block processing, capability
// queries and the editor.
package plugin

import (
	"github.com/wehiroi/flchen/pkg/editor"
	"github.com/wehiroi/flchen/pkg/framework/bus"
	"github.com/wehiroi/flchen/pkg/framework/plugin"
	"github.com/wehiroi/flchen/pkg/framework/process"
)

// Plugin is the main interface that users implement
type Plugin interface {
	// GetInfo returns plugin metadata
	GetInfo() plugin.Info

	// CreateProcessor creates the processor for a new instance
	CreateProcessor() Processor
}

// Processor handles the per-instance processing
type Processor interface {
	// Initialize is called before the first block and after format changes
	Initialize(sampleRate float64, maxBlockSize int32) error

	// ProcessAudio runs one cycle. It must not allocate or block.
	ProcessAudio(ctx *process.Context)

	// GetBuses returns the bus configuration
	GetBuses() *bus.Configuration

	// SetActive is called when processing starts/stops
	SetActive(active bool) error

	// GetLatencySamples returns the plugin's latency in samples
	GetLatencySamples() int32

	// GetTailSamples returns the tail length in samples
	GetTailSamples() int32
}

// CapabilityProvider is implemented by plugins that answer host capability
// queries. Plugins without it answer Maybe to everything.
type CapabilityProvider interface {
	Capabilities() *plugin.Capabilities
}

// EditorProvider is implemented by processors that offer an editor.
type EditorProvider interface {
	Editor() (*editor.Editor, error)
}
