// Package flchen is the FL-Chen instrument: a mode selector played from the
// keyboard and a transport-following position, shown on an embedded web
// control surface.
package flchen

import (
	"github.com/wehiroi/flchen/pkg/editor"
	"github.com/wehiroi/flchen/pkg/framework/bus"
	"github.com/wehiroi/flchen/pkg/framework/config"
	"github.com/wehiroi/flchen/pkg/framework/debug"
	fwplugin "github.com/wehiroi/flchen/pkg/framework/plugin"
	"github.com/wehiroi/flchen/pkg/framework/process"
	"github.com/wehiroi/flchen/pkg/framework/query"
	"github.com/wehiroi/flchen/pkg/framework/router"
	"github.com/wehiroi/flchen/pkg/framework/state"
	"github.com/wehiroi/flchen/pkg/plugin"
)

const (
	PluginID = "com.wehiroi.flchen"
	Name     = "FL-Chen"
	Vendor   = "Wehiroi"
	UniqueID = 9614
	Version  = "0.1.0"
)

// Info returns the FL-Chen descriptor.
func Info() fwplugin.Info {
	return fwplugin.Info{
		ID:         PluginID,
		Name:       Name,
		Version:    Version,
		Vendor:     Vendor,
		UniqueID:   UniqueID,
		Category:   fwplugin.CategorySynth,
		Inputs:     2,
		Outputs:    2,
		Parameters: 0,
	}
}

// Plugin creates FL-Chen processors.
type Plugin struct {
	cfg    config.Config
	logger *debug.Logger
}

// New creates the plugin with the given settings. A nil logger uses the
// debug package default.
func New(cfg config.Config, logger *debug.Logger) *Plugin {
	if logger == nil {
		logger = debug.Default()
	}
	return &Plugin{cfg: cfg, logger: logger}
}

// Register registers FL-Chen as the hosted plugin and applies the instance
// settings from cfg.
func Register(cfg config.Config, logger *debug.Logger) *Plugin {
	p := New(cfg, logger)
	plugin.SetConfig(plugin.Config{
		SampleRate: cfg.SampleRate,
		BlockSize:  int32(cfg.BlockSize),
		Profile:    cfg.Profile,
		Logger:     p.logger,
	})
	plugin.Register(p)
	return p
}

// GetInfo implements plugin.Plugin.
func (p *Plugin) GetInfo() fwplugin.Info {
	return Info()
}

// Capabilities reports that FL-Chen takes MIDI and is noncommittal about
// everything else.
func (p *Plugin) Capabilities() *fwplugin.Capabilities {
	return fwplugin.NewCapabilities(fwplugin.Maybe).
		Set(fwplugin.CanDoReceiveMidiEvent, fwplugin.Yes)
}

// CreateProcessor implements plugin.Plugin. Each call owns fresh state.
func (p *Plugin) CreateProcessor() plugin.Processor {
	return NewProcessor(p.cfg, p.logger)
}

// Processor owns one instance's shared state. The router writes it from
// the processing thread and the bridge reads it for the control surface.
type Processor struct {
	*fwplugin.BaseProcessor

	state  *state.Shared
	router *router.Router
	bridge *query.Bridge

	editorOpts editor.Options
}

// NewProcessor creates a processor with mode 0 at position 0.
func NewProcessor(cfg config.Config, logger *debug.Logger) *Processor {
	if logger == nil {
		logger = debug.Default()
	}
	s := state.NewShared()
	p := &Processor{
		BaseProcessor: fwplugin.NewBaseProcessor(bus.NewInstrumentConfiguration()),
		state:         s,
		router:        router.New(s, logger.Named("router")),
		bridge:        query.NewBridge(s),
		editorOpts: editor.Options{
			Title:        Name,
			Width:        cfg.Editor.Width,
			Height:       cfg.Editor.Height,
			PollInterval: cfg.PollInterval(),
			Logger:       logger.Named("editor"),
		},
	}
	p.OnReset(p.router.Reset)
	return p
}

// ProcessAudio applies the block's events and transport position. Audio
// buffers are left untouched.
func (p *Processor) ProcessAudio(ctx *process.Context) {
	p.router.ProcessBlock(ctx)
}

// Editor builds the control surface bound to this instance's bridge.
func (p *Processor) Editor() (*editor.Editor, error) {
	return editor.New(p.bridge.Callback(), p.editorOpts)
}

// State returns the instance's shared state.
func (p *Processor) State() *state.Shared {
	return p.state
}

// Router returns the instance's event router.
func (p *Processor) Router() *router.Router {
	return p.router
}

// Bridge returns the instance's query bridge.
func (p *Processor) Bridge() *query.Bridge {
	return p.bridge
}
