package plugin

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/wehiroi/flchen/pkg/editor"
	"github.com/wehiroi/flchen/pkg/framework/bus"
	"github.com/wehiroi/flchen/pkg/framework/debug"
	"github.com/wehiroi/flchen/pkg/framework/plugin"
	"github.com/wehiroi/flchen/pkg/framework/process"
	"github.com/wehiroi/flchen/pkg/framework/transport"
	"github.com/wehiroi/flchen/pkg/midi"
)

var (
	// ErrNoPlugin is returned when an instance is requested before Register.
	ErrNoPlugin = errors.New("plugin: no plugin registered")
	// ErrNoEditor is returned by Editor for processors without one.
	ErrNoEditor = errors.New("plugin: processor has no editor")
	// ErrClosed is returned by calls on a closed instance.
	ErrClosed = errors.New("plugin: instance closed")
	// ErrBlockTooLarge is returned by Process for blocks longer than the
	// announced maximum block size.
	ErrBlockTooLarge = errors.New("plugin: block exceeds maximum block size")
)

// Config controls how instances are created.
type Config struct {
	// SampleRate is used until the host calls SetSampleRate.
	SampleRate float64
	// BlockSize is used until the host calls SetBlockSize.
	BlockSize int32
	// MaxQueuedEvents bounds the events held between two blocks. Events
	// beyond it are dropped and counted.
	MaxQueuedEvents int
	// Profile enables cycle timing.
	Profile bool
	// Logger receives instance logs. Nil uses the debug package default.
	Logger *debug.Logger
}

// DefaultConfig returns the settings used when SetConfig is never called.
func DefaultConfig() Config {
	return Config{
		SampleRate:      44100,
		BlockSize:       512,
		MaxQueuedEvents: 4096,
	}
}

var (
	registryMu   sync.RWMutex
	globalPlugin Plugin
	globalConfig = DefaultConfig()

	// Instances indexed by handle, for callers that cannot hold Go pointers.
	instances   = make(map[uintptr]*Instance)
	instancesMu sync.RWMutex
	nextHandle  uintptr = 1
)

// Register sets the plugin that NewInstance creates instances of.
func Register(p Plugin) {
	registryMu.Lock()
	defer registryMu.Unlock()
	globalPlugin = p
}

// SetConfig sets the configuration for instances created afterwards.
func SetConfig(cfg Config) {
	registryMu.Lock()
	defer registryMu.Unlock()
	globalConfig = cfg
}

func registered() (Plugin, Config) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return globalPlugin, globalConfig
}

// RawEvent is a short MIDI message as a host delivers it.
type RawEvent struct {
	Data        [3]byte
	DeltaFrames int32
}

// Instance is one host-side instantiation of the registered plugin.
//
// The host drives ProcessEvents and Process from its audio thread and the
// remaining calls from its main thread, never both for the same call at
// once. Editor callbacks run on the UI thread.
type Instance struct {
	handle    uintptr
	info      plugin.Info
	caps      *plugin.Capabilities
	processor Processor
	logger    *debug.Logger
	profiler  *debug.CycleProfiler

	mu         sync.Mutex
	ctx        *process.Context
	sampleRate float64
	blockSize  int32
	needsInit  bool
	active     bool

	dropped atomic.Uint64
	closed  atomic.Bool
}

// NewInstance creates an instance of the registered plugin that reads the
// transport from host. host may be nil.
func NewInstance(host transport.Host) (*Instance, error) {
	p, cfg := registered()
	if p == nil {
		return nil, ErrNoPlugin
	}

	info := p.GetInfo()
	if err := info.Validate(); err != nil {
		return nil, err
	}

	processor := p.CreateProcessor()
	if processor == nil {
		return nil, fmt.Errorf("plugin: %s created no processor", info.Name)
	}

	caps := plugin.NewCapabilities(plugin.Maybe)
	if cp, ok := p.(CapabilityProvider); ok {
		caps = cp.Capabilities()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = debug.Default()
	}
	defaults := DefaultConfig()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = defaults.SampleRate
	}
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = defaults.BlockSize
	}
	if cfg.MaxQueuedEvents <= 0 {
		cfg.MaxQueuedEvents = defaults.MaxQueuedEvents
	}

	inst := &Instance{
		info:       info,
		caps:       caps,
		processor:  processor,
		logger:     logger.Named("instance"),
		profiler:   debug.NewCycleProfiler(cfg.SampleRate, int(cfg.BlockSize)),
		ctx:        process.NewContext(int(cfg.BlockSize), cfg.MaxQueuedEvents, host),
		sampleRate: cfg.SampleRate,
		blockSize:  cfg.BlockSize,
	}
	inst.ctx.SampleRate = cfg.SampleRate
	inst.profiler.SetEnabled(cfg.Profile)

	if err := processor.Initialize(cfg.SampleRate, cfg.BlockSize); err != nil {
		return nil, fmt.Errorf("plugin: initialize %s: %w", info.Name, err)
	}

	instancesMu.Lock()
	inst.handle = nextHandle
	nextHandle++
	instances[inst.handle] = inst
	instancesMu.Unlock()

	inst.logger.Debug("created %s instance %d at %.0f Hz", info.Name, inst.handle, cfg.SampleRate)
	return inst, nil
}

// Lookup returns the live instance with the given handle, or nil.
func Lookup(handle uintptr) *Instance {
	if handle == 0 {
		return nil
	}
	instancesMu.RLock()
	defer instancesMu.RUnlock()
	return instances[handle]
}

// recoverPanic keeps a panic inside a host callback from unwinding into the
// host.
func (i *Instance) recoverPanic(operation string) {
	if r := recover(); r != nil {
		i.logger.Error("panic in %s: %v", operation, r)
	}
}

// Handle returns the integer handle for Lookup.
func (i *Instance) Handle() uintptr {
	return i.handle
}

// Info returns the plugin descriptor.
func (i *Instance) Info() plugin.Info {
	return i.info
}

// Processor returns the instance's processor.
func (i *Instance) Processor() Processor {
	return i.processor
}

// Profiler returns the cycle profiler. It records only when enabled.
func (i *Instance) Profiler() *debug.CycleProfiler {
	return i.profiler
}

// CanDo answers a host capability query.
func (i *Instance) CanDo(capability string) plugin.Supported {
	return i.caps.CanDo(capability)
}

// SetSampleRate records a new sample rate. The processor is reinitialized
// on the next activation or block.
func (i *Instance) SetSampleRate(rate float32) {
	if rate <= 0 {
		i.logger.Warn("ignoring sample rate %v", rate)
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.sampleRate = float64(rate)
	i.ctx.SampleRate = float64(rate)
	i.needsInit = true
}

// SetBlockSize records the largest block the host will process.
func (i *Instance) SetBlockSize(n int32) {
	if n <= 0 {
		i.logger.Warn("ignoring block size %d", n)
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.blockSize = n
	i.ctx.SetMaxBlockSize(int(n))
	i.needsInit = true
}

// SampleRate returns the current sample rate.
func (i *Instance) SampleRate() float64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.sampleRate
}

// initLocked reinitializes the processor after a format change.
func (i *Instance) initLocked() error {
	if !i.needsInit {
		return nil
	}
	i.needsInit = false
	i.profiler.SetFormat(i.sampleRate, int(i.blockSize))
	return i.processor.Initialize(i.sampleRate, i.blockSize)
}

// SetActive starts or stops processing. Deactivation drops queued events.
func (i *Instance) SetActive(active bool) error {
	if i.closed.Load() {
		return ErrClosed
	}
	defer i.recoverPanic("SetActive")

	i.mu.Lock()
	defer i.mu.Unlock()

	if active {
		if err := i.initLocked(); err != nil {
			return fmt.Errorf("plugin: initialize: %w", err)
		}
	} else {
		i.ctx.ClearInputEvents()
	}
	if err := i.processor.SetActive(active); err != nil {
		return fmt.Errorf("plugin: set active %v: %w", active, err)
	}
	i.active = active
	return nil
}

// IsActive reports whether the host has activated processing.
func (i *Instance) IsActive() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.active
}

// ProcessEvents decodes and queues host events for the next block. It
// returns how many were accepted. Undecodable events, events beyond the
// queue bound and all events while the event input bus is inactive are
// dropped and counted.
func (i *Instance) ProcessEvents(events []RawEvent) int {
	if i.closed.Load() {
		return 0
	}
	defer i.recoverPanic("ProcessEvents")

	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.processor.GetBuses().AcceptsEvents() {
		i.drop(uint64(len(events)), "event input inactive")
		return 0
	}

	accepted := 0
	for n := range events {
		ev := &events[n]
		e, err := midi.Parse(ev.Data[:], ev.DeltaFrames)
		if err != nil {
			i.drop(1, err.Error())
			continue
		}
		if !i.ctx.AddInputEvent(e) {
			i.drop(uint64(len(events)-n), "event queue full")
			break
		}
		accepted++
	}
	return accepted
}

func (i *Instance) drop(n uint64, reason string) {
	total := i.dropped.Add(n)
	if total == n {
		i.logger.Warn("dropping events: %s", reason)
	}
}

// DroppedEvents returns how many host events were discarded.
func (i *Instance) DroppedEvents() uint64 {
	return i.dropped.Load()
}

// Process runs one block. The buffers are handed to the processor as is.
func (i *Instance) Process(inputs, outputs [][]float32) (err error) {
	if i.closed.Load() {
		return ErrClosed
	}
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("panic in Process: %v", r)
			err = fmt.Errorf("plugin: process panicked: %v", r)
		}
	}()

	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.initLocked(); err != nil {
		return fmt.Errorf("plugin: initialize: %w", err)
	}

	i.ctx.Input = inputs
	i.ctx.Output = outputs
	defer func() {
		i.ctx.Input = nil
		i.ctx.Output = nil
	}()
	if n := i.ctx.NumSamples(); n > i.ctx.MaxBlockSize() {
		return fmt.Errorf("%w: %d > %d", ErrBlockTooLarge, n, i.ctx.MaxBlockSize())
	}

	stop := i.profiler.Start(debug.CycleSection)
	i.processor.ProcessAudio(i.ctx)
	stop()
	return nil
}

// BusCount returns how many buses of a kind the processor exposes.
func (i *Instance) BusCount(mediaType bus.MediaType, direction bus.Direction) int32 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.processor.GetBuses().GetBusCount(mediaType, direction)
}

// BusInfo returns a copy of one bus description.
func (i *Instance) BusInfo(mediaType bus.MediaType, direction bus.Direction, index int32) (bus.Info, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	info := i.processor.GetBuses().GetBusInfo(mediaType, direction, index)
	if info == nil {
		return bus.Info{}, false
	}
	return *info, true
}

// SetBusActive activates or deactivates a bus at the host's request.
func (i *Instance) SetBusActive(mediaType bus.MediaType, direction bus.Direction, index int32, active bool) error {
	if i.closed.Load() {
		return ErrClosed
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.processor.GetBuses().SetBusActive(mediaType, direction, index, active)
}

// Channels returns the channel counts of the active audio inputs and
// outputs, which size the buffers the host passes to Process.
func (i *Instance) Channels() (inputs, outputs int32) {
	i.mu.Lock()
	defer i.mu.Unlock()
	b := i.processor.GetBuses()
	return b.GetActiveInputChannelCount(), b.GetActiveOutputChannelCount()
}

// LatencySamples returns the processor's latency.
func (i *Instance) LatencySamples() int32 {
	return i.processor.GetLatencySamples()
}

// TailSamples returns how long the processor keeps sounding after input
// stops.
func (i *Instance) TailSamples() int32 {
	return i.processor.GetTailSamples()
}

// Editor returns the processor's editor.
func (i *Instance) Editor() (*editor.Editor, error) {
	if i.closed.Load() {
		return nil, ErrClosed
	}
	ep, ok := i.processor.(EditorProvider)
	if !ok {
		return nil, ErrNoEditor
	}
	return ep.Editor()
}

// Close deactivates the instance and releases its handle. Further calls
// fail with ErrClosed.
func (i *Instance) Close() error {
	if i.closed.Swap(true) {
		return nil
	}
	defer i.recoverPanic("Close")

	instancesMu.Lock()
	delete(instances, i.handle)
	instancesMu.Unlock()

	i.mu.Lock()
	defer i.mu.Unlock()
	i.ctx.ClearInputEvents()
	if i.active {
		i.active = false
		if err := i.processor.SetActive(false); err != nil {
			return fmt.Errorf("plugin: deactivate on close: %w", err)
		}
	}
	i.logger.Debug("closed instance %d", i.handle)
	return nil
}
