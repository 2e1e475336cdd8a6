package debug

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Profiler records timing statistics for named sections such as a process
// cycle or a control-surface query.
type Profiler struct {
	mu           sync.RWMutex
	measurements map[string]*Measurement
	enabled      atomic.Bool
	maxSamples   int
}

// Measurement holds timing statistics for a profiled section.
type Measurement struct {
	name        string
	count       uint64
	totalTime   time.Duration
	minTime     time.Duration
	maxTime     time.Duration
	lastTime    time.Duration
	samples     []time.Duration
	sampleIndex int
}

// NewProfiler creates a disabled profiler keeping the last maxSamples
// timings per section.
func NewProfiler(maxSamples int) *Profiler {
	if maxSamples <= 0 {
		maxSamples = 1
	}
	return &Profiler{
		measurements: make(map[string]*Measurement),
		maxSamples:   maxSamples,
	}
}

// SetEnabled enables or disables profiling.
func (p *Profiler) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// IsEnabled returns whether profiling is enabled.
func (p *Profiler) IsEnabled() bool {
	return p.enabled.Load()
}

func noop() {}

// Start begins timing a named section. The returned func stops it.
func (p *Profiler) Start(name string) func() {
	if !p.enabled.Load() {
		return noop
	}

	start := time.Now()
	return func() {
		p.record(name, time.Since(start))
	}
}

// Time measures the execution time of fn.
func (p *Profiler) Time(name string, fn func()) {
	stop := p.Start(name)
	defer stop()
	fn()
}

func (p *Profiler) record(name string, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, ok := p.measurements[name]
	if !ok {
		m = &Measurement{
			name:    name,
			minTime: elapsed,
			maxTime: elapsed,
			samples: make([]time.Duration, p.maxSamples),
		}
		p.measurements[name] = m
	}

	m.count++
	m.totalTime += elapsed
	m.lastTime = elapsed
	if elapsed < m.minTime {
		m.minTime = elapsed
	}
	if elapsed > m.maxTime {
		m.maxTime = elapsed
	}

	m.samples[m.sampleIndex] = elapsed
	m.sampleIndex = (m.sampleIndex + 1) % p.maxSamples
}

// GetMeasurement returns a copy of the measurement for a named section.
func (p *Profiler) GetMeasurement(name string) (Measurement, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	m, ok := p.measurements[name]
	if !ok {
		return Measurement{}, false
	}
	return m.clone(), true
}

// Names returns the recorded section names in sorted order.
func (p *Profiler) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.measurements))
	for name := range p.measurements {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset clears all measurements.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.measurements = make(map[string]*Measurement)
}

// Report renders every measurement as text, sorted by name.
func (p *Profiler) Report() string {
	names := p.Names()
	if len(names) == 0 {
		return "No measurements recorded"
	}

	var sb strings.Builder
	sb.WriteString("Performance Report:\n")
	sb.WriteString("==================\n\n")

	for _, name := range names {
		m, ok := p.GetMeasurement(name)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "%s:\n", name)
		fmt.Fprintf(&sb, "  Count:   %d\n", m.count)
		fmt.Fprintf(&sb, "  Average: %v\n", m.Average())
		fmt.Fprintf(&sb, "  Min:     %v\n", m.minTime)
		fmt.Fprintf(&sb, "  Max:     %v\n", m.maxTime)
		fmt.Fprintf(&sb, "  P99:     %v\n", m.Percentile(99))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *Measurement) clone() Measurement {
	c := *m
	c.samples = append([]time.Duration(nil), m.samples...)
	return c
}

// Name returns the section name.
func (m Measurement) Name() string { return m.name }

// Count returns how many timings were recorded.
func (m Measurement) Count() uint64 { return m.count }

// Last returns the most recent timing.
func (m Measurement) Last() time.Duration { return m.lastTime }

// Max returns the longest timing.
func (m Measurement) Max() time.Duration { return m.maxTime }

// Average returns the mean timing.
func (m Measurement) Average() time.Duration {
	if m.count == 0 {
		return 0
	}
	return m.totalTime / time.Duration(m.count)
}

// Percentile returns the p-th percentile over the retained samples.
func (m Measurement) Percentile(p float64) time.Duration {
	n := len(m.samples)
	if m.count < uint64(n) {
		n = int(m.count)
	}
	if n == 0 {
		return 0
	}

	sorted := append([]time.Duration(nil), m.samples[:n]...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	index := int(float64(n-1) * p / 100.0)
	if index < 0 {
		index = 0
	}
	if index >= n {
		index = n - 1
	}
	return sorted[index]
}

// CycleProfiler relates process-cycle timings to the real-time budget of a
// block at the current sample rate.
type CycleProfiler struct {
	*Profiler
	mu         sync.Mutex
	sampleRate float64
	blockSize  int
}

// CycleSection is the section name CycleProfiler uses for process cycles.
const CycleSection = "process"

// NewCycleProfiler creates a cycle profiler.
func NewCycleProfiler(sampleRate float64, blockSize int) *CycleProfiler {
	return &CycleProfiler{
		Profiler:   NewProfiler(1000),
		sampleRate: sampleRate,
		blockSize:  blockSize,
	}
}

// SetFormat updates the block budget after a sample rate or block size change.
func (c *CycleProfiler) SetFormat(sampleRate float64, blockSize int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sampleRate = sampleRate
	c.blockSize = blockSize
}

// Budget returns the wall-clock duration of one block.
func (c *CycleProfiler) Budget() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(c.blockSize) / c.sampleRate * float64(time.Second))
}

// Load returns the average cycle time as a percentage of the block budget.
func (c *CycleProfiler) Load() float64 {
	m, ok := c.GetMeasurement(CycleSection)
	budget := c.Budget()
	if !ok || budget == 0 {
		return 0
	}
	return float64(m.Average()) / float64(budget) * 100
}

// CycleReport extends Report with the block budget and load.
func (c *CycleProfiler) CycleReport() string {
	c.mu.Lock()
	rate, size := c.sampleRate, c.blockSize
	c.mu.Unlock()

	var sb strings.Builder
	sb.WriteString(c.Report())
	sb.WriteString("\nCycle Stats:\n")
	fmt.Fprintf(&sb, "  Sample Rate:  %.0f Hz\n", rate)
	fmt.Fprintf(&sb, "  Block Size:   %d samples\n", size)
	fmt.Fprintf(&sb, "  Budget:       %v\n", c.Budget())
	fmt.Fprintf(&sb, "  Load:         %.2f%%\n", c.Load())
	return sb.String()
}
