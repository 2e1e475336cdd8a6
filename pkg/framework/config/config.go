// Package config loads instance and harness settings from a TOML or YAML
// file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/wehiroi/flchen/pkg/framework/debug"
)

// ErrUnknownFormat is returned for config files that are neither TOML nor YAML.
var ErrUnknownFormat = errors.New("config: unknown file format")

const defaultPath = "~/.config/flchen/config.toml"

// Config holds every setting. Zero values are replaced by defaults on load.
type Config struct {
	LogLevel   string  `toml:"log_level" yaml:"log_level"`
	LogFile    string  `toml:"log_file" yaml:"log_file"`
	Profile    bool    `toml:"profile" yaml:"profile"`
	SampleRate float64 `toml:"sample_rate" yaml:"sample_rate"`
	BlockSize  int     `toml:"block_size" yaml:"block_size"`

	Editor  Editor  `toml:"editor" yaml:"editor"`
	Surface Surface `toml:"surface" yaml:"surface"`
}

// Editor sizes the embedded control surface.
type Editor struct {
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`
}

// Surface configures the terminal development harness.
type Surface struct {
	Tempo        float64 `toml:"tempo" yaml:"tempo"`
	PollInterval string  `toml:"poll_interval" yaml:"poll_interval"`
	MidiIn       string  `toml:"midi_in" yaml:"midi_in"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:   "info",
		SampleRate: 44100,
		BlockSize:  512,
		Editor: Editor{
			Width:  460,
			Height: 600,
		},
		Surface: Surface{
			Tempo:        120,
			PollInterval: "50ms",
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	return homedir.Expand(defaultPath)
}

// Load reads path and fills unset fields with defaults. A missing file is
// not an error. The decoder is chosen by extension.
func Load(path string) (Config, error) {
	cfg := Default()

	p, err := homedir.Expand(path)
	if err != nil {
		return cfg, fmt.Errorf("config: expand %q: %w", path, err)
	}

	buf, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", p, err)
	}

	var loaded Config
	switch ext := strings.ToLower(filepath.Ext(p)); ext {
	case ".toml":
		err = toml.Unmarshal(buf, &loaded)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(buf, &loaded)
	default:
		return cfg, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", p, err)
	}

	cfg.merge(loaded)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) merge(o Config) {
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.LogFile != "" {
		c.LogFile = o.LogFile
	}
	c.Profile = c.Profile || o.Profile
	if o.SampleRate != 0 {
		c.SampleRate = o.SampleRate
	}
	if o.BlockSize != 0 {
		c.BlockSize = o.BlockSize
	}
	if o.Editor.Width != 0 {
		c.Editor.Width = o.Editor.Width
	}
	if o.Editor.Height != 0 {
		c.Editor.Height = o.Editor.Height
	}
	if o.Surface.Tempo != 0 {
		c.Surface.Tempo = o.Surface.Tempo
	}
	if o.Surface.PollInterval != "" {
		c.Surface.PollInterval = o.Surface.PollInterval
	}
	if o.Surface.MidiIn != "" {
		c.Surface.MidiIn = o.Surface.MidiIn
	}
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if _, err := debug.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample_rate must be positive, got %v", c.SampleRate))
	}
	if c.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("block_size must be positive, got %d", c.BlockSize))
	}
	if c.Editor.Width <= 0 || c.Editor.Height <= 0 {
		errs = append(errs, fmt.Errorf("editor size must be positive, got %dx%d", c.Editor.Width, c.Editor.Height))
	}
	if c.Surface.Tempo <= 0 {
		errs = append(errs, fmt.Errorf("surface.tempo must be positive, got %v", c.Surface.Tempo))
	}
	if d, err := time.ParseDuration(c.Surface.PollInterval); err != nil || d <= 0 {
		errs = append(errs, fmt.Errorf("surface.poll_interval %q is not a positive duration", c.Surface.PollInterval))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Level returns the parsed log level, or info when it cannot be parsed.
func (c Config) Level() debug.LogLevel {
	level, _ := debug.ParseLevel(c.LogLevel)
	return level
}

// PollInterval returns the surface polling period.
func (c Config) PollInterval() time.Duration {
	d, err := time.ParseDuration(c.Surface.PollInterval)
	if err != nil || d <= 0 {
		return 50 * time.Millisecond
	}
	return d
}

// LogPath returns LogFile with a leading ~ expanded.
func (c Config) LogPath() (string, error) {
	if c.LogFile == "" {
		return "", nil
	}
	return homedir.Expand(c.LogFile)
}
