// Command flchen-surface hosts one FL-Chen instance on a simulated
// transport and shows its control surface in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/wehiroi/flchen/pkg/flchen"
	"github.com/wehiroi/flchen/pkg/framework/bus"
	"github.com/wehiroi/flchen/pkg/framework/config"
	"github.com/wehiroi/flchen/pkg/framework/debug"
	"github.com/wehiroi/flchen/pkg/framework/transport"
	"github.com/wehiroi/flchen/pkg/plugin"
)

func main() {
	defaultPath, err := config.DefaultPath()
	if err != nil {
		defaultPath = ""
	}
	configPath := flag.String("config", defaultPath, "config file (.toml, .yaml)")
	listPorts := flag.Bool("list-midi", false, "list MIDI inputs and exit")
	flag.Parse()

	if *listPorts {
		defer gomidi.CloseDriver()
		for _, name := range inPortNames() {
			fmt.Println(name)
		}
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, closer, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	clock := transport.NewClock(cfg.SampleRate, cfg.Surface.Tempo)
	flchen.Register(cfg, logger)

	inst, err := plugin.NewInstance(clock)
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	defer inst.Close()

	if err := inst.SetActive(true); err != nil {
		return err
	}
	ed, err := inst.Editor()
	if err != nil {
		return fmt.Errorf("open editor: %w", err)
	}

	logLayout(inst, logger)
	h := newHost(inst, clock, cfg.BlockSize, logger.Named("host"))

	if cfg.Surface.MidiIn != "" {
		defer gomidi.CloseDriver()
		stop, err := listenMIDI(cfg.Surface.MidiIn, h)
		if err != nil {
			return fmt.Errorf("%w (available: %s)", err, strings.Join(inPortNames(), ", "))
		}
		defer stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	m := newModel(ed, h, clock, inst, cfg.PollInterval())
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	cancel()
	if inst.Profiler().IsEnabled() {
		logger.Info("%s", inst.Profiler().CycleReport())
	}
	return nil
}

// logLayout records the buses the instance exposes to its host.
func logLayout(inst *plugin.Instance, logger *debug.Logger) {
	for _, media := range []bus.MediaType{bus.MediaTypeAudio, bus.MediaTypeEvent} {
		for _, dir := range []bus.Direction{bus.DirectionInput, bus.DirectionOutput} {
			for n := int32(0); n < inst.BusCount(media, dir); n++ {
				info, _ := inst.BusInfo(media, dir, n)
				logger.Info("bus %s %d: %s, %d channels", dir, n, info.Name, info.ChannelCount)
			}
		}
	}
	in, out := inst.Channels()
	logger.Info("channels %d in, %d out; latency %d, tail %d samples",
		in, out, inst.LatencySamples(), inst.TailSamples())
}

// newLogger writes to log_file when set. Otherwise logs are discarded,
// since the terminal belongs to the surface.
func newLogger(cfg config.Config) (*debug.Logger, io.Closer, error) {
	path, err := cfg.LogPath()
	if err != nil {
		return nil, nil, err
	}

	var logger *debug.Logger
	var closer io.Closer = io.NopCloser(nil)
	if path == "" {
		logger = debug.New(io.Discard, "flchen", debug.DefaultFlags)
	} else {
		var c io.Closer
		logger, c, err = debug.NewFileLogger(path, "flchen", debug.DefaultFlags|debug.FlagShortFile)
		if err != nil {
			return nil, nil, err
		}
		closer = c
	}
	logger.SetLevel(cfg.Level())
	return logger, closer, nil
}
