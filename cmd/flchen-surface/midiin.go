package main

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"github.com/wehiroi/flchen/pkg/plugin"
)

// rawEvent copies a short MIDI message into a host event. Longer messages
// such as SysEx are not forwarded.
func rawEvent(msg gomidi.Message) (plugin.RawEvent, bool) {
	var ev plugin.RawEvent
	if len(msg) == 0 || len(msg) > len(ev.Data) {
		return ev, false
	}
	copy(ev.Data[:], msg)
	return ev, true
}

// listenMIDI forwards messages from the named input port to the host. The
// returned func stops listening.
func listenMIDI(name string, h *host) (func(), error) {
	in, err := gomidi.FindInPort(name)
	if err != nil {
		return nil, fmt.Errorf("find MIDI input %q: %w", name, err)
	}

	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		if ev, ok := rawEvent(msg); ok {
			h.Send(ev)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", in, err)
	}
	h.logger.Info("listening on MIDI input %s", in)
	return stop, nil
}

// inPortNames lists the available MIDI inputs.
func inPortNames() []string {
	var names []string
	for _, in := range gomidi.GetInPorts() {
		names = append(names, in.String())
	}
	return names
}
