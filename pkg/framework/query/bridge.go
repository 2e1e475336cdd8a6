// Package query answers text commands from the control surface with values
// read from an instance's shared state.
package query

import (
	"strconv"
	"strings"

	"github.com/wehiroi/flchen/pkg/editor"
	"github.com/wehiroi/flchen/pkg/framework/state"
)

// Command is a recognised control-surface request.
type Command uint8

const (
	CommandUnknown Command = iota
	CommandGetMode
	CommandGetTime
)

var commandNames = map[string]Command{
	"getMode": CommandGetMode,
	"getTime": CommandGetTime,
}

// ParseCommand returns the command named by the first whitespace-separated
// token of line. Further tokens are ignored.
func ParseCommand(line string) Command {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return CommandUnknown
	}
	return commandNames[fields[0]]
}

func (c Command) String() string {
	switch c {
	case CommandGetMode:
		return "getMode"
	case CommandGetTime:
		return "getTime"
	default:
		return "unknown"
	}
}

// Bridge reads shared state on behalf of the control surface.
type Bridge struct {
	state *state.Shared
}

// NewBridge creates a bridge over s.
func NewBridge(s *state.Shared) *Bridge {
	return &Bridge{state: s}
}

// Handle answers one command line. Unknown or empty commands yield "".
func (b *Bridge) Handle(line string) string {
	switch ParseCommand(line) {
	case CommandGetMode:
		return FormatMode(b.state.Mode())
	case CommandGetTime:
		return FormatPosition(b.state.Position())
	default:
		return ""
	}
}

// Callback exposes Handle as an editor callback.
func (b *Bridge) Callback() editor.Callback {
	return b.Handle
}

// FormatMode renders a mode as a decimal integer.
func FormatMode(m state.Mode) string {
	return strconv.FormatUint(uint64(m), 10)
}

// FormatPosition renders a position as the shortest decimal that parses
// back to the same value, without an exponent.
func FormatPosition(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
