package plugin

// Supported is a host capability answer.
type Supported int32

const (
	No    Supported = -1
	Maybe Supported = 0
	Yes   Supported = 1
)

func (s Supported) String() string {
	switch s {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "maybe"
	}
}

// Capability names a host may ask about.
const (
	CanDoSendEvents         = "sendVstEvents"
	CanDoSendMidiEvent      = "sendVstMidiEvent"
	CanDoReceiveEvents      = "receiveVstEvents"
	CanDoReceiveMidiEvent   = "receiveVstMidiEvent"
	CanDoReceiveTimeInfo    = "receiveVstTimeInfo"
	CanDoOffline            = "offline"
	CanDoMidiProgramNames   = "midiProgramNames"
	CanDoBypass             = "bypass"
	CanDoReceiveSysexEvent  = "receiveVstSysexEvent"
	CanDoMidiSingleNoteTune = "midiSingleNoteTuningChange"
	CanDoMidiKeyBasedInst   = "midiKeyBasedInstrumentControl"
)

// Capabilities answers host capability queries. Unlisted capabilities get
// the fallback answer.
type Capabilities struct {
	answers  map[string]Supported
	fallback Supported
}

// NewCapabilities creates a capability table with the given fallback.
func NewCapabilities(fallback Supported) *Capabilities {
	return &Capabilities{
		answers:  make(map[string]Supported),
		fallback: fallback,
	}
}

// Set records an answer for a capability and returns c for chaining.
func (c *Capabilities) Set(name string, answer Supported) *Capabilities {
	c.answers[name] = answer
	return c
}

// CanDo answers a capability query.
func (c *Capabilities) CanDo(name string) Supported {
	if answer, ok := c.answers[name]; ok {
		return answer
	}
	return c.fallback
}
