// Package bus describes the audio and event buses a plugin exposes to its
// host.
package bus

import "fmt"

// MediaType represents the type of bus
type MediaType int32

const (
	// MediaTypeAudio represents audio bus type
	MediaTypeAudio MediaType = 0
	// MediaTypeEvent represents event/MIDI bus type
	MediaTypeEvent MediaType = 1
)

// Direction represents the bus direction
type Direction int32

const (
	// DirectionInput represents input bus
	DirectionInput Direction = 0
	// DirectionOutput represents output bus
	DirectionOutput Direction = 1
)

// Type represents the bus type
type Type int32

const (
	TypeMain Type = 0
	TypeAux  Type = 1
)

// Info contains bus configuration
type Info struct {
	MediaType    MediaType
	Direction    Direction
	ChannelCount int32
	Name         string
	BusType      Type
	IsActive     bool
}

// Configuration manages audio and event buses
type Configuration struct {
	audioBuses []Info
	eventBuses []Info
}

func stereo(direction Direction, name string) Info {
	return Info{
		MediaType:    MediaTypeAudio,
		Direction:    direction,
		ChannelCount: 2,
		Name:         name,
		BusType:      TypeMain,
		IsActive:     true,
	}
}

// NewStereoConfiguration creates a standard stereo I/O configuration
func NewStereoConfiguration() *Configuration {
	return &Configuration{
		audioBuses: []Info{
			stereo(DirectionInput, "Stereo In"),
			stereo(DirectionOutput, "Stereo Out"),
		},
	}
}

// NewInstrumentConfiguration creates stereo I/O plus one event input, the
// layout of an instrument that listens to a MIDI track.
func NewInstrumentConfiguration() *Configuration {
	c := NewStereoConfiguration()
	c.AddEventBus(DirectionInput, "MIDI In")
	return c
}

func (c *Configuration) buses(mediaType MediaType) []Info {
	if mediaType == MediaTypeEvent {
		return c.eventBuses
	}
	return c.audioBuses
}

// GetBusCount returns the number of buses for a given type and direction
func (c *Configuration) GetBusCount(mediaType MediaType, direction Direction) int32 {
	count := int32(0)
	for _, bus := range c.buses(mediaType) {
		if bus.Direction == direction {
			count++
		}
	}
	return count
}

// GetBusInfo returns information about a specific bus
func (c *Configuration) GetBusInfo(mediaType MediaType, direction Direction, index int32) *Info {
	buses := c.buses(mediaType)

	busIndex := int32(0)
	for i := range buses {
		if buses[i].Direction == direction {
			if busIndex == index {
				return &buses[i]
			}
			busIndex++
		}
	}
	return nil
}

// AddEventBus adds an event bus (for MIDI input)
func (c *Configuration) AddEventBus(direction Direction, name string) {
	c.eventBuses = append(c.eventBuses, Info{
		MediaType:    MediaTypeEvent,
		Direction:    direction,
		ChannelCount: 1,
		Name:         name,
		BusType:      TypeMain,
		IsActive:     true,
	})
}

// SetBusActive activates or deactivates a bus at the host's request.
func (c *Configuration) SetBusActive(mediaType MediaType, direction Direction, index int32, active bool) error {
	bus := c.GetBusInfo(mediaType, direction, index)
	if bus == nil {
		return fmt.Errorf("bus: no %s bus %d (media type %d)", direction, index, mediaType)
	}
	bus.IsActive = active
	return nil
}

func (c *Configuration) activeChannels(direction Direction) int32 {
	total := int32(0)
	for _, bus := range c.audioBuses {
		if bus.Direction == direction && bus.IsActive {
			total += bus.ChannelCount
		}
	}
	return total
}

// GetActiveInputChannelCount returns the total channels on active audio inputs.
func (c *Configuration) GetActiveInputChannelCount() int32 {
	return c.activeChannels(DirectionInput)
}

// GetActiveOutputChannelCount returns the total channels on active audio outputs.
func (c *Configuration) GetActiveOutputChannelCount() int32 {
	return c.activeChannels(DirectionOutput)
}

// AcceptsEvents reports whether an active event input exists.
func (c *Configuration) AcceptsEvents() bool {
	for _, bus := range c.eventBuses {
		if bus.Direction == DirectionInput && bus.IsActive {
			return true
		}
	}
	return false
}

func (d Direction) String() string {
	if d == DirectionOutput {
		return "output"
	}
	return "input"
}
