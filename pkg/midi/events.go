// Package midi models the performance events a host delivers to the plugin
// and decodes their raw wire payloads.
package midi

import (
	"errors"
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

type EventType uint8

const (
	EventTypeNoteOff EventType = iota
	EventTypeNoteOn
	EventTypePolyPressure
	EventTypeControlChange
	EventTypeProgramChange
	EventTypeChannelPressure
	EventTypePitchBend
	EventTypeClock
	EventTypeStart
	EventTypeStop
	EventTypeContinue
	EventTypeTimeCode
	EventTypeSongPosition
	EventTypeSongSelect
)

var eventTypeNames = [...]string{
	EventTypeNoteOff:         "NoteOff",
	EventTypeNoteOn:          "NoteOn",
	EventTypePolyPressure:    "PolyPressure",
	EventTypeControlChange:   "ControlChange",
	EventTypeProgramChange:   "ProgramChange",
	EventTypeChannelPressure: "ChannelPressure",
	EventTypePitchBend:       "PitchBend",
	EventTypeClock:           "Clock",
	EventTypeStart:           "Start",
	EventTypeStop:            "Stop",
	EventTypeContinue:        "Continue",
	EventTypeTimeCode:        "TimeCode",
	EventTypeSongPosition:    "SongPosition",
	EventTypeSongSelect:      "SongSelect",
}

func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return fmt.Sprintf("EventType(%d)", uint8(t))
}

// Event is a single performance event positioned inside a processing block.
type Event interface {
	Type() EventType
	Channel() uint8
	SampleOffset() int32
	// Message returns the event's MIDI wire encoding.
	Message() gomidi.Message
	String() string
}

type BaseEvent struct {
	EventChannel uint8
	Offset       int32
}

func (e BaseEvent) Channel() uint8 {
	return e.EventChannel
}

func (e BaseEvent) SampleOffset() int32 {
	return e.Offset
}

type NoteOnEvent struct {
	BaseEvent
	NoteNumber uint8
	Velocity   uint8
}

func (e NoteOnEvent) Type() EventType { return EventTypeNoteOn }

func (e NoteOnEvent) Message() gomidi.Message {
	return gomidi.NoteOn(e.EventChannel, e.NoteNumber, e.Velocity)
}

func (e NoteOnEvent) String() string {
	return fmt.Sprintf("NoteOn{ch:%d, note:%d, vel:%d, offset:%d}",
		e.EventChannel, e.NoteNumber, e.Velocity, e.Offset)
}

type NoteOffEvent struct {
	BaseEvent
	NoteNumber uint8
	Velocity   uint8
}

func (e NoteOffEvent) Type() EventType { return EventTypeNoteOff }

func (e NoteOffEvent) Message() gomidi.Message {
	return gomidi.NoteOffVelocity(e.EventChannel, e.NoteNumber, e.Velocity)
}

func (e NoteOffEvent) String() string {
	return fmt.Sprintf("NoteOff{ch:%d, note:%d, vel:%d, offset:%d}",
		e.EventChannel, e.NoteNumber, e.Velocity, e.Offset)
}

type ControlChangeEvent struct {
	BaseEvent
	Controller uint8
	Value      uint8
}

func (e ControlChangeEvent) Type() EventType { return EventTypeControlChange }

func (e ControlChangeEvent) Message() gomidi.Message {
	return gomidi.ControlChange(e.EventChannel, e.Controller, e.Value)
}

func (e ControlChangeEvent) String() string {
	return fmt.Sprintf("CC{ch:%d, ctrl:%d, val:%d, offset:%d}",
		e.EventChannel, e.Controller, e.Value, e.Offset)
}

type PitchBendEvent struct {
	BaseEvent
	Value int16 // -8192 to 8191, 0 is center
}

func (e PitchBendEvent) Type() EventType { return EventTypePitchBend }

func (e PitchBendEvent) Message() gomidi.Message {
	return gomidi.Pitchbend(e.EventChannel, e.Value)
}

func (e PitchBendEvent) String() string {
	return fmt.Sprintf("PitchBend{ch:%d, val:%d, offset:%d}",
		e.EventChannel, e.Value, e.Offset)
}

type PolyPressureEvent struct {
	BaseEvent
	NoteNumber uint8
	Pressure   uint8
}

func (e PolyPressureEvent) Type() EventType { return EventTypePolyPressure }

func (e PolyPressureEvent) Message() gomidi.Message {
	return gomidi.PolyAfterTouch(e.EventChannel, e.NoteNumber, e.Pressure)
}

func (e PolyPressureEvent) String() string {
	return fmt.Sprintf("PolyPressure{ch:%d, note:%d, pressure:%d, offset:%d}",
		e.EventChannel, e.NoteNumber, e.Pressure, e.Offset)
}

type ChannelPressureEvent struct {
	BaseEvent
	Pressure uint8
}

func (e ChannelPressureEvent) Type() EventType { return EventTypeChannelPressure }

func (e ChannelPressureEvent) Message() gomidi.Message {
	return gomidi.AfterTouch(e.EventChannel, e.Pressure)
}

func (e ChannelPressureEvent) String() string {
	return fmt.Sprintf("ChannelPressure{ch:%d, pressure:%d, offset:%d}",
		e.EventChannel, e.Pressure, e.Offset)
}

type ProgramChangeEvent struct {
	BaseEvent
	Program uint8
}

func (e ProgramChangeEvent) Type() EventType { return EventTypeProgramChange }

func (e ProgramChangeEvent) Message() gomidi.Message {
	return gomidi.ProgramChange(e.EventChannel, e.Program)
}

func (e ProgramChangeEvent) String() string {
	return fmt.Sprintf("ProgramChange{ch:%d, prog:%d, offset:%d}",
		e.EventChannel, e.Program, e.Offset)
}

// RealtimeEvent is a single-byte system realtime message (clock, start,
// stop, continue). It has no channel and no data bytes.
type RealtimeEvent struct {
	Kind   EventType
	Offset int32
}

func (e RealtimeEvent) Type() EventType { return e.Kind }
func (e RealtimeEvent) Channel() uint8 { return 0 }
func (e RealtimeEvent) SampleOffset() int32 { return e.Offset }

func (e RealtimeEvent) Message() gomidi.Message {
	return gomidi.Message{realtimeStatus[e.Kind]}
}

func (e RealtimeEvent) String() string {
	return fmt.Sprintf("%s{offset:%d}", e.Kind, e.Offset)
}

// SystemCommonEvent is a time code quarter frame, song position pointer or
// song select. Data bytes the message does not use are zero.
type SystemCommonEvent struct {
	Kind   EventType
	Data   [2]uint8
	Offset int32
}

func (e SystemCommonEvent) Type() EventType { return e.Kind }
func (e SystemCommonEvent) Channel() uint8 { return 0 }
func (e SystemCommonEvent) SampleOffset() int32 { return e.Offset }

func (e SystemCommonEvent) Message() gomidi.Message {
	switch e.Kind {
	case EventTypeSongPosition:
		return gomidi.Message{0xF2, e.Data[0], e.Data[1]}
	case EventTypeSongSelect:
		return gomidi.Message{0xF3, e.Data[0]}
	default:
		return gomidi.Message{0xF1, e.Data[0]}
	}
}

func (e SystemCommonEvent) String() string {
	return fmt.Sprintf("%s{data:%d %d, offset:%d}", e.Kind, e.Data[0], e.Data[1], e.Offset)
}

var systemCommonKinds = map[byte]EventType{
	0xF1: EventTypeTimeCode,
	0xF2: EventTypeSongPosition,
	0xF3: EventTypeSongSelect,
}

var realtimeStatus = map[EventType]byte{
	EventTypeClock:    0xF8,
	EventTypeStart:    0xFA,
	EventTypeContinue: 0xFB,
	EventTypeStop:     0xFC,
}

var realtimeKinds = map[byte]EventType{
	0xF8: EventTypeClock,
	0xFA: EventTypeStart,
	0xFB: EventTypeContinue,
	0xFC: EventTypeStop,
}

var (
	// ErrInvalidStatus is returned for payloads that do not start with a
	// supported status byte.
	ErrInvalidStatus = errors.New("midi: invalid status byte")
	// ErrShortMessage is returned when a payload is shorter than its status requires.
	ErrShortMessage = errors.New("midi: message too short")
	// ErrInvalidData is returned when a data byte has its high bit set.
	ErrInvalidData = errors.New("midi: invalid data byte")
)

// Parse decodes a raw host payload into an Event. Trailing bytes beyond the
// length required by the status byte are ignored, so fixed 3-byte host
// payloads can be passed as-is.
func Parse(data []byte, offset int32) (Event, error) {
	if len(data) == 0 {
		return nil, ErrShortMessage
	}
	status := data[0]
	if kind, ok := realtimeKinds[status]; ok {
		return RealtimeEvent{Kind: kind, Offset: offset}, nil
	}
	if status < 0x80 {
		return nil, fmt.Errorf("%w: 0x%02X", ErrInvalidStatus, status)
	}

	n := 3
	common, isCommon := systemCommonKinds[status]
	switch {
	case isCommon && status != 0xF2:
		n = 2
	case status >= 0xF0 && !isCommon:
		return nil, fmt.Errorf("%w: 0x%02X", ErrInvalidStatus, status)
	case status&0xF0 == 0xC0, status&0xF0 == 0xD0:
		n = 2
	}
	if len(data) < n {
		return nil, fmt.Errorf("%w: status 0x%02X needs %d bytes, got %d", ErrShortMessage, status, n, len(data))
	}
	for _, b := range data[1:n] {
		if b&0x80 != 0 {
			return nil, fmt.Errorf("%w: 0x%02X after status 0x%02X", ErrInvalidData, b, status)
		}
	}

	if isCommon {
		e := SystemCommonEvent{Kind: common, Offset: offset}
		copy(e.Data[:], data[1:n])
		return e, nil
	}

	msg := gomidi.Message(data[:n])
	base := BaseEvent{Offset: offset}
	var ch, a, b uint8

	// Note-on with zero velocity is a note-off by convention.
	if status&0xF0 == 0x90 && data[2] == 0 {
		base.EventChannel = status & 0x0F
		return NoteOffEvent{BaseEvent: base, NoteNumber: data[1]}, nil
	}

	switch {
	case msg.GetNoteOn(&ch, &a, &b):
		base.EventChannel = ch
		return NoteOnEvent{BaseEvent: base, NoteNumber: a, Velocity: b}, nil
	case msg.GetNoteOff(&ch, &a, &b):
		base.EventChannel = ch
		return NoteOffEvent{BaseEvent: base, NoteNumber: a, Velocity: b}, nil
	case msg.GetPolyAfterTouch(&ch, &a, &b):
		base.EventChannel = ch
		return PolyPressureEvent{BaseEvent: base, NoteNumber: a, Pressure: b}, nil
	case msg.GetControlChange(&ch, &a, &b):
		base.EventChannel = ch
		return ControlChangeEvent{BaseEvent: base, Controller: a, Value: b}, nil
	case msg.GetProgramChange(&ch, &a):
		base.EventChannel = ch
		return ProgramChangeEvent{BaseEvent: base, Program: a}, nil
	case msg.GetAfterTouch(&ch, &a):
		base.EventChannel = ch
		return ChannelPressureEvent{BaseEvent: base, Pressure: a}, nil
	}

	var rel int16
	var abs uint16
	if msg.GetPitchBend(&ch, &rel, &abs) {
		base.EventChannel = ch
		return PitchBendEvent{BaseEvent: base, Value: rel}, nil
	}

	return nil, fmt.Errorf("%w: 0x%02X", ErrInvalidStatus, status)
}

// Code returns the first data byte of the event's wire encoding: the note
// number for note events, the controller for control changes, the program
// for program changes, the song for song select. Realtime events have no
// data bytes.
func Code(e Event) (uint8, bool) {
	msg := e.Message()
	if len(msg) < 2 {
		return 0, false
	}
	return msg[1], true
}

func NoteNumberToName(note uint8) string {
	noteNames := []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	octave := int(note/12) - 1
	return fmt.Sprintf("%s%d", noteNames[note%12], octave)
}
