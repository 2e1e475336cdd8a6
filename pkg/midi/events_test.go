package midi

import (
	"errors"
	"testing"
)

func TestNoteOnEvent(t *testing.T) {
	event := NoteOnEvent{
		BaseEvent: BaseEvent{
			EventChannel: 0,
			Offset:       100,
		},
		NoteNumber: 72,
		Velocity:   64,
	}

	if event.Type() != EventTypeNoteOn {
		t.Errorf("Expected type %v, got %v", EventTypeNoteOn, event.Type())
	}

	if event.Channel() != 0 {
		t.Errorf("Expected channel 0, got %d", event.Channel())
	}

	if event.SampleOffset() != 100 {
		t.Errorf("Expected offset 100, got %d", event.SampleOffset())
	}

	expected := "NoteOn{ch:0, note:72, vel:64, offset:100}"
	if event.String() != expected {
		t.Errorf("Expected string %s, got %s", expected, event.String())
	}
}

func TestEventMessageEncoding(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  []byte
	}{
		{
			name:  "note on",
			event: NoteOnEvent{BaseEvent: BaseEvent{EventChannel: 1}, NoteNumber: 69, Velocity: 100},
			want:  []byte{0x91, 69, 100},
		},
		{
			name:  "note off",
			event: NoteOffEvent{BaseEvent: BaseEvent{EventChannel: 0}, NoteNumber: 71, Velocity: 40},
			want:  []byte{0x80, 71, 40},
		},
		{
			name:  "control change",
			event: ControlChangeEvent{BaseEvent: BaseEvent{EventChannel: 2}, Controller: 7, Value: 90},
			want:  []byte{0xB2, 7, 90},
		},
		{
			name:  "program change",
			event: ProgramChangeEvent{BaseEvent: BaseEvent{EventChannel: 0}, Program: 5},
			want:  []byte{0xC0, 5},
		},
		{
			name:  "clock",
			event: RealtimeEvent{Kind: EventTypeClock},
			want:  []byte{0xF8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []byte(tt.event.Message())
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d bytes, got % X", len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Byte %d: expected 0x%02X, got 0x%02X", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantType EventType
		wantCh   uint8
		wantCode uint8
		hasCode  bool
	}{
		{"note on", []byte{0x90, 72, 100}, EventTypeNoteOn, 0, 72, true},
		{"note on channel 10", []byte{0x99, 36, 127}, EventTypeNoteOn, 9, 36, true},
		{"note off", []byte{0x80, 72, 0}, EventTypeNoteOff, 0, 72, true},
		{"note on zero velocity", []byte{0x93, 79, 0}, EventTypeNoteOff, 3, 79, true},
		{"poly pressure", []byte{0xA0, 60, 30}, EventTypePolyPressure, 0, 60, true},
		{"control change", []byte{0xB1, 74, 10}, EventTypeControlChange, 1, 74, true},
		{"program change with padding", []byte{0xC0, 81, 0}, EventTypeProgramChange, 0, 81, true},
		{"channel pressure", []byte{0xD0, 50, 0}, EventTypeChannelPressure, 0, 50, true},
		{"pitch bend center", []byte{0xE0, 0x00, 0x40}, EventTypePitchBend, 0, 0x00, true},
		{"clock", []byte{0xF8, 0, 0}, EventTypeClock, 0, 0, false},
		{"start", []byte{0xFA, 0, 0}, EventTypeStart, 0, 0, false},
		{"song position", []byte{0xF2, 72, 0}, EventTypeSongPosition, 0, 72, true},
		{"song select", []byte{0xF3, 74, 0}, EventTypeSongSelect, 0, 74, true},
		{"time code", []byte{0xF1, 0x21, 0}, EventTypeTimeCode, 0, 0x21, true},
		{"padding ignored", []byte{0xC0, 81, 0xFF}, EventTypeProgramChange, 0, 81, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := Parse(tt.data, 32)
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if event.Type() != tt.wantType {
				t.Errorf("Expected type %v, got %v", tt.wantType, event.Type())
			}
			if event.Channel() != tt.wantCh {
				t.Errorf("Expected channel %d, got %d", tt.wantCh, event.Channel())
			}
			if event.SampleOffset() != 32 {
				t.Errorf("Expected offset 32, got %d", event.SampleOffset())
			}

			code, ok := Code(event)
			if ok != tt.hasCode {
				t.Fatalf("Expected hasCode %v, got %v", tt.hasCode, ok)
			}
			if ok && code != tt.wantCode {
				t.Errorf("Expected code %d, got %d", tt.wantCode, code)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrShortMessage},
		{"data byte as status", []byte{0x45, 0x10, 0x10}, ErrInvalidStatus},
		{"sysex", []byte{0xF0, 0x7E, 0xF7}, ErrInvalidStatus},
		{"truncated note on", []byte{0x90, 60}, ErrShortMessage},
		{"truncated program change", []byte{0xC0}, ErrShortMessage},
		{"truncated song position", []byte{0xF2, 72}, ErrShortMessage},
		{"tune request", []byte{0xF6, 0, 0}, ErrInvalidStatus},
		{"note above 127", []byte{0x90, 0xC8, 0x01}, ErrInvalidData},
		{"mapped note with high bit", []byte{0x90, 69 | 0x80, 0x01}, ErrInvalidData},
		{"velocity high bit", []byte{0x90, 69, 0x80}, ErrInvalidData},
		{"controller high bit", []byte{0xB0, 0xC8, 0}, ErrInvalidData},
		{"song select high bit", []byte{0xF3, 0x90, 0}, ErrInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data, 0)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSystemCommonRoundTrip(t *testing.T) {
	e, err := Parse([]byte{0xF2, 0x48, 0x01}, 0)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	msg := e.Message()
	if len(msg) != 3 || msg[0] != 0xF2 || msg[1] != 0x48 || msg[2] != 0x01 {
		t.Errorf("Expected F2 48 01, got % X", []byte(msg))
	}
	if got := e.String(); got != "SongPosition{data:72 1, offset:0}" {
		t.Errorf("Unexpected string %s", got)
	}
}

func TestEventTypeString(t *testing.T) {
	if got := EventTypeControlChange.String(); got != "ControlChange" {
		t.Errorf("Expected ControlChange, got %s", got)
	}
	if got := EventType(200).String(); got != "EventType(200)" {
		t.Errorf("Expected EventType(200), got %s", got)
	}
}

func TestNoteNumberToName(t *testing.T) {
	tests := []struct {
		note uint8
		name string
	}{
		{60, "C4"},  // Middle C
		{69, "A4"},  // A440
		{0, "C-1"},  // Lowest MIDI note
		{127, "G9"}, // Highest MIDI note
		{61, "C#4"},
		{83, "B5"},
	}

	for _, tt := range tests {
		name := NoteNumberToName(tt.note)
		if name != tt.name {
			t.Errorf("For note %d, expected name %s, got %s", tt.note, tt.name, name)
		}
	}
}
