package transport

import (
	"errors"
	"math"
	"testing"
)

func TestClockAdvance(t *testing.T) {
	c := NewClock(48000, 120)

	// Stopped transport does not move.
	c.Advance(48000)
	info, err := c.TimeInfo(RequestAll)
	if err != nil {
		t.Fatalf("TimeInfo returned error: %v", err)
	}
	if info.PPQPosition != 0 {
		t.Errorf("Expected stopped clock at 0, got %v", info.PPQPosition)
	}
	if info.Playing() {
		t.Error("Expected clock to report stopped")
	}

	// One second at 120 BPM is two quarter notes.
	c.Play()
	c.Advance(48000)
	info, _ = c.TimeInfo(RequestAll)
	if math.Abs(info.PPQPosition-2) > 1e-9 {
		t.Errorf("Expected ppq 2, got %v", info.PPQPosition)
	}
	if !info.Playing() {
		t.Error("Expected clock to report playing")
	}
	if info.Tempo != 120 {
		t.Errorf("Expected tempo 120, got %v", info.Tempo)
	}
	if !info.HasPosition() {
		t.Error("Expected position to be valid")
	}
}

func TestClockRequestMask(t *testing.T) {
	c := NewClock(44100, 90)
	c.Seek(5)

	info, _ := c.TimeInfo(FlagTempoValid)
	if info.HasPosition() {
		t.Error("Position was not requested and should not be valid")
	}
	if info.Tempo != 90 {
		t.Errorf("Expected tempo 90, got %v", info.Tempo)
	}

	info, _ = c.TimeInfo(RequestAll)
	if info.PPQPosition != 5 {
		t.Errorf("Expected ppq 5 after seek, got %v", info.PPQPosition)
	}
	if info.BarStartPPQ != 4 {
		t.Errorf("Expected bar start 4, got %v", info.BarStartPPQ)
	}
}

func TestClockUnavailable(t *testing.T) {
	c := NewClock(44100, 120)
	c.SetUnavailable(true)

	if _, err := c.TimeInfo(RequestAll); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}

	c.SetUnavailable(false)
	if _, err := c.TimeInfo(RequestAll); err != nil {
		t.Errorf("Expected recovery, got %v", err)
	}
}

func TestClockToggleAndTempo(t *testing.T) {
	c := NewClock(1000, 60)

	if !c.Toggle() {
		t.Error("Expected toggle to start the clock")
	}
	c.SetTempo(-10) // ignored
	c.Advance(500)
	info, _ := c.TimeInfo(RequestAll)
	if math.Abs(info.PPQPosition-0.5) > 1e-9 {
		t.Errorf("Expected ppq 0.5, got %v", info.PPQPosition)
	}

	if c.Toggle() {
		t.Error("Expected toggle to stop the clock")
	}
}

func TestHasPosition(t *testing.T) {
	tests := []struct {
		name string
		info TimeInfo
		want bool
	}{
		{"valid", TimeInfo{PPQPosition: 1.5, Flags: FlagPPQPosValid}, true},
		{"no flags", TimeInfo{PPQPosition: 1.5}, true},
		{"playing without validity flags", TimeInfo{PPQPosition: 1.5, Flags: FlagPlaying}, true},
		{"flag missing", TimeInfo{PPQPosition: 1.5, Flags: FlagTempoValid | FlagPlaying}, false},
		{"nan without flags", TimeInfo{PPQPosition: math.NaN()}, false},
		{"nan", TimeInfo{PPQPosition: math.NaN(), Flags: FlagPPQPosValid}, false},
		{"inf", TimeInfo{PPQPosition: math.Inf(1), Flags: FlagPPQPosValid}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.HasPosition(); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestHostFunc(t *testing.T) {
	var got Flags
	h := HostFunc(func(request Flags) (TimeInfo, error) {
		got = request
		return TimeInfo{PPQPosition: 1}, nil
	})

	info, err := h.TimeInfo(RequestAll)
	if err != nil || info.PPQPosition != 1 {
		t.Errorf("Unexpected result %+v, %v", info, err)
	}
	if got != RequestAll {
		t.Errorf("Expected request %d, got %d", RequestAll, got)
	}
}
