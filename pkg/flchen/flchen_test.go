package flchen

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/wehiroi/flchen/pkg/framework/config"
	"github.com/wehiroi/flchen/pkg/framework/debug"
	fwplugin "github.com/wehiroi/flchen/pkg/framework/plugin"
	"github.com/wehiroi/flchen/pkg/framework/transport"
	"github.com/wehiroi/flchen/pkg/plugin"
)

func newInstance(t *testing.T, host transport.Host) (*plugin.Instance, *Processor) {
	t.Helper()

	logger := debug.New(&bytes.Buffer{}, "flchen", debug.FlagLevel)
	Register(config.Default(), logger)

	inst, err := plugin.NewInstance(host)
	if err != nil {
		t.Fatalf("NewInstance failed: %v", err)
	}
	t.Cleanup(func() { inst.Close() })

	proc, ok := inst.Processor().(*Processor)
	if !ok {
		t.Fatalf("Unexpected processor type %T", inst.Processor())
	}
	return inst, proc
}

func stereoBlock(n int) (in, out [][]float32) {
	return [][]float32{make([]float32, n), make([]float32, n)},
		[][]float32{make([]float32, n), make([]float32, n)}
}

func TestInfo(t *testing.T) {
	info := Info()

	if err := info.Validate(); err != nil {
		t.Fatalf("Descriptor is invalid: %v", err)
	}
	if info.Name != "FL-Chen" || info.Vendor != "Wehiroi" {
		t.Errorf("Unexpected name/vendor %q/%q", info.Name, info.Vendor)
	}
	if info.UniqueID != 9614 {
		t.Errorf("Expected unique ID 9614, got %d", info.UniqueID)
	}
	if info.Category != fwplugin.CategorySynth {
		t.Errorf("Expected Synth, got %v", info.Category)
	}
	if info.Inputs != 2 || info.Outputs != 2 || info.Parameters != 0 {
		t.Errorf("Expected 2/2/0, got %d/%d/%d", info.Inputs, info.Outputs, info.Parameters)
	}
}

func TestCapabilities(t *testing.T) {
	inst, _ := newInstance(t, nil)

	if got := inst.CanDo(fwplugin.CanDoReceiveMidiEvent); got != fwplugin.Yes {
		t.Errorf("receiveVstMidiEvent = %v, want yes", got)
	}
	for _, name := range []string{fwplugin.CanDoSendMidiEvent, fwplugin.CanDoReceiveTimeInfo, "bypass", "anything"} {
		if got := inst.CanDo(name); got != fwplugin.Maybe {
			t.Errorf("%s = %v, want maybe", name, got)
		}
	}
}

func TestEndToEnd(t *testing.T) {
	clock := transport.NewClock(44100, 120)
	inst, _ := newInstance(t, clock)

	ed, err := inst.Editor()
	if err != nil {
		t.Fatalf("Editor failed: %v", err)
	}
	if w, h := ed.Size(); w != 460 || h != 600 {
		t.Errorf("Expected 460x600 editor, got %dx%d", w, h)
	}

	if got := ed.Invoke("getMode"); got != "0" {
		t.Errorf("Initial getMode = %q, want \"0\"", got)
	}

	inst.ProcessEvents([]plugin.RawEvent{{Data: [3]byte{0x90, 72, 100}}})
	clock.Seek(3.5)
	in, out := stereoBlock(64)
	if err := inst.Process(in, out); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	tests := []struct {
		line string
		want string
	}{
		{"getMode", "2"},
		{"getTime", "3.5"},
		{"getVolume", ""},
	}
	for _, tt := range tests {
		if got := ed.Invoke(tt.line); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestTransportOutageHoldsPosition(t *testing.T) {
	clock := transport.NewClock(1000, 60)
	inst, proc := newInstance(t, clock)
	in, out := stereoBlock(500)

	clock.Play()
	inst.Process(in, out)
	clock.Advance(500)
	inst.Process(in, out)
	if got := proc.Bridge().Handle("getTime"); got != "0.5" {
		t.Fatalf("Expected 0.5, got %q", got)
	}

	clock.SetUnavailable(true)
	clock.Advance(500)
	inst.Process(in, out)
	if got := proc.Bridge().Handle("getTime"); got != "0.5" {
		t.Errorf("Expected held 0.5 during outage, got %q", got)
	}
	if proc.Router().MissedCycles() != 1 {
		t.Errorf("Expected 1 missed cycle, got %d", proc.Router().MissedCycles())
	}

	clock.SetUnavailable(false)
	inst.Process(in, out)
	if got := proc.Bridge().Handle("getTime"); got != "1" {
		t.Errorf("Expected 1 after recovery, got %q", got)
	}
}

func TestMalformedNoteLeavesModeUnchanged(t *testing.T) {
	inst, proc := newInstance(t, nil)
	in, out := stereoBlock(16)

	inst.ProcessEvents([]plugin.RawEvent{{Data: [3]byte{0x90, 81, 100}}})
	inst.Process(in, out)
	if got := proc.Bridge().Handle("getMode"); got != "7" {
		t.Fatalf("Expected mode 7, got %q", got)
	}

	inst.ProcessEvents([]plugin.RawEvent{
		{Data: [3]byte{0x90, 0xC8, 0x01}},
		{Data: [3]byte{0x90, 69 | 0x80, 0x01}},
	})
	inst.Process(in, out)
	if got := proc.Bridge().Handle("getMode"); got != "7" {
		t.Errorf("Expected mode 7 to be kept, got %q", got)
	}
	if inst.DroppedEvents() != 2 {
		t.Errorf("Expected 2 dropped events, got %d", inst.DroppedEvents())
	}
}

func TestSongPositionSelectsMode(t *testing.T) {
	inst, proc := newInstance(t, nil)
	in, out := stereoBlock(16)

	inst.ProcessEvents([]plugin.RawEvent{{Data: [3]byte{0xF2, 0x48, 0x00}}})
	inst.Process(in, out)
	if got := proc.Bridge().Handle("getMode"); got != "2" {
		t.Errorf("Expected mode 2, got %q", got)
	}
}

func TestDeactivationResetsOutage(t *testing.T) {
	clock := transport.NewClock(1000, 60)
	inst, proc := newInstance(t, clock)
	in, out := stereoBlock(100)

	if err := inst.SetActive(true); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	clock.SetUnavailable(true)
	inst.Process(in, out)
	if proc.Router().TransportAvailable() {
		t.Fatal("Expected the transport to be reported unavailable")
	}

	if err := inst.SetActive(false); err != nil {
		t.Fatalf("SetActive(false) failed: %v", err)
	}
	if !proc.Router().TransportAvailable() {
		t.Error("Expected deactivation to clear the outage")
	}
	if proc.Router().MissedCycles() != 1 {
		t.Errorf("Expected the missed count to survive, got %d", proc.Router().MissedCycles())
	}
}

func TestAudioIsUntouched(t *testing.T) {
	inst, _ := newInstance(t, nil)

	in, out := stereoBlock(8)
	for ch := range out {
		for i := range out[ch] {
			in[ch][i] = 0.5
			out[ch][i] = 0.25
		}
	}
	inst.Process(in, out)

	for ch := range out {
		for i := range out[ch] {
			if in[ch][i] != 0.5 || out[ch][i] != 0.25 {
				t.Fatalf("Buffers modified at [%d][%d]", ch, i)
			}
		}
	}
}

func TestInstancesDoNotShareState(t *testing.T) {
	a, procA := newInstance(t, nil)
	_, procB := newInstance(t, nil)

	a.ProcessEvents([]plugin.RawEvent{{Data: [3]byte{0x90, 83, 1}}})
	in, out := stereoBlock(16)
	a.Process(in, out)

	if procA.State().Mode() != 8 {
		t.Errorf("Expected instance A in mode 8, got %d", procA.State().Mode())
	}
	if procB.State().Mode() != 0 {
		t.Errorf("Instance B changed to mode %d", procB.State().Mode())
	}
}

func TestConcurrentProcessAndQueries(t *testing.T) {
	clock := transport.NewClock(48000, 120)
	clock.Play()
	inst, _ := newInstance(t, clock)
	ed, err := inst.Editor()
	if err != nil {
		t.Fatalf("Editor failed: %v", err)
	}

	codes := []byte{69, 71, 72, 74, 76, 77, 79, 81, 83}
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		in, out := stereoBlock(128)
		for i := 0; i < 500; i++ {
			inst.ProcessEvents([]plugin.RawEvent{{Data: [3]byte{0x90, codes[i%len(codes)], 100}}})
			inst.Process(in, out)
			clock.Advance(128)
		}
	}()

	errs := make(chan error, 1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			mode := ed.Invoke("getMode")
			if len(mode) != 1 || mode[0] < '0' || mode[0] > '8' {
				errs <- errors.New("bad mode reply " + mode)
				return
			}
			if ed.Invoke("getTime") == "" {
				errs <- errors.New("empty time reply")
				return
			}
		}
	}()

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestEditorDocument(t *testing.T) {
	inst, _ := newInstance(t, nil)
	ed, err := inst.Editor()
	if err != nil {
		t.Fatalf("Editor failed: %v", err)
	}
	if !strings.Contains(ed.Document(), "<title>FL-Chen</title>") {
		t.Error("Document should carry the plugin name")
	}
}
