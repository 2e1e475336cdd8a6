package plugin

import (
	"crypto/md5"
	"errors"
	"fmt"
	"strings"
)

// Category is the plugin category a host uses to sort its plugin list.
type Category int32

const (
	CategoryUnknown Category = iota
	CategoryEffect
	CategorySynth
	CategoryAnalysis
	CategoryMastering
	CategorySpacializer
	CategoryRoomFx
	CategorySurroundFx
	CategoryRestoration
	CategoryOfflineProcess
	CategoryShell
	CategoryGenerator
)

var categoryNames = [...]string{
	CategoryUnknown:        "Unknown",
	CategoryEffect:         "Effect",
	CategorySynth:          "Synth",
	CategoryAnalysis:       "Analysis",
	CategoryMastering:      "Mastering",
	CategorySpacializer:    "Spacializer",
	CategoryRoomFx:         "RoomFx",
	CategorySurroundFx:     "SurroundFx",
	CategoryRestoration:    "Restoration",
	CategoryOfflineProcess: "OfflineProcess",
	CategoryShell:          "Shell",
	CategoryGenerator:      "Generator",
}

func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", int32(c))
}

// Info contains plugin metadata
type Info struct {
	ID         string // Unique plugin identifier (e.g., "com.example.myplugin")
	Name       string // Display name
	Version    string // Semantic version (e.g., "1.0.0")
	Vendor     string // Company/developer name
	UniqueID   int32  // Numeric identifier hosts use to tell plugins apart
	Category   Category
	Inputs     int32 // Audio input channels
	Outputs    int32 // Audio output channels
	Parameters int32 // Automatable parameters
}

// Validate checks the descriptor before it is handed to a host.
func (i Info) Validate() error {
	var errs []error
	if strings.TrimSpace(i.ID) == "" {
		errs = append(errs, errors.New("empty plugin ID"))
	}
	if strings.TrimSpace(i.Name) == "" {
		errs = append(errs, errors.New("empty plugin name"))
	}
	if i.UniqueID == 0 {
		errs = append(errs, errors.New("unique ID must be non-zero"))
	}
	if i.Inputs < 0 || i.Outputs < 0 || i.Parameters < 0 {
		errs = append(errs, fmt.Errorf("negative channel or parameter count (%d/%d/%d)",
			i.Inputs, i.Outputs, i.Parameters))
	}
	if i.Category < 0 || int(i.Category) >= len(categoryNames) {
		errs = append(errs, fmt.Errorf("unknown category %d", int32(i.Category)))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("plugin info %q: %w", i.ID, err)
	}
	return nil
}

// UID derives a stable 16-byte class identifier from the string ID.
func (i Info) UID() [16]byte {
	return md5.Sum([]byte(i.ID))
}
