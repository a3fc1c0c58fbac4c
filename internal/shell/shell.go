// Package shell holds the editor shell rules: which tab is active, which
// player mode that implies, when the timeline playhead and the player time
// must be reconciled, and how partial selection updates merge.
//
// Every function is pure. Callers own the State and Sandbox values and
// replace them wholesale with the results.
package shell

import "math"

// Tab is the editor tab shown to the user.
type Tab string

const (
	TabEdit    Tab = "edit"
	TabPreview Tab = "preview"
)

// Mode is the player-side mode. Edit, crop and audio are edit modes.
type Mode string

const (
	ModeEdit   Mode = "edit"
	ModeCrop   Mode = "crop"
	ModeAudio  Mode = "audio"
	ModePlayer Mode = "player"
)

// DefaultSyncEpsilon is the playhead hysteresis in seconds.
const DefaultSyncEpsilon = 0.01

// IsEditMode reports whether m is one of the edit modes.
func (m Mode) IsEditMode() bool {
	switch m {
	case ModeEdit, ModeCrop, ModeAudio:
		return true
	}
	return false
}

// ValidTab maps anything other than a known tab to TabEdit.
func ValidTab(tab Tab) Tab {
	if tab == TabPreview {
		return TabPreview
	}
	return TabEdit
}

// TabFromMode returns TabPreview for the player mode and TabEdit otherwise.
func TabFromMode(mode Mode) Tab {
	if mode == ModePlayer {
		return TabPreview
	}
	return TabEdit
}

// ModeFromTab returns the player mode for the preview tab. On the edit tab
// the previous mode is kept if it is an edit mode, else ModeEdit.
func ModeFromTab(tab Tab, previous Mode) Mode {
	if tab == TabPreview {
		return ModePlayer
	}
	if previous.IsEditMode() {
		return previous
	}
	return ModeEdit
}

// ShouldSyncPlayhead reports whether next and current are both finite and
// differ by more than DefaultSyncEpsilon.
func ShouldSyncPlayhead(next, current float64) bool {
	return ShouldSyncPlayheadWithin(next, current, DefaultSyncEpsilon)
}

// ShouldSyncPlayheadWithin is ShouldSyncPlayhead with an explicit epsilon.
func ShouldSyncPlayheadWithin(next, current, epsilon float64) bool {
	if !finite(next) || !finite(current) {
		return false
	}
	return math.Abs(next-current) > epsilon
}

// ClampPlayhead maps non-finite and negative values to 0.
func ClampPlayhead(seconds float64) float64 {
	if !finite(seconds) || seconds < 0 {
		return 0
	}
	return seconds
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
