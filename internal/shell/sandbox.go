package shell

// Sandbox is the player-side state the patches apply to.
type Sandbox struct {
	Mode             Mode    `json:"mode"`
	Time             float64 `json:"time"`
	UpdatePlayerTime bool    `json:"update_player_time"`
}

// PatchInput is what NextSandboxPatch compares.
type PatchInput struct {
	ActiveTab   Tab
	CurrentMode Mode
	CurrentTime float64
	Playhead    float64
}

// SandboxPatch is a minimal diff against a Sandbox. Zero fields are not
// part of the patch.
type SandboxPatch struct {
	Mode             Mode     `json:"mode,omitempty"`
	Time             *float64 `json:"time,omitempty"`
	UpdatePlayerTime bool     `json:"update_player_time,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p SandboxPatch) IsEmpty() bool {
	return p.Mode == "" && p.Time == nil && !p.UpdatePlayerTime
}

// Apply returns sb with the patch fields assigned.
func (p SandboxPatch) Apply(sb Sandbox) Sandbox {
	if p.Mode != "" {
		sb.Mode = p.Mode
	}
	if p.Time != nil {
		sb.Time = *p.Time
	}
	if p.UpdatePlayerTime {
		sb.UpdatePlayerTime = true
	}
	return sb
}

// NextSandboxPatch computes the changes needed to bring the player in line
// with the active tab and the timeline playhead. The mode is included only
// when it changes; the time only when ShouldSyncPlayhead says the two
// clocks have drifted apart, in which case the player must seek.
func NextSandboxPatch(in PatchInput) SandboxPatch {
	var patch SandboxPatch

	if target := ModeFromTab(in.ActiveTab, in.CurrentMode); target != in.CurrentMode {
		patch.Mode = target
	}

	if ShouldSyncPlayhead(in.Playhead, in.CurrentTime) {
		t := in.Playhead
		patch.Time = &t
		patch.UpdatePlayerTime = true
	}

	return patch
}
