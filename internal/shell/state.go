package shell

// State is the shell-level editor state: active tab, the shell's view of
// the playhead and the selection.
type State struct {
	ActiveTab Tab       `json:"active_tab"`
	Playhead  float64   `json:"playhead"`
	Selection Selection `json:"selection"`
}

// NewState returns the initial shell state.
func NewState() State {
	return State{ActiveTab: TabEdit}
}

func (s State) WithActiveTab(tab Tab) State {
	s.ActiveTab = ValidTab(tab)
	return s
}

func (s State) WithPlayhead(seconds float64) State {
	s.Playhead = ClampPlayhead(seconds)
	return s
}

// WithSelection merges a partial update with ResolveSelection.
func (s State) WithSelection(update SelectionUpdate) State {
	s.Selection = ResolveSelection(s.Selection, update)
	return s
}

// SelectScene selects a scene and clears the track and item below it.
func (s State) SelectScene(sceneID string) State {
	s.Selection = Selection{SceneID: sceneID}
	return s
}

// SelectTrack selects a track and clears the item.
func (s State) SelectTrack(trackID string) State {
	s.Selection.TrackID = trackID
	s.Selection.ItemID = ""
	return s
}

func (s State) SelectItem(itemID string) State {
	s.Selection.ItemID = itemID
	return s
}

func (s State) ClearSelection() State {
	s.Selection = Selection{}
	return s
}

// Reset returns the initial state.
func (s State) Reset() State {
	return NewState()
}
