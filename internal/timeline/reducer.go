package timeline

import "github.com/framecast/editor-agent/internal/optional"

// State is a complete, self-consistent timeline snapshot. An empty
// SelectedSceneID means nothing is selected.
type State struct {
	Scenes           []Scene      `json:"scenes"`
	Playhead         float64      `json:"playhead"`
	SelectedSceneID  string       `json:"selected_scene_id"`
	TimelineDuration float64      `json:"timeline_duration"`
	SceneRanges      []SceneRange `json:"scene_ranges"`
}

// NewState returns the finalized state for scenes with the playhead at 0
// and no selection.
func NewState(scenes []Scene) State {
	return Reduce(State{}, SetScenesAction{Scenes: scenes})
}

// Reduce applies action to state and returns a new state. It never
// mutates state. Unknown or nil actions only renormalize.
func Reduce(state State, action Action) State {
	scenes := NormalizeScenes(state.Scenes)
	playhead := ClampPlayhead(state.Playhead, scenes)
	current := keepSelection(state.SelectedSceneID)
	fin := finalizer{playhead: playhead}

	switch a := action.(type) {
	case SetScenesAction:
		return fin.finalize(a.Scenes, current)

	case AddSceneAction:
		var next []Scene
		if a.Index == nil {
			next = AppendScene(scenes, a.Scene)
		} else {
			next = AddScene(scenes, a.Scene, *a.Index)
		}
		if a.SelectScene != nil && !*a.SelectScene {
			return fin.finalize(next, current)
		}
		at := len(next) - 1
		if a.Index != nil {
			at = clampIndex(*a.Index, 0, len(next)-1)
		}
		return fin.finalize(next, optional.Of(next[at].ID))

	case RemoveSceneAction:
		next := RemoveScene(scenes, a.SceneID)
		selection := current
		if a.SceneID != "" && a.SceneID == state.SelectedSceneID {
			selection = optional.Null()
			if id, ok := SceneIDAtPlayhead(next, playhead); ok {
				selection = optional.Of(id)
			}
		}
		return fin.finalize(next, selection)

	case DuplicateSceneAction:
		next := DuplicateScene(scenes, a.SceneID)
		src := indexOf(next, a.SceneID)
		if src == -1 || src+1 >= len(next) {
			return fin.finalize(next, current)
		}
		return fin.finalize(next, optional.Of(next[src+1].ID))

	case ReorderScenesAction:
		return fin.finalize(ReorderScenes(scenes, a.FromIndex, a.ToIndex), current)

	case TrimSceneStartAction:
		return fin.finalize(TrimSceneStart(scenes, a.SceneID, a.TrimStart), current)

	case TrimSceneEndAction:
		return fin.finalize(TrimSceneEnd(scenes, a.SceneID, a.TrimEnd), current)

	case SetPlayheadAction:
		next := fin.finalize(scenes, current)
		next.Playhead = ClampPlayhead(a.Playhead, scenes)
		return next

	case ScrubPlayheadAction:
		next := fin.finalize(scenes, current)
		next.Playhead = ScrubPlayhead(playhead, a.Delta, scenes)
		return next

	case SelectSceneAction:
		return fin.finalize(scenes, a.SceneID)

	default:
		return fin.finalize(scenes, current)
	}
}

// keepSelection expresses "keep the current selection" as an override:
// an empty selection stays cleared.
func keepSelection(selected string) optional.String {
	if selected == "" {
		return optional.Null()
	}
	return optional.Of(selected)
}

type finalizer struct {
	playhead float64
}

// finalize renormalizes scenes, recomputes the layout, re-clamps the
// playhead and resolves the selection override:
//   - set: kept when the scene still exists, else the scene under the playhead
//   - null: cleared
//   - omitted: the scene under the playhead
func (f finalizer) finalize(scenes []Scene, override optional.String) State {
	next := NormalizeScenes(scenes)
	ranges := layout(next)
	duration := rangesDuration(ranges)
	playhead := clampToDuration(f.playhead, duration)

	selected := ""
	if !override.IsNull() {
		if id, ok := override.Get(); ok && containsID(next, id) {
			selected = id
		} else if id, ok := sceneIDAt(ranges, playhead); ok {
			selected = id
		}
	}

	return State{
		Scenes:           next,
		Playhead:         playhead,
		SelectedSceneID:  selected,
		TimelineDuration: duration,
		SceneRanges:      ranges,
	}
}
