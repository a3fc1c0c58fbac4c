package playback

import "github.com/framecast/editor-agent/internal/timeline"

// Cue locates a timeline time inside a scene's source media.
type Cue struct {
	SceneID    string         `json:"scene_id"`
	SceneStart float64        `json:"scene_start"`
	SceneEnd   float64        `json:"scene_end"`
	SourceTime float64        `json:"source_time"`
	Scene      timeline.Scene `json:"-"`
}

// Locate maps timeline time t (clamped to the timeline) to the scene that
// plays there and the matching offset in its source. It reports false
// when the timeline is empty.
func Locate(state timeline.State, t float64) (Cue, bool) {
	scenes := timeline.NormalizeScenes(state.Scenes)
	t = timeline.ClampPlayhead(t, scenes)

	id, ok := timeline.SceneIDAtPlayhead(scenes, t)
	if !ok {
		return Cue{}, false
	}

	ranges := timeline.SceneRanges(scenes)
	for i, r := range ranges {
		if r.ID != id {
			continue
		}
		scene := scenes[i]
		offset := timeline.Clamp(timeline.Round(t-r.Start), 0, r.Duration)
		return Cue{
			SceneID:    id,
			SceneStart: r.Start,
			SceneEnd:   r.End,
			SourceTime: timeline.Round(scene.TrimStart + offset),
			Scene:      scene,
		}, true
	}
	return Cue{}, false
}
