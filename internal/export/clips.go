// Package export renders a timeline as an edit decision list or a YAML cut
// list for use in other editors.
package export

import (
	"context"
	"fmt"

	"github.com/framecast/editor-agent/internal/timeline"
)

// Clip is one timeline scene placed on the record timeline. All times are
// seconds.
type Clip struct {
	SceneID   string  `yaml:"scene_id"`
	Name      string  `yaml:"name"`
	MediaPath string  `yaml:"media_path,omitempty"`
	SourceIn  float64 `yaml:"source_in"`
	SourceOut float64 `yaml:"source_out"`
	RecordIn  float64 `yaml:"record_in"`
	RecordOut float64 `yaml:"record_out"`
}

func (c Clip) Duration() float64 {
	return timeline.Round(c.RecordOut - c.RecordIn)
}

// MediaResolver maps a scene to the media file it plays. An empty path
// with a nil error means the scene has no known media.
type MediaResolver interface {
	ResolveMedia(ctx context.Context, scene timeline.Scene) (string, error)
}

// BuildClips turns state into clips in timeline order. Scenes whose media
// cannot be resolved are still exported and their ids are returned as
// unresolved. A nil resolver resolves nothing.
func BuildClips(ctx context.Context, state timeline.State, resolver MediaResolver) ([]Clip, []string, error) {
	scenes := timeline.NormalizeScenes(state.Scenes)
	ranges := timeline.SceneRanges(scenes)

	clips := make([]Clip, 0, len(scenes))
	var unresolved []string
	for i, scene := range scenes {
		var path string
		if resolver != nil {
			p, err := resolver.ResolveMedia(ctx, scene)
			if err != nil {
				return nil, nil, fmt.Errorf("resolve media for scene %s: %w", scene.ID, err)
			}
			path = p
		}
		if path == "" {
			unresolved = append(unresolved, scene.ID)
		}

		clips = append(clips, Clip{
			SceneID:   scene.ID,
			Name:      scene.ID,
			MediaPath: path,
			SourceIn:  scene.TrimStart,
			SourceOut: timeline.Round(scene.SourceDuration - scene.TrimEnd),
			RecordIn:  ranges[i].Start,
			RecordOut: ranges[i].End,
		})
	}
	return clips, unresolved, nil
}

func clipsDuration(clips []Clip) float64 {
	if len(clips) == 0 {
		return 0
	}
	return clips[len(clips)-1].RecordOut
}
