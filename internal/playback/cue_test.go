package playback

import (
	"testing"

	"github.com/framecast/editor-agent/internal/timeline"
)

func TestLocate(t *testing.T) {
	state := timeline.NewState([]timeline.Scene{
		{ID: "a", SourceDuration: 4, TrimStart: 0.5, TrimEnd: 0.5},
		{ID: "b", SourceDuration: 3, TrimStart: 1},
	})

	tests := []struct {
		name string
		t    float64
		want Cue
	}{
		{"start", 0, Cue{SceneID: "a", SceneStart: 0, SceneEnd: 3, SourceTime: 0.5}},
		{"inside first", 1.25, Cue{SceneID: "a", SceneStart: 0, SceneEnd: 3, SourceTime: 1.75}},
		{"boundary belongs to next", 3, Cue{SceneID: "b", SceneStart: 3, SceneEnd: 5, SourceTime: 1}},
		{"inside second", 4.5, Cue{SceneID: "b", SceneStart: 3, SceneEnd: 5, SourceTime: 2.5}},
		{"end clamps to last", 5, Cue{SceneID: "b", SceneStart: 3, SceneEnd: 5, SourceTime: 3}},
		{"past end", 99, Cue{SceneID: "b", SceneStart: 3, SceneEnd: 5, SourceTime: 3}},
		{"negative", -2, Cue{SceneID: "a", SceneStart: 0, SceneEnd: 3, SourceTime: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Locate(state, tt.t)
			if !ok {
				t.Fatal("Locate() ok = false")
			}
			if got.Scene.ID != tt.want.SceneID {
				t.Errorf("Scene.ID = %q, want %q", got.Scene.ID, tt.want.SceneID)
			}
			if got.SceneID != tt.want.SceneID || got.SceneStart != tt.want.SceneStart ||
				got.SceneEnd != tt.want.SceneEnd || got.SourceTime != tt.want.SourceTime {
				t.Errorf("Locate(%v) = %+v, want %+v", tt.t, got, tt.want)
			}
		})
	}
}

func TestLocate_EmptyTimeline(t *testing.T) {
	if _, ok := Locate(timeline.State{}, 3); ok {
		t.Error("Locate() on empty timeline should report false")
	}
}
