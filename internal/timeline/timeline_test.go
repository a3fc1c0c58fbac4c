package timeline

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(scenes []Scene) []string {
	out := make([]string, len(scenes))
	for i, s := range scenes {
		out[i] = s.ID
	}
	return out
}

// fixtures covers empty, trimmed, colliding, anonymous and malformed scenes.
func fixtures() [][]Scene {
	return [][]Scene{
		nil,
		{{ID: "a", SourceDuration: 4}},
		{{SourceDuration: 4, TrimStart: 0.5, TrimEnd: 0.5}, {SourceDuration: 3, TrimEnd: 0.5}},
		{{ID: "x", SourceDuration: 2}, {ID: "x", SourceDuration: 2}, {ID: "x-2", SourceDuration: 1}},
		{{ID: "  ", SourceDuration: -3}, {SourceDuration: math.NaN(), TrimStart: math.Inf(1)}},
		{{ID: "z", SourceDuration: 5, TrimStart: 4.95, TrimEnd: 1}, {ID: "z", SourceDuration: 0.01}},
		{{ID: "d", SourceDuration: 0.1 + 0.2, TrimStart: 0.1, TrimEnd: 0.1}, {ID: "e", SourceDuration: 1e6, TrimEnd: -4}},
		{{ID: "a-2", SourceDuration: 6.072632394282325, TrimStart: 2.0579436024892517, TrimEnd: 7.2599577571728}},
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.3, Round(0.1+0.2))
	assert.Equal(t, 1.234568, Round(1.23456789))
	assert.Equal(t, 0.0, Round(0.00000025))
	assert.Equal(t, 0.0, Round(math.NaN()))
	assert.Equal(t, 0.0, Round(math.Inf(-1)))
	assert.False(t, math.Signbit(Round(-0.0000001)), "negative zero must be normalized")
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 2.0, Clamp(5, 0, 2))
	assert.Equal(t, 0.0, Clamp(-1, 0, 2))
	assert.Equal(t, 1.0, Clamp(math.NaN(), 1, 2))
	assert.Equal(t, 0.0, Clamp(5, math.NaN(), math.NaN()))
}

func TestNormalizeScene_ClampsTrims(t *testing.T) {
	s := NormalizeScene(Scene{SourceDuration: 5, TrimStart: 4.95, TrimEnd: 1})

	assert.Equal(t, "scene-1", s.ID)
	assert.LessOrEqual(t, s.TrimStart, 4.9)
	assert.Equal(t, 0.0, s.TrimEnd)
	assert.Equal(t, 0.1, SceneDuration(s))
}

func TestNormalizeScene_FloorsSourceDuration(t *testing.T) {
	s := NormalizeScene(Scene{ID: "a", SourceDuration: -2, TrimStart: -1, TrimEnd: math.NaN()})

	assert.Equal(t, MinSceneDuration, s.SourceDuration)
	assert.Equal(t, 0.0, s.TrimStart)
	assert.Equal(t, 0.0, s.TrimEnd)
}

func TestNormalizeScenes_UniqueIDs(t *testing.T) {
	got := NormalizeScenes([]Scene{
		{ID: "x", SourceDuration: 1},
		{ID: " x ", SourceDuration: 1},
		{ID: "x-2", SourceDuration: 1},
		{SourceDuration: 1},
		{ID: "scene-4", SourceDuration: 1},
	})

	assert.Equal(t, []string{"x", "x-2", "x-2-2", "scene-4", "scene-4-2"}, ids(got))
}

func TestNormalizeScene_TrimsByteOrderMark(t *testing.T) {
	assert.Equal(t, "clip", NormalizeScene(Scene{ID: "\uFEFF clip ", SourceDuration: 1}).ID)
	assert.Equal(t, "scene-1", NormalizeScene(Scene{ID: "\uFEFF", SourceDuration: 1}).ID)

	got := NormalizeScenes([]Scene{{ID: "x", SourceDuration: 1}, {ID: "\uFEFFx", SourceDuration: 1}})
	assert.Equal(t, []string{"x", "x-2"}, ids(got))
}

func TestNormalizeScene_OverTrimmedEndIsStable(t *testing.T) {
	once := NormalizeScene(Scene{ID: "a-2", SourceDuration: 6.072632394282325, TrimStart: 2.0579436024892517, TrimEnd: 7.2599577571728})

	assert.Equal(t, 6.072632, once.SourceDuration)
	assert.Equal(t, 2.057944, once.TrimStart)
	assert.Equal(t, 3.914688, once.TrimEnd)
	assert.Equal(t, once, NormalizeScene(once))
}

func TestNormalizeScenes_IdempotentOnRandomInput(t *testing.T) {
	rng := rand.New(rand.NewSource(20260301))
	idPool := []string{"", "a", "a-2", " a ", "b", "scene-1"}
	value := func(scale float64) float64 {
		return (rng.Float64()*1.2 - 0.1) * scale
	}

	for run := 0; run < 2000; run++ {
		scenes := make([]Scene, 1+rng.Intn(5))
		for i := range scenes {
			scenes[i] = Scene{
				ID:             idPool[rng.Intn(len(idPool))],
				SourceDuration: value(10),
				TrimStart:      value(8),
				TrimEnd:        value(8),
			}
		}

		once := NormalizeScenes(scenes)
		require.Equal(t, once, NormalizeScenes(once), "run %d: %+v", run, scenes)
		for _, s := range once {
			require.GreaterOrEqual(t, SceneDuration(s), MinSceneDuration, "run %d", run)
		}
	}
}

func TestNormalizeScenes_PreservesExtraAndInput(t *testing.T) {
	in := []Scene{{ID: "a", SourceDuration: 2, TrimStart: 9, Extra: map[string]any{"recording_id": "r1"}}}
	out := NormalizeScenes(in)

	assert.Equal(t, "r1", out[0].Extra["recording_id"])
	assert.Equal(t, 9.0, in[0].TrimStart, "input must not be mutated")

	out[0].Extra["recording_id"] = "changed"
	assert.Equal(t, "r1", in[0].Extra["recording_id"])
}

func TestProperties(t *testing.T) {
	for i, scenes := range fixtures() {
		normalized := NormalizeScenes(scenes)

		seen := map[string]bool{}
		for _, s := range normalized {
			assert.GreaterOrEqual(t, SceneDuration(s), MinSceneDuration, "fixture %d", i)
			assert.False(t, seen[s.ID], "fixture %d: duplicate id %q", i, s.ID)
			seen[s.ID] = true
		}

		assert.Equal(t, normalized, NormalizeScenes(normalized), "fixture %d: normalization must be idempotent", i)

		ranges := SceneRanges(scenes)
		for j, r := range ranges {
			if j == 0 {
				assert.Equal(t, 0.0, r.Start)
				continue
			}
			assert.Equal(t, ranges[j-1].End, r.Start, "fixture %d: ranges must be contiguous", i)
		}
		assert.False(t, HasOverlap(ranges), "fixture %d", i)

		duration := TimelineDuration(scenes)
		for _, p := range []float64{-100, -0.0001, 0, 0.05, 3.3, duration, duration + 1, 1e9} {
			got := ClampPlayhead(p, scenes)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, duration)
		}
	}
}

func TestSceneRanges_Trimmed(t *testing.T) {
	ranges := SceneRanges([]Scene{
		{SourceDuration: 4, TrimStart: 0.5, TrimEnd: 0.5},
		{SourceDuration: 3, TrimStart: 0, TrimEnd: 0.5},
	})

	require.Len(t, ranges, 2)
	assert.Equal(t, SceneRange{ID: "scene-1", Start: 0, End: 3, Duration: 3}, ranges[0])
	assert.Equal(t, SceneRange{ID: "scene-2", Start: 3, End: 5.5, Duration: 2.5}, ranges[1])
}

func TestHasOverlap_HandBuilt(t *testing.T) {
	assert.True(t, HasOverlap([]SceneRange{{Start: 0, End: 2}, {Start: 1.5, End: 3}}))
	assert.False(t, HasOverlap([]SceneRange{{Start: 0, End: 2}, {Start: 2 - OverlapEpsilon/2, End: 3}}))
	assert.False(t, HasOverlap(nil))
}

func TestPlayhead(t *testing.T) {
	scenes := []Scene{{ID: "a", SourceDuration: 2}, {ID: "b", SourceDuration: 3}}

	assert.Equal(t, 0.0, ClampPlayhead(4, nil))
	assert.Equal(t, 5.0, ClampPlayhead(7, scenes))
	assert.Equal(t, 0.0, ClampPlayhead(math.NaN(), scenes))
	assert.Equal(t, 3.5, ScrubPlayhead(2, 1.5, scenes))
	assert.Equal(t, 0.0, ScrubPlayhead(2, -10, scenes))
	assert.Equal(t, 2.0, ScrubPlayhead(2, math.Inf(1), scenes))
}

func TestSceneIDAtPlayhead(t *testing.T) {
	scenes := []Scene{{ID: "a", SourceDuration: 2}, {ID: "b", SourceDuration: 3}}

	cases := []struct {
		playhead float64
		want     string
	}{
		{0, "a"},
		{1.999, "a"},
		{2, "b"},
		{5, "b"},
		{50, "b"},
		{-1, "a"},
	}
	for _, tc := range cases {
		id, ok := SceneIDAtPlayhead(scenes, tc.playhead)
		assert.True(t, ok)
		assert.Equal(t, tc.want, id, "playhead %v", tc.playhead)
	}

	_, ok := SceneIDAtPlayhead(nil, 0)
	assert.False(t, ok)
}

func TestSnapToStep(t *testing.T) {
	assert.Equal(t, 1.0, SnapToStep(1.01, 0.25, 0.03))
	assert.Equal(t, 1.1, SnapToStep(1.1, 0.25, 0.03))
	assert.Equal(t, 0.75, SnapToStep(0.74, 0.25, -0.05), "threshold sign is ignored")
	assert.Equal(t, 1.234567891, SnapToStep(1.234567891, 0, 0.05), "non-positive step disables snapping")
}

func TestSnapToPoints(t *testing.T) {
	assert.Equal(t, 4.0, SnapToPoints(3.97, []float64{0, 4, 6}, 0.05))
	assert.Equal(t, 3.9, SnapToPoints(3.9, []float64{0, 4, 6}, 0.05))
	assert.Equal(t, 2.5, SnapToPoints(2.5, nil, 0.05))
	assert.Equal(t, 1.0, SnapToPoints(0.99, []float64{math.NaN(), 1}, 0.05))
}

func TestSnapToTimeline(t *testing.T) {
	scenes := []Scene{{SourceDuration: 4}, {SourceDuration: 2}}

	assert.Equal(t, 4.0, SnapToTimeline(3.97, scenes, WithThreshold(0.05)))
	assert.Equal(t, 6.0, SnapToTimeline(10, scenes))
	assert.Equal(t, 0.0, SnapToTimeline(-3, scenes))
	assert.Equal(t, 1.5, SnapToTimeline(1.52, scenes, WithStep(0.5)))
	assert.Equal(t, 1.37, SnapToTimeline(1.37, scenes, WithStep(0.5), WithThreshold(0.01)))
	assert.Equal(t, 0.0, SnapToTimeline(1, nil))
}

func TestAddScene(t *testing.T) {
	got := AddScene(nil, Scene{ID: "scene-a", SourceDuration: 4}, 0)

	require.Len(t, got, 1)
	assert.Equal(t, 4.0, SceneDuration(got[0]))
	assert.Equal(t, []SceneRange{{ID: "scene-a", Start: 0, End: 4, Duration: 4}}, SceneRanges(got))

	got = AddScene(got, Scene{ID: "b", SourceDuration: 1}, -5)
	got = AddScene(got, Scene{ID: "c", SourceDuration: 1}, 99)
	assert.Equal(t, []string{"b", "scene-a", "c"}, ids(got))
}

func TestRemoveScene(t *testing.T) {
	scenes := []Scene{{ID: "a", SourceDuration: 1}, {ID: "b", SourceDuration: 1}}

	assert.Equal(t, []string{"b"}, ids(RemoveScene(scenes, "a")))
	assert.Equal(t, NormalizeScenes(scenes), RemoveScene(scenes, "missing"))
}

func TestDuplicateScene(t *testing.T) {
	scenes := []Scene{
		{ID: "a", SourceDuration: 3, TrimStart: 1, Extra: map[string]any{"recording_id": "r1"}},
		{ID: "a-copy", SourceDuration: 1},
	}

	got := DuplicateScene(scenes, "a")
	assert.Equal(t, []string{"a", "a-copy", "a-copy-2"}, ids(got))
	assert.Equal(t, 1.0, got[1].TrimStart)
	assert.Equal(t, "r1", got[1].Extra["recording_id"])

	assert.Equal(t, []string{"a", "a-copy"}, ids(DuplicateScene(scenes, "nope")))
}

func TestReorderScenes(t *testing.T) {
	scenes := []Scene{{ID: "a", SourceDuration: 1}, {ID: "b", SourceDuration: 1}, {ID: "c", SourceDuration: 1}}

	assert.Equal(t, []string{"c", "a", "b"}, ids(ReorderScenes(scenes, 2, 0)))
	assert.Equal(t, []string{"b", "c", "a"}, ids(ReorderScenes(scenes, 0, 2)))
	assert.Equal(t, []string{"b", "c", "a"}, ids(ReorderScenes(scenes, -4, 40)))
	assert.Equal(t, []string{"a", "b", "c"}, ids(ReorderScenes(scenes, 1, 1)))
	assert.Equal(t, []string{"a"}, ids(ReorderScenes(scenes[:1], 0, 3)))
}

func TestTrimScene(t *testing.T) {
	scenes := []Scene{{ID: "a", SourceDuration: 5}, {ID: "b", SourceDuration: 5}}

	got := TrimSceneStart(scenes, "a", 1.5)
	assert.Equal(t, 1.5, got[0].TrimStart)
	assert.Equal(t, 3.5, SceneDuration(got[0]))

	got = TrimSceneEnd(got, "a", 10)
	assert.Equal(t, 3.4, got[0].TrimEnd)
	assert.Equal(t, 0.1, SceneDuration(got[0]))

	assert.Equal(t, NormalizeScenes(scenes), TrimSceneEnd(scenes, "gone", 1))
}
