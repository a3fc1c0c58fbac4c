package timeline

// SceneRanges lays the normalized scenes end to end starting at 0.
func SceneRanges(scenes []Scene) []SceneRange {
	return layout(NormalizeScenes(scenes))
}

// layout expects already normalized scenes.
func layout(scenes []Scene) []SceneRange {
	ranges := make([]SceneRange, len(scenes))
	cursor := 0.0
	for i, s := range scenes {
		duration := SceneDuration(s)
		start := Round(cursor)
		end := Round(start + duration)
		ranges[i] = SceneRange{ID: s.ID, Start: start, End: end, Duration: duration}
		cursor = end
	}
	return ranges
}

func rangesDuration(ranges []SceneRange) float64 {
	if len(ranges) == 0 {
		return 0
	}
	return ranges[len(ranges)-1].End
}

// TimelineDuration is the end of the last scene range, or 0 when empty.
func TimelineDuration(scenes []Scene) float64 {
	return rangesDuration(SceneRanges(scenes))
}

// HasOverlap reports whether any range starts before its predecessor ends.
// Ranges produced by SceneRanges are contiguous, so this only fires for
// hand-built input.
func HasOverlap(ranges []SceneRange) bool {
	return HasOverlapWithin(ranges, OverlapEpsilon)
}

func HasOverlapWithin(ranges []SceneRange, epsilon float64) bool {
	for i := 1; i < len(ranges); i++ {
		if ranges[i].Start < ranges[i-1].End-epsilon {
			return true
		}
	}
	return false
}

// ClampPlayhead bounds p to [0, TimelineDuration(scenes)].
func ClampPlayhead(p float64, scenes []Scene) float64 {
	return clampToDuration(p, TimelineDuration(scenes))
}

func clampToDuration(p, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return Round(Clamp(p, 0, duration))
}

// ScrubPlayhead moves p by delta and clamps the result.
func ScrubPlayhead(p, delta float64, scenes []Scene) float64 {
	return ClampPlayhead(finiteOr(p, 0)+finiteOr(delta, 0), scenes)
}

// SceneIDAtPlayhead returns the id of the scene under the clamped playhead.
// A playhead at the very end resolves to the last scene. ok is false only
// for an empty timeline.
func SceneIDAtPlayhead(scenes []Scene, p float64) (id string, ok bool) {
	return sceneIDAt(SceneRanges(scenes), p)
}

func sceneIDAt(ranges []SceneRange, p float64) (string, bool) {
	if len(ranges) == 0 {
		return "", false
	}
	p = clampToDuration(p, rangesDuration(ranges))
	for _, r := range ranges {
		if p >= r.Start && p < r.End {
			return r.ID, true
		}
	}
	return ranges[len(ranges)-1].ID, true
}
