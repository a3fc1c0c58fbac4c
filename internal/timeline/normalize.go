package timeline

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// NormalizeScene normalizes a single scene as if it were the first entry of
// a list.
func NormalizeScene(scene Scene) Scene {
	return normalizeScene(scene, 0, make(map[string]struct{}))
}

// NormalizeScenes assigns every scene a unique id and clamps its duration
// and trims so the effective duration never drops below MinSceneDuration.
// It is idempotent.
func NormalizeScenes(scenes []Scene) []Scene {
	used := make(map[string]struct{}, len(scenes))
	out := make([]Scene, len(scenes))
	for i, s := range scenes {
		out[i] = normalizeScene(s, i, used)
	}
	return out
}

func normalizeScene(scene Scene, index int, used map[string]struct{}) Scene {
	base := strings.TrimFunc(scene.ID, isIDSpace)
	if base == "" {
		base = fmt.Sprintf("scene-%d", index+1)
	}
	id := uniqueSceneID(base, used)
	used[id] = struct{}{}

	// Bounds are derived from already rounded values so a second pass
	// sees every field inside its bound.
	sourceDuration := Round(math.Max(MinSceneDuration, finiteOr(scene.SourceDuration, MinSceneDuration)))
	trimStart := Round(Clamp(finiteOr(scene.TrimStart, 0), 0, Round(sourceDuration-MinSceneDuration)))
	trimEnd := Round(Clamp(finiteOr(scene.TrimEnd, 0), 0, Round(sourceDuration-trimStart-MinSceneDuration)))

	out := cloneScene(scene)
	out.ID = id
	out.SourceDuration = sourceDuration
	out.TrimStart = trimStart
	out.TrimEnd = trimEnd
	return out
}

// isIDSpace reports whitespace and the byte order mark.
func isIDSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func uniqueSceneID(base string, used map[string]struct{}) string {
	if _, taken := used[base]; !taken {
		return base
	}
	for suffix := 2; ; suffix++ {
		candidate := fmt.Sprintf("%s-%d", base, suffix)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}

// SceneDuration is the effective (trimmed) duration of a scene, never less
// than MinSceneDuration.
func SceneDuration(scene Scene) float64 {
	sourceDuration := math.Max(MinSceneDuration, finiteOr(scene.SourceDuration, MinSceneDuration))
	trimStart := math.Max(0, finiteOr(scene.TrimStart, 0))
	trimEnd := math.Max(0, finiteOr(scene.TrimEnd, 0))
	return Round(math.Max(MinSceneDuration, sourceDuration-trimStart-trimEnd))
}
