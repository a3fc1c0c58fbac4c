package timeline

// AddScene inserts scene at index (clamped to [0, len]) and renormalizes.
func AddScene(scenes []Scene, scene Scene, index int) []Scene {
	next := NormalizeScenes(scenes)
	index = clampIndex(index, 0, len(next))

	out := make([]Scene, 0, len(next)+1)
	out = append(out, next[:index]...)
	out = append(out, scene)
	out = append(out, next[index:]...)
	return NormalizeScenes(out)
}

// AppendScene adds scene at the end of the timeline.
func AppendScene(scenes []Scene, scene Scene) []Scene {
	return AddScene(scenes, scene, len(scenes))
}

// RemoveScene drops the scene with the given id. Unknown ids leave the
// list unchanged.
func RemoveScene(scenes []Scene, sceneID string) []Scene {
	next := NormalizeScenes(scenes)
	out := make([]Scene, 0, len(next))
	for _, s := range next {
		if s.ID != sceneID {
			out = append(out, s)
		}
	}
	return out
}

// DuplicateScene inserts a copy of the scene right after it, with id
// "<id>-copy" (suffixed further if taken).
func DuplicateScene(scenes []Scene, sceneID string) []Scene {
	next := NormalizeScenes(scenes)
	src := indexOf(next, sceneID)
	if src == -1 {
		return next
	}

	dup := cloneScene(next[src])
	dup.ID = next[src].ID + "-copy"

	out := make([]Scene, 0, len(next)+1)
	out = append(out, next[:src+1]...)
	out = append(out, dup)
	out = append(out, next[src+1:]...)
	return NormalizeScenes(out)
}

// ReorderScenes moves the scene at from to position to. Both indices are
// clamped into the list.
func ReorderScenes(scenes []Scene, from, to int) []Scene {
	next := NormalizeScenes(scenes)
	if len(next) < 2 {
		return next
	}

	from = clampIndex(from, 0, len(next)-1)
	to = clampIndex(to, 0, len(next)-1)
	if from == to {
		return next
	}

	moved := next[from]
	rest := make([]Scene, 0, len(next))
	rest = append(rest, next[:from]...)
	rest = append(rest, next[from+1:]...)

	out := make([]Scene, 0, len(next))
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	return NormalizeScenes(out)
}

// TrimSceneStart sets the start trim of one scene.
func TrimSceneStart(scenes []Scene, sceneID string, trimStart float64) []Scene {
	return updateScene(scenes, sceneID, func(s Scene) Scene {
		s.TrimStart = trimStart
		return s
	})
}

// TrimSceneEnd sets the end trim of one scene.
func TrimSceneEnd(scenes []Scene, sceneID string, trimEnd float64) []Scene {
	return updateScene(scenes, sceneID, func(s Scene) Scene {
		s.TrimEnd = trimEnd
		return s
	})
}

// updateScene applies fn to the matching scene and renormalizes only that
// scene; its id is already unique so it is kept.
func updateScene(scenes []Scene, sceneID string, fn func(Scene) Scene) []Scene {
	next := NormalizeScenes(scenes)
	for i, s := range next {
		if s.ID == sceneID {
			next[i] = NormalizeScene(fn(s))
		}
	}
	return next
}

func indexOf(scenes []Scene, sceneID string) int {
	for i, s := range scenes {
		if s.ID == sceneID {
			return i
		}
	}
	return -1
}

func containsID(scenes []Scene, sceneID string) bool {
	return indexOf(scenes, sceneID) != -1
}
