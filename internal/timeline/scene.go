package timeline

import (
	"encoding/json"
	"maps"
	"strconv"
)

// Scene is a trimmed reference to one media source.
//
// Extra carries any additional fields supplied by the caller (recording
// ids, layout data, ...). The engine never reads them and always
// preserves them.
type Scene struct {
	ID             string
	SourceDuration float64
	TrimStart      float64
	TrimEnd        float64
	Extra          map[string]any
}

// SceneRange is a scene's [Start, End) interval on the concatenated
// timeline.
type SceneRange struct {
	ID       string  `json:"id"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
}

const (
	fieldID             = "id"
	fieldSourceDuration = "source_duration"
	fieldTrimStart      = "trim_start"
	fieldTrimEnd        = "trim_end"
)

// sceneFieldAliases maps the camelCase spelling used by browser clients
// onto the canonical keys.
var sceneFieldAliases = map[string]string{
	"sourceDuration": fieldSourceDuration,
	"trimStart":      fieldTrimStart,
	"trimEnd":        fieldTrimEnd,
}

func isSceneField(key string) bool {
	switch key {
	case fieldID, fieldSourceDuration, fieldTrimStart, fieldTrimEnd:
		return true
	}
	_, alias := sceneFieldAliases[key]
	return alias
}

// sceneField returns the value under the canonical key, falling back to
// its camelCase alias.
func sceneField(raw map[string]json.RawMessage, key string) json.RawMessage {
	if v, ok := raw[key]; ok {
		return v
	}
	for alias, canonical := range sceneFieldAliases {
		if canonical == key {
			return raw[alias]
		}
	}
	return nil
}

// Get returns an opaque passthrough field.
func (s Scene) Get(key string) (any, bool) {
	v, ok := s.Extra[key]
	return v, ok
}

// With returns a copy of s with an opaque field set.
func (s Scene) With(key string, value any) Scene {
	extra := maps.Clone(s.Extra)
	if extra == nil {
		extra = make(map[string]any, 1)
	}
	extra[key] = value
	s.Extra = extra
	return s
}

// MarshalJSON flattens Extra next to the known fields. Known fields win on
// key collisions.
func (s Scene) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+4)
	for k, v := range s.Extra {
		out[k] = v
	}
	out[fieldID] = s.ID
	out[fieldSourceDuration] = s.SourceDuration
	out[fieldTrimStart] = s.TrimStart
	out[fieldTrimEnd] = s.TrimEnd
	return json.Marshal(out)
}

// UnmarshalJSON accepts any JSON object. Known fields may use snake_case
// or camelCase keys; snake_case wins when both are present. Known fields
// with the wrong type are treated as missing and left for normalization
// to fill in.
func (s *Scene) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	scene := Scene{}
	if v, ok := raw[fieldID]; ok {
		_ = json.Unmarshal(v, &scene.ID)
	}
	scene.SourceDuration = rawNumber(sceneField(raw, fieldSourceDuration))
	scene.TrimStart = rawNumber(sceneField(raw, fieldTrimStart))
	scene.TrimEnd = rawNumber(sceneField(raw, fieldTrimEnd))

	for k, v := range raw {
		if isSceneField(k) {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return err
		}
		if scene.Extra == nil {
			scene.Extra = make(map[string]any)
		}
		scene.Extra[k] = val
	}

	*s = scene
	return nil
}

func rawNumber(v json.RawMessage) float64 {
	if len(v) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		return f
	}
	var str string
	if err := json.Unmarshal(v, &str); err == nil {
		if parsed, err := strconv.ParseFloat(str, 64); err == nil {
			return parsed
		}
	}
	return 0
}

func cloneScene(s Scene) Scene {
	s.Extra = maps.Clone(s.Extra)
	return s
}
