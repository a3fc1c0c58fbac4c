package timeline

import (
	"encoding/json"
	"fmt"

	"github.com/framecast/editor-agent/internal/optional"
)

// ActionKind names an action on the wire.
type ActionKind string

const (
	KindSetScenes      ActionKind = "SET_SCENES"
	KindAddScene       ActionKind = "ADD_SCENE"
	KindRemoveScene    ActionKind = "REMOVE_SCENE"
	KindDuplicateScene ActionKind = "DUPLICATE_SCENE"
	KindReorderScenes  ActionKind = "REORDER_SCENES"
	KindTrimSceneStart ActionKind = "TRIM_SCENE_START"
	KindTrimSceneEnd   ActionKind = "TRIM_SCENE_END"
	KindSetPlayhead    ActionKind = "SET_PLAYHEAD"
	KindScrubPlayhead  ActionKind = "SCRUB_PLAYHEAD"
	KindSelectScene    ActionKind = "SELECT_SCENE"
)

// Action is one of the action types below.
type Action interface {
	Kind() ActionKind
}

// SetScenesAction replaces the scene list.
type SetScenesAction struct {
	Scenes []Scene `json:"scenes"`
}

// AddSceneAction inserts a scene. A nil Index appends; a nil SelectScene selects
// the new scene.
type AddSceneAction struct {
	Scene       Scene `json:"scene"`
	Index       *int  `json:"index,omitempty"`
	SelectScene *bool `json:"select_scene,omitempty"`
}

type RemoveSceneAction struct {
	SceneID string `json:"scene_id"`
}

type DuplicateSceneAction struct {
	SceneID string `json:"scene_id"`
}

type ReorderScenesAction struct {
	FromIndex int `json:"from_index"`
	ToIndex   int `json:"to_index"`
}

type TrimSceneStartAction struct {
	SceneID   string  `json:"scene_id"`
	TrimStart float64 `json:"trim_start"`
}

type TrimSceneEndAction struct {
	SceneID string  `json:"scene_id"`
	TrimEnd float64 `json:"trim_end"`
}

type SetPlayheadAction struct {
	Playhead float64 `json:"playhead"`
}

type ScrubPlayheadAction struct {
	Delta float64 `json:"delta"`
}

// SelectSceneAction selects a scene. A null SceneID clears the selection; an
// omitted or unknown one selects the scene under the playhead.
type SelectSceneAction struct {
	SceneID optional.String `json:"scene_id,omitzero"`
}

func (SetScenesAction) Kind() ActionKind      { return KindSetScenes }
func (AddSceneAction) Kind() ActionKind       { return KindAddScene }
func (RemoveSceneAction) Kind() ActionKind    { return KindRemoveScene }
func (DuplicateSceneAction) Kind() ActionKind { return KindDuplicateScene }
func (ReorderScenesAction) Kind() ActionKind  { return KindReorderScenes }
func (TrimSceneStartAction) Kind() ActionKind { return KindTrimSceneStart }
func (TrimSceneEndAction) Kind() ActionKind   { return KindTrimSceneEnd }
func (SetPlayheadAction) Kind() ActionKind    { return KindSetPlayhead }
func (ScrubPlayheadAction) Kind() ActionKind  { return KindScrubPlayhead }
func (SelectSceneAction) Kind() ActionKind    { return KindSelectScene }

type envelope struct {
	Type ActionKind `json:"type"`
}

// DecodeAction parses a {"type": ..., ...} action envelope.
func DecodeAction(data []byte) (Action, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}

	var action Action
	var err error
	switch env.Type {
	case KindSetScenes:
		action, err = decodeInto[SetScenesAction](data)
	case KindAddScene:
		action, err = decodeInto[AddSceneAction](data)
	case KindRemoveScene:
		action, err = decodeInto[RemoveSceneAction](data)
	case KindDuplicateScene:
		action, err = decodeInto[DuplicateSceneAction](data)
	case KindReorderScenes:
		action, err = decodeInto[ReorderScenesAction](data)
	case KindTrimSceneStart:
		action, err = decodeInto[TrimSceneStartAction](data)
	case KindTrimSceneEnd:
		action, err = decodeInto[TrimSceneEndAction](data)
	case KindSetPlayhead:
		action, err = decodeInto[SetPlayheadAction](data)
	case KindScrubPlayhead:
		action, err = decodeInto[ScrubPlayheadAction](data)
	case KindSelectScene:
		action, err = decodeInto[SelectSceneAction](data)
	case "":
		return nil, fmt.Errorf("decode action: missing type")
	default:
		return nil, fmt.Errorf("decode action: unknown type %q", env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return action, nil
}

func decodeInto[T Action](data []byte) (Action, error) {
	var a T
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	return a, nil
}

// EncodeAction renders an action with its "type" discriminator.
func EncodeAction(a Action) ([]byte, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = make(map[string]json.RawMessage, 1)
	}
	kind, err := json.Marshal(a.Kind())
	if err != nil {
		return nil, err
	}
	fields["type"] = kind
	return json.Marshal(fields)
}
