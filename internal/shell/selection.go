package shell

import "github.com/framecast/editor-agent/internal/optional"

// Selection is the shell's current selection. Empty ids mean nothing is
// selected at that level.
type Selection struct {
	SceneID string `json:"scene_id"`
	TrackID string `json:"track_id"`
	ItemID  string `json:"item_id"`
}

// SelectionUpdate is a partial selection change. Omitted fields keep the
// current value, null clears it, a value overwrites it.
type SelectionUpdate struct {
	SceneID optional.String `json:"scene_id,omitzero"`
	TrackID optional.String `json:"track_id,omitzero"`
	ItemID  optional.String `json:"item_id,omitzero"`
}

// ResolveSelection merges update into current field by field.
//
// This is not the timeline reducer's policy: there an omitted scene id
// means "select whatever is under the playhead".
func ResolveSelection(current Selection, update SelectionUpdate) Selection {
	return Selection{
		SceneID: merge(current.SceneID, update.SceneID),
		TrackID: merge(current.TrackID, update.TrackID),
		ItemID:  merge(current.ItemID, update.ItemID),
	}
}

func merge(current string, update optional.String) string {
	switch {
	case update.IsOmitted():
		return current
	case update.IsNull():
		return ""
	default:
		return update.Or("")
	}
}
