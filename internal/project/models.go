// Package project persists editor projects, the recordings they reference
// and the export jobs queued against them.
package project

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/framecast/editor-agent/internal/timeline"
)

const (
	SchemaVersion = 1
	DefaultTitle  = "Untitled Recording"

	// RecordingIDField is the opaque scene field that links a scene to its
	// recording.
	RecordingIDField = "recording_id"
)

var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrRecordingNotFound = errors.New("recording not found")
)

type SyncStatus string

const (
	SyncLocalOnly SyncStatus = "local_only"
	SyncPending   SyncStatus = "sync_pending"
	SyncSynced    SyncStatus = "synced"
	SyncError     SyncStatus = "sync_error"
	SyncConflict  SyncStatus = "conflict"
)

func (s SyncStatus) Valid() bool {
	switch s {
	case SyncLocalOnly, SyncPending, SyncSynced, SyncError, SyncConflict:
		return true
	}
	return false
}

type Settings struct {
	InstantMode bool `json:"instant_mode"`
}

// Project is one editable recording project. Scenes, Playhead and
// SelectedSceneID are the persisted part of the timeline state.
type Project struct {
	ID              string           `json:"id"`
	SchemaVersion   int              `json:"schema_version"`
	Title           string           `json:"title"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	SyncStatus      SyncStatus       `json:"sync_status"`
	SyncError       string           `json:"sync_error,omitempty"`
	Scenes          []timeline.Scene `json:"scenes"`
	Playhead        float64          `json:"playhead"`
	SelectedSceneID string           `json:"selected_scene_id,omitempty"`
	Settings        Settings         `json:"settings"`
}

// NewDefaultProject returns an empty local project.
func NewDefaultProject(title string, instantMode bool, now time.Time) *Project {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	return &Project{
		ID:            NewID(),
		SchemaVersion: SchemaVersion,
		Title:         title,
		CreatedAt:     now,
		UpdatedAt:     now,
		SyncStatus:    SyncLocalOnly,
		Scenes:        []timeline.Scene{},
		Settings:      Settings{InstantMode: instantMode},
	}
}

// Migrate upgrades a project written by an older schema in place and fills
// defaults that older rows may lack.
func Migrate(p *Project) {
	if p.SchemaVersion < SchemaVersion {
		p.SchemaVersion = SchemaVersion
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = time.Now()
		}
	}
	if !p.SyncStatus.Valid() {
		p.SyncStatus = SyncLocalOnly
	}
	if p.SyncStatus != SyncError && p.SyncStatus != SyncConflict {
		p.SyncError = ""
	}
	if strings.TrimSpace(p.Title) == "" {
		p.Title = DefaultTitle
	}
	if p.Scenes == nil {
		p.Scenes = []timeline.Scene{}
	}
}

// Timeline returns the project's finalized timeline state.
func (p *Project) Timeline() timeline.State {
	return timeline.Reduce(timeline.State{
		Scenes:          p.Scenes,
		Playhead:        p.Playhead,
		SelectedSceneID: p.SelectedSceneID,
	}, nil)
}

// ApplyTimeline copies the persisted parts of state into the project.
func (p *Project) ApplyTimeline(state timeline.State) {
	p.Scenes = state.Scenes
	p.Playhead = state.Playhead
	p.SelectedSceneID = state.SelectedSceneID
}

// Recording is a media file produced by the capture side.
type Recording struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Filename  string    `json:"filename"`
	Duration  float64   `json:"duration"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// SceneFromRecording builds a full-length scene referencing rec.
func SceneFromRecording(rec *Recording) timeline.Scene {
	id := strings.TrimSuffix(rec.Filename, filepath.Ext(rec.Filename))
	return timeline.Scene{
		ID:             id,
		SourceDuration: rec.Duration,
	}.With(RecordingIDField, rec.ID)
}

// RecordingID returns the recording a scene references, if any.
func RecordingID(scene timeline.Scene) (string, bool) {
	v, ok := scene.Get(RecordingIDField)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

var RecordingExtensions = map[string]bool{
	".webm": true,
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
}

func IsRecordingFile(filename string) bool {
	return RecordingExtensions[strings.ToLower(filepath.Ext(filename))]
}

const (
	JobTypeExport = "export"

	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

type Job struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	ProjectID  string    `json:"project_id,omitempty"`
	Format     string    `json:"format,omitempty"`
	OutputPath string    `json:"output_path,omitempty"`
	Progress   int       `json:"progress"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewID() string {
	return uuid.NewString()
}
