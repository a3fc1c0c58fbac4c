package api

import (
	"time"

	"github.com/framecast/editor-agent/internal/editor"
	"github.com/framecast/editor-agent/internal/optional"
	"github.com/framecast/editor-agent/internal/playback"
	"github.com/framecast/editor-agent/internal/project"
	"github.com/framecast/editor-agent/internal/shell"
	"github.com/framecast/editor-agent/internal/timeline"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type StatusResponse struct {
	State         string       `json:"state"`
	LastError     string       `json:"last_error,omitempty"`
	ProjectsCount int          `json:"projects_count"`
	SessionsOpen  int          `json:"sessions_open"`
	DirtySessions int          `json:"dirty_sessions"`
	Autosave      bool         `json:"autosave"`
	JobsRunning   int          `json:"jobs_running"`
	JobsPending   int          `json:"jobs_pending"`
	ActiveJob     *JobResponse `json:"active_job,omitempty"`
}

type CreateProjectRequest struct {
	Title        string           `json:"title"`
	InstantMode  bool             `json:"instant_mode"`
	RecordingIDs []string         `json:"recording_ids,omitempty"`
	Scenes       []timeline.Scene `json:"scenes,omitempty"`
}

type ProjectSummary struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	SyncStatus string  `json:"sync_status"`
	SceneCount int     `json:"scene_count"`
	Duration   float64 `json:"duration"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

type ProjectsResponse struct {
	Projects []ProjectSummary `json:"projects"`
}

type ProjectResponse struct {
	ID            string         `json:"id"`
	SchemaVersion int            `json:"schema_version"`
	Title         string         `json:"title"`
	SyncStatus    string         `json:"sync_status"`
	SyncError     string         `json:"sync_error,omitempty"`
	InstantMode   bool           `json:"instant_mode"`
	Timeline      timeline.State `json:"timeline"`
	CreatedAt     string         `json:"created_at"`
	UpdatedAt     string         `json:"updated_at"`
}

type ExportRequest struct {
	Format string `json:"format"`
}

type ExportResponse struct {
	JobID string `json:"job_id"`
}

type RegisterRecordingRequest struct {
	Path     string  `json:"path"`
	Duration float64 `json:"duration,omitempty"`
}

type RecordingResponse struct {
	ID        string  `json:"id"`
	Path      string  `json:"path"`
	Filename  string  `json:"filename"`
	Duration  float64 `json:"duration"`
	Size      int64   `json:"size"`
	CreatedAt string  `json:"created_at"`
}

type RecordingsResponse struct {
	Recordings []RecordingResponse `json:"recordings"`
}

type SessionsResponse struct {
	Sessions []editor.Session `json:"sessions"`
}

type TabRequest struct {
	Tab shell.Tab `json:"tab"`
}

type TabResponse struct {
	Session editor.Session     `json:"session"`
	Patch   shell.SandboxPatch `json:"patch"`
}

type PlayerTimeRequest struct {
	CurrentTime *float64 `json:"current_time"`
}

// SelectionRequest is a partial selection. Omitted fields are kept, null
// fields are cleared.
type SelectionRequest struct {
	SceneID optional.String `json:"scene_id,omitzero"`
	TrackID optional.String `json:"track_id,omitzero"`
	ItemID  optional.String `json:"item_id,omitzero"`
}

func (r SelectionRequest) Update() shell.SelectionUpdate {
	return shell.SelectionUpdate{SceneID: r.SceneID, TrackID: r.TrackID, ItemID: r.ItemID}
}

type SnapRequest struct {
	Value     *float64 `json:"value"`
	Step      *float64 `json:"step,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

type SnapResponse struct {
	Value float64 `json:"value"`
}

type CueResponse struct {
	Time float64      `json:"time"`
	Cue  playback.Cue `json:"cue"`
}

type JobResponse struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	ProjectID  string `json:"project_id,omitempty"`
	Format     string `json:"format,omitempty"`
	OutputPath string `json:"output_path,omitempty"`
	Progress   int    `json:"progress"`
	Error      string `json:"error,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type JobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func ProjectToSummary(p *project.Project) ProjectSummary {
	state := p.Timeline()
	return ProjectSummary{
		ID:         p.ID,
		Title:      p.Title,
		SyncStatus: string(p.SyncStatus),
		SceneCount: len(state.Scenes),
		Duration:   state.TimelineDuration,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  p.UpdatedAt.Format(time.RFC3339),
	}
}

func ProjectToResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:            p.ID,
		SchemaVersion: p.SchemaVersion,
		Title:         p.Title,
		SyncStatus:    string(p.SyncStatus),
		SyncError:     p.SyncError,
		InstantMode:   p.Settings.InstantMode,
		Timeline:      p.Timeline(),
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.Format(time.RFC3339),
	}
}

func RecordingToResponse(r *project.Recording) RecordingResponse {
	return RecordingResponse{
		ID:        r.ID,
		Path:      r.Path,
		Filename:  r.Filename,
		Duration:  r.Duration,
		Size:      r.Size,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}

func JobToResponse(j *project.Job) JobResponse {
	return JobResponse{
		ID:         j.ID,
		Type:       j.Type,
		Status:     j.Status,
		ProjectID:  j.ProjectID,
		Format:     j.Format,
		OutputPath: j.OutputPath,
		Progress:   j.Progress,
		Error:      j.Error,
		CreatedAt:  j.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  j.UpdatedAt.Format(time.RFC3339),
	}
}
