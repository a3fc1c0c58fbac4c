package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/framecast/editor-agent/internal/timeline"
)

type Repository interface {
	SaveProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	DeleteProject(ctx context.Context, id string) error
	CountProjects(ctx context.Context) (int, error)

	CreateRecording(ctx context.Context, rec *Recording) error
	GetRecording(ctx context.Context, id string) (*Recording, error)
	GetRecordingByPath(ctx context.Context, path string) (*Recording, error)
	ListRecordings(ctx context.Context) ([]*Recording, error)

	CreateJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	ListJobs(ctx context.Context, limit int) ([]*Job, error)
	ListPendingJobs(ctx context.Context) ([]*Job, error)
	UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error
	UpdateJobProgress(ctx context.Context, id string, progress int) error
	SetJobOutput(ctx context.Context, id, outputPath string) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const projectColumns = `id, schema_version, title, sync_status, sync_error, scenes, playhead,
	selected_scene_id, instant_mode, created_at, updated_at`

// SaveProject inserts or replaces a project row.
func (r *SQLiteRepository) SaveProject(ctx context.Context, p *Project) error {
	scenes := p.Scenes
	if scenes == nil {
		scenes = []timeline.Scene{}
	}
	scenesJSON, err := json.Marshal(scenes)
	if err != nil {
		return fmt.Errorf("encode scenes: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			schema_version = excluded.schema_version,
			title = excluded.title,
			sync_status = excluded.sync_status,
			sync_error = excluded.sync_error,
			scenes = excluded.scenes,
			playhead = excluded.playhead,
			selected_scene_id = excluded.selected_scene_id,
			instant_mode = excluded.instant_mode,
			updated_at = excluded.updated_at
	`, p.ID, p.SchemaVersion, p.Title, string(p.SyncStatus), nullString(p.SyncError), string(scenesJSON),
		p.Playhead, nullString(p.SelectedSceneID), boolToInt(p.Settings.InstantMode),
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	return err
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (*Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// ListProjects returns projects most recently updated first.
func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]*Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *SQLiteRepository) DeleteProject(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) CountProjects(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*Project, error) {
	var p Project
	var syncStatus, scenesJSON, createdAt, updatedAt string
	var syncError, selected sql.NullString
	var instantMode int

	err := s.Scan(&p.ID, &p.SchemaVersion, &p.Title, &syncStatus, &syncError, &scenesJSON, &p.Playhead,
		&selected, &instantMode, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	p.SyncStatus = SyncStatus(syncStatus)
	p.SyncError = syncError.String
	p.SelectedSceneID = selected.String
	p.Settings.InstantMode = instantMode == 1
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)

	if err := json.Unmarshal([]byte(scenesJSON), &p.Scenes); err != nil {
		return nil, fmt.Errorf("decode scenes of project %s: %w", p.ID, err)
	}
	return &p, nil
}

func (r *SQLiteRepository) CreateRecording(ctx context.Context, rec *Recording) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recordings (id, path, filename, duration, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Path, rec.Filename, rec.Duration, rec.Size, formatTime(rec.CreatedAt))
	return err
}

func (r *SQLiteRepository) GetRecording(ctx context.Context, id string) (*Recording, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, path, filename, duration, size, created_at FROM recordings WHERE id = ?
	`, id)
	rec, err := scanRecording(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

func (r *SQLiteRepository) GetRecordingByPath(ctx context.Context, path string) (*Recording, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, path, filename, duration, size, created_at FROM recordings WHERE path = ?
	`, path)
	rec, err := scanRecording(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

func (r *SQLiteRepository) ListRecordings(ctx context.Context) ([]*Recording, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, path, filename, duration, size, created_at FROM recordings ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func scanRecording(s scanner) (*Recording, error) {
	var rec Recording
	var createdAt string
	if err := s.Scan(&rec.ID, &rec.Path, &rec.Filename, &rec.Duration, &rec.Size, &createdAt); err != nil {
		return nil, err
	}
	rec.CreatedAt = parseTime(createdAt)
	return &rec, nil
}

const jobColumns = `id, type, status, project_id, format, output_path, progress, error, created_at, updated_at`

func (r *SQLiteRepository) CreateJob(ctx context.Context, j *Job) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, j.ID, j.Type, j.Status, nullString(j.ProjectID), nullString(j.Format), nullString(j.OutputPath),
		j.Progress, nullString(j.Error), formatTime(j.CreatedAt), formatTime(j.UpdatedAt))
	return err
}

func (r *SQLiteRepository) GetJob(ctx context.Context, id string) (*Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return j, err
}

func (r *SQLiteRepository) ListJobs(ctx context.Context, limit int) ([]*Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// ListPendingJobs returns pending jobs oldest first.
func (r *SQLiteRepository) ListPendingJobs(ctx context.Context) ([]*Job, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+jobColumns+` FROM jobs WHERE status = 'pending' ORDER BY created_at ASC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

func scanJobs(rows *sql.Rows) ([]*Job, error) {
	var jobs []*Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func scanJob(s scanner) (*Job, error) {
	var j Job
	var projectID, format, outputPath, errMsg sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(&j.ID, &j.Type, &j.Status, &projectID, &format, &outputPath, &j.Progress, &errMsg,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	j.ProjectID = projectID.String
	j.Format = format.String
	j.OutputPath = outputPath.String
	j.Error = errMsg.String
	j.CreatedAt = parseTime(createdAt)
	j.UpdatedAt = parseTime(updatedAt)
	return &j, nil
}

func (r *SQLiteRepository) UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?
	`, status, nullString(errorMsg), formatTime(time.Now()), id)
	return err
}

func (r *SQLiteRepository) UpdateJobProgress(ctx context.Context, id string, progress int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET progress = ?, updated_at = ? WHERE id = ?
	`, progress, formatTime(time.Now()), id)
	return err
}

func (r *SQLiteRepository) SetJobOutput(ctx context.Context, id, outputPath string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET output_path = ?, updated_at = ? WHERE id = ?
	`, outputPath, formatTime(time.Now()), id)
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// timeLayout is fixed width so ORDER BY on the text columns follows time
// order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	// Rows touched by SQL defaults use datetime('now').
	t, _ := time.Parse(time.DateTime, s)
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
