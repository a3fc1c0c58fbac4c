package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/framecast/editor-agent/internal/media"
	"github.com/framecast/editor-agent/internal/timeline"
)

// Export formats accepted by QueueExport.
const (
	FormatEDL  = "edl"
	FormatYAML = "yaml"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

type Service struct {
	repo   Repository
	prober media.Prober
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the repository and an optional prober. A nil prober
// means recordings must be registered with a known duration.
func NewService(repo Repository, prober media.Prober, logger *slog.Logger) *Service {
	return &Service{repo: repo, prober: prober, logger: logger, now: time.Now}
}

func (s *Service) Repository() Repository {
	return s.repo
}

// CreateProject stores a new project holding scenes.
func (s *Service) CreateProject(ctx context.Context, title string, instantMode bool, scenes []timeline.Scene) (*Project, error) {
	p := NewDefaultProject(title, instantMode, s.now())
	p.Scenes = scenes
	saved, err := s.SaveProject(ctx, p)
	if err != nil {
		return nil, err
	}
	s.info("project created", "project_id", saved.ID, "scenes", len(saved.Scenes))
	return saved, nil
}

// LoadProject returns the migrated project or ErrProjectNotFound.
func (s *Service) LoadProject(ctx context.Context, id string) (*Project, error) {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}
	Migrate(p)
	return p, nil
}

// SaveProject migrates p, normalizes its timeline, bumps UpdatedAt and
// upserts it. The stored copy is returned; p itself is not modified.
func (s *Service) SaveProject(ctx context.Context, p *Project) (*Project, error) {
	next := *p
	if next.ID == "" {
		next.ID = NewID()
	}
	now := s.now()
	if next.CreatedAt.IsZero() {
		next.CreatedAt = now
	}
	Migrate(&next)
	next.ApplyTimeline(next.Timeline())
	next.UpdatedAt = now

	if err := s.repo.SaveProject(ctx, &next); err != nil {
		return nil, fmt.Errorf("save project %s: %w", next.ID, err)
	}
	return &next, nil
}

func (s *Service) ListProjects(ctx context.Context) ([]*Project, error) {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		Migrate(p)
	}
	return projects, nil
}

func (s *Service) DeleteProject(ctx context.Context, id string) error {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProjectNotFound
	}
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.info("project deleted", "project_id", id)
	return nil
}

func (s *Service) CountProjects(ctx context.Context) (int, error) {
	return s.repo.CountProjects(ctx)
}

// RegisterRecording records a media file on disk. Registering the same
// path twice returns the existing recording. A non-positive duration is
// probed.
func (s *Service) RegisterRecording(ctx context.Context, path string, duration float64) (*Recording, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("recording does not exist: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("recording path is a directory")
	}
	if !IsRecordingFile(absPath) {
		return nil, fmt.Errorf("unsupported recording type %q", filepath.Ext(absPath))
	}

	existing, err := s.repo.GetRecordingByPath(ctx, absPath)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if duration <= 0 {
		if s.prober == nil {
			return nil, fmt.Errorf("recording duration unknown and no prober configured")
		}
		probe, err := s.prober.Probe(ctx, absPath)
		if err != nil {
			return nil, fmt.Errorf("probe recording: %w", err)
		}
		duration = probe.Duration
	}

	rec := &Recording{
		ID:        NewID(),
		Path:      absPath,
		Filename:  filepath.Base(absPath),
		Duration:  timeline.Round(duration),
		Size:      info.Size(),
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateRecording(ctx, rec); err != nil {
		return nil, err
	}

	s.info("recording registered", "recording_id", rec.ID, "duration", rec.Duration)
	return rec, nil
}

func (s *Service) GetRecording(ctx context.Context, id string) (*Recording, error) {
	rec, err := s.repo.GetRecording(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrRecordingNotFound
	}
	return rec, nil
}

func (s *Service) ListRecordings(ctx context.Context) ([]*Recording, error) {
	return s.repo.ListRecordings(ctx)
}

// ScenesFromRecordings loads the given recordings in order and turns each
// into a scene.
func (s *Service) ScenesFromRecordings(ctx context.Context, ids []string) ([]timeline.Scene, error) {
	scenes := make([]timeline.Scene, 0, len(ids))
	for _, id := range ids {
		rec, err := s.GetRecording(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("recording %s: %w", id, err)
		}
		scenes = append(scenes, SceneFromRecording(rec))
	}
	return scenes, nil
}

// ResolveMedia returns the media path for a scene's recording.
func (s *Service) ResolveMedia(ctx context.Context, scene timeline.Scene) (string, error) {
	id, ok := RecordingID(scene)
	if !ok {
		return "", nil
	}
	rec, err := s.GetRecording(ctx, id)
	if err != nil {
		return "", err
	}
	return rec.Path, nil
}

// QueueExport creates a pending export job for a project.
func (s *Service) QueueExport(ctx context.Context, projectID, format string) (*Job, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatEDL
	}
	if format != FormatEDL && format != FormatYAML {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	if _, err := s.LoadProject(ctx, projectID); err != nil {
		return nil, err
	}

	now := s.now()
	job := &Job{
		ID:        NewID(),
		Type:      JobTypeExport,
		Status:    JobStatusPending,
		ProjectID: projectID,
		Format:    format,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	s.info("export job created", "job_id", job.ID, "project_id", projectID, "format", format)
	return job, nil
}

func (s *Service) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}
