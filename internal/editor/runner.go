package editor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/framecast/editor-agent/internal/export"
	"github.com/framecast/editor-agent/internal/logging"
	"github.com/framecast/editor-agent/internal/project"
)

const DefaultAutosaveInterval = 5 * time.Second

// Runner autosaves dirty sessions and works through queued export jobs.
type Runner struct {
	manager   *Manager
	service   *project.Service
	repo      project.Repository
	exporter  *export.Exporter
	exportDir string
	frameRate float64
	logger    *slog.Logger
	interval  time.Duration
	running   atomic.Bool
	paused    atomic.Bool
}

// NewRunner builds a runner ticking every interval. Exports are written
// to exportDir at the default frame rate.
func NewRunner(manager *Manager, service *project.Service, exportDir string, interval time.Duration, logger *slog.Logger) *Runner {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{
		manager:   manager,
		service:   service,
		repo:      service.Repository(),
		exporter:  export.NewExporter(service, logger),
		exportDir: exportDir,
		frameRate: export.DefaultFrameRate,
		logger:    logging.WithComponent(logger, "runner"),
		interval:  interval,
	}
}

// Start blocks until ctx is cancelled. Dirty sessions are flushed once
// more on the way out, even when paused.
func (r *Runner) Start(ctx context.Context) {
	if r.running.Swap(true) {
		return
	}

	r.logger.Info("editor runner started", "interval", r.interval.String())

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("editor runner stopping")
			r.flush(context.WithoutCancel(ctx))
			r.running.Store(false)
			return
		case <-ticker.C:
			if !r.paused.Load() {
				r.tick(ctx)
			}
		}
	}
}

func (r *Runner) Pause() {
	r.paused.Store(true)
	r.logger.Info("editor runner paused")
}

func (r *Runner) Resume() {
	r.paused.Store(false)
	r.logger.Info("editor runner resumed")
}

func (r *Runner) IsPaused() bool {
	return r.paused.Load()
}

func (r *Runner) IsRunning() bool {
	return r.running.Load()
}

func (r *Runner) tick(ctx context.Context) {
	r.flush(ctx)
	r.processNextJob(ctx)
}

func (r *Runner) flush(ctx context.Context) {
	saved, err := r.manager.FlushDirty(ctx)
	if err != nil {
		r.logger.Error("autosave failed", "error", err)
	}
	if saved > 0 {
		r.logger.Debug("autosaved sessions", "count", saved)
	}
}

func (r *Runner) processNextJob(ctx context.Context) {
	jobs, err := r.repo.ListPendingJobs(ctx)
	if err != nil {
		r.logger.Error("failed to list pending jobs", "error", err)
		return
	}
	if len(jobs) == 0 {
		return
	}

	job := jobs[0]
	logger := logging.WithJobID(r.logger, job.ID)
	logger.Info("processing job", "type", job.Type)

	switch job.Type {
	case project.JobTypeExport:
		r.processExportJob(ctx, job, logger)
	default:
		logger.Warn("unknown job type", "type", job.Type)
		r.setStatus(ctx, job.ID, project.JobStatusFailed, "unknown job type")
	}
}

func (r *Runner) processExportJob(ctx context.Context, job *project.Job, logger *slog.Logger) {
	p, err := r.service.LoadProject(ctx, job.ProjectID)
	if err != nil {
		r.setStatus(ctx, job.ID, project.JobStatusFailed, fmt.Sprintf("load project: %v", err))
		return
	}

	r.setStatus(ctx, job.ID, project.JobStatusRunning, "")

	if err := os.MkdirAll(r.exportDir, 0755); err != nil {
		r.setStatus(ctx, job.ID, project.JobStatusFailed, fmt.Sprintf("create export dir: %v", err))
		return
	}

	res, err := r.exporter.Write(ctx, export.Request{
		Title:     p.Title,
		Format:    job.Format,
		FrameRate: r.frameRate,
		OutputDir: r.exportDir,
		State:     p.Timeline(),
	})
	if err != nil {
		r.setStatus(ctx, job.ID, project.JobStatusFailed, fmt.Sprintf("export: %v", err))
		return
	}

	if err := r.repo.SetJobOutput(ctx, job.ID, res.OutputPath); err != nil {
		logger.Error("failed to record job output", "error", err)
	}
	if err := r.repo.UpdateJobProgress(ctx, job.ID, 100); err != nil {
		logger.Error("failed to update job progress", "error", err)
	}
	r.setStatus(ctx, job.ID, project.JobStatusCompleted, "")

	logger.Info("export job completed",
		"project_id", p.ID,
		"format", res.Format,
		"clips", res.ClipCount,
		"unresolved", len(res.UnresolvedClips),
		"path", logging.SanitizePath(res.OutputPath))
}

func (r *Runner) setStatus(ctx context.Context, jobID, status, msg string) {
	if err := r.repo.UpdateJobStatus(ctx, jobID, status, msg); err != nil {
		r.logger.Error("failed to update job status", "job_id", jobID, "status", status, "error", err)
	}
}

// ActiveJobCount returns the number of running jobs among the most recent
// ones.
func (r *Runner) ActiveJobCount(ctx context.Context) int {
	jobs, err := r.repo.ListJobs(ctx, 100)
	if err != nil {
		return 0
	}
	count := 0
	for _, j := range jobs {
		if j.Status == project.JobStatusRunning {
			count++
		}
	}
	return count
}
