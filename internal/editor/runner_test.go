package editor

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framecast/editor-agent/internal/project"
	"github.com/framecast/editor-agent/internal/timeline"
)

func setupRunnerTest(t *testing.T) (*Runner, *Manager, *project.Service, string) {
	t.Helper()
	m, svc := setupEditorTest(t)
	exportDir := filepath.Join(t.TempDir(), "exports")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewRunner(m, svc, exportDir, 10*time.Millisecond, logger), m, svc, exportDir
}

func TestRunner_ProcessesExportJob(t *testing.T) {
	r, _, svc, exportDir := setupRunnerTest(t)
	ctx := context.Background()
	p := createProject(t, svc)

	job, err := svc.QueueExport(ctx, p.ID, "edl")
	require.NoError(t, err)

	r.processNextJob(ctx)

	got, err := svc.Repository().GetJob(ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, project.JobStatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, exportDir, filepath.Dir(got.OutputPath))

	data, err := os.ReadFile(got.OutputPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "TITLE: Demo"))
}

func TestRunner_ExportYAML(t *testing.T) {
	r, _, svc, _ := setupRunnerTest(t)
	ctx := context.Background()
	p := createProject(t, svc)

	job, err := svc.QueueExport(ctx, p.ID, "YAML")
	require.NoError(t, err)
	r.processNextJob(ctx)

	got, err := svc.Repository().GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, project.JobStatusCompleted, got.Status)
	assert.Equal(t, ".yaml", filepath.Ext(got.OutputPath))
}

func TestRunner_FailsJobWithoutProject(t *testing.T) {
	r, _, svc, _ := setupRunnerTest(t)
	ctx := context.Background()

	job := &project.Job{
		ID:        project.NewID(),
		Type:      project.JobTypeExport,
		Status:    project.JobStatusPending,
		Format:    "edl",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, svc.Repository().CreateJob(ctx, job))

	r.processNextJob(ctx)

	got, err := svc.Repository().GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, project.JobStatusFailed, got.Status)
	assert.Contains(t, got.Error, "load project")
}

func TestRunner_FailsUnknownJobType(t *testing.T) {
	r, _, svc, _ := setupRunnerTest(t)
	ctx := context.Background()

	job := &project.Job{
		ID:        project.NewID(),
		Type:      "transcode",
		Status:    project.JobStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, svc.Repository().CreateJob(ctx, job))

	r.processNextJob(ctx)

	got, err := svc.Repository().GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, project.JobStatusFailed, got.Status)
	assert.Equal(t, "unknown job type", got.Error)
}

func TestRunner_NoPendingJobs(t *testing.T) {
	r, _, _, _ := setupRunnerTest(t)
	r.processNextJob(context.Background())
	assert.Zero(t, r.ActiveJobCount(context.Background()))
}

func TestRunner_AutosavesAndStopsCleanly(t *testing.T) {
	r, m, svc, _ := setupRunnerTest(t)
	p := createProject(t, svc)

	s, err := m.Open(context.Background(), p.ID)
	require.NoError(t, err)
	_, err = m.Dispatch(s.ID, timeline.SetPlayheadAction{Playhead: 4})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		cur, err := m.Get(s.ID)
		return err == nil && !cur.Dirty
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, r.IsRunning())

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}
	assert.False(t, r.IsRunning())

	loaded, err := svc.LoadProject(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, loaded.Playhead)
}

func TestRunner_PauseSkipsTicks(t *testing.T) {
	r, m, svc, _ := setupRunnerTest(t)
	s, err := m.Open(context.Background(), createProject(t, svc).ID)
	require.NoError(t, err)

	r.Pause()
	assert.True(t, r.IsPaused())

	_, err = m.Dispatch(s.ID, timeline.SetPlayheadAction{Playhead: 2})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	time.Sleep(40 * time.Millisecond)
	cur, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.True(t, cur.Dirty)

	r.Resume()
	assert.False(t, r.IsPaused())
	<-done
}
