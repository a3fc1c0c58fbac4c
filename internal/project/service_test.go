package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/framecast/editor-agent/internal/db"
	"github.com/framecast/editor-agent/internal/media"
	"github.com/framecast/editor-agent/internal/timeline"
)

func setupTestDB(t *testing.T) (*db.DB, Repository) {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database, NewRepository(database.Conn())
}

func writeRecording(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("fake media"), 0644); err != nil {
		t.Fatalf("write recording: %v", err)
	}
	return path
}

func TestService_CreateAndLoadProject(t *testing.T) {
	_, repo := setupTestDB(t)
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	created, err := svc.CreateProject(ctx, "", false, []timeline.Scene{
		{ID: "intro", SourceDuration: 5, TrimStart: 4.95, TrimEnd: 1},
		{ID: "intro", SourceDuration: 2},
	})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	if created.Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", created.Title, DefaultTitle)
	}
	if created.SyncStatus != SyncLocalOnly {
		t.Errorf("SyncStatus = %q, want local_only", created.SyncStatus)
	}

	loaded, err := svc.LoadProject(ctx, created.ID)
	if err != nil {
		t.Fatalf("LoadProject() error = %v", err)
	}
	if len(loaded.Scenes) != 2 {
		t.Fatalf("len(Scenes) = %d, want 2", len(loaded.Scenes))
	}
	if loaded.Scenes[1].ID != "intro-2" {
		t.Errorf("duplicate id not made unique: %q", loaded.Scenes[1].ID)
	}
	if got := timeline.SceneDuration(loaded.Scenes[0]); got != timeline.MinSceneDuration {
		t.Errorf("first scene duration = %v, want %v", got, timeline.MinSceneDuration)
	}
	if loaded.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", loaded.SchemaVersion, SchemaVersion)
	}
}

func TestService_LoadProject_NotFound(t *testing.T) {
	_, repo := setupTestDB(t)
	svc := NewService(repo, nil, nil)

	_, err := svc.LoadProject(context.Background(), "missing")
	if !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("LoadProject() error = %v, want ErrProjectNotFound", err)
	}
}

func TestService_SaveProject_ClampsPlayheadAndSelection(t *testing.T) {
	_, repo := setupTestDB(t)
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	p := NewDefaultProject("Demo", true, time.Now())
	p.Scenes = []timeline.Scene{{ID: "a", SourceDuration: 3}}
	p.Playhead = 99
	p.SelectedSceneID = "ghost"

	saved, err := svc.SaveProject(ctx, p)
	if err != nil {
		t.Fatalf("SaveProject() error = %v", err)
	}
	if saved.Playhead != 3 {
		t.Errorf("Playhead = %v, want 3", saved.Playhead)
	}
	if saved.SelectedSceneID != "a" {
		t.Errorf("SelectedSceneID = %q, want a", saved.SelectedSceneID)
	}
	if p.Playhead != 99 {
		t.Error("SaveProject modified its argument")
	}
	if !saved.Settings.InstantMode {
		t.Error("InstantMode lost")
	}
}

func TestService_ListProjects_NewestFirst(t *testing.T) {
	_, repo := setupTestDB(t)
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	first, err := svc.CreateProject(ctx, "First", false, nil)
	if err != nil {
		t.Fatal(err)
	}
	clock = clock.Add(time.Minute)
	second, err := svc.CreateProject(ctx, "Second", false, nil)
	if err != nil {
		t.Fatal(err)
	}
	clock = clock.Add(time.Minute)
	if _, err := svc.SaveProject(ctx, first); err != nil {
		t.Fatal(err)
	}

	projects, err := svc.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("len = %d, want 2", len(projects))
	}
	if projects[0].ID != first.ID || projects[1].ID != second.ID {
		t.Errorf("order = [%s %s], want [%s %s]", projects[0].Title, projects[1].Title, "First", "Second")
	}

	count, err := svc.CountProjects(ctx)
	if err != nil || count != 2 {
		t.Errorf("CountProjects() = %d, %v", count, err)
	}
}

func TestService_DeleteProject(t *testing.T) {
	_, repo := setupTestDB(t)
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, "Doomed", false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProject() error = %v", err)
	}
	if err := svc.DeleteProject(ctx, p.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("second DeleteProject() error = %v, want ErrProjectNotFound", err)
	}
}

func TestService_RegisterRecording_Probes(t *testing.T) {
	_, repo := setupTestDB(t)
	svc := NewService(repo, media.NewStubProber(6.5, nil), nil)
	ctx := context.Background()

	path := writeRecording(t, t.TempDir(), "take-1.webm")

	rec, err := svc.RegisterRecording(ctx, path, 0)
	if err != nil {
		t.Fatalf("RegisterRecording() error = %v", err)
	}
	if rec.Duration != 6.5 {
		t.Errorf("Duration = %v, want 6.5", rec.Duration)
	}
	if rec.Filename != "take-1.webm" {
		t.Errorf("Filename = %q", rec.Filename)
	}

	again, err := svc.RegisterRecording(ctx, path, 3)
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != rec.ID {
		t.Error("registering the same path twice created a second recording")
	}

	scene := SceneFromRecording(rec)
	if scene.ID != "take-1" || scene.SourceDuration != 6.5 {
		t.Errorf("SceneFromRecording = %+v", scene)
	}
	if id, ok := RecordingID(scene); !ok || id != rec.ID {
		t.Errorf("RecordingID = %q, %v", id, ok)
	}

	mediaPath, err := svc.ResolveMedia(ctx, scene)
	if err != nil || mediaPath != rec.Path {
		t.Errorf("ResolveMedia = %q, %v", mediaPath, err)
	}
}

func TestService_RegisterRecording_Rejects(t *testing.T) {
	_, repo := setupTestDB(t)
	svc := NewService(repo, nil, nil)
	ctx := context.Background()
	dir := t.TempDir()

	if _, err := svc.RegisterRecording(ctx, filepath.Join(dir, "missing.webm"), 1); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := svc.RegisterRecording(ctx, writeRecording(t, dir, "notes.txt"), 1); err == nil {
		t.Error("expected error for non-media file")
	}
	if _, err := svc.RegisterRecording(ctx, writeRecording(t, dir, "clip.mp4"), 0); err == nil {
		t.Error("expected error without prober or duration")
	}
	if _, err := svc.RegisterRecording(ctx, dir, 1); err == nil {
		t.Error("expected error for directory")
	}
}

func TestService_ScenesFromRecordings(t *testing.T) {
	_, repo := setupTestDB(t)
	svc := NewService(repo, nil, nil)
	ctx := context.Background()
	dir := t.TempDir()

	a, err := svc.RegisterRecording(ctx, writeRecording(t, dir, "a.webm"), 4)
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.RegisterRecording(ctx, writeRecording(t, dir, "b.mov"), 2)
	if err != nil {
		t.Fatal(err)
	}

	scenes, err := svc.ScenesFromRecordings(ctx, []string{b.ID, a.ID})
	if err != nil {
		t.Fatalf("ScenesFromRecordings() error = %v", err)
	}
	if len(scenes) != 2 || scenes[0].ID != "b" || scenes[1].ID != "a" {
		t.Errorf("scenes = %+v", scenes)
	}

	if _, err := svc.ScenesFromRecordings(ctx, []string{"nope"}); !errors.Is(err, ErrRecordingNotFound) {
		t.Errorf("error = %v, want ErrRecordingNotFound", err)
	}
}

func TestService_QueueExport(t *testing.T) {
	_, repo := setupTestDB(t)
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, "Exported", false, []timeline.Scene{{ID: "a", SourceDuration: 2}})
	if err != nil {
		t.Fatal(err)
	}

	job, err := svc.QueueExport(ctx, p.ID, "YAML")
	if err != nil {
		t.Fatalf("QueueExport() error = %v", err)
	}
	if job.Status != JobStatusPending || job.Format != FormatYAML || job.ProjectID != p.ID {
		t.Errorf("job = %+v", job)
	}

	pending, err := repo.ListPendingJobs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ID != job.ID {
		t.Errorf("pending jobs = %+v", pending)
	}

	if _, err := svc.QueueExport(ctx, p.ID, "mp4"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := svc.QueueExport(ctx, "missing", "edl"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("error = %v, want ErrProjectNotFound", err)
	}
}

func TestRepository_JobLifecycle(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	now := time.Now()
	job := &Job{ID: NewID(), Type: JobTypeExport, Status: JobStatusPending, Format: FormatEDL, CreatedAt: now, UpdatedAt: now}
	if err := repo.CreateJob(ctx, job); err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}

	if err := repo.UpdateJobStatus(ctx, job.ID, JobStatusRunning, ""); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateJobProgress(ctx, job.ID, 40); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetJobOutput(ctx, job.ID, "/tmp/out.edl"); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateJobStatus(ctx, job.ID, JobStatusFailed, "disk full"); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if got.Status != JobStatusFailed || got.Error != "disk full" || got.Progress != 40 || got.OutputPath != "/tmp/out.edl" {
		t.Errorf("job = %+v", got)
	}

	missing, err := repo.GetJob(ctx, "missing")
	if err != nil || missing != nil {
		t.Errorf("GetJob(missing) = %v, %v; want nil, nil", missing, err)
	}

	jobs, err := repo.ListJobs(ctx, 0)
	if err != nil || len(jobs) != 1 {
		t.Errorf("ListJobs() = %d jobs, %v", len(jobs), err)
	}
}

func TestRepository_Config(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	value, err := repo.GetConfig(ctx, "auth_token")
	if err != nil || value != "" {
		t.Errorf("GetConfig(unset) = %q, %v", value, err)
	}

	if err := repo.SetConfig(ctx, "auth_token", "one"); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetConfig(ctx, "auth_token", "two"); err != nil {
		t.Fatal(err)
	}
	if value, _ := repo.GetConfig(ctx, "auth_token"); value != "two" {
		t.Errorf("GetConfig = %q, want two", value)
	}
}

func TestMigrate_FillsDefaults(t *testing.T) {
	p := &Project{ID: "old", SyncStatus: "weird", SyncError: "stale"}
	Migrate(p)

	if p.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %d", p.SchemaVersion)
	}
	if p.SyncStatus != SyncLocalOnly {
		t.Errorf("SyncStatus = %q", p.SyncStatus)
	}
	if p.SyncError != "" {
		t.Errorf("SyncError = %q, want cleared", p.SyncError)
	}
	if p.Title != DefaultTitle {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Scenes == nil {
		t.Error("Scenes should be an empty slice")
	}
	if p.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}

	conflicted := &Project{SchemaVersion: SchemaVersion, Title: "x", SyncStatus: SyncConflict, SyncError: "remote newer"}
	Migrate(conflicted)
	if conflicted.SyncError != "remote newer" {
		t.Errorf("SyncError = %q, want kept for conflicts", conflicted.SyncError)
	}
}
