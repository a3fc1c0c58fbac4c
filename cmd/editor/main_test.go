package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/framecast/editor-agent/internal/db"
	"github.com/framecast/editor-agent/internal/export"
	"github.com/framecast/editor-agent/internal/project"
	"github.com/framecast/editor-agent/internal/timeline"
)

func setupStore(t *testing.T) (*project.SQLiteRepository, *project.Service) {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("failed to create db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	repo := project.NewRepository(database.Conn())
	return repo, project.NewService(repo, nil, nil)
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0:00.0"},
		{9, "0:09.0"},
		{65.2, "1:05.2"},
		{600, "10:00.0"},
	}
	for _, tt := range tests {
		if got := formatSeconds(tt.in); got != tt.want {
			t.Errorf("formatSeconds(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteProjectTable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := project.NewDefaultProject("Demo", false, now.Add(-2*time.Hour))
	p.Scenes = []timeline.Scene{
		{ID: "a", SourceDuration: 5},
		{ID: "b", SourceDuration: 4},
	}

	var buf bytes.Buffer
	if err := writeProjectTable(&buf, []*project.Project{p}, now); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"TITLE", "Demo", "0:09.0", "local_only", "2 hours ago"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := writeProjectTable(&buf, nil, now); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "no projects\n" {
		t.Errorf("empty table = %q", buf.String())
	}
}

func TestExportProjects(t *testing.T) {
	_, svc := setupStore(t)
	ctx := context.Background()

	first, err := svc.CreateProject(ctx, "First Cut", false, []timeline.Scene{{ID: "a", SourceDuration: 3}})
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.CreateProject(ctx, "Second Cut", false, []timeline.Scene{{ID: "b", SourceDuration: 2}})
	if err != nil {
		t.Fatal(err)
	}

	outDir := t.TempDir()
	exporter := export.NewExporter(svc, nil)
	results, err := exportProjects(ctx, svc, exporter, []string{first.ID, second.ID}, exportOptions{
		format:    export.FormatYAML,
		outDir:    outDir,
		frameRate: 25,
	})
	if err != nil {
		t.Fatalf("exportProjects: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for i, want := range []string{"First", "Second"} {
		if !strings.Contains(filepath.Base(results[i].OutputPath), want) {
			t.Errorf("results[%d] = %s, want it to contain %q", i, results[i].OutputPath, want)
		}
		if _, err := os.Stat(results[i].OutputPath); err != nil {
			t.Errorf("output missing: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := writeExportResults(&buf, results); err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 2 {
		t.Errorf("printed %d lines, want 2", lines)
	}
}

func TestExportProjects_UnknownID(t *testing.T) {
	_, svc := setupStore(t)

	_, err := exportProjects(context.Background(), svc, export.NewExporter(svc, nil), []string{"missing"}, exportOptions{
		format: export.FormatEDL,
		outDir: t.TempDir(),
	})
	if err == nil || !strings.Contains(err.Error(), "missing") {
		t.Fatalf("err = %v, want project not found for missing", err)
	}
}

func TestEnsureAuthToken_Stable(t *testing.T) {
	repo, _ := setupStore(t)
	ctx := context.Background()

	first, err := ensureAuthToken(ctx, repo)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 64 {
		t.Errorf("token length = %d, want 64", len(first))
	}

	second, err := ensureAuthToken(ctx, repo)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("token changed between calls")
	}
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "framecast-editor ") {
		t.Errorf("version output = %q", buf.String())
	}
}
