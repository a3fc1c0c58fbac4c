package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/framecast/editor-agent/internal/timeline"
)

const (
	FormatEDL  = "edl"
	FormatYAML = "yaml"
)

var ErrUnknownFormat = errors.New("unknown export format")

type Request struct {
	Title     string
	Format    string
	FrameRate float64
	OutputDir string
	State     timeline.State
}

type Result struct {
	Format          string   `json:"format"`
	OutputPath      string   `json:"output_path"`
	ClipCount       int      `json:"clip_count"`
	Duration        float64  `json:"duration"`
	UnresolvedClips []string `json:"unresolved_clips"`
}

type Exporter struct {
	resolver MediaResolver
	logger   *slog.Logger
}

func NewExporter(resolver MediaResolver, logger *slog.Logger) *Exporter {
	return &Exporter{resolver: resolver, logger: logger}
}

// Render returns the document bytes and the clips they describe.
func (e *Exporter) Render(ctx context.Context, req Request) ([]byte, []Clip, []string, error) {
	clips, unresolved, err := BuildClips(ctx, req.State, e.resolver)
	if err != nil {
		return nil, nil, nil, err
	}

	switch normalizeFormat(req.Format) {
	case FormatEDL:
		return []byte(GenerateEDL(clips, req.Title, req.FrameRate)), clips, unresolved, nil
	case FormatYAML:
		data, err := GenerateCutList(clips, req.Title, req.FrameRate)
		return data, clips, unresolved, err
	default:
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrUnknownFormat, req.Format)
	}
}

// Write renders req into OutputDir. The directory must already exist. The
// file is written to a temporary name first and renamed into place.
func (e *Exporter) Write(ctx context.Context, req Request) (*Result, error) {
	if err := ValidateOutputDir(req.OutputDir); err != nil {
		return nil, err
	}

	format := normalizeFormat(req.Format)
	data, clips, unresolved, err := e.Render(ctx, req)
	if err != nil {
		return nil, err
	}

	outPath := filepath.Join(req.OutputDir, FileName(req.Title, format))
	tmp, err := os.CreateTemp(req.OutputDir, ".export-*")
	if err != nil {
		return nil, fmt.Errorf("create export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write export file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close export file: %w", err)
	}
	if err := os.Rename(tmp.Name(), outPath); err != nil {
		return nil, fmt.Errorf("rename export file: %w", err)
	}

	result := &Result{
		Format:          format,
		OutputPath:      outPath,
		ClipCount:       len(clips),
		Duration:        clipsDuration(clips),
		UnresolvedClips: unresolved,
	}
	if result.UnresolvedClips == nil {
		result.UnresolvedClips = []string{}
	}

	if e.logger != nil {
		e.logger.Info("export written",
			"format", format,
			"clips", len(clips),
			"unresolved", len(unresolved),
			"output", outPath,
		)
	}
	return result, nil
}

func normalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		return FormatEDL
	}
	return format
}
