package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultFFprobePath  = "ffprobe"
	DefaultProbeTimeout = 30 * time.Second

	maxStderrBytes = 4 * 1024
)

var ErrNoDuration = errors.New("media has no duration")

// FFprobe shells out to the ffprobe binary.
type FFprobe struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewFFprobe resolves binary on PATH. An empty binary means "ffprobe".
func NewFFprobe(binary string, logger *slog.Logger) (*FFprobe, error) {
	if binary == "" {
		binary = DefaultFFprobePath
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q not found: %w", binary, err)
	}
	return &FFprobe{binary: resolved, timeout: DefaultProbeTimeout, logger: logger}, nil
}

func (f *FFprobe) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, f.binary,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.Writer(&limitedWriter{w: &stderr, limit: maxStderrBytes})

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if f.logger != nil {
			f.logger.Warn("ffprobe failed",
				"error", err,
				"duration_ms", time.Since(start).Milliseconds(),
				"stderr_tail", strings.TrimSpace(stderr.String()),
			)
		}
		return nil, fmt.Errorf("ffprobe: %w", err)
	}

	result, err := parseProbeOutput(stdout.Bytes())
	if err != nil {
		return nil, err
	}
	if f.logger != nil {
		f.logger.Debug("ffprobe complete", "duration", result.Duration, "codec", result.Codec)
	}
	return result, nil
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		Duration     string `json:"duration"`
	} `json:"streams"`
}

func parseProbeOutput(data []byte) (*ProbeResult, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	var result ProbeResult
	for _, s := range out.Streams {
		if s.CodecType != "video" {
			continue
		}
		result.Codec = s.CodecName
		result.Width = s.Width
		result.Height = s.Height
		result.FrameRate, _ = ParseFrameRate(s.AvgFrameRate)
		if out.Format.Duration == "" {
			out.Format.Duration = s.Duration
		}
		break
	}

	duration, err := ParseDuration(out.Format.Duration)
	if err != nil {
		return nil, err
	}
	result.Duration = duration
	return &result, nil
}

// ParseDuration parses ffprobe's seconds value ("12.345000"). Missing,
// "N/A" and non-positive values are ErrNoDuration.
func ParseDuration(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return 0, ErrNoDuration
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	if d <= 0 {
		return 0, ErrNoDuration
	}
	return d, nil
}

// ParseFrameRate parses a rational rate such as "30000/1001" or a plain
// number.
func ParseFrameRate(s string) (float64, error) {
	num, den, found := strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
	}
	if !found {
		return n, nil
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
	}
	if d == 0 {
		return 0, fmt.Errorf("parse frame rate %q: zero denominator", s)
	}
	return n / d, nil
}

// limitedWriter keeps only the last limit bytes written.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.w.Write(p)
	if lw.w.Len() > lw.limit {
		b := lw.w.Bytes()
		tail := append([]byte(nil), b[len(b)-lw.limit:]...)
		lw.w.Reset()
		lw.w.Write(tail)
	}
	return n, nil
}
