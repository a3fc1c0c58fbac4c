// Package media inspects recordings produced by the capture side so the
// editor knows how long each source is.
package media

import (
	"context"
	"log/slog"
)

// Prober reads container metadata from a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (*ProbeResult, error)
}

type ProbeResult struct {
	Duration  float64 `json:"duration"`
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
	Codec     string  `json:"codec,omitempty"`
	FrameRate float64 `json:"frame_rate,omitempty"`
}

// StubProber returns a fixed duration. It is used when ffprobe is not
// installed and in tests.
type StubProber struct {
	Duration float64
	logger   *slog.Logger
}

func NewStubProber(duration float64, logger *slog.Logger) *StubProber {
	return &StubProber{Duration: duration, logger: logger}
}

func (p *StubProber) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	if p.logger != nil {
		p.logger.Debug("stub probe", "path", path, "duration", p.Duration)
	}
	return &ProbeResult{Duration: p.Duration}, nil
}
