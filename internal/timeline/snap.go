package timeline

import "math"

// SnapToStep snaps value to the nearest multiple of step when it lies
// within threshold of it. Otherwise value is returned rounded. A
// non-positive step disables snapping.
func SnapToStep(value, step, threshold float64) float64 {
	step = finiteOr(step, DefaultSnapStep)
	if step <= 0 {
		return finiteOr(value, 0)
	}

	value = finiteOr(value, 0)
	nearest := math.Floor(value/step+0.5) * step
	if math.Abs(nearest-value) > math.Abs(threshold) {
		return Round(value)
	}
	return Round(nearest)
}

// SnapToPoints snaps value to the closest finite point when it lies within
// threshold of it. Otherwise value is returned rounded.
func SnapToPoints(value float64, points []float64, threshold float64) float64 {
	value = finiteOr(value, 0)
	candidate := value
	minDistance := math.Inf(1)
	for _, p := range points {
		if !isFinite(p) {
			continue
		}
		if d := math.Abs(p - value); d < minDistance {
			minDistance = d
			candidate = p
		}
	}
	if minDistance <= math.Abs(threshold) {
		return Round(candidate)
	}
	return Round(value)
}

type snapConfig struct {
	step      float64
	threshold float64
}

// SnapOption configures SnapToTimeline.
type SnapOption func(*snapConfig)

// WithStep sets the grid step (default DefaultSnapStep).
func WithStep(step float64) SnapOption {
	return func(c *snapConfig) { c.step = step }
}

// WithThreshold sets the snapping tolerance (default DefaultSnapThreshold).
func WithThreshold(threshold float64) SnapOption {
	return func(c *snapConfig) { c.threshold = threshold }
}

// SnapToTimeline clamps value into the timeline, snaps it to the timeline
// start or a scene boundary, then to the step grid, and clamps again.
func SnapToTimeline(value float64, scenes []Scene, opts ...SnapOption) float64 {
	cfg := snapConfig{step: DefaultSnapStep, threshold: DefaultSnapThreshold}
	for _, opt := range opts {
		opt(&cfg)
	}

	ranges := SceneRanges(scenes)
	duration := rangesDuration(ranges)
	clamped := Clamp(value, 0, duration)

	points := make([]float64, 0, len(ranges)+1)
	points = append(points, 0)
	for _, r := range ranges {
		points = append(points, r.End)
	}

	snapped := SnapToPoints(clamped, points, cfg.threshold)
	snapped = SnapToStep(snapped, cfg.step, cfg.threshold)
	return Clamp(snapped, 0, duration)
}
