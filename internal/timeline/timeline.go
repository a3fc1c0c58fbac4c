// Package timeline is the scene/timeline state engine behind the editor.
//
// A timeline is an ordered list of trimmed scenes laid end to end. Every
// function in this package is pure and total: inputs are never mutated,
// malformed numbers are coerced to safe values, unknown scene ids are
// no-ops and out-of-range indices are clamped. Nothing here returns an
// error or panics, except the action wire codec in action.go.
//
// All derived numbers are rounded to six decimals after each arithmetic
// step so cumulative sums over many scenes do not drift.
package timeline

import "math"

const (
	// MinSceneDuration is the shortest effective duration a scene can
	// be trimmed to, in seconds.
	MinSceneDuration = 0.1

	DefaultSnapStep      = 0.25
	DefaultSnapThreshold = 0.05

	// OverlapEpsilon is the tolerance used by HasOverlap.
	OverlapEpsilon = 0.000001

	precision = 6
)

var roundFactor = math.Pow(10, precision)

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteOr(v, fallback float64) float64 {
	if isFinite(v) {
		return v
	}
	return fallback
}

// Round rounds v to six decimals, halves toward positive infinity.
// Non-finite input yields 0 and negative zero is normalized to 0.
func Round(v float64) float64 {
	v = finiteOr(v, 0)
	r := math.Floor(v*roundFactor+0.5) / roundFactor
	if r == 0 {
		return 0
	}
	return r
}

// Clamp bounds v to [lo, hi]. A non-finite v becomes lo, a non-finite lo
// becomes 0 and a non-finite hi becomes lo.
func Clamp(v, lo, hi float64) float64 {
	lo = finiteOr(lo, 0)
	hi = finiteOr(hi, lo)
	v = finiteOr(v, lo)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampIndex(i, lo, hi int) int {
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}
