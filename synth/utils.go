package synth

import (
	"math"

	"github.com/cwbudde/algo-approx"
)

func expApprox(x float64) float64 {
	return float64(approx.FastExp(float32(x)))
}

// expRamp evaluates an exponential ramp from g0 to g1 at fraction
// frac in [0,1]. Both endpoints must be positive.
func expRamp(g0, g1, frac float64) float64 {
	if frac <= 0 {
		return g0
	}
	if frac >= 1 {
		return g1
	}
	return g0 * expApprox(math.Log(g1/g0)*frac)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
