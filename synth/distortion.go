package synth

import "math"

const curveSamples = 44100

// distortionCurveCache maps quantized distortion amounts to precomputed
// waveshaper curves. Keys are round(amount*100), so amounts that agree
// to two decimals share one curve. Entries are append-only and live for
// the engine lifetime; repeated identical settings cost one map lookup.
type distortionCurveCache struct {
	curves map[int][]float32
}

func newDistortionCurveCache() *distortionCurveCache {
	return &distortionCurveCache{curves: make(map[int][]float32)}
}

// curve returns the waveshaper curve for the given distortion amount in
// [0,1]. Amount 0 (after quantization) returns nil, the pass-through.
func (c *distortionCurveCache) curve(amount float64) []float32 {
	key := int(math.Round(amount * 100))
	if key <= 0 {
		return nil
	}
	if cached, ok := c.curves[key]; ok {
		return cached
	}
	k := float64(key) / 100 * 50
	curve := make([]float32, curveSamples)
	const deg20 = 20 * math.Pi / 180
	for i := range curve {
		x := 2*float64(i)/float64(curveSamples) - 1
		curve[i] = float32((3 + k) * x * deg20 / (math.Pi + k*math.Abs(x)))
	}
	c.curves[key] = curve
	return curve
}

// waveshape maps x in [-1,1] through the curve table.
func waveshape(curve []float32, x float32) float32 {
	if len(curve) == 0 {
		return x
	}
	if x < -1 {
		x = -1
	}
	if x > 1 {
		x = 1
	}
	idx := int((x + 1) / 2 * float32(len(curve)-1))
	return curve[idx]
}
