package audio

import "math"

const (
	// cutoffSmoothing is applied once per sample regardless of the sample
	// rate, so the glide time of a cutoff change scales with 1/sampleRate.
	cutoffSmoothing = 0.001
	minCutoff       = 20.0
	defaultCutoff   = 8000.0
)

// onePole is the per-voice lowpass.
type onePole struct {
	state  float64
	cutoff float64 // smoothed, Hz
}

func (f *onePole) reset(cutoff float64) {
	f.state = 0
	f.cutoff = cutoff
}

func (f *onePole) process(in float64, targetCutoff float64, sampleRate float64) float64 {
	f.cutoff += cutoffSmoothing * (targetCutoff - f.cutoff)
	fc := math.Max(minCutoff, f.cutoff)
	alpha := 1 - math.Exp(-2*math.Pi*fc/sampleRate)
	f.state += alpha * (in - f.state)
	return f.state
}
