package audio

import (
	"math"
	"testing"
)

func TestOnePoleConverges(t *testing.T) {
	f := &onePole{}
	f.reset(1000)
	out := 0.0
	for i := 0; i < 48000; i++ {
		out = f.process(1, 1000, testSampleRate)
	}
	expectNearlyEqual(t, out, 1)
}

func TestOnePoleAttenuatesAboveCutoff(t *testing.T) {
	peak := func(freq float64) float64 {
		f := &onePole{}
		f.reset(500)
		m := 0.0
		for i := 0; i < 48000; i++ {
			v := f.process(math.Sin(2*math.Pi*freq*float64(i)/testSampleRate), 500, testSampleRate)
			if i > 24000 {
				m = math.Max(m, math.Abs(v))
			}
		}
		return m
	}
	low, high := peak(50), peak(8000)
	if high > low/10 {
		t.Errorf("expected 8 kHz to be attenuated, got %v against %v at 50 Hz", high, low)
	}
}

func TestCutoffFloor(t *testing.T) {
	f := &onePole{}
	f.reset(0)
	// a 0 Hz cutoff would never move
	for i := 0; i < 48000; i++ {
		f.process(1, 0, testSampleRate)
	}
	if f.state < 0.5 {
		t.Errorf("expected the 20 Hz floor to pass DC, but got: %v", f.state)
	}
}

// The cutoff glide is a fixed fraction per sample, so it is twice as fast in
// wall time at 96 kHz as at 48 kHz.
func TestCutoffSmoothingIsPerSample(t *testing.T) {
	a, b := &onePole{}, &onePole{}
	a.reset(8000)
	b.reset(8000)
	for i := 0; i < 100; i++ {
		a.process(0, 1000, 48000)
		b.process(0, 1000, 96000)
	}
	expectNearlyEqual(t, a.cutoff, b.cutoff)
	expectNearlyEqual(t, a.cutoff, 1000+7000*math.Pow(1-cutoffSmoothing, 100))
}
