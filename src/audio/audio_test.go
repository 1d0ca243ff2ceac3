package audio

import (
	"fmt"
	"math"
	"testing"
)

func expectNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("expected no error, but got: %v", err)
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Backend = backendHeadless
	cfg.PresetDir = t.TempDir()
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	t.Cleanup(func() {
		expectNoError(t, e.Close())
	})
	if !e.Start() {
		t.Fatal("failed to start headless engine")
	}
	return e
}

// renderFor renders sec seconds in buffers of the configured size and returns
// the peak of every buffer.
func renderFor(e *Engine, sec float64) []float64 {
	out := make([]float64, e.config.BufferFrames)
	buffers := int(math.Ceil(sec * e.SampleRate() / float64(len(out))))
	peaks := make([]float64, buffers)
	for b := range peaks {
		e.Render(out)
		for _, v := range out {
			peaks[b] = math.Max(peaks[b], math.Abs(v))
		}
	}
	return peaks
}

func TestBenchmark(t *testing.T) {
	times := 1000

	e := newTestEngine(t)
	out := make([]float64, e.config.BufferFrames)
	expectNoError(t, e.update([]string{"waveform", "saw"}))
	for ch := 0; ch < MaxChannels; ch++ {
		expectNoError(t, e.update([]string{"note_on", fmt.Sprint(ch), fmt.Sprint(48 + ch*5), "100"}))
	}
	e.Render(out)
	start := now()
	for n := 0; n < times; n++ {
		e.Render(out)
	}
	end := now()
	averageProcessTime := (end - start) / float64(times) * 1000
	fmt.Printf("average process time: %.3fms (%d voices)\n", averageProcessTime, e.ActiveVoices())
	expectEqual(t, e.ActiveVoices(), MaxChannels)
}
