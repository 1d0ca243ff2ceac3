package audio

import (
	"math"
	"testing"
)

var testBank = NewBank(48000)

func TestBankTables(t *testing.T) {
	for kind := WaveSine; kind < numSynthWaves; kind++ {
		for note := 0; note < numNotes; note++ {
			wt := testBank.Table(kind, note)
			if len(wt.Values()) != TableSize {
				t.Fatalf("%s note %d: expected %d values, but got: %d", kind, note, TableSize, len(wt.Values()))
			}
			if math.Abs(wt.peak()-1) > 1e-4 {
				t.Errorf("%s note %d: expected peak 1, but got: %v", kind, note, wt.peak())
			}
		}
	}
}

func TestMaxHarmonic(t *testing.T) {
	expectEqual(t, maxHarmonic(69, 48000), 54)
	expectEqual(t, maxHarmonic(127, 48000), 1)
	expectEqual(t, maxHarmonic(69, 44100), 50)
}

func TestSawHasNoPartialsAboveNyquist(t *testing.T) {
	x := append([]float64(nil), testBank.Table(WaveSaw, 69).Values()...)
	NewFFT(TableSize, false).CalcAbs(x)
	if x[54] < x[1]/54/2 {
		t.Errorf("expected harmonic 54 to be present, but got: %v", x[54])
	}
	for n := 55; n < TableSize/2; n++ {
		if x[n] > x[1]*1e-9 {
			t.Fatalf("expected no energy at harmonic %d, but got: %v", n, x[n])
		}
	}
}

func TestTriangleShape(t *testing.T) {
	wt := testBank.Table(WaveTriangle, 40)
	expectNearlyEqual(t, wt.values[0], 0)
	if wt.values[TableSize/4] < 0.999 {
		t.Errorf("expected the positive peak at a quarter cycle, but got: %v", wt.values[TableSize/4])
	}
	if wt.values[TableSize*3/4] > -0.999 {
		t.Errorf("expected the negative peak at three quarters, but got: %v", wt.values[TableSize*3/4])
	}
}

func TestWavetableAt(t *testing.T) {
	wt := newSineTable()
	expectNearlyEqual(t, wt.at(0), 0)
	expectNearlyEqual(t, wt.at(0.25), 1)
	expectNearlyEqual(t, wt.at(0.75), -1)
	// between the last value and the first one
	last := wt.values[TableSize-1]
	expectNearlyEqual(t, wt.at((TableSize-0.5)/TableSize), last/2)
}

func TestBankTableFallback(t *testing.T) {
	if testBank.Table(WaveCustom, 60) != testBank.Table(WaveSine, 60) {
		t.Error("expected non-synthetic kinds to read the sine table")
	}
	if testBank.Table(WaveSaw, 200) != testBank.Table(WaveSaw, 127) {
		t.Error("expected notes to be clamped")
	}
}

func TestWaveKindFromString(t *testing.T) {
	for kind := range waveKindNames {
		k, ok := WaveKindFromString(kind.String())
		expectEqual(t, ok, true)
		expectEqual(t, k, kind)
	}
	_, ok := WaveKindFromString("noise")
	expectEqual(t, ok, false)
	expectEqual(t, WaveKind(42).Valid(), false)
}
