package audio

import (
	"math"
	"sync"
)

// TableSize is the length of every single-cycle table.
const TableSize = 2048

const numNotes = 128

// minPeak keeps normalization from blowing up on (near) silent tables.
const minPeak = 1e-6

// maxTablePartial is the highest partial a table can hold without folding.
const maxTablePartial = TableSize/2 - 1

// Wavetable is one immutable cycle of a waveform. Once published it is never
// written again.
type Wavetable struct {
	values [TableSize]float64
}

// Values returns the samples of the table. Callers must not modify them.
func (wt *Wavetable) Values() []float64 {
	return wt.values[:]
}

func (wt *Wavetable) generate(phaseToValue func(phase float64) float64) {
	for i := 0; i < TableSize; i++ {
		phase := 2.0 * math.Pi / float64(TableSize) * float64(i)
		wt.values[i] = phaseToValue(phase)
	}
}

// at reads the table with linear interpolation. phase is in [0,1).
func (wt *Wavetable) at(phase float64) float64 {
	idx := phase * TableSize
	i0 := int(idx)
	frac := idx - float64(i0)
	i0 %= TableSize
	if i0 < 0 {
		i0 += TableSize
	}
	i1 := i0 + 1
	if i1 >= TableSize {
		i1 = 0
	}
	return wt.values[i0]*(1-frac) + wt.values[i1]*frac
}

func (wt *Wavetable) peak() float64 {
	m := 0.0
	for _, v := range wt.values {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

func (wt *Wavetable) normalize() {
	m := wt.peak()
	if m < minPeak {
		m = 1
	}
	for i := range wt.values {
		wt.values[i] /= m
	}
}

func (wt *Wavetable) makeBandLimitedTable(partials int, coefficientOfPartial func(n int) float64) {
	for i := range wt.values {
		wt.values[i] = 0
	}
	for n := 1; n <= partials; n++ {
		c := coefficientOfPartial(n)
		if c == 0 {
			continue
		}
		// sin(2*pi*n*i/TableSize) repeats every TableSize steps of n*i
		for i := range wt.values {
			wt.values[i] += c * unitSine.values[(n*i)%TableSize]
		}
	}
	wt.normalize()
}

func newSineTable() *Wavetable {
	wt := &Wavetable{}
	wt.generate(math.Sin)
	return wt
}

var unitSine = newSineTable()

// maxHarmonic is the highest partial of note that stays below nyquist.
func maxHarmonic(note int, sampleRate float64) int {
	partials := int(math.Floor(sampleRate / 2 / noteToFreq(note)))
	if partials < 1 {
		partials = 1
	}
	return partials
}

// ----- Partials ----- //

func sinePartial(n int) float64 {
	if n == 1 {
		return 1
	}
	return 0
}
func sawPartial(n int) float64 {
	return 1 / float64(n)
}
func squarePartial(n int) float64 {
	if n%2 == 1 {
		return 1 / float64(n)
	}
	return 0
}

// odd partials at 1/n^2, sign flipping on every odd partial: +1, -3, +5, ...
func trianglePartial(n int) float64 {
	if n%2 == 0 {
		return 0
	}
	x := float64(n)
	if (n-1)/2%2 == 1 {
		return -1 / (x * x)
	}
	return 1 / (x * x)
}

func partialsOf(kind WaveKind) func(n int) float64 {
	switch kind {
	case WaveTriangle:
		return trianglePartial
	case WaveSaw:
		return sawPartial
	case WaveSquare:
		return squarePartial
	default:
		return sinePartial
	}
}

// ----- Bank ----- //

// Bank holds one band-limited table per synthetic waveform and MIDI note.
// A Bank is immutable once built; a sample-rate change builds a new one.
type Bank struct {
	sampleRate float64
	tables     [numSynthWaves][numNotes]*Wavetable
}

// NewBank generates every table for sampleRate. Waveforms are generated in
// parallel; this must never run on the render thread.
func NewBank(sampleRate float64) *Bank {
	b := &Bank{sampleRate: sampleRate}
	var wg sync.WaitGroup
	for kind := WaveSine; kind < numSynthWaves; kind++ {
		wg.Add(1)
		go func(kind WaveKind) {
			defer wg.Done()
			coefficient := partialsOf(kind)
			for note := 0; note < numNotes; note++ {
				wt := &Wavetable{}
				partials := maxHarmonic(note, sampleRate)
				if partials > maxTablePartial {
					partials = maxTablePartial
				}
				wt.makeBandLimitedTable(partials, coefficient)
				b.tables[kind][note] = wt
			}
		}(kind)
	}
	wg.Wait()
	return b
}

// SampleRate is the rate the bank was generated for.
func (b *Bank) SampleRate() float64 {
	return b.sampleRate
}

// Table returns the table for kind and note. note is clamped to 0..127,
// kinds without a synthetic table fall back to sine.
func (b *Bank) Table(kind WaveKind, note int) *Wavetable {
	if !kind.synthetic() {
		kind = WaveSine
	}
	return b.tables[kind][clampNote(note)]
}
