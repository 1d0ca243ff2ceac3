package audio

import (
	"math"
	"sync"
	"sync/atomic"
)

const fftSize = 2048

// ----- Scope ----- //

// scope keeps the most recent fftSize output samples. The render thread
// writes, any goroutine may read; a reader racing a write sees a mix of two
// buffers, which is fine for display.
type scope struct {
	samples [fftSize]atomic.Uint64
	pos     atomic.Uint64
}

func newScope() *scope {
	return &scope{}
}

func (s *scope) write(out []float64) {
	pos := s.pos.Load()
	for i, v := range out {
		s.samples[(pos+uint64(i))%fftSize].Store(math.Float64bits(v))
	}
	s.pos.Store(pos + uint64(len(out)))
}

// read copies the ring into dst oldest first.
func (s *scope) read(dst []float64) {
	pos := s.pos.Load()
	for i := range dst {
		dst[i] = math.Float64frombits(s.samples[(pos+uint64(i))%fftSize].Load())
	}
}

// ----- Spectrum ----- //

type spectrum struct {
	sync.Mutex
	fft    *FFT
	window []float64
	buf    []float64
}

var specAnalyzer = &spectrum{
	fft:    NewFFT(fftSize, false),
	window: makeHanWindow(fftSize),
	buf:    make([]float64, fftSize),
}

// GetFFT returns the magnitude spectrum of the last fftSize output samples,
// fftSize/2 bins from 0 Hz to Nyquist.
func (e *Engine) GetFFT() []float64 {
	return specAnalyzer.of(e.scope)
}

func (sp *spectrum) of(s *scope) []float64 {
	sp.Lock()
	defer sp.Unlock()
	s.read(sp.buf)
	applyWindow(sp.buf, sp.window)
	sp.fft.CalcAbs(sp.buf)
	result := make([]float64, fftSize/2)
	for i := range result {
		result[i] = sp.buf[i] * 2 / fftSize
	}
	return result
}
