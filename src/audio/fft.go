package audio

import (
	"fmt"
	"math"
	"math/cmplx"
)

// FFT is a radix-2 transform of a fixed power-of-two length. It keeps a
// scratch buffer and is not safe for concurrent use.
type FFT struct {
	bitReverseTable []int
	wTable          []complex128
	inverse         bool
	scratch         []complex128
}

// NewFFT ...
func NewFFT(length int, inverse bool) *FFT {
	if length <= 0 || length&(length-1) != 0 {
		panic(fmt.Sprintf("FFT length should be a power of two, got %d", length))
	}
	return &FFT{
		bitReverseTable: makeBitReverseTable(length),
		wTable:          makeWTable(length),
		inverse:         inverse,
		scratch:         make([]complex128, length),
	}
}

// Len ...
func (fft *FFT) Len() int {
	return len(fft.bitReverseTable)
}

func makeBitReverseTable(n int) []int {
	array := make([]int, n)
	for i := 0; i < n; i++ {
		array[i] = bitReverse(i, n)
	}
	return array
}
func bitReverse(k, n int) int {
	m := 0
	for ; n > 1; n = n >> 1 {
		m = m<<1 + k&1
		k = k >> 1
	}
	return m
}
func makeWTable(n int) []complex128 {
	array := make([]complex128, n)
	w := -2.0 * math.Pi / float64(n)
	for i := 0; i < n; i++ {
		array[i] = cmplx.Exp(complex(0, w*float64(i)))
	}
	return array
}

// Calc transforms x in place. The inverse transform is scaled by 1/n.
func (fft *FFT) Calc(x []complex128) {
	n := len(x)
	if n != fft.Len() {
		panic(fmt.Sprintf("length should be %v, got %v", fft.Len(), n))
	}
	for i := 0; i < n; i++ {
		rev := fft.bitReverseTable[i]
		if i < rev {
			x[i], x[rev] = x[rev], x[i]
		}
	}
	for m := 1; m < n; m = m << 1 {
		step := m << 1
		for k := 0; k < m; k++ {
			w := fft.wTable[n/step*k]
			if fft.inverse {
				w = cmplx.Conj(w)
			}
			for i := k; i < n; i += step {
				j := i + m
				tmp := x[j] * w
				x[j] = x[i] - tmp
				x[i] = x[i] + tmp
			}
		}
	}
	if fft.inverse {
		for i := 0; i < n; i++ {
			x[i] /= complex(float64(n), 0)
		}
	}
}

func (fft *FFT) load(x []float64) []complex128 {
	cx := fft.scratch[:len(x)]
	for i, v := range x {
		cx[i] = complex(v, 0)
	}
	fft.Calc(cx)
	return cx
}

// CalcReal replaces x with the real part of its transform and returns it.
func (fft *FFT) CalcReal(x []float64) []float64 {
	for i, c := range fft.load(x) {
		x[i] = real(c)
	}
	return x
}

// CalcAbs replaces x with the magnitudes of its transform and returns it.
func (fft *FFT) CalcAbs(x []float64) []float64 {
	for i, c := range fft.load(x) {
		x[i] = cmplx.Abs(c)
	}
	return x
}

// ----- Window ----- //

func makeHanWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2.0*math.Pi*float64(i)/float64(n))
	}
	return w
}

func applyWindow(x []float64, window []float64) {
	for i := range x {
		x[i] *= window[i]
	}
}
