package audio

import (
	"math"
	"sync/atomic"
)

// ----- State Cell ----- //

// cell publishes immutable snapshots of T to the render thread. Writers build
// a complete new value and swap it in; the reader only ever loads. sync/atomic
// operations are sequentially consistent, which covers the release/acquire
// pairing the render path relies on.
//
// A published *T must never be written again.
type cell[T any] struct {
	p atomic.Pointer[T]
}

func newCell[T any](initial *T) *cell[T] {
	c := &cell[T]{}
	c.p.Store(initial)
	return c
}

func (c *cell[T]) load() *T {
	return c.p.Load()
}

func (c *cell[T]) store(v *T) {
	c.p.Store(v)
}

// update derives a new snapshot from the current one and publishes it. next
// may be called more than once when writers race, so it must not have side
// effects. Returning nil leaves the cell as it is.
func (c *cell[T]) update(next func(old *T) *T) bool {
	for {
		old := c.p.Load()
		v := next(old)
		if v == nil {
			return false
		}
		if c.p.CompareAndSwap(old, v) {
			return true
		}
	}
}

// ----- Atomic Float ----- //

// atomicFloat is a float64 that can be read and written from any goroutine.
type atomicFloat struct {
	bits atomic.Uint64
}

func (f *atomicFloat) load() float64 {
	return math.Float64frombits(f.bits.Load())
}

func (f *atomicFloat) store(v float64) {
	f.bits.Store(math.Float64bits(v))
}
