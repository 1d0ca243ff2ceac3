package audio

import (
	"sync"
	"testing"
)

func TestEventQueueOrder(t *testing.T) {
	q := newEventQueue(8)
	for i := 0; i < 5; i++ {
		expectEqual(t, q.push(noteEvent{kind: eventNoteOn, note: i}), true)
	}
	for i := 0; i < 5; i++ {
		ev, ok := q.pop()
		expectEqual(t, ok, true)
		expectEqual(t, ev.note, i)
	}
	_, ok := q.pop()
	expectEqual(t, ok, false)
}

func TestEventQueueFull(t *testing.T) {
	q := newEventQueue(4)
	for i := 0; i < 4; i++ {
		expectEqual(t, q.push(noteEvent{note: i}), true)
	}
	expectEqual(t, q.push(noteEvent{note: 4}), false)
	q.pop()
	expectEqual(t, q.push(noteEvent{note: 5}), true)
	// wraps around the ring
	for _, note := range []int{1, 2, 3, 5} {
		ev, ok := q.pop()
		expectEqual(t, ok, true)
		expectEqual(t, ev.note, note)
	}
}

func TestEventQueueConcurrentProducers(t *testing.T) {
	const producers = 8
	const perProducer = 100
	q := newEventQueue(eventQueueSize)
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if !q.push(noteEvent{channel: p, note: i}) {
					t.Error("unexpected full queue")
				}
			}
		}(p)
	}
	wg.Wait()
	next := make([]int, producers)
	count := 0
	for {
		ev, ok := q.pop()
		if !ok {
			break
		}
		if ev.note != next[ev.channel] {
			t.Fatalf("producer %d: expected note %d, but got: %d", ev.channel, next[ev.channel], ev.note)
		}
		next[ev.channel]++
		count++
	}
	expectEqual(t, count, producers*perProducer)
}
