package audio

import "sync/atomic"

// ----- Note Event ----- //

type eventKind uint8

const (
	eventNoteOn eventKind = iota
	eventNoteOff
	// eventNoteOffKey releases only if the voice still plays the given note.
	eventNoteOffKey
)

type noteEvent struct {
	kind     eventKind
	channel  int
	note     int
	velocity int
}

// ----- Event Queue ----- //

const eventQueueSize = 1024 // power of two

type eventSlot struct {
	seq atomic.Uint64
	ev  noteEvent
}

// eventQueue carries note events from any number of control goroutines to
// the render thread. push never blocks; when the queue is full the event is
// dropped. Only the render thread may call pop.
type eventQueue struct {
	slots []eventSlot
	mask  uint64
	head  atomic.Uint64
	tail  uint64
}

func newEventQueue(size int) *eventQueue {
	q := &eventQueue{
		slots: make([]eventSlot, size),
		mask:  uint64(size - 1),
	}
	for i := range q.slots {
		q.slots[i].seq.Store(uint64(i))
	}
	return q
}

func (q *eventQueue) push(ev noteEvent) bool {
	pos := q.head.Load()
	for {
		slot := &q.slots[pos&q.mask]
		seq := slot.seq.Load()
		switch diff := int64(seq) - int64(pos); {
		case diff == 0:
			if q.head.CompareAndSwap(pos, pos+1) {
				slot.ev = ev
				slot.seq.Store(pos + 1)
				return true
			}
			pos = q.head.Load()
		case diff < 0:
			return false
		default:
			pos = q.head.Load()
		}
	}
}

func (q *eventQueue) pop() (noteEvent, bool) {
	slot := &q.slots[q.tail&q.mask]
	if slot.seq.Load() != q.tail+1 {
		return noteEvent{}, false
	}
	ev := slot.ev
	slot.seq.Store(q.tail + q.mask + 1)
	q.tail++
	return ev, true
}
