package audio

import "testing"

func TestAddMidiEventNotes(t *testing.T) {
	e := newTestEngine(t)
	e.AddMidiEvent([]byte{0x92, 69, 100})
	ev, ok := e.events.pop()
	expectEqual(t, ok, true)
	expectEqual(t, ev, noteEvent{kind: eventNoteOn, channel: 2, note: 69, velocity: 100})

	// note on with velocity 0 is a note off
	e.AddMidiEvent([]byte{0x92, 69, 0})
	ev, _ = e.events.pop()
	expectEqual(t, ev, noteEvent{kind: eventNoteOffKey, channel: 2, note: 69})

	e.AddMidiEvent([]byte{0x82, 69, 64})
	ev, _ = e.events.pop()
	expectEqual(t, ev, noteEvent{kind: eventNoteOffKey, channel: 2, note: 69})
}

func TestAddMidiEventControllers(t *testing.T) {
	e := newTestEngine(t)
	e.AddMidiEvent([]byte{0xE0, 0x7F, 0x7F})
	expectNearlyEqual(t, e.channels[0].bendRatio.load(), bendToRatio(16383))
	e.AddMidiEvent([]byte{0xE0, 0x00, 0x40})
	expectEqual(t, e.channels[0].bendRatio.load(), 1.0)
	e.AddMidiEvent([]byte{0xD1, 127})
	expectEqual(t, e.channels[1].aftertouch.load(), 1.0)
	e.AddMidiEvent([]byte{0xB3, 74, 127})
	expectEqual(t, e.channels[3].brightness.load(), 1.0)
}

func TestAddMidiEventIgnored(t *testing.T) {
	e := newTestEngine(t)
	for _, data := range [][]byte{
		nil,
		{0x90},
		{0x90, 60},
		{0x99, 60, 100}, // channel 10
		{0xC0, 5},       // program change
		{0xF8},          // clock
		{0xF0, 0x7E, 0x7F, 0xF7},
	} {
		e.AddMidiEvent(data)
	}
	if _, ok := e.events.pop(); ok {
		t.Error("expected no queued events")
	}
	expectEqual(t, e.channels[0].bendRatio.load(), 1.0)
}
