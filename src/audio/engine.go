package audio

import (
	"log"
	"math"
	"sync"
	"sync/atomic"
)

// ----- Engine ----- //

// Engine is a polyphonic wavetable synthesizer with one voice per channel.
//
// Every control method may be called from any goroutine and never waits for
// the render thread. Render must only be called from one goroutine at a time
// (the output stream's, or the caller's when the headless backend is used).
type Engine struct {
	config       Config
	headroomGain float64

	channels [MaxChannels]channel
	voices   [MaxChannels]voice // render thread only

	events   *eventQueue
	bank     *cell[Bank]
	custom   *cell[Wavetable]
	waveform atomic.Int32
	samples  *sampleRegionStore

	playing      atomic.Bool
	activeVoices atomic.Int32
	scope        *scope

	// CommandCh receives text commands, see update.
	CommandCh chan []string
	Changes   *Changes
	presets   *presetManager

	mu        sync.Mutex // stream lifecycle
	backend   backend
	stream    *stream
	closeOnce sync.Once
}

// NewEngine builds the wavetable bank for cfg.SampleRate and returns a stopped
// engine.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	b, err := newBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		config:       cfg,
		headroomGain: cfg.HeadroomGain,
		events:       newEventQueue(eventQueueSize),
		bank:         newCell(NewBank(float64(cfg.SampleRate))),
		custom:       newCell[Wavetable](nil),
		samples:      newSampleRegionStore(),
		scope:        newScope(),
		CommandCh:    make(chan []string, 256),
		Changes:      newChanges(),
		presets:      newPresetManager(cfg.PresetDir),
		backend:      b,
	}
	for i := range e.channels {
		e.channels[i].init()
	}
	e.waveform.Store(int32(WaveSine))
	go processCommands(e, e.CommandCh)
	return e, nil
}

// ----- Render ----- //

// Render fills out with the next len(out) mono samples. While the engine is
// stopped it writes silence and leaves every voice untouched, so playback
// resumes exactly where it paused. Render does not allocate, lock or block.
func (e *Engine) Render(out []float64) {
	for i := range out {
		out[i] = 0
	}
	if !e.playing.Load() {
		return
	}
	e.drainEvents()
	rc := newRenderContext(e.bank.load(), WaveKind(e.waveform.Load()), e.custom.load(), e.samples.snapshot())
	active := 0
	for c := range e.voices {
		v := &e.voices[c]
		ch := &e.channels[c]
		for i := 0; i < len(out) && v.active; i++ {
			out[i] += v.step(ch, &rc)
		}
		if v.active {
			active++
		}
	}
	e.scope.write(out)
	e.activeVoices.Store(int32(active))
}

func (e *Engine) drainEvents() {
	for {
		ev, ok := e.events.pop()
		if !ok {
			return
		}
		v := &e.voices[ev.channel]
		switch ev.kind {
		case eventNoteOn:
			v.noteOn(ev.note, ev.velocity, e.channels[ev.channel].filterCutoff.load(), e.headroomGain)
		case eventNoteOff:
			v.noteOff()
		case eventNoteOffKey:
			if v.note == ev.note {
				v.noteOff()
			}
		}
	}
}

// ActiveVoices is the number of voices that were sounding at the end of the
// last rendered buffer.
func (e *Engine) ActiveVoices() int {
	return int(e.activeVoices.Load())
}

// ----- Notes ----- //

func (e *Engine) pushEvent(ev noteEvent) {
	if !e.events.push(ev) {
		log.Println("[WARN] event queue is full, note event dropped")
	}
}

// NoteOn (re)starts the voice of channel. Invalid channels and notes are
// ignored; velocity is clamped to 0..127.
func (e *Engine) NoteOn(channel, note, velocity int) {
	if !validChannel(channel) || note < 0 || note >= numNotes {
		return
	}
	e.pushEvent(noteEvent{
		kind:     eventNoteOn,
		channel:  channel,
		note:     note,
		velocity: clampInt(velocity, 0, midiValueMax),
	})
}

// NoteOff releases the voice of channel whatever note it plays.
func (e *Engine) NoteOff(channel int) {
	if !validChannel(channel) {
		return
	}
	e.pushEvent(noteEvent{kind: eventNoteOff, channel: channel})
}

// NoteOffKey releases the voice of channel only if it still plays note.
func (e *Engine) NoteOffKey(channel, note int) {
	if !validChannel(channel) {
		return
	}
	e.pushEvent(noteEvent{kind: eventNoteOffKey, channel: channel, note: note})
}

// ----- Controllers ----- //

// PitchBend takes a 14-bit value, 8192 being the center. The range is +-2
// semitones.
func (e *Engine) PitchBend(channel, value int) {
	if !validChannel(channel) {
		return
	}
	e.channels[channel].bendRatio.store(bendToRatio(value))
}

// ChannelPressure sets the aftertouch of channel from a 0..127 value.
func (e *Engine) ChannelPressure(channel, value int) {
	if !validChannel(channel) {
		return
	}
	e.channels[channel].aftertouch.store(float64(clampInt(value, 0, midiValueMax)) / midiValueMax)
}

// ControlChange handles CC74 (brightness). Other controllers are ignored.
func (e *Engine) ControlChange(channel, cc, value int) {
	if !validChannel(channel) {
		return
	}
	switch cc {
	case ccBrightness:
		e.channels[channel].brightness.store(float64(clampInt(value, 0, midiValueMax)) / midiValueMax)
	}
}

// SetFilterCutoff sets the lowpass target of channel in Hz.
func (e *Engine) SetFilterCutoff(channel int, hz float64) {
	if !validChannel(channel) || math.IsNaN(hz) {
		return
	}
	e.channels[channel].filterCutoff.store(hz)
}

// SetEnvelopeParameters sets the ADSR of channel. Times are in ms, sustain is
// clamped to 0..1.
func (e *Engine) SetEnvelopeParameters(channel int, attackMs, decayMs, sustainLevel, releaseMs float64) {
	if !validChannel(channel) {
		return
	}
	e.channels[channel].setADSR(adsrParams{attack: attackMs, decay: decayMs, sustain: sustainLevel, release: releaseMs})
}

// ----- Waveforms ----- //

// SetWaveform selects the oscillator source of all voices.
func (e *Engine) SetWaveform(kind WaveKind) {
	if !kind.Valid() {
		return
	}
	e.waveform.Store(int32(kind))
}

// Waveform returns the selected oscillator source.
func (e *Engine) Waveform() WaveKind {
	return WaveKind(e.waveform.Load())
}

// LoadWavetable publishes the table parsed from data and selects it. When
// data cannot be parsed a sine table is published instead and false is
// returned.
func (e *Engine) LoadWavetable(data []byte) bool {
	wt, ok := LoadWavetable(data)
	e.custom.store(wt)
	e.SetWaveform(WaveCustom)
	log.Printf("custom wavetable set (parsed: %v)\n", ok)
	return ok
}

// ----- Sample Regions ----- //

// RegisterSample derives a sample region from the WAV file in data and
// appends it to the region list. It returns false, registering nothing, when
// the data cannot be parsed or the keys are invalid.
func (e *Engine) RegisterSample(data []byte, rootNote, loKey, hiKey int, name string) bool {
	if rootNote < 0 || rootNote >= numNotes {
		return false
	}
	loKey = clampNote(loKey)
	hiKey = clampNote(hiKey)
	if loKey > hiKey {
		return false
	}
	source, ok := LoadWavetable(data)
	if !ok {
		log.Println("failed to register sample: unsupported format or corrupt file")
		return false
	}
	e.samples.register(source, rootNote, loKey, hiKey, name, e.SampleRate)
	log.Printf("registered sample %q root=%d lo=%d hi=%d, total samples=%d\n", name, rootNote, loKey, hiKey, len(e.samples.snapshot()))
	e.Changes.Add("samples")
	return true
}

// UnregisterSample removes the region at index. Out of range indices are
// ignored.
func (e *Engine) UnregisterSample(index int) {
	if e.samples.unregister(index) {
		e.Changes.Add("samples")
	}
}

// ListSampleNames returns the names of the registered regions in order.
// Unnamed regions are reported as "sample_<index>".
func (e *Engine) ListSampleNames() []string {
	return e.samples.names()
}

// ----- Sample Rate ----- //

// SampleRate is the rate the current tables were generated for.
func (e *Engine) SampleRate() float64 {
	return e.bank.load().SampleRate()
}

// SetSampleRate regenerates the bank and every sample region for hz. It is
// meant to be called while the engine is stopped; the running stream keeps
// its negotiated rate.
func (e *Engine) SetSampleRate(hz float64) {
	if hz <= 0 || math.IsNaN(hz) || hz == e.SampleRate() {
		return
	}
	// the bank goes first: register reads the rate from it
	e.bank.store(NewBank(hz))
	e.samples.rebuild(hz)
	log.Printf("regenerated tables for %v Hz\n", hz)
}
