package audio

import "math"

const (
	ampRiseSec = 0.005
	ampFallSec = 0.020
	// below this a voice whose target is zero is cut off, whatever its
	// envelope stage
	extinguishAmplitude = 0.0005
)

// ----- Voice ----- //

// voice is owned by the render thread. Control callers reach it only through
// the event queue.
type voice struct {
	active          bool
	note            int
	baseFreq        float64
	phase           float64 // 0-1
	amplitude       float64
	targetAmplitude float64
	env             adsr
	filter          onePole
}

func (v *voice) noteOn(note, velocity int, cutoff, headroomGain float64) {
	v.note = note
	v.baseFreq = noteToFreq(note)
	v.phase = 0
	v.env.noteOn()
	v.filter.reset(cutoff)
	v.targetAmplitude = float64(velocity) / midiValueMax * headroomGain
	v.active = true
}

func (v *voice) noteOff() {
	if !v.active {
		return
	}
	v.env.noteOff()
	v.targetAmplitude = 0
}

func (v *voice) retire() {
	v.active = false
	v.amplitude = 0
	v.env.reset()
}

// ----- Render Context ----- //

// renderContext is the set of snapshots one render call works from.
type renderContext struct {
	sampleRate float64
	bank       *Bank
	kind       WaveKind
	custom     *Wavetable
	regions    sampleList
	riseCoeff  float64
	fallCoeff  float64
}

func newRenderContext(bank *Bank, kind WaveKind, custom *Wavetable, regions sampleList) renderContext {
	sr := bank.SampleRate()
	return renderContext{
		sampleRate: sr,
		bank:       bank,
		kind:       kind,
		custom:     custom,
		regions:    regions,
		riseCoeff:  1 - math.Exp(-1/(sr*ampRiseSec)),
		fallCoeff:  1 - math.Exp(-1/(sr*ampFallSec)),
	}
}

func (rc *renderContext) oscillator(v *voice, freq float64) float64 {
	switch rc.kind {
	case WaveCustom:
		if rc.custom != nil {
			return rc.custom.at(v.phase)
		}
	case WaveSampleMapped:
		if r := rc.regions.regionFor(v.note); r != nil {
			return r.band(freq).at(v.phase)
		}
	}
	return rc.bank.Table(rc.kind, v.note).at(v.phase)
}

// step renders one sample of v. The voice may retire during the call, in
// which case the sample is silent.
func (v *voice) step(ch *channel, rc *renderContext) float64 {
	freq := v.baseFreq * ch.bendRatio.load()
	v.phase += freq / rc.sampleRate
	v.phase -= math.Floor(v.phase)

	value := rc.oscillator(v, freq)

	coeff := rc.fallCoeff
	if v.targetAmplitude > v.amplitude {
		coeff = rc.riseCoeff
	}
	v.amplitude += coeff * (v.targetAmplitude - v.amplitude)
	if v.targetAmplitude == 0 && v.amplitude < extinguishAmplitude {
		v.retire()
		return 0
	}

	p := ch.adsr()
	if !v.env.step(&p, rc.sampleRate) {
		v.retire()
		return 0
	}

	value *= v.amplitude * v.env.level * (0.5 + 0.5*ch.aftertouch.load())
	return v.filter.process(value, ch.filterCutoff.load(), rc.sampleRate)
}
