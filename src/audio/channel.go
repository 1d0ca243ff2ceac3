package audio

import (
	"encoding/json"
	"log"
	"math"
)

// MaxChannels bounds polyphony: one voice per channel.
const MaxChannels = 8

const (
	ccBrightness  = 74
	bendCenter    = 8192
	bendMax       = 16383
	bendSemitones = 2.0
	midiValueMax  = 127
)

// ----- Channel ----- //

// channel holds the performance state of one voice. Every field is written by
// control callers and read by the render thread each sample; fields are
// independently atomic, not atomic as a group.
type channel struct {
	bendRatio    atomicFloat
	aftertouch   atomicFloat
	brightness   atomicFloat // 0-1, tracked but not yet rendered
	filterCutoff atomicFloat // Hz
	attack       atomicFloat // ms
	decay        atomicFloat // ms
	sustain      atomicFloat // 0-1
	release      atomicFloat // ms
}

func (c *channel) init() {
	c.bendRatio.store(1)
	c.aftertouch.store(0)
	c.brightness.store(0)
	c.filterCutoff.store(defaultCutoff)
	c.setADSR(defaultADSRParams)
}

func (c *channel) setADSR(p adsrParams) {
	c.attack.store(p.attack)
	c.decay.store(p.decay)
	c.sustain.store(clamp01(p.sustain))
	c.release.store(p.release)
}

func (c *channel) adsr() adsrParams {
	return adsrParams{
		attack:  c.attack.load(),
		decay:   c.decay.load(),
		sustain: c.sustain.load(),
		release: c.release.load(),
	}
}

// bendToRatio maps a 14-bit bend value onto a +-2 semitone frequency ratio.
func bendToRatio(value int) float64 {
	if value < 0 {
		value = 0
	}
	if value > bendMax {
		value = bendMax
	}
	return math.Pow(2, float64(value-bendCenter)/bendCenter*bendSemitones/12)
}

// ----- Channel JSON ----- //

type channelJSON struct {
	Adsr   json.RawMessage `json:"adsr"`
	Cutoff float64         `json:"cutoff"`
}

func (c *channel) applyJSON(data json.RawMessage) {
	var j channelJSON
	err := json.Unmarshal(data, &j)
	if err != nil {
		log.Println("failed to apply JSON to channel")
		return
	}
	p := c.adsr()
	if j.Adsr != nil {
		p.applyJSON(j.Adsr)
	}
	c.setADSR(p)
	if j.Cutoff > 0 {
		c.filterCutoff.store(j.Cutoff)
	}
}
func (c *channel) toJSON() json.RawMessage {
	p := c.adsr()
	return toRawMessage(&channelJSON{
		Adsr:   p.toJSON(),
		Cutoff: c.filterCutoff.load(),
	})
}
