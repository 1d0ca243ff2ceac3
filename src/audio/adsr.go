package audio

import (
	"encoding/json"
	"log"
	"math"
	"strconv"
)

// ----- ADSR Params ----- //

type adsrParams struct {
	attack  float64 // ms
	decay   float64 // ms
	sustain float64 // 0-1
	release float64 // ms
}
type adsrJSON struct {
	Attack  float64 `json:"attack"`
	Decay   float64 `json:"decay"`
	Sustain float64 `json:"sustain"`
	Release float64 `json:"release"`
}

var defaultADSRParams = adsrParams{attack: 5, decay: 50, sustain: 0.8, release: 100}

func (a *adsrParams) applyJSON(data json.RawMessage) {
	j := adsrJSON{Attack: a.attack, Decay: a.decay, Sustain: a.sustain, Release: a.release}
	err := json.Unmarshal(data, &j)
	if err != nil {
		log.Println("failed to apply JSON to adsrParams")
		return
	}
	a.attack = j.Attack
	a.decay = j.Decay
	a.sustain = j.Sustain
	a.release = j.Release
}
func (a *adsrParams) toJSON() json.RawMessage {
	return toRawMessage(&adsrJSON{
		Attack:  a.attack,
		Decay:   a.decay,
		Sustain: a.sustain,
		Release: a.release,
	})
}
func (a *adsrParams) set(key string, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	switch key {
	case "attack":
		a.attack = v
	case "decay":
		a.decay = v
	case "sustain":
		a.sustain = v
	case "release":
		a.release = v
	}
	return nil
}

// ----- ADSR ----- //

type envStage int

const (
	envIdle envStage = iota
	envAttack
	envDecay
	envSustain
	envRelease
)

func (s envStage) String() string {
	switch s {
	case envAttack:
		return "attack"
	case envDecay:
		return "decay"
	case envSustain:
		return "sustain"
	case envRelease:
		return "release"
	}
	return "idle"
}

const (
	minStageSec      = 0.001
	attackDoneLevel  = 0.999
	decayDoneDelta   = 0.001
	releaseDoneLevel = 1e-5
)

// attackTarget is where the attack curve is aimed so that it crosses
// attackDoneLevel after exactly one time constant. This is steeper than a
// one-pole towards 1, which would take about seven time constants. The level
// itself is capped at 1.
var attackTarget = attackDoneLevel / (1 - math.Exp(-1))

/*
  1 +    x
    |   / \
    |  /   \
  s + /     x-------x
    |/               \
  0 +-----------------x---
     |a |d  |       |r |
*/
type adsr struct {
	stage envStage
	level float64 // 0-1
}

func stageCoefficient(ms float64, sampleRate float64) float64 {
	sec := ms / 1000
	if sec < minStageSec || math.IsNaN(sec) {
		sec = minStageSec
	}
	return 1 - math.Exp(-1/(sampleRate*sec))
}

func (a *adsr) noteOn() {
	a.stage = envAttack
	a.level = 0
}

func (a *adsr) noteOff() {
	a.stage = envRelease
}

func (a *adsr) reset() {
	a.stage = envIdle
	a.level = 0
}

// step advances the envelope by one sample. Coefficients are derived from p
// on every call so live parameter changes take effect immediately. It
// returns false once a release has died out.
func (a *adsr) step(p *adsrParams, sampleRate float64) bool {
	sustain := clamp01(p.sustain)
	switch a.stage {
	case envAttack:
		a.level += stageCoefficient(p.attack, sampleRate) * (attackTarget - a.level)
		if a.level >= attackDoneLevel {
			a.level = math.Min(a.level, 1)
			a.stage = envDecay
		}
	case envDecay:
		a.level += stageCoefficient(p.decay, sampleRate) * (sustain - a.level)
		if math.Abs(a.level-sustain) < decayDoneDelta {
			a.stage = envSustain
		}
	case envSustain:
		a.level = sustain
	case envRelease:
		a.level += stageCoefficient(p.release, sampleRate) * (0 - a.level)
		if a.level <= releaseDoneLevel {
			a.reset()
			return false
		}
	default:
		a.level = 0
	}
	return true
}
