package audio

import (
	"encoding/json"
	"math"
	"time"
)

const baseFreq = 440.0

// ----- Utility ----- //

func now() float64 {
	return float64(time.Now().UnixNano()) / 1000 / 1000 / 1000
}

// noteToFreq treats notes outside 0..127 as the nearest valid note.
func noteToFreq(note int) float64 {
	return baseFreq * math.Pow(2, float64(clampNote(note)-69)/12)
}

func clampNote(note int) int {
	return clampInt(note, 0, numNotes-1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func validChannel(ch int) bool {
	return ch >= 0 && ch < MaxChannels
}

func toRawMessage(v interface{}) json.RawMessage {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return json.RawMessage(bytes)
}
