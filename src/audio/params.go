package audio

import (
	"encoding/json"
	"fmt"
)

// ----- Patch ----- //

// patchJSON is the document presets are stored as. A single channel entry
// applies to every channel.
type patchJSON struct {
	Waveform string            `json:"waveform"`
	Channels []json.RawMessage `json:"channels"`
}

// ApplyJSON applies a patch document. Fields that are absent keep their
// current value.
func (e *Engine) ApplyJSON(data []byte) error {
	var j patchJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalidPatch)
	}
	var kind WaveKind
	if j.Waveform != "" {
		k, ok := WaveKindFromString(j.Waveform)
		if !ok {
			return fmt.Errorf("waveform %q: %w", j.Waveform, ErrInvalidPatch)
		}
		kind = k
	}
	switch len(j.Channels) {
	case 0:
	case 1:
		for i := range e.channels {
			e.channels[i].applyJSON(j.Channels[0])
		}
	case MaxChannels:
		for i, c := range j.Channels {
			e.channels[i].applyJSON(c)
		}
	default:
		return fmt.Errorf("%d channels: %w", len(j.Channels), ErrInvalidPatch)
	}
	if j.Waveform != "" {
		e.SetWaveform(kind)
	}
	e.Changes.Add("data")
	return nil
}

// ToJSON snapshots the current patch.
func (e *Engine) ToJSON() []byte {
	channels := make([]json.RawMessage, len(e.channels))
	for i := range e.channels {
		channels[i] = e.channels[i].toJSON()
	}
	return toRawMessage(&patchJSON{
		Waveform: e.Waveform().String(),
		Channels: channels,
	})
}
