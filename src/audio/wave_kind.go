package audio

// ----- Wave Kind ----- //

// WaveKind selects the oscillator source of every voice.
type WaveKind int

const (
	WaveSine WaveKind = iota
	WaveTriangle
	WaveSaw
	WaveSquare
	// numSynthWaves counts the kinds that have tables in the Bank.
	numSynthWaves
)

const (
	// WaveCustom reads the table loaded by LoadWavetable.
	WaveCustom WaveKind = numSynthWaves + iota
	// WaveSampleMapped reads the band tables of the registered sample regions.
	WaveSampleMapped
)

var waveKindNames = map[WaveKind]string{
	WaveSine:         "sine",
	WaveTriangle:     "triangle",
	WaveSaw:          "saw",
	WaveSquare:       "square",
	WaveCustom:       "custom",
	WaveSampleMapped: "sample",
}

func (k WaveKind) String() string {
	if s, ok := waveKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Valid reports whether k is one of the defined kinds.
func (k WaveKind) Valid() bool {
	_, ok := waveKindNames[k]
	return ok
}

func (k WaveKind) synthetic() bool {
	return k >= WaveSine && k < numSynthWaves
}

// WaveKindFromString parses a kind name. ok is false for unknown names.
func WaveKindFromString(s string) (kind WaveKind, ok bool) {
	for k, name := range waveKindNames {
		if name == s {
			return k, true
		}
	}
	return WaveSine, false
}
