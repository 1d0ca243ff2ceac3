package main

import (
	"flag"
	"log"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/jinjor/desktop-wavetable/src/audio"
)

func main() {
	note := flag.Int("note", 69, "MIDI note number (69 = A4 = 440 Hz)")
	velocity := flag.Int("velocity", 127, "MIDI velocity (0-127)")
	duration := flag.Float64("duration", 1.0, "duration in seconds")
	releaseAfter := flag.Float64("release-after", 0.5, "send note off after this many seconds")
	sampleRate := flag.Int("rate", 48000, "sample rate in Hz")
	waveform := flag.String("waveform", "sine", "sine, triangle, saw, square, custom or sample")
	wavetablePath := flag.String("wavetable", "", "WAV file holding one cycle for the custom waveform")
	samplePath := flag.String("sample", "", "WAV file to register as a sample region over all keys")
	sampleRoot := flag.Int("sample-root", 60, "root note of -sample")
	presetDir := flag.String("preset-dir", "presets", "preset directory")
	presetName := flag.String("preset", "", "preset to apply before rendering")
	output := flag.String("output", "output.wav", "output WAV file path")
	flag.Parse()
	log.SetFlags(log.Lshortfile)

	cfg := audio.DefaultConfig()
	cfg.Backend = "headless"
	cfg.SampleRate = *sampleRate
	cfg.PresetDir = *presetDir
	engine, err := audio.NewEngine(cfg)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	defer engine.Close()

	if *presetName != "" {
		if err := engine.LoadPreset(*presetName); err != nil {
			log.Fatalf("error: %v\n", err)
		}
	}
	if *wavetablePath != "" {
		data, err := os.ReadFile(*wavetablePath)
		if err != nil {
			log.Fatalf("error: %v\n", err)
		}
		engine.LoadWavetable(data)
	}
	if *samplePath != "" {
		data, err := os.ReadFile(*samplePath)
		if err != nil {
			log.Fatalf("error: %v\n", err)
		}
		if !engine.RegisterSample(data, *sampleRoot, 0, 127, *samplePath) {
			log.Fatalf("error: failed to register %s\n", *samplePath)
		}
	}
	kind, ok := audio.WaveKindFromString(*waveform)
	if !ok {
		log.Fatalf("error: unknown waveform %q\n", *waveform)
	}
	engine.SetWaveform(kind)
	if !engine.Start() {
		log.Fatalln("error: failed to start")
	}

	totalFrames := int(float64(*sampleRate) * *duration)
	releaseAt := int(float64(*sampleRate) * *releaseAfter)
	released := false
	blockSize := cfg.BufferFrames
	block := make([]float64, blockSize)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: *sampleRate},
		Data:           make([]int, 0, totalFrames),
		SourceBitDepth: 16,
	}

	engine.NoteOn(0, *note, *velocity)
	for framesRendered := 0; framesRendered < totalFrames; framesRendered += blockSize {
		if !released && framesRendered >= releaseAt {
			engine.NoteOff(0)
			released = true
		}
		n := blockSize
		if framesRendered+n > totalFrames {
			n = totalFrames - framesRendered
		}
		engine.Render(block[:n])
		for _, v := range block[:n] {
			buf.Data = append(buf.Data, int(clip(v)*32767))
		}
	}

	file, err := os.Create(*output)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	defer file.Close()
	encoder := wav.NewEncoder(file, *sampleRate, 16, 1, 1)
	if err := encoder.Write(buf); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	if err := encoder.Close(); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Printf("Successfully wrote %s (%d frames)\n", *output, totalFrames)
}

func clip(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
