package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/jinjor/desktop-wavetable/src/audio"
	"golang.org/x/sync/errgroup"
)

const numNotes = 128

var sampleRate = flag.Int("rate", 48000, "sample rate the tables are band-limited for")

// gentables writes the band-limited tables of every synthesized waveform as
// mono 16-bit WAV files, one per waveform. Each file holds the tables of
// notes 0..127 back to back, audio.TableSize frames each.
func main() {
	flag.Parse()
	dir := flag.Arg(0)
	if dir == "" {
		log.Fatalln("usage: gentables [-rate hz] <dir>")
	}
	log.SetFlags(log.Lshortfile)

	bank := audio.NewBank(float64(*sampleRate))
	var g errgroup.Group
	for _, kind := range []audio.WaveKind{audio.WaveSine, audio.WaveTriangle, audio.WaveSaw, audio.WaveSquare} {
		kind := kind
		g.Go(func() error {
			path := filepath.Join(dir, kind.String()+".wav")
			if err := saveTables(path, bank, kind); err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
			log.Printf("saved %s wave to %s\n", kind, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("Successfully generated wavetables.")
}

func saveTables(path string, bank *audio.Bank, kind audio.WaveKind) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: *sampleRate},
		Data:           make([]int, 0, numNotes*audio.TableSize),
		SourceBitDepth: 16,
	}
	for note := 0; note < numNotes; note++ {
		for _, v := range bank.Table(kind, note).Values() {
			buf.Data = append(buf.Data, int(v*32767))
		}
	}
	enc := wav.NewEncoder(f, *sampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Close()
}
