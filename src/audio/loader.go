package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

const (
	wavFormatPCM       = 1
	wavFormatIEEEFloat = 3
)

var (
	riffID = [4]byte{'R', 'I', 'F', 'F'}
	waveID = [4]byte{'W', 'A', 'V', 'E'}
)

type wavFormat struct {
	audioFormat   uint16
	numChannels   int
	sampleRate    int
	bitsPerSample int
}

// LoadWavetable turns the bytes of a WAV file into a single-cycle table.
// The whole file is treated as one cycle: it is mixed down to mono, resampled
// to TableSize and normalized to unit peak.
//
// On any failure a sine table is returned together with ok == false, so the
// result is always usable.
func LoadWavetable(data []byte) (wt *Wavetable, ok bool) {
	buf, err := decodeWAV(data)
	if err != nil {
		log.Printf("failed to load wavetable, falling back to sine: %v\n", err)
		return newSineTable(), false
	}
	wt = &Wavetable{}
	resampleToTable(downmix(buf), wt)
	wt.normalize()
	return wt, true
}

// decodeWAV reads the fmt and data chunks of a RIFF/WAVE file into
// interleaved floats in [-1,1].
func decodeWAV(data []byte) (*goaudio.FloatBuffer, error) {
	r := bytes.NewReader(data)
	p := riff.New(r)
	if err := p.ParseHeaders(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotWavFile, err)
	}
	if p.ID != riffID || p.Format != waveID {
		return nil, ErrNotWavFile
	}
	var format *wavFormat
	for {
		id, size, err := p.IDnSize()
		if err != nil {
			if format == nil {
				return nil, ErrMissingFmtChunk
			}
			return nil, ErrMissingDataChunk
		}
		// Size is the declared size, without the pad byte.
		chunk := &riff.Chunk{ID: id, Size: int(size), R: io.LimitReader(r, int64(size))}
		switch id {
		case riff.FmtID:
			format, err = readFormatChunk(chunk)
			if err != nil {
				return nil, err
			}
		case riff.DataFormatID:
			if format == nil {
				return nil, ErrMissingFmtChunk
			}
			// a missing pad byte after the data is tolerated
			return readDataChunk(chunk, format)
		default:
			io.Copy(io.Discard, chunk)
			if !chunk.IsFullyRead() {
				return nil, fmt.Errorf("%w: %q", ErrTruncatedChunk, id[:])
			}
		}
		if size%2 == 1 {
			r.ReadByte()
		}
	}
}

func readFormatChunk(chunk *riff.Chunk) (*wavFormat, error) {
	if chunk.Size < 16 {
		return nil, fmt.Errorf("%w: fmt chunk of %d bytes", ErrTruncatedChunk, chunk.Size)
	}
	b, err := io.ReadAll(chunk)
	if err != nil || !chunk.IsFullyRead() {
		return nil, fmt.Errorf("%w: fmt", ErrTruncatedChunk)
	}
	f := &wavFormat{
		audioFormat:   binary.LittleEndian.Uint16(b[0:2]),
		numChannels:   int(binary.LittleEndian.Uint16(b[2:4])),
		sampleRate:    int(binary.LittleEndian.Uint32(b[4:8])),
		bitsPerSample: int(binary.LittleEndian.Uint16(b[14:16])),
	}
	pcm16 := f.audioFormat == wavFormatPCM && f.bitsPerSample == 16
	float32bit := f.audioFormat == wavFormatIEEEFloat && f.bitsPerSample == 32
	if !pcm16 && !float32bit {
		return nil, fmt.Errorf("%w: format %d, %d bits", ErrUnsupportedCodec, f.audioFormat, f.bitsPerSample)
	}
	if f.numChannels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedCodec, f.numChannels)
	}
	return f, nil
}

func readDataChunk(chunk *riff.Chunk, f *wavFormat) (*goaudio.FloatBuffer, error) {
	b, err := io.ReadAll(chunk)
	if err != nil {
		return nil, fmt.Errorf("%w: data: %v", ErrTruncatedChunk, err)
	}
	if !chunk.IsFullyRead() {
		return nil, fmt.Errorf("%w: data: %d of %d bytes", ErrTruncatedChunk, len(b), chunk.Size)
	}
	bytesPerSample := f.bitsPerSample / 8
	frames := len(b) / (bytesPerSample * f.numChannels)
	if frames == 0 {
		return nil, ErrEmptyData
	}
	buf := &goaudio.FloatBuffer{
		Format: &goaudio.Format{NumChannels: f.numChannels, SampleRate: f.sampleRate},
		Data:   make([]float64, frames*f.numChannels),
	}
	for i := range buf.Data {
		s := b[i*bytesPerSample:]
		if f.audioFormat == wavFormatPCM {
			buf.Data[i] = float64(int16(binary.LittleEndian.Uint16(s))) / 32768.0
		} else {
			buf.Data[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(s)))
		}
	}
	return buf, nil
}

// downmix averages the channels of every frame.
func downmix(buf *goaudio.FloatBuffer) []float64 {
	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	mono := make([]float64, frames)
	for i := range mono {
		acc := 0.0
		for c := 0; c < ch; c++ {
			acc += buf.Data[i*ch+c]
		}
		mono[i] = acc / float64(ch)
	}
	return mono
}

// resampleToTable stretches in over one table by linear interpolation. The
// read position wraps, so the last output sample blends towards in[0].
func resampleToTable(in []float64, wt *Wavetable) {
	if len(in) == 0 {
		*wt = *newSineTable()
		return
	}
	n := len(in)
	step := float64(n) / TableSize
	for j := range wt.values {
		pos := float64(j) * step
		i0 := int(math.Floor(pos)) % n
		i1 := (i0 + 1) % n
		frac := pos - math.Floor(pos)
		wt.values[j] = in[i0]*(1-frac) + in[i1]*frac
	}
}
