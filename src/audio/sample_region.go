package audio

import (
	"fmt"
	"math"
)

const (
	sampleBandCount  = 11 // -5..+5 octaves around the root
	sampleBandMid    = sampleBandCount / 2
	minTransposition = 1e-6
)

// ----- Sample Region ----- //

// SampleRegion maps a key range onto octave bands derived from one recorded
// cycle. Band b is the source lowpassed for playback b-5 octaves from root.
// A region is immutable once published.
type SampleRegion struct {
	RootNote int
	LoKey    int
	HiKey    int
	Name     string
	source   *Wavetable
	bands    [sampleBandCount]*Wavetable

	// sampleRate is the rate the bands were filtered for.
	sampleRate float64
}

func newSampleRegion(source *Wavetable, rootNote, loKey, hiKey int, name string, sampleRate float64) *SampleRegion {
	r := &SampleRegion{
		RootNote: rootNote,
		LoKey:    loKey,
		HiKey:    hiKey,
		Name:     name,
		source:   source,

		sampleRate: sampleRate,
	}
	nyquist := sampleRate / 2
	rootFreq := noteToFreq(rootNote)
	for b := 0; b < sampleBandCount; b++ {
		centerFreq := noteToFreq(rootNote + 12*(b-sampleBandMid))
		t := 1.0
		if rootFreq > minTransposition {
			t = centerFreq / rootFreq
		}
		cutoff := math.Min(nyquist, nyquist/math.Max(minTransposition, t))
		band := &Wavetable{}
		lowpassTable(source, band, cutoff, sampleRate)
		r.bands[b] = band
	}
	return r
}

func (r *SampleRegion) covers(note int) bool {
	return note >= r.LoKey && note <= r.HiKey
}

// band picks the table whose octave is nearest to playing freq.
func (r *SampleRegion) band(freq float64) *Wavetable {
	b := sampleBandMid
	if t := freq / noteToFreq(r.RootNote); t > 0 {
		b += int(math.Round(math.Log2(t)))
	}
	if b < 0 {
		b = 0
	}
	if b >= sampleBandCount {
		b = sampleBandCount - 1
	}
	return r.bands[b]
}

// lowpassTable runs a one-pole lowpass forwards and then backwards over in.
// The second pass cancels most of the phase shift of the first.
func lowpassTable(in, out *Wavetable, cutoff, sampleRate float64) {
	if cutoff <= 0 {
		*out = *in
		return
	}
	a := 1 - math.Exp(-2*math.Pi*cutoff/sampleRate)
	s := in.values[0]
	for i, v := range in.values {
		s += a * (v - s)
		out.values[i] = s
	}
	s = out.values[TableSize-1]
	for i := TableSize - 1; i >= 0; i-- {
		s += a * (out.values[i] - s)
		out.values[i] = s
	}
}

// ----- Sample Region Store ----- //

type sampleList []*SampleRegion

// sampleRegionStore owns the published region list. Every mutation copies the
// list, so a snapshot handed to the render path stays valid forever.
type sampleRegionStore struct {
	list *cell[sampleList]
}

func newSampleRegionStore() *sampleRegionStore {
	return &sampleRegionStore{list: newCell(&sampleList{})}
}

func (s *sampleRegionStore) snapshot() sampleList {
	return *s.list.load()
}

// register appends a region built for the rate sampleRate reports. The rate is
// read again when publishing, so a region can not miss a concurrent rebuild.
func (s *sampleRegionStore) register(source *Wavetable, rootNote, loKey, hiKey int, name string, sampleRate func() float64) *SampleRegion {
	region := newSampleRegion(source, rootNote, loKey, hiKey, name, sampleRate())
	s.list.update(func(old *sampleList) *sampleList {
		if sr := sampleRate(); sr != region.sampleRate {
			region = newSampleRegion(source, rootNote, loKey, hiKey, name, sr)
		}
		next := make(sampleList, len(*old), len(*old)+1)
		copy(next, *old)
		next = append(next, region)
		return &next
	})
	return region
}

func (s *sampleRegionStore) unregister(index int) bool {
	return s.list.update(func(old *sampleList) *sampleList {
		if index < 0 || index >= len(*old) {
			return nil
		}
		next := make(sampleList, 0, len(*old)-1)
		next = append(next, (*old)[:index]...)
		next = append(next, (*old)[index+1:]...)
		return &next
	})
}

// rebuild regenerates every band table for a new sample rate.
func (s *sampleRegionStore) rebuild(sampleRate float64) {
	s.list.update(func(old *sampleList) *sampleList {
		next := make(sampleList, len(*old))
		for i, r := range *old {
			next[i] = newSampleRegion(r.source, r.RootNote, r.LoKey, r.HiKey, r.Name, sampleRate)
		}
		return &next
	})
}

func (s *sampleRegionStore) names() []string {
	list := s.snapshot()
	names := make([]string, len(list))
	for i, r := range list {
		if r.Name != "" {
			names[i] = r.Name
		} else {
			names[i] = fmt.Sprintf("sample_%d", i)
		}
	}
	return names
}

// regionFor returns the first region covering note, or nil.
func (l sampleList) regionFor(note int) *SampleRegion {
	for _, r := range l {
		if r.covers(note) {
			return r
		}
	}
	return nil
}
