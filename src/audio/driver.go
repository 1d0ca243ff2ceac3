package audio

import (
	"context"
	"fmt"
	"io"
	"log"

	goaudio "github.com/go-audio/audio"
	"github.com/hajimehoshi/oto"
)

const (
	backendOto      = "oto"
	backendHeadless = "headless"

	channelNum      = 2
	bitDepthInBytes = 2
	bytesPerFrame   = bitDepthInBytes * channelNum
)

// ----- Backend ----- //

// backend opens output streams. A nil writer with a nil error means the
// caller drives Render itself.
type backend interface {
	open(sampleRate, bufferFrames int) (io.WriteCloser, error)
	close() error
}

func newBackend(name string) (backend, error) {
	switch name {
	case backendOto:
		return &otoBackend{}, nil
	case backendHeadless:
		return headlessBackend{}, nil
	}
	return nil, fmt.Errorf("backend %q: %w", name, ErrInvalidConfig)
}

// otoBackend plays through the default device. oto allows a single context
// per process, so it is created on the first open and reused afterwards.
type otoBackend struct {
	ctx        *oto.Context
	sampleRate int
}

func (b *otoBackend) open(sampleRate, bufferFrames int) (io.WriteCloser, error) {
	if b.ctx == nil {
		ctx, err := oto.NewContext(sampleRate, channelNum, bitDepthInBytes, bufferFrames*bytesPerFrame)
		if err != nil {
			return nil, err
		}
		b.ctx = ctx
		b.sampleRate = sampleRate
		log.Printf("opened audio device: %d Hz, %d frames\n", sampleRate, bufferFrames)
	} else if sampleRate != b.sampleRate {
		log.Printf("[WARN] device stays at %d Hz (requested %d Hz)\n", b.sampleRate, sampleRate)
	}
	return b.ctx.NewPlayer(), nil
}

func (b *otoBackend) close() error {
	if b.ctx == nil {
		return nil
	}
	err := b.ctx.Close()
	b.ctx = nil
	return err
}

type headlessBackend struct{}

func (headlessBackend) open(int, int) (io.WriteCloser, error) { return nil, nil }
func (headlessBackend) close() error                          { return nil }

// ----- Stream ----- //

// stream pumps rendered buffers into a player until it is cancelled.
type stream struct {
	engine *Engine
	ctx    context.Context
	cancel context.CancelFunc
	done   chan error
	out    *goaudio.FloatBuffer
}

func newStream(e *Engine, w io.WriteCloser) *stream {
	ctx, cancel := context.WithCancel(context.Background())
	s := &stream{
		engine: e,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan error, 1),
		out: &goaudio.FloatBuffer{
			Format: &goaudio.Format{NumChannels: 1, SampleRate: int(e.SampleRate())},
			Data:   make([]float64, e.config.BufferFrames),
		},
	}
	go func() {
		// blocks until cancel() is called
		_, err := io.CopyBuffer(w, s, make([]byte, e.config.BufferFrames*bytesPerFrame))
		if cerr := w.Close(); cerr != nil {
			log.Printf("error: %v", cerr)
		}
		s.done <- err
	}()
	return s
}

var _ io.Reader = (*stream)(nil)

func (s *stream) Read(buf []byte) (int, error) {
	select {
	case <-s.ctx.Done():
		return 0, io.EOF
	default:
	}
	frames := len(buf) / bytesPerFrame
	if frames > len(s.out.Data) {
		frames = len(s.out.Data)
	}
	out := s.out.Data[:frames]
	s.engine.Render(out)
	writeBuffer(out, buf, 0)
	writeBuffer(out, buf, 1)
	return frames * bytesPerFrame, nil
}

func (s *stream) stop() error {
	s.cancel()
	return <-s.done
}

// writeBuffer writes out as clipped 16-bit little endian samples into ch of
// the interleaved stereo buf.
func writeBuffer(out []float64, buf []byte, ch int) {
	for i, value := range out {
		if value > 1 {
			value = 1
		} else if value < -1 {
			value = -1
		}
		const max = 32767
		b := int16(value * max)
		buf[bytesPerFrame*i+2*ch] = byte(b)
		buf[bytesPerFrame*i+2*ch+1] = byte(b >> 8)
	}
}

// ----- Lifecycle ----- //

// Start opens the output stream if needed and begins rendering. When the
// stream cannot be opened it returns false and the engine stays stopped.
func (e *Engine) Start() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playing.Load() {
		return true
	}
	w, err := e.backend.open(int(e.SampleRate()), e.config.BufferFrames)
	if err != nil {
		log.Printf("failed to open audio stream: %v\n", err)
		return false
	}
	e.playing.Store(true)
	if w != nil {
		e.stream = newStream(e, w)
	}
	log.Println("started")
	return true
}

// Stop halts rendering. Voices keep their state and resume on the next Start.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stop()
}

func (e *Engine) stop() {
	if !e.playing.Load() {
		return
	}
	e.playing.Store(false)
	if e.stream != nil {
		if err := e.stream.stop(); err != nil {
			log.Printf("error while stopping stream: %v\n", err)
		}
		e.stream = nil
	}
	log.Println("stopped")
}

// Close stops the engine and releases the device. The engine cannot be
// started again.
func (e *Engine) Close() error {
	log.Println("Closing engine...")
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stop()
	e.closeOnce.Do(func() {
		close(e.CommandCh)
	})
	return e.backend.close()
}

// Run starts the engine and blocks until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	if !e.Start() {
		return fmt.Errorf("failed to start %s backend", e.config.Backend)
	}
	<-ctx.Done()
	e.Stop()
	log.Println("Run() ended.")
	return nil
}
