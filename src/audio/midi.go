package audio

import (
	"context"
	"log"
	"strings"

	"gitlab.com/gomidi/midi"
	"gitlab.com/gomidi/rtmididrv"
)

// ListenToMidiIn forwards raw messages from a MIDI IN port until ctx is done.
// The port whose name contains portName is used, or the first one when
// portName is empty. The channel is closed when listening ends.
func ListenToMidiIn(ctx context.Context, portName string) <-chan []byte {
	ch := make(chan []byte, 65536)
	go func() {
		defer close(ch)
		drv, err := rtmididrv.New()
		if err != nil {
			log.Printf("failed to initialize MIDI driver: %v\n", err)
			return
		}
		defer func() {
			err := drv.Close()
			if err != nil {
				log.Printf("failed to close MIDI driver: %v\n", err)
			}
		}()
		ins, err := drv.Ins()
		if err != nil {
			log.Printf("failed to get MIDI IN: %v\n", err)
			return
		}
		log.Printf("MIDI IN: %v\n", ins)

		in := selectMidiIn(ins, portName)
		if in == nil {
			log.Println("[WARN] MIDI IN not found")
			return
		}
		if err := in.Open(); err != nil {
			log.Printf("failed to open MIDI IN: %v\n", err)
			return
		}
		log.Println("opened " + in.String())
		defer func() {
			err := in.Close()
			if err != nil {
				log.Printf("failed to close MIDI IN: %v\n", err)
			}
		}()
		log.Println("start listening MIDI IN...")
		if err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
			msg := make([]byte, len(data))
			copy(msg, data)
			select {
			case ch <- msg:
			default:
				log.Println("[WARN] MIDI IN buffer is full")
			}
		}); err != nil {
			log.Println("failed to set listener: " + err.Error())
			return
		}
		defer func() {
			log.Println("stop listening MIDI IN...")
			err := in.StopListening()
			if err != nil {
				log.Printf("failed to stop listening: %v\n", err)
			}
		}()
		<-ctx.Done()
	}()
	return ch
}

func selectMidiIn(ins []midi.In, portName string) midi.In {
	for _, in := range ins {
		if portName == "" || strings.Contains(in.String(), portName) {
			return in
		}
	}
	return nil
}

// ----- MIDI Message ----- //

const (
	midiNoteOff         = 0x8
	midiNoteOn          = 0x9
	midiControlChange   = 0xB
	midiChannelPressure = 0xD
	midiPitchBend       = 0xE
)

// AddMidiEvent maps a raw channel voice message onto the engine. The MIDI
// channel selects the engine channel; channels past MaxChannels are dropped
// like any other invalid channel. Messages the engine has no use for are
// ignored.
func (e *Engine) AddMidiEvent(data []byte) {
	if len(data) < 2 {
		return
	}
	status := data[0] >> 4
	ch := int(data[0] & 0x0F)
	data1 := int(data[1] & 0x7F)
	data2 := 0
	if len(data) >= 3 {
		data2 = int(data[2] & 0x7F)
	}
	switch {
	case status == midiNoteOff && len(data) >= 3,
		status == midiNoteOn && len(data) >= 3 && data2 == 0:
		e.NoteOffKey(ch, data1)
	case status == midiNoteOn && len(data) >= 3:
		e.NoteOn(ch, data1, data2)
	case status == midiControlChange && len(data) >= 3:
		e.ControlChange(ch, data1, data2)
	case status == midiChannelPressure:
		e.ChannelPressure(ch, data1)
	case status == midiPitchBend && len(data) >= 3:
		e.PitchBend(ch, data2<<7|data1)
	}
}
