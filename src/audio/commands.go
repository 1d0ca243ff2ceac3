package audio

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
)

// ----- Changes ----- //

// Changes ...
type Changes struct {
	sync.Mutex
	dict map[string]struct{}
}

func newChanges() *Changes {
	return &Changes{dict: make(map[string]struct{})}
}

// Add ...
func (c *Changes) Add(key string) {
	c.Lock()
	defer c.Unlock()
	c.dict[key] = struct{}{}
}

// Has ...
func (c *Changes) Has(key string) bool {
	c.Lock()
	defer c.Unlock()
	_, ok := c.dict[key]
	return ok
}

// Take reports whether key was set and clears it.
func (c *Changes) Take(key string) bool {
	c.Lock()
	defer c.Unlock()
	_, ok := c.dict[key]
	delete(c.dict, key)
	return ok
}

// ----- Commands ----- //

func processCommands(e *Engine, commandCh <-chan []string) {
	for command := range commandCh {
		if err := e.update(command); err != nil {
			log.Printf("command %v failed: %v\n", command, err)
		}
	}
	log.Println("processCommands() ended.")
}

type args []string

func (a args) intAt(i int) (int, error) {
	if i >= len(a) {
		return 0, fmt.Errorf("missing argument %d: %w", i, ErrInvalidCommand)
	}
	v, err := strconv.ParseInt(a[i], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%v: %w", err, ErrInvalidCommand)
	}
	return int(v), nil
}

func (a args) floatAt(i int) (float64, error) {
	if i >= len(a) {
		return 0, fmt.Errorf("missing argument %d: %w", i, ErrInvalidCommand)
	}
	v, err := strconv.ParseFloat(a[i], 64)
	if err != nil {
		return 0, fmt.Errorf("%v: %w", err, ErrInvalidCommand)
	}
	return v, nil
}

func (a args) ints(n int) ([]int, error) {
	values := make([]int, n)
	for i := range values {
		v, err := a.intAt(i)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// update runs one text command, e.g. ["note_on", "0", "69", "127"].
func (e *Engine) update(command []string) error {
	if len(command) == 0 {
		return ErrInvalidCommand
	}
	a := args(command[1:])
	switch command[0] {
	case "note_on":
		v, err := a.ints(3)
		if err != nil {
			return err
		}
		e.NoteOn(v[0], v[1], v[2])
	case "note_off":
		ch, err := a.intAt(0)
		if err != nil {
			return err
		}
		if len(a) >= 2 {
			note, err := a.intAt(1)
			if err != nil {
				return err
			}
			e.NoteOffKey(ch, note)
		} else {
			e.NoteOff(ch)
		}
	case "bend":
		v, err := a.ints(2)
		if err != nil {
			return err
		}
		e.PitchBend(v[0], v[1])
	case "pressure":
		v, err := a.ints(2)
		if err != nil {
			return err
		}
		e.ChannelPressure(v[0], v[1])
	case "cc":
		v, err := a.ints(3)
		if err != nil {
			return err
		}
		e.ControlChange(v[0], v[1], v[2])
	case "cutoff":
		ch, err := a.intAt(0)
		if err != nil {
			return err
		}
		hz, err := a.floatAt(1)
		if err != nil {
			return err
		}
		e.SetFilterCutoff(ch, hz)
		e.Changes.Add("data")
	case "envelope":
		ch, err := a.intAt(0)
		if err != nil {
			return err
		}
		values := make([]float64, 4)
		for i := range values {
			if values[i], err = a.floatAt(i + 1); err != nil {
				return err
			}
		}
		e.SetEnvelopeParameters(ch, values[0], values[1], values[2], values[3])
		e.Changes.Add("data")
	case "set":
		// set adsr <channel> <key> <value>
		if len(a) != 4 || a[0] != "adsr" {
			return fmt.Errorf("invalid key-value pair %v: %w", a, ErrInvalidCommand)
		}
		ch, err := a.intAt(1)
		if err != nil {
			return err
		}
		if !validChannel(ch) {
			return nil
		}
		p := e.channels[ch].adsr()
		if err := p.set(a[2], a[3]); err != nil {
			return fmt.Errorf("%v: %w", err, ErrInvalidCommand)
		}
		e.channels[ch].setADSR(p)
		e.Changes.Add("data")
	case "waveform":
		if len(a) != 1 {
			return ErrInvalidCommand
		}
		kind, ok := WaveKindFromString(a[0])
		if !ok {
			return fmt.Errorf("waveform %q: %w", a[0], ErrInvalidCommand)
		}
		e.SetWaveform(kind)
		e.Changes.Add("data")
	case "load_wavetable":
		if len(a) != 1 {
			return ErrInvalidCommand
		}
		data, err := os.ReadFile(a[0])
		if err != nil {
			return err
		}
		e.LoadWavetable(data)
		e.Changes.Add("data")
	case "register_sample":
		// register_sample <path> <root> <lo> <hi> [name]
		if len(a) < 4 {
			return ErrInvalidCommand
		}
		data, err := os.ReadFile(a[0])
		if err != nil {
			return err
		}
		keys, err := a[1:].ints(3)
		if err != nil {
			return err
		}
		name := ""
		if len(a) >= 5 {
			name = a[4]
		}
		if !e.RegisterSample(data, keys[0], keys[1], keys[2], name) {
			return fmt.Errorf("failed to register %s", a[0])
		}
	case "unregister_sample":
		index, err := a.intAt(0)
		if err != nil {
			return err
		}
		e.UnregisterSample(index)
	case "preset":
		if len(a) != 1 {
			return ErrInvalidCommand
		}
		return e.LoadPreset(a[0])
	case "sample_rate":
		hz, err := a.floatAt(0)
		if err != nil {
			return err
		}
		e.SetSampleRate(hz)
	case "start":
		if !e.Start() {
			return fmt.Errorf("failed to start")
		}
	case "stop":
		e.Stop()
	default:
		return fmt.Errorf("%s: %w", command[0], ErrUnknownCommand)
	}
	return nil
}
