package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net"
	"net/url"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jinjor/desktop-wavetable/src/audio"
	"golang.org/x/sync/errgroup"
)

var (
	configPath = flag.String("config", "", "path to a JSON config file")
	sockFile   = flag.String("sock", "/tmp/desktop-wavetable.sock", "unix socket to accept the controller on")
	backend    = flag.String("backend", "", "output backend (oto, headless)")
	sampleRate = flag.Int("rate", 0, "sample rate in Hz")
	midiPort   = flag.String("midi", "", "name of the MIDI IN port (first port if empty)")
	noMidi     = flag.Bool("no-midi", false, "do not listen to MIDI IN")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Lshortfile)
	log.Printf("NumCPU: %v\n", runtime.NumCPU())

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	engine, err := audio.NewEngine(cfg)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	defer engine.Close()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalCh)
		cancel()
	}()
	go func() {
		sig := <-signalCh
		log.Printf("Caught signal %s: shutting down...\n", sig)
		cancel()
	}()
	err = withIPCConnection(ctx, *sockFile, func(conn net.Conn) error {
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return engine.Run(ctx)
		})
		if cfg.MidiIn {
			g.Go(func() error {
				for data := range audio.ListenToMidiIn(ctx, *midiPort) {
					engine.AddMidiEvent(data)
				}
				log.Println("MIDI forwarding ended.")
				return nil
			})
		}
		g.Go(func() error {
			err := receiveCommands(ctx, conn, engine.CommandCh)
			// the controller hung up
			cancel()
			return err
		})
		g.Go(func() error {
			return sendReports(ctx, conn, engine)
		})
		return g.Wait()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("main() ended.")
}

func loadConfig() (audio.Config, error) {
	cfg := audio.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = audio.LoadConfig(*configPath); err != nil {
			return cfg, err
		}
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *sampleRate > 0 {
		cfg.SampleRate = *sampleRate
	}
	if *noMidi {
		cfg.MidiIn = false
	}
	return cfg, nil
}

func withIPCConnection(ctx context.Context, sockFileName string, f func(net.Conn) error) error {
	os.Remove(sockFileName)
	listener, err := new(net.ListenConfig).Listen(ctx, "unix", sockFileName)
	if err != nil {
		return err
	}
	defer func() {
		log.Println("Closing IPC...")
		err := listener.Close()
		if err != nil {
			log.Printf("error while closing listener: %v", err)
		}
		os.Remove(sockFileName)
	}()
	log.Printf("start listening on %s...\n", sockFileName)
	conn, err := listener.Accept()
	if err != nil {
		return err
	}
	defer func() {
		err := conn.Close()
		if err != nil {
			log.Printf("error while closing connection: %v", err)
		}
	}()
	return f(conn)
}

func receiveCommands(ctx context.Context, conn net.Conn, commandCh chan<- []string) error {
	reader := bufio.NewReader(conn)
	var line []byte
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("Connection interrupted")
			break loop
		default:
		}
		next, isPrefix, err := reader.ReadLine()
		if err == io.EOF {
			break loop
		}
		if err != nil {
			return err
		}
		line = append(line, next...)
		if isPrefix {
			continue
		}
		command, err := parseCommand(string(line))
		if err != nil {
			return err
		}
		commandCh <- command
		log.Printf("received: %s\n", string(line))
		line = []byte{}
	}
	log.Println("receiveCommands() ended.")
	return nil
}

func parseCommand(line string) ([]string, error) {
	lineStr := strings.Split(line, " ")
	for i, item := range lineStr {
		escaped, err := url.QueryUnescape(item)
		if err != nil {
			return nil, err
		}
		lineStr[i] = escaped
	}
	return lineStr, nil
}

func formatReport(kind string, items []string) string {
	s := kind
	for _, item := range items {
		s += " " + url.QueryEscape(item)
	}
	return s + "\n"
}

func sendReports(ctx context.Context, conn net.Conn, engine *audio.Engine) error {
	t := time.NewTicker(time.Second / 60)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("sendReports() ended.")
			return nil
		case <-t.C:
		}
		var reports []string
		if engine.Changes.Take("samples") {
			reports = append(reports, formatReport("samples", engine.ListSampleNames()))
		}
		if engine.Changes.Take("data") {
			reports = append(reports, formatReport("data", []string{string(engine.ToJSON())}))
		}
		result := engine.GetFFT()
		values := make([]string, len(result))
		for i, value := range result {
			values[i] = strconv.FormatFloat(value, 'f', 6, 64)
		}
		reports = append(reports, formatReport("fft", values))
		reports = append(reports, formatReport("voices", []string{strconv.Itoa(engine.ActiveVoices())}))
		for _, r := range reports {
			if _, err := conn.Write([]byte(r)); err != nil {
				return err
			}
		}
	}
}
