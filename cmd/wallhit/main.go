package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Danondso/wallhit/internal/clip"
	"github.com/Danondso/wallhit/internal/config"
	"github.com/Danondso/wallhit/internal/decode"
	"github.com/Danondso/wallhit/internal/gate"
	"github.com/Danondso/wallhit/internal/hotkey"
	"github.com/Danondso/wallhit/internal/library"
	"github.com/Danondso/wallhit/internal/resolver"
	"github.com/Danondso/wallhit/internal/settings"
	"github.com/Danondso/wallhit/internal/sink"
	"github.com/Danondso/wallhit/internal/synth"
	"github.com/Danondso/wallhit/internal/tui"
	"github.com/Danondso/wallhit/internal/wavfile"
)

const usage = `usage: wallhit [-debug] [-config path] [command]

commands:
  (none)       run the interactive monitor
  setup        write the default clips and config
  list         list available sounds
  play [name]  play a sound (default: the selected one) and exit
  frames       read one 0/1 line per frame from stdin, print hits
`

// app holds the wired playback pipeline shared by every command.
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	store    *settings.Store
	resolver *resolver.Resolver
	sink     sink.Sink
	gate     *gate.Gate
	monitor  *gate.Monitor
}

func newApp(cfgPath string, logger *log.Logger) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	store := settings.New(settings.FromConfig(cfg), settings.NewConfigPersister(cfgPath, cfg), logger)

	dir := cfg.SoundDir()
	if cfg.Sounds.Bootstrap {
		if _, err := library.EnsureDefaults(dir, mapping(cfg), logger); err != nil {
			logger.Printf("library: bootstrap %s: %v", dir, err)
		}
	}

	timeout := time.Duration(cfg.Output.DecodeTimeoutSec) * time.Second
	res := resolver.New(dir, decode.NewBeepDecoder(timeout, logger), func() *clip.Buffer {
		return synth.Beep(store.Frequency())
	}, logger)

	out, err := sink.New(cfg.Output, logger)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}

	g := gate.New(store, res, out, logger)
	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		resolver: res,
		sink:     out,
		gate:     g,
		monitor:  gate.NewMonitor(g),
	}, nil
}

func (a *app) Close() {
	a.store.Close()
	if err := a.sink.Close(); err != nil {
		a.logger.Printf("sink: close: %v", err)
	}
}

func mapping(cfg *config.Config) wavfile.Mapping {
	if cfg.Sounds.FullRangeWAV {
		return wavfile.MappingFullRange
	}
	return wavfile.MappingLegacy
}

func run() {
	debug := flag.Bool("debug", false, "enable debug logging to stderr")
	cfgPath := flag.String("config", config.DefaultPath(), "config file path")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	var dbg *log.Logger
	if *debug {
		dbg = log.New(os.Stderr, "[DEBUG] ", log.Ltime|log.Lmicroseconds)
	} else {
		dbg = log.New(io.Discard, "", 0)
	}

	args := flag.Args()
	if len(args) > 0 && args[0] == "setup" {
		if err := runSetup(*cfgPath, dbg); err != nil {
			fmt.Printf("Setup failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	a, err := newApp(*cfgPath, dbg)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}
	switch cmd {
	case "":
		err = a.runTUI(*debug)
	case "list":
		err = a.runList(os.Stdout)
	case "play":
		name := a.store.Selection()
		if len(args) > 1 {
			name = args[1]
		}
		err = a.runPlay(name)
	case "frames":
		err = a.runFrames(os.Stdin, os.Stdout)
	default:
		flag.Usage()
		a.Close()
		os.Exit(2)
	}
	if err != nil {
		a.Close()
		log.Fatal(err)
	}
}

// runSetup writes the default clips and, if missing, a default config file.
func runSetup(cfgPath string, dbg *log.Logger) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Println("=== WallHit Setup ===")
	fmt.Println()

	dir := cfg.SoundDir()
	written, err := library.EnsureDefaults(dir, mapping(cfg), dbg)
	if err != nil {
		return err
	}
	if len(written) == 0 {
		fmt.Printf("  Sound folder %s already has the default clips\n", dir)
	}
	for _, name := range written {
		fmt.Printf("  wrote %s\n", name)
	}

	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Printf("  wrote %s\n", cfgPath)
	}

	names, err := library.List(dir)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("Available sounds: %s\n", strings.Join(names, ", "))

	fmt.Println()
	fmt.Println("Setup complete. Run 'wallhit' to start.")
	return nil
}

func (a *app) runList(w io.Writer) error {
	names, err := library.List(a.resolver.Dir())
	if err != nil {
		return err
	}
	selection := a.store.Selection()
	for _, name := range names {
		marker := " "
		if name == selection {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\n", marker, name)
	}
	return nil
}

// playTail is added after a clip's length so the output drains before exit.
const playTail = 250 * time.Millisecond

func (a *app) runPlay(name string) error {
	buf := a.resolver.Resolve(context.Background(), name)
	pitch := a.store.Pitch()
	a.sink.Play(buf, a.store.Volume(), pitch)
	time.Sleep(time.Duration(float64(buf.Duration())/pitch) + playTail)
	return nil
}

// runFrames drives the monitor from stdin: each line is one frame, "1" (or
// "inside"/"true") when the head is inside a wall.
func (a *app) runFrames(r io.Reader, w io.Writer) error {
	a.resolver.Resolve(context.Background(), a.store.Selection())

	var frame uint64
	var lastHit time.Time
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		frame++
		if a.monitor.Tick(parseInside(line)) {
			lastHit = time.Now()
			fmt.Fprintf(w, "hit %d\n", frame)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read frames: %w", err)
	}
	if !lastHit.IsZero() {
		if buf, ok := a.resolver.Cached(a.store.Selection()); ok {
			time.Sleep(time.Until(lastHit.Add(buf.Duration() + playTail)))
		}
	}
	return nil
}

func parseInside(s string) bool {
	switch strings.ToLower(s) {
	case "1", "inside", "true", "in":
		return true
	}
	return false
}

func (a *app) runTUI(debug bool) error {
	tui.RegisterCustomThemes(a.cfg.CustomThemes)

	sig := &hotkey.Signal{}
	model := tui.NewModel(a.cfg, a.store, a.gate, a.monitor, sig, a.resolver.Dir(), a.logger, debug)
	p := tea.NewProgram(model, tea.WithAltScreen())

	// When debug is enabled, redirect logger output into the TUI debug panel
	if debug {
		a.logger.SetOutput(tui.NewLogWriter(p))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.resolver.Prefetch(ctx, a.store.Selection())

	go func() {
		if err := a.gate.Run(ctx, a.store.Subscribe(16)); err != nil && ctx.Err() == nil {
			a.logger.Printf("gate: %v", err)
		}
	}()

	go func() {
		err := library.Watch(ctx, a.resolver.Dir(), func(name string) {
			p.Send(tui.SoundChangedMsg{Name: name})
		})
		if err != nil && ctx.Err() == nil {
			a.logger.Printf("library: watch stopped: %v", err)
		}
	}()

	listener, err := hotkey.Open(a.cfg.Hotkey, a.logger)
	if err != nil {
		// The space key still toggles the signal from inside the TUI.
		a.logger.Printf("hotkey: unavailable, use space to toggle: %v", err)
	} else {
		go func() {
			if err := sig.Bind(ctx, listener); err != nil && ctx.Err() == nil {
				fmt.Fprintf(os.Stderr, "hotkey listener error: %v\n", err)
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
