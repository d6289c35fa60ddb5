//go:build linux

package hotkey

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	evdev "github.com/holoplot/go-evdev"

	"github.com/Danondso/wallhit/internal/config"
)

// evdev key codes used below.
const (
	codeKeyA evdev.EvCode = 30
	codeKeyZ evdev.EvCode = 44
)

// keyNameMap maps evdev key name strings to their numeric codes.
var keyNameMap = map[string]evdev.EvCode{
	"KEY_ESC":        1,
	"KEY_1":          2,
	"KEY_2":          3,
	"KEY_3":          4,
	"KEY_4":          5,
	"KEY_5":          6,
	"KEY_6":          7,
	"KEY_7":          8,
	"KEY_8":          9,
	"KEY_9":          10,
	"KEY_0":          11,
	"KEY_MINUS":      12,
	"KEY_EQUAL":      13,
	"KEY_BACKSPACE":  14,
	"KEY_TAB":        15,
	"KEY_Q":          16,
	"KEY_W":          17,
	"KEY_E":          18,
	"KEY_R":          19,
	"KEY_T":          20,
	"KEY_Y":          21,
	"KEY_U":          22,
	"KEY_I":          23,
	"KEY_O":          24,
	"KEY_P":          25,
	"KEY_LEFTBRACE":  26,
	"KEY_RIGHTBRACE": 27,
	"KEY_ENTER":      28,
	"KEY_LEFTCTRL":   29,
	"KEY_A":          30,
	"KEY_S":          31,
	"KEY_D":          32,
	"KEY_F":          33,
	"KEY_G":          34,
	"KEY_H":          35,
	"KEY_J":          36,
	"KEY_K":          37,
	"KEY_L":          38,
	"KEY_SEMICOLON":  39,
	"KEY_APOSTROPHE": 40,
	"KEY_GRAVE":      41,
	"KEY_LEFTSHIFT":  42,
	"KEY_BACKSLASH":  43,
	"KEY_Z":          44,
	"KEY_X":          45,
	"KEY_C":          46,
	"KEY_V":          47,
	"KEY_B":          48,
	"KEY_N":          49,
	"KEY_M":          50,
	"KEY_COMMA":      51,
	"KEY_DOT":        52,
	"KEY_SLASH":      53,
	"KEY_RIGHTSHIFT": 54,
	"KEY_KPASTERISK": 55,
	"KEY_LEFTALT":    56,
	"KEY_SPACE":      57,
	"KEY_CAPSLOCK":   58,
	"KEY_F1":         59,
	"KEY_F2":         60,
	"KEY_F3":         61,
	"KEY_F4":         62,
	"KEY_F5":         63,
	"KEY_F6":         64,
	"KEY_F7":         65,
	"KEY_F8":         66,
	"KEY_F9":         67,
	"KEY_F10":        68,
	"KEY_NUMLOCK":    69,
	"KEY_SCROLLLOCK": 70,
	"KEY_F11":        87,
	"KEY_F12":        88,
	"KEY_RIGHTCTRL":  97,
	"KEY_RIGHTALT":   100,
	"KEY_HOME":       102,
	"KEY_UP":         103,
	"KEY_PAGEUP":     104,
	"KEY_LEFT":       105,
	"KEY_RIGHT":      106,
	"KEY_END":        107,
	"KEY_DOWN":       108,
	"KEY_PAGEDOWN":   109,
	"KEY_INSERT":     110,
	"KEY_DELETE":     111,
	"KEY_PAUSE":      119,
	"KEY_LEFTMETA":   125,
	"KEY_RIGHTMETA":  126,
	"KEY_F13":        183,
	"KEY_F14":        184,
	"KEY_F15":        185,
	"KEY_F16":        186,
	"KEY_F17":        187,
	"KEY_F18":        188,
	"KEY_F19":        189,
	"KEY_F20":        190,
	"KEY_F21":        191,
	"KEY_F22":        192,
	"KEY_F23":        193,
	"KEY_F24":        194,
}

// KeyCodeFromName maps an evdev key name string to its numeric key code.
func KeyCodeFromName(name string) (evdev.EvCode, error) {
	code, ok := keyNameMap[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown key name: %s", name)
	}
	return code, nil
}

// Open builds the evdev Listener described by cfg.
func Open(cfg config.HotkeyConfig, logger *log.Logger) (Listener, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	code, err := KeyCodeFromName(cfg.Key)
	if err != nil {
		return nil, err
	}
	logger.Printf("hotkey: %s (code=%d)", cfg.Key, code)

	dev, err := FindKeyboard(cfg.Device)
	if err != nil {
		return nil, err
	}
	logger.Printf("hotkey: keyboard device %s", dev.Path())
	return NewListener(dev, code, cfg.Key), nil
}

// FindKeyboard opens devicePath, or scans /dev/input/event* in numeric order
// for the first device that looks like a keyboard.
func FindKeyboard(devicePath string) (*evdev.InputDevice, error) {
	if devicePath != "" {
		dev, err := evdev.Open(devicePath)
		if err != nil {
			return nil, fmt.Errorf("open device %s: %w", devicePath, err)
		}
		return dev, nil
	}

	matches, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, fmt.Errorf("glob /dev/input/event*: %w", err)
	}
	sortEventPaths(matches)

	for _, path := range matches {
		dev, err := evdev.Open(path)
		if err != nil {
			continue
		}
		if isKeyboard(dev) {
			return dev, nil
		}
		_ = dev.Close()
	}
	return nil, fmt.Errorf("no keyboard device found in /dev/input/event* (is your user in the input group?)")
}

// sortEventPaths orders event device paths numerically so event7 comes
// before event10.
func sortEventPaths(paths []string) {
	num := func(p string) int {
		n, _ := strconv.Atoi(strings.TrimPrefix(filepath.Base(p), "event"))
		return n
	}
	sort.Slice(paths, func(i, j int) bool { return num(paths[i]) < num(paths[j]) })
}

// isKeyboard reports whether dev has letter keys and no relative axes,
// which rules out power buttons and mice.
func isKeyboard(dev *evdev.InputDevice) bool {
	for _, t := range dev.CapableTypes() {
		if t == evdev.EV_REL {
			return false
		}
	}
	var hasA, hasZ bool
	for _, code := range dev.CapableEvents(evdev.EV_KEY) {
		switch code {
		case codeKeyA:
			hasA = true
		case codeKeyZ:
			hasZ = true
		}
	}
	return hasA && hasZ
}

// evdevListener reports press and release of one key on an input device.
type evdevListener struct {
	dev     *evdev.InputDevice
	keyCode evdev.EvCode
	keyName string
	mu      sync.Mutex
	closed  bool
}

// NewListener creates a Listener for keyCode on dev.
func NewListener(dev *evdev.InputDevice, keyCode evdev.EvCode, keyName string) Listener {
	return &evdevListener{dev: dev, keyCode: keyCode, keyName: keyName}
}

// Start reads events until ctx is cancelled or the device is closed.
// Auto-repeat events are dropped so a held key is a single press.
func (l *evdevListener) Start(ctx context.Context, onDown func(), onUp func()) error {
	errCh := make(chan error, 1)
	go func() { errCh <- l.readLoop(onDown, onUp) }()

	select {
	case <-ctx.Done():
		l.Stop()
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (l *evdevListener) readLoop(onDown, onUp func()) error {
	for {
		ev, err := l.dev.ReadOne()
		if err != nil {
			if l.isClosed() || closedDeviceErr(err) {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		if ev.Type != evdev.EV_KEY || ev.Code != l.keyCode {
			continue
		}
		switch ev.Value {
		case 1:
			if onDown != nil {
				onDown()
			}
		case 0:
			if onUp != nil {
				onUp()
			}
		}
	}
}

func closedDeviceErr(err error) bool {
	if os.IsNotExist(err) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "file already closed") || strings.Contains(msg, "bad file descriptor")
}

func (l *evdevListener) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Stop closes the device, which ends the read loop.
func (l *evdevListener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.closed = true
		_ = l.dev.Close()
	}
}

// KeyName returns the configured key name.
func (l *evdevListener) KeyName() string {
	return l.keyName
}
