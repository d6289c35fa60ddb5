//go:build darwin

package hotkey

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"golang.design/x/hotkey"

	"github.com/Danondso/wallhit/internal/config"
)

var modifierMap = map[string]hotkey.Modifier{
	"OPTION": hotkey.ModOption,
	"ALT":    hotkey.ModOption,
	"CTRL":   hotkey.ModCtrl,
	"SHIFT":  hotkey.ModShift,
	"CMD":    hotkey.ModCmd,
}

// keyMap maps key names to hotkey.Key values. Every entry is also reachable
// by its evdev name (KEY_ prefix) so one config file works on both
// platforms.
var keyMap = map[string]hotkey.Key{
	"SPACE": hotkey.KeySpace, "RETURN": hotkey.KeyReturn, "ESCAPE": hotkey.KeyEscape,
	"DELETE": hotkey.KeyDelete, "TAB": hotkey.KeyTab,
	"LEFT": hotkey.KeyLeft, "RIGHT": hotkey.KeyRight, "UP": hotkey.KeyUp, "DOWN": hotkey.KeyDown,

	"F1": hotkey.KeyF1, "F2": hotkey.KeyF2, "F3": hotkey.KeyF3, "F4": hotkey.KeyF4,
	"F5": hotkey.KeyF5, "F6": hotkey.KeyF6, "F7": hotkey.KeyF7, "F8": hotkey.KeyF8,
	"F9": hotkey.KeyF9, "F10": hotkey.KeyF10, "F11": hotkey.KeyF11, "F12": hotkey.KeyF12,
	"F13": hotkey.KeyF13, "F14": hotkey.KeyF14, "F15": hotkey.KeyF15, "F16": hotkey.KeyF16,
	"F17": hotkey.KeyF17, "F18": hotkey.KeyF18, "F19": hotkey.KeyF19, "F20": hotkey.KeyF20,

	"A": hotkey.KeyA, "B": hotkey.KeyB, "C": hotkey.KeyC, "D": hotkey.KeyD, "E": hotkey.KeyE,
	"F": hotkey.KeyF, "G": hotkey.KeyG, "H": hotkey.KeyH, "I": hotkey.KeyI, "J": hotkey.KeyJ,
	"K": hotkey.KeyK, "L": hotkey.KeyL, "M": hotkey.KeyM, "N": hotkey.KeyN, "O": hotkey.KeyO,
	"P": hotkey.KeyP, "Q": hotkey.KeyQ, "R": hotkey.KeyR, "S": hotkey.KeyS, "T": hotkey.KeyT,
	"U": hotkey.KeyU, "V": hotkey.KeyV, "W": hotkey.KeyW, "X": hotkey.KeyX, "Y": hotkey.KeyY,
	"Z": hotkey.KeyZ,

	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3, "4": hotkey.Key4,
	"5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7, "8": hotkey.Key8, "9": hotkey.Key9,
}

// evdevAliases maps evdev names whose suffix differs from the macOS name.
var evdevAliases = map[string]string{
	"ENTER": "RETURN",
	"ESC":   "ESCAPE",
}

func lookupKey(name string) (hotkey.Key, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if rest, ok := strings.CutPrefix(name, "KEY_"); ok {
		if alias, ok := evdevAliases[rest]; ok {
			rest = alias
		}
		name = rest
	}
	k, ok := keyMap[name]
	return k, ok
}

// ParseHotkeyCombo parses "Option+F9" style combos. A bare evdev name such
// as "KEY_F9" is accepted and bound with Option, since macOS global hotkeys
// need a modifier.
func ParseHotkeyCombo(combo string) ([]hotkey.Modifier, hotkey.Key, string, error) {
	combo = strings.TrimSpace(combo)
	if combo == "" {
		return nil, 0, "", fmt.Errorf("empty hotkey combo")
	}

	if strings.HasPrefix(strings.ToUpper(combo), "KEY_") {
		key, ok := lookupKey(combo)
		if !ok {
			return nil, 0, "", fmt.Errorf("unknown evdev key: %s (on macOS, use modifier+key combos like Option+F9)", combo)
		}
		return []hotkey.Modifier{hotkey.ModOption}, key, combo, nil
	}

	parts := strings.Split(combo, "+")
	if len(parts) < 2 {
		return nil, 0, "", fmt.Errorf("hotkey must be modifier+key (e.g. Option+F9), got: %s", combo)
	}

	mods := make([]hotkey.Modifier, 0, len(parts)-1)
	for _, part := range parts[:len(parts)-1] {
		part = strings.TrimSpace(part)
		mod, ok := modifierMap[strings.ToUpper(part)]
		if !ok {
			return nil, 0, "", fmt.Errorf("unknown modifier: %s (valid: Option, Alt, Ctrl, Shift, Cmd)", part)
		}
		mods = append(mods, mod)
	}

	keyStr := parts[len(parts)-1]
	key, ok := lookupKey(keyStr)
	if !ok {
		return nil, 0, "", fmt.Errorf("unknown key: %s", strings.TrimSpace(keyStr))
	}
	return mods, key, combo, nil
}

// Open builds the Listener described by cfg. cfg.Device is ignored on macOS.
func Open(cfg config.HotkeyConfig, logger *log.Logger) (Listener, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	mods, key, name, err := ParseHotkeyCombo(cfg.Key)
	if err != nil {
		return nil, err
	}
	logger.Printf("hotkey: %s", name)
	return NewListener(mods, key, name), nil
}

// darwinListener implements Listener using golang.design/x/hotkey. The
// hotkey package needs the main thread, see mainthread.Init in cmd/wallhit.
type darwinListener struct {
	mods    []hotkey.Modifier
	key     hotkey.Key
	keyName string
	hk      *hotkey.Hotkey
}

// NewListener creates a darwin Listener for the given combo.
func NewListener(mods []hotkey.Modifier, key hotkey.Key, keyName string) Listener {
	return &darwinListener{mods: mods, key: key, keyName: keyName}
}

// Start registers the hotkey and forwards press/release until ctx is done.
func (l *darwinListener) Start(ctx context.Context, onDown func(), onUp func()) error {
	l.hk = hotkey.New(l.mods, l.key)
	if err := l.hk.Register(); err != nil {
		return fmt.Errorf("register hotkey %s: %w (grant Accessibility permissions in System Settings > Privacy & Security)", l.keyName, err)
	}

	for {
		select {
		case <-ctx.Done():
			l.hk.Unregister()
			return ctx.Err()
		case <-l.hk.Keydown():
			if onDown != nil {
				onDown()
			}
		case <-l.hk.Keyup():
			if onUp != nil {
				onUp()
			}
		}
	}
}

// Stop unregisters the hotkey.
func (l *darwinListener) Stop() {
	if l.hk != nil {
		l.hk.Unregister()
	}
}

// KeyName returns the configured combo.
func (l *darwinListener) KeyName() string {
	return l.keyName
}
