package clipboard

import (
	"context"
	"errors"
	"testing"

	atclip "github.com/atotto/clipboard"
)

func TestIsWaylandDetection(t *testing.T) {
	t.Setenv("WAYLAND_DISPLAY", "wayland-0")
	if !isWayland() {
		t.Error("expected isWayland()=true when WAYLAND_DISPLAY is set")
	}

	t.Setenv("WAYLAND_DISPLAY", "")
	if isWayland() {
		t.Error("expected isWayland()=false when WAYLAND_DISPLAY is empty")
	}
}

// stubTools replaces the command seams for the duration of a test.
func stubTools(t *testing.T, haveWlCopy bool, runErr, writeErr error) (ran *[]string, wrote *[]string) {
	t.Helper()
	origLook, origRun, origWrite := lookPath, runCommand, writeAll
	t.Cleanup(func() { lookPath, runCommand, writeAll = origLook, origRun, origWrite })

	var r, w []string
	lookPath = func(name string) (string, error) {
		if haveWlCopy && name == "wl-copy" {
			return "/usr/bin/wl-copy", nil
		}
		return "", errors.New("not found")
	}
	runCommand = func(_ context.Context, name string, args ...string) error {
		r = append(r, name+" "+args[len(args)-1])
		return runErr
	}
	writeAll = func(text string) error {
		w = append(w, text)
		return writeErr
	}
	return &r, &w
}

func TestCopyWaylandUsesWlCopy(t *testing.T) {
	t.Setenv("WAYLAND_DISPLAY", "wayland-0")
	ran, wrote := stubTools(t, true, nil, nil)

	if err := Copy("/home/me/sounds"); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if len(*ran) != 1 || (*ran)[0] != "wl-copy /home/me/sounds" {
		t.Errorf("unexpected commands %v", *ran)
	}
	if len(*wrote) != 0 {
		t.Error("atotto should not be used when wl-copy is available")
	}
}

func TestCopyWaylandError(t *testing.T) {
	t.Setenv("WAYLAND_DISPLAY", "wayland-0")
	stubTools(t, true, errors.New("exit 1"), nil)

	if err := Copy("x"); err == nil {
		t.Error("expected wl-copy failure to be reported")
	}
}

func TestCopyFallsBackToAtotto(t *testing.T) {
	if atclip.Unsupported {
		t.Skip("no clipboard utility on this machine")
	}
	t.Setenv("WAYLAND_DISPLAY", "")
	ran, wrote := stubTools(t, false, nil, nil)

	if err := Copy("/tmp/sounds"); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if len(*ran) != 0 {
		t.Errorf("no external command expected, ran %v", *ran)
	}
	if len(*wrote) != 1 || (*wrote)[0] != "/tmp/sounds" {
		t.Errorf("unexpected writes %v", *wrote)
	}
}
