package main

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newTestApp builds an app with silent output and a temporary sound folder.
// sounds and extra are appended to the [sounds] table and the file.
func newTestApp(t *testing.T, sounds, extra string) *app {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	content := `
[sounds]
dir = "` + filepath.Join(dir, "sounds") + `"
` + sounds + `

[output]
backend = "none"
` + extra
	if err := os.WriteFile(cfgPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	a, err := newApp(cfgPath, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestNewAppBootstrapsSounds(t *testing.T) {
	a := newTestApp(t, "", "")
	var out bytes.Buffer
	if err := a.runList(&out); err != nil {
		t.Fatalf("runList: %v", err)
	}
	want := "* beep\n  deep_impact\n  wall_hit\n  wall_impact\n"
	if out.String() != want {
		t.Errorf("expected\n%s\ngot\n%s", want, out.String())
	}
}

func TestNewAppSkipsBootstrap(t *testing.T) {
	a := newTestApp(t, "bootstrap = false", "")
	var out bytes.Buffer
	if err := a.runList(&out); err != nil {
		t.Fatalf("runList: %v", err)
	}
	if out.String() != "* beep\n" {
		t.Errorf("expected only beep, got %q", out.String())
	}
}

func TestNewAppUnknownBackend(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[output]\nbackend = \"jack\"\n[sounds]\nbootstrap = false\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := newApp(cfgPath, log.New(io.Discard, "", 0)); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestRunFramesPrintsHits(t *testing.T) {
	a := newTestApp(t, "", "")
	in := strings.NewReader("0\n0\n1\n1\n\n# comment\n0\ninside\n1\n")
	var out bytes.Buffer
	if err := a.runFrames(in, &out); err != nil {
		t.Fatalf("runFrames: %v", err)
	}
	want := "hit 3\nhit 6\n"
	if out.String() != want {
		t.Errorf("expected %q, got %q", want, out.String())
	}
	if a.monitor.Hits() != 2 {
		t.Errorf("expected 2 hits, got %d", a.monitor.Hits())
	}
}

func TestRunFramesDisabled(t *testing.T) {
	a := newTestApp(t, "", "\n[playback]\nenabled = false\n")
	var out bytes.Buffer
	if err := a.runFrames(strings.NewReader("0\n1\n0\n1\n"), &out); err != nil {
		t.Fatalf("runFrames: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no hits while disabled, got %q", out.String())
	}
}

func TestParseInside(t *testing.T) {
	tests := map[string]bool{
		"1": true, "inside": true, "TRUE": true, "in": true,
		"0": false, "outside": false, "": false, "yes": false,
	}
	for in, want := range tests {
		if got := parseInside(in); got != want {
			t.Errorf("parseInside(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRunSetupWritesConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "wallhit", "config.toml")
	t.Setenv("HOME", dir)

	if err := runSetup(cfgPath, log.New(io.Discard, "", 0)); err != nil {
		t.Fatalf("runSetup: %v", err)
	}
	if _, err := os.Stat(cfgPath); err != nil {
		t.Errorf("expected config written: %v", err)
	}
	sounds := filepath.Join(dir, ".local", "share", "wallhit", "sounds", "wall_hit.wav")
	if _, err := os.Stat(sounds); err != nil {
		t.Errorf("expected default clip written: %v", err)
	}
}
