package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/Danondso/wallhit/internal/clip"
	"github.com/Danondso/wallhit/internal/wavfile"
)

func TestEnsureDefaultsWritesMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sounds")

	written, err := EnsureDefaults(dir, wavfile.MappingFullRange, nil)
	if err != nil {
		t.Fatalf("EnsureDefaults: %v", err)
	}
	want := []string{"wall_hit", "deep_impact", "wall_impact"}
	if !reflect.DeepEqual(written, want) {
		t.Errorf("written = %v, want %v", written, want)
	}

	data, err := os.ReadFile(filepath.Join(dir, "wall_hit.wav"))
	if err != nil {
		t.Fatal(err)
	}
	buf, err := wavfile.Decode(data)
	if err != nil {
		t.Fatalf("decode wall_hit.wav: %v", err)
	}
	if buf.SampleRate != 44100 || len(buf.Samples) != 6615 {
		t.Errorf("unexpected wall_hit.wav: %d Hz, %d samples", buf.SampleRate, len(buf.Samples))
	}
}

func TestEnsureDefaultsNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	custom := []byte("my own wall hit")
	if err := os.WriteFile(filepath.Join(dir, "wall_hit.wav"), custom, 0644); err != nil {
		t.Fatal(err)
	}

	written, err := EnsureDefaults(dir, wavfile.MappingLegacy, nil)
	if err != nil {
		t.Fatalf("EnsureDefaults: %v", err)
	}
	for _, name := range written {
		if name == "wall_hit" {
			t.Error("wall_hit should not have been written")
		}
	}
	got, _ := os.ReadFile(filepath.Join(dir, "wall_hit.wav"))
	if string(got) != string(custom) {
		t.Error("existing file was overwritten")
	}

	again, err := EnsureDefaults(dir, wavfile.MappingLegacy, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 0 {
		t.Errorf("second run should write nothing, wrote %v", again)
	}
}

func TestEnsureDefaultsNoLeftoverTemp(t *testing.T) {
	dir := t.TempDir()
	if _, err := EnsureDefaults(dir, wavfile.MappingFullRange, nil); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestEnsureDefaultsInvalidDir(t *testing.T) {
	if _, err := EnsureDefaults("", wavfile.MappingLegacy, nil); !errors.Is(err, clip.ErrInvalidDirectory) {
		t.Errorf("expected ErrInvalidDirectory for empty dir, got %v", err)
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := EnsureDefaults(filepath.Join(file, "sounds"), wavfile.MappingLegacy, nil); !errors.Is(err, clip.ErrInvalidDirectory) {
		t.Errorf("expected ErrInvalidDirectory under a file, got %v", err)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zap.ogg", "boom.wav", "boom.mp3", "beep.wav", "notes.txt", ".hidden.wav", "Alpha.MP3"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.wav"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"beep", "Alpha", "boom", "zap"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List = %v, want %v", got, want)
	}
}

func TestListMissingDir(t *testing.T) {
	got, err := List(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"beep"}) {
		t.Errorf("expected just beep, got %v", got)
	}
}

func TestSoundName(t *testing.T) {
	tests := []struct {
		file string
		name string
		ok   bool
	}{
		{"/x/wall_hit.wav", "wall_hit", true},
		{"deep.OGG", "deep", true},
		{"a.b.mp3", "a.b", true},
		{"readme.md", "", false},
		{".wallhit-123.tmp", "", false},
		{".hidden.wav", "", false},
	}
	for _, tt := range tests {
		name, ok := SoundName(tt.file)
		if name != tt.name || ok != tt.ok {
			t.Errorf("SoundName(%q) = %q, %v; want %q, %v", tt.file, name, ok, tt.name, tt.ok)
		}
	}
}

// collector gathers onChange calls.
type collector struct {
	mu    sync.Mutex
	names []string
}

func (c *collector) add(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = append(c.names, name)
}

func (c *collector) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.names...)
}

func startWatcher(t *testing.T, dir string, c *collector) (cancel func()) {
	t.Helper()
	ctx, cancelFn := context.WithCancel(context.Background())
	done := make(chan error, 1)
	w := &Watcher{Dir: dir, Debounce: 50 * time.Millisecond}
	go func() { done <- w.Run(ctx, c.add) }()
	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	return func() {
		cancelFn()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("watcher did not stop")
		}
	}
}

func TestWatchCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	c := &collector{}
	stop := startWatcher(t, dir, c)
	defer stop()

	path := filepath.Join(dir, "boom.wav")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte{byte(i)}, 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && len(c.snapshot()) == 0 {
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	got := c.snapshot()
	if !reflect.DeepEqual(got, []string{"boom"}) {
		t.Errorf("expected one boom notification, got %v", got)
	}
}

func TestWatchIgnoresUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()
	c := &collector{}
	stop := startWatcher(t, dir, c)
	defer stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if got := c.snapshot(); len(got) != 0 {
		t.Errorf("expected no notifications, got %v", got)
	}
}

func TestWatchMissingDir(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope"), func(string) {})
	if err == nil {
		t.Error("expected error watching a missing directory")
	}
}
