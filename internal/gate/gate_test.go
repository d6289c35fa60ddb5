package gate

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Danondso/wallhit/internal/clip"
	"github.com/Danondso/wallhit/internal/contact"
	"github.com/Danondso/wallhit/internal/resolver"
	"github.com/Danondso/wallhit/internal/settings"
	"github.com/Danondso/wallhit/internal/synth"
	"github.com/Danondso/wallhit/internal/wavfile"
)

type played struct {
	buf    *clip.Buffer
	volume float64
	pitch  float64
}

// mockSink records every Play call.
type mockSink struct {
	mu    sync.Mutex
	plays []played
}

func (m *mockSink) Play(buf *clip.Buffer, volume, pitch float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plays = append(m.plays, played{buf, volume, pitch})
}

func (m *mockSink) Close() error { return nil }

func (m *mockSink) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.plays)
}

func (m *mockSink) last() played {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plays[len(m.plays)-1]
}

type fixture struct {
	dir   string
	store *settings.Store
	res   *resolver.Resolver
	sink  *mockSink
	gate  *Gate
}

func newFixture(t *testing.T, initial settings.Snapshot) *fixture {
	t.Helper()
	dir := t.TempDir()
	store := settings.New(initial, nil, nil)
	res := resolver.New(dir, nil, func() *clip.Buffer {
		return synth.Beep(store.Frequency())
	}, nil)
	out := &mockSink{}
	return &fixture{dir: dir, store: store, res: res, sink: out, gate: New(store, res, out, nil)}
}

func (f *fixture) writeWAV(t *testing.T, name string, buf *clip.Buffer) {
	t.Helper()
	data, err := wavfile.EncodeWith(buf, wavfile.MappingFullRange)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(f.dir, name+".wav"), data, 0644); err != nil {
		t.Fatal(err)
	}
}

func waitCached(t *testing.T, r *resolver.Resolver, sel string) *clip.Buffer {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if buf, ok := r.Cached(sel); ok {
			return buf
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("%q was never cached", sel)
	return nil
}

func TestTriggerDisabled(t *testing.T) {
	snap := settings.Defaults()
	snap.Enabled = false
	f := newFixture(t, snap)

	if f.gate.Trigger() {
		t.Error("Trigger should report nothing played while disabled")
	}
	if f.sink.count() != 0 {
		t.Errorf("expected no plays, got %d", f.sink.count())
	}
}

func TestTriggerMissPlaysFallbackAndPrefetches(t *testing.T) {
	snap := settings.Defaults()
	snap.Selection = "wall_hit"
	f := newFixture(t, snap)
	f.writeWAV(t, "wall_hit", synth.WallHit(synth.DefaultSampleRate, 0.15))

	if !f.gate.Trigger() {
		t.Fatal("expected Trigger to play")
	}
	first := f.sink.last()
	if len(first.buf.Samples) != 2205 {
		t.Errorf("expected fallback beep on cache miss, got %d samples", len(first.buf.Samples))
	}

	loaded := waitCached(t, f.res, "wall_hit")
	f.gate.Trigger()
	if got := f.sink.last().buf; got != loaded {
		t.Error("second trigger should play the loaded clip")
	}
	if len(loaded.Samples) != 6615 {
		t.Errorf("expected wall_hit length 6615, got %d", len(loaded.Samples))
	}
}

func TestTriggerPassesVolumeAndPitch(t *testing.T) {
	f := newFixture(t, settings.Snapshot{Enabled: true, Selection: "beep", Volume: 0.3, Pitch: 1.5, Frequency: 800})
	f.gate.Trigger()

	p := f.sink.last()
	if p.volume != 0.3 || p.pitch != 1.5 {
		t.Errorf("expected volume 0.3 pitch 1.5, got %v %v", p.volume, p.pitch)
	}
	want := synth.Beep(800)
	if len(p.buf.Samples) != len(want.Samples) || p.buf.Samples[10] != want.Samples[10] {
		t.Error("expected an 800 Hz beep")
	}
}

func TestOverlappingTriggersAllPlay(t *testing.T) {
	f := newFixture(t, settings.Defaults())
	for i := 0; i < 5; i++ {
		f.gate.Trigger()
	}
	if f.sink.count() != 5 {
		t.Errorf("expected 5 plays, got %d", f.sink.count())
	}
}

func TestPreviewIgnoresEnabled(t *testing.T) {
	snap := settings.Defaults()
	snap.Enabled = false
	f := newFixture(t, snap)

	f.gate.Preview()
	if f.sink.count() != 1 {
		t.Errorf("expected preview to play, got %d plays", f.sink.count())
	}
}

func TestMonitorFrames(t *testing.T) {
	f := newFixture(t, settings.Defaults())
	m := NewMonitor(f.gate)

	frames := []bool{false, false, true, true, true, false, true}
	var fired []int
	for i, inside := range frames {
		if m.Tick(inside) {
			fired = append(fired, i+1)
		}
	}

	if len(fired) != 2 || fired[0] != 3 || fired[1] != 7 {
		t.Errorf("expected hits at frames [3 7], got %v", fired)
	}
	if m.Hits() != 2 || f.sink.count() != 2 {
		t.Errorf("expected 2 hits and 2 plays, got %d and %d", m.Hits(), f.sink.count())
	}
	if m.State() != contact.Inside {
		t.Errorf("expected inside after last frame, got %v", m.State())
	}

	m.Reset()
	if m.Hits() != 0 || m.State() != contact.Outside {
		t.Error("Reset should clear hits and state")
	}
}

func TestMonitorSuppressedWhileDisabled(t *testing.T) {
	snap := settings.Defaults()
	snap.Enabled = false
	f := newFixture(t, snap)
	m := NewMonitor(f.gate)

	m.Tick(true)
	f.store.SetEnabled(true)
	if m.Tick(true) {
		t.Error("enabling while inside must not fire")
	}

	f.store.SetEnabled(false)
	m.Tick(false)
	f.store.SetEnabled(true)
	if !m.Tick(true) {
		t.Error("re-entering after enabling should fire")
	}
	if f.sink.count() != 1 {
		t.Errorf("expected exactly one play, got %d", f.sink.count())
	}
}

func TestRunInvalidatesOnSelectionChange(t *testing.T) {
	f := newFixture(t, settings.Defaults())
	f.writeWAV(t, "deep_impact", synth.DeepImpact(synth.DefaultSampleRate, 0.25))

	events := f.store.Subscribe(8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.gate.Run(ctx, events) }()

	f.store.SetSelection("deep_impact")
	buf := waitCached(t, f.res, "deep_impact")
	if len(buf.Samples) != 11025 {
		t.Errorf("expected deep_impact loaded, got %d samples", len(buf.Samples))
	}

	// Volume changes must not drop the cache.
	f.store.SetVolume(0.2)
	time.Sleep(20 * time.Millisecond)
	if got, ok := f.res.Cached("deep_impact"); !ok || got != buf {
		t.Error("volume change should keep the cached clip")
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunFrequencyChangeRebuildsBeep(t *testing.T) {
	f := newFixture(t, settings.Defaults())
	before := f.res.Resolve(context.Background(), clip.Beep)

	events := f.store.Subscribe(8)
	done := make(chan error, 1)
	go func() { done <- f.gate.Run(context.Background(), events) }()

	f.store.SetFrequency(250)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if buf, ok := f.res.Cached(clip.Beep); ok && buf != before {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	after, ok := f.res.Cached(clip.Beep)
	if !ok || after == before {
		t.Fatal("expected a rebuilt beep after frequency change")
	}
	want := synth.Beep(250)
	if after.Samples[100] != want.Samples[100] {
		t.Error("expected the rebuilt beep at 250 Hz")
	}

	f.store.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil after channel close, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}
}
