package sink

import (
	"math"
	"testing"

	"github.com/gopxl/beep"

	"github.com/Danondso/wallhit/internal/clip"
	"github.com/Danondso/wallhit/internal/config"
	"github.com/Danondso/wallhit/internal/synth"
)

func drain(t *testing.T, st beep.Streamer) [][2]float64 {
	t.Helper()
	var out [][2]float64
	chunk := make([][2]float64, 512)
	for i := 0; i < 10000; i++ {
		n, ok := st.Stream(chunk)
		out = append(out, chunk[:n]...)
		if !ok {
			return out
		}
	}
	t.Fatal("streamer never finished")
	return nil
}

func peak(frames [][2]float64) float64 {
	var p float64
	for _, f := range frames {
		p = math.Max(p, math.Max(math.Abs(f[0]), math.Abs(f[1])))
	}
	return p
}

func within(got, want, tolerance int) bool {
	return got >= want-tolerance && got <= want+tolerance
}

func TestNewBackends(t *testing.T) {
	cfg := config.Default().Output

	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("default backend: %v", err)
	}
	if _, ok := s.(*BeepSink); !ok {
		t.Errorf("expected *BeepSink for default backend, got %T", s)
	}
	if err := s.Close(); err != nil {
		t.Errorf("closing an unstarted beep sink: %v", err)
	}

	cfg.Backend = "none"
	s, err = New(cfg, nil)
	if err != nil {
		t.Fatalf("none backend: %v", err)
	}
	if _, ok := s.(Nop); !ok {
		t.Errorf("expected Nop, got %T", s)
	}
	s.Play(synth.Beep(1000), 1, 1)
	if err := s.Close(); err != nil {
		t.Errorf("Nop.Close: %v", err)
	}

	cfg.Backend = "alsa"
	if _, err := New(cfg, nil); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestBeepSinkClosedIgnoresPlay(t *testing.T) {
	s := NewBeepSink(0, 0, nil)
	if s.rate != defaultSampleRate {
		t.Errorf("expected default rate, got %d", s.rate)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	// Must not try to open the speaker after Close.
	s.Play(synth.Beep(1000), 1, 1)
	if s.started {
		t.Error("closed sink should not start the speaker")
	}
}

func TestBufferStreamer(t *testing.T) {
	stereo, _ := clip.New([]float64{0.1, -0.1, 0.2, -0.2, 0.3, -0.3}, 44100, 2)
	frames := drain(t, newBufferStreamer(stereo))
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	if frames[2] != [2]float64{0.3, -0.3} {
		t.Errorf("unexpected last frame %v", frames[2])
	}

	mono, _ := clip.New([]float64{0.5, 0.25}, 44100, 1)
	frames = drain(t, newBufferStreamer(mono))
	if len(frames) != 2 || frames[0] != [2]float64{0.5, 0.5} {
		t.Errorf("mono should duplicate to both channels, got %v", frames)
	}
}

func TestCueLengthAndVolume(t *testing.T) {
	buf := synth.Tone(440, 44100, 1.0, 0.8)

	tests := []struct {
		name    string
		rate    beep.SampleRate
		volume  float64
		pitch   float64
		wantLen int
	}{
		{"passthrough", 44100, 1, 1, 44100},
		{"output rate change", 48000, 1, 1, 48000},
		{"double pitch", 44100, 1, 2, 22050},
		{"half pitch", 44100, 1, 0.5, 88200},
		{"quiet", 44100, 0.5, 1, 44100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames := drain(t, cue(buf, tt.rate, tt.volume, tt.pitch))
			if !within(len(frames), tt.wantLen, tt.wantLen/100+16) {
				t.Errorf("expected ~%d frames, got %d", tt.wantLen, len(frames))
			}
			wantPeak := 0.8 * tt.volume
			if p := peak(frames); math.Abs(p-wantPeak) > 0.05 {
				t.Errorf("expected peak ~%v, got %v", wantPeak, p)
			}
		})
	}
}

func TestCueSilentAtZeroVolume(t *testing.T) {
	frames := drain(t, cue(synth.Beep(1000), 44100, 0, 1))
	if p := peak(frames); p != 0 {
		t.Errorf("expected silence, got peak %v", p)
	}
}

func TestResampleOutputLength(t *testing.T) {
	input := make([]float64, 48000)
	for i := range input {
		input[i] = 0.3 * math.Sin(2*math.Pi*440*float64(i)/48000)
	}

	output, err := Resample(input, 48000, 44100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Allow 1% tolerance on output length
	expectedLen := 44100
	if !within(len(output), expectedLen, expectedLen/100) {
		t.Errorf("expected ~%d samples, got %d", expectedLen, len(output))
	}
}

func TestResampleSameRateAndEmpty(t *testing.T) {
	input := []float64{0.1, 0.2, 0.3}
	out, err := Resample(input, 44100, 44100)
	if err != nil || len(out) != 3 {
		t.Errorf("same rate should pass through, got %v, %v", out, err)
	}
	out, err = Resample(nil, 48000, 44100)
	if err != nil || len(out) != 0 {
		t.Errorf("empty input should pass through, got %v, %v", out, err)
	}
	if _, err := Resample(input, 0, 44100); err == nil {
		t.Error("expected error for zero input rate")
	}
}

func TestRepitch(t *testing.T) {
	buf := synth.Tone(440, 44100, 1.0, 0.5)

	faster, err := Repitch(buf, 2, 44100)
	if err != nil {
		t.Fatal(err)
	}
	if !within(len(faster), 22050, 221) {
		t.Errorf("pitch 2 should halve the length, got %d", len(faster))
	}

	same, err := Repitch(buf, 1, 44100)
	if err != nil {
		t.Fatal(err)
	}
	if len(same) != len(buf.Samples) {
		t.Errorf("pitch 1 at native rate should be unchanged, got %d", len(same))
	}

	if _, err := Repitch(buf, 0, 44100); err == nil {
		t.Error("expected error for zero pitch")
	}

	stereo, _ := clip.New(make([]float64, 2*44100), 44100, 2)
	down, err := Repitch(stereo, 1, 44100)
	if err != nil {
		t.Fatal(err)
	}
	if len(down) != 44100 {
		t.Errorf("stereo should be down-mixed to %d samples, got %d", 44100, len(down))
	}
}

func TestMixOverlappingVoices(t *testing.T) {
	a := &voice{samples: []float64{0.5, 0.5, 0.5}, gain: 1}
	b := &voice{samples: []float64{0.25, 0.25, 0.25, 0.25, 0.25, 0.25}, gain: 0.5}
	loud := &voice{samples: []float64{0.9, -0.9}, gain: 2}

	out := make([]float32, 4)
	live := mix(out, []*voice{a, b, loud})

	want := []float32{1, -1, 0.625, 0.125}
	for i := range want {
		if math.Abs(float64(out[i]-want[i])) > 1e-6 {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
	if len(live) != 1 || live[0] != b {
		t.Fatalf("only b should still be playing, got %d voices", len(live))
	}

	live = mix(out, live)
	if len(live) != 0 {
		t.Errorf("expected all voices finished, got %d", len(live))
	}
	if out[1] != 0.125 || out[2] != 0 {
		t.Errorf("unexpected tail %v", out)
	}
}
