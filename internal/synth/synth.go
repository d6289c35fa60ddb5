// Package synth generates the procedural cues: the fallback beep and the
// layered impact sounds written to the sound directory on first run.
package synth

import (
	"math"
	"math/rand"

	"github.com/Danondso/wallhit/internal/clip"
)

// DefaultSampleRate is the rate every built-in cue is rendered at.
const DefaultSampleRate = 44100

// Beep parameters used by the resolver fallback (2205 samples at 44.1kHz).
const (
	BeepDuration  = 0.05
	BeepAmplitude = 0.5
)

// sampleCount returns round(sampleRate*duration), never negative.
func sampleCount(sampleRate int, duration float64) int {
	n := int(math.Round(float64(sampleRate) * duration))
	if n < 0 {
		return 0
	}
	return n
}

func mono(samples []float64, sampleRate int) *clip.Buffer {
	return &clip.Buffer{Samples: samples, SampleRate: sampleRate, Channels: 1}
}

// Tone renders a single sine at frequency Hz.
func Tone(frequency float64, sampleRate int, duration, amplitude float64) *clip.Buffer {
	n := sampleCount(sampleRate, duration)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2*math.Pi*frequency*float64(i)/float64(sampleRate)) * amplitude
	}
	return mono(samples, sampleRate)
}

// Beep renders the short fallback tone at frequency Hz.
func Beep(frequency float64) *clip.Buffer {
	return Tone(frequency, DefaultSampleRate, BeepDuration, BeepAmplitude)
}

// WallHit renders a bright click: 900/2200/4500 Hz partials under a single
// exponential decay. Output is fully deterministic.
func WallHit(sampleRate int, duration float64) *clip.Buffer {
	n := sampleCount(sampleRate, duration)
	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		w1 := math.Sin(2 * math.Pi * 900 * t)
		w2 := math.Sin(2*math.Pi*2200*t) * 0.6
		w3 := math.Sin(2*math.Pi*4500*t) * 0.3
		combined := (w1 + w2 + w3) / 2
		samples[i] = combined * math.Exp(-5*t) * 0.6
	}
	return mono(samples, sampleRate)
}

// DeepImpact renders a low thud: a 200 Hz kick, a 400 Hz attack and a
// 1500 Hz click, each with its own decay, under a master envelope.
func DeepImpact(sampleRate int, duration float64) *clip.Buffer {
	n := sampleCount(sampleRate, duration)
	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		kick := math.Sin(2*math.Pi*200*t) * math.Exp(-6*t)
		attack := math.Sin(2*math.Pi*400*t) * math.Exp(-8*t) * 0.5
		click := math.Sin(2*math.Pi*1500*t) * math.Exp(-15*t) * 0.2
		samples[i] = (kick + attack + click) * math.Exp(-3*t) * 0.6
	}
	return mono(samples, sampleRate)
}

// impactLength is the noisy attack section of ImpactWithRing, in seconds.
const impactLength = 0.05

// ImpactWithRing renders a noise burst plus 600 Hz kick for the first 50ms,
// followed by a decaying 1200 Hz ring. The noise comes from rng, so the
// output only repeats when rng is seeded identically.
func ImpactWithRing(rng *rand.Rand, sampleRate int, duration float64) *clip.Buffer {
	n := sampleCount(sampleRate, duration)
	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		if t < impactLength {
			noise := (rng.Float64()*2 - 1) * math.Exp(-20*t)
			kick := math.Sin(2*math.Pi*600*t) * math.Exp(-15*t)
			samples[i] = (noise*0.5 + kick*0.5) * 0.7
			continue
		}
		rt := t - impactLength
		samples[i] = math.Sin(2*math.Pi*1200*rt) * math.Exp(-4*rt) * 0.3
	}
	return mono(samples, sampleRate)
}
