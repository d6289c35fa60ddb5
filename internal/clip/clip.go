// Package clip defines the sample buffer shared by the synthesizer, the WAV
// codec, the resolver and the output sinks.
package clip

import (
	"fmt"
	"time"
)

// Beep is the reserved selection that always resolves to the synthesized tone.
const Beep = "beep"

// Buffer is a block of normalized samples in [-1, 1]. Multi-channel data is
// interleaved. A Buffer is never modified after it has been handed out.
type Buffer struct {
	Samples    []float64
	SampleRate int
	Channels   int
}

// New validates the format and wraps samples in a Buffer. The slice is not
// copied; the caller gives up ownership.
func New(samples []float64, sampleRate, channels int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrFormat, sampleRate)
	}
	if channels < 1 {
		return nil, fmt.Errorf("%w: channel count must be at least 1, got %d", ErrFormat, channels)
	}
	return &Buffer{Samples: samples, SampleRate: sampleRate, Channels: channels}, nil
}

// Frames returns the number of sample frames (samples per channel).
func (b *Buffer) Frames() int {
	if b == nil || b.Channels < 1 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Duration returns the playback length at the native sample rate.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// Peak returns the largest absolute sample value.
func (b *Buffer) Peak() float64 {
	var peak float64
	for _, s := range b.Samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}

// Mono returns the buffer down-mixed to a single channel by averaging each
// frame. A mono buffer is returned unchanged.
func (b *Buffer) Mono() *Buffer {
	if b.Channels == 1 {
		return b
	}
	frames := b.Frames()
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < b.Channels; c++ {
			sum += b.Samples[i*b.Channels+c]
		}
		out[i] = sum / float64(b.Channels)
	}
	return &Buffer{Samples: out, SampleRate: b.SampleRate, Channels: 1}
}
