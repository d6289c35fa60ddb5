// Package sink plays clips on an audio output.
package sink

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/Danondso/wallhit/internal/clip"
	"github.com/Danondso/wallhit/internal/config"
)

// Sink plays clips. Play must not block the caller for the length of the
// clip, and overlapping calls must mix.
type Sink interface {
	Play(buf *clip.Buffer, volume, pitch float64)
	Close() error
}

// Nop discards every clip.
type Nop struct{}

func (Nop) Play(*clip.Buffer, float64, float64) {}
func (Nop) Close() error                        { return nil }

// New opens the sink named by cfg.Backend.
func New(cfg config.OutputConfig, logger *log.Logger) (Sink, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	buffer := time.Duration(cfg.BufferMs) * time.Millisecond
	switch strings.ToLower(cfg.Backend) {
	case "", "beep":
		return NewBeepSink(cfg.SampleRate, buffer, logger), nil
	case "portaudio":
		return NewPortAudioSink(cfg.SampleRate, buffer, logger)
	case "none":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown output backend %q (valid: beep, portaudio, none)", cfg.Backend)
	}
}

// Resample converts mono samples from inputRate to outputRate using
// polyphase FIR filtering (go-audio-resampling, QualityLow preset).
func Resample(samples []float64, inputRate, outputRate float64) ([]float64, error) {
	if inputRate == outputRate || len(samples) == 0 {
		return samples, nil
	}
	if inputRate <= 0 || outputRate <= 0 {
		return nil, fmt.Errorf("invalid resample rates %v -> %v", inputRate, outputRate)
	}
	out, err := resampling.ResampleMono(samples, inputRate, outputRate, resampling.QualityLow)
	if err != nil {
		return nil, fmt.Errorf("resample mono: %w", err)
	}
	return out, nil
}

// Repitch returns buf as mono samples at outputRate, played back pitch times
// faster. Pitch above 1 shortens the clip and raises its pitch.
func Repitch(buf *clip.Buffer, pitch, outputRate float64) ([]float64, error) {
	if pitch <= 0 {
		return nil, fmt.Errorf("invalid pitch %v", pitch)
	}
	mono := buf.Mono()
	return Resample(mono.Samples, float64(mono.SampleRate)*pitch, outputRate)
}
