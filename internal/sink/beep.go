package sink

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/Danondso/wallhit/internal/clip"
)

const (
	defaultSampleRate = 44100
	defaultBuffer     = 50 * time.Millisecond
	resampleQuality   = 4
)

// BeepSink plays clips through the gopxl/beep speaker. A single long-lived
// mixer is attached to the speaker; each clip is added to it so overlapping
// hits play together.
type BeepSink struct {
	rate   beep.SampleRate
	buffer time.Duration
	mixer  *beep.Mixer
	logger *log.Logger

	mu      sync.Mutex
	started bool
	initErr error
	closed  bool
}

// NewBeepSink creates a sink at sampleRate. The speaker is opened lazily on
// the first Play.
func NewBeepSink(sampleRate int, buffer time.Duration, logger *log.Logger) *BeepSink {
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &BeepSink{
		rate:   beep.SampleRate(sampleRate),
		buffer: buffer,
		mixer:  &beep.Mixer{},
		logger: logger,
	}
}

// start opens the speaker and attaches the mixer. Callers hold s.mu.
func (s *BeepSink) start() error {
	if s.started || s.initErr != nil {
		return s.initErr
	}
	if err := speaker.Init(s.rate, s.rate.N(s.buffer)); err != nil {
		s.initErr = err
		return err
	}
	speaker.Play(s.mixer)
	s.started = true
	return nil
}

// Play queues buf on the mixer and returns immediately.
func (s *BeepSink) Play(buf *clip.Buffer, volume, pitch float64) {
	if buf == nil || len(buf.Samples) == 0 {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	err := s.start()
	s.mu.Unlock()
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("sink: speaker init error: %v", err)
		}
		return
	}

	st := cue(buf, s.rate, volume, pitch)
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
}

// Close stops all playing clips and releases the speaker.
func (s *BeepSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.started {
		return nil
	}
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	return nil
}

// cue builds the streamer for one hit: buf at the output rate, sped up by
// pitch, scaled by volume.
func cue(buf *clip.Buffer, rate beep.SampleRate, volume, pitch float64) beep.Streamer {
	var st beep.Streamer = newBufferStreamer(buf)
	from := beep.SampleRate(buf.SampleRate)
	switch {
	case pitch != 1:
		st = beep.ResampleRatio(resampleQuality, float64(from)/float64(rate)*pitch, st)
	case from != rate:
		st = beep.Resample(resampleQuality, from, rate, st)
	}
	return newVolume(st, volume)
}

// newVolume maps a linear volume onto effects.Volume's log scale.
func newVolume(st beep.Streamer, volume float64) beep.Streamer {
	if volume <= 0 {
		return &effects.Volume{Streamer: st, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: st, Base: 2, Volume: math.Log2(volume)}
}

// bufferStreamer streams a clip.Buffer as stereo frames.
type bufferStreamer struct {
	buf *clip.Buffer
	pos int
}

func newBufferStreamer(buf *clip.Buffer) *bufferStreamer {
	return &bufferStreamer{buf: buf}
}

func (b *bufferStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	ch := b.buf.Channels
	frames := b.buf.Frames()
	if b.pos >= frames {
		return 0, false
	}
	for n < len(samples) && b.pos < frames {
		i := b.pos * ch
		left := b.buf.Samples[i]
		right := left
		if ch > 1 {
			right = b.buf.Samples[i+1]
		}
		samples[n] = [2]float64{left, right}
		n++
		b.pos++
	}
	return n, true
}

func (b *bufferStreamer) Err() error { return nil }
