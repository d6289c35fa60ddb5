package sink

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/Danondso/wallhit/internal/clip"
)

// voice is one clip being played by PortAudioSink.
type voice struct {
	samples []float64
	gain    float32
	pos     int
}

// PortAudioSink plays clips on the default PortAudio output device. A write
// loop mixes all active voices into a mono blocking stream.
type PortAudioSink struct {
	mu       sync.Mutex
	voices   []*voice
	stream   *portaudio.Stream
	rate     float64
	logger   *log.Logger
	done     chan struct{} // closed when writeLoop should exit
	loopDone chan struct{} // closed when writeLoop has exited
	closed   bool
}

// NewPortAudioSink initializes PortAudio and starts an output stream. A
// sampleRate of 0 uses the device's default rate.
func NewPortAudioSink(sampleRate int, buffer time.Duration, logger *log.Logger) (*PortAudioSink, error) {
	if err := initPortAudio(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}

	dev, err := portaudio.DefaultOutputDevice()
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("default output device: %w", err)
	}
	rate := float64(sampleRate)
	if rate <= 0 {
		rate = dev.DefaultSampleRate
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}

	framesPerBuffer := int(rate * buffer.Seconds())
	out := make([]float32, framesPerBuffer)

	stream, err := portaudio.OpenDefaultStream(0, 1, rate, framesPerBuffer, &out)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("start stream: %w", err)
	}

	s := &PortAudioSink{
		stream:   stream,
		rate:     rate,
		logger:   logger,
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}
	if logger != nil {
		logger.Printf("sink: portaudio output %q @ %.0f Hz, %d frames/buffer", dev.Name, rate, framesPerBuffer)
	}
	go s.writeLoop(out)
	return s, nil
}

// Play resamples buf to the output rate and adds it to the mix.
func (s *PortAudioSink) Play(buf *clip.Buffer, volume, pitch float64) {
	if buf == nil || len(buf.Samples) == 0 || volume <= 0 {
		return
	}
	samples, err := Repitch(buf, pitch, s.rate)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("sink: repitch: %v", err)
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.voices = append(s.voices, &voice{samples: samples, gain: float32(volume)})
}

func (s *PortAudioSink) writeLoop(out []float32) {
	defer close(s.loopDone)
	for {
		select {
		case <-s.done:
			return
		default:
		}

		s.mu.Lock()
		s.voices = mix(out, s.voices)
		s.mu.Unlock()

		if err := s.stream.Write(); err != nil {
			if s.logger != nil {
				s.logger.Printf("sink: portaudio write: %v", err)
			}
			return
		}
	}
}

// mix renders one output buffer from voices and returns the voices that
// still have samples left.
func mix(out []float32, voices []*voice) []*voice {
	for i := range out {
		out[i] = 0
	}
	live := voices[:0]
	for _, v := range voices {
		n := min(len(out), len(v.samples)-v.pos)
		for i := 0; i < n; i++ {
			out[i] += float32(v.samples[v.pos+i]) * v.gain
		}
		v.pos += n
		if v.pos < len(v.samples) {
			live = append(live, v)
		}
	}
	for i, x := range out {
		if x > 1 {
			out[i] = 1
		} else if x < -1 {
			out[i] = -1
		}
	}
	return live
}

// Close stops the stream and terminates PortAudio.
func (s *PortAudioSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.voices = nil
	s.mu.Unlock()

	close(s.done)
	<-s.loopDone

	var firstErr error
	if err := s.stream.Stop(); err != nil {
		firstErr = fmt.Errorf("stop stream: %w", err)
	}
	if err := s.stream.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close stream: %w", err)
	}
	if err := portaudio.Terminate(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("portaudio terminate: %w", err)
	}
	return firstErr
}
