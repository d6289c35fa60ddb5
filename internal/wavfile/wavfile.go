// Package wavfile reads and writes the canonical 44-byte-header PCM16 WAV
// files kept in the sound directory.
package wavfile

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/Danondso/wallhit/internal/clip"
)

// HeaderSize is the length of the canonical RIFF/WAVE header.
const HeaderSize = 44

const bitDepth = 16

// Mapping selects how float samples become 16-bit integers.
type Mapping int

const (
	// MappingLegacy clamps to [0, 1] before scaling by 32767, so negative
	// samples are written as silence. Files written this way match the ones
	// produced by earlier releases byte for byte.
	MappingLegacy Mapping = iota
	// MappingFullRange maps [-1, 1] onto [-32768, 32767].
	MappingFullRange
)

func (m Mapping) quantize(s float64) int {
	switch m {
	case MappingFullRange:
		var v float64
		if s < 0 {
			v = math.Round(s * 32768)
		} else {
			v = math.Round(s * 32767)
		}
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		return int(v)
	default:
		if s < 0 || math.IsNaN(s) {
			s = 0
		} else if s > 1 {
			s = 1
		}
		return int(math.Round(s * 32767))
	}
}

// writeSeeker is an in-memory io.WriteSeeker for WAV encoding.
type writeSeeker struct {
	buf []byte
	pos int
}

func (ws *writeSeeker) Write(p []byte) (int, error) {
	end := ws.pos + len(p)
	if end > len(ws.buf) {
		ws.buf = append(ws.buf, make([]byte, end-len(ws.buf))...)
	}
	copy(ws.buf[ws.pos:], p)
	ws.pos = end
	return len(p), nil
}

func (ws *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var newPos int
	switch whence {
	case 0: // io.SeekStart
		newPos = int(offset)
	case 1: // io.SeekCurrent
		newPos = ws.pos + int(offset)
	case 2: // io.SeekEnd
		newPos = len(ws.buf) + int(offset)
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}
	if newPos < 0 || newPos > len(ws.buf) {
		return 0, fmt.Errorf("seek position %d out of bounds [0, %d]", newPos, len(ws.buf))
	}
	ws.pos = newPos
	return int64(ws.pos), nil
}

// Encode writes buf as PCM16 using MappingLegacy.
func Encode(buf *clip.Buffer) ([]byte, error) {
	return EncodeWith(buf, MappingLegacy)
}

// EncodeWith writes buf as PCM16 using the given sample mapping.
func EncodeWith(buf *clip.Buffer, m Mapping) ([]byte, error) {
	if buf == nil {
		return nil, fmt.Errorf("encode wav: nil buffer")
	}
	if buf.SampleRate <= 0 || buf.Channels < 1 {
		return nil, fmt.Errorf("encode wav: invalid format %d Hz, %d channels", buf.SampleRate, buf.Channels)
	}

	intBuf := &audio.IntBuffer{
		Data: make([]int, len(buf.Samples)),
		Format: &audio.Format{
			SampleRate:  buf.SampleRate,
			NumChannels: buf.Channels,
		},
		SourceBitDepth: bitDepth,
	}
	for i, s := range buf.Samples {
		intBuf.Data[i] = m.quantize(s)
	}

	ws := &writeSeeker{}
	enc := wav.NewEncoder(ws, buf.SampleRate, bitDepth, buf.Channels, 1)
	if err := enc.Write(intBuf); err != nil {
		return nil, fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close wav encoder: %w", err)
	}
	return ws.buf, nil
}

// Decode reads a canonical PCM16 WAV. A data size larger than the payload is
// truncated to the bytes present.
func Decode(data []byte) (*clip.Buffer, error) {
	sampleRate, channels, _, err := ValidateHeader(data)
	if err != nil {
		return nil, err
	}

	payload := data[HeaderSize:]
	size := int(binary.LittleEndian.Uint32(data[40:44]))
	if size > len(payload) || size < 0 {
		size = len(payload)
	}

	samples := make([]float64, size/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(payload[i*2:]))
		samples[i] = float64(v) / 32768
	}
	return clip.New(samples, sampleRate, channels)
}

// ValidateHeader checks the RIFF/WAVE magic and the PCM16 format of a
// canonical header. Fields are taken from fixed offsets: channels at 22,
// sample rate at 24, bits per sample at 34.
func ValidateHeader(data []byte) (sampleRate int, channels int, bits int, err error) {
	if len(data) < HeaderSize {
		return 0, 0, 0, fmt.Errorf("%w: %d bytes is shorter than a WAV header", clip.ErrFormat, len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return 0, 0, 0, fmt.Errorf("%w: not a RIFF/WAVE file", clip.ErrFormat)
	}

	channels = int(binary.LittleEndian.Uint16(data[22:24]))
	sampleRate = int(binary.LittleEndian.Uint32(data[24:28]))
	bits = int(binary.LittleEndian.Uint16(data[34:36]))

	if channels < 1 || sampleRate <= 0 {
		return 0, 0, 0, fmt.Errorf("%w: %d channels at %d Hz", clip.ErrFormat, channels, sampleRate)
	}
	if bits != bitDepth {
		return 0, 0, 0, fmt.Errorf("%w: %d-bit samples", clip.ErrFormat, bits)
	}
	return sampleRate, channels, bits, nil
}
