// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"math"

	gaudio "github.com/go-audio/audio"
)

// Buffer generators for encoder tests. Generators fill interleaved
// buffers with a waveform function taking frame index and channel.

// NewIntBuffer generates an interleaved IntBuffer with the waveform
// scaled to the given bit depth.
func NewIntBuffer(rate, channels, frames, bitDepth int, waveform func(frame, channel int) float64) *gaudio.IntBuffer {
	fullScale := float64(int64(1)<<(bitDepth-1)) - 1
	data := make([]int, frames*channels)
	for frame := 0; frame < frames; frame++ {
		for ch := 0; ch < channels; ch++ {
			data[frame*channels+ch] = int(waveform(frame, ch) * fullScale)
		}
	}
	return &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
}

// SineIntBuffer generates a full-scale sine wave at frequency Hz.
func SineIntBuffer(rate, channels, frames, bitDepth int, frequency float64) *gaudio.IntBuffer {
	return NewIntBuffer(rate, channels, frames, bitDepth, func(frame, _ int) float64 {
		return math.Sin(2 * math.Pi * frequency * float64(frame) / float64(rate))
	})
}

// SilentIntBuffer generates all-zero samples.
func SilentIntBuffer(rate, channels, frames, bitDepth int) *gaudio.IntBuffer {
	return NewIntBuffer(rate, channels, frames, bitDepth, func(_, _ int) float64 {
		return 0
	})
}

// ConstantIntBuffer generates the same raw sample value everywhere.
func ConstantIntBuffer(rate, channels, frames, bitDepth, value int) *gaudio.IntBuffer {
	buf := SilentIntBuffer(rate, channels, frames, bitDepth)
	for i := range buf.Data {
		buf.Data[i] = value
	}
	return buf
}

// SineFloat32Buffer generates a sine wave in [-1, 1].
func SineFloat32Buffer(rate, channels, frames int, frequency float64) *gaudio.Float32Buffer {
	data := make([]float32, frames*channels)
	for frame := 0; frame < frames; frame++ {
		v := float32(math.Sin(2 * math.Pi * frequency * float64(frame) / float64(rate)))
		for ch := 0; ch < channels; ch++ {
			data[frame*channels+ch] = v
		}
	}
	return &gaudio.Float32Buffer{
		Format: &gaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:   data,
	}
}

// SilentFloat32Buffer generates all-zero float samples.
func SilentFloat32Buffer(rate, channels, frames int) *gaudio.Float32Buffer {
	return &gaudio.Float32Buffer{
		Format: &gaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:   make([]float32, frames*channels),
	}
}

// ErrSinkFailed is the error injected by FailingSink.
var ErrSinkFailed = errors.New("audiotest: sink failed")

// FailingSink satisfies the encoding.Sink interface (without importing
// it, so it stays usable from any test package) and fails every write
// once failAfter bytes have been accepted.
type FailingSink struct {
	failAfter int
	written   []byte
}

func NewFailingSink(failAfter int) *FailingSink {
	return &FailingSink{failAfter: failAfter}
}

func (s *FailingSink) Write(p []byte) (int, error) {
	if len(s.written)+len(p) > s.failAfter {
		return 0, ErrSinkFailed
	}
	s.written = append(s.written, p...)
	return len(p), nil
}

func (s *FailingSink) Close() error           { return nil }
func (s *FailingSink) SupportsSeeking() bool  { return false }
func (s *FailingSink) Seek(int64) error       { return ErrSinkFailed }
func (s *FailingSink) Offset() (int64, error) { return int64(len(s.written)), nil }
func (s *FailingSink) Length() (int64, error) { return int64(len(s.written)), nil }
func (s *FailingSink) Bytes() []byte          { return s.written }

// ShortWriteSink accepts every write but reports one byte fewer than
// requested, without an error. The framework must treat this as fatal.
type ShortWriteSink struct {
	written []byte
}

func (s *ShortWriteSink) Write(p []byte) (int, error) {
	s.written = append(s.written, p...)
	if len(p) == 0 {
		return 0, nil
	}
	return len(p) - 1, nil
}

func (s *ShortWriteSink) Close() error           { return nil }
func (s *ShortWriteSink) SupportsSeeking() bool  { return false }
func (s *ShortWriteSink) Seek(int64) error       { return errors.New("audiotest: not seekable") }
func (s *ShortWriteSink) Offset() (int64, error) { return int64(len(s.written)), nil }
func (s *ShortWriteSink) Length() (int64, error) { return int64(len(s.written)), nil }
