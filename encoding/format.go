// SPDX-License-Identifier: EPL-2.0

package encoding

import (
	"fmt"

	gaudio "github.com/go-audio/audio"
)

// SampleKind describes the representation of a single PCM sample.
type SampleKind int

const (
	SignedInt SampleKind = iota
	UnsignedInt
	Float
)

func (k SampleKind) String() string {
	switch k {
	case SignedInt:
		return "signed int"
	case UnsignedInt:
		return "unsigned int"
	case Float:
		return "float"
	}
	return fmt.Sprintf("SampleKind(%d)", int(k))
}

// Layout tags the spatial arrangement of channels. LayoutNone means the
// arrangement is unspecified; backends reject unspecified layouts for
// three or more channels.
type Layout int

const (
	LayoutNone Layout = iota
	LayoutMono
	LayoutStereo
	LayoutQuad
	Layout5Point1
	Layout7Point1
)

// Format describes interleaved PCM audio. It is a value type and is
// never modified once constructed.
//
// Three distinct formats flow through an encoder session: the source
// format (what the caller has), the processing format (what the backend's
// codec consumes, derived by negotiation), and the output format (the
// encoded format descriptor, informational only).
type Format struct {
	// SampleRate in Hz.
	SampleRate float64
	// Channels count, 1..255.
	Channels int
	// Kind of sample representation.
	Kind SampleKind
	// BitDepth of a single sample in bits.
	BitDepth int
	// Interleaved indicates samples are channel-interleaved. All backends
	// in this module consume interleaved audio.
	Interleaved bool
	// Layout tags the channel arrangement, LayoutNone if unspecified.
	Layout Layout
}

// Int16Format returns a signed 16-bit interleaved format at rate Hz.
func Int16Format(rate float64, channels int) Format {
	return Format{
		SampleRate:  rate,
		Channels:    channels,
		Kind:        SignedInt,
		BitDepth:    16,
		Interleaved: true,
		Layout:      DefaultLayout(channels),
	}
}

// IntFormat returns a signed interleaved integer format of the given depth.
func IntFormat(rate float64, channels, bitDepth int) Format {
	return Format{
		SampleRate:  rate,
		Channels:    channels,
		Kind:        SignedInt,
		BitDepth:    bitDepth,
		Interleaved: true,
		Layout:      DefaultLayout(channels),
	}
}

// Float32Format returns a 32-bit float interleaved format at rate Hz.
func Float32Format(rate float64, channels int) Format {
	return Format{
		SampleRate:  rate,
		Channels:    channels,
		Kind:        Float,
		BitDepth:    32,
		Interleaved: true,
		Layout:      DefaultLayout(channels),
	}
}

// DefaultLayout returns the canonical layout for a channel count, or
// LayoutNone when there is no canonical choice.
func DefaultLayout(channels int) Layout {
	switch channels {
	case 1:
		return LayoutMono
	case 2:
		return LayoutStereo
	}
	return LayoutNone
}

// Validate reports whether f describes a usable PCM format.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %g", ErrFormatNotSupported, f.SampleRate)
	}
	if f.Channels < 1 || f.Channels > 255 {
		return fmt.Errorf("%w: channel count %d", ErrFormatNotSupported, f.Channels)
	}
	if f.BitDepth < 1 || f.BitDepth > 64 {
		return fmt.Errorf("%w: bit depth %d", ErrFormatNotSupported, f.BitDepth)
	}
	if f.Kind == Float && f.BitDepth != 32 && f.BitDepth != 64 {
		return fmt.Errorf("%w: %d-bit float", ErrFormatNotSupported, f.BitDepth)
	}
	return nil
}

// Equal reports whether two formats are identical.
func (f Format) Equal(o Format) bool {
	return f == o
}

// BytesPerSample returns the storage size of one sample, rounded up to a
// whole byte.
func (f Format) BytesPerSample() int {
	return (f.BitDepth + 7) / 8
}

// FrameSize returns the storage size in bytes of one interleaved frame.
func (f Format) FrameSize() int {
	return f.BytesPerSample() * f.Channels
}

func (f Format) String() string {
	return fmt.Sprintf("%g Hz, %d ch, %d-bit %s", f.SampleRate, f.Channels, f.BitDepth, f.Kind)
}

// Matches verifies that buf carries PCM matching f. A nil or empty buffer
// matches trivially. Buffers are the go-audio buffer types: IntBuffer for
// integer formats, Float32Buffer for float formats.
func (f Format) Matches(buf gaudio.Buffer) error {
	if buf == nil || buf.NumFrames() == 0 {
		return nil
	}
	pf := buf.PCMFormat()
	if pf == nil {
		return fmt.Errorf("%w: buffer has no format", ErrFormatMismatch)
	}
	if float64(pf.SampleRate) != f.SampleRate {
		return fmt.Errorf("%w: buffer rate %d Hz, want %g Hz", ErrFormatMismatch, pf.SampleRate, f.SampleRate)
	}
	if pf.NumChannels != f.Channels {
		return fmt.Errorf("%w: buffer has %d channels, want %d", ErrFormatMismatch, pf.NumChannels, f.Channels)
	}

	switch b := buf.(type) {
	case *gaudio.IntBuffer:
		if f.Kind == Float {
			return fmt.Errorf("%w: integer buffer for float format", ErrFormatMismatch)
		}
		// A zero SourceBitDepth is common in go-audio pipelines and is
		// taken to mean the processing depth.
		if b.SourceBitDepth != 0 && b.SourceBitDepth != f.BitDepth {
			return fmt.Errorf("%w: buffer depth %d, want %d", ErrFormatMismatch, b.SourceBitDepth, f.BitDepth)
		}
	case *gaudio.Float32Buffer:
		if f.Kind != Float {
			return fmt.Errorf("%w: float buffer for %s format", ErrFormatMismatch, f.Kind)
		}
	default:
		return fmt.Errorf("%w: unsupported buffer type %T", ErrFormatMismatch, buf)
	}
	return nil
}

// PCMFormat returns the go-audio rendition of f, for constructing buffers.
func (f Format) PCMFormat() *gaudio.Format {
	return &gaudio.Format{
		NumChannels: f.Channels,
		SampleRate:  int(f.SampleRate),
	}
}
