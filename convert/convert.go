// SPDX-License-Identifier: EPL-2.0

package convert

import (
	"errors"
	"fmt"

	gaudio "github.com/go-audio/audio"

	"github.com/sbooth/SFBAudioEngine-sub013/encoding"
	"github.com/sbooth/SFBAudioEngine-sub013/utils"
)

// ErrUnsupportedConversion reports a source/destination pair the
// converter cannot bridge.
var ErrUnsupportedConversion = errors.New("unsupported conversion")

// ToProcessing converts buf, which must match the source format src,
// into a buffer matching the processing format dst, bridging sample
// kind, bit depth, channel count and sample rate. It is the glue
// between a caller's native PCM and the format a backend negotiated.
//
// Channel conversions are limited to mixdown-to-mono (averaging) and
// mono fan-out; arbitrary channel remapping is not attempted. Sample
// rates are converted with Catmull-Rom interpolation.
//
// When src and dst are equal the buffer is returned unchanged.
func ToProcessing(buf gaudio.Buffer, src, dst encoding.Format) (gaudio.Buffer, error) {
	if err := src.Matches(buf); err != nil {
		return nil, err
	}
	if err := dst.Validate(); err != nil {
		return nil, err
	}
	if src.Equal(dst) {
		return buf, nil
	}
	if src.Channels != dst.Channels && src.Channels != 1 && dst.Channels != 1 {
		return nil, fmt.Errorf("%w: %d to %d channels", ErrUnsupportedConversion, src.Channels, dst.Channels)
	}

	samples, err := normalize(buf, src)
	if err != nil {
		return nil, err
	}

	switch {
	case src.Channels == dst.Channels:
	case dst.Channels == 1:
		samples = mixToMono(samples, src.Channels)
	default:
		samples = fanOut(samples, dst.Channels)
	}

	if src.SampleRate != dst.SampleRate {
		samples = resample(samples, dst.Channels, src.SampleRate, dst.SampleRate)
	}

	return quantize(samples, dst)
}

// normalize extracts interleaved samples scaled to [-1, 1].
func normalize(buf gaudio.Buffer, src encoding.Format) ([]float32, error) {
	n := buf.NumFrames() * src.Channels
	out := make([]float32, n)
	switch b := buf.(type) {
	case *gaudio.Float32Buffer:
		copy(out, b.Data[:n])
	case *gaudio.IntBuffer:
		for i, v := range b.Data[:n] {
			if src.Kind == encoding.UnsignedInt {
				v -= 1 << (src.BitDepth - 1)
			}
			out[i] = utils.IntToFloat32(v, src.BitDepth)
		}
	default:
		return nil, fmt.Errorf("%w: buffer type %T", ErrUnsupportedConversion, buf)
	}
	return out, nil
}

func mixToMono(in []float32, channels int) []float32 {
	frames := len(in) / channels
	out := make([]float32, frames)
	switch channels {
	case 2:
		for f := 0; f < frames; f++ {
			out[f] = (in[2*f] + in[2*f+1]) * 0.5
		}
	default:
		inv := 1 / float32(channels)
		for f := 0; f < frames; f++ {
			var sum float32
			for c := 0; c < channels; c++ {
				sum += in[f*channels+c]
			}
			out[f] = sum * inv
		}
	}
	return out
}

func fanOut(in []float32, channels int) []float32 {
	out := make([]float32, 0, len(in)*channels)
	for _, v := range in {
		for c := 0; c < channels; c++ {
			out = append(out, v)
		}
	}
	return out
}

// quantize renders normalized samples in the destination format's
// sample kind and depth.
func quantize(samples []float32, dst encoding.Format) (gaudio.Buffer, error) {
	frames := len(samples) / dst.Channels
	pcm := &gaudio.Format{SampleRate: int(dst.SampleRate), NumChannels: dst.Channels}

	switch dst.Kind {
	case encoding.Float:
		return &gaudio.Float32Buffer{Format: pcm, Data: samples}, nil
	case encoding.SignedInt:
		data := make([]int, frames*dst.Channels)
		for i, v := range samples {
			data[i] = utils.Float32ToInt(v, dst.BitDepth)
		}
		return &gaudio.IntBuffer{Format: pcm, SourceBitDepth: dst.BitDepth, Data: data}, nil
	default:
		return nil, fmt.Errorf("%w: sample kind %v", ErrUnsupportedConversion, dst.Kind)
	}
}
