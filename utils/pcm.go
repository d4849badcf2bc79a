// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"encoding/binary"
	"math"
)

// Sample packing helpers shared by the container backends. All integer
// samples are signed unless noted; scaling between depths is the
// caller's concern.

// ClampInt clamps v to the signed range of the given bit depth.
func ClampInt(v, bitDepth int) int {
	hi := (1 << (bitDepth - 1)) - 1
	lo := -(1 << (bitDepth - 1))
	if v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}

// IntToFloat32 converts a signed integer sample of the given depth to a
// [-1, 1] float sample.
func IntToFloat32(v, bitDepth int) float32 {
	return float32(v) / float32(int64(1)<<(bitDepth-1))
}

// PackIntLE appends samples as little-endian signed integers of the
// given depth (8, 16, 24 or 32 bits). 8-bit samples follow the RIFF
// convention and are stored unsigned with a 128 offset.
func PackIntLE(dst []byte, samples []int, bitDepth int) []byte {
	switch bitDepth {
	case 8:
		for _, v := range samples {
			dst = append(dst, byte(ClampInt(v, 8)+128))
		}
	case 16:
		for _, v := range samples {
			dst = binary.LittleEndian.AppendUint16(dst, uint16(int16(ClampInt(v, 16))))
		}
	case 24:
		for _, v := range samples {
			c := ClampInt(v, 24)
			dst = append(dst, byte(c), byte(c>>8), byte(c>>16))
		}
	case 32:
		for _, v := range samples {
			dst = binary.LittleEndian.AppendUint32(dst, uint32(int32(v)))
		}
	}
	return dst
}

// PackIntBE appends samples as big-endian signed integers of the given
// depth (8, 16, 24 or 32 bits). 8-bit samples stay signed, per AIFF.
func PackIntBE(dst []byte, samples []int, bitDepth int) []byte {
	switch bitDepth {
	case 8:
		for _, v := range samples {
			dst = append(dst, byte(int8(ClampInt(v, 8))))
		}
	case 16:
		for _, v := range samples {
			dst = binary.BigEndian.AppendUint16(dst, uint16(int16(ClampInt(v, 16))))
		}
	case 24:
		for _, v := range samples {
			c := ClampInt(v, 24)
			dst = append(dst, byte(c>>16), byte(c>>8), byte(c))
		}
	case 32:
		for _, v := range samples {
			dst = binary.BigEndian.AppendUint32(dst, uint32(int32(v)))
		}
	}
	return dst
}

// PackFloat32LE appends samples as little-endian IEEE 754 floats.
func PackFloat32LE(dst []byte, samples []float32) []byte {
	for _, v := range samples {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// Float80 encodes f as an 80-bit IEEE 754 extended-precision float,
// the representation AIFF uses for the sample rate in the COMM chunk.
func Float80(f float64) [10]byte {
	var out [10]byte
	if f == 0 {
		return out
	}

	sign := uint16(0)
	if f < 0 {
		sign = 0x8000
		f = -f
	}

	frac, exp := math.Frexp(f)
	// Frexp yields frac in [0.5, 1); the extended format stores an
	// explicit integer bit, so shift to [1, 2).
	mantissa := uint64(frac * (1 << 63) * 2)
	biased := uint16(exp-1+16383) | sign

	binary.BigEndian.PutUint16(out[0:2], biased)
	binary.BigEndian.PutUint64(out[2:10], mantissa)
	return out
}
