// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"bytes"
	"testing"
)

func TestClampInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		v, bitDepth, want int
	}{
		{0, 16, 0},
		{32767, 16, 32767},
		{32768, 16, 32767},
		{-32768, 16, -32768},
		{-32769, 16, -32768},
		{200, 8, 127},
		{-200, 8, -128},
		{1 << 25, 24, (1 << 23) - 1},
	}
	for _, tt := range tests {
		if got := ClampInt(tt.v, tt.bitDepth); got != tt.want {
			t.Errorf("ClampInt(%d, %d) = %d, want %d", tt.v, tt.bitDepth, got, tt.want)
		}
	}
}

func TestFloat32ToInt_Depths(t *testing.T) {
	t.Parallel()

	if got := Float32ToInt(1, 24); got != (1<<23)-1 {
		t.Errorf("Float32ToInt(1, 24) = %d, want %d", got, (1<<23)-1)
	}
	if got := Float32ToInt(1, 16); got != 32767 {
		t.Errorf("Float32ToInt(1, 16) = %d, want 32767", got)
	}
	if got := Float32ToInt(0, 24); got != 0 {
		t.Errorf("Float32ToInt(0, 24) = %d, want 0", got)
	}
	if got := Float32ToInt(-2, 8); got != -127 {
		t.Errorf("Float32ToInt(-2, 8) = %d, want -127 (clamped)", got)
	}
}

func TestIntToFloat32_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, v := range []int{0, 1000, -1000, 32767, -32768} {
		f := IntToFloat32(v, 16)
		if f > 1 || f < -1 {
			t.Errorf("IntToFloat32(%d, 16) = %v, out of [-1, 1]", v, f)
		}
	}
	if got := IntToFloat32(-32768, 16); got != -1 {
		t.Errorf("IntToFloat32(-32768, 16) = %v, want -1", got)
	}
}

func TestPackIntLE(t *testing.T) {
	t.Parallel()

	got := PackIntLE(nil, []int{0, -128, 127}, 8)
	want := []byte{128, 0, 255}
	if !bytes.Equal(got, want) {
		t.Errorf("PackIntLE 8-bit = %v, want %v (unsigned with offset)", got, want)
	}

	got = PackIntLE(nil, []int{0x1234}, 16)
	want = []byte{0x34, 0x12}
	if !bytes.Equal(got, want) {
		t.Errorf("PackIntLE 16-bit = %v, want %v", got, want)
	}

	got = PackIntLE(nil, []int{0x123456}, 24)
	want = []byte{0x56, 0x34, 0x12}
	if !bytes.Equal(got, want) {
		t.Errorf("PackIntLE 24-bit = %v, want %v", got, want)
	}

	got = PackIntLE(nil, []int{-1}, 24)
	want = []byte{0xFF, 0xFF, 0xFF}
	if !bytes.Equal(got, want) {
		t.Errorf("PackIntLE 24-bit negative = %v, want %v", got, want)
	}
}

func TestPackIntBE(t *testing.T) {
	t.Parallel()

	got := PackIntBE(nil, []int{0, -1, 127}, 8)
	want := []byte{0, 0xFF, 127}
	if !bytes.Equal(got, want) {
		t.Errorf("PackIntBE 8-bit = %v, want %v (signed)", got, want)
	}

	got = PackIntBE(nil, []int{0x1234}, 16)
	want = []byte{0x12, 0x34}
	if !bytes.Equal(got, want) {
		t.Errorf("PackIntBE 16-bit = %v, want %v", got, want)
	}

	got = PackIntBE(nil, []int{0x123456}, 24)
	want = []byte{0x12, 0x34, 0x56}
	if !bytes.Equal(got, want) {
		t.Errorf("PackIntBE 24-bit = %v, want %v", got, want)
	}
}

func TestFloat80(t *testing.T) {
	t.Parallel()

	// 44100 Hz is the canonical AIFF rate; its 80-bit encoding is
	// well known.
	got := Float80(44100)
	want := [10]byte{0x40, 0x0E, 0xAC, 0x44, 0, 0, 0, 0, 0, 0}
	if got != want {
		t.Errorf("Float80(44100) = % X, want % X", got, want)
	}

	// 8000 = 1.953125 * 2^12, biased exponent 0x400B.
	got = Float80(8000)
	want = [10]byte{0x40, 0x0B, 0xFA, 0x00, 0, 0, 0, 0, 0, 0}
	if got != want {
		t.Errorf("Float80(8000) = % X, want % X", got, want)
	}

	got = Float80(0)
	want = [10]byte{}
	if got != want {
		t.Errorf("Float80(0) = % X, want all zero", got)
	}
}

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	// At the endpoints the spline passes through y1 and y2.
	if got := CubicInterpolate(0, 1, 2, 3, 0); got != 1 {
		t.Errorf("CubicInterpolate(..., 0) = %v, want 1", got)
	}
	if got := CubicInterpolate(0, 1, 2, 3, 1); got != 2 {
		t.Errorf("CubicInterpolate(..., 1) = %v, want 2", got)
	}
	// A line stays a line.
	if got := CubicInterpolate(0, 1, 2, 3, 0.5); got != 1.5 {
		t.Errorf("CubicInterpolate(linear, 0.5) = %v, want 1.5", got)
	}
}
