// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	gaiff "github.com/go-audio/aiff"

	"github.com/sbooth/SFBAudioEngine-sub013/encoding"
	"github.com/sbooth/SFBAudioEngine-sub013/internal/audiotest"
)

func TestBackend_Negotiate(t *testing.T) {
	t.Parallel()

	b := Backend{}

	got, err := b.Negotiate(encoding.IntFormat(44100, 2, 20))
	if err != nil {
		t.Fatalf("Negotiate(20-bit) error = %v, want nil", err)
	}
	if got.BitDepth != 24 || got.Kind != encoding.SignedInt {
		t.Errorf("Negotiate(20-bit) = %d-bit %s, want 24-bit signed int", got.BitDepth, got.Kind)
	}

	if _, err := b.Negotiate(encoding.Float32Format(48000, 2)); !errors.Is(err, encoding.ErrFormatNotSupported) {
		t.Errorf("Negotiate(float) error = %v, want ErrFormatNotSupported", err)
	}
	if _, err := b.Negotiate(encoding.IntFormat(44100, 2, 48)); !errors.Is(err, encoding.ErrFormatNotSupported) {
		t.Errorf("Negotiate(48-bit) error = %v, want ErrFormatNotSupported", err)
	}
	if _, err := b.Negotiate(encoding.IntFormat(44100, 4, 16)); !errors.Is(err, encoding.ErrFormatNotSupported) {
		t.Errorf("Negotiate(4ch, no layout) error = %v, want ErrFormatNotSupported", err)
	}
}

func TestEncode_SeekableRoundTrip(t *testing.T) {
	t.Parallel()

	src := encoding.Int16Format(8000, 2)
	sink := encoding.NewMemorySink()

	session, err := Backend{}.Open(sink, src, nil, encoding.OpenInfo{})
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	buf := audiotest.SineIntBuffer(8000, 2, 300, 16, 440)
	if err := session.Encode(buf); err != nil {
		t.Fatalf("Encode() error = %v, want nil", err)
	}
	if err := session.Finish(); err != nil {
		t.Fatalf("Finish() error = %v, want nil", err)
	}

	dec := gaiff.NewDecoder(bytes.NewReader(sink.Bytes()))
	if !dec.IsValidFile() {
		t.Fatal("decoder rejects produced file")
	}
	decoded, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer() error = %v, want nil", err)
	}
	if dec.SampleRate != 8000 || dec.NumChans != 2 || dec.BitDepth != 16 {
		t.Errorf("decoded format = %d Hz %d ch %d-bit, want 8000 Hz 2 ch 16-bit",
			dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	if got, want := len(decoded.Data), len(buf.Data); got != want {
		t.Fatalf("decoded %d samples, want %d", got, want)
	}
	for i := range decoded.Data {
		if decoded.Data[i] != buf.Data[i] {
			t.Fatalf("sample %d = %d, want %d", i, decoded.Data[i], buf.Data[i])
		}
	}
}

func TestOpen_NonSeekableRequiresFrameCount(t *testing.T) {
	t.Parallel()

	src := encoding.Int16Format(44100, 2)
	var raw bytes.Buffer
	sink := encoding.NewWriterSink(&raw)

	// AIFF stores the frame count in COMM and cannot stream an unknown
	// length; the open must be rejected, not deferred to Finish.
	_, err := Backend{}.Open(sink, src, nil, encoding.OpenInfo{})
	if !errors.Is(err, encoding.ErrMissingConfiguration) {
		t.Fatalf("Open(non-seekable, no estimate) error = %v, want ErrMissingConfiguration", err)
	}
	if raw.Len() != 0 {
		t.Errorf("rejected open wrote %d bytes, want 0", raw.Len())
	}
}

func TestEncode_NonSeekableWithExactEstimate(t *testing.T) {
	t.Parallel()

	src := encoding.Int16Format(8000, 1)
	var raw bytes.Buffer
	sink := encoding.NewWriterSink(&raw)

	session, err := Backend{}.Open(sink, src, nil, encoding.OpenInfo{EstimatedFrames: 200})
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	if err := session.Encode(audiotest.SineIntBuffer(8000, 1, 200, 16, 100)); err != nil {
		t.Fatalf("Encode() error = %v, want nil", err)
	}
	if err := session.Finish(); err != nil {
		t.Fatalf("Finish() error = %v, want nil", err)
	}

	dec := gaiff.NewDecoder(bytes.NewReader(raw.Bytes()))
	decoded, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer() error = %v, want nil", err)
	}
	if got := len(decoded.Data); got != 200 {
		t.Errorf("decoded %d samples, want 200", got)
	}
}

func TestEncode_NonSeekableEstimateMismatch(t *testing.T) {
	t.Parallel()

	src := encoding.Int16Format(8000, 1)
	sink := encoding.NewWriterSink(&bytes.Buffer{})

	session, err := Backend{}.Open(sink, src, nil, encoding.OpenInfo{EstimatedFrames: 200})
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	if err := session.Encode(audiotest.SilentIntBuffer(8000, 1, 150, 16)); err != nil {
		t.Fatalf("Encode() error = %v, want nil", err)
	}
	if err := session.Finish(); !errors.Is(err, encoding.ErrMissingConfiguration) {
		t.Fatalf("Finish() error = %v, want ErrMissingConfiguration", err)
	}
}

func TestBuildHeader_CommFields(t *testing.T) {
	t.Parallel()

	src := encoding.Int16Format(44100, 2)
	sink := encoding.NewMemorySink()

	session, err := Backend{}.Open(sink, src, nil, encoding.OpenInfo{})
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	if err := session.Encode(audiotest.SilentIntBuffer(44100, 2, 7, 16)); err != nil {
		t.Fatalf("Encode() error = %v, want nil", err)
	}
	if err := session.Finish(); err != nil {
		t.Fatalf("Finish() error = %v, want nil", err)
	}

	data := sink.Bytes()
	if string(data[0:4]) != "FORM" || string(data[8:12]) != "AIFF" {
		t.Fatalf("container markers = %q %q, want FORM AIFF", data[0:4], data[8:12])
	}
	// COMM chunk starts at offset 12.
	if string(data[12:16]) != "COMM" {
		t.Fatalf("chunk at 12 = %q, want COMM", data[12:16])
	}
	channels := binary.BigEndian.Uint16(data[20:22])
	frames := binary.BigEndian.Uint32(data[22:26])
	depth := binary.BigEndian.Uint16(data[26:28])
	if channels != 2 || frames != 7 || depth != 16 {
		t.Errorf("COMM = %d ch, %d frames, %d-bit, want 2 ch, 7 frames, 16-bit", channels, frames, depth)
	}
	// 44100 Hz as an 80-bit extended float.
	wantRate := []byte{0x40, 0x0E, 0xAC, 0x44, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(data[28:38], wantRate) {
		t.Errorf("COMM rate = % X, want % X", data[28:38], wantRate)
	}
}

func TestOpen_SinkFailure(t *testing.T) {
	t.Parallel()

	src := encoding.Int16Format(44100, 2)
	_, err := Backend{}.Open(audiotest.NewFailingSink(0), src, nil, encoding.OpenInfo{EstimatedFrames: 10})
	if !errors.Is(err, encoding.ErrSink) {
		t.Fatalf("Open(failing sink) error = %v, want ErrSink", err)
	}
}
