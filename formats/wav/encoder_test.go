// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	gwav "github.com/go-audio/wav"

	"github.com/sbooth/SFBAudioEngine-sub013/encoding"
	"github.com/sbooth/SFBAudioEngine-sub013/internal/audiotest"
)

func TestBackend_Negotiate(t *testing.T) {
	t.Parallel()

	b := Backend{}

	tests := []struct {
		name      string
		src       encoding.Format
		wantKind  encoding.SampleKind
		wantDepth int
	}{
		{"16-bit stays", encoding.Int16Format(44100, 2), encoding.SignedInt, 16},
		{"20-bit rounds up", encoding.IntFormat(44100, 2, 20), encoding.SignedInt, 24},
		{"float32 stays", encoding.Float32Format(48000, 2), encoding.Float, 32},
		{
			"unsigned becomes signed",
			encoding.Format{SampleRate: 8000, Channels: 1, Kind: encoding.UnsignedInt, BitDepth: 8, Interleaved: true},
			encoding.SignedInt, 8,
		},
	}
	for _, tt := range tests {
		got, err := b.Negotiate(tt.src)
		if err != nil {
			t.Errorf("%s: Negotiate() error = %v, want nil", tt.name, err)
			continue
		}
		if got.Kind != tt.wantKind || got.BitDepth != tt.wantDepth {
			t.Errorf("%s: Negotiate() = %d-bit %s, want %d-bit %s",
				tt.name, got.BitDepth, got.Kind, tt.wantDepth, tt.wantKind)
		}
	}

	// Negotiation is deterministic.
	a1, _ := b.Negotiate(encoding.IntFormat(44100, 2, 20))
	a2, _ := b.Negotiate(encoding.IntFormat(44100, 2, 20))
	if !a1.Equal(a2) {
		t.Error("Negotiate() is not deterministic for identical input")
	}

	multichannel := encoding.IntFormat(48000, 6, 16)
	if _, err := b.Negotiate(multichannel); !errors.Is(err, encoding.ErrFormatNotSupported) {
		t.Errorf("Negotiate(6ch, no layout) error = %v, want ErrFormatNotSupported", err)
	}
	withLayout := multichannel
	withLayout.Layout = encoding.Layout5Point1
	if _, err := b.Negotiate(withLayout); err != nil {
		t.Errorf("Negotiate(6ch, 5.1 layout) error = %v, want nil", err)
	}

	if _, err := b.Negotiate(encoding.IntFormat(44100, 2, 48)); !errors.Is(err, encoding.ErrFormatNotSupported) {
		t.Errorf("Negotiate(48-bit int) error = %v, want ErrFormatNotSupported", err)
	}
}

func TestEncode_SeekableRoundTrip(t *testing.T) {
	t.Parallel()

	src := encoding.Int16Format(8000, 2)
	sink := encoding.NewMemorySink()

	// Seekable sink, no estimate: placeholder header patched at finish.
	session, err := Backend{}.Open(sink, src, nil, encoding.OpenInfo{})
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	buf := audiotest.SineIntBuffer(8000, 2, 500, 16, 440)
	if err := session.Encode(buf); err != nil {
		t.Fatalf("Encode() error = %v, want nil", err)
	}
	if err := session.Finish(); err != nil {
		t.Fatalf("Finish() error = %v, want nil", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("Close() error = %v, want nil", err)
	}
	if got := session.Position(); got != 500 {
		t.Errorf("Position() = %d, want 500", got)
	}

	dec := gwav.NewDecoder(bytes.NewReader(sink.Bytes()))
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

func TestEncode_NonSeekableUnknownLength(t *testing.T) {
	t.Parallel()

	src := encoding.Int16Format(44100, 1)
	var raw bytes.Buffer
	sink := encoding.NewWriterSink(&raw)

	session, err := Backend{}.Open(sink, src, nil, encoding.OpenInfo{})
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	if err := session.Encode(audiotest.SilentIntBuffer(44100, 1, 10, 16)); err != nil {
		t.Fatalf("Encode() error = %v, want nil", err)
	}
	// Unknown length on a pipe is best-effort, never an error.
	if err := session.Finish(); err != nil {
		t.Fatalf("Finish() error = %v, want nil", err)
	}

	data := raw.Bytes()
	riffSize := binary.LittleEndian.Uint32(data[4:8])
	if riffSize != 0xFFFFFFFF {
		t.Errorf("RIFF size = %#x, want streaming value 0xFFFFFFFF", riffSize)
	}
	dataSize := binary.LittleEndian.Uint32(data[40:44])
	if dataSize != 0xFFFFFFFF {
		t.Errorf("data size = %#x, want streaming value 0xFFFFFFFF", dataSize)
	}
}

func TestEncode_NonSeekableWithExactEstimate(t *testing.T) {
	t.Parallel()

	src := encoding.Int16Format(8000, 1)
	var raw bytes.Buffer
	sink := encoding.NewWriterSink(&raw)

	session, err := Backend{}.Open(sink, src, nil, encoding.OpenInfo{EstimatedFrames: 100})
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	if err := session.Encode(audiotest.SineIntBuffer(8000, 1, 100, 16, 100)); err != nil {
		t.Fatalf("Encode() error = %v, want nil", err)
	}
	if err := session.Finish(); err != nil {
		t.Fatalf("Finish() error = %v, want nil", err)
	}

	dec := gwav.NewDecoder(bytes.NewReader(raw.Bytes()))
	decoded, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer() error = %v, want nil", err)
	}
	if got := len(decoded.Data); got != 100 {
		t.Errorf("decoded %d samples, want 100", got)
	}
}

func TestEncode_NonSeekableEstimateMismatch(t *testing.T) {
	t.Parallel()

	src := encoding.Int16Format(8000, 1)
	var raw bytes.Buffer
	sink := encoding.NewWriterSink(&raw)

	session, err := Backend{}.Open(sink, src, nil, encoding.OpenInfo{EstimatedFrames: 100})
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	if err := session.Encode(audiotest.SilentIntBuffer(8000, 1, 60, 16)); err != nil {
		t.Fatalf("Encode() error = %v, want nil", err)
	}

	// The header on the wire says 100 frames and cannot be fixed.
	if err := session.Finish(); !errors.Is(err, encoding.ErrMissingConfiguration) {
		t.Fatalf("Finish() error = %v, want ErrMissingConfiguration", err)
	}
}

func TestEncode_FloatHeader(t *testing.T) {
	t.Parallel()

	src := encoding.Float32Format(48000, 2)
	sink := encoding.NewMemorySink()

	session, err := Backend{}.Open(sink, src, nil, encoding.OpenInfo{})
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	if err := session.Encode(audiotest.SineFloat32Buffer(48000, 2, 48, 1000)); err != nil {
		t.Fatalf("Encode() error = %v, want nil", err)
	}
	if err := session.Finish(); err != nil {
		t.Fatalf("Finish() error = %v, want nil", err)
	}

	data := sink.Bytes()
	format := binary.LittleEndian.Uint16(data[20:22])
	if format != formatIEEEFloat {
		t.Errorf("format tag = %d, want %d (IEEE float)", format, formatIEEEFloat)
	}
	if !bytes.Contains(data, []byte("fact")) {
		t.Error("float file is missing the fact chunk")
	}
	factFrames := binary.LittleEndian.Uint32(data[44:48])
	if factFrames != 48 {
		t.Errorf("fact frame count = %d, want 48", factFrames)
	}
}

func TestEncode_OddDataSizePadded(t *testing.T) {
	t.Parallel()

	src := encoding.IntFormat(8000, 1, 8)
	sink := encoding.NewMemorySink()

	session, err := Backend{}.Open(sink, src, nil, encoding.OpenInfo{})
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	if err := session.Encode(audiotest.SilentIntBuffer(8000, 1, 33, 8)); err != nil {
		t.Fatalf("Encode() error = %v, want nil", err)
	}
	if err := session.Finish(); err != nil {
		t.Fatalf("Finish() error = %v, want nil", err)
	}

	if n, _ := sink.Length(); n%2 != 0 {
		t.Errorf("file length %d is odd, want word-aligned", n)
	}
	// The pad byte is not part of the data chunk.
	dataSize := binary.LittleEndian.Uint32(sink.Bytes()[40:44])
	if dataSize != 33 {
		t.Errorf("data size = %d, want 33", dataSize)
	}
}

func TestEncode_RejectsMismatchedBuffer(t *testing.T) {
	t.Parallel()

	src := encoding.Int16Format(44100, 2)
	sink := encoding.NewMemorySink()

	session, err := Backend{}.Open(sink, src, nil, encoding.OpenInfo{})
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	before, _ := sink.Length()

	err = session.Encode(audiotest.SineFloat32Buffer(44100, 2, 10, 440))
	if !errors.Is(err, encoding.ErrFormatMismatch) {
		t.Fatalf("Encode(float buffer) error = %v, want ErrFormatMismatch", err)
	}
	if after, _ := sink.Length(); after != before {
		t.Error("rejected buffer still reached the sink")
	}

	if got := session.Position(); got != 0 {
		t.Errorf("Position() after rejected buffer = %d, want 0", got)
	}
}

func TestOpen_SinkFailure(t *testing.T) {
	t.Parallel()

	src := encoding.Int16Format(44100, 2)
	_, err := Backend{}.Open(audiotest.NewFailingSink(0), src, nil, encoding.OpenInfo{})
	if !errors.Is(err, encoding.ErrSink) {
		t.Fatalf("Open(failing sink) error = %v, want ErrSink", err)
	}
}

func TestEncode_ShortWriteIsFatal(t *testing.T) {
	t.Parallel()

	src := encoding.Int16Format(44100, 2)
	_, err := Backend{}.Open(&audiotest.ShortWriteSink{}, src, nil, encoding.OpenInfo{})
	if !errors.Is(err, encoding.ErrSink) {
		t.Fatalf("Open(short-write sink) error = %v, want ErrSink", err)
	}
}
