// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"

	gaudio "github.com/go-audio/audio"

	"github.com/sbooth/SFBAudioEngine-sub013/encoding"
	"github.com/sbooth/SFBAudioEngine-sub013/utils"
)

const (
	formatPCM       = 1
	formatIEEEFloat = 3

	// RIFF streaming convention for sizes that cannot be known and
	// cannot be patched in afterwards.
	unknownSize = 0xFFFFFFFF
)

// Backend encodes PCM into RIFF/WAVE containers.
type Backend struct{}

func (Backend) Name() string { return "wav" }

func (Backend) Extensions() []string { return []string{"wav", "wave"} }

func (Backend) MIMETypes() []string {
	return []string{"audio/wav", "audio/wave", "audio/x-wav", "audio/vnd.wave"}
}

// Negotiate derives the processing format: signed little-endian integers
// normalized to the next byte boundary (8, 16, 24 or 32 bits), or 32-bit
// float. Mono and stereo sources get default layouts; three or more
// channels require an explicit layout.
func (Backend) Negotiate(src encoding.Format) (encoding.Format, error) {
	if err := src.Validate(); err != nil {
		return encoding.Format{}, err
	}
	if !src.Interleaved {
		return encoding.Format{}, fmt.Errorf("%w: wav: non-interleaved audio", encoding.ErrFormatNotSupported)
	}

	out := src
	out.Interleaved = true
	if out.Layout == encoding.LayoutNone {
		out.Layout = encoding.DefaultLayout(src.Channels)
		if out.Layout == encoding.LayoutNone {
			return encoding.Format{}, fmt.Errorf("%w: wav: %d channels without a channel layout", encoding.ErrFormatNotSupported, src.Channels)
		}
	}

	switch src.Kind {
	case encoding.Float:
		out.Kind = encoding.Float
		out.BitDepth = 32
	case encoding.SignedInt, encoding.UnsignedInt:
		if src.BitDepth > 32 {
			return encoding.Format{}, fmt.Errorf("%w: wav: %d-bit integer audio", encoding.ErrFormatNotSupported, src.BitDepth)
		}
		out.Kind = encoding.SignedInt
		out.BitDepth = ((src.BitDepth + 7) / 8) * 8
	}
	return out, nil
}

// Open writes the RIFF, fmt, fact (float only) and data chunk headers.
//
// Chunk sizes are computed from the frame estimate when one is supplied.
// Without an estimate the sizes are written as placeholders and patched
// by Finish when the sink seeks; on a non-seekable sink they take the
// streaming value 0xFFFFFFFF, which decoders treat as "read until EOF".
// That best-effort header is the documented behavior, not an error.
func (b Backend) Open(sink encoding.Sink, src encoding.Format, settings encoding.Settings, info encoding.OpenInfo) (encoding.Session, error) {
	processing, err := b.Negotiate(src)
	if err != nil {
		return nil, err
	}
	settings.LogUnrecognized(info.Logger)

	s := &session{
		sink:       sink,
		processing: processing,
		estimated:  info.EstimatedFrames,
		seekable:   sink.SupportsSeeking(),
	}
	s.header = s.buildHeader(s.headerFrames())
	if err := encoding.WriteAll(sink, s.header); err != nil {
		return nil, err
	}
	return s, nil
}

type session struct {
	sink       encoding.Sink
	processing encoding.Format
	estimated  int64
	seekable   bool

	// header holds the exact bytes written at offset zero, so Finish can
	// rewrite precisely that block.
	header    []byte
	frames    int64
	dataBytes int64
	scratch   []byte
}

func (s *session) ProcessingFormat() encoding.Format { return s.processing }
func (s *session) OutputFormat() encoding.Format     { return s.processing }
func (s *session) Position() int64                   { return s.frames }

func (s *session) Encode(buf gaudio.Buffer) error {
	if err := s.processing.Matches(buf); err != nil {
		return err
	}
	if buf == nil || buf.NumFrames() == 0 {
		return nil
	}

	s.scratch = s.scratch[:0]
	switch data := buf.(type) {
	case *gaudio.IntBuffer:
		n := data.NumFrames() * s.processing.Channels
		s.scratch = utils.PackIntLE(s.scratch, data.Data[:n], s.processing.BitDepth)
	case *gaudio.Float32Buffer:
		n := data.NumFrames() * s.processing.Channels
		s.scratch = utils.PackFloat32LE(s.scratch, data.Data[:n])
	}

	if err := encoding.WriteAll(s.sink, s.scratch); err != nil {
		return err
	}
	s.frames += int64(buf.NumFrames())
	s.dataBytes += int64(len(s.scratch))
	return nil
}

func (s *session) Finish() error {
	// RIFF chunks are word aligned; a pad byte after odd-sized data is
	// not counted in the chunk size.
	if s.dataBytes%2 == 1 {
		if err := encoding.WriteAll(s.sink, []byte{0}); err != nil {
			return err
		}
	}

	if s.estimated > 0 && s.frames != s.estimated && !s.seekable {
		return fmt.Errorf("%w: wav: encoded %d frames but header was written for %d",
			encoding.ErrMissingConfiguration, s.frames, s.estimated)
	}
	if !s.seekable {
		return nil
	}

	// Rewrite the first block with the final sizes, then restore the
	// write offset.
	end, err := s.sink.Offset()
	if err != nil {
		return fmt.Errorf("%w: %w", encoding.ErrSink, err)
	}
	if err := s.sink.Seek(0); err != nil {
		return fmt.Errorf("%w: %w", encoding.ErrSink, err)
	}
	if err := encoding.WriteAll(s.sink, s.buildHeader(s.frames)); err != nil {
		return err
	}
	if err := s.sink.Seek(end); err != nil {
		return fmt.Errorf("%w: %w", encoding.ErrSink, err)
	}
	return nil
}

func (s *session) Close() error {
	s.scratch = nil
	return nil
}

// headerFrames returns the frame count to build the initial header from:
// the caller's estimate, 0 for a patchable placeholder, or -1 for the
// streaming convention.
func (s *session) headerFrames() int64 {
	switch {
	case s.estimated > 0:
		return s.estimated
	case s.seekable:
		return 0
	default:
		return -1
	}
}

func (s *session) buildHeader(frames int64) []byte {
	f := s.processing
	isFloat := f.Kind == encoding.Float

	blockAlign := uint32(f.FrameSize())
	byteRate := uint32(f.SampleRate) * blockAlign

	dataSize := uint32(unknownSize)
	factFrames := uint32(unknownSize)
	if frames >= 0 {
		dataSize = uint32(frames) * blockAlign
		factFrames = uint32(frames)
	}

	chunks := 4 + 8 + 16 + 8 // "WAVE" + fmt chunk + data header
	if isFloat {
		chunks += 12 // fact chunk
	}
	riffSize := uint32(unknownSize)
	if frames >= 0 {
		riffSize = uint32(chunks) + dataSize
	}

	header := make([]byte, 0, 8+chunks)
	header = append(header, "RIFF"...)
	header = binary.LittleEndian.AppendUint32(header, riffSize)
	header = append(header, "WAVE"...)

	audioFormat := uint16(formatPCM)
	if isFloat {
		audioFormat = formatIEEEFloat
	}
	header = append(header, "fmt "...)
	header = binary.LittleEndian.AppendUint32(header, 16)
	header = binary.LittleEndian.AppendUint16(header, audioFormat)
	header = binary.LittleEndian.AppendUint16(header, uint16(f.Channels))
	header = binary.LittleEndian.AppendUint32(header, uint32(f.SampleRate))
	header = binary.LittleEndian.AppendUint32(header, byteRate)
	header = binary.LittleEndian.AppendUint16(header, uint16(blockAlign))
	header = binary.LittleEndian.AppendUint16(header, uint16(f.BitDepth))

	if isFloat {
		// Non-PCM formats carry a fact chunk with the per-channel frame
		// count.
		header = append(header, "fact"...)
		header = binary.LittleEndian.AppendUint32(header, 4)
		header = binary.LittleEndian.AppendUint32(header, factFrames)
	}

	header = append(header, "data"...)
	header = binary.LittleEndian.AppendUint32(header, dataSize)
	return header
}
