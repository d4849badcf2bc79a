// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"encoding/binary"
	"fmt"

	gaudio "github.com/go-audio/audio"

	"github.com/sbooth/SFBAudioEngine-sub013/encoding"
	"github.com/sbooth/SFBAudioEngine-sub013/utils"
)

// Backend encodes PCM into AIFF containers (big-endian signed integers).
type Backend struct{}

func (Backend) Name() string { return "aiff" }

func (Backend) Extensions() []string { return []string{"aif", "aiff"} }

func (Backend) MIMETypes() []string {
	return []string{"audio/aiff", "audio/x-aiff"}
}

// Negotiate derives the processing format: signed big-endian integers
// normalized to 8, 16, 24 or 32 bits. Float sources are rejected (AIFC
// float compression is not produced by this backend).
func (Backend) Negotiate(src encoding.Format) (encoding.Format, error) {
	if err := src.Validate(); err != nil {
		return encoding.Format{}, err
	}
	if !src.Interleaved {
		return encoding.Format{}, fmt.Errorf("%w: aiff: non-interleaved audio", encoding.ErrFormatNotSupported)
	}
	if src.Kind == encoding.Float {
		return encoding.Format{}, fmt.Errorf("%w: aiff: floating-point audio", encoding.ErrFormatNotSupported)
	}
	if src.BitDepth > 32 {
		return encoding.Format{}, fmt.Errorf("%w: aiff: %d-bit audio", encoding.ErrFormatNotSupported, src.BitDepth)
	}

	out := src
	out.Kind = encoding.SignedInt
	out.BitDepth = ((src.BitDepth + 7) / 8) * 8
	if out.Layout == encoding.LayoutNone {
		out.Layout = encoding.DefaultLayout(src.Channels)
		if out.Layout == encoding.LayoutNone {
			return encoding.Format{}, fmt.Errorf("%w: aiff: %d channels without a channel layout", encoding.ErrFormatNotSupported, src.Channels)
		}
	}
	return out, nil
}

// Open writes the FORM, COMM and SSND headers.
//
// The COMM chunk carries the total frame count and AIFF has no streaming
// convention for an unknown count. On a non-seekable sink the caller
// must therefore supply a frame estimate up front; rejecting the open is
// the safe alternative to producing a corrupt file.
func (b Backend) Open(sink encoding.Sink, src encoding.Format, settings encoding.Settings, info encoding.OpenInfo) (encoding.Session, error) {
	processing, err := b.Negotiate(src)
	if err != nil {
		return nil, err
	}
	if !sink.SupportsSeeking() && info.EstimatedFrames <= 0 {
		return nil, fmt.Errorf("%w: aiff: total frame count required on a non-seekable sink", encoding.ErrMissingConfiguration)
	}
	settings.LogUnrecognized(info.Logger)

	s := &session{
		sink:       sink,
		processing: processing,
		estimated:  info.EstimatedFrames,
		seekable:   sink.SupportsSeeking(),
	}
	if err := encoding.WriteAll(sink, s.buildHeader(max(s.estimated, 0))); err != nil {
		return nil, err
	}
	return s, nil
}

type session struct {
	sink       encoding.Sink
	processing encoding.Format
	estimated  int64
	seekable   bool

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
	data, ok := buf.(*gaudio.IntBuffer)
	if !ok {
		return fmt.Errorf("%w: aiff: integer buffer required", encoding.ErrFormatMismatch)
	}

	n := data.NumFrames() * s.processing.Channels
	s.scratch = utils.PackIntBE(s.scratch[:0], data.Data[:n], s.processing.BitDepth)
	if err := encoding.WriteAll(s.sink, s.scratch); err != nil {
		return err
	}
	s.frames += int64(data.NumFrames())
	s.dataBytes += int64(len(s.scratch))
	return nil
}

func (s *session) Finish() error {
	// IFF chunks are word aligned.
	if s.dataBytes%2 == 1 {
		if err := encoding.WriteAll(s.sink, []byte{0}); err != nil {
			return err
		}
	}

	if !s.seekable {
		if s.frames != s.estimated {
			return fmt.Errorf("%w: aiff: encoded %d frames but header was written for %d",
				encoding.ErrMissingConfiguration, s.frames, s.estimated)
		}
		return nil
	}

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

// buildHeader lays out FORM/AIFF with a COMM chunk and the SSND chunk
// header, sized for the given frame count.
func (s *session) buildHeader(frames int64) []byte {
	f := s.processing
	dataSize := uint32(frames) * uint32(f.FrameSize())
	ssndSize := 8 + dataSize // offset + block size words precede the data
	// AIFF + COMM chunk + SSND header.
	formSize := 4 + (8 + 18) + (8 + ssndSize)

	rate := utils.Float80(f.SampleRate)

	header := make([]byte, 0, 54)
	header = append(header, "FORM"...)
	header = binary.BigEndian.AppendUint32(header, formSize)
	header = append(header, "AIFF"...)

	header = append(header, "COMM"...)
	header = binary.BigEndian.AppendUint32(header, 18)
	header = binary.BigEndian.AppendUint16(header, uint16(f.Channels))
	header = binary.BigEndian.AppendUint32(header, uint32(frames))
	header = binary.BigEndian.AppendUint16(header, uint16(f.BitDepth))
	header = append(header, rate[:]...)

	header = append(header, "SSND"...)
	header = binary.BigEndian.AppendUint32(header, ssndSize)
	header = binary.BigEndian.AppendUint32(header, 0) // offset
	header = binary.BigEndian.AppendUint32(header, 0) // block size
	return header
}
