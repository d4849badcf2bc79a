// SPDX-License-Identifier: EPL-2.0

package oggflac

import (
	"bytes"
	"fmt"

	gaudio "github.com/go-audio/audio"

	"github.com/sbooth/SFBAudioEngine-sub013/encoding"
	"github.com/sbooth/SFBAudioEngine-sub013/formats/flac"
	"github.com/sbooth/SFBAudioEngine-sub013/internal/ogg"
)

// The Ogg FLAC mapping (version 1.0) prefixes the native stream header
// with a 9-byte identification preamble and requires a VORBIS_COMMENT
// metadata block as the second header packet. Audio packets are
// individual FLAC frames; the granule position counts inter-channel
// samples.
const (
	mappingMajor = 1
	mappingMinor = 0

	blockTypeVorbisComment = 4
	lastMetadataBlockFlag  = 0x80
)

// Backend encodes PCM into FLAC-in-Ogg streams, sharing frame
// production with the native FLAC backend and page framing with the
// other Ogg backends.
type Backend struct{}

func (Backend) Name() string { return "oggflac" }

func (Backend) Extensions() []string { return []string{"oga", "ogg"} }

func (Backend) MIMETypes() []string { return []string{"audio/ogg"} }

// Negotiate applies the native FLAC constraints; the container makes no
// difference to the processing format.
func (Backend) Negotiate(src encoding.Format) (encoding.Format, error) {
	return flac.Backend{}.Negotiate(src)
}

// Open starts a mewkiz encoder against a capturing writer, so the
// library's serialized header and frames surface as discrete Ogg
// packets, and emits the mapping's two header packets.
func (b Backend) Open(sink encoding.Sink, src encoding.Format, settings encoding.Settings, info encoding.OpenInfo) (encoding.Session, error) {
	processing, err := b.Negotiate(src)
	if err != nil {
		return nil, err
	}

	settings.LogUnrecognized(info.Logger, flac.SettingBlockSize)
	blockSize := settings.IntInRange(flac.SettingBlockSize, flac.DefaultBlockSize, flac.MinBlockSize, flac.MaxBlockSize, info.Logger)

	capture := &bytes.Buffer{}
	enc, err := flac.NewStreamEncoder(capture, processing, blockSize, info.EstimatedFrames)
	if err != nil {
		return nil, fmt.Errorf("%w: oggflac: %w", encoding.ErrCodec, err)
	}
	native := capture.Bytes()
	// "fLaC" plus the STREAMINFO block header and body.
	if len(native) < 4+4+34 {
		return nil, fmt.Errorf("%w: oggflac: truncated stream header (%d bytes)", encoding.ErrCodec, len(native))
	}

	ident := make([]byte, 0, 9+len(native))
	ident = append(ident, 0x7F, 'F', 'L', 'A', 'C', mappingMajor, mappingMinor)
	ident = append(ident, 0, 1) // one header packet follows
	ident = append(ident, native...)
	// The comment packet follows STREAMINFO, so its last-metadata-block
	// flag must be clear.
	ident[9+4] &^= lastMetadataBlockFlag
	capture.Reset()

	comment := ogg.CommentPayload(ogg.Vendor)
	commentPacket := make([]byte, 0, 4+len(comment))
	commentPacket = append(commentPacket, lastMetadataBlockFlag|blockTypeVorbisComment)
	commentPacket = append(commentPacket,
		byte(len(comment)>>16), byte(len(comment)>>8), byte(len(comment)))
	commentPacket = append(commentPacket, comment...)

	stream := ogg.NewStream(sink)
	if err := stream.WriteHeaderPacket(ident); err != nil {
		return nil, err
	}
	if err := stream.WriteHeaderPacket(commentPacket); err != nil {
		return nil, err
	}

	return &session{
		processing: processing,
		blockSize:  blockSize,
		enc:        enc,
		capture:    capture,
		stream:     stream,
		staging:    make([]int32, 0, blockSize*processing.Channels),
	}, nil
}

type session struct {
	processing encoding.Format
	blockSize  int
	enc        flac.StreamEncoder
	capture    *bytes.Buffer
	stream     *ogg.Stream

	staging []int32
	// frames counts frames accepted from the caller; encoded counts
	// frames already emitted as FLAC frame packets. encoded never
	// exceeds frames, so the end-of-stream granule is clamped by
	// construction.
	frames   int64
	encoded  int64
	blockNum uint64
	finished bool
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
		return fmt.Errorf("%w: oggflac: integer buffer required", encoding.ErrFormatMismatch)
	}

	n := data.NumFrames() * s.processing.Channels
	for _, v := range data.Data[:n] {
		s.staging = append(s.staging, int32(v))
	}
	s.frames += int64(data.NumFrames())

	samplesPerBlock := s.blockSize * s.processing.Channels
	for len(s.staging) >= samplesPerBlock {
		if err := s.writeBlock(s.staging[:samplesPerBlock]); err != nil {
			return err
		}
		s.staging = append(s.staging[:0], s.staging[samplesPerBlock:]...)
	}
	return nil
}

func (s *session) Finish() error {
	if len(s.staging) > 0 {
		if err := s.writeBlock(s.staging); err != nil {
			return err
		}
		s.staging = s.staging[:0]
	}
	if err := s.enc.Close(); err != nil {
		return fmt.Errorf("%w: oggflac: %w", encoding.ErrCodec, err)
	}
	s.finished = true
	// Anything the library emits at close belongs to the stream too.
	if s.capture.Len() > 0 {
		if err := s.stream.WritePacket(s.takeCapture(), s.encoded); err != nil {
			return err
		}
	}
	return s.stream.FlushEOS(s.encoded)
}

func (s *session) Close() error {
	s.staging = nil
	if s.finished {
		return nil
	}
	s.finished = true
	if err := s.enc.Close(); err != nil {
		return fmt.Errorf("%w: oggflac: %w", encoding.ErrCodec, err)
	}
	return nil
}

func (s *session) writeBlock(samples []int32) error {
	f := flac.NewFrame(s.processing, samples, s.blockNum)
	if err := s.enc.WriteFrame(f); err != nil {
		return fmt.Errorf("%w: oggflac: %w", encoding.ErrCodec, err)
	}
	s.blockNum++
	s.encoded += int64(len(samples) / s.processing.Channels)
	return s.stream.WritePacket(s.takeCapture(), s.encoded)
}

func (s *session) takeCapture() []byte {
	out := append([]byte(nil), s.capture.Bytes()...)
	s.capture.Reset()
	return out
}
