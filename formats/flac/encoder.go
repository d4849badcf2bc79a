// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"fmt"
	"io"

	gaudio "github.com/go-audio/audio"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"

	"github.com/sbooth/SFBAudioEngine-sub013/encoding"
)

// Settings keys recognized by the FLAC backends.
const (
	// SettingBlockSize is the number of frames per FLAC block,
	// 16..65535, default 4096.
	SettingBlockSize = "flac:blocksize"
)

// Block size bounds shared with the Ogg FLAC backend, which recognizes
// the same setting.
const (
	DefaultBlockSize = 4096
	MinBlockSize     = 16
	MaxBlockSize     = 65535
)

// STREAMINFO caps the sample rate at 20 bits.
const maxSampleRate = 655350

// Backend encodes PCM into native FLAC streams via mewkiz/flac.
type Backend struct{}

func (Backend) Name() string { return "flac" }

func (Backend) Extensions() []string { return []string{"flac"} }

func (Backend) MIMETypes() []string { return []string{"audio/flac", "audio/x-flac"} }

// Negotiate derives the processing format: signed integers normalized to
// 8, 16 or 24 bits, 1 to 6 channels, integer sample rates up to the
// 20-bit STREAMINFO limit. Floating-point sources are rejected.
func (Backend) Negotiate(src encoding.Format) (encoding.Format, error) {
	if err := src.Validate(); err != nil {
		return encoding.Format{}, err
	}
	if !src.Interleaved {
		return encoding.Format{}, fmt.Errorf("%w: flac: non-interleaved audio", encoding.ErrFormatNotSupported)
	}
	if src.Kind == encoding.Float {
		return encoding.Format{}, fmt.Errorf("%w: flac: floating-point audio", encoding.ErrFormatNotSupported)
	}
	if src.BitDepth > 24 {
		return encoding.Format{}, fmt.Errorf("%w: flac: %d-bit audio", encoding.ErrFormatNotSupported, src.BitDepth)
	}
	if src.Channels > 6 {
		return encoding.Format{}, fmt.Errorf("%w: flac: %d channels", encoding.ErrFormatNotSupported, src.Channels)
	}
	if src.SampleRate != float64(int(src.SampleRate)) || src.SampleRate > maxSampleRate {
		return encoding.Format{}, fmt.Errorf("%w: flac: sample rate %g Hz", encoding.ErrFormatNotSupported, src.SampleRate)
	}

	out := src
	out.Kind = encoding.SignedInt
	out.BitDepth = ((src.BitDepth + 7) / 8) * 8
	if out.Layout == encoding.LayoutNone {
		out.Layout = encoding.DefaultLayout(src.Channels)
		if out.Layout == encoding.LayoutNone {
			return encoding.Format{}, fmt.Errorf("%w: flac: %d channels without a channel layout", encoding.ErrFormatNotSupported, src.Channels)
		}
	}
	return out, nil
}

// Open builds the STREAMINFO block (total samples from the caller's
// estimate, zero meaning unknown) and starts the mewkiz encoder, which
// writes the fLaC signature and metadata immediately.
func (b Backend) Open(sink encoding.Sink, src encoding.Format, settings encoding.Settings, info encoding.OpenInfo) (encoding.Session, error) {
	processing, err := b.Negotiate(src)
	if err != nil {
		return nil, err
	}

	settings.LogUnrecognized(info.Logger, SettingBlockSize)
	blockSize := settings.IntInRange(SettingBlockSize, DefaultBlockSize, MinBlockSize, MaxBlockSize, info.Logger)

	enc, err := NewStreamEncoder(sinkWriter{sink}, processing, blockSize, info.EstimatedFrames)
	if err != nil {
		return nil, fmt.Errorf("%w: flac: %w", encoding.ErrCodec, err)
	}

	return &session{
		processing: processing,
		blockSize:  blockSize,
		enc:        enc,
		staging:    make([]int32, 0, blockSize*processing.Channels),
	}, nil
}

// StreamEncoder is the slice of the mewkiz encoder the session uses,
// as an interface so tests can observe frame emission directly.
type StreamEncoder interface {
	WriteFrame(f *frame.Frame) error
	Close() error
}

func NewStreamEncoder(w io.Writer, processing encoding.Format, blockSize int, estimated int64) (StreamEncoder, error) {
	info := &meta.StreamInfo{
		BlockSizeMin:  uint16(blockSize),
		BlockSizeMax:  uint16(blockSize),
		SampleRate:    uint32(processing.SampleRate),
		NChannels:     uint8(processing.Channels),
		BitsPerSample: uint8(processing.BitDepth),
	}
	if estimated > 0 {
		info.NSamples = uint64(estimated)
	}
	return flac.NewEncoder(w, info)
}

// sinkWriter exposes a Sink as a bare io.Writer with full-write
// semantics, hiding Seek so the wrapped library never repositions the
// stream behind the session's back.
type sinkWriter struct {
	sink encoding.Sink
}

func (w sinkWriter) Write(p []byte) (int, error) {
	if err := encoding.WriteAll(w.sink, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

type session struct {
	processing encoding.Format
	blockSize  int
	enc        StreamEncoder

	staging  []int32 // interleaved samples awaiting a full block
	frames   int64
	blockNum uint64
	closed   bool
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
		return fmt.Errorf("%w: flac: integer buffer required", encoding.ErrFormatMismatch)
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

// Finish flushes the trailing partial block. FLAC permits a short final
// block, so no silence is synthesized.
func (s *session) Finish() error {
	if len(s.staging) > 0 {
		if err := s.writeBlock(s.staging); err != nil {
			return err
		}
		s.staging = s.staging[:0]
	}
	if err := s.enc.Close(); err != nil {
		return fmt.Errorf("%w: flac: %w", encoding.ErrCodec, err)
	}
	s.closed = true
	return nil
}

func (s *session) Close() error {
	s.staging = nil
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.enc.Close(); err != nil {
		return fmt.Errorf("%w: flac: %w", encoding.ErrCodec, err)
	}
	return nil
}

func (s *session) writeBlock(samples []int32) error {
	f := NewFrame(s.processing, samples, s.blockNum)
	if err := s.enc.WriteFrame(f); err != nil {
		return fmt.Errorf("%w: flac: %w", encoding.ErrCodec, err)
	}
	s.blockNum++
	return nil
}

// NewFrame deinterleaves one block of samples into a FLAC frame. Flat
// channels become constant subframes; everything else is stored
// verbatim. Also used by the Ogg FLAC backend, which shares this
// backend's frame production.
func NewFrame(processing encoding.Format, samples []int32, num uint64) *frame.Frame {
	channels := processing.Channels
	nFrames := len(samples) / channels

	subframes := make([]*frame.Subframe, channels)
	for ch := 0; ch < channels; ch++ {
		chSamples := make([]int32, nFrames)
		for i := 0; i < nFrames; i++ {
			chSamples[i] = samples[i*channels+ch]
		}

		pred := frame.PredVerbatim
		if isConstant(chSamples) {
			pred = frame.PredConstant
		}
		subframes[ch] = &frame.Subframe{
			SubHeader: frame.SubHeader{Pred: pred},
			Samples:   chSamples,
			NSamples:  nFrames,
		}
	}

	return &frame.Frame{
		Header: frame.Header{
			HasFixedBlockSize: true,
			BlockSize:         uint16(nFrames),
			SampleRate:        uint32(processing.SampleRate),
			Channels:          channelAssignment(channels),
			BitsPerSample:     uint8(processing.BitDepth),
			Num:               num,
		},
		Subframes: subframes,
	}
}

func isConstant(samples []int32) bool {
	for _, v := range samples[1:] {
		if v != samples[0] {
			return false
		}
	}
	return true
}

func channelAssignment(channels int) frame.Channels {
	switch channels {
	case 1:
		return frame.ChannelsMono
	case 2:
		return frame.ChannelsLR
	case 3:
		return frame.ChannelsLRC
	case 4:
		return frame.ChannelsLRLsRs
	case 5:
		return frame.ChannelsLRCLsRs
	default:
		return frame.ChannelsLRCLfeLsRs
	}
}
