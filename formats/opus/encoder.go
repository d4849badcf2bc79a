// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	gaudio "github.com/go-audio/audio"
	hraban "gopkg.in/hraban/opus.v2"

	"github.com/sbooth/SFBAudioEngine-sub013/encoding"
	"github.com/sbooth/SFBAudioEngine-sub013/internal/ogg"
)

// Settings keys recognized by the Opus backend.
const (
	// SettingBitrate is the target bitrate in bits per second.
	SettingBitrate = "opus:bitrate"
	// SettingComplexity is the encoder complexity, 0 through 10.
	SettingComplexity = "opus:complexity"
	// SettingApplication selects the codec application: "voip",
	// "audio" or "lowdelay".
	SettingApplication = "opus:application"
	// SettingFrameDuration selects the packet duration in
	// milliseconds: 2.5, 5, 10, 20, 40 or 60. Default 20.
	SettingFrameDuration = "opus:frame-duration"
)

const (
	// Opus always codes at 48 kHz; other input rates are declared in
	// OpusHead and resampled by the caller to the processing format.
	codecRate = 48000

	// frameSize is the default frames per channel in one packet,
	// 20 ms at the codec rate.
	frameSize = 960

	// preSkip is the number of frames a decoder discards before the
	// first audible sample, as written in OpusHead.
	preSkip = 312

	// maxPacket bounds one encoded packet. libopus recommends 4000
	// bytes for a single 20 ms frame.
	maxPacket = 4000

	defaultBitrate    = 128000
	defaultComplexity = 10
)

// codec is the slice of the libopus binding the session uses. Tests
// substitute a stub so they run without the native library.
type codec interface {
	EncodeFloat32(pcm []float32, data []byte) (int, error)
}

// newCodec creates the libopus encoder. It is a variable so tests can
// replace the cgo binding.
var newCodec = func(channels int, app hraban.Application, bitrate, complexity int) (codec, error) {
	enc, err := hraban.NewEncoder(codecRate, channels, app)
	if err != nil {
		return nil, err
	}
	if err := enc.SetBitrate(bitrate); err != nil {
		return nil, err
	}
	if err := enc.SetComplexity(complexity); err != nil {
		return nil, err
	}
	return enc, nil
}

// Backend encodes PCM to Opus-in-Ogg streams via libopus.
type Backend struct{}

func (Backend) Name() string { return "opus" }

func (Backend) Extensions() []string { return []string{"opus"} }

func (Backend) MIMETypes() []string { return []string{"audio/opus", "audio/ogg; codecs=opus"} }

// Negotiate accepts mono and stereo sources at any rate. The codec
// operates only at 48 kHz on float samples, so the processing format is
// always 48 kHz interleaved float32; the source rate is preserved in
// the OpusHead input-sample-rate field.
func (Backend) Negotiate(src encoding.Format) (encoding.Format, error) {
	if err := src.Validate(); err != nil {
		return encoding.Format{}, err
	}
	if src.Channels > 2 {
		return encoding.Format{}, fmt.Errorf("%w: opus: %d channels (mono or stereo only)",
			encoding.ErrFormatNotSupported, src.Channels)
	}
	return encoding.Float32Format(codecRate, src.Channels), nil
}

func (b Backend) Open(sink encoding.Sink, src encoding.Format, settings encoding.Settings, info encoding.OpenInfo) (encoding.Session, error) {
	processing, err := b.Negotiate(src)
	if err != nil {
		return nil, err
	}

	settings.LogUnrecognized(info.Logger, SettingBitrate, SettingComplexity, SettingApplication, SettingFrameDuration)
	bitrate := settings.IntInRange(SettingBitrate, defaultBitrate, 500, 512000, info.Logger)
	complexity := settings.IntInRange(SettingComplexity, defaultComplexity, 0, 10, info.Logger)
	app := application(settings.String(SettingApplication, "audio", info.Logger), info.Logger)
	packetFrames := frameDuration(settings.Float(SettingFrameDuration, 20, info.Logger), info.Logger)

	enc, err := newCodec(processing.Channels, app, bitrate, complexity)
	if err != nil {
		return nil, fmt.Errorf("%w: opus: %w", encoding.ErrCodec, err)
	}

	stream := ogg.NewStream(sink)
	if err := stream.WriteHeaderPacket(opusHead(processing.Channels, src.SampleRate)); err != nil {
		return nil, err
	}
	if err := stream.WriteHeaderPacket(opusTags()); err != nil {
		return nil, err
	}

	return &session{
		processing:   processing,
		enc:          enc,
		stream:       stream,
		packetFrames: packetFrames,
		staging:      make([]float32, 0, packetFrames*processing.Channels),
		packet:       make([]byte, maxPacket),
	}, nil
}

// frameDuration maps a duration in milliseconds to frames per packet.
// Opus permits only six packet durations; anything else falls back to
// 20 ms.
func frameDuration(ms float64, logger *slog.Logger) int {
	switch ms {
	case 2.5, 5, 10, 20, 40, 60:
		return int(ms * codecRate / 1000)
	}
	if logger != nil {
		logger.Warn("invalid opus frame duration, using 20 ms", "value", ms)
	}
	return frameSize
}

// application maps the setting value to the libopus constant. Unknown
// values are logged and replaced with the "audio" default, the same
// fallback behavior as the numeric settings getters.
func application(name string, logger *slog.Logger) hraban.Application {
	switch name {
	case "voip":
		return hraban.AppVoIP
	case "audio":
		return hraban.AppAudio
	case "lowdelay":
		return hraban.AppRestrictedLowdelay
	}
	if logger != nil {
		logger.Warn("unknown opus application, using audio", "value", name)
	}
	return hraban.AppAudio
}

// opusHead builds the identification header. Mapping family 0 covers
// mono and stereo, the only layouts the backend negotiates.
func opusHead(channels int, inputRate float64) []byte {
	out := make([]byte, 0, 19)
	out = append(out, "OpusHead"...)
	out = append(out, 1, byte(channels))
	out = binary.LittleEndian.AppendUint16(out, preSkip)
	out = binary.LittleEndian.AppendUint32(out, uint32(inputRate))
	out = binary.LittleEndian.AppendUint16(out, 0) // output gain
	out = append(out, 0)                           // mapping family
	return out
}

func opusTags() []byte {
	payload := ogg.CommentPayload(ogg.Vendor)
	out := make([]byte, 0, 8+len(payload))
	out = append(out, "OpusTags"...)
	return append(out, payload...)
}

type session struct {
	processing   encoding.Format
	enc          codec
	stream       *ogg.Stream
	packetFrames int

	// staging accumulates interleaved samples until a full 20 ms
	// packet is available. packet is the reusable output buffer.
	staging []float32
	packet  []byte

	// frames counts frames accepted from the caller. The trailing
	// silence that pads the final short packet is not counted, and the
	// end-of-stream granule is clamped to the accepted total so
	// decoders trim it.
	frames   int64
	encoded  int64
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
	data, ok := buf.(*gaudio.Float32Buffer)
	if !ok {
		return fmt.Errorf("%w: opus: float32 buffer required", encoding.ErrFormatMismatch)
	}

	s.staging = append(s.staging, data.Data[:data.NumFrames()*s.processing.Channels]...)
	s.frames += int64(data.NumFrames())

	samplesPerPacket := s.packetFrames * s.processing.Channels
	for len(s.staging) >= samplesPerPacket {
		if err := s.writePacket(s.staging[:samplesPerPacket]); err != nil {
			return err
		}
		s.staging = append(s.staging[:0], s.staging[samplesPerPacket:]...)
	}
	return nil
}

func (s *session) Finish() error {
	if len(s.staging) > 0 {
		// Pad the final packet to a full frame with silence; the
		// clamped granule tells decoders how much of it to keep.
		samplesPerPacket := s.packetFrames * s.processing.Channels
		for len(s.staging) < samplesPerPacket {
			s.staging = append(s.staging, 0)
		}
		if err := s.writePacket(s.staging); err != nil {
			return err
		}
		s.staging = s.staging[:0]
	}
	s.finished = true
	return s.stream.FlushEOS(preSkip + s.frames)
}

func (s *session) Close() error {
	s.staging = nil
	s.finished = true
	return nil
}

func (s *session) writePacket(pcm []float32) error {
	n, err := s.enc.EncodeFloat32(pcm, s.packet)
	if err != nil {
		return fmt.Errorf("%w: opus: %w", encoding.ErrCodec, err)
	}
	s.encoded += int64(s.packetFrames)
	granule := preSkip + s.encoded
	if limit := preSkip + s.frames; granule > limit {
		granule = limit
	}
	return s.stream.WritePacket(s.packet[:n], granule)
}
