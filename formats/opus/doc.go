// SPDX-License-Identifier: EPL-2.0

// Package opus encodes PCM audio to Opus streams in an Ogg container
// using libopus via gopkg.in/hraban/opus.v2.
//
// Opus codes exclusively at 48 kHz, so the negotiated processing format
// is always 48 kHz interleaved float32 regardless of the source rate;
// the source rate is recorded in the OpusHead header. Mono and stereo
// only.
//
// Audio is packetized into fixed-duration frames, 20 ms unless
// opus:frame-duration says otherwise. The final short frame is padded
// with silence and the end-of-stream granule position is clamped to the
// real sample count so decoders trim the padding.
//
// # Settings
//
//	opus:bitrate         bits per second, 500..512000 (default 128000)
//	opus:complexity      0..10 (default 10)
//	opus:application     "voip", "audio" or "lowdelay" (default "audio")
//	opus:frame-duration  milliseconds per packet: 2.5, 5, 10, 20, 40
//	                     or 60 (default 20)
//
// This package requires cgo and the libopus development headers.
package opus
