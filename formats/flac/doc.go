// SPDX-License-Identifier: EPL-2.0

// Package flac encodes PCM audio to native FLAC streams.
//
// Encoding is performed by github.com/mewkiz/flac. The backend accepts
// integer PCM up to 24 bits and up to six channels (the depths and
// layouts FLAC assigns fixed channel orders for) at integer sample
// rates up to 655350 Hz.
//
// # Streaming
//
// The stream header is written once at open and never revisited, so the
// backend works on non-seekable sinks. The cost is that the STREAMINFO
// sample count is the caller's estimate (or zero when unknown) and the
// MD5 signature is left unset; decoders treat both as optional.
//
// # Settings
//
//	flac:blocksize  frames per FLAC frame, 16..65535 (default 4096)
//
// # Sharing
//
// NewStreamEncoder and NewFrame are exported for the Ogg FLAC backend,
// which produces identical frames inside an Ogg container.
package flac
