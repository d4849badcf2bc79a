// SPDX-License-Identifier: EPL-2.0

// Package wav encodes PCM audio to WAVE files.
//
// The backend writes integer PCM (8, 16, 24 or 32 bit) and IEEE float32
// streams at any sample rate and channel count. Integer samples are
// little-endian; 8-bit samples are written unsigned with the
// conventional +128 bias.
//
// # Negotiation
//
// Integer sources are rounded up to the next byte-boundary depth and
// float sources become float32. Sources with more than two channels
// must carry an explicit channel layout.
//
// # Sink requirements
//
// The backend streams to any sink. On a seekable sink the RIFF and data
// chunk sizes are patched when the session finishes, so no frame count
// needs to be known in advance. On a non-seekable sink the sizes are
// derived from the estimated frame count; without an estimate the
// maximum chunk size (0xFFFFFFFF) is written, which well-behaved
// readers treat as "read until end of file". If an estimate is given
// on a non-seekable sink it must be exact: a mismatch at finish is
// reported as an error because the header on the wire is already wrong.
//
// # Settings
//
// The backend recognizes no settings keys.
package wav
