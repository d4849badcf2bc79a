// SPDX-License-Identifier: EPL-2.0

// Package oggflac encodes PCM audio to FLAC streams in an Ogg
// container, following the Ogg FLAC mapping version 1.0.
//
// Frame production and negotiation are shared with the native FLAC
// backend; only the framing differs. The first Ogg packet carries the
// mapping preamble and the native stream header, the second a
// VORBIS_COMMENT block, and each subsequent packet exactly one FLAC
// frame. Granule positions count inter-channel samples.
package oggflac
