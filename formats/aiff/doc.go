// SPDX-License-Identifier: EPL-2.0

// Package aiff encodes integer PCM audio to AIFF files.
//
// Samples are big-endian signed integers at 8, 16, 24 or 32 bits.
// Float sources are rejected; convert to integer PCM first.
//
// The AIFF COMM chunk stores the total frame count, and the format has
// no streaming convention for an unknown length. The backend therefore
// requires either a seekable sink (the header is patched at finish) or
// an exact frame count supplied up front via the encoder's estimate.
// Opening with neither fails with encoding.ErrMissingConfiguration.
package aiff
