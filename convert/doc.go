// SPDX-License-Identifier: EPL-2.0

// Package convert bridges a caller's PCM buffers to the processing
// format a backend negotiated.
//
// Backends constrain what they accept: Opus wants 48 kHz float32, FLAC
// wants integer samples, AIFF refuses floats. ToProcessing performs the
// sample kind, depth, channel and rate conversions needed to satisfy a
// negotiated format, so a caller can feed any source material to any
// backend:
//
//	processing, _ := enc.Negotiate(src)
//	out, err := convert.ToProcessing(buf, src, processing)
//	err = enc.Encode(out)
//
// Rate conversion uses Catmull-Rom interpolation over whole buffers;
// for gapless streaming conversion across many small buffers a real
// resampler library is the better tool.
package convert
