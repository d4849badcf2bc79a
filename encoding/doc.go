// SPDX-License-Identifier: EPL-2.0

// Package encoding defines the shared contract between callers and
// encoder backends: PCM format negotiation, the open/encode/finish/close
// session lifecycle, settings propagation, backend registration and
// resolution, and the byte sink abstraction.
//
// # Encoding Audio
//
// Callers interact with an Encoder, which owns a Sink and delegates to a
// Backend resolved from a registry:
//
//	reg := audioenc.NewRegistry()
//	enc, err := encoding.NewEncoderForPath(reg, "out.flac")
//	if err != nil {
//	    // no backend claims the extension
//	}
//	defer enc.Close()
//
//	src := encoding.Int16Format(44100, 2)
//	if err := enc.Open(src, nil); err != nil {
//	    // format rejected or backend setup failed
//	}
//	err = enc.Encode(buf) // *audio.IntBuffer matching the processing format
//	err = enc.Finish()
//
// # Formats
//
// Three formats flow through a session. The source format describes the
// caller's PCM. Negotiation derives the processing format, which is what
// Encode actually consumes; it commonly normalizes bit depth to a byte
// boundary or, for Opus, forces 48 kHz float. The output format describes
// the encoded stream and is informational.
//
// Negotiate is pure and may be used to probe a backend speculatively:
//
//	processing, err := enc.Negotiate(src)
//
// # Settings
//
// Settings is an opaque map from namespaced string keys to values. The
// framework passes it through unmodified; backends read only the keys
// they recognize. Invalid values are logged and replaced with defaults,
// never hard errors.
//
// # Error Classification
//
// All errors wrap one of the package sentinels (ErrNoMatchingBackend,
// ErrFormatNotSupported, ErrFormatMismatch, ErrMissingConfiguration,
// ErrCodec, ErrSink), so callers classify with errors.Is.
package encoding
