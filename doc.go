// SPDX-License-Identifier: EPL-2.0

// Package audioenc provides a pluggable audio encoding framework for Go
// applications.
//
// The framework separates the lifecycle an encoder shares across
// formats (open, encode, finish, close) from the per-format codec work,
// so callers drive every output format through one API and new formats
// plug in behind the encoding.Backend interface.
//
// # Supported Formats
//
// The built-in backends are:
//   - WAV (integer PCM and float32) via formats/wav
//   - AIFF (integer PCM) via formats/aiff
//   - FLAC via formats/flac
//   - Ogg FLAC via formats/oggflac
//   - Ogg Opus via formats/opus (requires cgo and libopus)
//
// # Quick Start
//
// The simplest way to write a file is EncodeToPath, which picks a
// backend from the path's extension:
//
//	buf := &audio.IntBuffer{
//	    Format:         &audio.Format{SampleRate: 44100, NumChannels: 2},
//	    SourceBitDepth: 16,
//	    Data:           samples,
//	}
//	src := encoding.Int16Format(44100, 2)
//	err := audioenc.EncodeToPath("out.flac", src, nil, buf)
//
// # Streaming
//
// For incremental encoding, resolve an encoder and drive it directly:
//
//	enc, err := encoding.NewEncoderForPath(audioenc.NewRegistry(), "out.wav")
//	if err != nil {
//	    // Handle error
//	}
//	defer enc.Close()
//
//	if err := enc.Open(src, nil); err != nil {
//	    // Handle error
//	}
//	for buf := range produce() {
//	    if err := enc.Encode(buf); err != nil {
//	        // Handle error
//	    }
//	}
//	err = enc.Finish()
//
// Open negotiates a processing format from the source format; callers
// must deliver buffers in the processing format, not the source format.
// Check enc.ProcessingFormat() after opening (the Opus backend, for
// example, always processes 48 kHz float32).
//
// # Error Handling
//
// All failures wrap one of the sentinel errors in the encoding package
// (encoding.ErrNoMatchingBackend, encoding.ErrFormatNotSupported,
// encoding.ErrFormatMismatch, encoding.ErrMissingConfiguration,
// encoding.ErrCodec, encoding.ErrSink), so callers branch with
// errors.Is regardless of which backend produced the error.
package audioenc
