// SPDX-License-Identifier: EPL-2.0

package audioenc

import (
	"fmt"

	gaudio "github.com/go-audio/audio"

	"github.com/sbooth/SFBAudioEngine-sub013/encoding"
)

// EncodeToPath encodes the given buffers to a new file at path,
// choosing the backend by the path's extension. The total frame count
// is known up front, so it is passed to the backend as an exact
// estimate and every backend (including AIFF on a pipe) can finalize
// correctly.
//
// It is a convenience wrapper; for streaming input or custom sinks use
// encoding.NewEncoderForPath and drive the encoder directly.
func EncodeToPath(path string, src encoding.Format, settings encoding.Settings, bufs ...gaudio.Buffer) error {
	enc, err := encoding.NewEncoderForPath(NewRegistry(), path)
	if err != nil {
		return err
	}
	var frames int64
	for _, buf := range bufs {
		frames += int64(buf.NumFrames())
	}
	enc.SetEstimatedFrames(frames)

	if err := enc.Open(src, settings); err != nil {
		enc.Close()
		return err
	}
	for _, buf := range bufs {
		if err := enc.Encode(buf); err != nil {
			enc.Close()
			return err
		}
	}
	if err := enc.Finish(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// EncodeToSink is EncodeToPath for an existing sink and an explicit
// backend name resolved from reg. A nil registry means NewRegistry().
func EncodeToSink(reg *encoding.Registry, name string, sink encoding.Sink, src encoding.Format, settings encoding.Settings, bufs ...gaudio.Buffer) error {
	if reg == nil {
		reg = NewRegistry()
	}
	backend, ok := reg.ResolveByName(name)
	if !ok {
		return fmt.Errorf("%w for name %q", encoding.ErrNoMatchingBackend, name)
	}
	enc := encoding.NewEncoder(sink, backend)
	var frames int64
	for _, buf := range bufs {
		frames += int64(buf.NumFrames())
	}
	enc.SetEstimatedFrames(frames)

	if err := enc.Open(src, settings); err != nil {
		enc.Close()
		return err
	}
	for _, buf := range bufs {
		if err := enc.Encode(buf); err != nil {
			enc.Close()
			return err
		}
	}
	if err := enc.Finish(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
