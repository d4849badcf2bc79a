// SPDX-License-Identifier: EPL-2.0

package encoding

import (
	"fmt"
	"log/slog"
	"path/filepath"

	gaudio "github.com/go-audio/audio"
)

type encoderState int

const (
	stateUnopened encoderState = iota
	stateOpen
	stateFinished
	stateClosed
)

// Encoder is the object callers interact with. It owns a Sink, delegates
// lifecycle calls to a resolved Backend, and enforces the
// Unopened -> Open -> Finished -> Closed state machine so that backends
// never see encode-after-finish or a second finish.
//
// An Encoder is single-threaded: callers serialize all calls, typically
// by dedicating one encoder to one worker.
type Encoder struct {
	backend Backend
	sink    Sink
	session Session
	state   encoderState

	estimatedFrames int64
	logger          *slog.Logger
}

// NewEncoder pairs a sink with an explicitly chosen backend.
func NewEncoder(sink Sink, backend Backend) *Encoder {
	return &Encoder{backend: backend, sink: sink}
}

// NewEncoderForPath creates the file at path and resolves a backend from
// its extension.
func NewEncoderForPath(reg *Registry, path string) (*Encoder, error) {
	ext := filepath.Ext(path)
	backend, ok := reg.ResolveByExtension(ext)
	if !ok {
		return nil, fmt.Errorf("%w for extension %q", ErrNoMatchingBackend, ext)
	}
	sink, err := NewFileSink(path)
	if err != nil {
		return nil, err
	}
	return NewEncoder(sink, backend), nil
}

// NewEncoderForExtension resolves a backend from a file extension and
// pairs it with sink.
func NewEncoderForExtension(reg *Registry, ext string, sink Sink) (*Encoder, error) {
	backend, ok := reg.ResolveByExtension(ext)
	if !ok {
		return nil, fmt.Errorf("%w for extension %q", ErrNoMatchingBackend, ext)
	}
	return NewEncoder(sink, backend), nil
}

// NewEncoderForMIMEType resolves a backend from a MIME type and pairs it
// with sink.
func NewEncoderForMIMEType(reg *Registry, mime string, sink Sink) (*Encoder, error) {
	backend, ok := reg.ResolveByMIMEType(mime)
	if !ok {
		return nil, fmt.Errorf("%w for MIME type %q", ErrNoMatchingBackend, mime)
	}
	return NewEncoder(sink, backend), nil
}

// Backend returns the resolved backend.
func (e *Encoder) Backend() Backend { return e.backend }

// SetEstimatedFrames supplies the expected total frame count before Open.
// Zero means unknown. Backends that cannot proceed without the count
// reject Open with ErrMissingConfiguration.
func (e *Encoder) SetEstimatedFrames(frames int64) {
	e.estimatedFrames = frames
}

// SetLogger directs settings diagnostics to l instead of slog.Default().
func (e *Encoder) SetLogger(l *slog.Logger) {
	e.logger = l
}

// Negotiate probes src against the backend without committing resources.
func (e *Encoder) Negotiate(src Format) (Format, error) {
	return e.backend.Negotiate(src)
}

// Open negotiates src and opens a backend session. Negotiation and
// configuration errors are returned before any resource is committed.
func (e *Encoder) Open(src Format, settings Settings) error {
	switch e.state {
	case stateOpen, stateFinished:
		return ErrAlreadyOpen
	case stateClosed:
		return ErrClosed
	}
	session, err := e.backend.Open(e.sink, src, settings, OpenInfo{
		EstimatedFrames: e.estimatedFrames,
		Logger:          e.logger,
	})
	if err != nil {
		return err
	}
	e.session = session
	e.state = stateOpen
	return nil
}

// Encode forwards buf to the session. A codec or I/O error leaves the
// encoder in a defined but unusable state; the caller must Close.
func (e *Encoder) Encode(buf gaudio.Buffer) error {
	switch e.state {
	case stateUnopened:
		return ErrNotOpen
	case stateFinished:
		return ErrAlreadyFinished
	case stateClosed:
		return ErrClosed
	}
	return e.session.Encode(buf)
}

// Finish flushes trailing state. It transitions the encoder to the
// finished state even on error so a second call never reaches the
// backend.
func (e *Encoder) Finish() error {
	switch e.state {
	case stateUnopened:
		return ErrNotOpen
	case stateFinished:
		return ErrAlreadyFinished
	case stateClosed:
		return ErrClosed
	}
	e.state = stateFinished
	return e.session.Finish()
}

// Close tears down the session and closes the sink. Every teardown step
// runs regardless of earlier failures; the first error is returned.
// Close is idempotent and safe to call at any time.
func (e *Encoder) Close() error {
	if e.state == stateClosed {
		return nil
	}
	var first error
	if e.session != nil {
		first = e.session.Close()
		e.session = nil
	}
	if err := e.sink.Close(); err != nil && first == nil {
		first = fmt.Errorf("%w: %w", ErrSink, err)
	}
	e.state = stateClosed
	return first
}

// Position returns the number of frames accepted so far, 0 before Open.
func (e *Encoder) Position() int64 {
	if e.session == nil {
		return 0
	}
	return e.session.Position()
}

// ProcessingFormat returns the session's negotiated processing format.
// The zero Format is returned before Open.
func (e *Encoder) ProcessingFormat() Format {
	if e.session == nil {
		return Format{}
	}
	return e.session.ProcessingFormat()
}

// OutputFormat returns the session's output format descriptor.
func (e *Encoder) OutputFormat() Format {
	if e.session == nil {
		return Format{}
	}
	return e.session.OutputFormat()
}
