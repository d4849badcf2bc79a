// SPDX-License-Identifier: EPL-2.0

package encoding

import (
	"log/slog"

	gaudio "github.com/go-audio/audio"
)

// Backend is a concrete implementation of the encoder contract for one
// codec/container family. Implementations are stateless; all per-stream
// state lives in the Session returned by Open.
type Backend interface {
	// Name is the logical backend name, lowercase ("flac", "opus", ...).
	Name() string
	// Extensions lists the file extensions this backend claims, lowercase
	// with no leading dot.
	Extensions() []string
	// MIMETypes lists the MIME types this backend claims, lowercase.
	MIMETypes() []string

	// Negotiate validates src and derives the processing format the
	// backend's codec consumes. It is pure: it must be callable without
	// side effects before Open commits any resource, so a caller can
	// probe compatibility speculatively.
	Negotiate(src Format) (Format, error)

	// Open validates src, allocates codec state, applies recognized
	// settings, and emits any header structures the format requires.
	// A failure after partial allocation releases everything allocated
	// so far before returning.
	//
	// The session writes to sink but never closes it; the sink belongs
	// to the caller (typically the Encoder facade).
	Open(sink Sink, src Format, settings Settings, info OpenInfo) (Session, error)
}

// OpenInfo carries optional per-session information supplied by the caller.
type OpenInfo struct {
	// EstimatedFrames is the expected total frame count, 0 when unknown.
	// Backends whose container requires the count in advance reject an
	// open with a zero estimate when they cannot patch it in later.
	EstimatedFrames int64

	// Logger receives settings diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// Session is one open encoding stream. Calls must be serialized by the
// caller; sessions perform no internal locking.
type Session interface {
	// Encode consumes PCM matching the session's processing format.
	// A buffer in any other format is rejected before the codec is
	// invoked, wrapping ErrFormatMismatch.
	Encode(buf gaudio.Buffer) error

	// Finish flushes staged partial frames and emits trailing container
	// structures. It may only be called once; the Encoder facade
	// enforces this.
	Finish() error

	// Close releases codec handles and staging buffers. It is safe to
	// call at any time after Open, performs every teardown step even
	// when one fails, and returns the first error encountered.
	Close() error

	// ProcessingFormat returns the negotiated format Encode consumes.
	ProcessingFormat() Format
	// OutputFormat describes the encoded stream, informational only.
	OutputFormat() Format
	// Position returns the number of source frames accepted so far.
	// Silence synthesized internally to complete a fixed-size final
	// frame is excluded.
	Position() int64
}
