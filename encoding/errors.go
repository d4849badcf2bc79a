// SPDX-License-Identifier: EPL-2.0

package encoding

import "errors"

// Error taxonomy for the framework. Concrete failures wrap one of these
// sentinels so callers can classify with errors.Is.
var (
	// ErrNoMatchingBackend is returned when no registered backend claims the
	// requested extension, MIME type, or name.
	ErrNoMatchingBackend = errors.New("no matching encoder backend")

	// ErrFormatNotSupported is returned by negotiation when a backend cannot
	// consume the supplied source format.
	ErrFormatNotSupported = errors.New("format not supported")

	// ErrFormatMismatch is returned by Encode when the buffer does not match
	// the session's negotiated processing format. This is a caller
	// programming error, distinct from codec failures.
	ErrFormatMismatch = errors.New("buffer does not match processing format")

	// ErrMissingConfiguration is returned when a backend requires information
	// the caller did not supply and cannot proceed safely.
	ErrMissingConfiguration = errors.New("missing required configuration")

	// ErrCodec wraps failures reported by a wrapped codec library.
	ErrCodec = errors.New("codec error")

	// ErrSink wraps sink read/write/seek failures, including short writes.
	ErrSink = errors.New("sink I/O error")
)

// Encoder state errors.
var (
	ErrNotOpen         = errors.New("encoder is not open")
	ErrAlreadyOpen     = errors.New("encoder is already open")
	ErrAlreadyFinished = errors.New("encoder is already finished")
	ErrClosed          = errors.New("encoder is closed")
)
