// SPDX-License-Identifier: EPL-2.0

package encoding

import (
	"fmt"
	"io"
	"os"
)

// Sink is the byte destination an encoder session writes to. The
// framework issues writes synchronously in the order data becomes ready
// and never retains more than one outstanding write.
//
// Offsets are absolute from the start of the sink.
type Sink interface {
	Write(p []byte) (int, error)
	Close() error

	// SupportsSeeking reports whether Seek may be used. Backends that
	// patch a header at finish consult this before attempting a rewrite.
	SupportsSeeking() bool
	// Seek repositions the write offset. Only valid when SupportsSeeking
	// returns true.
	Seek(offset int64) error
	// Offset returns the current write offset.
	Offset() (int64, error)
	// Length returns the total number of bytes in the sink.
	Length() (int64, error)
}

// WriteAll writes p to s in full. A short write with a nil error is a
// fatal I/O error for the session; the framework never assumes
// write-all-or-nothing.
func WriteAll(s Sink, p []byte) error {
	n, err := s.Write(p)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSink, err)
	}
	if n != len(p) {
		return fmt.Errorf("%w: short write (%d of %d bytes)", ErrSink, n, len(p))
	}
	return nil
}

// FileSink writes to a file and supports seeking.
type FileSink struct {
	f *os.File
}

// NewFileSink creates (or truncates) the file at path.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSink, err)
	}
	return &FileSink{f: f}, nil
}

func (s *FileSink) Write(p []byte) (int, error) { return s.f.Write(p) }
func (s *FileSink) Close() error                { return s.f.Close() }
func (s *FileSink) SupportsSeeking() bool       { return true }

func (s *FileSink) Seek(offset int64) error {
	_, err := s.f.Seek(offset, io.SeekStart)
	return err
}

func (s *FileSink) Offset() (int64, error) {
	return s.f.Seek(0, io.SeekCurrent)
}

func (s *FileSink) Length() (int64, error) {
	fi, err := s.f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// WriterSink adapts an arbitrary io.Writer into a non-seekable Sink.
// Close closes the writer when it implements io.Closer.
type WriterSink struct {
	w   io.Writer
	off int64
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	s.off += int64(n)
	return n, err
}

func (s *WriterSink) Close() error {
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *WriterSink) SupportsSeeking() bool    { return false }
func (s *WriterSink) Seek(int64) error         { return fmt.Errorf("%w: sink is not seekable", ErrSink) }
func (s *WriterSink) Offset() (int64, error)   { return s.off, nil }
func (s *WriterSink) Length() (int64, error)   { return s.off, nil }

// MemorySink is a seekable in-memory Sink.
type MemorySink struct {
	buf []byte
	off int64
}

func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) Write(p []byte) (int, error) {
	end := s.off + int64(len(p))
	if end > int64(len(s.buf)) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	copy(s.buf[s.off:end], p)
	s.off = end
	return len(p), nil
}

func (s *MemorySink) Close() error          { return nil }
func (s *MemorySink) SupportsSeeking() bool { return true }

func (s *MemorySink) Seek(offset int64) error {
	if offset < 0 {
		return fmt.Errorf("%w: negative offset %d", ErrSink, offset)
	}
	s.off = offset
	return nil
}

func (s *MemorySink) Offset() (int64, error) { return s.off, nil }
func (s *MemorySink) Length() (int64, error) { return int64(len(s.buf)), nil }

// Bytes returns the accumulated contents.
func (s *MemorySink) Bytes() []byte { return s.buf }
