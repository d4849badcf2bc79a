// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"errors"
	"math/rand"

	"github.com/sbooth/SFBAudioEngine-sub013/encoding"
)

// targetPagePayload is the natural page boundary: once a page's payload
// reaches this size the page is written out. The segment table caps a
// page's payload at 255*255 bytes, so pages stay well inside the 64 KiB
// container limit.
const targetPagePayload = 4096

// ErrStreamEnded is returned when a packet is written after FlushEOS.
var ErrStreamEnded = errors.New("ogg: stream already ended")

// Stream multiplexes codec packets into Ogg pages written to a sink.
// One Stream corresponds to one logical bitstream; it is created during
// a backend's open, fed during encode and finish, and discarded at close.
type Stream struct {
	sink    encoding.Sink
	serial  uint32
	pageSeq uint32

	lacing  []byte
	payload []byte
	// pageGranule is the granule of the last packet completed on the
	// page under construction, -1 while none has.
	pageGranule int64
	// pageContinued is set when the page under construction begins in
	// the middle of a packet.
	pageContinued bool
	ended         bool
}

// NewStream creates a stream with a process-random serial number writing
// to sink. Serial collisions across concurrently produced files are
// tolerated; the serial only disambiguates multiplexed logical streams
// within one physical stream, and this framework writes exactly one.
func NewStream(sink encoding.Sink) *Stream {
	return &Stream{
		sink:        sink,
		serial:      rand.Uint32(),
		lacing:      make([]byte, 0, maxSegments),
		payload:     make([]byte, 0, targetPagePayload),
		pageGranule: -1,
	}
}

// Serial returns the bitstream serial number.
func (s *Stream) Serial() uint32 { return s.serial }

// PageCount returns the number of pages written so far.
func (s *Stream) PageCount() uint32 { return s.pageSeq }

// WriteHeaderPacket submits a header packet and flushes it immediately.
// The first page of the stream carries the beginning-of-stream flag;
// header pages carry granule position 0.
func (s *Stream) WriteHeaderPacket(p []byte) error {
	if err := s.WritePacket(p, 0); err != nil {
		return err
	}
	return s.Flush()
}

// WritePacket submits a codec packet with its granule position. Pages
// are written out only when they reach their natural size ("pageout"
// semantics); an under-full page is retained until the next packet or an
// explicit flush.
func (s *Stream) WritePacket(p []byte, granule int64) error {
	if s.ended {
		return ErrStreamEnded
	}

	rem := p
	for {
		seg := min(len(rem), 255)
		if len(s.lacing) == maxSegments {
			// Page is at segment capacity mid-packet; emit and continue
			// lacing on a continuation page.
			if err := s.emit(0); err != nil {
				return err
			}
			s.pageContinued = true
		}
		s.lacing = append(s.lacing, byte(seg))
		s.payload = append(s.payload, rem[:seg]...)
		rem = rem[seg:]
		if seg < 255 {
			// A lacing value below 255 terminates the packet. An exact
			// multiple of 255 gets a trailing zero segment on the next
			// iteration.
			break
		}
	}
	s.pageGranule = granule

	if len(s.payload) >= targetPagePayload {
		return s.emit(0)
	}
	return nil
}

// Flush writes out any pending page even if it is under-full.
func (s *Stream) Flush() error {
	if len(s.lacing) == 0 {
		return nil
	}
	return s.emit(0)
}

// FlushEOS terminates the stream: all pending packets are emitted even
// if the final page is under-full, the last page carries the
// end-of-stream flag, and its granule position is forced to granule
// (which the backend has already clamped to the real frame position).
// A stream with nothing pending still emits an empty end-of-stream page.
func (s *Stream) FlushEOS(granule int64) error {
	if s.ended {
		return ErrStreamEnded
	}
	s.pageGranule = granule
	if err := s.emit(FlagEOS); err != nil {
		return err
	}
	s.ended = true
	return nil
}

func (s *Stream) emit(flags byte) error {
	if s.pageSeq == 0 {
		flags |= FlagBOS
	}
	if s.pageContinued {
		flags |= FlagContinuation
	}

	page := &Page{
		HeaderType:   flags,
		GranulePos:   s.pageGranule,
		SerialNumber: s.serial,
		PageSequence: s.pageSeq,
		Segments:     s.lacing,
		Payload:      s.payload,
	}
	if err := encoding.WriteAll(s.sink, page.Encode()); err != nil {
		return err
	}

	s.pageSeq++
	s.lacing = s.lacing[:0]
	s.payload = s.payload[:0]
	s.pageGranule = -1
	s.pageContinued = false
	return nil
}
