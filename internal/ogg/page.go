// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"encoding/binary"
	"errors"
)

// Page header flags.
const (
	FlagContinuation = 0x01
	FlagBOS          = 0x02
	FlagEOS          = 0x04
)

const (
	headerSize  = 27
	maxSegments = 255
	captureWord = "OggS"
)

var (
	ErrInvalidPage = errors.New("ogg: invalid page structure")
	ErrBadCRC      = errors.New("ogg: CRC mismatch")
)

// Page is a single Ogg page. The multiplexer builds pages internally;
// the parsing half exists so tests can re-read produced streams.
type Page struct {
	HeaderType   byte
	GranulePos   int64 // -1 when no packet completes on this page
	SerialNumber uint32
	PageSequence uint32
	Segments     []byte
	Payload      []byte
}

func (p *Page) IsBOS() bool          { return p.HeaderType&FlagBOS != 0 }
func (p *Page) IsEOS() bool          { return p.HeaderType&FlagEOS != 0 }
func (p *Page) IsContinuation() bool { return p.HeaderType&FlagContinuation != 0 }

// CompletedPacketLengths returns the lengths of packets that end on this
// page. A trailing run of 255-valued segments belongs to a packet that
// continues on the next page and is not reported.
func (p *Page) CompletedPacketLengths() []int {
	var lengths []int
	current := 0
	for _, seg := range p.Segments {
		current += int(seg)
		if seg < 255 {
			lengths = append(lengths, current)
			current = 0
		}
	}
	return lengths
}

// Encode serializes the page, computing the CRC over the whole page with
// the CRC field zeroed.
func (p *Page) Encode() []byte {
	size := headerSize + len(p.Segments) + len(p.Payload)
	data := make([]byte, size)

	copy(data[0:4], captureWord)
	data[4] = 0 // stream structure version
	data[5] = p.HeaderType
	binary.LittleEndian.PutUint64(data[6:14], uint64(p.GranulePos))
	binary.LittleEndian.PutUint32(data[14:18], p.SerialNumber)
	binary.LittleEndian.PutUint32(data[18:22], p.PageSequence)
	data[26] = byte(len(p.Segments))
	copy(data[27:], p.Segments)
	copy(data[headerSize+len(p.Segments):], p.Payload)

	crc := crcUpdate(0, data)
	binary.LittleEndian.PutUint32(data[22:26], crc)
	return data
}

// ParsePage parses one page from data, returning the page and the number
// of bytes consumed.
func ParsePage(data []byte) (*Page, int, error) {
	if len(data) < headerSize {
		return nil, 0, ErrInvalidPage
	}
	if string(data[0:4]) != captureWord || data[4] != 0 {
		return nil, 0, ErrInvalidPage
	}

	p := &Page{
		HeaderType:   data[5],
		GranulePos:   int64(binary.LittleEndian.Uint64(data[6:14])),
		SerialNumber: binary.LittleEndian.Uint32(data[14:18]),
		PageSequence: binary.LittleEndian.Uint32(data[18:22]),
	}
	storedCRC := binary.LittleEndian.Uint32(data[22:26])

	numSegments := int(data[26])
	if len(data) < headerSize+numSegments {
		return nil, 0, ErrInvalidPage
	}
	p.Segments = append([]byte(nil), data[27:27+numSegments]...)

	payloadSize := 0
	for _, seg := range p.Segments {
		payloadSize += int(seg)
	}
	total := headerSize + numSegments + payloadSize
	if len(data) < total {
		return nil, 0, ErrInvalidPage
	}
	p.Payload = append([]byte(nil), data[headerSize+numSegments:total]...)

	check := append([]byte(nil), data[:total]...)
	check[22], check[23], check[24], check[25] = 0, 0, 0, 0
	if crcUpdate(0, check) != storedCRC {
		return nil, 0, ErrBadCRC
	}
	return p, total, nil
}

// ParsePages parses every page in data.
func ParsePages(data []byte) ([]*Page, error) {
	var pages []*Page
	for len(data) > 0 {
		p, n, err := ParsePage(data)
		if err != nil {
			return pages, err
		}
		pages = append(pages, p)
		data = data[n:]
	}
	return pages, nil
}
