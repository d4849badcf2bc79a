// SPDX-License-Identifier: EPL-2.0

// Package ogg implements the Ogg container multiplexing shared by the
// Ogg-encapsulated encoder backends (RFC 3533 page framing).
//
// A Stream welds codec packets into pages: each page carries a 27-byte
// header with the "OggS" capture pattern, a segment table (packets are
// laced into segments of up to 255 bytes; a value below 255 terminates a
// packet), the payload, and a CRC-32 over the whole page computed with
// polynomial 0x04C11DB7 — not the IEEE polynomial, so hash/crc32 cannot
// be used.
//
// Packets accumulate until a page reaches its natural size, at which
// point it is written out ("pageout" semantics). Flush and FlushEOS emit
// everything pending even when the page is under-full; the end-of-stream
// page must use flush semantics because a page withheld at stream end is
// lost forever.
//
// The granule position stored in a page header is the total number of
// final decoded samples represented by all packets completed on the page,
// already adjusted by the backend for any codec lookahead. A page on
// which no packet completes carries the reserved value -1 (all ones).
package ogg
