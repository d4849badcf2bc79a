// SPDX-License-Identifier: EPL-2.0

package ogg

import "encoding/binary"

// Vendor identifies this implementation in the vendor field of the
// comment headers it writes.
const Vendor = "SFBAudioEngine"

// CommentPayload builds a Vorbis-comment-style metadata payload: a
// 4-byte little-endian vendor length, the vendor string, and a 4-byte
// little-endian user comment count. The framework adds no user comments,
// so the count is always zero.
//
// Codec backends wrap this payload in their own framing (the "OpusTags"
// magic, the FLAC VORBIS_COMMENT metadata block header).
func CommentPayload(vendor string) []byte {
	out := make([]byte, 0, 8+len(vendor))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(vendor)))
	out = append(out, vendor...)
	out = binary.LittleEndian.AppendUint32(out, 0)
	return out
}
