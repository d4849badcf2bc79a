// SPDX-License-Identifier: EPL-2.0

package ogg

// Ogg CRC-32, polynomial 0x04C11DB7, no reflection, zero init, zero xorout.

var crcTable [256]uint32

func init() {
	const poly = uint32(0x04C11DB7)
	for i := range crcTable {
		crc := uint32(i) << 24
		for bit := 0; bit < 8; bit++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		crcTable[i] = crc
	}
}

func crcUpdate(crc uint32, data []byte) uint32 {
	for _, b := range data {
		crc = (crc << 8) ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}
