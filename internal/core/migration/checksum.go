package migration

import (
	"hash/crc32"
	"unicode/utf16"
)

// Checksum computes the ledger checksum of a script.
//
// The CRC-32 (IEEE) runs over the low byte of each UTF-16 code unit of the
// content, and the result is reinterpreted as a signed 32-bit integer. This
// keeps rows compatible with ledgers written by the existing tooling; for
// ASCII content it equals the CRC-32 of the raw bytes.
func Checksum(content string) int32 {
	units := utf16.Encode([]rune(content))
	buf := make([]byte, len(units))
	for i, u := range units {
		buf[i] = byte(u)
	}
	return int32(crc32.ChecksumIEEE(buf))
}
