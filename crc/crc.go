// Package crc computes the 16-bit checksums reserved by spec.md §3 for the
// block header and the data-page CRC fields. Spec.md §9 recommends a real
// CRC-16 "polynomial to be chosen by the implementation; document the
// choice." No CRC-16 package appears anywhere in the retrieval pack; the
// closest real precedent is SimonWaldherr-tinySQL's page pager and
// scigolib-hdf5's superblock reader, both of which checksum their on-disk
// pages with the standard library's hash/crc32 (Castagnoli table). This
// package follows that precedent and truncates the 32-bit checksum to the
// 16-bit field the on-disk format allocates.
package crc

import "hash/crc32"

var table = crc32.MakeTable(crc32.Castagnoli)

// Checksum16 returns the low 16 bits of the CRC-32C checksum of p.
func Checksum16(p []byte) uint16 {
	return uint16(crc32.Checksum(p, table) & 0xFFFF)
}
