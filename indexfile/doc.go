// Package indexfile encodes built grids into self-describing binary index
// files and publishes them to a blobstore.Store.
//
// # File Layout
//
// All integers are little-endian.
//
//	header   magic "GDX1" | version u16 | compression u8 | codec name length u8 |
//	         body length u64 | CRC32 of body u32 | reserved u32
//	codec    codec name bytes
//	body     block header (uncompressed size u32, stored size u32) | block
//
// The uncompressed block holds, in order: the axes (kind, name, unit and
// values in index order), the axis sizes, the occupancy bitmap of the track
// (roaring), the locators of the populated cells as varints in ascending flat
// order and finally the payloads of those cells encoded with the codec.
//
// Empty cells cost nothing beyond their bit in the occupancy bitmap, so an
// index file stays proportional to the number of populated cells.
package indexfile
