// Package model defines payload types shared by collections, index files and
// tools.
//
//   - FileID: identifier of a source data file within a collection (uint32)
//   - Ref: physical address of one record (FileID, Offset, Length)
//
// Ref is the payload most collections store per cell: it is small, encodes
// compactly with every codec and is all a reader needs to fetch the record.
package model
