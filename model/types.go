package model

import (
	"fmt"
)

// FileID identifies a source data file within a collection.
type FileID uint32

// Ref locates one record inside the source files of a collection.
type Ref struct {
	File   FileID `json:"f"`
	Offset int64  `json:"o"`
	Length uint32 `json:"n"`
}

// IsZero reports whether r is the zero Ref.
func (r Ref) IsZero() bool { return r == Ref{} }

// End returns the offset just past the record.
func (r Ref) End() int64 { return r.Offset + int64(r.Length) }

// String returns a string representation of the Ref.
func (r Ref) String() string {
	return fmt.Sprintf("Ref(%d:%d+%d)", r.File, r.Offset, r.Length)
}
