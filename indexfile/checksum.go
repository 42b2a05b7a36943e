package indexfile

import (
	"fmt"
	"hash/crc32"
)

// Uses CRC32 (IEEE polynomial) to detect accidental corruption of stored
// bodies. CRC32 is NOT cryptographically secure.

var crc32Table = crc32.MakeTable(crc32.IEEE)

func checksum(data []byte) uint32 {
	return crc32.Checksum(data, crc32Table)
}

// ChecksumMismatchError is returned when checksum verification fails. It
// matches ErrChecksum with errors.Is.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("indexfile: checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

func (e *ChecksumMismatchError) Is(target error) bool { return target == ErrChecksum }

func verifyChecksum(data []byte, expected uint32) error {
	if actual := checksum(data); actual != expected {
		return &ChecksumMismatchError{Expected: expected, Actual: actual}
	}
	return nil
}
