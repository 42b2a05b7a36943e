package gridex

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAxes is returned when a collection is declared without axes.
	ErrNoAxes = errors.New("gridex: collection has no axes")

	// ErrNilScanner is returned when a build is started without a scanner.
	ErrNilScanner = errors.New("gridex: nil scanner")

	// ErrTooManyRecords is returned when a scan yields more records than
	// WithMaxRecords allows.
	ErrTooManyRecords = errors.New("gridex: too many records")
)

// PartitionError reports the partition a BuildPartitions failure came from.
//
// The underlying error can be accessed via errors.Unwrap.
type PartitionError struct {
	Partition string
	cause     error
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("gridex: partition %q: %v", e.Partition, e.cause)
}

func (e *PartitionError) Unwrap() error { return e.cause }
