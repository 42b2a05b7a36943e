package grid

import (
	"errors"
	"fmt"

	"github.com/hupe1980/gridex/coord"
)

var (
	// ErrZeroLocator is returned when a record is added with locator 0,
	// which is reserved for empty cells.
	ErrZeroLocator = errors.New("grid: locator 0 is reserved for empty cells")

	// ErrBuilt is returned when a Builder is used after Build.
	ErrBuilt = errors.New("grid: builder already built")
)

// CollisionError reports two records resolving to the same cell, an
// ambiguous coordinate combination. It usually means a duplicate source
// record.
type CollisionError struct {
	Flat     int
	Tuple    coord.Tuple
	Existing int
	Incoming int
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("grid: ambiguous coordinate combination %s at cell %d: locators %d and %d",
		e.Tuple, e.Flat, e.Existing, e.Incoming)
}

// UnknownValueError reports a tuple value that is not on its axis. The axes
// were built from a different record set than the one being indexed.
type UnknownValueError struct {
	Axis  string
	Value coord.Value
}

func (e *UnknownValueError) Error() string {
	return fmt.Sprintf("grid: value %s is not on axis %q", e.Value, e.Axis)
}

// TupleLengthError reports a tuple whose length differs from the rank.
type TupleLengthError struct {
	Expected int
	Actual   int
}

func (e *TupleLengthError) Error() string {
	return fmt.Sprintf("grid: tuple length mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// RankMismatchError reports a reindex between grids whose axis count or
// axis kind sequence differ.
type RankMismatchError struct {
	Prev []coord.Kind
	Curr []coord.Kind
}

func (e *RankMismatchError) Error() string {
	return fmt.Sprintf("grid: rank mismatch: prev axes %v, curr axes %v", e.Prev, e.Curr)
}
