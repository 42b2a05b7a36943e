package blobstore

import (
	"context"
	"errors"
	"os"
)

var (
	// ErrNotFound is returned when a blob does not exist.
	//
	// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
	// The default maps to `os.ErrNotExist`.
	ErrNotFound = os.ErrNotExist

	// ErrConflict is returned by VersionLog.Commit when the version was
	// already committed by another writer.
	ErrConflict = errors.New("blobstore: version already committed")
)

// Store holds immutable blobs (index files) under slash-separated names.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put writes a blob atomically, replacing any blob of the same name.
	Put(ctx context.Context, name string, data []byte) error
	// Get reads a whole blob.
	Get(ctx context.Context, name string) ([]byte, error)
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// VersionLog records which versions of a key have been committed. It gives
// writers sharing a Store the compare-and-swap object stores lack: exactly
// one Commit of a given version succeeds.
type VersionLog interface {
	// Latest returns the highest committed version of key, or 0.
	Latest(ctx context.Context, key string) (uint64, error)
	// Commit records version for key. It fails with ErrConflict if that
	// version is already committed.
	Commit(ctx context.Context, key string, version uint64) error
}
