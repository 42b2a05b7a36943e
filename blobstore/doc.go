// Package blobstore holds published index files.
//
// A Store maps slash-separated names such as "temperature/3.gdx" to
// immutable blobs. MemoryStore and LocalStore live here; minio.Store and
// s3.Store talk to object storage, and CachingStore keeps recently read
// blobs of any of them in memory. All implementations are safe for
// concurrent use and report missing blobs as ErrNotFound.
//
// A VersionLog decides which of several concurrent publishers owns a
// version number. MemoryVersionLog serves a single process;
// s3.DDBVersionLog uses DynamoDB conditional writes.
package blobstore
