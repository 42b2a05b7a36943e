package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/hupe1980/gridex/blobstore"
	"github.com/minio/minio-go/v7"
)

const contentType = "application/vnd.gridex.index"

// Store keeps blobs as objects of one bucket, under an optional key prefix.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewStore returns a store over bucket. Blob names are joined to prefix to
// form object keys.
func NewStore(client *minio.Client, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// EnsureBucket creates the bucket unless it exists.
func (s *Store) EnsureBucket(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("blobstore/minio: bucket %q: %w", s.bucket, err)
	}
	if ok {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("blobstore/minio: create bucket %q: %w", s.bucket, err)
	}
	return nil
}

func (s *Store) objectKey(name string) string {
	return path.Join(s.prefix, name)
}

// missing reports whether err is the server saying the object is absent.
func missing(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

// Put uploads data as a single object.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.objectKey(name), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("blobstore/minio: put %s: %w", name, err)
	}
	return nil
}

// Get downloads the object behind name.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.objectKey(name), minio.GetObjectOptions{})
	if err == nil {
		defer obj.Close()
		// The request is only sent on the first read.
		var data []byte
		if data, err = io.ReadAll(obj); err == nil {
			return data, nil
		}
	}
	if missing(err) {
		return nil, fmt.Errorf("blobstore/minio: %s: %w", name, blobstore.ErrNotFound)
	}
	return nil, fmt.Errorf("blobstore/minio: get %s: %w", name, err)
}

// Delete removes the object behind name. Removing an absent object succeeds.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.objectKey(name), minio.RemoveObjectOptions{})
	if err != nil && !missing(err) {
		return fmt.Errorf("blobstore/minio: delete %s: %w", name, err)
	}
	return nil
}

// List returns the sorted names of all blobs starting with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	keyPrefix := s.prefix
	if keyPrefix != "" {
		keyPrefix += "/"
	}
	keyPrefix += prefix

	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: keyPrefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("blobstore/minio: list %q: %w", prefix, obj.Err)
		}
		name := strings.TrimPrefix(strings.TrimPrefix(obj.Key, s.prefix), "/")
		if name != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}
