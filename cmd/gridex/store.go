package main

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/gridex/blobstore"
	gridexminio "github.com/hupe1980/gridex/blobstore/minio"
	gridexs3 "github.com/hupe1980/gridex/blobstore/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"
)

// storeFlags select where index files live. The local directory is used
// unless an S3 bucket or a MinIO endpoint is given.
type storeFlags struct {
	dir string

	s3Bucket string
	s3Prefix string

	minioEndpoint  string
	minioBucket    string
	minioAccessKey string
	minioSecretKey string
	minioSecure    bool

	ddbTable   string
	cacheBytes int64
}

func (f *storeFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.dir, "dir", ".", "Root directory of a local store.")
	pf.StringVar(&f.s3Bucket, "s3-bucket", "", "S3 bucket to use instead of a local directory.")
	pf.StringVar(&f.s3Prefix, "s3-prefix", "", "Key prefix inside the S3 bucket.")
	pf.StringVar(&f.minioEndpoint, "minio-endpoint", "", "MinIO endpoint (host:port) to use instead of a local directory.")
	pf.StringVar(&f.minioBucket, "minio-bucket", "gridex", "MinIO bucket.")
	pf.StringVar(&f.minioAccessKey, "minio-access-key", "", "MinIO access key.")
	pf.StringVar(&f.minioSecretKey, "minio-secret-key", "", "MinIO secret key.")
	pf.BoolVar(&f.minioSecure, "minio-secure", true, "Use TLS for MinIO.")
	pf.StringVar(&f.ddbTable, "ddb-table", "", "DynamoDB table that arbitrates versions between concurrent publishers.")
	pf.Int64Var(&f.cacheBytes, "cache-bytes", 0, "Keep up to this many bytes of read index files in memory (0 disables).")
}

func (f *storeFlags) open(ctx context.Context) (blobstore.Store, error) {
	s, err := f.openStore(ctx)
	if err != nil || f.cacheBytes <= 0 {
		return s, err
	}
	return blobstore.NewCachingStore(s, f.cacheBytes), nil
}

func (f *storeFlags) openStore(ctx context.Context) (blobstore.Store, error) {
	switch {
	case f.s3Bucket != "" && f.minioEndpoint != "":
		return nil, errors.New("--s3-bucket and --minio-endpoint are mutually exclusive")
	case f.s3Bucket != "":
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, err
		}
		return gridexs3.NewStore(awss3.NewFromConfig(cfg), f.s3Bucket, f.s3Prefix), nil
	case f.minioEndpoint != "":
		client, err := minio.New(f.minioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(f.minioAccessKey, f.minioSecretKey, ""),
			Secure: f.minioSecure,
		})
		if err != nil {
			return nil, err
		}
		s := gridexminio.NewStore(client, f.minioBucket, "")
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return blobstore.NewLocalStore(f.dir), nil
	}
}

// versionLog returns the DynamoDB version log, or nil without --ddb-table.
func (f *storeFlags) versionLog(ctx context.Context) (blobstore.VersionLog, error) {
	if f.ddbTable == "" {
		return nil, nil
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	namespace := f.dir
	switch {
	case f.s3Bucket != "":
		namespace = f.s3Bucket + "/" + f.s3Prefix
	case f.minioEndpoint != "":
		namespace = f.minioEndpoint + "/" + f.minioBucket
	}
	return gridexs3.NewDDBVersionLog(dynamodb.NewFromConfig(cfg), f.ddbTable, namespace), nil
}
