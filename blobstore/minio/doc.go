// Package minio stores gridex index files in MinIO or any other
// S3-compatible server reachable through minio-go.
//
// Names map to object keys under an optional root prefix:
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4(accessKey, secretKey, ""),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := minioblob.NewStore(client, "forecasts", "indexes")
//	pub := indexfile.NewPublisher[model.Ref](store, "temperature")
//
// The bucket must exist. Missing objects are reported as
// blobstore.ErrNotFound.
package minio
