// Package s3 stores gridex index files in Amazon S3 and claims publication
// versions in DynamoDB.
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "forecasts", "indexes")
//	versions := s3.NewDDBVersionLog(dynamodb.NewFromConfig(cfg), "gridex-versions", "forecasts/indexes")
//	pub := indexfile.NewPublisher[model.Ref](store, "temperature", indexfile.WithVersionLog(versions))
//
// Files at or above UploadConfig.PartSize go through the multipart
// uploader. The version table needs a string partition key "key" and a
// number sort key "version".
package s3
