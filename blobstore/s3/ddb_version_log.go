package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/gridex/blobstore"
)

// DDBVersionLog implements blobstore.VersionLog with DynamoDB conditional
// writes, so publishers on different hosts can share one bucket.
//
// Table schema:
//   - Partition key: key (string) - the collection the versions belong to
//   - Sort key: version (number) - monotonically increasing version
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name gridex-versions \
//	  --attribute-definitions AttributeName=key,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=key,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBVersionLog struct {
	client    DDBClient
	tableName string
	namespace string
}

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// NewDDBVersionLog creates a version log on tableName. namespace is
// prepended to every key so several stores can share a table; it is
// typically "s3://bucket/prefix".
func NewDDBVersionLog(client DDBClient, tableName, namespace string) *DDBVersionLog {
	return &DDBVersionLog{
		client:    client,
		tableName: tableName,
		namespace: namespace,
	}
}

func (l *DDBVersionLog) partition(key string) string {
	return l.namespace + "/" + key
}

// Latest returns the highest version claimed for key, or 0.
func (l *DDBVersionLog) Latest(ctx context.Context, key string) (uint64, error) {
	resp, err := l.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(l.tableName),
		KeyConditionExpression: aws.String("#k = :key"),
		ExpressionAttributeNames: map[string]string{
			"#k": "key",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":key": &types.AttributeValueMemberS{Value: l.partition(key)},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, fmt.Errorf("blobstore/s3: query versions of %q: %w", key, err)
	}

	if len(resp.Items) == 0 {
		return 0, nil
	}

	versionAttr, ok := resp.Items[0]["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("blobstore/s3: %q has no numeric version attribute", key)
	}

	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("blobstore/s3: version of %q: %w", key, err)
	}
	return version, nil
}

// Commit claims version for key. The put is conditional on the item not
// existing, so exactly one publisher wins a version.
func (l *DDBVersionLog) Commit(ctx context.Context, key string, version uint64) error {
	_, err := l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(l.tableName),
		Item: map[string]types.AttributeValue{
			"key":     &types.AttributeValueMemberS{Value: l.partition(key)},
			"version": &types.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
			"claimed": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return blobstore.ErrConflict
		}
		return fmt.Errorf("blobstore/s3: claim version %d of %q: %w", version, key, err)
	}
	return nil
}
