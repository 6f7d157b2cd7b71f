package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/knnspace/blobstore"
)

// CurrentPointer is the blob name DDBCommitStore serves from DynamoDB.
const CurrentPointer = "CURRENT"

// DDBCommitStore implements blobstore.BlobStore backed by S3 with DynamoDB
// for atomic updates of the CURRENT pointer.
//
// State documents are written to S3 under unique names. Publishing a
// document appends a new version to a DynamoDB commit log with a
// conditional write, so two concurrent publishers never both win.
//
// Table schema:
//   - Partition key: base_uri (string) - the S3 prefix/path
//   - Sort key: version (number) - monotonically increasing version
//   - pointer (binary) - the CURRENT content of that version
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name knnspace-commits \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBCommitStore struct {
	s3Store   blobstore.BlobStore
	ddbClient DDBClient
	tableName string
	baseURI   string
}

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

var (
	_ DDBClient           = (*dynamodb.Client)(nil)
	_ blobstore.Committer = (*DDBCommitStore)(nil)
)

// ErrConcurrentModification is returned when a concurrent publish won the version.
// It matches blobstore.ErrConflict.
var ErrConcurrentModification = fmt.Errorf("concurrent modification detected: %w", blobstore.ErrConflict)

// NewDDBCommitStore creates a new S3+DynamoDB commit store.
// The baseURI ("s3://bucket/prefix") is used as partition key.
func NewDDBCommitStore(s3Store blobstore.BlobStore, ddbClient DDBClient, tableName, baseURI string) *DDBCommitStore {
	return &DDBCommitStore{
		s3Store:   s3Store,
		ddbClient: ddbClient,
		tableName: tableName,
		baseURI:   baseURI,
	}
}

// Open opens a blob for reading. CURRENT is served from the commit log.
func (s *DDBCommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if name != CurrentPointer {
		return s.s3Store.Open(ctx, name)
	}
	c, err := s.LatestCommit(ctx)
	if err != nil {
		return nil, err
	}
	if c.Version == 0 {
		return nil, blobstore.ErrNotFound
	}
	return blobstore.NewBytesBlob(c.Pointer), nil
}

// Put writes a blob. CURRENT is committed with a DynamoDB conditional write.
func (s *DDBCommitStore) Put(ctx context.Context, name string, data []byte) error {
	if name != CurrentPointer {
		return s.s3Store.Put(ctx, name, data)
	}
	c, err := s.LatestCommit(ctx)
	if err != nil {
		return err
	}
	return s.commit(ctx, c.Version+1, data)
}

// Commit commits CURRENT at an explicit version. Unlike Put it fails when
// version is not past the latest commit, so a publisher that read a stale
// CURRENT cannot replace a newer one.
func (s *DDBCommitStore) Commit(ctx context.Context, name string, version uint64, data []byte) error {
	if name != CurrentPointer {
		return fmt.Errorf("commit %s: only %s is versioned", name, CurrentPointer)
	}
	c, err := s.LatestCommit(ctx)
	if err != nil {
		return err
	}
	if version <= c.Version {
		return fmt.Errorf("%w: version %d, latest %d", ErrConcurrentModification, version, c.Version)
	}
	return s.commit(ctx, version, data)
}

// Delete deletes a blob. Commits are never deleted.
func (s *DDBCommitStore) Delete(ctx context.Context, name string) error {
	return s.s3Store.Delete(ctx, name)
}

// List lists blobs with prefix. CURRENT is not listed.
func (s *DDBCommitStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.s3Store.List(ctx, prefix)
}

// Commit is one entry of the commit log.
type Commit struct {
	// Version counts commits under the base URI, starting at 1.
	// Zero means nothing was committed yet.
	Version uint64
	// Pointer is the CURRENT content written by that commit.
	Pointer []byte
}

// LatestCommit returns the newest entry of the commit log.
func (s *DDBCommitStore) LatestCommit(ctx context.Context) (Commit, error) {
	resp, err := s.ddbClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.baseURI},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return Commit{}, fmt.Errorf("query commit log: %w", err)
	}
	if len(resp.Items) == 0 {
		return Commit{}, nil
	}
	return parseCommit(resp.Items[0])
}

func parseCommit(item map[string]types.AttributeValue) (Commit, error) {
	v, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return Commit{}, errors.New("commit log: missing version attribute")
	}
	p, ok := item["pointer"].(*types.AttributeValueMemberB)
	if !ok {
		return Commit{}, errors.New("commit log: missing pointer attribute")
	}
	n, err := strconv.ParseUint(v.Value, 10, 64)
	if err != nil {
		return Commit{}, fmt.Errorf("commit log: version %q: %w", v.Value, err)
	}
	return Commit{Version: n, Pointer: p.Value}, nil
}

// commit appends version. It fails with ErrConcurrentModification when another
// publisher already took it.
func (s *DDBCommitStore) commit(ctx context.Context, version uint64, pointer []byte) error {
	_, err := s.ddbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"base_uri": &types.AttributeValueMemberS{Value: s.baseURI},
			"version":  &types.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
			"pointer":  &types.AttributeValueMemberB{Value: pointer},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	var condErr *types.ConditionalCheckFailedException
	switch {
	case errors.As(err, &condErr):
		return fmt.Errorf("%w: version %d", ErrConcurrentModification, version)
	case err != nil:
		return fmt.Errorf("commit version %d: %w", version, err)
	}
	return nil
}
