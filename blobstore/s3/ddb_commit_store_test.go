package s3

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/knnspace/blobstore"
	"github.com/hupe1980/knnspace/clusterstate"
	"github.com/hupe1980/knnspace/version"
)

// mockDDBClient is an in-memory DynamoDB mock for testing.
type mockDDBClient struct {
	mu    sync.RWMutex
	items map[string]map[string]types.AttributeValue
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{
		items: make(map[string]map[string]types.AttributeValue),
	}
}

func (m *mockDDBClient) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	baseURI := params.Item["base_uri"].(*types.AttributeValueMemberS).Value
	version := params.Item["version"].(*types.AttributeValueMemberN).Value
	key := baseURI + ":" + version

	if aws.ToString(params.ConditionExpression) == "attribute_not_exists(version)" {
		if _, exists := m.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}

	m.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	baseURI := params.ExpressionAttributeValues[":uri"].(*types.AttributeValueMemberS).Value

	var items []map[string]types.AttributeValue
	for _, item := range m.items {
		if item["base_uri"].(*types.AttributeValueMemberS).Value == baseURI {
			items = append(items, item)
		}
	}

	version := func(item map[string]types.AttributeValue) uint64 {
		v, _ := strconv.ParseUint(item["version"].(*types.AttributeValueMemberN).Value, 10, 64)
		return v
	}
	slices.SortFunc(items, func(a, b map[string]types.AttributeValue) int {
		return int(version(b)) - int(version(a))
	})

	if params.Limit != nil && int(*params.Limit) < len(items) {
		items = items[:*params.Limit]
	}

	return &dynamodb.QueryOutput{Items: items}, nil
}

func newTestDDBCommitStore(ddb *mockDDBClient, baseURI string) *DDBCommitStore {
	return NewDDBCommitStore(blobstore.NewMemoryStore(), ddb, "knnspace-commits", baseURI)
}

func readPointer(t *testing.T, store *DDBCommitStore) string {
	t.Helper()
	data, err := blobstore.ReadAll(context.Background(), store, CurrentPointer)
	require.NoError(t, err)
	return string(data)
}

func TestDDBCommitStore_FirstCommit(t *testing.T) {
	ctx := context.Background()
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test/")

	require.NoError(t, store.Put(ctx, CurrentPointer, []byte("state-00001.bin")))
	assert.Equal(t, "state-00001.bin", readPointer(t, store))

	c, err := store.LatestCommit(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), c.Version)
	assert.Equal(t, "state-00001.bin", string(c.Pointer))
}

func TestDDBCommitStore_MultipleCommits(t *testing.T) {
	ctx := context.Background()
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test/")

	for i := 1; i <= 12; i++ {
		require.NoError(t, store.Put(ctx, CurrentPointer, []byte(fmt.Sprintf("state-%05d.bin", i))))
	}

	assert.Equal(t, "state-00012.bin", readPointer(t, store))
}

func TestDDBCommitStore_ConcurrentCommits(t *testing.T) {
	ctx := context.Background()
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test/")

	require.NoError(t, store.Put(ctx, CurrentPointer, []byte("state-00001.bin")))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := range 5 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			err := store.Put(ctx, CurrentPointer, []byte(fmt.Sprintf("state-%05d.bin", id+2)))
			if err != nil && !errors.Is(err, ErrConcurrentModification) {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Positive(t, successes, "at least one writer should succeed")
}

func TestDDBCommitStore_CommitRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test/")

	require.NoError(t, store.Commit(ctx, CurrentPointer, 1, []byte("state-00001.bin")))
	require.NoError(t, store.Commit(ctx, CurrentPointer, 2, []byte("state-00002.bin")))

	// A publisher that read version 1 as current must not replace version 2.
	err := store.Commit(ctx, CurrentPointer, 2, []byte("stale.bin"))
	assert.ErrorIs(t, err, ErrConcurrentModification)
	assert.ErrorIs(t, err, blobstore.ErrConflict)
	err = store.Commit(ctx, CurrentPointer, 1, []byte("older.bin"))
	assert.ErrorIs(t, err, blobstore.ErrConflict)
	assert.Equal(t, "state-00002.bin", readPointer(t, store))

	err = store.Commit(ctx, "state-00003.bin", 3, []byte("doc"))
	assert.ErrorContains(t, err, "only CURRENT is versioned")
}

func TestDDBCommitStore_NotFoundBeforeCommit(t *testing.T) {
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test/")

	_, err := store.Open(context.Background(), CurrentPointer)
	require.ErrorIs(t, err, blobstore.ErrNotFound)

	c, err := store.LatestCommit(context.Background())
	require.NoError(t, err)
	assert.Zero(t, c.Version)
}

func TestDDBCommitStore_MalformedItem(t *testing.T) {
	ddb := newMockDDBClient()
	ddb.items["s3://b/p/:1"] = map[string]types.AttributeValue{
		"base_uri": &types.AttributeValueMemberS{Value: "s3://b/p/"},
		"version":  &types.AttributeValueMemberN{Value: "1"},
	}
	store := newTestDDBCommitStore(ddb, "s3://b/p/")

	_, err := store.LatestCommit(context.Background())
	assert.ErrorContains(t, err, "pointer")
}

func TestDDBCommitStore_PublishesClusterState(t *testing.T) {
	ctx := context.Background()
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/state/")
	p := clusterstate.NewDocumentProvider(store)

	require.NoError(t, p.Publish(ctx, &clusterstate.Document{
		Nodes: map[string]version.Version{"n1": version.V2_19_0},
	}))
	require.NoError(t, p.Publish(ctx, &clusterstate.Document{
		Nodes: map[string]version.Version{"n1": version.V3_0_0},
	}))

	c, err := store.LatestCommit(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), c.Version)

	got, err := p.NodeVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []version.Version{version.V3_0_0}, got)
}

func TestDDBCommitStore_IsolatedNamespaces(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()

	store1 := newTestDDBCommitStore(ddb, "s3://bucket-a/path/")
	store2 := newTestDDBCommitStore(ddb, "s3://bucket-b/path/")

	require.NoError(t, store1.Put(ctx, CurrentPointer, []byte("state-A.bin")))
	require.NoError(t, store2.Put(ctx, CurrentPointer, []byte("state-B.bin")))

	assert.Equal(t, "state-A.bin", readPointer(t, store1))
	assert.Equal(t, "state-B.bin", readPointer(t, store2))
}

func TestDDBCommitStore_DelegatesDocuments(t *testing.T) {
	ctx := context.Background()
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test/")

	require.NoError(t, store.Put(ctx, "state-00001.bin", []byte("doc")))
	names, err := store.List(ctx, "state-")
	require.NoError(t, err)
	assert.Equal(t, []string{"state-00001.bin"}, names)

	got, err := blobstore.ReadAll(ctx, store, "state-00001.bin")
	require.NoError(t, err)
	assert.Equal(t, "doc", string(got))

	require.NoError(t, store.Delete(ctx, "state-00001.bin"))
	_, err = store.Open(ctx, "state-00001.bin")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
