package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/knnspace/blobstore"
	"github.com/hupe1980/knnspace/internal/hash"
)

func TestStore_OpenErrors(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantNotFound bool
	}{
		{"not found", &types.NotFound{}, true},
		{"no such key", &types.NoSuchKey{}, true},
		{"access denied", errors.New("AccessDenied"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(objectClient)
			client.On("HeadObject", mock.Anything, headOf("cluster-state/CURRENT")).Return(nil, tt.err).Once()

			_, err := NewStore(client, "b", "cluster-state").Open(context.Background(), "CURRENT")
			require.Error(t, err)
			assert.Equal(t, tt.wantNotFound, errors.Is(err, blobstore.ErrNotFound))
			client.AssertExpectations(t)
		})
	}
}

func TestStore_OpenAndRead(t *testing.T) {
	const doc = "state-00000000000000000007.doc"
	client := new(objectClient)
	client.On("HeadObject", mock.Anything, headOf("cluster-state/"+doc)).
		Return(&s3.HeadObjectOutput{ContentLength: aws.Int64(10)}, nil).Once()
	client.On("GetObject", mock.Anything, getRange("cluster-state/"+doc, "bytes=0-9")).
		Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("0123456789"))}, nil).Once()

	got, err := blobstore.ReadAll(context.Background(), NewStore(client, "b", "cluster-state"), doc)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(got))
	client.AssertExpectations(t)
}

func TestStore_Put(t *testing.T) {
	pointer := []byte(`{"generation":1,"name":"state-1.doc","codec":"go-json"}`)

	tests := []struct {
		name     string
		prefix   string
		checksum bool
		wantKey  string
	}{
		{"checksummed", "cluster-state/", true, "cluster-state/CURRENT"},
		{"plain", "", false, "CURRENT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultUploadConfig()
			cfg.EnableChecksum = tt.checksum

			client := new(objectClient)
			client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
				return aws.ToString(in.Key) == tt.wantKey &&
					aws.ToInt64(in.ContentLength) == int64(len(pointer))
			})).Run(func(args mock.Arguments) {
				in := args.Get(1).(*s3.PutObjectInput)
				if tt.checksum {
					assert.Equal(t, hash.CRC32CBase64(pointer), aws.ToString(in.ChecksumCRC32C))
				} else {
					assert.Nil(t, in.ChecksumCRC32C)
				}
				body, err := io.ReadAll(in.Body)
				assert.NoError(t, err)
				assert.Equal(t, pointer, body)
			}).Return(&s3.PutObjectOutput{}, nil).Once()

			store := NewStore(client, "b", tt.prefix, WithUploadConfig(cfg))
			require.NoError(t, store.Put(context.Background(), "CURRENT", pointer))
			client.AssertExpectations(t)
		})
	}
}

func TestStore_Delete(t *testing.T) {
	client := new(objectClient)
	client.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return aws.ToString(in.Bucket) == "b" && aws.ToString(in.Key) == "cluster-state/state-1.doc"
	})).Return(&s3.DeleteObjectOutput{}, nil).Once()

	require.NoError(t, NewStore(client, "b", "cluster-state").Delete(context.Background(), "state-1.doc"))
	client.AssertExpectations(t)
}

func TestStore_ListPages(t *testing.T) {
	pages := [][]string{
		{"cluster-state/state-3.doc", "cluster-state/state-1.doc"},
		{"cluster-state/state-2.doc"},
	}

	client := new(objectClient)
	for i, keys := range pages {
		var token *string
		if i > 0 {
			token = aws.String(string(rune('a' + i - 1)))
		}
		out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(i < len(pages)-1)}
		if i < len(pages)-1 {
			out.NextContinuationToken = aws.String(string(rune('a' + i)))
		}
		for _, k := range keys {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
		}
		client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
			return aws.ToString(in.Prefix) == "cluster-state/state-" &&
				aws.ToString(in.ContinuationToken) == aws.ToString(token)
		})).Return(out, nil).Once()
	}

	names, err := NewStore(client, "b", "cluster-state").List(context.Background(), "state-")
	require.NoError(t, err)
	assert.Equal(t, []string{"state-1.doc", "state-2.doc", "state-3.doc"}, names)
	client.AssertExpectations(t)
}

func TestBlob_ReadAt(t *testing.T) {
	const content = "hello world"

	tests := []struct {
		name    string
		off     int64
		buf     int
		rng     string
		wantN   int
		wantEOF bool
	}{
		{"head", 0, 5, "bytes=0-4", 5, false},
		{"tail clipped", 8, 5, "bytes=8-10", 3, true},
		{"past end", 11, 5, "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(objectClient)
			if tt.rng != "" {
				client.On("GetObject", mock.Anything, getRange("k", tt.rng)).
					Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(content[tt.off : tt.off+int64(tt.wantN)]))}, nil).Once()
			}
			blob := &s3Blob{client: client, bucket: "b", key: "k", size: int64(len(content))}

			buf := make([]byte, tt.buf)
			n, err := blob.ReadAt(context.Background(), buf, tt.off)
			assert.Equal(t, tt.wantN, n)
			if tt.wantEOF {
				assert.ErrorIs(t, err, io.EOF)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, content[tt.off:tt.off+int64(n)], string(buf[:n]))
			client.AssertExpectations(t)
		})
	}
}

func TestBlob_ReadRange(t *testing.T) {
	client := new(objectClient)
	client.On("GetObject", mock.Anything, getRange("k", "bytes=6-10")).
		Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("world"))}, nil).Once()
	blob := &s3Blob{client: client, bucket: "b", key: "k", size: 11}

	// The range is clipped to the blob.
	rc, err := blob.ReadRange(context.Background(), 6, 100)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "world", string(got))

	rc, err = blob.ReadRange(context.Background(), 11, 4)
	require.NoError(t, err)
	got, err = io.ReadAll(rc)
	require.NoError(t, err)
	assert.Empty(t, got)
	client.AssertExpectations(t)
}
