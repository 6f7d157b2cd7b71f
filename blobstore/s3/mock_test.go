package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/mock"
)

// objectClient mocks the single-object calls of Client. Multipart calls fall
// through to the nil embedded Client; no test writes a blob past the part size.
type objectClient struct {
	mock.Mock
	Client
}

func called[T any](args mock.Arguments) (*T, error) {
	out, _ := args.Get(0).(*T)
	return out, args.Error(1)
}

func (c *objectClient) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return called[s3.HeadObjectOutput](c.Called(ctx, in))
}

func (c *objectClient) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return called[s3.GetObjectOutput](c.Called(ctx, in))
}

func (c *objectClient) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return called[s3.PutObjectOutput](c.Called(ctx, in))
}

func (c *objectClient) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	return called[s3.DeleteObjectOutput](c.Called(ctx, in))
}

func (c *objectClient) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return called[s3.ListObjectsV2Output](c.Called(ctx, in))
}

func headOf(key string) any {
	return mock.MatchedBy(func(in *s3.HeadObjectInput) bool { return aws.ToString(in.Key) == key })
}

func getRange(key, rng string) any {
	return mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Key) == key && aws.ToString(in.Range) == rng
	})
}
