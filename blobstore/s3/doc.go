// Package s3 provides Amazon S3 implementations of blobstore.BlobStore.
//
// # Usage
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "cluster-state/")
//
// DDBCommitStore layers a DynamoDB commit log over Store so that the
// CURRENT pointer of a published state document is updated with a
// conditional write instead of a last-writer-wins PUT.
//
// # Features
//
//   - Range reads for partial fetches
//   - CRC32C-checked single PUTs, multipart uploads above the part size
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
