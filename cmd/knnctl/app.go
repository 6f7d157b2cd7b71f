package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hupe1980/knnspace"
	"github.com/hupe1980/knnspace/blobstore"
	miniostore "github.com/hupe1980/knnspace/blobstore/minio"
	s3store "github.com/hupe1980/knnspace/blobstore/s3"
	"github.com/hupe1980/knnspace/clusterstate"
	"github.com/hupe1980/knnspace/codec"
	"github.com/hupe1980/knnspace/internal/compress"
	"github.com/hupe1980/knnspace/internal/config"
	"github.com/hupe1980/knnspace/resource"
)

// app holds the services a command runs against.
type app struct {
	state  *clusterstate.DocumentProvider
	core   *knnspace.Core
	logger *knnspace.Logger
}

// appLoader builds the app lazily so commands that need no state stay fast.
type appLoader func(ctx context.Context) (*app, error)

func newAppLoader(configPath *string) appLoader {
	var cached *app
	return func(ctx context.Context) (*app, error) {
		if cached != nil {
			return cached, nil
		}
		cfg, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		a, err := newApp(ctx, cfg)
		if err != nil {
			return nil, err
		}
		cached = a
		return a, nil
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	logger := knnspace.NewTextLogger(level)
	if cfg.LogFormat == "json" {
		logger = knnspace.NewJSONLogger(level)
	}

	store, err := newStore(ctx, cfg.State)
	if err != nil {
		return nil, err
	}

	rc := resource.NewController(resource.Config{
		MaxInFlight:        cfg.Limits.MaxInFlight,
		CallsPerSecond:     cfg.Limits.CallsPerSecond,
		IOLimitBytesPerSec: cfg.Limits.IOBytesPerSec,
	})

	c, _ := codec.ByName(cfg.State.Codec)
	ct, err := compress.ParseType(cfg.State.Compression)
	if err != nil {
		return nil, err
	}

	state := clusterstate.NewDocumentProvider(store,
		clusterstate.WithCodec(c),
		clusterstate.WithCompression(ct),
		clusterstate.WithResourceController(rc),
	)

	core := knnspace.New(state,
		knnspace.WithLogger(logger),
		knnspace.WithLocalVersion(cfg.Version()),
		knnspace.WithResourceController(rc),
	)

	return &app{state: state, core: core, logger: logger}, nil
}

func newStore(ctx context.Context, cfg config.StateConfig) (blobstore.BlobStore, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return blobstore.NewMemoryStore(), nil
	case config.BackendLocal:
		if err := os.MkdirAll(cfg.Local.Root, 0o755); err != nil {
			return nil, fmt.Errorf("create state root: %w", err)
		}
		return blobstore.NewLocalStore(cfg.Local.Root), nil
	case config.BackendS3:
		return newS3Store(ctx, cfg.S3)
	case config.BackendMinIO:
		client, err := miniostore.NewClient(miniostore.ClientConfig{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Region:    cfg.MinIO.Region,
			Secure:    cfg.MinIO.Secure,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		store := miniostore.NewStore(client, cfg.MinIO.Bucket, cfg.MinIO.Prefix)
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.Backend)
	}
}

func newS3Store(ctx context.Context, cfg config.S3Config) (blobstore.BlobStore, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	store := s3store.NewStore(client, cfg.Bucket, cfg.Prefix)
	if cfg.DynamoDBTable == "" {
		return store, nil
	}

	baseURI := fmt.Sprintf("s3://%s/%s", cfg.Bucket, cfg.Prefix)
	return s3store.NewDDBCommitStore(store, dynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTable, baseURI), nil
}
