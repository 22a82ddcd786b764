package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/screamdb/etl-core/internal/config"
)

// Publisher uploads export artifacts to an S3-compatible object store.
type Publisher struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewPublisher connects to the configured endpoint. Returns an error
// when publication is not configured; callers gate on MinIOEndpoint.
func NewPublisher(cfg config.ExportConfig, logger *slog.Logger) (*Publisher, error) {
	if cfg.MinIOEndpoint == "" {
		return nil, fmt.Errorf("object store publication not configured")
	}
	if logger == nil {
		logger = slog.Default()
	}
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object store: %w", err)
	}
	return &Publisher{
		client: client,
		bucket: cfg.MinIOBucket,
		logger: logger.With("component", "publisher"),
	}, nil
}

// Publish uploads the file under its base name and returns the object key.
func (p *Publisher) Publish(ctx context.Context, path string) (string, error) {
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return "", fmt.Errorf("check bucket %s: %w", p.bucket, err)
	}
	if !exists {
		if err := p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{}); err != nil {
			return "", fmt.Errorf("create bucket %s: %w", p.bucket, err)
		}
	}

	key := filepath.Base(path)
	info, err := p.client.FPutObject(ctx, p.bucket, key, path, minio.PutObjectOptions{
		ContentType: "application/vnd.apache.parquet",
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	p.logger.Info("artifact published", "bucket", p.bucket, "key", key, "size", info.Size)
	return key, nil
}
