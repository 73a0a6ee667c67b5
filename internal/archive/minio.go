// Package archive mirrors packaged task folders to S3-compatible storage.
package archive

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"shorts_factory/internal/config"
)

const DefaultPresignTTL = 7 * 24 * time.Hour

// MinIO uploads package files under tasks/<task id>/ and returns a
// presigned link to the first file, the video.
type MinIO struct {
	client     *minio.Client
	bucket     string
	presignTTL time.Duration
	logger     *slog.Logger
}

func NewMinIO(cfg config.ArchiveConfig, logger *slog.Logger) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ttl := cfg.PresignTTL
	if ttl <= 0 || ttl > DefaultPresignTTL {
		ttl = DefaultPresignTTL
	}

	return &MinIO{
		client:     client,
		bucket:     cfg.Bucket,
		presignTTL: ttl,
		logger:     logger.With("component", "archive", "bucket", cfg.Bucket),
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (m *MinIO) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket: %w", err)
	}
	m.logger.Info("bucket created")
	return nil
}

func (m *MinIO) Archive(ctx context.Context, taskID string, files []string) (string, error) {
	if len(files) == 0 {
		return "", fmt.Errorf("archive: no files")
	}
	if err := m.EnsureBucket(ctx); err != nil {
		return "", fmt.Errorf("archive: %w", err)
	}

	var first string
	for i, file := range files {
		name := ObjectName(taskID, file)
		info, err := m.client.FPutObject(ctx, m.bucket, name, file, minio.PutObjectOptions{
			ContentType: contentType(file),
		})
		if err != nil {
			return "", fmt.Errorf("archive %s: %w", filepath.Base(file), err)
		}
		m.logger.Debug("object stored", "task_id", taskID, "object", name, "size", info.Size)
		if i == 0 {
			first = name
		}
	}

	u, err := m.client.PresignedGetObject(ctx, m.bucket, first, m.presignTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", first, err)
	}
	return u.String(), nil
}

// ObjectName is the key a task file is stored under.
func ObjectName(taskID, file string) string {
	return path.Join("tasks", taskID, filepath.Base(file))
}

func contentType(file string) string {
	switch ext := filepath.Ext(file); ext {
	case ".mp4":
		return "video/mp4"
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
		return "application/octet-stream"
	}
}
