package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"filevault-api/config"
)

var tracer = otel.Tracer("filevault-api/blob")

// ErrNotFound is returned by Get for a missing object.
var ErrNotFound = errors.New("blob not found")

// Store keeps payloads in one bucket under their opaque stored names.
type Store struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

func New(ctx context.Context, logger *zap.Logger, cfg config.Blob) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err = client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("bucket created", zap.String("bucket", cfg.Bucket))
	}

	logger.Info("blob store connected",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket))

	return &Store{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	ctx, span := tracer.Start(ctx, "blob.put", trace.WithAttributes(
		attribute.String("object_key", key),
		attribute.Int64("size_bytes", size),
	))
	defer span.End()

	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "put failed")
		return fmt.Errorf("put object %s: %w", key, err)
	}

	return nil
}

// Get stats the object first so a missing key fails here rather than on the first Read.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	ctx, span := tracer.Start(ctx, "blob.get", trace.WithAttributes(
		attribute.String("object_key", key),
	))
	defer span.End()

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}

	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		span.RecordError(err)
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("stat object %s: %w", key, err)
	}
	span.SetAttributes(attribute.Int64("size_bytes", info.Size))

	return obj, nil
}

// Remove is idempotent: removing a missing key succeeds.
func (s *Store) Remove(ctx context.Context, key string) error {
	ctx, span := tracer.Start(ctx, "blob.remove", trace.WithAttributes(
		attribute.String("object_key", key),
	))
	defer span.End()

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return nil
		}
		span.RecordError(err)
		return fmt.Errorf("remove object %s: %w", key, err)
	}

	return nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
