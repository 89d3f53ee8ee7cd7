package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/config"
)

// RetentionService keeps original uploaded contracts in object storage so
// annotated exports still work after a process restart. It is optional;
// without it, file bytes live only in memory and are re-fetched from the
// analysis backend on demand.
type RetentionService struct {
	client *minio.Client
	bucket string
}

func NewRetentionService(cfg *config.RetentionConfig) (*RetentionService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &RetentionService{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *RetentionService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// Store saves the original upload under the job id.
func (s *RetentionService) Store(ctx context.Context, jobID string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, jobID, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to store upload: %w", err)
	}
	return nil
}

// Fetch retrieves a retained upload, or an error when none was kept.
func (s *RetentionService) Fetch(ctx context.Context, jobID string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, jobID, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch upload: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}

// Rename moves a retained upload from the client-generated job id to the
// backend-assigned id once the job is re-keyed.
func (s *RetentionService) Rename(ctx context.Context, oldID, newID string) error {
	src := minio.CopySrcOptions{Bucket: s.bucket, Object: oldID}
	dst := minio.CopyDestOptions{Bucket: s.bucket, Object: newID}
	if _, err := s.client.CopyObject(ctx, dst, src); err != nil {
		return fmt.Errorf("failed to copy upload: %w", err)
	}
	return s.Delete(ctx, oldID)
}

// Delete removes a retained upload.
func (s *RetentionService) Delete(ctx context.Context, jobID string) error {
	err := s.client.RemoveObject(ctx, s.bucket, jobID, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return nil
}
