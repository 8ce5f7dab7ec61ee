package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioPayloadStore keeps image payloads in a MinIO (or any S3
// compatible) bucket.
type MinioPayloadStore struct {
	client *minio.Client
	bucket string
}

// MinioConfig carries the connection settings for a MinIO backend.
type MinioConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// NewMinioPayloadStore connects to MinIO and ensures the bucket exists.
func NewMinioPayloadStore(ctx context.Context, cfg MinioConfig) (*MinioPayloadStore, error) {
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, err
		}
	}

	return &MinioPayloadStore{client: cli, bucket: cfg.Bucket}, nil
}

func (s *MinioPayloadStore) Save(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty payload")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ref := uuid.NewString()
	_, err := s.client.PutObject(ctx, s.bucket, ref, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("object upload failed: %w", err)
	}
	return ref, nil
}

func (s *MinioPayloadStore) Load(ctx context.Context, ref string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, ref, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("object download failed: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("object read failed: %w", err)
	}
	return data, nil
}

func (s *MinioPayloadStore) Delete(ctx context.Context, ref string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, ref, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("object delete failed: %w", err)
	}
	return nil
}
