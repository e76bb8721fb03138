package MinIO

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"files-manager/internal/model/apperr"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	MinioEndpoint  string `env:"MINIO_ENDPOINT" env-default:"minio:9000"`
	BucketName     string `env:"MINIO_BUCKET_NAME" env-default:"storage"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" env-default:"false"`
	MinioRegion    string `env:"MINIO_REGION" env-default:"us-east-1"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY" env-default:"admin"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
}

// MinIOClient stores blobs as objects in one bucket, keyed by the blob path.
type MinIOClient struct {
	Client *minio.Client
	Bucket string
	root   string
}

func New(ctx context.Context, cfg Config, root string) (*MinIOClient, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", cfg.BucketName, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %q: %w", cfg.BucketName, err)
		}
	}

	return &MinIOClient{
		Client: client,
		Bucket: cfg.BucketName,
		root:   root,
	}, nil
}

func (m *MinIOClient) NewPath() string {
	return path.Join(m.root, uuid.NewString())
}

func (m *MinIOClient) Put(ctx context.Context, p string, data []byte) error {
	_, err := m.Client.PutObject(ctx, m.Bucket, objectKey(p), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("%w: minio put %s: %v", apperr.ErrStorage, p, err)
	}
	return nil
}

func (m *MinIOClient) Get(ctx context.Context, p string) ([]byte, error) {
	obj, err := m.Client.GetObject(ctx, m.Bucket, objectKey(p), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: minio get %s: %v", apperr.ErrStorage, p, err)
	}
	defer obj.Close()

	// GetObject is lazy; a missing key only surfaces on the first read.
	data, err := io.ReadAll(obj)
	if isNotFound(err) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: minio read %s: %v", apperr.ErrStorage, p, err)
	}
	return data, nil
}

func (m *MinIOClient) Exists(ctx context.Context, p string) (bool, error) {
	_, err := m.Client.StatObject(ctx, m.Bucket, objectKey(p), minio.StatObjectOptions{})
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: minio stat %s: %v", apperr.ErrStorage, p, err)
	}
	return true, nil
}

func objectKey(p string) string {
	return strings.TrimLeft(path.Clean("/"+p), "/")
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
