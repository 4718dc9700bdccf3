package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/liyue/tracemap/internal/domain"
)

// ObjectStoreConfig holds S3-compatible object storage settings.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// ObjectStore reads and writes datasets in an S3-compatible bucket. Shared
// teams publish records.json there and every environment ingests the same
// snapshot.
type ObjectStore struct {
	mc     *minio.Client
	bucket string
}

// NewObjectStore creates an object storage client for the configured bucket.
func NewObjectStore(cfg ObjectStoreConfig) (*ObjectStore, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("object store client: %w", err)
	}

	bucket := cfg.Bucket
	if bucket == "" {
		bucket = "tracemap-datasets"
	}
	return &ObjectStore{mc: mc, bucket: bucket}, nil
}

// Init creates the dataset bucket if it does not exist.
func (s *ObjectStore) Init(ctx context.Context) error {
	exists, err := s.mc.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// ObjectSource loads a dataset object through the store.
type ObjectSource struct {
	Store  *ObjectStore
	Object string
}

func (s ObjectSource) Load(ctx context.Context) ([]domain.ContactRecord, error) {
	obj, err := s.Store.mc.GetObject(ctx, s.Store.bucket, s.Object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", s.Store.bucket, s.Object, err)
	}
	defer obj.Close()

	records, err := decodeRecords(obj)
	if err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", s.Store.bucket, s.Object, err)
	}
	return records, nil
}

// Upload publishes records as a JSON object in the dataset bucket.
func (s *ObjectStore) Upload(ctx context.Context, object string, records []domain.ContactRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}

	_, err = s.mc.PutObject(ctx, s.bucket, object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", s.bucket, object, err)
	}
	return nil
}

// Healthy reports whether the object store is reachable.
func (s *ObjectStore) Healthy(ctx context.Context) bool {
	_, err := s.mc.BucketExists(ctx, s.bucket)
	return err == nil
}
