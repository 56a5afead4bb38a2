// Package s3store keeps each pin as a JSON object in an S3-compatible bucket.
package s3store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/goccy/go-json"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/samirrijal/pinmap/internal/core/domain"
	"github.com/samirrijal/pinmap/internal/pkg/metrics"
)

// Config selects the endpoint and bucket.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	Region    string
	UseSSL    bool
}

// Store implements ports.PinRepository on MinIO or any S3 API.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// New connects to the endpoint and creates the bucket when it is missing.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	s := &Store{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}
	if err := s.ensureBucket(ctx, cfg.Region); err != nil {
		return nil, err
	}
	slog.Info("connected to object storage", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return s, nil
}

func (s *Store) ensureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *Store) key(id string) string {
	return path.Join(s.prefix, id+".json")
}

func (s *Store) listPrefix() string {
	if s.prefix == "" {
		return ""
	}
	return s.prefix + "/"
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

// Save uploads the pin. PutObject replaces objects atomically.
func (s *Store) Save(ctx context.Context, pin *domain.Pin) error {
	if !domain.SafeID(pin.ID) {
		return fmt.Errorf("%w: unsafe id %q", domain.ErrInvalidPin, pin.ID)
	}
	data, err := json.Marshal(pin)
	if err != nil {
		return fmt.Errorf("marshal pin: %w", err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, s.key(pin.ID),
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return fmt.Errorf("put pin %s: %w", pin.ID, err)
	}
	return nil
}

// Get downloads a single pin.
func (s *Store) Get(ctx context.Context, id string) (*domain.Pin, error) {
	if !domain.SafeID(id) {
		return nil, domain.ErrPinNotFound
	}
	pin, err := s.fetch(ctx, s.key(id))
	if isNoSuchKey(err) {
		return nil, domain.ErrPinNotFound
	}
	return pin, err
}

// List downloads every *.json object under the prefix. Objects that fail to
// download or decode are logged and skipped.
func (s *Store) List(ctx context.Context) ([]domain.Pin, error) {
	pins := []domain.Pin{}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s.listPrefix()}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list pins: %w", obj.Err)
		}
		if !strings.HasSuffix(obj.Key, ".json") || strings.Contains(strings.TrimPrefix(obj.Key, s.listPrefix()), "/") {
			continue
		}
		pin, err := s.fetch(ctx, obj.Key)
		if err != nil {
			if isNoSuchKey(err) {
				continue
			}
			slog.Warn("skipping unreadable pin", "key", obj.Key, "error", err)
			metrics.PinReadErrors.WithLabelValues("s3").Inc()
			continue
		}
		pins = append(pins, *pin)
	}
	return pins, nil
}

// Delete removes the pin's object, reporting whether it existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	if !domain.SafeID(id) {
		return false, nil
	}
	key := s.key(id)
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat pin %s: %w", id, err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return false, fmt.Errorf("remove pin %s: %w", id, err)
	}
	return true, nil
}

// Ping checks that the bucket is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}
	return nil
}

func (s *Store) fetch(ctx context.Context, key string) (*domain.Pin, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, err
	}
	var pin domain.Pin
	if err := json.Unmarshal(data, &pin); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &pin, nil
}
