package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/streetfix/report-ingest/pkg/reportingest"
)

// Backend is a filesystem implementation of the reportingest.BlobStore
// interface, intended for local development. The "bucket" is a directory
// under the base dir.
type Backend struct {
	baseDir   string
	bucket    string
	urlPrefix string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir   string // Base directory for storing files
	Bucket    string // Bucket directory name
	URLPrefix string // Optional URL prefix for download URLs
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{
		baseDir:   config.BaseDir,
		bucket:    config.Bucket,
		urlPrefix: config.URLPrefix,
	}, nil
}

// Bucket returns the owning bucket name
func (b *Backend) Bucket() string {
	return b.bucket
}

// EnsureBucket creates the bucket directory if absent
func (b *Backend) EnsureBucket(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Join(b.baseDir, b.bucket), 0755); err != nil {
		return &reportingest.StorageError{
			Bucket: b.bucket,
			Op:     "ensure bucket",
			Err:    fmt.Errorf("%w: %w", reportingest.ErrStorageUnavailable, err),
		}
	}
	return nil
}

// Upload stores content under the given object key
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params reportingest.UploadParams) error {
	filePath := filepath.Join(b.baseDir, b.bucket, params.ObjectKey)

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return b.storageError("put object", params.ObjectKey, err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return b.storageError("put object", params.ObjectKey, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return b.storageError("put object", params.ObjectKey, err)
	}

	return nil
}

// GetDownloadURL returns a URL for downloading content. The filesystem
// backend has no presigning; it requires a configured URL prefix served by
// something else (nginx, the dev server).
func (b *Backend) GetDownloadURL(ctx context.Context, objectKey string, downloadFilename string) (string, error) {
	if b.urlPrefix == "" {
		return "", errors.New("direct download required for filesystem backend")
	}
	return fmt.Sprintf("%s/%s", b.urlPrefix, objectKey), nil
}

func (b *Backend) storageError(op, key string, err error) error {
	return &reportingest.StorageError{
		Bucket: b.bucket,
		Key:    key,
		Op:     op,
		Err:    fmt.Errorf("%w: %w", reportingest.ErrStorageUnavailable, err),
	}
}
