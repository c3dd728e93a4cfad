package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/streetfix/report-ingest/pkg/reportingest"
)

// Backend is an in-memory implementation of the reportingest.BlobStore
// interface, used in tests.
type Backend struct {
	mu            sync.RWMutex
	bucket        string
	bucketCreated bool
	objects       map[string][]byte
	mimeTypes     map[string]string

	// FailUploads makes every Upload call fail, for exercising failure paths
	FailUploads bool
}

// New creates a new in-memory storage backend
func New(bucket string) *Backend {
	return &Backend{
		bucket:    bucket,
		objects:   make(map[string][]byte),
		mimeTypes: make(map[string]string),
	}
}

// Bucket returns the owning bucket name
func (b *Backend) Bucket() string {
	return b.bucket
}

// EnsureBucket marks the bucket as created
func (b *Backend) EnsureBucket(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bucketCreated = true
	return nil
}

// Upload stores content under the given object key
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params reportingest.UploadParams) error {
	if b.FailUploads {
		return &reportingest.StorageError{
			Bucket: b.bucket,
			Key:    params.ObjectKey,
			Op:     "put object",
			Err:    fmt.Errorf("%w: upload disabled", reportingest.ErrStorageUnavailable),
		}
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[params.ObjectKey] = data
	if params.MimeType != "" {
		b.mimeTypes[params.ObjectKey] = params.MimeType
	} else {
		b.mimeTypes[params.ObjectKey] = "application/octet-stream"
	}
	return nil
}

// GetDownloadURL returns a URL for downloading content.
// The in-memory backend doesn't use URLs.
func (b *Backend) GetDownloadURL(ctx context.Context, objectKey string, downloadFilename string) (string, error) {
	return "", errors.New("direct download required for memory backend")
}

// Object returns the stored bytes and MIME type for a key, for assertions
func (b *Backend) Object(objectKey string) ([]byte, string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.objects[objectKey]
	return data, b.mimeTypes[objectKey], ok
}

// Len returns the number of stored objects
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}

// BucketCreated reports whether EnsureBucket has been called
func (b *Backend) BucketCreated() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bucketCreated
}
