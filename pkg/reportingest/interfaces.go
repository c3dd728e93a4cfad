package reportingest

import (
	"context"
	"io"
)

// BlobStore defines the interface for durable object storage backends
type BlobStore interface {
	// Bucket returns the owning bucket name
	Bucket() string

	// EnsureBucket creates the bucket if absent; it is idempotent
	EnsureBucket(ctx context.Context) error

	// Upload stores content under the given object key
	Upload(ctx context.Context, reader io.Reader, params UploadParams) error

	// GetDownloadURL returns a time-bounded retrieval URL for an object
	GetDownloadURL(ctx context.Context, objectKey string, downloadFilename string) (string, error)
}

// UploadParams contains parameters for uploading an object
type UploadParams struct {
	ObjectKey string
	MimeType  string
}

// Repository defines the interface for report metadata persistence.
// InsertReport runs inside one transaction: the row is fully committed or
// fully rolled back, never partially visible.
type Repository interface {
	// InsertReport inserts the report and returns the store-assigned
	// identifier. On success the report's ID and DateCreated are populated.
	InsertReport(ctx context.Context, report *Report) (int64, error)

	// ListReports returns all reports ordered by creation time, descending
	ListReports(ctx context.Context) ([]*Report, error)
}

// EventPublisher defines the interface for broker notification publishing.
// Publish returns nil only once the broker has confirmed acceptance of the
// message; implementations own connection recovery and retry policy.
type EventPublisher interface {
	Publish(ctx context.Context, event NotificationEvent) error
	Close() error
}
