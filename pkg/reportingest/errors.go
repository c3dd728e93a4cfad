package reportingest

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrUnsupportedMediaType indicates the declared MIME type is not in the
	// image allow-list
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrExtensionMismatch indicates the filename does not end with the
	// canonical extension for the declared MIME type
	ErrExtensionMismatch = errors.New("filename extension does not match content type")

	// ErrFingerprintMismatch indicates the client-reported content digest
	// disagrees with the locally computed one
	ErrFingerprintMismatch = errors.New("hash mismatch")

	// ErrStorageUnavailable indicates a blob store backend failure
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrMetadataWriteFailed indicates the metadata transaction was rolled back
	ErrMetadataWriteFailed = errors.New("metadata write failed")

	// ErrUploadFailed indicates an upload operation failed after validation
	ErrUploadFailed = errors.New("upload failed")

	// ErrEventInvalid indicates a notification event is missing required fields
	ErrEventInvalid = errors.New("invalid notification event")

	// ErrUnroutable indicates the broker rejected the message as unroutable;
	// permanent, never retried
	ErrUnroutable = errors.New("message unroutable")

	// ErrPublishGaveUp indicates the publish retry budget was exhausted
	ErrPublishGaveUp = errors.New("publish retries exhausted")
)

// IsValidationError reports whether err is client-caused. Validation errors
// are surfaced before any side effect is performed.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrUnsupportedMediaType) ||
		errors.Is(err, ErrExtensionMismatch) ||
		errors.Is(err, ErrFingerprintMismatch)
}

// StorageError represents an error related to blob store operations
type StorageError struct {
	Bucket string
	Key    string
	Op     string
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s in bucket %s: %v", e.Op, e.Key, e.Bucket, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// PublishError represents an error related to broker publishing
type PublishError struct {
	Queue    string
	Attempts int
	Err      error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish to queue %s failed after %d attempt(s): %v", e.Queue, e.Attempts, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}
