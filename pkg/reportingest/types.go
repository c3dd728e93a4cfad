package reportingest

import (
	"fmt"
	"time"
)

// Location is a geographic coordinate pair submitted with a report.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Report represents a committed report row. ID and DateCreated are assigned
// by the record store on insert; a Report exists if and only if its insert
// transaction committed.
type Report struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	BucketName  string    `json:"bucket_name"`
	FileName    string    `json:"file_name"`
	Username    string    `json:"username"`
	Type        string    `json:"type"`
	Detail      string    `json:"detail"`
	DateCreated time.Time `json:"date_created"`
}

// UploadArtifact is the request-scoped representation of an uploaded file.
// Fingerprint is the sha256 hex digest of Content; Extension is the
// canonical filesystem extension for the declared MIME type.
type UploadArtifact struct {
	Content     []byte
	MimeType    string
	FileName    string
	Fingerprint string
	Extension   string
}

// BlobReference identifies stored bytes in the blob store. Immutable once
// the upload succeeds.
type BlobReference struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	URL    string `json:"url,omitempty"`
}

// NotificationEvent is the message published to downstream consumers after
// a report commits. The blob key doubles as the event identifier.
type NotificationEvent struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	ImageURL string `json:"image_url"`
	ReportID int64  `json:"report_id"`
}

// Validate checks that all required event fields are present. Publishers
// must reject an invalid event before any network activity.
func (e NotificationEvent) Validate() error {
	if e.Type == "" {
		return fmt.Errorf("%w: missing type", ErrEventInvalid)
	}
	if e.ID == "" {
		return fmt.Errorf("%w: missing id", ErrEventInvalid)
	}
	if e.ImageURL == "" {
		return fmt.Errorf("%w: missing image_url", ErrEventInvalid)
	}
	if e.ReportID == 0 {
		return fmt.Errorf("%w: missing report_id", ErrEventInvalid)
	}
	return nil
}
