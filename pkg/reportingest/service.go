package reportingest

import "context"

// Service defines the main interface for the report-ingest library
type Service interface {
	// UploadReport runs the full pipeline for one upload: validate, store
	// the blob, commit the metadata record, publish the notification event.
	UploadReport(ctx context.Context, req UploadReportRequest) (*UploadReportResponse, error)

	// ListReports returns committed reports, newest first
	ListReports(ctx context.Context) ([]*Report, error)

	// ImageURL derives the publicly resolvable URL for a stored blob key
	ImageURL(ctx context.Context, objectKey string) (string, error)
}
