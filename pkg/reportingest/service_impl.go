package reportingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/streetfix/report-ingest/pkg/reportingest/objectkey"
	"github.com/streetfix/report-ingest/pkg/reportingest/urlstrategy"
)

// service implements the Service interface
type service struct {
	repository Repository
	blobStore  BlobStore
	publisher  EventPublisher
	validator  *Validator
	keys       objectkey.Generator
	urls       urlstrategy.URLStrategy
	logger     *slog.Logger
	tempDir    string
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the metadata repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the blob storage backend
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithPublisher sets the notification event publisher
func WithPublisher(pub EventPublisher) Option {
	return func(s *service) {
		s.publisher = pub
	}
}

// WithValidator overrides the default artifact validator
func WithValidator(v *Validator) Option {
	return func(s *service) {
		s.validator = v
	}
}

// WithKeyGenerator overrides the default blob key generator
func WithKeyGenerator(g objectkey.Generator) Option {
	return func(s *service) {
		s.keys = g
	}
}

// WithURLStrategy sets the strategy used to derive public image URLs
func WithURLStrategy(strategy urlstrategy.URLStrategy) Option {
	return func(s *service) {
		s.urls = strategy
	}
}

// WithLogger sets the structured logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithTempDir sets the directory used to spool artifact bytes during upload
func WithTempDir(dir string) Option {
	return func(s *service) {
		s.tempDir = dir
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		validator: NewValidator(),
		keys:      objectkey.NewRecommendedGenerator(),
		logger:    slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if s.urls == nil {
		s.urls = urlstrategy.NewStorageDelegatedStrategy(s.blobStore)
	}

	return s, nil
}

// UploadReport sequences the pipeline for one upload request. Validation
// and storage/metadata failures abort and propagate; publish failures are
// absorbed and logged once the record has committed.
func (s *service) UploadReport(ctx context.Context, req UploadReportRequest) (*UploadReportResponse, error) {
	artifact, err := s.validator.Validate(req.Content, req.MimeType, req.FileName, req.ReportedFingerprint)
	if err != nil {
		return nil, err
	}

	// Spool the bytes to a scoped temporary file for handoff to the blob
	// store. The file is removed on every exit path.
	tmp, err := os.CreateTemp(s.tempDir, "report-upload-*")
	if err != nil {
		return nil, fmt.Errorf("%w: spooling artifact: %w", ErrUploadFailed, err)
	}
	defer s.discardTemp(tmp.Name())

	if _, err := tmp.Write(artifact.Content); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("%w: spooling artifact: %w", ErrUploadFailed, err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("%w: spooling artifact: %w", ErrUploadFailed, err)
	}

	objectKey := s.keys.GenerateKey(artifact.Extension)

	if err := s.blobStore.EnsureBucket(ctx); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	err = s.blobStore.Upload(ctx, tmp, UploadParams{
		ObjectKey: objectKey,
		MimeType:  artifact.MimeType,
	})
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	report := &Report{
		Name:       req.Name,
		Latitude:   req.Location.Latitude,
		Longitude:  req.Location.Longitude,
		BucketName: s.blobStore.Bucket(),
		FileName:   objectKey,
		Username:   NormalizeUsername(req.Username),
		Type:       NormalizeReportType(req.Type),
		Detail:     req.Detail,
	}
	reportID, err := s.repository.InsertReport(ctx, report)
	if err != nil {
		// The blob written above is not rolled back; an orphaned blob is an
		// accepted outcome of a failed metadata commit.
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	imageURL, err := s.urls.ImageURL(ctx, objectKey)
	if err != nil {
		s.logger.Warn("deriving image url failed", "object_key", objectKey, "error", err)
	}

	// The upload has durably succeeded; the notification is best-effort and
	// its outcome never changes the result.
	if s.publisher != nil {
		event := NotificationEvent{
			Type:     req.Type,
			ID:       objectKey,
			ImageURL: imageURL,
			ReportID: reportID,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("publishing report notification failed",
				"report_id", reportID, "object_key", objectKey, "error", err)
		}
	}

	return &UploadReportResponse{
		ReportID:            reportID,
		FileName:            artifact.FileName,
		MimeType:            artifact.MimeType,
		Fingerprint:         artifact.Fingerprint,
		ReportedFingerprint: req.ReportedFingerprint,
		Name:                req.Name,
		Location:            req.Location,
		Username:            report.Username,
		ReportType:          report.Type,
		Detail:              req.Detail,
		Blob: BlobReference{
			Bucket: report.BucketName,
			Key:    objectKey,
			URL:    imageURL,
		},
		ImageURL: imageURL,
	}, nil
}

func (s *service) ListReports(ctx context.Context) ([]*Report, error) {
	return s.repository.ListReports(ctx)
}

func (s *service) ImageURL(ctx context.Context, objectKey string) (string, error) {
	return s.urls.ImageURL(ctx, objectKey)
}

// discardTemp removes the spooled artifact. Removal failures are logged,
// never surfaced.
func (s *service) discardTemp(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("removing temporary artifact failed", "path", path, "error", err)
	}
}
