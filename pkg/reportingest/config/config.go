package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/streetfix/report-ingest/pkg/reportingest"
	"github.com/streetfix/report-ingest/pkg/reportingest/queue/rabbitmq"
	memoryrepo "github.com/streetfix/report-ingest/pkg/reportingest/repo/memory"
	pgrepo "github.com/streetfix/report-ingest/pkg/reportingest/repo/postgres"
	fsstorage "github.com/streetfix/report-ingest/pkg/reportingest/storage/fs"
	memorystorage "github.com/streetfix/report-ingest/pkg/reportingest/storage/memory"
	s3storage "github.com/streetfix/report-ingest/pkg/reportingest/storage/s3"
	"github.com/streetfix/report-ingest/pkg/reportingest/urlstrategy"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		DatabaseType: "memory",
		Storage: StorageConfig{
			Type:   "memory",
			Bucket: "reports",
		},
		Broker: BrokerConfig{
			Queue:       "reports",
			MaxAttempts: 3,
		},
		VerifyFingerprint: true,
	}
}

// ServerConfig represents server configuration for the report-ingest service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"

	// Storage configuration
	Storage StorageConfig

	// Broker configuration; publishing is disabled when URL is empty
	Broker BrokerConfig

	// PublicBaseURL, when set, derives image URLs as <base>/<file_name>
	// instead of presigned storage URLs
	PublicBaseURL string

	// VerifyFingerprint toggles verification of client-reported digests
	VerifyFingerprint bool
}

// StorageConfig represents configuration for the blob storage backend
type StorageConfig struct {
	Type   string // "memory", "fs", "s3"
	Bucket string

	// Filesystem options
	BaseDir string

	// S3 options
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	PresignDuration int
}

// BrokerConfig represents configuration for the notification broker
type BrokerConfig struct {
	URL         string
	Queue       string
	MaxAttempts int
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}
	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.Storage.Type {
	case "memory":
	case "fs":
		if c.Storage.BaseDir == "" {
			return errors.New("storage base_dir is required for fs storage")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return errors.New("storage bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	if c.Broker.URL != "" && c.Broker.Queue == "" {
		return errors.New("broker queue is required when a broker URL is set")
	}

	return nil
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService(logger *slog.Logger) (reportingest.Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	repo, err := c.buildRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	store, err := c.buildStorageBackend()
	if err != nil {
		return nil, fmt.Errorf("failed to build storage backend: %w", err)
	}

	options := []reportingest.Option{
		reportingest.WithRepository(repo),
		reportingest.WithBlobStore(store),
		reportingest.WithLogger(logger),
	}

	if c.Broker.URL != "" {
		pub := rabbitmq.New(c.Broker.URL, c.Broker.Queue,
			rabbitmq.WithMaxAttempts(c.Broker.MaxAttempts),
			rabbitmq.WithLogger(logger),
		)
		options = append(options, reportingest.WithPublisher(pub))
	}

	if c.PublicBaseURL != "" {
		options = append(options,
			reportingest.WithURLStrategy(urlstrategy.NewPublicBaseStrategy(c.PublicBaseURL)))
	}

	if !c.VerifyFingerprint {
		options = append(options,
			reportingest.WithValidator(reportingest.NewValidator(reportingest.WithoutFingerprintCheck())))
	}

	return reportingest.New(options...)
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository() (reportingest.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return memoryrepo.New(), nil
	case "postgres":
		pool, err := pgxpool.New(context.Background(), c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		return pgrepo.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// buildStorageBackend creates a BlobStore based on the configuration
func (c *ServerConfig) buildStorageBackend() (reportingest.BlobStore, error) {
	switch c.Storage.Type {
	case "memory":
		return memorystorage.New(c.Storage.Bucket), nil

	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   c.Storage.BaseDir,
			Bucket:    c.Storage.Bucket,
			URLPrefix: c.PublicBaseURL,
		})

	case "s3":
		return s3storage.New(s3storage.Config{
			Region:          c.Storage.Region,
			Bucket:          c.Storage.Bucket,
			AccessKeyID:     c.Storage.AccessKeyID,
			SecretAccessKey: c.Storage.SecretAccessKey,
			Endpoint:        c.Storage.Endpoint,
			UsePathStyle:    c.Storage.UsePathStyle,
			PresignDuration: c.Storage.PresignDuration,
		})

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
}

// PingPostgres verifies connectivity to Postgres.
func PingPostgres(ctx context.Context, databaseURL string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
