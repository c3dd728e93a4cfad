package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// WithEnv applies environment variable overrides using the provided prefix.
//
// Environment variable mapping:
//
//	PORT         - Server port (default: "8080")
//	ENVIRONMENT  - Runtime environment (default: "development")
//
//	DATABASE_URL - "memory" or a postgres:// connection string
//
//	STORAGE_URL  - one of:
//	               "memory://"            in-memory storage (default)
//	               "file:///path/to/data" filesystem storage
//	               "s3://bucket"          S3 storage (credentials from
//	                                      AWS_* variables)
//
//	BROKER_URL   - amqp:// connection string; empty disables publishing
//	BROKER_QUEUE - queue name (default: "reports")
//	BROKER_MAX_ATTEMPTS - publish retry budget (default: 3)
//
//	PUBLIC_BASE_URL    - public image URL base
//	VERIFY_FINGERPRINT - enable client hash verification (default: true)
func WithEnv(prefix string) Option {
	return func(c *ServerConfig) error {
		if v, ok := lookupEnv(prefix, "PORT"); ok && v != "" {
			c.Port = v
		}
		if v, ok := lookupEnv(prefix, "ENVIRONMENT"); ok && v != "" {
			c.Environment = v
		}

		if err := applyDatabaseEnv(prefix, c); err != nil {
			return err
		}
		if err := applyStorageEnv(prefix, c); err != nil {
			return err
		}
		if err := applyBrokerEnv(prefix, c); err != nil {
			return err
		}

		if v, ok := lookupEnv(prefix, "PUBLIC_BASE_URL"); ok && v != "" {
			c.PublicBaseURL = v
		}
		verify, set, err := parseBoolEnv(prefix, "VERIFY_FINGERPRINT")
		if err != nil {
			return err
		}
		if set {
			c.VerifyFingerprint = verify
		}

		return nil
	}
}

func applyDatabaseEnv(prefix string, c *ServerConfig) error {
	dbURL, hasURL := lookupEnv(prefix, "DATABASE_URL")

	if !hasURL || dbURL == "" || dbURL == "memory" {
		c.DatabaseType = "memory"
		c.DatabaseURL = ""
		return nil
	}

	if strings.HasPrefix(dbURL, "postgresql://") || strings.HasPrefix(dbURL, "postgres://") {
		c.DatabaseType = "postgres"
		c.DatabaseURL = dbURL
		return nil
	}

	return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory' or 'postgresql://...')", dbURL)
}

func applyStorageEnv(prefix string, c *ServerConfig) error {
	storageURL, hasURL := lookupEnv(prefix, "STORAGE_URL")

	if !hasURL || storageURL == "" || storageURL == "memory" || storageURL == "memory://" {
		c.Storage.Type = "memory"
		return nil
	}

	if path, ok := strings.CutPrefix(storageURL, "file://"); ok {
		if path == "" {
			return fmt.Errorf("filesystem path cannot be empty in STORAGE_URL")
		}
		c.Storage.Type = "fs"
		c.Storage.BaseDir = path
		return nil
	}

	if bucket, ok := strings.CutPrefix(storageURL, "s3://"); ok {
		bucket, _, _ = strings.Cut(bucket, "?")
		if bucket == "" {
			return fmt.Errorf("S3 bucket name cannot be empty in STORAGE_URL")
		}
		c.Storage.Type = "s3"
		c.Storage.Bucket = bucket

		if v, ok := os.LookupEnv("AWS_ACCESS_KEY_ID"); ok && v != "" {
			c.Storage.AccessKeyID = v
		}
		if v, ok := os.LookupEnv("AWS_SECRET_ACCESS_KEY"); ok && v != "" {
			c.Storage.SecretAccessKey = v
		}
		if v, ok := os.LookupEnv("AWS_REGION"); ok && v != "" {
			c.Storage.Region = v
		}
		if v, ok := os.LookupEnv("AWS_S3_ENDPOINT"); ok && v != "" {
			c.Storage.Endpoint = v
			c.Storage.UsePathStyle = true
		}
		return nil
	}

	return fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", storageURL)
}

func applyBrokerEnv(prefix string, c *ServerConfig) error {
	if v, ok := lookupEnv(prefix, "BROKER_URL"); ok {
		c.Broker.URL = v
	}
	if v, ok := lookupEnv(prefix, "BROKER_QUEUE"); ok && v != "" {
		c.Broker.Queue = v
	}
	attempts, set, err := parseIntEnv(prefix, "BROKER_MAX_ATTEMPTS")
	if err != nil {
		return err
	}
	if set {
		if attempts < 1 {
			return fmt.Errorf("BROKER_MAX_ATTEMPTS must be positive, got %d", attempts)
		}
		c.Broker.MaxAttempts = attempts
	}
	return nil
}

func lookupEnv(prefix, key string) (string, bool) {
	return os.LookupEnv(prefix + key)
}

func parseBoolEnv(prefix, key string) (bool, bool, error) {
	raw, ok := lookupEnv(prefix, key)
	if !ok || raw == "" {
		return false, false, nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false, fmt.Errorf("invalid boolean for %s%s: %w", prefix, key, err)
	}
	return parsed, true, nil
}

func parseIntEnv(prefix, key string) (int, bool, error) {
	raw, ok := lookupEnv(prefix, key)
	if !ok || raw == "" {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("invalid integer for %s%s: %w", prefix, key, err)
	}
	return parsed, true, nil
}
