package urlstrategy

import (
	"context"
	"fmt"
	"strings"
)

// PublicBaseStrategy generates URLs of the form <base>/<objectKey> for
// deployments that serve the bucket behind a public base URL or CDN.
type PublicBaseStrategy struct {
	BaseURL string // e.g. "https://images.example.com"
}

// NewPublicBaseStrategy creates a new public-base URL strategy
func NewPublicBaseStrategy(baseURL string) *PublicBaseStrategy {
	return &PublicBaseStrategy{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// ImageURL creates a direct URL pointing at the object key
func (s *PublicBaseStrategy) ImageURL(ctx context.Context, objectKey string) (string, error) {
	if s.BaseURL == "" {
		return "", fmt.Errorf("public base URL not configured")
	}
	return fmt.Sprintf("%s/%s", s.BaseURL, objectKey), nil
}
