// Package urlstrategy provides strategies for deriving retrievable image
// URLs from stored blob keys.
package urlstrategy

import "context"

// URLStrategy defines the interface for image URL generation strategies
type URLStrategy interface {
	// ImageURL creates a publicly resolvable URL for an object key
	ImageURL(ctx context.Context, objectKey string) (string, error)
}
