package urlstrategy

import "context"

// Presigner is the subset of a blob store able to mint time-bounded
// retrieval URLs.
type Presigner interface {
	GetDownloadURL(ctx context.Context, objectKey string, downloadFilename string) (string, error)
}

// StorageDelegatedStrategy delegates URL generation to the storage backend,
// producing presigned URLs with the backend's configured expiry. Used when
// the bucket is not publicly readable.
type StorageDelegatedStrategy struct {
	Store Presigner
}

// NewStorageDelegatedStrategy creates a new storage-delegated URL strategy
func NewStorageDelegatedStrategy(store Presigner) *StorageDelegatedStrategy {
	return &StorageDelegatedStrategy{Store: store}
}

// ImageURL asks the storage backend for a retrieval URL
func (s *StorageDelegatedStrategy) ImageURL(ctx context.Context, objectKey string) (string, error) {
	return s.Store.GetDownloadURL(ctx, objectKey, "")
}
