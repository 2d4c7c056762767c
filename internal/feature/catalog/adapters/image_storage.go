package adapters

import (
	"context"

	"market_backend/internal/feature/catalog/domain/entity"
	"market_backend/internal/feature/catalog/usecase"
	"market_backend/internal/platform/externalapi/supabase"
)

// objectStore is the subset of supabase.StorageClient the catalog needs.
type objectStore interface {
	Upload(ctx context.Context, accessToken, bucket, path string, data []byte, contentType string) (string, error)
	ListBuckets(ctx context.Context, accessToken string) ([]supabase.Bucket, error)
}

// imageStorage adapts the hosted object store to usecase.ImageStorage.
type imageStorage struct {
	store objectStore
}

var _ usecase.ImageStorage = (*imageStorage)(nil)

// NewImageStorage wraps a storage client.
func NewImageStorage(store objectStore) *imageStorage {
	return &imageStorage{store: store}
}

// Upload stores data and returns its public URL.
func (s *imageStorage) Upload(ctx context.Context, accessToken, bucket, path string, data []byte, contentType string) (string, error) {
	return s.store.Upload(ctx, accessToken, bucket, path, data, contentType)
}

// ListBuckets converts the store's buckets to catalog entities.
func (s *imageStorage) ListBuckets(ctx context.Context, accessToken string) ([]entity.Bucket, error) {
	buckets, err := s.store.ListBuckets(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Bucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, entity.Bucket{ID: b.ID, Name: b.Name, Public: b.Public})
	}
	return out, nil
}
