package supabase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageClient_Upload(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend(t)
	storage := NewStorageClient(backend.client())
	ctx := context.Background()
	data := []byte{0x89, 'P', 'N', 'G'}

	url, err := storage.Upload(ctx, "user-token", "product-images", "seller-1/abc.png", data, "image/png")

	require.NoError(t, err)
	assert.Equal(t, backend.server.URL+"/storage/v1/object/public/product-images/seller-1/abc.png", url)
	assert.Equal(t, data, backend.object("product-images/seller-1/abc.png"))

	req := backend.lastRequest()
	assert.Equal(t, "Bearer user-token", req.Header.Get("Authorization"))
	assert.Equal(t, "image/png", req.Header.Get("Content-Type"))
	assert.Equal(t, "false", req.Header.Get("x-upsert"))
}

func TestStorageClient_Upload_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		bucket string
		seed   bool
		want   string
	}{
		{name: "unknown bucket", bucket: "missing", want: "Bucket not found"},
		{name: "duplicate object", bucket: "product-images", seed: true, want: "The resource already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			backend := newFakeBackend(t)
			storage := NewStorageClient(backend.client())
			if tt.seed {
				backend.seedObject(tt.bucket+"/p.png", []byte("x"))
			}

			_, err := storage.Upload(context.Background(), "", tt.bucket, "p.png", []byte("y"), "image/png")

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrStorageUpload)
			assert.False(t, errors.Is(err, ErrStorageRequest))
			var se *StorageError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.bucket, se.Bucket)
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.want, apiErr.Message)
		})
	}
}

func TestStorageClient_ListBuckets(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend(t)
	storage := NewStorageClient(backend.client())

	buckets, err := storage.ListBuckets(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, []Bucket{{ID: "product-images", Name: "product-images", Public: true}}, buckets)
}

func TestStorageClient_PublicURL_EscapesSegments(t *testing.T) {
	t.Parallel()
	storage := NewStorageClient(NewClient(Config{BaseURL: "https://x.supabase.co"}, nil, nil))

	assert.Equal(t, "https://x.supabase.co/storage/v1/object/public/product-images/a%20b/c.png",
		storage.PublicURL("product-images", "a b/c.png"))
}

func TestClient_BadAPIKey(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend(t)
	c := NewClient(Config{BaseURL: backend.server.URL, APIKey: "wrong"}, backend.server.Client(), nil)

	_, err := NewStorageClient(c).ListBuckets(context.Background(), "")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
	assert.Equal(t, "Invalid API key", apiErr.Message)
	assert.ErrorIs(t, err, ErrStorageRequest)
}
