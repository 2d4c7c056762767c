package supabase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"market_backend/internal/platform/externalapi/supabase/dto"
)

var (
	// ErrStorageUpload is wrapped by every failed upload.
	ErrStorageUpload = errors.New("storage upload failed")
	// ErrStorageRequest is wrapped by other failed storage calls.
	ErrStorageRequest = errors.New("storage request failed")
)

// StorageError describes a failed storage call.
type StorageError struct {
	Op     string // "upload" or "list buckets"
	Bucket string
	Path   string
	Err    error
}

func (e *StorageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("storage %s %s/%s: %v", e.Op, e.Bucket, e.Path, e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

// Is lets errors.Is match the operation sentinel.
func (e *StorageError) Is(target error) bool {
	switch target {
	case ErrStorageUpload:
		return e.Op == "upload"
	case ErrStorageRequest:
		return e.Op != "upload"
	}
	return false
}

func (e *StorageError) Unwrap() error { return e.Err }

// Bucket is a storage bucket.
type Bucket struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Public bool   `json:"public"`
}

// StorageClient はストレージAPIのクライアントです。
type StorageClient struct {
	client *Client
}

// NewStorageClient creates a StorageClient.
func NewStorageClient(client *Client) *StorageClient {
	return &StorageClient{client: client}
}

// Upload stores data at bucket/path on behalf of accessToken and returns its public URL.
// An existing object at the same path is not overwritten.
func (s *StorageClient) Upload(ctx context.Context, accessToken, bucket, path string, data []byte, contentType string) (string, error) {
	req := request{
		method:      http.MethodPost,
		path:        "/storage/v1/object/" + url.PathEscape(bucket) + "/" + escapePath(path),
		bearer:      accessToken,
		body:        bytes.NewReader(data),
		contentType: contentType,
		header: http.Header{
			"Cache-Control": {"max-age=3600"},
			"X-Upsert":      {"false"},
		},
	}

	var res dto.UploadResponse
	if err := s.client.do(ctx, req, &res); err != nil {
		return "", &StorageError{Op: "upload", Bucket: bucket, Path: path, Err: err}
	}
	return s.PublicURL(bucket, path), nil
}

// PublicURL returns the public address of an object in a public bucket.
func (s *StorageClient) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.client.cfg.BaseURL, url.PathEscape(bucket), escapePath(path))
}

// ListBuckets returns the buckets visible to accessToken.
func (s *StorageClient) ListBuckets(ctx context.Context, accessToken string) ([]Bucket, error) {
	req := request{method: http.MethodGet, path: "/storage/v1/bucket", bearer: accessToken}

	var res []dto.Bucket
	if err := s.client.do(ctx, req, &res); err != nil {
		return nil, &StorageError{Op: "list buckets", Err: err}
	}

	out := make([]Bucket, 0, len(res))
	for _, b := range res {
		out = append(out, Bucket{ID: b.ID, Name: b.Name, Public: b.Public})
	}
	return out, nil
}

// escapePath escapes each segment of an object path, keeping the separators.
func escapePath(p string) string {
	segs := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
