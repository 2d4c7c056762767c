package dto

import "time"

// Bucket is an entry of GET /storage/v1/bucket.
type Bucket struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Public    bool      `json:"public"`
	CreatedAt time.Time `json:"created_at"`
}

// UploadResponse is the body returned after a successful object upload.
type UploadResponse struct {
	Key string `json:"Key"`
}
