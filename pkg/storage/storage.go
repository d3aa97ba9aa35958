package storage

import (
	"context"
	"io"
)

// BlobStore is the surface the catalog needs from object storage. The catalog
// only records keys; resolution to bytes or URLs stays behind this interface.
type BlobStore interface {
	// Upload writes the object under key, replacing any existing content.
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	// Delete removes the object stored under key. Deleting a missing key is
	// not an error.
	Delete(ctx context.Context, key string) error
	// PublicURL returns a stable URL for the object stored under key.
	PublicURL(key string) string
}
