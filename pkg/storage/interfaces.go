package storage

import (
	"context"
	"io"
)

// Object identifies an uploaded blob. ID is what Delete and DeleteMany expect.
type Object struct {
	ID  string
	URL string
}

type BlobStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*Object, error)
	Delete(ctx context.Context, id string) error
	// DeleteMany removes every id in one request where the backend supports it.
	// Missing ids are not an error.
	DeleteMany(ctx context.Context, ids []string) error
}
