package storage

import (
	"context"
	"errors"
	"io"
	"strconv"
)

var ErrNotFound = errors.New("storage: blob not found")

// BlobStore holds quiz attachments (images, audio) by opaque key.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error) // returns canonical key
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// AttachmentKey is where a quiz's single attachment lives.
func AttachmentKey(quizID int64) string {
	return "quizzes/" + strconv.FormatInt(quizID, 10) + "/attachment"
}
