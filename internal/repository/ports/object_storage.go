package ports

import (
	"context"
	"io"
)

// ObjectStorage hosts trip photos. Upload returns the public URL of the stored
// object; Remove deletes it and treats a missing object as success.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error)
	Remove(ctx context.Context, bucket, objectName string) error
}
