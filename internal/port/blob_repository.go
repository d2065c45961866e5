package port

import "context"

// BlobRepository stores uploaded binary objects and returns a public URL.
type BlobRepository interface {
	UploadImage(ctx context.Context, name, contentType string, data []byte) (string, error)
}
