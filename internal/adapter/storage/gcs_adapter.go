package storage

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
)

// GCSAdapter stores event images in a public Google Cloud Storage bucket.
type GCSAdapter struct {
	client *gcs.Client
	bucket string
}

func NewGCSAdapter(client *gcs.Client, bucket string) *GCSAdapter {
	return &GCSAdapter{client: client, bucket: bucket}
}

func (g *GCSAdapter) UploadImage(ctx context.Context, name, contentType string, data []byte) (string, error) {
	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=3600"

	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close object: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, name), nil
}
