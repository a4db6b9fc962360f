// Package archive stores the raw bodies of emails the parsers could not
// handle in a GCS bucket, so an operator can inspect them later.
package archive

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
)

// Uploader writes email bodies to one GCS bucket. It assumes Application
// Default Credentials are configured.
type Uploader struct {
	client *storage.Client
	bucket string
}

// New creates an uploader against the given bucket.
func New(ctx context.Context, bucket string) (*Uploader, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive: create storage client: %w", err)
	}
	return &Uploader{
		client: client,
		bucket: bucket,
	}, nil
}

// Close releases the storage client.
func (u *Uploader) Close() error {
	if u.client != nil {
		return u.client.Close()
	}
	return nil
}

// Save uploads body under the given object name and returns the gs:// URI
// of the stored object.
func (u *Uploader) Save(ctx context.Context, name string, body []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := u.client.Bucket(u.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "text/plain; charset=utf-8"

	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("archive: write object %q: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("archive: finalize object %q: %w", name, err)
	}

	return objectURI(u.bucket, name), nil
}

// objectURI builds the gs:// locator logged for operator follow-up.
func objectURI(bucket, name string) string {
	return fmt.Sprintf("gs://%s/%s", bucket, name)
}
