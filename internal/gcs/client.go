package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = errors.New("gcs: object not found")

// uploadTimeout bounds a single upload.
const uploadTimeout = 2 * time.Minute

// ObjectStore is the subset of Cloud Storage the rest of the app needs.
// This interface enables mocking and testing of storage functionality.
type ObjectStore interface {
	// Upload writes data to bucket/object, replacing any existing object.
	Upload(ctx context.Context, bucket, object string, data []byte, contentType string) error

	// Download reads bucket/object. It returns ErrNotFound for missing objects.
	Download(ctx context.Context, bucket, object string) ([]byte, error)
}

// Client is the Cloud Storage implementation of ObjectStore.
type Client struct {
	client *storage.Client
}

// NewClient creates a storage client. When credentialsFile is empty
// Application Default Credentials are used.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	c, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewClient: create storage client: %w", err)
	}
	return &Client{client: c}, nil
}

// Upload implements ObjectStore.
func (c *Client) Upload(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := c.client.Bucket(bucket).Object(object).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("Upload: write %s: %w", URI(bucket, object), err)
	}

	// Close finalizes the upload
	if err := w.Close(); err != nil {
		return fmt.Errorf("Upload: finalize %s: %w", URI(bucket, object), err)
	}
	return nil
}

// Download implements ObjectStore.
func (c *Client) Download(ctx context.Context, bucket, object string) ([]byte, error) {
	r, err := c.client.Bucket(bucket).Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return nil, fmt.Errorf("Download: %s: %w", URI(bucket, object), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Download: open reader for %s: %w", URI(bucket, object), err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("Download: read %s: %w", URI(bucket, object), err)
	}
	return data, nil
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.client.Close()
}

var _ ObjectStore = (*Client)(nil)
