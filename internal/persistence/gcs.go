package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/finance-copilot/internal/gcs"
	"github.com/dvloznov/finance-copilot/internal/store"
)

// GCSBlob keeps the snapshot at gs://<bucket>/<name>.json.
type GCSBlob struct {
	objects gcs.ObjectStore
	bucket  string
	name    string
}

// NewGCSBlob returns a GCSBlob backed by objects.
func NewGCSBlob(objects gcs.ObjectStore, bucket, name string) *GCSBlob {
	return &GCSBlob{objects: objects, bucket: bucket, name: name}
}

// URI is the location of the snapshot.
func (b *GCSBlob) URI() string {
	return gcs.URI(b.bucket, objectName(b.name))
}

// Load implements store.Persister.
func (b *GCSBlob) Load(ctx context.Context) (store.Snapshot, error) {
	data, err := b.objects.Download(ctx, b.bucket, objectName(b.name))
	if errors.Is(err, gcs.ErrNotFound) {
		return store.Snapshot{}, store.ErrNoSnapshot
	}
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("Load: %w", err)
	}
	return Decode(data)
}

// Save implements store.Persister.
func (b *GCSBlob) Save(ctx context.Context, snap store.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := b.objects.Upload(ctx, b.bucket, objectName(b.name), data, "application/json"); err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}

var _ store.Persister = (*GCSBlob)(nil)
