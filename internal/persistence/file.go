package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dvloznov/finance-copilot/internal/store"
)

// FileBlob keeps the snapshot at <dir>/<name>.json.
type FileBlob struct {
	dir  string
	name string
}

// NewFileBlob returns a FileBlob rooted at dir.
func NewFileBlob(dir, name string) *FileBlob {
	return &FileBlob{dir: dir, name: name}
}

// Path is the file the snapshot lives in.
func (b *FileBlob) Path() string {
	return filepath.Join(b.dir, objectName(b.name))
}

// Load implements store.Persister.
func (b *FileBlob) Load(ctx context.Context) (store.Snapshot, error) {
	data, err := os.ReadFile(b.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return store.Snapshot{}, store.ErrNoSnapshot
	}
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("Load: read %s: %w", b.Path(), err)
	}
	return Decode(data)
}

// Save implements store.Persister. The blob is written to a temporary file
// and renamed into place so readers never observe a partial write.
func (b *FileBlob) Save(ctx context.Context, snap store.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("Save: create %s: %w", b.dir, err)
	}
	return writeFileAtomic(b.Path(), data)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("writeFileAtomic: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writeFileAtomic: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writeFileAtomic: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writeFileAtomic: rename: %w", err)
	}
	return nil
}

var _ store.Persister = (*FileBlob)(nil)
