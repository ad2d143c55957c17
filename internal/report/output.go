package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/dvloznov/finance-copilot/internal/gcs"
	"github.com/google/uuid"
)

// Output stores a rendered report under name and returns its location.
type Output interface {
	Store(ctx context.Context, name string, html []byte) (string, error)
}

// writeCache writes html to a uniquely named file in cacheDir.
func writeCache(cacheDir string, html []byte) (string, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("writeCache: create %s: %w", cacheDir, err)
	}
	p := filepath.Join(cacheDir, "report-"+uuid.NewString()+".html")
	if err := os.WriteFile(p, html, 0o644); err != nil {
		return "", fmt.Errorf("writeCache: write %s: %w", p, err)
	}
	return p, nil
}

// FileOutput writes to a cache directory, copies into the stable directory
// and removes the cache copy. The stable file only appears once complete.
type FileOutput struct {
	CacheDir  string
	StableDir string
}

// Store implements Output. It returns the stable file path.
func (o FileOutput) Store(ctx context.Context, name string, html []byte) (string, error) {
	cached, err := writeCache(o.CacheDir, html)
	if err != nil {
		return "", err
	}
	defer os.Remove(cached)

	if err := os.MkdirAll(o.StableDir, 0o755); err != nil {
		return "", fmt.Errorf("Store: create %s: %w", o.StableDir, err)
	}
	dst := filepath.Join(o.StableDir, name)
	if err := copyFileAtomic(cached, dst); err != nil {
		return "", fmt.Errorf("Store: %w", err)
	}
	return dst, nil
}

func copyFileAtomic(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("rename to %s: %w", dst, err)
	}
	return nil
}

// GCSOutput writes to a cache directory, uploads to a bucket and removes the
// cache copy.
type GCSOutput struct {
	Objects  gcs.ObjectStore
	Bucket   string
	Prefix   string
	CacheDir string
}

// Store implements Output. It returns the gs:// URI of the object.
func (o GCSOutput) Store(ctx context.Context, name string, html []byte) (string, error) {
	cached, err := writeCache(o.CacheDir, html)
	if err != nil {
		return "", err
	}
	defer os.Remove(cached)

	data, err := os.ReadFile(cached)
	if err != nil {
		return "", fmt.Errorf("Store: read cache: %w", err)
	}

	object := path.Join(o.Prefix, name)
	if err := o.Objects.Upload(ctx, o.Bucket, object, data, "text/html; charset=utf-8"); err != nil {
		return "", fmt.Errorf("Store: %w", err)
	}
	return gcs.URI(o.Bucket, object), nil
}

var (
	_ Output = FileOutput{}
	_ Output = GCSOutput{}
)
