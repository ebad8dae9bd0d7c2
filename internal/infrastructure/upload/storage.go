// Package upload abstracts where uploaded listing images land: a local
// directory for development or a GCS bucket in production. Save returns
// a handle (URL or relative path) that is stored on the item.
package upload

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

type Storage interface {
	Save(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// Local writes uploads under Dir, mirroring the classic uploads/ folder.
type Local struct {
	Dir string
}

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Local{Dir: dir}, nil
}

func (l *Local) Save(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	dst := filepath.Join(l.Dir, filepath.FromSlash(objectPath))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return "/" + filepath.ToSlash(filepath.Join(filepath.Base(l.Dir), objectPath)), nil
}
