// Package storage keeps generated media on local disk or in Google Cloud Storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/satriahrh/linksense/domain/repositories"
)

const mimeSuffix = ".mime"

var mediaIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// LocalStorage stores each blob as a file named by its id, with the content
// type kept in a sidecar file.
type LocalStorage struct {
	dir string
}

var _ repositories.MediaStore = (*LocalStorage)(nil)

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

func (s *LocalStorage) Save(ctx context.Context, id, contentType string, r io.Reader) (int64, error) {
	if err := validateID(id); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(s.dir, id+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to write media %s: %w", id, err)
	}

	if err := os.WriteFile(s.path(id)+mimeSuffix, []byte(contentType), 0644); err != nil {
		return 0, fmt.Errorf("failed to write media type: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(id)); err != nil {
		return 0, fmt.Errorf("failed to move media into place: %w", err)
	}

	return n, nil
}

func (s *LocalStorage) Open(ctx context.Context, id string) (io.ReadCloser, string, error) {
	if err := validateID(id); err != nil {
		return nil, "", err
	}

	f, err := os.Open(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("media %s: %w", id, repositories.ErrNotFound)
		}
		return nil, "", fmt.Errorf("failed to open media: %w", err)
	}

	contentType := "application/octet-stream"
	if b, err := os.ReadFile(s.path(id) + mimeSuffix); err == nil && len(b) > 0 {
		contentType = string(b)
	}
	return f, contentType, nil
}

func (s *LocalStorage) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := os.Remove(s.path(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("media %s: %w", id, repositories.ErrNotFound)
		}
		return fmt.Errorf("failed to delete media: %w", err)
	}
	_ = os.Remove(s.path(id) + mimeSuffix)
	return nil
}

func (s *LocalStorage) Purge(ctx context.Context, before time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list media dir: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), mimeSuffix) || !mediaIDPattern.MatchString(e.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(before) {
			continue
		}
		if err := s.Delete(ctx, e.Name()); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (s *LocalStorage) path(id string) string {
	return filepath.Join(s.dir, id)
}

func validateID(id string) error {
	if !mediaIDPattern.MatchString(id) {
		return fmt.Errorf("invalid media id %q", id)
	}
	return nil
}
