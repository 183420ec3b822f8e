package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/satriahrh/linksense/domain/repositories"
)

// GCSStorage stores media as objects under prefix in bucket.
type GCSStorage struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ repositories.MediaStore = (*GCSStorage)(nil)

func NewGCSStorage(ctx context.Context, bucket, prefix string) (*GCSStorage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (s *GCSStorage) Close() error {
	return s.client.Close()
}

func (s *GCSStorage) Save(ctx context.Context, id, contentType string, r io.Reader) (int64, error) {
	if err := validateID(id); err != nil {
		return 0, err
	}

	w := s.client.Bucket(s.bucket).Object(s.objectName(id)).NewWriter(ctx)
	w.ContentType = contentType

	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return 0, fmt.Errorf("failed to upload media %s: %w", id, err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("failed to finalize upload of %s: %w", id, err)
	}

	return n, nil
}

func (s *GCSStorage) Open(ctx context.Context, id string) (io.ReadCloser, string, error) {
	if err := validateID(id); err != nil {
		return nil, "", err
	}

	reader, err := s.client.Bucket(s.bucket).Object(s.objectName(id)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, "", fmt.Errorf("media %s: %w", id, repositories.ErrNotFound)
		}
		return nil, "", fmt.Errorf("failed to open gs://%s/%s: %w", s.bucket, s.objectName(id), err)
	}

	return reader, reader.Attrs.ContentType, nil
}

func (s *GCSStorage) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	err := s.client.Bucket(s.bucket).Object(s.objectName(id)).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("media %s: %w", id, repositories.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete media %s: %w", id, err)
	}
	return nil
}

func (s *GCSStorage) Purge(ctx context.Context, before time.Time) (int, error) {
	bkt := s.client.Bucket(s.bucket)
	it := bkt.Objects(ctx, &storage.Query{Prefix: s.prefix})

	removed := 0
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return removed, fmt.Errorf("failed to list objects: %w", err)
		}
		if !attrs.Created.Before(before) {
			continue
		}
		if err := bkt.Object(attrs.Name).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return removed, fmt.Errorf("failed to delete %s: %w", attrs.Name, err)
		}
		removed++
	}
	return removed, nil
}

func (s *GCSStorage) objectName(id string) string {
	if s.prefix == "" {
		return id
	}
	return path.Join(strings.TrimSuffix(s.prefix, "/"), id)
}
