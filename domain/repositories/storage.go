package repositories

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/satriahrh/linksense/domain/entities"
)

// ErrNotFound is returned when a stored item does not exist or has expired.
var ErrNotFound = errors.New("not found")

// BatchRepository defines data access methods for summary batches
type BatchRepository interface {
	Create(ctx context.Context, batch *entities.Batch) error
	GetByID(ctx context.Context, id string) (*entities.Batch, error)
	// ExpireBefore marks every batch whose expiry is before t as expired and
	// returns how many were touched.
	ExpireBefore(ctx context.Context, t time.Time) (int, error)
}

// MediaStore keeps generated media blobs addressable by id.
type MediaStore interface {
	Save(ctx context.Context, id, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, id string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, id string) error
	// Purge removes media created before t.
	Purge(ctx context.Context, before time.Time) (int, error)
}
