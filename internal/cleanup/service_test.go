package cleanup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/linksense/adapters"
	"github.com/satriahrh/linksense/adapters/storage"
	"github.com/satriahrh/linksense/domain/entities"
)

func newBatch(ttl time.Duration) *entities.Batch {
	return entities.NewBatch(entities.StyleShort, "English",
		[]string{"https://example.com"},
		[]entities.SummaryResult{{URL: "https://example.com", Title: "Example"}},
		ttl)
}

func TestService_RunOnce(t *testing.T) {
	ctx := context.Background()

	batches := adapters.NewMemoryBatchRepository()
	if err := batches.Create(ctx, newBatch(time.Hour)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := batches.Create(ctx, newBatch(48*time.Hour)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	dir := t.TempDir()
	media, err := storage.NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}
	for _, id := range []string{"old", "fresh"} {
		if _, err := media.Save(ctx, id, "video/mp4", strings.NewReader(id)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
	old := time.Now().Add(-72 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "old"), old, old); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	s := NewService(batches, media, 24*time.Hour, time.Minute, zap.NewNop())
	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	got := s.RunOnce(ctx)

	if got.ExpiredBatches != 1 {
		t.Errorf("Expected 1 expired batch, got %d", got.ExpiredBatches)
	}
	if got.PurgedMedia != 1 {
		t.Errorf("Expected 1 purged media, got %d", got.PurgedMedia)
	}
	if batches.Count() != 1 {
		t.Errorf("Expected 1 remaining batch, got %d", batches.Count())
	}
	if _, _, err := media.Open(ctx, "fresh"); err != nil {
		t.Errorf("fresh media should remain: %v", err)
	}
}

type failingBatches struct {
	*adapters.MemoryBatchRepository
}

func (failingBatches) ExpireBefore(ctx context.Context, t time.Time) (int, error) {
	return 0, errors.New("database unavailable")
}

func TestService_RunOnce_BatchFailureStillPurgesMedia(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	media, err := storage.NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}
	if _, err := media.Save(ctx, "stale", "video/mp4", strings.NewReader("x")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	old := time.Now().Add(-48 * time.Hour)
	os.Chtimes(filepath.Join(dir, "stale"), old, old)

	s := NewService(failingBatches{adapters.NewMemoryBatchRepository()}, media, time.Hour, 0, zap.NewNop())
	got := s.RunOnce(ctx)

	if got.ExpiredBatches != 0 || got.PurgedMedia != 1 {
		t.Errorf("Unexpected result %+v", got)
	}
	if s.interval != defaultInterval {
		t.Errorf("Expected default interval, got %v", s.interval)
	}
}

func TestService_StartStop(t *testing.T) {
	s := NewService(adapters.NewMemoryBatchRepository(), nil, 0, time.Hour, zap.NewNop())
	s.Start()
	s.Stop()
}
