package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/satriahrh/linksense/domain/entities"
	"github.com/satriahrh/linksense/domain/repositories"
)

func newTestBatch(ttl time.Duration) *entities.Batch {
	return entities.NewBatch(entities.StyleShort, "English",
		[]string{"https://go.dev"},
		[]entities.SummaryResult{{URL: "https://go.dev", Title: "Go", Bullets: []string{"fast"}}},
		ttl)
}

func TestMemoryBatchRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBatchRepository()

	batch := newTestBatch(time.Hour)
	if err := repo.Create(ctx, batch); err != nil {
		t.Fatalf("Failed to create batch: %v", err)
	}

	if err := repo.Create(ctx, batch); err == nil {
		t.Error("Expected duplicate create to fail")
	}

	got, err := repo.GetByID(ctx, batch.ID)
	if err != nil {
		t.Fatalf("Failed to get batch: %v", err)
	}
	if got.Results[0].Title != "Go" {
		t.Errorf("Expected title Go, got %s", got.Results[0].Title)
	}

	// Returned batches are copies.
	got.Results[0].Bullets[0] = "mutated"
	again, _ := repo.GetByID(ctx, batch.ID)
	if again.Results[0].Bullets[0] != "fast" {
		t.Error("Repository state should not be mutated through returned batches")
	}
}

func TestMemoryBatchRepository_NotFound(t *testing.T) {
	repo := NewMemoryBatchRepository()

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemoryBatchRepository_CreateInvalid(t *testing.T) {
	repo := NewMemoryBatchRepository()

	if err := repo.Create(context.Background(), nil); err == nil {
		t.Error("Expected error for nil batch")
	}
	if err := repo.Create(context.Background(), &entities.Batch{}); err == nil {
		t.Error("Expected error for invalid batch")
	}
}

func TestMemoryBatchRepository_ExpireBefore(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBatchRepository()

	live := newTestBatch(time.Hour)
	stale := newTestBatch(time.Hour)
	stale.ExpiresAt = time.Now().Add(-time.Minute)

	for _, b := range []*entities.Batch{live, stale} {
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("Failed to create batch: %v", err)
		}
	}

	if _, err := repo.GetByID(ctx, stale.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("Expired batch should not be readable, got %v", err)
	}

	n, err := repo.ExpireBefore(ctx, time.Now())
	if err != nil {
		t.Fatalf("ExpireBefore failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 expired batch, got %d", n)
	}
	if repo.Count() != 1 {
		t.Errorf("Expected 1 remaining batch, got %d", repo.Count())
	}
}
