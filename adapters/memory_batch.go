package adapters

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/satriahrh/linksense/domain/entities"
	"github.com/satriahrh/linksense/domain/repositories"
)

// MemoryBatchRepository is an in-memory implementation of BatchRepository.
// Batches are lost on restart.
type MemoryBatchRepository struct {
	mu      sync.RWMutex
	batches map[string]*entities.Batch
}

var _ repositories.BatchRepository = (*MemoryBatchRepository)(nil)

// NewMemoryBatchRepository creates a new in-memory batch repository
func NewMemoryBatchRepository() *MemoryBatchRepository {
	return &MemoryBatchRepository{
		batches: make(map[string]*entities.Batch),
	}
}

// Create implements BatchRepository interface
func (m *MemoryBatchRepository) Create(ctx context.Context, batch *entities.Batch) error {
	if batch == nil {
		return errors.New("batch cannot be nil")
	}
	if err := batch.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.batches[batch.ID]; exists {
		return fmt.Errorf("batch %s already exists", batch.ID)
	}

	m.batches[batch.ID] = cloneBatch(batch)
	return nil
}

// GetByID implements BatchRepository interface. Expired batches are not found.
func (m *MemoryBatchRepository) GetByID(ctx context.Context, id string) (*entities.Batch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	batch, exists := m.batches[id]
	if !exists || batch.IsExpired() {
		return nil, fmt.Errorf("batch %s: %w", id, repositories.ErrNotFound)
	}

	return cloneBatch(batch), nil
}

// ExpireBefore implements BatchRepository interface. Expired batches are dropped.
func (m *MemoryBatchRepository) ExpireBefore(ctx context.Context, t time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for id, batch := range m.batches {
		if batch.ExpiresAt.Before(t) || batch.Status == entities.BatchStatusExpired {
			delete(m.batches, id)
			count++
		}
	}
	return count, nil
}

// Count returns the number of stored batches (for testing purposes)
func (m *MemoryBatchRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.batches)
}

func cloneBatch(b *entities.Batch) *entities.Batch {
	c := *b
	c.URLs = append([]string(nil), b.URLs...)
	c.Results = make([]entities.SummaryResult, len(b.Results))
	for i, r := range b.Results {
		r.Bullets = append([]string(nil), r.Bullets...)
		r.Insights = append([]string(nil), r.Insights...)
		r.Sources = append([]entities.Source(nil), r.Sources...)
		c.Results[i] = r
	}
	return &c
}
