package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BatchStatus represents the lifecycle status of a stored batch
type BatchStatus string

const (
	BatchStatusReady   BatchStatus = "ready"
	BatchStatusExpired BatchStatus = "expired"
)

// DefaultBatchTTL is how long a batch stays addressable after creation.
const DefaultBatchTTL = 24 * time.Hour

// Batch is the ordered outcome of summarizing a list of URLs in one request.
type Batch struct {
	ID        string          `json:"id" bson:"_id"`
	Style     SummaryStyle    `json:"style" bson:"style"`
	Language  string          `json:"language" bson:"language"`
	URLs      []string        `json:"urls" bson:"urls"`
	Results   []SummaryResult `json:"results" bson:"results"`
	Status    BatchStatus     `json:"status" bson:"status"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	ExpiresAt time.Time       `json:"expires_at" bson:"expires_at"`
}

// NewBatch creates a ready batch with a fresh id.
func NewBatch(style SummaryStyle, language string, urls []string, results []SummaryResult, ttl time.Duration) *Batch {
	if ttl <= 0 {
		ttl = DefaultBatchTTL
	}
	now := time.Now()
	return &Batch{
		ID:        uuid.New().String(),
		Style:     style,
		Language:  language,
		URLs:      urls,
		Results:   results,
		Status:    BatchStatusReady,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired checks if the batch has passed its expiry or was marked expired
func (b *Batch) IsExpired() bool {
	return time.Now().After(b.ExpiresAt) || b.Status != BatchStatusReady
}

// Expire marks the batch as expired
func (b *Batch) Expire() {
	b.Status = BatchStatusExpired
}

// Result returns the i-th summary of the batch.
func (b *Batch) Result(i int) (*SummaryResult, error) {
	if i < 0 || i >= len(b.Results) {
		return nil, fmt.Errorf("result index %d out of range [0,%d)", i, len(b.Results))
	}
	return &b.Results[i], nil
}

// VoiceContext is the aggregated summaries serialized for the voice persona.
func (b *Batch) VoiceContext() (string, error) {
	data, err := json.Marshal(b.Results)
	if err != nil {
		return "", fmt.Errorf("failed to marshal batch results: %w", err)
	}
	return string(data), nil
}

// Validate validates the batch data
func (b *Batch) Validate() error {
	if b.ID == "" {
		return errors.New("id is required")
	}
	if len(b.Results) == 0 {
		return errors.New("batch has no results")
	}
	if len(b.URLs) != len(b.Results) {
		return errors.New("urls and results length mismatch")
	}
	if b.Status != BatchStatusReady && b.Status != BatchStatusExpired {
		return errors.New("invalid batch status")
	}
	return nil
}
