package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/satriahrh/linksense/domain/entities"
	"github.com/satriahrh/linksense/domain/repositories"
)

// TestBatchRepository_Integration requires a running MongoDB instance
// (skipped if MONGODB_URI is not set)
func TestBatchRepository_Integration(t *testing.T) {
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		t.Skip("Skipping MongoDB integration test - MONGODB_URI not set")
	}

	ctx := context.Background()
	logger := zap.NewNop()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	testDB := client.Database("linksense_test")
	defer func() {
		testDB.Drop(ctx)
	}()

	repo := NewBatchRepository(testDB, logger)

	t.Run("CreateAndGetBatch", func(t *testing.T) {
		batch := entities.NewBatch(entities.StyleDetailed, "German",
			[]string{"https://go.dev"},
			[]entities.SummaryResult{{URL: "https://go.dev", Title: "Go", Sources: []entities.Source{{URI: "https://go.dev", Title: "Go"}}}},
			time.Hour)

		if err := repo.Create(ctx, batch); err != nil {
			t.Fatalf("Failed to create batch: %v", err)
		}

		got, err := repo.GetByID(ctx, batch.ID)
		if err != nil {
			t.Fatalf("Failed to get batch: %v", err)
		}
		if got.Language != "German" || got.Results[0].Sources[0].URI != "https://go.dev" {
			t.Errorf("Unexpected batch: %+v", got)
		}
	})

	t.Run("ExpireBefore", func(t *testing.T) {
		batch := entities.NewBatch(entities.StyleShort, "English",
			[]string{"https://example.com"},
			[]entities.SummaryResult{{URL: "https://example.com"}},
			time.Hour)
		batch.ExpiresAt = time.Now().Add(time.Minute)

		if err := repo.Create(ctx, batch); err != nil {
			t.Fatalf("Failed to create batch: %v", err)
		}

		n, err := repo.ExpireBefore(ctx, time.Now().Add(2*time.Minute))
		if err != nil {
			t.Fatalf("ExpireBefore failed: %v", err)
		}
		if n < 1 {
			t.Errorf("Expected at least one expired batch, got %d", n)
		}

		if _, err := repo.GetByID(ctx, batch.ID); !errors.Is(err, repositories.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for expired batch, got %v", err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		if _, err := repo.GetByID(ctx, "does-not-exist"); !errors.Is(err, repositories.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}
