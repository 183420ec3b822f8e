package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/satriahrh/linksense/domain/entities"
	"github.com/satriahrh/linksense/domain/repositories"
)

const batchCollection = "batches"

// BatchRepository implements repositories.BatchRepository using MongoDB
type BatchRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

var _ repositories.BatchRepository = (*BatchRepository)(nil)

// NewBatchRepository creates a new MongoDB batch repository
func NewBatchRepository(db *mongo.Database, logger *zap.Logger) *BatchRepository {
	collection := db.Collection(batchCollection)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Index on status and expires_at for cleanup operations
		statusExpiresIndex := mongo.IndexModel{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "expires_at", Value: 1},
			},
		}

		// TTL index so the server drops expired batches on its own.
		ttlIndex := mongo.IndexModel{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		}

		_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
			statusExpiresIndex,
			ttlIndex,
		})

		if err != nil {
			logger.Error("Failed to create batch indexes", zap.Error(err))
		} else {
			logger.Info("Batch indexes created successfully")
		}
	}()

	return &BatchRepository{
		collection: collection,
		logger:     logger,
	}
}

// Create implements repositories.BatchRepository
func (r *BatchRepository) Create(ctx context.Context, batch *entities.Batch) error {
	if batch == nil {
		return errors.New("batch cannot be nil")
	}
	if err := batch.Validate(); err != nil {
		return err
	}

	if _, err := r.collection.InsertOne(ctx, batch); err != nil {
		r.logger.Error("Failed to create batch", zap.Error(err), zap.String("batch_id", batch.ID))
		return fmt.Errorf("failed to create batch: %w", err)
	}

	r.logger.Info("Batch created",
		zap.String("batch_id", batch.ID),
		zap.Int("results", len(batch.Results)))

	return nil
}

// GetByID implements repositories.BatchRepository
func (r *BatchRepository) GetByID(ctx context.Context, id string) (*entities.Batch, error) {
	filter := bson.M{
		"_id":        id,
		"status":     entities.BatchStatusReady,
		"expires_at": bson.M{"$gt": time.Now()},
	}

	var batch entities.Batch
	err := r.collection.FindOne(ctx, filter).Decode(&batch)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("batch %s: %w", id, repositories.ErrNotFound)
		}
		r.logger.Error("Failed to get batch by ID", zap.Error(err), zap.String("batch_id", id))
		return nil, fmt.Errorf("failed to get batch %s: %w", id, err)
	}

	return &batch, nil
}

// ExpireBefore implements repositories.BatchRepository
func (r *BatchRepository) ExpireBefore(ctx context.Context, t time.Time) (int, error) {
	filter := bson.M{
		"status":     entities.BatchStatusReady,
		"expires_at": bson.M{"$lt": t},
	}
	update := bson.M{
		"$set": bson.M{"status": entities.BatchStatusExpired},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to expire batches: %w", err)
	}

	if result.ModifiedCount > 0 {
		r.logger.Info("Expired batches", zap.Int64("count", result.ModifiedCount))
	}

	return int(result.ModifiedCount), nil
}
