package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/satriahrh/linksense/internal/config"
)

// Store is an open connection scoped to the configured database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// clientOptions maps cfg onto driver options, falling back to the package
// defaults for unset fields.
func clientOptions(cfg config.MongoConfig) (*options.ClientOptions, string) {
	if cfg.URI == "" {
		cfg.URI = config.DefaultMongoURI
	}
	if cfg.Database == "" {
		cfg.Database = config.DefaultMongoDatabase
	}
	if cfg.PoolSize == 0 {
		cfg.PoolSize = config.DefaultMongoPoolSize
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = config.DefaultMongoDialTimeout
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName("linksense").
		SetMaxPoolSize(cfg.PoolSize).
		SetMaxConnIdleTime(30 * time.Minute).
		SetConnectTimeout(cfg.DialTimeout).
		SetServerSelectionTimeout(cfg.DialTimeout)
	return opts, cfg.Database
}

// Open connects and pings within cfg.DialTimeout.
func Open(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*Store, error) {
	opts, dbName := clientOptions(cfg)

	ctx, cancel := context.WithTimeout(ctx, *opts.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("Connected to MongoDB",
		zap.String("database", dbName),
		zap.Uint64("poolSize", *opts.MaxPoolSize))

	return &Store{client: client, db: client.Database(dbName), logger: logger}, nil
}

// Batches returns the batch repository backed by this store.
func (s *Store) Batches() *BatchRepository {
	return NewBatchRepository(s.db, s.logger)
}

func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		s.logger.Error("Failed to disconnect from MongoDB", zap.Error(err))
		return err
	}
	s.logger.Info("Disconnected from MongoDB")
	return nil
}
