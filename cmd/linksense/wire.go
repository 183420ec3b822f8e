package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/satriahrh/linksense/adapters"
	"github.com/satriahrh/linksense/adapters/credentials"
	"github.com/satriahrh/linksense/adapters/llm"
	"github.com/satriahrh/linksense/adapters/mongo"
	"github.com/satriahrh/linksense/adapters/storage"
	"github.com/satriahrh/linksense/domain/repositories"
	"github.com/satriahrh/linksense/internal/config"
	"github.com/satriahrh/linksense/internal/prompts"
)

// components are the adapters shared by every command. closers run in
// reverse order on shutdown.
type components struct {
	prompts    *prompts.Prompts
	creds      repositories.CredentialSelector
	summarizer repositories.Summarizer
	batches    repositories.BatchRepository
	media      repositories.MediaStore

	closers []func(context.Context) error
}

func (c *components) close(ctx context.Context, logger *zap.Logger) {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			logger.Warn("Failed to release resource", zap.Error(err))
		}
	}
}

func buildComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*components, error) {
	c := &components{}

	p, err := loadPrompts(cfg.PromptsFile, logger)
	if err != nil {
		return nil, err
	}
	c.prompts = p

	if err := c.buildCredentials(ctx, cfg, logger); err != nil {
		c.close(ctx, logger)
		return nil, err
	}
	if err := c.buildSummarizer(cfg, logger); err != nil {
		c.close(ctx, logger)
		return nil, err
	}
	if err := c.buildBatches(ctx, cfg, logger); err != nil {
		c.close(ctx, logger)
		return nil, err
	}
	if err := c.buildMedia(ctx, cfg, logger); err != nil {
		c.close(ctx, logger)
		return nil, err
	}
	return c, nil
}

func loadPrompts(path string, logger *zap.Logger) (*prompts.Prompts, error) {
	if path == "" {
		return prompts.Load()
	}
	p, err := prompts.LoadFrom(path)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded prompts", zap.String("path", path))
	return p, nil
}

func (c *components) buildCredentials(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	switch cfg.Creds.Source {
	case "secretmanager":
		keyring, err := credentials.NewSecretManagerKeyring(ctx, cfg.Creds.GCPProject, cfg.Creds.Names, logger)
		if err != nil {
			return err
		}
		c.creds = keyring
		c.closers = append(c.closers, func(context.Context) error { return keyring.Close() })
	default:
		c.creds = credentials.NewEnvKeyring(os.LookupEnv, cfg.Creds.Names, logger)
	}
	return nil
}

func (c *components) buildSummarizer(cfg *config.Config, logger *zap.Logger) error {
	if cfg.Gemini.Provider == "mock" {
		logger.Info("Using mock summarizer")
		c.summarizer = llm.NewMockSummarizer()
		return nil
	}

	summarizer, err := llm.NewGeminiSummarizer(llm.GeminiConfig{
		Model:        cfg.Gemini.TextModel,
		Temperature:  cfg.Gemini.Temperature,
		StrictSchema: cfg.Gemini.StrictSchema,
		BaseURL:      cfg.Gemini.BaseURL,
	}, c.prompts, logger)
	if err != nil {
		return fmt.Errorf("failed to create summarizer: %w", err)
	}
	c.summarizer = summarizer
	return nil
}

func (c *components) buildBatches(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Batch.Store != "mongo" {
		c.batches = adapters.NewMemoryBatchRepository()
		return nil
	}

	store, err := mongo.Open(ctx, cfg.Mongo, logger)
	if err != nil {
		return err
	}
	c.batches = store.Batches()
	c.closers = append(c.closers, store.Close)
	return nil
}

func (c *components) buildMedia(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Media.Store == "gcs" {
		gcs, err := storage.NewGCSStorage(ctx, cfg.Media.GCSBucket, cfg.Media.GCSPrefix)
		if err != nil {
			return err
		}
		logger.Info("Using GCS media store", zap.String("bucket", cfg.Media.GCSBucket))
		c.media = gcs
		c.closers = append(c.closers, func(context.Context) error { return gcs.Close() })
		return nil
	}

	local, err := storage.NewLocalStorage(cfg.Media.Dir)
	if err != nil {
		return err
	}
	logger.Info("Using local media store", zap.String("dir", cfg.Media.Dir))
	c.media = local
	return nil
}
