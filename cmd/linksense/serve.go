package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/satriahrh/linksense/adapters/live"
	"github.com/satriahrh/linksense/adapters/video"
	"github.com/satriahrh/linksense/domain/repositories"
	"github.com/satriahrh/linksense/internal/api"
	"github.com/satriahrh/linksense/internal/auth"
	"github.com/satriahrh/linksense/internal/cleanup"
	"github.com/satriahrh/linksense/internal/config"
	"github.com/satriahrh/linksense/internal/websocket"
	"github.com/satriahrh/linksense/usecase"
)

func serveAction(c *cli.Context) error {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load(logger)
	if err != nil {
		return err
	}
	if port := c.String("port"); port != "" {
		cfg.Port = port
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	deps, err := buildComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close(context.Background(), logger)

	signer, err := auth.NewSigner(cfg.JWTSecret, cfg.MediaTokenTTL)
	if err != nil {
		return err
	}

	generator := video.NewVeoGenerator(video.VeoConfig{
		Model:        cfg.Video.Model,
		PollInterval: cfg.Video.PollInterval,
		PollTimeout:  cfg.Video.PollTimeout,
		BaseURL:      cfg.Gemini.BaseURL,
	}, deps.media, deps.prompts, logger)

	summaries := usecase.NewSummaryService(deps.summarizer, deps.batches, deps.creds, cfg.Batch.TTL, logger)
	teasers := usecase.NewTeaserService(generator, deps.batches, deps.creds, deps.media, logger)
	voices := usecase.NewVoiceService(
		live.NewGeminiLive(cfg.Gemini.BaseURL, logger),
		deps.batches,
		deps.creds,
		deps.prompts,
		repositories.LiveConfig{Model: cfg.Gemini.LiveModel, VoiceName: cfg.Gemini.VoiceName},
		logger,
	)

	hub := websocket.NewHub(voices, logger)
	go hub.Run(ctx)

	sweeper := cleanup.NewService(deps.batches, deps.media, cfg.MediaTokenTTL, cfg.Batch.CleanupInterval, logger)
	sweeper.Start()
	defer sweeper.Stop()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api.InitRoutes(e, api.NewHandler(summaries, teasers, deps.creds, signer, hub, logger))

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("port", cfg.Port),
		zap.String("provider", cfg.Gemini.Provider),
		zap.String("batchStore", cfg.Batch.Store),
		zap.String("mediaStore", cfg.Media.Store))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("Server exited")
	return nil
}
