// Package cleanup expires stored batches and purges old teaser media.
package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/linksense/domain/repositories"
)

const (
	defaultInterval = 30 * time.Minute
	initialDelay    = 1 * time.Minute
	runTimeout      = 5 * time.Minute
)

// Service handles background retention tasks
type Service struct {
	batches  repositories.BatchRepository
	media    repositories.MediaStore
	mediaTTL time.Duration
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	now      func() time.Time
}

// NewService creates a new cleanup service. Media older than mediaTTL is
// purged; zero keeps media forever.
func NewService(batches repositories.BatchRepository, media repositories.MediaStore, mediaTTL, interval time.Duration, logger *zap.Logger) *Service {
	if interval <= 0 {
		interval = defaultInterval
		logger.Info("Using default cleanup interval", zap.Duration("interval", interval))
	}
	return &Service{
		batches:  batches,
		media:    media,
		mediaTTL: mediaTTL,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
		now:      time.Now,
	}
}

// Start begins the background cleanup process
func (s *Service) Start() {
	go s.cleanupLoop()
	s.logger.Info("Cleanup service started", zap.Duration("interval", s.interval))
}

// Stop gracefully stops the cleanup service
func (s *Service) Stop() {
	close(s.stopChan)
	s.logger.Info("Cleanup service stopped")
}

// cleanupLoop runs the cleanup process periodically
func (s *Service) cleanupLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run initial cleanup after 1 minute
	initialTimer := time.NewTimer(initialDelay)
	defer initialTimer.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-initialTimer.C:
			s.RunOnce(context.Background())
		case <-ticker.C:
			s.RunOnce(context.Background())
		}
	}
}

// Result counts what one cleanup pass removed.
type Result struct {
	ExpiredBatches int
	PurgedMedia    int
}

// RunOnce performs one cleanup pass. Failures are logged and do not stop the
// other step.
func (s *Service) RunOnce(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	s.logger.Info("Starting cleanup")

	var result Result
	now := s.now()

	n, err := s.batches.ExpireBefore(ctx, now)
	if err != nil {
		s.logger.Error("Failed to expire batches", zap.Error(err))
	} else {
		result.ExpiredBatches = n
	}

	if s.media != nil && s.mediaTTL > 0 {
		n, err := s.media.Purge(ctx, now.Add(-s.mediaTTL))
		if err != nil {
			s.logger.Error("Failed to purge media", zap.Error(err))
		} else {
			result.PurgedMedia = n
		}
	}

	s.logger.Info("Cleanup completed",
		zap.Int("expiredBatches", result.ExpiredBatches),
		zap.Int("purgedMedia", result.PurgedMedia))

	return result
}
