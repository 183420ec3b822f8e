package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/satriahrh/linksense/domain"
	"github.com/satriahrh/linksense/domain/entities"
	"github.com/satriahrh/linksense/domain/repositories"
)

// TeaserRequest names the paragraph to animate: either a batch result or
// free text.
type TeaserRequest struct {
	BatchID string
	Index   int
	Text    string
}

// TeaserService generates teaser videos and serves stored media
type TeaserService struct {
	generator repositories.TeaserGenerator
	batches   repositories.BatchRepository
	creds     repositories.CredentialSelector
	media     repositories.MediaStore
	logger    *zap.Logger
}

// NewTeaserService creates a new teaser service
func NewTeaserService(
	generator repositories.TeaserGenerator,
	batches repositories.BatchRepository,
	creds repositories.CredentialSelector,
	media repositories.MediaStore,
	logger *zap.Logger,
) *TeaserService {
	return &TeaserService{
		generator: generator,
		batches:   batches,
		creds:     creds,
		media:     media,
		logger:    logger,
	}
}

// Create makes sure a credential is selected, then renders a teaser. Any
// generation failure is reported as domain.ErrTeaserFailed wrapping the cause.
func (s *TeaserService) Create(ctx context.Context, req TeaserRequest) (*entities.Teaser, error) {
	text, err := s.sourceText(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.creds.EnsureSelected(ctx); err != nil {
		return nil, err
	}
	cred, err := s.creds.Current(ctx)
	if err != nil {
		return nil, err
	}

	teaser, err := s.generator.GenerateTeaser(ctx, cred, text)
	if err != nil {
		s.logger.Error("Teaser generation failed",
			zap.String("credential", cred.Name),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrTeaserFailed, err)
	}

	s.logger.Info("Teaser created",
		zap.String("mediaID", teaser.MediaID),
		zap.String("batchID", req.BatchID))
	return teaser, nil
}

// Media opens a stored media item
func (s *TeaserService) Media(ctx context.Context, id string) (io.ReadCloser, string, error) {
	return s.media.Open(ctx, id)
}

func (s *TeaserService) sourceText(ctx context.Context, req TeaserRequest) (string, error) {
	if text := strings.TrimSpace(req.Text); text != "" {
		return text, nil
	}
	if req.BatchID == "" {
		return "", domain.ErrNoTeaserSource
	}

	batch, err := s.batches.GetByID(ctx, req.BatchID)
	if err != nil {
		return "", err
	}
	result, err := batch.Result(req.Index)
	if err != nil {
		return "", fmt.Errorf("%w: %v", repositories.ErrNotFound, err)
	}
	return result.Paragraph, nil
}
