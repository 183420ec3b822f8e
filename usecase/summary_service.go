package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/linksense/domain"
	"github.com/satriahrh/linksense/domain/entities"
	"github.com/satriahrh/linksense/domain/repositories"
)

// SummaryService runs batches of URL summaries
type SummaryService struct {
	summarizer repositories.Summarizer
	batches    repositories.BatchRepository
	creds      repositories.CredentialSelector
	batchTTL   time.Duration
	logger     *zap.Logger
}

// NewSummaryService creates a new summary service
func NewSummaryService(
	summarizer repositories.Summarizer,
	batches repositories.BatchRepository,
	creds repositories.CredentialSelector,
	batchTTL time.Duration,
	logger *zap.Logger,
) *SummaryService {
	return &SummaryService{
		summarizer: summarizer,
		batches:    batches,
		creds:      creds,
		batchTTL:   batchTTL,
		logger:     logger,
	}
}

// Run summarizes urls one after another, in order. The first failure aborts
// the batch: results gathered so far are discarded and no further URL is
// attempted. A completed batch is stored and returned.
func (s *SummaryService) Run(ctx context.Context, urls []string, style, language string) (*entities.Batch, error) {
	var targets []string
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			targets = append(targets, u)
		}
	}
	if len(targets) == 0 {
		return nil, domain.ErrNoURLs
	}

	summaryStyle, err := entities.ParseSummaryStyle(style)
	if err != nil {
		return nil, err
	}
	lang, err := entities.ParseLanguage(language)
	if err != nil {
		return nil, err
	}

	cred, err := s.credential(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Starting summary batch",
		zap.Int("urls", len(targets)),
		zap.String("style", string(summaryStyle)),
		zap.String("language", lang))

	results := make([]entities.SummaryResult, 0, len(targets))
	for i, u := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := s.summarizer.Summarize(ctx, cred, entities.SummaryRequest{
			URL:      u,
			Style:    summaryStyle,
			Language: lang,
		})
		if err != nil {
			s.logger.Warn("Summary batch aborted",
				zap.Int("index", i),
				zap.String("url", u),
				zap.Int("discarded", len(results)),
				zap.Error(err))
			return nil, err
		}
		results = append(results, *result)
	}

	batch := entities.NewBatch(summaryStyle, lang, targets, results, s.batchTTL)
	if err := s.batches.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to store batch: %w", err)
	}

	s.logger.Info("Summary batch completed",
		zap.String("batchID", batch.ID),
		zap.Int("results", len(results)))

	return batch, nil
}

// credential resolves the selected key. A summarizer that needs no key runs
// with an empty credential when none is selected.
func (s *SummaryService) credential(ctx context.Context) (entities.Credential, error) {
	cred, err := s.creds.Current(ctx)
	if err == nil || !errors.Is(err, domain.ErrNoCredential) {
		return cred, err
	}
	if opt, ok := s.summarizer.(repositories.CredentialOptional); ok && !opt.NeedsCredential() {
		s.logger.Debug("No credential selected, summarizer runs without one")
		return entities.Credential{}, nil
	}
	return entities.Credential{}, err
}

// Get returns a stored batch
func (s *SummaryService) Get(ctx context.Context, id string) (*entities.Batch, error) {
	return s.batches.GetByID(ctx, id)
}

// Export renders one result of a stored batch as a text attachment
func (s *SummaryService) Export(ctx context.Context, batchID string, index int) (text, filename string, err error) {
	batch, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return "", "", err
	}
	result, err := batch.Result(index)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", repositories.ErrNotFound, err)
	}
	return result.ExportText(), result.ExportFilename(), nil
}
