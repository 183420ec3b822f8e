package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/satriahrh/linksense/domain/repositories"
	"github.com/satriahrh/linksense/internal/prompts"
	"github.com/satriahrh/linksense/internal/voice"
)

// VoiceService prepares live voice sessions that discuss a stored batch
type VoiceService struct {
	backend repositories.LiveBackend
	batches repositories.BatchRepository
	creds   repositories.CredentialSelector
	prompts *prompts.Prompts
	live    repositories.LiveConfig
	logger  *zap.Logger
}

// NewVoiceService creates a new voice service. live carries the model and
// voice; the system instruction is rendered per batch.
func NewVoiceService(
	backend repositories.LiveBackend,
	batches repositories.BatchRepository,
	creds repositories.CredentialSelector,
	p *prompts.Prompts,
	live repositories.LiveConfig,
	logger *zap.Logger,
) *VoiceService {
	return &VoiceService{
		backend: backend,
		batches: batches,
		creds:   creds,
		prompts: p,
		live:    live,
		logger:  logger,
	}
}

// NewSession builds an idle session whose persona knows every summary of the
// batch.
func (s *VoiceService) NewSession(ctx context.Context, batchID string, devices voice.Devices, onState func(voice.State)) (*voice.Session, error) {
	batch, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	summaries, err := batch.VoiceContext()
	if err != nil {
		return nil, err
	}

	instruction, err := s.prompts.RenderPersona(prompts.PersonaParams{Context: summaries})
	if err != nil {
		return nil, fmt.Errorf("failed to render persona: %w", err)
	}

	cred, err := s.creds.Current(ctx)
	if err != nil {
		return nil, err
	}

	live := s.live
	live.SystemInstruction = instruction

	s.logger.Info("Voice session prepared",
		zap.String("batchID", batchID),
		zap.Int("summaries", len(batch.Results)))

	return voice.NewSession(s.backend, devices, voice.SessionConfig{
		Credential: cred,
		Live:       live,
		OnState:    onState,
	}, s.logger), nil
}
