package repositories

import (
	"context"

	"github.com/satriahrh/linksense/domain/entities"
)

// Summarizer turns one URL into a structured summary using a search-grounded model.
type Summarizer interface {
	// Summarize makes exactly one backend attempt. Failures are *domain.ServiceError.
	Summarize(ctx context.Context, cred entities.Credential, req entities.SummaryRequest) (*entities.SummaryResult, error)
}

// CredentialOptional is implemented by summarizers that can run without an
// API key, such as the offline mock.
type CredentialOptional interface {
	NeedsCredential() bool
}

// TeaserGenerator renders a short video for a summary paragraph.
type TeaserGenerator interface {
	GenerateTeaser(ctx context.Context, cred entities.Credential, summaryText string) (*entities.Teaser, error)
}
