package llm

import (
	"context"
	"fmt"
	"net/url"

	"github.com/satriahrh/linksense/domain"
	"github.com/satriahrh/linksense/domain/entities"
	"github.com/satriahrh/linksense/domain/repositories"
)

// MockSummarizer returns canned summaries without calling any backend
type MockSummarizer struct{}

var (
	_ repositories.Summarizer         = (*MockSummarizer)(nil)
	_ repositories.CredentialOptional = (*MockSummarizer)(nil)
)

// NewMockSummarizer creates a new mock summarizer
func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{}
}

// NeedsCredential implements repositories.CredentialOptional. The mock never
// calls a backend.
func (m *MockSummarizer) NeedsCredential() bool {
	return false
}

// Summarize implements repositories.Summarizer
func (m *MockSummarizer) Summarize(ctx context.Context, cred entities.Credential, req entities.SummaryRequest) (*entities.SummaryResult, error) {
	normalized, err := entities.NormalizeURL(req.URL)
	if err != nil {
		return nil, domain.NewServiceError(domain.KindInvalidRequest, "invalid url", err)
	}

	host := normalized
	if u, err := url.Parse(normalized); err == nil && u.Host != "" {
		host = u.Host
	}

	return &entities.SummaryResult{
		URL:       normalized,
		Title:     fmt.Sprintf("Insights from %s", host),
		Paragraph: fmt.Sprintf("A %s summary of %s prepared in %s.", req.Style, host, req.Language),
		Bullets: []string{
			"The page introduces its main topic clearly",
			"Supporting facts follow the introduction",
			"The conclusion restates the key argument",
		},
		Insights: []string{
			"Readers benefit most from the final section",
		},
		ReadingTimeOriginal: defaultReadingTimeOriginal,
		ReadingTimeSummary:  defaultReadingTimeSummary,
		Language:            req.Language,
		Sources:             []entities.Source{{URI: normalized, Title: host}},
	}, nil
}
