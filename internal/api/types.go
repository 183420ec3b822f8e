package api

import (
	"time"

	"github.com/satriahrh/linksense/domain/entities"
)

// SummarizeRequest represents the request payload for a summary batch
type SummarizeRequest struct {
	URLs     []string `json:"urls"`
	Style    string   `json:"style"`
	Language string   `json:"language"`
}

// SummaryResultView is a summary result with its derived display fields
type SummaryResultView struct {
	entities.SummaryResult
	EfficiencyGain int `json:"efficiencyGain"`
}

// BatchResponse represents a stored batch
type BatchResponse struct {
	ID        string              `json:"id"`
	Style     string              `json:"style"`
	Language  string              `json:"language"`
	Results   []SummaryResultView `json:"results"`
	CreatedAt time.Time           `json:"created_at"`
	ExpiresAt time.Time           `json:"expires_at"`
}

// TeaserRequest represents the request payload for a teaser video. Text wins
// over a batch reference.
type TeaserRequest struct {
	BatchID string `json:"batch_id"`
	Index   int    `json:"index"`
	Text    string `json:"text"`
}

// TeaserResponse represents a generated teaser
type TeaserResponse struct {
	MediaID   string    `json:"media_id"`
	MediaURL  string    `json:"media_url"`
	MIMEType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CredentialsResponse lists selectable credentials
type CredentialsResponse struct {
	Available   []string `json:"available"`
	HasSelected bool     `json:"has_selected"`
	Selected    string   `json:"selected,omitempty"`
}

// SelectCredentialRequest represents the request payload for switching credentials
type SelectCredentialRequest struct {
	Name string `json:"name"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Message     string `json:"message,omitempty"`
	Remediation string `json:"remediation,omitempty"`
}

func newBatchResponse(b *entities.Batch) BatchResponse {
	results := make([]SummaryResultView, len(b.Results))
	for i := range b.Results {
		results[i] = SummaryResultView{
			SummaryResult:  b.Results[i],
			EfficiencyGain: b.Results[i].EfficiencyGain(),
		}
	}
	return BatchResponse{
		ID:        b.ID,
		Style:     string(b.Style),
		Language:  b.Language,
		Results:   results,
		CreatedAt: b.CreatedAt,
		ExpiresAt: b.ExpiresAt,
	}
}
