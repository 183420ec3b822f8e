package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/satriahrh/linksense/domain"
	"github.com/satriahrh/linksense/domain/entities"
)

// NewGenAIClient builds a Gemini API client bound to cred. A fresh client is
// built per call so a credential switch takes effect on the next request.
func NewGenAIClient(ctx context.Context, cred entities.Credential, baseURL string) (*genai.Client, error) {
	if !cred.Valid() {
		return nil, domain.ErrNoCredential
	}

	cfg := &genai.ClientConfig{
		APIKey:  cred.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}
