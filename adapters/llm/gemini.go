package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/linksense/domain"
	"github.com/satriahrh/linksense/domain/entities"
	"github.com/satriahrh/linksense/domain/repositories"
	"github.com/satriahrh/linksense/internal/extract"
	"github.com/satriahrh/linksense/internal/prompts"
)

const (
	defaultModel               = "gemini-3-flash-preview"
	defaultTitle               = "Untitled Summary"
	defaultParagraph           = "No summary available."
	defaultReadingTimeOriginal = 5
	defaultReadingTimeSummary  = 1
)

// GeminiConfig holds configuration for the Gemini summarizer
type GeminiConfig struct {
	Model       string
	Temperature *float32
	// StrictSchema attaches a response schema. Some backends reject a schema
	// combined with the search tool, so it is off by default.
	StrictSchema bool
	BaseURL      string
}

// ValidateGeminiConfig validates the GeminiConfig
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.Temperature != nil && (*config.Temperature < 0 || *config.Temperature > 2) {
		return fmt.Errorf("temperature must be between 0 and 2, got %f", *config.Temperature)
	}
	return nil
}

// GeminiSummarizer implements repositories.Summarizer with search-grounded Gemini calls
type GeminiSummarizer struct {
	config  GeminiConfig
	prompts *prompts.Prompts
	logger  *zap.Logger
}

var _ repositories.Summarizer = (*GeminiSummarizer)(nil)

// NewGeminiSummarizer creates a new Gemini summarizer
func NewGeminiSummarizer(config GeminiConfig, p *prompts.Prompts, logger *zap.Logger) (*GeminiSummarizer, error) {
	if err := ValidateGeminiConfig(config); err != nil {
		return nil, err
	}

	if config.Model == "" {
		config.Model = defaultModel
		logger.Info("Using default model", zap.String("model", config.Model))
	}

	return &GeminiSummarizer{
		config:  config,
		prompts: p,
		logger:  logger,
	}, nil
}

// Summarize implements repositories.Summarizer
func (g *GeminiSummarizer) Summarize(ctx context.Context, cred entities.Credential, req entities.SummaryRequest) (*entities.SummaryResult, error) {
	url, err := entities.NormalizeURL(req.URL)
	if err != nil {
		return nil, domain.NewServiceError(domain.KindInvalidRequest, "invalid url", err)
	}

	prompt, err := g.prompts.RenderSummary(prompts.SummaryParams{
		URL:      url,
		Language: req.Language,
		Style:    string(req.Style),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render summary prompt: %w", err)
	}

	client, err := NewGenAIClient(ctx, cred, g.config.BaseURL)
	if err != nil {
		return nil, domain.NewServiceError(domain.KindInvalidRequest, requestErrorMessage, err)
	}

	g.logger.Info("Summarizing URL",
		zap.String("url", url),
		zap.String("style", string(req.Style)),
		zap.String("language", req.Language),
		zap.String("credential", cred.Name))

	resp, err := client.Models.GenerateContent(ctx, g.config.Model, genai.Text(prompt), g.generateConfig())
	if err != nil {
		classified := ClassifyError(err)
		g.logger.Error("Summarization failed",
			zap.String("url", url),
			zap.String("kind", string(domain.KindOf(classified))),
			zap.Error(err))
		return nil, classified
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, domain.NewServiceError(domain.KindEmptyResponse, emptyResponseMessage, nil)
	}

	data, err := extract.Object(text)
	if err != nil {
		g.logger.Warn("Model response was not JSON", zap.String("url", url), zap.Int("length", len(text)))
		return nil, err
	}

	result := MapSummary(data, url, req.Language)
	result.Sources = groundingSources(resp)

	g.logger.Info("Summary ready",
		zap.String("url", url),
		zap.String("title", result.Title),
		zap.Int("sources", len(result.Sources)))

	return result, nil
}

func (g *GeminiSummarizer) generateConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Tools:       []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		Temperature: g.config.Temperature,
	}
	if g.config.StrictSchema {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = summarySchema()
	}
	return cfg
}

// MapSummary fills a SummaryResult from a decoded model record, applying
// defaults for every missing or mistyped field.
func MapSummary(data map[string]any, url, language string) *entities.SummaryResult {
	return &entities.SummaryResult{
		URL:                 url,
		Title:               stringOr(data["title"], defaultTitle),
		Paragraph:           stringOr(data["paragraph"], defaultParagraph),
		Bullets:             stringList(data["bullets"]),
		Insights:            stringList(data["insights"]),
		ReadingTimeOriginal: positiveOr(data["readingTimeOriginal"], defaultReadingTimeOriginal),
		ReadingTimeSummary:  positiveOr(data["readingTimeSummary"], defaultReadingTimeSummary),
		Language:            stringOr(data["language"], language),
	}
}

func groundingSources(resp *genai.GenerateContentResponse) []entities.Source {
	sources := []entities.Source{}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return sources
	}
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		sources = append(sources, entities.Source{URI: chunk.Web.URI, Title: chunk.Web.Title})
	}
	return sources
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func stringList(v any) []string {
	out := []string{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func positiveOr(v any, fallback float64) float64 {
	if f, ok := v.(float64); ok && f > 0 {
		return f
	}
	return fallback
}

func summarySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":     {Type: genai.TypeString, Description: "Clear descriptive page title"},
			"paragraph": {Type: genai.TypeString, Description: "A flowing, professional summary of 3-5 sentences"},
			"bullets": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"insights": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"readingTimeOriginal": {Type: genai.TypeNumber, Description: "Minutes to read the original"},
			"readingTimeSummary":  {Type: genai.TypeNumber, Description: "Minutes to read the summary"},
			"language":            {Type: genai.TypeString},
		},
		Required: []string{"title", "paragraph", "bullets", "insights", "readingTimeOriginal", "readingTimeSummary", "language"},
	}
}
