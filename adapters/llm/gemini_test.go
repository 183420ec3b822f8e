package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/linksense/domain"
	"github.com/satriahrh/linksense/domain/entities"
	"github.com/satriahrh/linksense/internal/prompts"
)

func newTestSummarizer(t *testing.T, handler http.HandlerFunc) *GeminiSummarizer {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := prompts.Load()
	require.NoError(t, err)

	s, err := NewGeminiSummarizer(GeminiConfig{Model: "gemini-test", BaseURL: srv.URL + "/"}, p, zap.NewNop())
	require.NoError(t, err)
	return s
}

var testCred = entities.Credential{Name: "default", APIKey: "test-key"}

func TestGeminiSummarizer_Summarize(t *testing.T) {
	modelText := "Here is the analysis:\n```json\n" +
		`{"title":"Go 1.24","paragraph":"Go 1.24 ships generic type aliases.","bullets":["aliases",3,"tooling"],"insights":"not a list","readingTimeOriginal":12,"readingTimeSummary":0}` +
		"\n```"

	var gotBody, gotKey, gotPath string
	s := newTestSummarizer(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotKey = r.Header.Get("x-goog-api-key")
		gotPath = r.URL.Path

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": %q}]},
				"groundingMetadata": {"groundingChunks": [
					{"web": {"uri": "https://go.dev/blog/go1.24", "title": "go.dev"}},
					{"web": {"title": "no uri"}},
					{"retrievedContext": {"uri": "ignored"}}
				]}
			}]
		}`, modelText)
	})

	result, err := s.Summarize(context.Background(), testCred, entities.SummaryRequest{
		URL:      "go.dev/blog/go1.24",
		Style:    entities.StyleBullets,
		Language: "Spanish",
	})
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotKey)
	assert.Contains(t, gotPath, "gemini-test:generateContent")
	assert.Contains(t, gotBody, "googleSearch")
	assert.NotContains(t, gotBody, "responseSchema")
	assert.Contains(t, gotBody, "https://go.dev/blog/go1.24")

	assert.Equal(t, "https://go.dev/blog/go1.24", result.URL)
	assert.Equal(t, "Go 1.24", result.Title)
	assert.Equal(t, []string{"aliases", "tooling"}, result.Bullets)
	assert.Equal(t, []string{}, result.Insights)
	assert.Equal(t, 12.0, result.ReadingTimeOriginal)
	assert.Equal(t, 1.0, result.ReadingTimeSummary)
	assert.Equal(t, "Spanish", result.Language)
	assert.Equal(t, []entities.Source{{URI: "https://go.dev/blog/go1.24", Title: "go.dev"}}, result.Sources)
}

func TestGeminiSummarizer_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		code   int
		status string
		want   domain.ErrorKind
	}{
		{"quota", http.StatusTooManyRequests, "RESOURCE_EXHAUSTED", domain.KindRateLimited},
		{"bad request", http.StatusBadRequest, "INVALID_ARGUMENT", domain.KindInvalidRequest},
		{"missing model", http.StatusNotFound, "NOT_FOUND", domain.KindModelUnavailable},
		{"server error", http.StatusInternalServerError, "INTERNAL", domain.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSummarizer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.code)
				fmt.Fprintf(w, `{"error":{"code":%d,"message":"backend says no","status":%q}}`, tt.code, tt.status)
			})

			_, err := s.Summarize(context.Background(), testCred, entities.SummaryRequest{URL: "https://example.com", Style: entities.StyleShort, Language: "English"})
			require.Error(t, err)
			assert.Equal(t, tt.want, domain.KindOf(err))

			var apiErr genai.APIError
			assert.True(t, errors.As(err, &apiErr), "original error is preserved")
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}
}

func TestGeminiSummarizer_EmptyAndNarrative(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.ErrorKind
	}{
		{"empty", "   ", domain.KindEmptyResponse},
		{"narrative", "I could not access that page, but generally speaking it is about Go.", domain.KindParseFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSummarizer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprintf(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":%q}]}}]}`, tt.text)
			})

			_, err := s.Summarize(context.Background(), testCred, entities.SummaryRequest{URL: "example.com", Style: entities.StyleShort, Language: "English"})
			assert.Equal(t, tt.want, domain.KindOf(err))
		})
	}
}

func TestGeminiSummarizer_RejectsBadInput(t *testing.T) {
	calls := 0
	s := newTestSummarizer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	_, err := s.Summarize(context.Background(), testCred, entities.SummaryRequest{URL: "  "})
	assert.ErrorIs(t, err, domain.ErrEmptyURL)

	_, err = s.Summarize(context.Background(), entities.Credential{Name: "default"}, entities.SummaryRequest{URL: "example.com"})
	assert.ErrorIs(t, err, domain.ErrNoCredential)

	assert.Zero(t, calls)
}

func TestMapSummary_Defaults(t *testing.T) {
	got := MapSummary(map[string]any{
		"title":               "",
		"readingTimeOriginal": "seven",
		"readingTimeSummary":  -2.0,
		"bullets":             []any{"only"},
	}, "https://example.com", "Hindi")

	assert.Equal(t, "Untitled Summary", got.Title)
	assert.Equal(t, "No summary available.", got.Paragraph)
	assert.Equal(t, []string{"only"}, got.Bullets)
	assert.Equal(t, []string{}, got.Insights)
	assert.Equal(t, 5.0, got.ReadingTimeOriginal)
	assert.Equal(t, 1.0, got.ReadingTimeSummary)
	assert.Equal(t, "Hindi", got.Language)
}

func TestClassifyError(t *testing.T) {
	original := errors.New("dial tcp: connection refused")

	tests := []struct {
		name string
		err  error
		want domain.ErrorKind
	}{
		{"api error value", genai.APIError{Code: 429}, domain.KindRateLimited},
		{"api error pointer", &genai.APIError{Code: 404}, domain.KindModelUnavailable},
		{"wrapped api error", fmt.Errorf("call: %w", genai.APIError{Code: 400}), domain.KindInvalidRequest},
		{"message only", errors.New("got status 429 from upstream"), domain.KindRateLimited},
		{"already classified", domain.NewServiceError(domain.KindParseFailure, "x", nil), domain.KindParseFailure},
		{"unknown", original, domain.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.KindOf(ClassifyError(tt.err)))
		})
	}

	assert.Same(t, original, errors.Unwrap(ClassifyError(original)))
	assert.Nil(t, ClassifyError(nil))
}

func TestMockSummarizer(t *testing.T) {
	m := NewMockSummarizer()

	got, err := m.Summarize(context.Background(), entities.Credential{}, entities.SummaryRequest{URL: "go.dev/doc", Style: entities.StyleShort, Language: "German"})
	require.NoError(t, err)
	assert.Equal(t, "https://go.dev/doc", got.URL)
	assert.True(t, strings.Contains(got.Title, "go.dev"))
	assert.Equal(t, "German", got.Language)
}
