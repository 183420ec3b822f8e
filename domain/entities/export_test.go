package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExportText(t *testing.T) {
	r := &SummaryResult{
		URL:       "https://example.com/post",
		Title:     "Go Concurrency",
		Paragraph: "Channels coordinate goroutines.",
		Bullets:   []string{"Share memory by communicating", "Use context"},
		Insights:  []string{"errgroup simplifies fan-out"},
		Language:  "English",
	}

	want := `LinkSense AI | Content Wisdom
------------------------------
Title: Go Concurrency
Source: https://example.com/post

Summary:
Channels coordinate goroutines.

Key Takeaways:
• Share memory by communicating
• Use context

Mentor AI Intelligent Insights:
✦ errgroup simplifies fan-out

Language: English
Generated via LinkSense AI`

	assert.Equal(t, want, r.ExportText())
}

func TestExportText_Fallbacks(t *testing.T) {
	r := &SummaryResult{URL: "https://example.com"}
	text := r.ExportText()

	assert.Contains(t, text, "Title: Wisdom Extraction")
	assert.Contains(t, text, "Analysis complete, but no text summary was provided.")
	assert.Contains(t, text, "Language: Unknown")
	assert.Contains(t, text, "Key Takeaways:\n\n\nMentor AI Intelligent Insights:")
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Go Concurrency!", "linksense_go_concurrency_.txt"},
		{"ABC-123", "linksense_abc_123.txt"},
		{"", "linksense_wisdom_extraction.txt"},
		{"Café", "linksense_caf_.txt"},
	}
	for _, tt := range tests {
		r := &SummaryResult{Title: tt.title}
		assert.Equal(t, tt.want, r.ExportFilename(), tt.title)
	}
}

func TestEfficiencyGain(t *testing.T) {
	tests := []struct {
		name     string
		original float64
		summary  float64
		want     int
	}{
		{"typical", 10, 2, 80},
		{"rounds half up", 8, 3, 63},
		{"zero original", 0, 1, 0},
		{"negative original", -5, 1, 0},
		{"summary longer", 2, 3, -50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &SummaryResult{ReadingTimeOriginal: tt.original, ReadingTimeSummary: tt.summary}
			assert.Equal(t, tt.want, r.EfficiencyGain())
		})
	}
}
