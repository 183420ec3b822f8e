package entities

import (
	"math"
	"strings"
)

const (
	exportTitleFallback     = "Wisdom Extraction"
	exportParagraphFallback = "Analysis complete, but no text summary was provided."
	exportLanguageFallback  = "Unknown"
)

// ExportText renders the plain-text export of a summary.
func (r *SummaryResult) ExportText() string {
	title := orDefault(r.Title, exportTitleFallback)
	paragraph := orDefault(r.Paragraph, exportParagraphFallback)
	language := orDefault(r.Language, exportLanguageFallback)

	var b strings.Builder
	b.WriteString("LinkSense AI | Content Wisdom\n")
	b.WriteString("------------------------------\n")
	b.WriteString("Title: " + title + "\n")
	b.WriteString("Source: " + r.URL + "\n\n")
	b.WriteString("Summary:\n" + paragraph + "\n\n")

	b.WriteString("Key Takeaways:\n")
	for i, bullet := range r.Bullets {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("• " + bullet)
	}
	b.WriteString("\n\n")

	b.WriteString("Mentor AI Intelligent Insights:\n")
	for i, insight := range r.Insights {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("✦ " + insight)
	}
	b.WriteString("\n\n")

	b.WriteString("Language: " + language + "\n")
	b.WriteString("Generated via LinkSense AI")

	return strings.TrimSpace(b.String())
}

// ExportFilename is linksense_<title>.txt with every character outside
// [a-z0-9] of the lowercased title replaced by '_'.
func (r *SummaryResult) ExportFilename() string {
	title := strings.ToLower(orDefault(r.Title, exportTitleFallback))

	var b strings.Builder
	for _, c := range title {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
			continue
		}
		b.WriteByte('_')
	}
	return "linksense_" + b.String() + ".txt"
}

// EfficiencyGain is the rounded percentage of reading time saved.
func (r *SummaryResult) EfficiencyGain() int {
	if r.ReadingTimeOriginal <= 0 {
		return 0
	}
	gain := (r.ReadingTimeOriginal - r.ReadingTimeSummary) / r.ReadingTimeOriginal * 100
	// Math.round semantics: halves go up.
	return int(math.Floor(gain + 0.5))
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
