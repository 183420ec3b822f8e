package entities

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/satriahrh/linksense/domain"
)

// SummaryStyle selects the form of the generated summary.
type SummaryStyle string

const (
	StyleShort     SummaryStyle = "Short"
	StyleDetailed  SummaryStyle = "Detailed"
	StyleBullets   SummaryStyle = "Bullet Points"
	StyleTakeaways SummaryStyle = "Key Takeaways"
)

const (
	DefaultStyle    = StyleShort
	DefaultLanguage = "English"
)

var styleAliases = map[string]SummaryStyle{
	"short":         StyleShort,
	"detailed":      StyleDetailed,
	"bullet points": StyleBullets,
	"bullets":       StyleBullets,
	"key takeaways": StyleTakeaways,
	"takeaways":     StyleTakeaways,
}

// SupportedLanguages is the fixed list of summary target languages.
var SupportedLanguages = []string{"English", "Spanish", "French", "German", "Chinese", "Japanese", "Hindi"}

// ParseSummaryStyle accepts the display name or a short alias, case-insensitive.
// An empty value yields the default style.
func ParseSummaryStyle(s string) (SummaryStyle, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return DefaultStyle, nil
	}
	if style, ok := styleAliases[key]; ok {
		return style, nil
	}
	return "", fmt.Errorf("style %q: %w", s, domain.ErrUnsupportedStyle)
}

// ParseLanguage matches s against SupportedLanguages, case-insensitive.
func ParseLanguage(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultLanguage, nil
	}
	for _, lang := range SupportedLanguages {
		if strings.EqualFold(lang, s) {
			return lang, nil
		}
	}
	return "", fmt.Errorf("language %q: %w", s, domain.ErrUnsupportedLanguage)
}

var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// NormalizeURL trims the input and prefixes https:// when no scheme is given.
func NormalizeURL(raw string) (string, error) {
	u := strings.TrimSpace(raw)
	if u == "" {
		return "", domain.ErrEmptyURL
	}
	if !schemePattern.MatchString(u) {
		u = "https://" + u
	}
	return u, nil
}

// SummaryRequest is a single summarization call.
type SummaryRequest struct {
	URL      string
	Style    SummaryStyle
	Language string
}

// Source is a web citation returned by the search tool.
type Source struct {
	URI   string `json:"uri" bson:"uri"`
	Title string `json:"title" bson:"title"`
}

// SummaryResult is the structured summary of one URL.
type SummaryResult struct {
	URL                 string   `json:"url" bson:"url"`
	Title               string   `json:"title" bson:"title"`
	Paragraph           string   `json:"paragraph" bson:"paragraph"`
	Bullets             []string `json:"bullets" bson:"bullets"`
	Insights            []string `json:"insights" bson:"insights"`
	ReadingTimeOriginal float64  `json:"readingTimeOriginal" bson:"reading_time_original"`
	ReadingTimeSummary  float64  `json:"readingTimeSummary" bson:"reading_time_summary"`
	Language            string   `json:"language" bson:"language"`
	Sources             []Source `json:"sources" bson:"sources"`
}
