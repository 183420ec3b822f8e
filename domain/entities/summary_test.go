package entities

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satriahrh/linksense/domain"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"example.com/article", "https://example.com/article", nil},
		{"  example.com  ", "https://example.com", nil},
		{"http://example.com", "http://example.com", nil},
		{"https://example.com/a?b=c", "https://example.com/a?b=c", nil},
		{"ftp://files.example.com", "ftp://files.example.com", nil},
		{"", "", domain.ErrEmptyURL},
		{"   ", "", domain.ErrEmptyURL},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeURL(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSummaryStyle(t *testing.T) {
	tests := []struct {
		in   string
		want SummaryStyle
	}{
		{"", StyleShort},
		{"Short", StyleShort},
		{"detailed", StyleDetailed},
		{"Bullet Points", StyleBullets},
		{"bullets", StyleBullets},
		{"KEY TAKEAWAYS", StyleTakeaways},
	}
	for _, tt := range tests {
		got, err := ParseSummaryStyle(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseSummaryStyle("haiku")
	assert.True(t, errors.Is(err, domain.ErrUnsupportedStyle))
}

func TestParseLanguage(t *testing.T) {
	got, err := ParseLanguage("japanese")
	require.NoError(t, err)
	assert.Equal(t, "Japanese", got)

	got, err = ParseLanguage("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLanguage, got)

	_, err = ParseLanguage("Klingon")
	assert.ErrorIs(t, err, domain.ErrUnsupportedLanguage)
}
