// Package extract recovers a JSON object from free-form model output.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/satriahrh/linksense/domain"
)

const parseFailureMessage = "Could not parse AI response as JSON. The model might have returned a narrative response instead of data."

var (
	jsonFence = regexp.MustCompile("(?is)```json\\s*\\n(.*?)\\n?\\s*```")
	anyFence  = regexp.MustCompile("(?s)```(?:[a-zA-Z0-9_-]*\\n)?(.*?)```")
)

// Object decodes the first JSON object it can recover from text. Candidates,
// in order: the whole text, a ```json fenced block, any fenced block, and the
// substring between the first '{' and the last '}'. Each candidate is decoded
// into a fresh map. A non-object JSON value is a parse failure.
func Object(text string) (map[string]any, error) {
	for _, candidate := range candidates(text) {
		var obj map[string]any
		if err := json.Unmarshal([]byte(candidate), &obj); err == nil && obj != nil {
			return obj, nil
		}
	}
	return nil, domain.NewServiceError(domain.KindParseFailure, parseFailureMessage, nil)
}

func candidates(text string) []string {
	out := []string{text}

	if m := jsonFence.FindStringSubmatch(text); m != nil {
		out = append(out, m[1])
	}
	if m := anyFence.FindStringSubmatch(text); m != nil {
		out = append(out, m[1])
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		out = append(out, text[start:end+1])
	}

	return out
}
