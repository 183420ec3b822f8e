// Package prompts holds the model prompt templates.
package prompts

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

type Prompts struct {
	Summary SummaryPrompts `yaml:"summary"`
	Video   VideoPrompts   `yaml:"video"`
	Voice   VoicePrompts   `yaml:"voice"`
}

type SummaryPrompts struct {
	URL string `yaml:"url"`
}

type VideoPrompts struct {
	Teaser string `yaml:"teaser"`
}

type VoicePrompts struct {
	Persona string `yaml:"persona"`
}

type SummaryParams struct {
	URL      string
	Language string
	Style    string
}

type TeaserParams struct {
	Topic string
}

type PersonaParams struct {
	Context string
}

// Load returns the built-in prompt set.
func Load() (*Prompts, error) {
	return parse(defaultPrompts)
}

// LoadFrom reads a prompt set from path. Templates missing from the file keep
// their built-in value.
func LoadFrom(path string) (*Prompts, error) {
	if path == "" {
		return Load()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	p, err := Load()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}
	return p, nil
}

func parse(data []byte) (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts: %w", err)
	}
	return &p, nil
}

func (p *Prompts) RenderSummary(params SummaryParams) (string, error) {
	return render(p.Summary.URL, params)
}

func (p *Prompts) RenderTeaser(params TeaserParams) (string, error) {
	return render(p.Video.Teaser, params)
}

func (p *Prompts) RenderPersona(params PersonaParams) (string, error) {
	return render(p.Voice.Persona, params)
}

func render(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
