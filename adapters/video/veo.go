// Package video renders teaser videos with Veo.
package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/linksense/adapters/llm"
	"github.com/satriahrh/linksense/domain/entities"
	"github.com/satriahrh/linksense/domain/repositories"
	"github.com/satriahrh/linksense/internal/prompts"
)

const (
	defaultModel        = "veo-3.1-fast-generate-preview"
	defaultPollInterval = 10 * time.Second
	defaultMIMEType     = "video/mp4"
	topicLimit          = 300
)

// VeoConfig holds configuration for the Veo teaser generator
type VeoConfig struct {
	Model        string
	PollInterval time.Duration
	// PollTimeout bounds the whole generation. Zero polls until ctx ends.
	PollTimeout time.Duration
	BaseURL     string
}

// videoAPI is the slice of the genai client used here.
type videoAPI interface {
	Start(ctx context.Context, prompt string) (*genai.GenerateVideosOperation, error)
	Poll(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error)
}

// VeoGenerator implements repositories.TeaserGenerator
type VeoGenerator struct {
	config     VeoConfig
	media      repositories.MediaStore
	prompts    *prompts.Prompts
	httpClient *http.Client
	logger     *zap.Logger

	newAPI func(ctx context.Context, cred entities.Credential) (videoAPI, error)
}

var _ repositories.TeaserGenerator = (*VeoGenerator)(nil)

// NewVeoGenerator creates a new Veo teaser generator
func NewVeoGenerator(config VeoConfig, media repositories.MediaStore, p *prompts.Prompts, logger *zap.Logger) *VeoGenerator {
	if config.Model == "" {
		config.Model = defaultModel
		logger.Info("Using default video model", zap.String("model", config.Model))
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaultPollInterval
		logger.Info("Using default poll interval", zap.Duration("interval", config.PollInterval))
	}

	g := &VeoGenerator{
		config:     config,
		media:      media,
		prompts:    p,
		httpClient: &http.Client{},
		logger:     logger,
	}
	g.newAPI = g.genaiAPI
	return g
}

// GenerateTeaser implements repositories.TeaserGenerator
func (g *VeoGenerator) GenerateTeaser(ctx context.Context, cred entities.Credential, summaryText string) (*entities.Teaser, error) {
	prompt, err := g.prompts.RenderTeaser(prompts.TeaserParams{Topic: truncateRunes(summaryText, topicLimit)})
	if err != nil {
		return nil, fmt.Errorf("failed to render teaser prompt: %w", err)
	}

	if g.config.PollTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.PollTimeout)
		defer cancel()
	}

	api, err := g.newAPI(ctx, cred)
	if err != nil {
		return nil, err
	}

	op, err := api.Start(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to start video generation: %w", err)
	}

	g.logger.Info("Video generation started",
		zap.String("operation", op.Name),
		zap.String("model", g.config.Model))

	polls := 0
	for !op.Done {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("video generation %s abandoned after %d polls: %w", op.Name, polls, ctx.Err())
		case <-time.After(g.config.PollInterval):
		}

		op, err = api.Poll(ctx, op)
		if err != nil {
			return nil, fmt.Errorf("failed to poll video operation: %w", err)
		}
		polls++
	}

	if op.Error != nil {
		return nil, fmt.Errorf("video operation %s failed: %v", op.Name, op.Error)
	}
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
		return nil, fmt.Errorf("video operation %s returned no video", op.Name)
	}
	video := op.Response.GeneratedVideos[0].Video

	mediaID := uuid.New().String()
	mimeType := video.MIMEType
	if mimeType == "" {
		mimeType = defaultMIMEType
	}

	var size int64
	switch {
	case len(video.VideoBytes) > 0:
		size, err = g.media.Save(ctx, mediaID, mimeType, bytes.NewReader(video.VideoBytes))
	case video.URI != "":
		size, mimeType, err = g.download(ctx, video.URI, cred, mediaID, mimeType)
	default:
		err = errors.New("generated video has neither bytes nor uri")
	}
	if err != nil {
		return nil, err
	}

	g.logger.Info("Teaser stored",
		zap.String("operation", op.Name),
		zap.String("media_id", mediaID),
		zap.Int64("size", size),
		zap.Int("polls", polls))

	return &entities.Teaser{
		MediaID:   mediaID,
		MIMEType:  mimeType,
		Size:      size,
		Prompt:    prompt,
		Operation: op.Name,
		CreatedAt: time.Now(),
	}, nil
}

// download fetches the generated video with the credential attached as the
// key query parameter and streams it into the media store.
func (g *VeoGenerator) download(ctx context.Context, uri string, cred entities.Credential, mediaID, mimeType string) (int64, string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return 0, "", fmt.Errorf("invalid video uri: %w", err)
	}
	q := u.Query()
	q.Set("key", cred.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("failed to download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, "", fmt.Errorf("video download failed with status %d: %s", resp.StatusCode, string(body))
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		mimeType = ct
	}

	size, err := g.media.Save(ctx, mediaID, mimeType, resp.Body)
	if err != nil {
		return 0, "", fmt.Errorf("failed to store video: %w", err)
	}
	return size, mimeType, nil
}

func (g *VeoGenerator) genaiAPI(ctx context.Context, cred entities.Credential) (videoAPI, error) {
	client, err := llm.NewGenAIClient(ctx, cred, g.config.BaseURL)
	if err != nil {
		return nil, err
	}
	return &genaiVideoAPI{client: client, model: g.config.Model}, nil
}

type genaiVideoAPI struct {
	client *genai.Client
	model  string
}

func (a *genaiVideoAPI) Start(ctx context.Context, prompt string) (*genai.GenerateVideosOperation, error) {
	return a.client.Models.GenerateVideos(ctx, a.model, prompt, nil, &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
		Resolution:     "720p",
		AspectRatio:    "16:9",
	})
}

func (a *genaiVideoAPI) Poll(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	return a.client.Operations.GetVideosOperation(ctx, op, nil)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
