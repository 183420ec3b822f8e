package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(nil), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "gemini", cfg.Gemini.Provider)
	assert.Equal(t, DefaultTextModel, cfg.Gemini.TextModel)
	assert.Equal(t, DefaultLiveModel, cfg.Gemini.LiveModel)
	assert.Equal(t, "Kore", cfg.Gemini.VoiceName)
	assert.Nil(t, cfg.Gemini.Temperature)
	assert.Equal(t, DefaultVideoModel, cfg.Video.Model)
	assert.Equal(t, 10*time.Second, cfg.Video.PollInterval)
	assert.Zero(t, cfg.Video.PollTimeout)
	assert.Equal(t, "local", cfg.Media.Store)
	assert.Equal(t, "memory", cfg.Batch.Store)
	assert.Equal(t, "env", cfg.Creds.Source)
	assert.Equal(t, uint64(DefaultMongoPoolSize), cfg.Mongo.PoolSize)
	assert.Equal(t, DefaultMongoDialTimeout, cfg.Mongo.DialTimeout)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		"PORT":                 "9090",
		"LLM_PROVIDER":         "MOCK",
		"GEMINI_TEMPERATURE":   "0.4",
		"GEMINI_STRICT_SCHEMA": "true",
		"VIDEO_POLL_INTERVAL":  "2s",
		"VIDEO_POLL_TIMEOUT":   "5m",
		"MEDIA_STORE":          "gcs",
		"GCS_BUCKET":           "teasers",
		"BATCH_STORE":          "mongo",
		"MONGODB_POOL_SIZE":    "25",
		"MONGODB_DIAL_TIMEOUT": "3s",
		"CREDENTIAL_SOURCE":    "secretmanager",
		"GCP_PROJECT":          "proj",
		"CREDENTIAL_NAMES":     "free, paid ,",
		"JWT_SECRET":           "s3cret",
	}), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "mock", cfg.Gemini.Provider)
	require.NotNil(t, cfg.Gemini.Temperature)
	assert.InDelta(t, 0.4, *cfg.Gemini.Temperature, 1e-6)
	assert.True(t, cfg.Gemini.StrictSchema)
	assert.Equal(t, 2*time.Second, cfg.Video.PollInterval)
	assert.Equal(t, 5*time.Minute, cfg.Video.PollTimeout)
	assert.Equal(t, "teasers", cfg.Media.GCSBucket)
	assert.Equal(t, []string{"free", "paid"}, cfg.Creds.Names)
	assert.Equal(t, uint64(25), cfg.Mongo.PoolSize)
	assert.Equal(t, 3*time.Second, cfg.Mongo.DialTimeout)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad provider", map[string]string{"LLM_PROVIDER": "openai"}},
		{"bad duration", map[string]string{"VIDEO_POLL_INTERVAL": "soon"}},
		{"bad temperature", map[string]string{"GEMINI_TEMPERATURE": "hot"}},
		{"temperature out of range", map[string]string{"GEMINI_TEMPERATURE": "3"}},
		{"gcs without bucket", map[string]string{"MEDIA_STORE": "gcs"}},
		{"unknown batch store", map[string]string{"BATCH_STORE": "redis"}},
		{"secretmanager without project", map[string]string{"CREDENTIAL_SOURCE": "secretmanager", "CREDENTIAL_NAMES": "a"}},
		{"bad bool", map[string]string{"GEMINI_STRICT_SCHEMA": "maybe"}},
		{"bad pool size", map[string]string{"MONGODB_POOL_SIZE": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(lookupFrom(tt.env), zap.NewNop())
			assert.Error(t, err)
		})
	}
}
