// Package config loads server settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	DefaultPort              = "8080"
	DefaultTextModel         = "gemini-3-flash-preview"
	DefaultVideoModel        = "veo-3.1-fast-generate-preview"
	DefaultLiveModel         = "gemini-2.5-flash-native-audio-preview-09-2025"
	DefaultVoiceName         = "Kore"
	DefaultVideoPollInterval = 10 * time.Second
	DefaultBatchTTL          = 24 * time.Hour
	DefaultMediaTokenTTL     = 24 * time.Hour
	DefaultCleanupInterval   = 30 * time.Minute
	DefaultMediaDir          = "media"
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabase     = "linksense"
	DefaultMongoPoolSize     = 10
	DefaultMongoDialTimeout  = 10 * time.Second
)

// Config holds every tunable of the server.
type Config struct {
	Port string

	Gemini GeminiConfig
	Video  VideoConfig
	Media  MediaConfig
	Batch  BatchConfig
	Mongo  MongoConfig
	Creds  CredentialConfig

	JWTSecret     string
	MediaTokenTTL time.Duration
	PromptsFile   string
}

type GeminiConfig struct {
	Provider     string // gemini | mock
	TextModel    string
	LiveModel    string
	VoiceName    string
	Temperature  *float32
	StrictSchema bool
	BaseURL      string
}

type VideoConfig struct {
	Model        string
	PollInterval time.Duration
	// PollTimeout of zero means poll until the request context ends.
	PollTimeout time.Duration
}

type MediaConfig struct {
	Store     string // local | gcs
	Dir       string
	GCSBucket string
	GCSPrefix string
}

type BatchConfig struct {
	Store           string // memory | mongo
	TTL             time.Duration
	CleanupInterval time.Duration
}

type MongoConfig struct {
	URI         string
	Database    string
	PoolSize    uint64
	DialTimeout time.Duration // bounds connect, ping and server selection
}

type CredentialConfig struct {
	Source     string // env | secretmanager
	GCPProject string
	Names      []string
}

// Load reads .env when present and builds the configuration from the environment.
func Load(logger *zap.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", zap.Error(err))
	}
	return FromEnv(os.LookupEnv, logger)
}

// FromEnv builds the configuration from lookup.
func FromEnv(lookup func(string) (string, bool), logger *zap.Logger) (*Config, error) {
	r := reader{lookup: lookup, logger: logger}

	cfg := &Config{
		Port: r.str("PORT", DefaultPort),
		Gemini: GeminiConfig{
			Provider:     strings.ToLower(r.str("LLM_PROVIDER", "gemini")),
			TextModel:    r.str("GEMINI_TEXT_MODEL", DefaultTextModel),
			LiveModel:    r.str("GEMINI_LIVE_MODEL", DefaultLiveModel),
			VoiceName:    r.str("GEMINI_VOICE", DefaultVoiceName),
			StrictSchema: r.boolean("GEMINI_STRICT_SCHEMA"),
			BaseURL:      r.str("GEMINI_BASE_URL", ""),
		},
		Video: VideoConfig{
			Model:        r.str("GEMINI_VIDEO_MODEL", DefaultVideoModel),
			PollInterval: r.duration("VIDEO_POLL_INTERVAL", DefaultVideoPollInterval),
			PollTimeout:  r.duration("VIDEO_POLL_TIMEOUT", 0),
		},
		Media: MediaConfig{
			Store:     strings.ToLower(r.str("MEDIA_STORE", "local")),
			Dir:       r.str("MEDIA_DIR", DefaultMediaDir),
			GCSBucket: r.str("GCS_BUCKET", ""),
			GCSPrefix: r.str("GCS_PREFIX", "teasers/"),
		},
		Batch: BatchConfig{
			Store:           strings.ToLower(r.str("BATCH_STORE", "memory")),
			TTL:             r.duration("BATCH_TTL", DefaultBatchTTL),
			CleanupInterval: r.duration("CLEANUP_INTERVAL", DefaultCleanupInterval),
		},
		Mongo: MongoConfig{
			URI:         r.str("MONGODB_URI", DefaultMongoURI),
			Database:    r.str("MONGODB_DATABASE", DefaultMongoDatabase),
			PoolSize:    r.uint("MONGODB_POOL_SIZE", DefaultMongoPoolSize),
			DialTimeout: r.duration("MONGODB_DIAL_TIMEOUT", DefaultMongoDialTimeout),
		},
		Creds: CredentialConfig{
			Source:     strings.ToLower(r.str("CREDENTIAL_SOURCE", "env")),
			GCPProject: r.str("GCP_PROJECT", ""),
			Names:      r.list("CREDENTIAL_NAMES"),
		},
		JWTSecret:     r.str("JWT_SECRET", ""),
		MediaTokenTTL: r.duration("MEDIA_TOKEN_TTL", DefaultMediaTokenTTL),
		PromptsFile:   r.str("PROMPTS_FILE", ""),
	}

	if v, ok := lookup("GEMINI_TEMPERATURE"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			r.errs = append(r.errs, fmt.Errorf("GEMINI_TEMPERATURE: %w", err))
		} else {
			t := float32(f)
			cfg.Gemini.Temperature = &t
		}
	}

	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "linksense-dev-secret"
		logger.Warn("JWT_SECRET not set, using development secret")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports inconsistent settings.
func (c *Config) Validate() error {
	var errs []error

	switch c.Gemini.Provider {
	case "gemini", "mock":
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be gemini or mock, got %q", c.Gemini.Provider))
	}

	switch c.Media.Store {
	case "local":
		if c.Media.Dir == "" {
			errs = append(errs, errors.New("MEDIA_DIR is required for the local media store"))
		}
	case "gcs":
		if c.Media.GCSBucket == "" {
			errs = append(errs, errors.New("GCS_BUCKET is required for the gcs media store"))
		}
	default:
		errs = append(errs, fmt.Errorf("MEDIA_STORE must be local or gcs, got %q", c.Media.Store))
	}

	switch c.Batch.Store {
	case "memory":
	case "mongo":
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required for the mongo batch store"))
		}
	default:
		errs = append(errs, fmt.Errorf("BATCH_STORE must be memory or mongo, got %q", c.Batch.Store))
	}

	switch c.Creds.Source {
	case "env":
	case "secretmanager":
		if c.Creds.GCPProject == "" {
			errs = append(errs, errors.New("GCP_PROJECT is required for the secretmanager credential source"))
		}
		if len(c.Creds.Names) == 0 {
			errs = append(errs, errors.New("CREDENTIAL_NAMES is required for the secretmanager credential source"))
		}
	default:
		errs = append(errs, fmt.Errorf("CREDENTIAL_SOURCE must be env or secretmanager, got %q", c.Creds.Source))
	}

	if c.Video.PollInterval <= 0 {
		errs = append(errs, errors.New("VIDEO_POLL_INTERVAL must be positive"))
	}
	if c.Video.PollTimeout < 0 {
		errs = append(errs, errors.New("VIDEO_POLL_TIMEOUT cannot be negative"))
	}
	if c.Batch.TTL <= 0 {
		errs = append(errs, errors.New("BATCH_TTL must be positive"))
	}
	if c.Gemini.Temperature != nil && (*c.Gemini.Temperature < 0 || *c.Gemini.Temperature > 2) {
		errs = append(errs, errors.New("GEMINI_TEMPERATURE must be within [0, 2]"))
	}

	return errors.Join(errs...)
}

type reader struct {
	lookup func(string) (string, bool)
	logger *zap.Logger
	errs   []error
}

func (r *reader) str(key, def string) string {
	if v, ok := r.lookup(key); ok && v != "" {
		return v
	}
	if def != "" {
		r.logger.Debug("Using default", zap.String("key", key), zap.String("value", def))
	}
	return def
}

func (r *reader) boolean(key string) bool {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
	}
	return b
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func (r *reader) uint(key string, def uint64) uint64 {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (r *reader) list(key string) []string {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
