package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"localhost:5173,localhost:3000"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`

	SessionSecret      string        `envconfig:"SESSION_SECRET" default:"dev-secret-change-in-production"`
	SessionTTL         time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	SessionIdleTimeout time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"30m"`

	AssetDir  string `envconfig:"ASSET_DIR" default:"./data/assets"`
	PublicURL string `envconfig:"PUBLIC_URL"`

	GeminiAPIKey        string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel         string        `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash-image"`
	GenerateTimeout     time.Duration `envconfig:"GENERATE_TIMEOUT" default:"90s"`
	GenerateMaxAttempts int           `envconfig:"GENERATE_MAX_ATTEMPTS" default:"4"`

	MDNSEnabled  bool   `envconfig:"MDNS_ENABLED" default:"false"`
	MDNSInstance string `envconfig:"MDNS_INSTANCE" default:"museboard"`
}

// Load reads the environment, after loading any of the given .env files
// that exist. Variables already set in the environment win.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Origins returns ALLOWED_ORIGINS as websocket origin patterns.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		o = strings.TrimSpace(o)
		o = strings.TrimPrefix(o, "http://")
		o = strings.TrimPrefix(o, "https://")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Level parses LOG_LEVEL, defaulting to info.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// GenerationEnabled reports whether a model API key is configured.
func (c *Config) GenerationEnabled() bool {
	return c.GeminiAPIKey != ""
}
