package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration.
type Config struct {
	Service ServiceConfig
	Audio   AudioConfig
	Session SessionConfig
	Log     LogConfig
}

type ServiceConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	ProbeTimeout   time.Duration
	RateLimit      float64
	RateBurst      int
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
	TempDir         string
}

type SessionConfig struct {
	ChunkSize     int
	TickInterval  time.Duration
	CopyBestMatch bool
}

type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Option overrides a built-in default. Values from the environment or the
// .env file still take precedence.
type Option func(*defaults)

type defaults struct {
	logLevel string
}

// WithLogLevel changes the log level used when HUMMATCH_LOG_LEVEL is unset.
func WithLogLevel(level string) Option {
	return func(d *defaults) {
		d.logLevel = level
	}
}

// Load resolves configuration from an optional .env file, environment
// variables and sensible defaults. Existing environment variables win over
// the .env file.
func Load(opts ...Option) (Config, error) {
	def := defaults{logLevel: "info"}
	for _, opt := range opts {
		opt(&def)
	}

	envFile := envOrDefault("HUMMATCH_ENV_FILE", ".env")
	_ = godotenv.Load(envFile)

	cfg := Config{
		Service: ServiceConfig{
			BaseURL:        strings.TrimRight(envOrDefault("HUMMATCH_API_BASE", "http://localhost:5000/api"), "/"),
			RequestTimeout: time.Duration(envOrDefaultInt("HUMMATCH_REQUEST_TIMEOUT_MS", 60000)) * time.Millisecond,
			ProbeTimeout:   time.Duration(envOrDefaultInt("HUMMATCH_PROBE_TIMEOUT_MS", 5000)) * time.Millisecond,
			RateLimit:      envOrDefaultFloat("HUMMATCH_RATE_LIMIT", 5),
			RateBurst:      envOrDefaultInt("HUMMATCH_RATE_BURST", 2),
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("HUMMATCH_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     envOrDefault("HUMMATCH_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice: firstNonEmpty(
				os.Getenv("HUMMATCH_AUDIO_INPUT_DEVICE"),
				os.Getenv("PULSE_SOURCE"),
				"default",
			),
			SampleRate: envOrDefaultInt("HUMMATCH_SAMPLE_RATE", 16000),
			Channels:   envOrDefaultInt("HUMMATCH_CHANNELS", 1),
			TempDir:    strings.TrimSpace(os.Getenv("HUMMATCH_TEMP_DIR")),
		},
		Session: SessionConfig{
			ChunkSize:     envOrDefaultInt("HUMMATCH_AUDIO_CHUNK_SIZE", 4096),
			TickInterval:  time.Duration(envOrDefaultInt("HUMMATCH_TICK_MS", 1000)) * time.Millisecond,
			CopyBestMatch: envOrDefaultBool("HUMMATCH_COPY_BEST_MATCH", false),
		},
		Log: LogConfig{
			Level:      strings.ToLower(envOrDefault("HUMMATCH_LOG_LEVEL", def.logLevel)),
			File:       strings.TrimSpace(os.Getenv("HUMMATCH_LOG_FILE")),
			MaxSizeMB:  envOrDefaultInt("HUMMATCH_LOG_MAX_SIZE_MB", 10),
			MaxBackups: envOrDefaultInt("HUMMATCH_LOG_MAX_BACKUPS", 3),
			MaxAgeDays: envOrDefaultInt("HUMMATCH_LOG_MAX_AGE_DAYS", 28),
			Compress:   envOrDefaultBool("HUMMATCH_LOG_COMPRESS", true),
		},
	}

	if cfg.Service.RequestTimeout <= 0 {
		cfg.Service.RequestTimeout = 60 * time.Second
	}
	if cfg.Service.ProbeTimeout <= 0 {
		cfg.Service.ProbeTimeout = 5 * time.Second
	}
	if cfg.Service.RateLimit <= 0 {
		cfg.Service.RateLimit = 5
	}
	if cfg.Service.RateBurst <= 0 {
		cfg.Service.RateBurst = 2
	}
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Session.ChunkSize < 256 {
		cfg.Session.ChunkSize = 4096
	}
	if cfg.Session.TickInterval <= 0 {
		cfg.Session.TickInterval = time.Second
	}

	if err := validateBaseURL(cfg.Service.BaseURL); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateBaseURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid HUMMATCH_API_BASE %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid HUMMATCH_API_BASE %q: scheme must be http or https", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid HUMMATCH_API_BASE %q: missing host", raw)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
