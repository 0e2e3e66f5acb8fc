package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   string
	APIKey string

	// Key-value store holding articles, labels and converted output
	StoreURL    string
	StoreAPIKey string

	// Local content, used when no store is configured
	SourceDir string
	OutputDir string

	// Conversion
	ImageBudget int
	BrandPrefix string
	Brand       string
	SiteHost    string
	MaxDeferred int
	LabelsFile  string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	LogLevel slog.Level
}

// LoadEnvFile seeds the environment from a dotenv file. Variables already set
// win over the file. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func Load() Config {
	cfg := Config{
		Port:   envOr("PORT", "8090"),
		APIKey: os.Getenv("DOCBLOCKS_API_KEY"),

		StoreURL:    os.Getenv("STORE_URL"),
		StoreAPIKey: os.Getenv("STORE_API_KEY"),

		SourceDir: os.Getenv("SOURCE_DIR"),
		OutputDir: envOr("OUTPUT_DIR", "./out"),

		ImageBudget: envInt("IMAGE_BUDGET", 100),
		BrandPrefix: os.Getenv("BRAND_PREFIX"),
		Brand:       envOr("BRAND", "Documentation"),
		SiteHost:    os.Getenv("SITE_HOST"),
		MaxDeferred: envInt("MAX_DEFERRED", 8),
		LabelsFile:  os.Getenv("LABELS_FILE"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		LogLevel: envLevel("LOG_LEVEL", slog.LevelInfo),
	}

	if cfg.ImageBudget <= 0 {
		cfg.ImageBudget = 100
	}
	if cfg.MaxDeferred <= 0 {
		cfg.MaxDeferred = 8
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.StoreURL == "" && c.SourceDir == "" {
		return fmt.Errorf("STORE_URL or SOURCE_DIR is required")
	}
	if c.StoreURL != "" && !strings.HasPrefix(c.StoreURL, "http://") && !strings.HasPrefix(c.StoreURL, "https://") {
		return fmt.Errorf("STORE_URL must be an http(s) URL, got %q", c.StoreURL)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			return l
		}
	}
	return fallback
}
