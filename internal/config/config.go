package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// worker configuration resolved from the environment
type Config struct {
	Port         int
	WorkerSecret string
	DatabaseURL  string

	UploadsBucket  string
	CaptionsBucket string
	RendersBucket  string

	// font used by the word-highlight templates; copied into an isolated
	// per-job directory before rendering
	KaraokeFontPath string
}

// Load reads an optional .env file and resolves the worker configuration
// from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            8787,
		WorkerSecret:    os.Getenv("WORKER_JWT_SECRET"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		UploadsBucket:   envOr("RENDERD_UPLOADS_BUCKET", "uploads"),
		CaptionsBucket:  envOr("RENDERD_CAPTIONS_BUCKET", "captions"),
		RendersBucket:   envOr("RENDERD_RENDERS_BUCKET", "renders"),
		KaraokeFontPath: os.Getenv("RENDERD_KARAOKE_FONT_PATH"),
	}

	if port := os.Getenv("PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid PORT %q", port)
		}
		cfg.Port = n
	}

	if cfg.WorkerSecret == "" {
		return nil, fmt.Errorf("WORKER_JWT_SECRET is required")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
