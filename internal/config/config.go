package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL  string
	HTTPTimeout time.Duration
	LogLevel    string

	PollInterval    time.Duration
	PollMaxBackoff  time.Duration
	RefreshPerSec   float64
	RefreshBurst    int
	MaxTranscript   int
	MaxUploadBytes  int64
	MetricsAddr     string
	WelcomeMessage  string
	RetryMaxAttempt int
	BreakerEnabled  bool
}

func Load() Config {
	// Missing .env is fine; real environment always wins.
	_ = godotenv.Load()

	return Config{
		APIBaseURL:  mustEnv("DOCCHAT_API_URL", "http://localhost:8000"),
		HTTPTimeout: mustEnvDuration("DOCCHAT_HTTP_TIMEOUT", 30*time.Second),
		LogLevel:    mustEnv("LOG_LEVEL", "info"),

		PollInterval:    mustEnvDuration("DOCCHAT_POLL_INTERVAL", 5*time.Second),
		PollMaxBackoff:  mustEnvDuration("DOCCHAT_POLL_MAX_BACKOFF", 40*time.Second),
		RefreshPerSec:   mustEnvFloat("DOCCHAT_REFRESH_PER_SEC", 1),
		RefreshBurst:    mustEnvInt("DOCCHAT_REFRESH_BURST", 2),
		MaxTranscript:   mustEnvInt("DOCCHAT_MAX_TRANSCRIPT", 200),
		MaxUploadBytes:  int64(mustEnvInt("DOCCHAT_MAX_UPLOAD_MB", 20)) << 20,
		MetricsAddr:     mustEnv("DOCCHAT_METRICS_ADDR", ""),
		WelcomeMessage:  mustEnv("DOCCHAT_WELCOME", "Hello! Upload your documents and ask me a question."),
		RetryMaxAttempt: mustEnvInt("DOCCHAT_RETRY_MAX_ATTEMPTS", 3),
		BreakerEnabled:  mustEnvBool("DOCCHAT_BREAKER_ENABLED", true),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
