package app

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lukasbauer/voicelab/internal/costs"
)

type Config struct {
	HTTPAddr      string
	AllowedOrigin string // CORS origin for the API; empty disables CORS

	// ElevenLabs. The API key itself is read per request and never stored here.
	ElevenLabsAPIKeyVar string
	ElevenLabsBaseURL   string
	ElevenLabsModelID   string
	ProviderTimeout     time.Duration

	ShutdownTimeout time.Duration

	// Error reporting
	SentryDSN   string
	Environment string
}

// LoadConfigFromEnv reads configuration from the environment. A .env file in
// the working directory is loaded first; variables already set win.
func LoadConfigFromEnv() Config {
	_ = godotenv.Load()
	costs.LoadFromEnv()

	return Config{
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		AllowedOrigin: getenv("ALLOWED_ORIGIN", ""),

		ElevenLabsAPIKeyVar: "ELEVENLABS_API_KEY",
		ElevenLabsBaseURL:   getenv("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io/v1"),
		ElevenLabsModelID:   getenv("ELEVENLABS_MODEL_ID", "eleven_multilingual_v2"),
		ProviderTimeout:     getenvDuration("PROVIDER_TIMEOUT", 60*time.Second),

		ShutdownTimeout: getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		SentryDSN:   getenv("SENTRY_DSN", ""),
		Environment: getenv("ENVIRONMENT", "development"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getenvDuration falls back to def when the value is missing, unparsable or not positive.
func getenvDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
