package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetenv(t *testing.T) {
	tests := []struct {
		name     string
		envKey   string
		envValue string
		defValue string
		want     string
	}{
		{
			name:     "env set",
			envKey:   "TEST_ENV_VAR",
			envValue: "custom_value",
			defValue: "default",
			want:     "custom_value",
		},
		{
			name:     "env not set",
			envKey:   "TEST_ENV_VAR_NOTSET",
			envValue: "",
			defValue: "default",
			want:     "default",
		},
		{
			name:     "empty default",
			envKey:   "TEST_ENV_VAR_EMPTY",
			envValue: "",
			defValue: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.envKey, tt.envValue)
			}

			got := getenv(tt.envKey, tt.defValue)
			if got != tt.want {
				t.Errorf("getenv(%q, %q) = %q, want %q", tt.envKey, tt.defValue, got, tt.want)
			}
		})
	}
}

func TestGetenvDuration(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		def      time.Duration
		want     time.Duration
	}{
		{"not set", "", 5 * time.Second, 5 * time.Second},
		{"valid", "90s", 5 * time.Second, 90 * time.Second},
		{"minutes", "2m", 5 * time.Second, 2 * time.Minute},
		{"invalid", "soon", 5 * time.Second, 5 * time.Second},
		{"bare number", "30", 5 * time.Second, 5 * time.Second},
		{"zero", "0s", 5 * time.Second, 5 * time.Second},
		{"negative", "-1s", 5 * time.Second, 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv("TEST_DURATION", tt.envValue)
			}

			got := getenvDuration("TEST_DURATION", tt.def)
			if got != tt.want {
				t.Errorf("getenvDuration(%q) = %v, want %v", tt.envValue, got, tt.want)
			}
		})
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HTTP_ADDR", "ALLOWED_ORIGIN", "ELEVENLABS_BASE_URL", "ELEVENLABS_MODEL_ID",
		"PROVIDER_TIMEOUT", "SHUTDOWN_TIMEOUT", "SENTRY_DSN", "ENVIRONMENT",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	clearConfigEnv(t)
	chdir(t, t.TempDir())

	cfg := LoadConfigFromEnv()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.AllowedOrigin != "" {
		t.Errorf("AllowedOrigin = %q, want empty", cfg.AllowedOrigin)
	}
	if cfg.ElevenLabsAPIKeyVar != "ELEVENLABS_API_KEY" {
		t.Errorf("ElevenLabsAPIKeyVar = %q", cfg.ElevenLabsAPIKeyVar)
	}
	if cfg.ElevenLabsBaseURL != "https://api.elevenlabs.io/v1" {
		t.Errorf("ElevenLabsBaseURL = %q", cfg.ElevenLabsBaseURL)
	}
	if cfg.ElevenLabsModelID != "eleven_multilingual_v2" {
		t.Errorf("ElevenLabsModelID = %q", cfg.ElevenLabsModelID)
	}
	if cfg.ProviderTimeout != 60*time.Second {
		t.Errorf("ProviderTimeout = %v", cfg.ProviderTimeout)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q", cfg.Environment)
	}
}

func TestLoadConfigFromDotEnv(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	chdir(t, dir)

	env := "HTTP_ADDR=:9090\nELEVENLABS_MODEL_ID=eleven_turbo_v2\nENVIRONMENT=from-file\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENVIRONMENT", "from-env")

	cfg := LoadConfigFromEnv()

	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want :9090 from .env", cfg.HTTPAddr)
	}
	if cfg.ElevenLabsModelID != "eleven_turbo_v2" {
		t.Errorf("ElevenLabsModelID = %q", cfg.ElevenLabsModelID)
	}
	if cfg.Environment != "from-env" {
		t.Errorf("Environment = %q, existing env should win", cfg.Environment)
	}
}
