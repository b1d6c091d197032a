package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func postSynthesize(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandleSynthesize(t *testing.T) {
	env := newTestEnv(t, "xi-test", providerOK)

	rec := env.do(postSynthesize("/api/synthesize", `{"text":"hello","voiceId":"v1"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("Content-Type = %q, want audio/mpeg", ct)
	}
	if rec.Body.String() != "ID3-audio-bytes" {
		t.Errorf("body = %q, want provider audio", rec.Body.String())
	}

	path, body, key := env.provider.last()
	if path != "/text-to-speech/v1" {
		t.Errorf("provider path = %q, want /text-to-speech/v1", path)
	}
	if key != "xi-test" {
		t.Errorf("provider xi-api-key = %q, want xi-test", key)
	}
	var sent map[string]string
	if err := json.Unmarshal([]byte(body), &sent); err != nil {
		t.Fatalf("provider body is not JSON: %v", err)
	}
	if sent["text"] != "hello" || sent["model_id"] != "eleven_multilingual_v2" {
		t.Errorf("provider body = %v, want text=hello model_id=eleven_multilingual_v2", sent)
	}
}

func TestHandleSynthesize_LegacyRoute(t *testing.T) {
	env := newTestEnv(t, "xi-test", providerOK)

	rec := env.do(postSynthesize("/api/elevenlabs", `{"text":"hi","voiceId":"v1"}`))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "audio/mpeg" {
		t.Errorf("Content-Type = %q, want audio/mpeg", rec.Header().Get("Content-Type"))
	}
}

func TestHandleSynthesize_MissingAPIKey(t *testing.T) {
	env := newTestEnv(t, "", providerOK)

	rec := env.do(postSynthesize("/api/synthesize", `{"text":"hello","voiceId":"v1"}`))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	var resp map[string]string
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp["error"] != "API key is missing" {
		t.Errorf("error = %q, want %q", resp["error"], "API key is missing")
	}
	if got := env.provider.calls.Load(); got != 0 {
		t.Errorf("provider calls = %d, want 0", got)
	}
}

func TestHandleSynthesize_MissingAPIKeyCheckedBeforeBody(t *testing.T) {
	env := newTestEnv(t, "", providerOK)

	rec := env.do(postSynthesize("/api/synthesize", `garbage`))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 for missing key even with a bad body", rec.Code)
	}
}

func TestHandleSynthesize_InvalidBody(t *testing.T) {
	env := newTestEnv(t, "xi-test", providerOK)

	rec := env.do(postSynthesize("/api/synthesize", `{"text":`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	var resp map[string]string
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp["error"] != "invalid request body" {
		t.Errorf("error = %q, want %q", resp["error"], "invalid request body")
	}
	if got := env.provider.calls.Load(); got != 0 {
		t.Errorf("provider calls = %d, want 0", got)
	}
}

func TestHandleSynthesize_ProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"unauthorized", http.StatusUnauthorized},
		{"unknown voice", http.StatusNotFound},
		{"text rejected", http.StatusUnprocessableEntity},
		{"quota exceeded", http.StatusTooManyRequests},
		{"provider down", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "xi-test", func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"detail":"provider internals"}`, tt.status)
			})

			rec := env.do(postSynthesize("/api/synthesize", `{"text":"hello","voiceId":"v1"}`))

			if rec.Code != http.StatusInternalServerError {
				t.Errorf("status = %d, want 500", rec.Code)
			}
			var resp map[string]string
			_ = json.NewDecoder(rec.Body).Decode(&resp)
			if resp["error"] == "" {
				t.Error("error field should not be empty")
			}
			if strings.Contains(resp["error"], "provider internals") {
				t.Errorf("error = %q leaks provider text", resp["error"])
			}
		})
	}
}

func TestHandleSynthesize_NoInputValidation(t *testing.T) {
	env := newTestEnv(t, "xi-test", providerOK)

	rec := env.do(postSynthesize("/api/synthesize", `{"text":"","voiceId":"not-in-catalog"}`))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (provider decides)", rec.Code)
	}
	if got := env.provider.calls.Load(); got != 1 {
		t.Errorf("provider calls = %d, want 1", got)
	}
}

func TestHandleSynthesize_NoDeduplication(t *testing.T) {
	env := newTestEnv(t, "xi-test", providerOK)

	for i := 0; i < 2; i++ {
		if rec := env.do(postSynthesize("/api/synthesize", `{"text":"hello","voiceId":"v1"}`)); rec.Code != http.StatusOK {
			t.Fatalf("call %d: status = %d", i, rec.Code)
		}
	}
	if got := env.provider.calls.Load(); got != 2 {
		t.Errorf("provider calls = %d, want 2", got)
	}
}

func TestHandleSynthesize_RejectedWhileDraining(t *testing.T) {
	env := newTestEnv(t, "xi-test", providerOK)
	env.inflight.StartDraining()

	rec := env.do(postSynthesize("/api/synthesize", `{"text":"hello","voiceId":"v1"}`))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if got := env.provider.calls.Load(); got != 0 {
		t.Errorf("provider calls = %d, want 0", got)
	}
}

func TestHandleSynthesize_ReleasesInflightSlot(t *testing.T) {
	env := newTestEnv(t, "xi-test", providerOK)

	env.do(postSynthesize("/api/synthesize", `{"text":"hello","voiceId":"v1"}`))
	env.do(postSynthesize("/api/synthesize", `{"text":`))

	if got := env.inflight.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount() = %d, want 0", got)
	}
}

func TestHandleSynthesize_RecordsCharacters(t *testing.T) {
	env := newTestEnv(t, "xi-test", providerOK)
	env.do(postSynthesize("/api/synthesize", `{"text":"hello","voiceId":"v1"}`))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "voicelab_synthesis_characters_total 5") {
		t.Errorf("metrics missing character count:\n%s", rec.Body.String())
	}
}
