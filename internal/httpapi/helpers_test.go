package httpapi

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/lukasbauer/voicelab/internal/credential"
	"github.com/lukasbauer/voicelab/internal/metrics"
	"github.com/lukasbauer/voicelab/internal/tts"
)

const testCatalog = `{"voices":[{"voice_id":"v1","name":"Rachel","category":"premade","labels":{"accent":"american"},"description":"","preview_url":"https://storage.test/v1.mp3"}]}`

// fakeProvider stands in for the ElevenLabs API and counts every call it receives.
type fakeProvider struct {
	*httptest.Server

	calls atomic.Int32

	mu       sync.Mutex
	lastPath string
	lastBody string
	lastKey  string
}

func newFakeProvider(t *testing.T, handler http.HandlerFunc) *fakeProvider {
	t.Helper()
	fp := &fakeProvider{}
	fp.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fp.calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		fp.mu.Lock()
		fp.lastPath = r.URL.Path
		fp.lastBody = string(body)
		fp.lastKey = r.Header.Get("xi-api-key")
		fp.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(fp.Close)
	return fp
}

func (fp *fakeProvider) last() (path, body, key string) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.lastPath, fp.lastBody, fp.lastKey
}

// providerOK serves the test catalog and echoes fixed audio for synthesis.
func providerOK(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/voices" {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testCatalog))
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	_, _ = w.Write([]byte("ID3-audio-bytes"))
}

type testEnv struct {
	handler  http.Handler
	provider *fakeProvider
	metrics  *metrics.Metrics
	inflight *InflightRegistry
}

func newTestEnv(t *testing.T, apiKey string, providerHandler http.HandlerFunc) *testEnv {
	t.Helper()
	fp := newFakeProvider(t, providerHandler)
	m := metrics.New()
	inflight := NewInflightRegistry()
	client := tts.NewElevenLabsClient(tts.ElevenLabsConfig{BaseURL: fp.URL})

	h := NewRouter(RouterConfig{Credentials: credential.Static(apiKey)}, log.New(io.Discard, "", 0), client, m, inflight)
	return &testEnv{handler: h, provider: fp, metrics: m, inflight: inflight}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}
