package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/lukasbauer/voicelab/internal/credential"
	"github.com/lukasbauer/voicelab/internal/metrics"
	"github.com/lukasbauer/voicelab/internal/tts"
)

type RouterConfig struct {
	// Provider credential, read once per request
	Credentials credential.Source

	// Browser UI served at / (optional)
	Assets http.Handler

	// Cross-origin access to the API; empty disables CORS headers
	AllowedOrigin string
}

type Router struct {
	cfg      RouterConfig
	logger   *log.Logger
	provider tts.Client
	metrics  *metrics.Metrics
	inflight *InflightRegistry
	mux      *http.ServeMux
}

func NewRouter(cfg RouterConfig, logger *log.Logger, provider tts.Client, m *metrics.Metrics, inflight *InflightRegistry) http.Handler {
	if inflight == nil {
		inflight = NewInflightRegistry()
	}
	if m == nil {
		m = metrics.New()
	}

	r := &Router{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
		metrics:  m,
		inflight: inflight,
		mux:      http.NewServeMux(),
	}

	r.routes()
	return withSentryRecovery(withRequestID(withCORS(cfg.AllowedOrigin, r.mux)))
}

func (r *Router) routes() {
	// Health check and metrics
	r.mux.HandleFunc("GET /healthz", r.handleHealthz)
	r.mux.Handle("GET /metrics", r.metrics.Handler())

	// Provider proxies
	r.mux.HandleFunc("GET /api/voices", r.instrument("voices", r.handleListVoices))
	r.mux.HandleFunc("POST /api/synthesize", r.instrument("synthesize", r.handleSynthesize))
	r.mux.HandleFunc("POST /api/elevenlabs", r.instrument("synthesize", r.handleSynthesize))
	r.mux.HandleFunc("GET /api/synthesize/stream", r.handleSynthesizeStream)

	// Browser UI
	if r.cfg.Assets != nil {
		r.mux.Handle("GET /", r.cfg.Assets)
	}
}

func (r *Router) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// instrument counts requests per endpoint and status class.
func (r *Router) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		next(rec, req)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		r.metrics.RecordRequest(endpoint, rec.status)
	}
}

type requestIDKey struct{}

// withRequestID tags every request with an id that is echoed back and used in logs.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get("X-Request-ID")
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(req.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

func requestID(req *http.Request) string {
	id, _ := req.Context().Value(requestIDKey{}).(string)
	return id
}

func withSentryRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(req)
				hub.RecoverWithContext(req.Context(), err)
				hub.Flush(2 * time.Second)
				http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, req)
	})
}

func withCORS(origin string, next http.Handler) http.Handler {
	if origin == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, req)
	})
}

// captureError sends an error to Sentry with request context
func captureError(req *http.Request, err error, msg string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(req)
		scope.SetTag("request_id", requestID(req))
		scope.SetExtra("message", msg)
		sentry.CaptureException(err)
	})
}
