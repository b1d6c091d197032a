package app

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/lukasbauer/voicelab/internal/credential"
	"github.com/lukasbauer/voicelab/internal/httpapi"
	"github.com/lukasbauer/voicelab/internal/metrics"
	"github.com/lukasbauer/voicelab/internal/tts"
	"github.com/lukasbauer/voicelab/internal/webui"
)

type App struct {
	cfg        Config
	logger     *log.Logger
	httpClient *http.Client // Shared HTTP client with connection pooling for ElevenLabs
	provider   *tts.ElevenLabsClient
	metrics    *metrics.Metrics
	inflight   *httpapi.InflightRegistry
}

func New(cfg Config, logger *log.Logger) (*App, error) {
	u, err := url.Parse(cfg.ElevenLabsBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid ELEVENLABS_BASE_URL %q", cfg.ElevenLabsBaseURL)
	}

	// Keeps TCP connections alive to reduce latency for repeated calls to ElevenLabs.
	httpClient := &http.Client{
		Timeout: cfg.ProviderTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10, // ElevenLabs is single host
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	provider := tts.NewElevenLabsClient(tts.ElevenLabsConfig{
		BaseURL:    cfg.ElevenLabsBaseURL,
		ModelID:    cfg.ElevenLabsModelID,
		HTTPClient: httpClient,
	})

	return &App{
		cfg:        cfg,
		logger:     logger,
		httpClient: httpClient,
		provider:   provider,
		metrics:    metrics.New(),
		inflight:   httpapi.NewInflightRegistry(),
	}, nil
}

func (a *App) Router() http.Handler {
	routerCfg := httpapi.RouterConfig{
		Credentials:   credential.Env(a.cfg.ElevenLabsAPIKeyVar),
		Assets:        webui.Handler(),
		AllowedOrigin: a.cfg.AllowedOrigin,
	}
	return httpapi.NewRouter(routerCfg, a.logger, a.provider, a.metrics, a.inflight)
}

// Drain rejects new synthesis requests and waits for in-flight ones to finish.
func (a *App) Drain(ctx context.Context) error {
	a.inflight.StartDraining()
	active := a.inflight.ActiveCount()
	if active > 0 {
		a.logger.Printf("shutdown: waiting for %d synthesis requests", active)
	}
	return a.inflight.Wait(ctx)
}

func (a *App) Close() error {
	a.httpClient.CloseIdleConnections()
	return nil
}
