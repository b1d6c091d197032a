package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the ElevenLabs REST API root.
	DefaultBaseURL = "https://api.elevenlabs.io/v1"

	// DefaultModelID is the model selector sent with every synthesis request.
	DefaultModelID = "eleven_multilingual_v2"

	defaultTimeout = 60 * time.Second

	maxErrorBodySize = 4096
	streamChunkSize  = 4096
)

// ElevenLabsClient implements the Client interface using ElevenLabs' API.
type ElevenLabsClient struct {
	baseURL    string
	modelID    string
	httpClient *http.Client
}

// ElevenLabsConfig holds configuration for the ElevenLabs client.
type ElevenLabsConfig struct {
	BaseURL    string       // defaults to DefaultBaseURL
	ModelID    string       // defaults to DefaultModelID
	HTTPClient *http.Client // shared client with connection pooling
}

// NewElevenLabsClient creates a new ElevenLabs client.
func NewElevenLabsClient(cfg ElevenLabsConfig) *ElevenLabsClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	modelID := cfg.ModelID
	if modelID == "" {
		modelID = DefaultModelID
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &ElevenLabsClient{
		baseURL:    baseURL,
		modelID:    modelID,
		httpClient: httpClient,
	}
}

// ttsRequest represents an ElevenLabs TTS request.
type ttsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// ListVoices fetches the voice catalog and returns the body untouched.
func (c *ElevenLabsClient) ListVoices(ctx context.Context, apiKey string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse("voices", resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read voices: %w", err)
	}
	return body, nil
}

// Synthesize converts text to speech and returns the MPEG audio body.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, apiKey, voiceID, text string) (io.ReadCloser, error) {
	resp, err := c.postTTS(ctx, apiKey, c.ttsURL(voiceID, false), text)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// SynthesizeStream converts text to speech using the streaming endpoint and
// forwards audio chunks as they arrive. A read failure other than EOF,
// including the HTTP client timeout, is sent as the final chunk.
func (c *ElevenLabsClient) SynthesizeStream(ctx context.Context, apiKey, voiceID, text string) (<-chan StreamChunk, error) {
	resp, err := c.postTTS(ctx, apiKey, c.ttsURL(voiceID, true), text)
	if err != nil {
		return nil, err
	}

	ch := make(chan StreamChunk, 16)

	go func() {
		defer close(ch)
		defer resp.Body.Close()

		buf := make([]byte, streamChunkSize)
		for {
			n, err := resp.Body.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case <-ctx.Done():
					return
				case ch <- StreamChunk{Data: chunk}:
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				select {
				case <-ctx.Done():
				case ch <- StreamChunk{Err: fmt.Errorf("failed to read stream: %w", err)}:
				}
				return
			}
		}
	}()

	return ch, nil
}

func (c *ElevenLabsClient) ttsURL(voiceID string, stream bool) string {
	u := fmt.Sprintf("%s/text-to-speech/%s", c.baseURL, url.PathEscape(voiceID))
	if stream {
		u += "/stream"
	}
	return u
}

// postTTS sends a synthesis request. On success the caller owns resp.Body.
func (c *ElevenLabsClient) postTTS(ctx context.Context, apiKey, endpoint, text string) (*http.Response, error) {
	body, err := json.Marshal(ttsRequest{Text: text, ModelID: c.modelID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")
	httpReq.Header.Set("xi-api-key", apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if err := checkResponse("text-to-speech", resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func checkResponse(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	return &ProviderError{Op: op, StatusCode: resp.StatusCode, Body: string(respBody)}
}
