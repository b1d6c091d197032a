package tts

import (
	"context"
	"io"
)

// Client defines the operations the proxy handlers need from a text-to-speech provider.
// The API key is supplied per call; implementations hold no credentials.
type Client interface {
	// ListVoices returns the provider's voice catalog exactly as received.
	ListVoices(ctx context.Context, apiKey string) ([]byte, error)

	// Synthesize converts text to speech with the given voice.
	// The caller must close the returned reader.
	Synthesize(ctx context.Context, apiKey, voiceID, text string) (io.ReadCloser, error)

	// SynthesizeStream converts text to speech and streams audio chunks.
	// The channel is closed when the provider finishes or ctx is cancelled.
	// A stream that breaks before the provider finishes ends with a chunk
	// carrying Err.
	SynthesizeStream(ctx context.Context, apiKey, voiceID, text string) (<-chan StreamChunk, error)
}

// StreamChunk is one piece of streamed audio, or the error that ended the stream.
type StreamChunk struct {
	Data []byte
	Err  error
}

// Voice is a synthesis profile from the provider's catalog.
type Voice struct {
	VoiceID     string            `json:"voice_id"`
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	Labels      map[string]string `json:"labels"`
	Description string            `json:"description"`
	PreviewURL  string            `json:"preview_url"`
}

// VoiceCatalog is the body of the provider's list voices response.
type VoiceCatalog struct {
	Voices []Voice `json:"voices"`
}
