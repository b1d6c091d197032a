package tts

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned when the provider rejects the API key.
	ErrUnauthorized = errors.New("provider rejected API key")

	// ErrVoiceNotFound is returned when the requested voice does not exist.
	ErrVoiceNotFound = errors.New("voice not found")

	// ErrRateLimited is returned when the provider throttles the account.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// ProviderError is a non-2xx response from the provider.
// Body holds the provider's error text and must only be logged.
type ProviderError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("ElevenLabs %s error: %d %s - %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// Unwrap maps well known status codes to sentinel errors.
func (e *ProviderError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrVoiceNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}
	return nil
}
