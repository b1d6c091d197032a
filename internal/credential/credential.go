// Package credential holds the provider API key on the server side.
//
// Handlers read the key through a Source at the start of every request, so a
// rotated environment value is picked up without a restart and the key is
// never part of any response sent to the browser.
package credential

import (
	"errors"
	"os"
	"strings"
)

// ErrMissingAPIKey is returned when no provider key is configured.
var ErrMissingAPIKey = errors.New("API key is missing")

// Source exposes the provider API key.
type Source interface {
	APIKey() (string, error)
}

// EnvSource reads the key from an environment variable on every call.
type EnvSource struct {
	Var string
}

// Env returns a Source backed by the named environment variable.
func Env(name string) EnvSource {
	return EnvSource{Var: name}
}

func (s EnvSource) APIKey() (string, error) {
	return check(os.Getenv(s.Var))
}

// StaticSource always returns the same key.
type StaticSource string

// Static returns a Source for a fixed key. An empty key behaves like an unset
// environment variable.
func Static(key string) StaticSource {
	return StaticSource(key)
}

func (s StaticSource) APIKey() (string, error) {
	return check(string(s))
}

func check(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrMissingAPIKey
	}
	return key, nil
}
