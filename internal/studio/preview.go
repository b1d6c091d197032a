package studio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lukasbauer/voicelab/internal/tts"
)

// Player plays one voice's preview sample.
type Player interface {
	Play() error
	Pause() error
	Playing() bool
	Close() error
}

// PlayerFactory creates the player for a voice's preview sample.
type PlayerFactory func(v tts.Voice) (Player, error)

var errNoPlayers = errors.New("preview playback not configured")

// PreviewRegistry owns one Player per previewed voice. A player is created
// on the first preview of its voice and closed when the voice leaves the
// catalog or the registry is closed. At most one player is audible.
type PreviewRegistry struct {
	factory PlayerFactory

	mu      sync.Mutex
	players map[string]Player
	audible string
	closed  bool
}

func NewPreviewRegistry(factory PlayerFactory) *PreviewRegistry {
	return &PreviewRegistry{
		factory: factory,
		players: make(map[string]Player),
	}
}

// Toggle pauses v's player when it is the audible one. Otherwise it pauses
// the audible player, if any, and plays v's. It reports whether v is audible
// afterwards.
func (r *PreviewRegistry) Toggle(v tts.Voice) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false, ErrClosed
	}

	if p, ok := r.players[v.VoiceID]; ok && r.audible == v.VoiceID && p.Playing() {
		if err := p.Pause(); err != nil {
			return true, fmt.Errorf("pause preview %s: %w", v.VoiceID, err)
		}
		r.audible = ""
		return false, nil
	}

	if r.audible != "" && r.audible != v.VoiceID {
		if other, ok := r.players[r.audible]; ok && other.Playing() {
			if err := other.Pause(); err != nil {
				return false, fmt.Errorf("pause preview %s: %w", r.audible, err)
			}
		}
		r.audible = ""
	}

	p, ok := r.players[v.VoiceID]
	if !ok {
		if r.factory == nil {
			return false, errNoPlayers
		}
		var err error
		p, err = r.factory(v)
		if err != nil {
			return false, fmt.Errorf("create preview %s: %w", v.VoiceID, err)
		}
		r.players[v.VoiceID] = p
	}
	if err := p.Play(); err != nil {
		return false, fmt.Errorf("play preview %s: %w", v.VoiceID, err)
	}
	r.audible = v.VoiceID
	return true, nil
}

// Audible returns the voice whose player is currently playing.
func (r *PreviewRegistry) Audible() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.audible == "" {
		return "", false
	}
	if p, ok := r.players[r.audible]; !ok || !p.Playing() {
		return "", false
	}
	return r.audible, true
}

// Player returns the registered player for voiceID.
func (r *PreviewRegistry) Player(voiceID string) (Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[voiceID]
	return p, ok
}

func (r *PreviewRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Retain closes and drops every player whose voice is not in keep.
func (r *PreviewRegistry) Retain(keep map[string]struct{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retainLocked(keep)
}

func (r *PreviewRegistry) retainLocked(keep map[string]struct{}) error {
	var errs []error
	for id, p := range r.players {
		if _, ok := keep[id]; ok {
			continue
		}
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close preview %s: %w", id, err))
		}
		delete(r.players, id)
		if r.audible == id {
			r.audible = ""
		}
	}
	return errors.Join(errs...)
}

// Close closes every player. Later Toggle calls fail with ErrClosed.
func (r *PreviewRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return r.retainLocked(nil)
}
