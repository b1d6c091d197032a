// Package studio is a headless model of the browser client. It tracks the
// voice catalog, the current selection, the generate cycle and the preview
// players, and owns every audio resource it hands out.
package studio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/lukasbauer/voicelab/internal/tts"
)

var (
	ErrNoVoiceSelected  = errors.New("no voice selected")
	ErrEmptyText        = errors.New("text is empty")
	ErrBusy             = errors.New("generation already in progress")
	ErrUnknownVoice     = errors.New("voice not in catalog")
	ErrCatalogNotLoaded = errors.New("voice catalog not loaded")
	ErrNoPreview        = errors.New("voice has no preview sample")
	ErrClosed           = errors.New("studio closed")
)

// Backend is the proxy API as seen by the client.
type Backend interface {
	ListVoices(ctx context.Context) ([]tts.Voice, error)
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// Resource is a playable copy of a synthesis result.
type Resource interface {
	Location() string
	Release() error
}

// AudioStore turns synthesized bytes into a Resource.
type AudioStore interface {
	Create(data []byte) (Resource, error)
}

type CatalogState int

const (
	CatalogUnloaded CatalogState = iota
	CatalogLoading
	CatalogLoaded
)

func (s CatalogState) String() string {
	switch s {
	case CatalogUnloaded:
		return "unloaded"
	case CatalogLoading:
		return "loading"
	case CatalogLoaded:
		return "loaded"
	default:
		return fmt.Sprintf("CatalogState(%d)", int(s))
	}
}

type Studio struct {
	backend  Backend
	store    AudioStore
	previews *PreviewRegistry
	logger   *log.Logger

	mu         sync.Mutex
	catalog    CatalogState
	voices     []tts.Voice
	selected   *tts.Voice
	text       string
	generating bool
	current    Resource
	closed     bool
}

// New builds a Studio. players may be nil when previews are not needed.
func New(backend Backend, store AudioStore, players PlayerFactory, logger *log.Logger) *Studio {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Studio{
		backend:  backend,
		store:    store,
		previews: NewPreviewRegistry(players),
		logger:   logger,
	}
}

// Load fetches the catalog. After a successful load the first voice is
// selected unless the current selection is still present.
func (s *Studio) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.catalog == CatalogLoading {
		s.mu.Unlock()
		return ErrBusy
	}
	prev := s.catalog
	s.catalog = CatalogLoading
	s.mu.Unlock()

	voices, err := s.backend.ListVoices(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.catalog = prev
		return ErrClosed
	}
	if err != nil {
		s.catalog = prev
		s.logger.Printf("studio: fetch voices: %v", err)
		return fmt.Errorf("fetch voices: %w", err)
	}

	s.voices = voices
	s.catalog = CatalogLoaded

	keep := make(map[string]struct{}, len(voices))
	for _, v := range voices {
		keep[v.VoiceID] = struct{}{}
	}
	if s.selected != nil {
		if _, ok := keep[s.selected.VoiceID]; !ok {
			s.selected = nil
		}
	}
	if s.selected == nil && len(voices) > 0 {
		first := voices[0]
		s.selected = &first
	}
	if err := s.previews.Retain(keep); err != nil {
		s.logger.Printf("studio: evict previews: %v", err)
	}
	return nil
}

func (s *Studio) CatalogState() CatalogState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog
}

// Voices returns a copy of the loaded catalog.
func (s *Studio) Voices() []tts.Voice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]tts.Voice, len(s.voices))
	copy(out, s.voices)
	return out
}

func (s *Studio) Select(voiceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.lookup(voiceID)
	if err != nil {
		return err
	}
	s.selected = &v
	return nil
}

func (s *Studio) Selected() (tts.Voice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return tts.Voice{}, false
	}
	return *s.selected, true
}

func (s *Studio) SetText(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
}

func (s *Studio) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Generate synthesizes the current text with the selected voice. Input
// problems are reported without calling the backend. On success the new
// Resource replaces, and releases, the previous one.
func (s *Studio) Generate(ctx context.Context) (Resource, error) {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return nil, ErrClosed
	case s.generating:
		s.mu.Unlock()
		return nil, ErrBusy
	case s.selected == nil:
		s.mu.Unlock()
		s.logger.Printf("studio: generate: %v", ErrNoVoiceSelected)
		return nil, ErrNoVoiceSelected
	case strings.TrimSpace(s.text) == "":
		s.mu.Unlock()
		s.logger.Printf("studio: generate: %v", ErrEmptyText)
		return nil, ErrEmptyText
	}
	s.generating = true
	voiceID, text := s.selected.VoiceID, s.text
	s.mu.Unlock()

	res, err := s.synthesize(ctx, text, voiceID)

	s.mu.Lock()
	s.generating = false
	if err != nil {
		s.mu.Unlock()
		s.logger.Printf("studio: generate voice=%s: %v", voiceID, err)
		return nil, err
	}
	if s.closed {
		s.mu.Unlock()
		_ = res.Release()
		return nil, ErrClosed
	}
	old := s.current
	s.current = res
	s.mu.Unlock()

	if old != nil {
		if err := old.Release(); err != nil {
			s.logger.Printf("studio: release previous audio: %v", err)
		}
	}
	return res, nil
}

func (s *Studio) synthesize(ctx context.Context, text, voiceID string) (Resource, error) {
	audio, err := s.backend.Synthesize(ctx, text, voiceID)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	res, err := s.store.Create(audio)
	if err != nil {
		return nil, fmt.Errorf("store audio: %w", err)
	}
	return res, nil
}

// Current returns the live synthesis result, or nil.
func (s *Studio) Current() Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Studio) Generating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating
}

// TogglePreview pauses the voice's preview if it is audible and otherwise
// plays it, pausing whichever preview was audible before. It reports whether
// the voice is audible afterwards.
func (s *Studio) TogglePreview(voiceID string) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrClosed
	}
	v, err := s.lookup(voiceID)
	s.mu.Unlock()
	if err != nil {
		return false, err
	}
	if v.PreviewURL == "" {
		return false, ErrNoPreview
	}
	return s.previews.Toggle(v)
}

// AudiblePreview returns the id of the voice whose preview is playing.
func (s *Studio) AudiblePreview() (string, bool) {
	return s.previews.Audible()
}

// Close releases the current result and every preview player.
func (s *Studio) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cur := s.current
	s.current = nil
	s.mu.Unlock()

	var errs []error
	if cur != nil {
		if err := cur.Release(); err != nil {
			errs = append(errs, fmt.Errorf("release audio: %w", err))
		}
	}
	if err := s.previews.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// lookup must be called with s.mu held.
func (s *Studio) lookup(voiceID string) (tts.Voice, error) {
	if s.catalog != CatalogLoaded && s.voices == nil {
		return tts.Voice{}, ErrCatalogNotLoaded
	}
	for _, v := range s.voices {
		if v.VoiceID == voiceID {
			return v, nil
		}
	}
	return tts.Voice{}, fmt.Errorf("%w: %s", ErrUnknownVoice, voiceID)
}
