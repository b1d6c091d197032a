package studio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// FileStore writes each result to its own temporary file.
type FileStore struct {
	Dir     string // empty means os.TempDir()
	Pattern string // os.CreateTemp pattern, defaults to "voicelab-*.mp3"
}

func (s FileStore) Create(data []byte) (Resource, error) {
	pattern := s.Pattern
	if pattern == "" {
		pattern = "voicelab-*.mp3"
	}
	f, err := os.CreateTemp(s.Dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("create audio file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("write audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("close audio file: %w", err)
	}
	return &fileResource{path: f.Name()}, nil
}

type fileResource struct {
	path string
	once sync.Once
	err  error
}

func (r *fileResource) Location() string { return r.path }

func (r *fileResource) Release() error {
	r.once.Do(func() {
		if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			r.err = err
		}
	})
	return r.err
}
