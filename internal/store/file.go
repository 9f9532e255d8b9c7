package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// FileBackend keeps every slot as a top-level member of one JSON document.
//
// A document that is missing or not valid JSON reads as empty, so every
// slot falls back; the next write replaces it with a fresh document.
type FileBackend struct {
	mu   sync.Mutex
	path string
}

func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("store: file backend requires a path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", filepath.Dir(path), err)
	}
	return &FileBackend{path: path}, nil
}

// Path returns the document location.
func (f *FileBackend) Path() string { return f.path }

func (f *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	res := gjson.GetBytes(doc, escapeKey(key))
	if !res.Exists() {
		return nil, ErrNotFound
	}
	return []byte(res.Raw), nil
}

func (f *FileBackend) Put(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	doc, err = sjson.SetRawBytes(doc, escapeKey(key), value)
	if err != nil {
		return fmt.Errorf("store: set %s: %w", key, err)
	}
	return f.write(doc)
}

func (f *FileBackend) Close() error { return nil }

// read returns the current document, or an empty object when the file is
// absent or corrupt.
func (f *FileBackend) read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []byte("{}"), nil
		}
		return nil, fmt.Errorf("store: read %s: %w", f.path, err)
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return []byte("{}"), nil
	}
	return data, nil
}

// write replaces the document through a temp file so a crash mid-write
// never leaves a truncated session behind.
func (f *FileBackend) write(doc []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*.json")
	if err != nil {
		return fmt.Errorf("store: write %s: %w", f.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: write %s: %w", f.path, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("store: write %s: %w", f.path, err)
	}
	return nil
}

// escapeKey quotes gjson/sjson path syntax so "tone:text" is one member.
func escapeKey(key string) string {
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '.', '*', '?', '|', '#', '@', '!', '=', '<', '>', '%', '\\', ':':
			out = append(out, '\\')
		}
		out = append(out, key[i])
	}
	return string(out)
}
