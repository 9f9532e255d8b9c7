// Package store persists the editing session in three named slots.
//
// Reads never fail: a missing, unreadable or malformed slot yields the
// caller's fallback. Writes never fail either: errors are logged and the
// write is dropped.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"time"
)

// Slot keys.
const (
	KeyText   = "tone:text"
	KeyPast   = "tone:history"
	KeyFuture = "tone:redo"
)

// ErrNotFound is returned by backends for keys that were never written.
var ErrNotFound = errors.New("store: key not found")

// Backend is a raw key-value store for serialized slots.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Durable wraps a Backend with JSON encoding and best-effort semantics.
type Durable struct {
	backend Backend
	logger  *log.Logger
	timeout time.Duration
}

// NewDurable wraps backend. A nil logger discards messages; a timeout <= 0
// defaults to two seconds.
func NewDurable(backend Backend, logger *log.Logger, timeout time.Duration) *Durable {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Durable{backend: backend, logger: logger, timeout: timeout}
}

// Backend returns the wrapped backend.
func (d *Durable) Backend() Backend { return d.backend }

// Close releases the backend.
func (d *Durable) Close() error { return d.backend.Close() }

// Load reads and decodes a slot, returning fallback on any failure.
func Load[T any](d *Durable, key string, fallback T) T {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	raw, err := d.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			d.logger.Printf("store: load %s: %v", key, err)
		}
		return fallback
	}
	if len(raw) == 0 {
		return fallback
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		d.logger.Printf("store: decode %s: %v", key, err)
		return fallback
	}
	return v
}

// Save encodes and writes a slot. Failures are logged and discarded.
func (d *Durable) Save(key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		d.logger.Printf("store: encode %s: %v", key, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.backend.Put(ctx, key, raw); err != nil {
		d.logger.Printf("store: save %s: %v", key, err)
	}
}
