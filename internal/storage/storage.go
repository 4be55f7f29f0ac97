// Package storage is the durable key-value layer behind the store. Backends
// move raw bytes; the Bridge adds encoding and swallows failures so callers
// only ever see "loaded" or "absent".
package storage

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"cinescope/internal/logging"
	"cinescope/internal/metrics"
)

// ErrUnknownBackend is returned by Open for an unrecognised backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Backend names.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Backend is a flat string-keyed byte store.
type Backend interface {
	// Get returns ok=false when the key is absent.
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	Delete(key string) error
	// Keys lists every stored key in ascending order.
	Keys() ([]string, error)
	io.Closer
}

// Config selects and locates a backend.
type Config struct {
	Backend string `koanf:"backend" validate:"oneof=sqlite badger file memory"`
	// Path is the database file, badger directory, or JSON document.
	// Ignored by memory; an empty badger path runs in memory.
	Path string `koanf:"path"`
}

// Open creates the configured backend.
func Open(cfg Config) (Backend, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendSQLite:
		return NewSQLiteBackend(cfg.Path)
	case BackendBadger:
		return NewBadgerBackend(cfg.Path)
	case BackendFile:
		return NewFileBackend(cfg.Path)
	case BackendMemory, "":
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// Bridge encodes values for a Backend. Load and Save never return errors:
// failures are logged, counted and reported as false.
type Bridge struct {
	backend Backend
}

// NewBridge wraps backend.
func NewBridge(backend Backend) *Bridge {
	return &Bridge{backend: backend}
}

// Backend returns the wrapped backend.
func (b *Bridge) Backend() Backend {
	return b.backend
}

// Load decodes the value stored under key into dst. It returns false when
// the key is absent, unreadable or undecodable; dst is then left untouched.
func (b *Bridge) Load(key string, codec Codec, dst any) bool {
	raw, ok, err := b.backend.Get(key)
	if err != nil {
		metrics.StorageLoadFailures.WithLabelValues(key).Inc()
		logging.Warn().Err(err).Str("key", key).Msg("failed to read stored value")
		return false
	}
	if !ok {
		return false
	}
	// dst only changes on a clean decode
	target := reflect.ValueOf(dst)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		logging.Error().Str("key", key).Msgf("cannot load into %T", dst)
		return false
	}
	scratch := reflect.New(target.Elem().Type())
	if err := codec.Decode(raw, scratch.Interface()); err != nil {
		metrics.StorageLoadFailures.WithLabelValues(key).Inc()
		logging.Warn().Err(err).Str("key", key).Msg("ignoring corrupt stored value")
		return false
	}
	target.Elem().Set(scratch.Elem())
	return true
}

// Save encodes v and writes it under key.
func (b *Bridge) Save(key string, codec Codec, v any) bool {
	raw, err := codec.Encode(v)
	if err != nil {
		metrics.StorageSaveFailures.WithLabelValues(key).Inc()
		logging.Error().Err(err).Str("key", key).Msg("failed to encode value")
		return false
	}
	if err := b.backend.Set(key, raw); err != nil {
		metrics.StorageSaveFailures.WithLabelValues(key).Inc()
		logging.Error().Err(err).Str("key", key).Msg("failed to save value")
		return false
	}
	return true
}

// Close closes the backend.
func (b *Bridge) Close() error {
	return b.backend.Close()
}
