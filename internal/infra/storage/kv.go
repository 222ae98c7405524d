package storage

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"crypto_dash/internal/domain"

	json "github.com/goccy/go-json"
)

// Backend is the raw string store behind KV.
type Backend interface {
	SaveValue(key, value string) error
	LoadValue(key string) (value string, found bool, err error)
	DeleteValue(key string) error
}

// KV is a JSON key-value store that never propagates failures.
// Every failure is logged as a PersistenceError and the caller falls back to defaults.
type KV struct {
	backend Backend
	logger  *slog.Logger
}

var _ domain.KeyValueStore = (*KV)(nil)

// NewKV wraps a backend.
func NewKV(backend Backend) *KV {
	return &KV{
		backend: backend,
		logger:  slog.Default().With("module", "kv_store"),
	}
}

// Save serializes value and overwrites key.
func (s *KV) Save(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.report(&domain.PersistenceError{Key: key, Op: "save", Err: err})
		return
	}
	if err := s.backend.SaveValue(key, string(data)); err != nil {
		s.report(&domain.PersistenceError{Key: key, Op: "save", Err: err})
	}
}

// Load decodes the value of key into dst. It returns false, leaving dst
// untouched, when the key is missing, unreadable or corrupt.
func (s *KV) Load(key string, dst any) bool {
	raw, found, err := s.backend.LoadValue(key)
	if err != nil {
		s.report(&domain.PersistenceError{Key: key, Op: "load", Err: err})
		return false
	}
	if !found || raw == "" {
		return false
	}

	// Decode into a scratch value so a corrupt document leaves dst untouched
	target := reflect.ValueOf(dst)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		s.report(&domain.PersistenceError{Key: key, Op: "load", Err: fmt.Errorf("destination must be a non-nil pointer, got %T", dst)})
		return false
	}
	scratch := reflect.New(target.Elem().Type())
	if err := json.Unmarshal([]byte(raw), scratch.Interface()); err != nil {
		s.report(&domain.PersistenceError{Key: key, Op: "load", Err: err})
		return false
	}
	target.Elem().Set(scratch.Elem())
	return true
}

// Remove deletes key.
func (s *KV) Remove(key string) {
	if err := s.backend.DeleteValue(key); err != nil {
		s.report(&domain.PersistenceError{Key: key, Op: "remove", Err: err})
	}
}

func (s *KV) report(err *domain.PersistenceError) {
	s.logger.Error("Key-value store failure", slog.String("key", err.Key), slog.String("op", err.Op), slog.Any("error", err))
}

// MemoryBackend keeps values in a map. Used for tests and when the
// database cannot be opened.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

func (m *MemoryBackend) SaveValue(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryBackend) LoadValue(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryBackend) DeleteValue(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
