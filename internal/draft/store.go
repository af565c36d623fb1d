package draft

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DraftKey is the fixed key the draft is stored under.
const DraftKey = "wpq-form1-draft"

// SchemaVersion stamps every stored draft. Drafts written with another
// version are discarded on load instead of being merged into a newer shape.
const SchemaVersion = 1

var (
	ErrCorruptDraft   = errors.New("stored draft is corrupt")
	ErrSchemaMismatch = errors.New("stored draft has a different schema version")
)

// Store persists a single draft.
type Store interface {
	// Load returns the stored draft, or nil when nothing is stored.
	Load() (*FormDraft, error)
	Save(d FormDraft) error
	// Clear removes the stored draft. Clearing an absent draft is not an error.
	Clear() error
}

// KV is a durable key-value medium.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

type envelope struct {
	SchemaVersion int       `json:"schemaVersion"`
	SavedAt       time.Time `json:"savedAt"`
	Draft         FormDraft `json:"draft"`
}

// KeyedStore stores a draft in a KV under one fixed key.
type KeyedStore struct {
	KV  KV
	Key string
	Now func() time.Time
}

// NewKeyedStore returns a Store over kv using DraftKey.
func NewKeyedStore(kv KV) *KeyedStore {
	return &KeyedStore{KV: kv, Key: DraftKey, Now: time.Now}
}

// Load implements Store.
func (s *KeyedStore) Load() (*FormDraft, error) {
	raw, ok, err := s.KV.Get(s.Key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.Key, err)
	}
	if !ok {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDraft, err)
	}
	if env.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, env.SchemaVersion, SchemaVersion)
	}
	return &env.Draft, nil
}

// Save implements Store.
func (s *KeyedStore) Save(d FormDraft) error {
	raw, err := json.Marshal(envelope{
		SchemaVersion: SchemaVersion,
		SavedAt:       s.Now().UTC(),
		Draft:         d,
	})
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.Key, err)
	}
	if err := s.KV.Put(s.Key, raw); err != nil {
		return fmt.Errorf("save %s: %w", s.Key, err)
	}
	return nil
}

// Clear implements Store.
func (s *KeyedStore) Clear() error {
	if err := s.KV.Delete(s.Key); err != nil {
		return fmt.Errorf("clear %s: %w", s.Key, err)
	}
	return nil
}

// MemoryKV is an in-process KV.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryKV) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
