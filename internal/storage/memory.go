package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps presets in process memory. Used for tests, headless runs
// and as the fallback when the database cannot be opened.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry), now: time.Now}
}

func (s *MemoryStore) Get(name string) (json.RawMessage, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[name]
	if !ok {
		return nil, fmt.Errorf("storage: %q: %w", name, ErrPresetNotFound)
	}
	return append(json.RawMessage(nil), e.Payload...), nil
}

func (s *MemoryStore) Set(name string, payload json.RawMessage) error {
	name, err := NormalizeName(name)
	if err != nil {
		return err
	}
	if err := validatePayload(payload); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[name] = Entry{
		Name:      name,
		Payload:   append(json.RawMessage(nil), payload...),
		UpdatedAt: s.now().UTC(),
	}
	return nil
}

func (s *MemoryStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) Entries() ([]Entry, error) {
	names, _ := s.List()

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(names))
	for _, name := range names {
		e := s.entries[name]
		e.Payload = append(json.RawMessage(nil), e.Payload...)
		out = append(out, e)
	}
	return out, nil
}

// Remove deletes a preset. Removing a missing name returns ErrPresetNotFound.
func (s *MemoryStore) Remove(name string) error {
	name, err := NormalizeName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[name]; !ok {
		return fmt.Errorf("storage: %q: %w", name, ErrPresetNotFound)
	}
	delete(s.entries, name)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
