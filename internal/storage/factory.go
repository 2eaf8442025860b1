package storage

import "fmt"

// Backend names accepted by NewStore.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// NewStore builds a preset store for the named backend.
func NewStore(kind, sqlitePath string) (PresetStore, error) {
	switch kind {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		return Open(sqlitePath)
	default:
		return nil, fmt.Errorf("storage: unsupported store backend: %s", kind)
	}
}

// CloseIfSupported closes stores that hold external resources.
func CloseIfSupported(store PresetStore) error {
	if store == nil {
		return nil
	}
	return store.Close()
}
