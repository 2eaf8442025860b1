package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestStoreOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "presets.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("Open(\"\") should fail")
	}
}

// backends returns a fresh instance of every store implementation.
func backends(t *testing.T) map[string]PresetStore {
	t.Helper()
	sqlite, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]PresetStore{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestPresetRoundTrip(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			payload := json.RawMessage(`{"density":0.7,"kind":"lorenz"}`)
			if err := store.Set("drone", payload); err != nil {
				t.Fatalf("Set() failed: %v", err)
			}

			got, err := store.Get("drone")
			if err != nil {
				t.Fatalf("Get() failed: %v", err)
			}
			var a, b map[string]any
			_ = json.Unmarshal(payload, &a)
			_ = json.Unmarshal(got, &b)
			if !reflect.DeepEqual(a, b) {
				t.Errorf("Get() = %s, expected %s", got, payload)
			}
		})
	}
}

func TestPresetOverwrite(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Set("p", json.RawMessage(`{"v":1}`)); err != nil {
				t.Fatalf("Set() failed: %v", err)
			}
			if err := store.Set("p", json.RawMessage(`{"v":2}`)); err != nil {
				t.Fatalf("Set() failed: %v", err)
			}
			got, err := store.Get("p")
			if err != nil {
				t.Fatalf("Get() failed: %v", err)
			}
			if string(got) != `{"v":2}` {
				t.Errorf("Get() = %s, expected {\"v\":2}", got)
			}
			names, _ := store.List()
			if len(names) != 1 {
				t.Errorf("List() = %v, expected one name", names)
			}
		})
	}
}

func TestPresetListSorted(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, n := range []string{"zeta", "alpha", "mid"} {
				if err := store.Set(n, json.RawMessage(`{}`)); err != nil {
					t.Fatalf("Set(%q) failed: %v", n, err)
				}
			}
			names, err := store.List()
			if err != nil {
				t.Fatalf("List() failed: %v", err)
			}
			expected := []string{"alpha", "mid", "zeta"}
			if !reflect.DeepEqual(names, expected) {
				t.Errorf("List() = %v, expected %v", names, expected)
			}

			entries, err := store.Entries()
			if err != nil {
				t.Fatalf("Entries() failed: %v", err)
			}
			if len(entries) != 3 || entries[0].Name != "alpha" {
				t.Errorf("Entries() = %v, expected 3 sorted entries", entries)
			}
			if entries[0].UpdatedAt.IsZero() {
				t.Error("Entries() should carry an update time")
			}
		})
	}
}

func TestPresetMissing(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get("nope"); !errors.Is(err, ErrPresetNotFound) {
				t.Errorf("Get() error = %v, expected ErrPresetNotFound", err)
			}
			if err := store.Remove("nope"); !errors.Is(err, ErrPresetNotFound) {
				t.Errorf("Remove() error = %v, expected ErrPresetNotFound", err)
			}
		})
	}
}

func TestPresetRemove(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_ = store.Set("gone", json.RawMessage(`{"a":1}`))
			if err := store.Remove("gone"); err != nil {
				t.Fatalf("Remove() failed: %v", err)
			}
			if _, err := store.Get("gone"); !errors.Is(err, ErrPresetNotFound) {
				t.Errorf("Get() after Remove error = %v, expected ErrPresetNotFound", err)
			}
		})
	}
}

func TestPresetValidation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		payload string
	}{
		{"empty name", "  ", `{}`},
		{"long name", string(make([]byte, MaxNameLength+1)), `{}`},
		{"array payload", "p", `[1,2]`},
		{"null payload", "p", `null`},
		{"garbage payload", "p", `{oops`},
	}
	for name, store := range backends(t) {
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				err := store.Set(tt.key, json.RawMessage(tt.payload))
				if !errors.Is(err, ErrInvalidPreset) {
					t.Errorf("Set() error = %v, expected ErrInvalidPreset", err)
				}
			})
		}
	}
}

func TestPresetPersistsAcrossOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "persist.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := store.Set("keep", json.RawMessage(`{"x":1}`)); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()
	if _, err := store.Get("keep"); err != nil {
		t.Errorf("Get() after reopen failed: %v", err)
	}
}
