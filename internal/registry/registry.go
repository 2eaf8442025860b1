// Package registry provides a global registry of generator kinds.
// The chaos and bio packages register their systems and models in init()
// functions, so orchestrators, the CLI and the HTTP API can validate and list
// kinds without hardcoded tables.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Family groups generator kinds by the bank that implements them.
type Family string

const (
	FamilyChaos Family = "chaos"
	FamilyBio   Family = "bio"
)

// Valid reports whether f names a known family.
func (f Family) Valid() bool {
	return f == FamilyChaos || f == FamilyBio
}

// KindInfo contains metadata about a registered generator kind.
type KindInfo struct {
	Family      Family
	ID          string
	Title       string
	Description string
}

type key struct {
	family Family
	id     string
}

var (
	kinds = make(map[key]KindInfo)
	mu    sync.RWMutex
)

// Register adds a generator kind to the registry.
// Typically called from a bank package's init() function.
// Panics if the kind is already registered in the same family.
func Register(info KindInfo) {
	mu.Lock()
	defer mu.Unlock()

	if !info.Family.Valid() {
		panic(fmt.Sprintf("registry: kind %q has unknown family %q", info.ID, info.Family))
	}
	k := key{info.Family, info.ID}
	if _, exists := kinds[k]; exists {
		panic(fmt.Sprintf("registry: kind %s/%s already registered", info.Family, info.ID))
	}
	kinds[k] = info
}

// List returns all kinds registered in a family, sorted by ID.
// An empty family lists every kind, ordered by family then ID.
func List(family Family) []KindInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]KindInfo, 0, len(kinds))
	for k, info := range kinds {
		if family != "" && k.family != family {
			continue
		}
		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Family != result[j].Family {
			return result[i].Family < result[j].Family
		}
		return result[i].ID < result[j].ID
	})

	return result
}

// IDs returns the sorted kind IDs of a family.
func IDs(family Family) []string {
	infos := List(family)
	ids := make([]string, len(infos))
	for i, info := range infos {
		ids[i] = info.ID
	}
	return ids
}

// Lookup returns the metadata of a kind.
// Returns an error if the kind is not registered in the family.
func Lookup(family Family, id string) (KindInfo, error) {
	mu.RLock()
	defer mu.RUnlock()

	info, ok := kinds[key{family, id}]
	if !ok {
		return KindInfo{}, fmt.Errorf("registry: unknown %s kind %q", family, id)
	}
	return info, nil
}

// Exists checks if a kind is registered in the family.
func Exists(family Family, id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := kinds[key{family, id}]
	return ok
}

// Next returns the kind that follows id in the family's sorted order,
// wrapping around. step may be negative. An unknown id yields the first kind.
func Next(family Family, id string, step int) string {
	ids := IDs(family)
	if len(ids) == 0 {
		return id
	}
	for i, candidate := range ids {
		if candidate == id {
			n := len(ids)
			return ids[((i+step)%n+n)%n]
		}
	}
	return ids[0]
}
