package service

import (
	"log/slog"
	"sync"

	"crypto_dash/internal/domain"
)

// FavoritesManager is the in-memory favorite set, persisted whole on every change.
type FavoritesManager struct {
	mu     sync.RWMutex
	items  []domain.AssetSnapshot
	store  domain.KeyValueStore
	logger *slog.Logger
}

// NewFavoritesManager loads the saved set. Missing or corrupt data yields an empty set.
func NewFavoritesManager(store domain.KeyValueStore) *FavoritesManager {
	m := &FavoritesManager{
		store:  store,
		logger: slog.Default().With("module", "favorites"),
	}

	var saved []domain.AssetSnapshot
	if store.Load(domain.KeyFavorites, &saved) {
		seen := make(map[string]struct{}, len(saved))
		for _, a := range saved {
			if a.ID == "" {
				continue
			}
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			m.items = append(m.items, a)
		}
	}
	m.logger.Info("⭐ Favorites loaded", slog.Int("count", len(m.items)))
	return m
}

// Toggle removes the entry with asset's ID, or appends asset when absent.
// It returns whether asset is a favorite afterwards.
func (m *FavoritesManager) Toggle(asset domain.AssetSnapshot) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make([]domain.AssetSnapshot, 0, len(m.items)+1)
	removed := false
	for _, fav := range m.items {
		if fav.ID == asset.ID {
			removed = true
			continue
		}
		next = append(next, fav)
	}
	if !removed {
		next = append(next, asset)
	}
	m.items = next

	m.store.Save(domain.KeyFavorites, m.items)
	return !removed
}

// IsFavorite reports membership by ID.
func (m *FavoritesManager) IsFavorite(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.indexOf(id) >= 0
}

// List returns a copy of the set in insertion order.
func (m *FavoritesManager) List() []domain.AssetSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.AssetSnapshot, len(m.items))
	copy(out, m.items)
	return out
}

// Count returns the number of favorites.
func (m *FavoritesManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// IDs returns the set of favorite ids.
func (m *FavoritesManager) IDs() map[string]struct{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make(map[string]struct{}, len(m.items))
	for _, a := range m.items {
		ids[a.ID] = struct{}{}
	}
	return ids
}

func (m *FavoritesManager) indexOf(id string) int {
	for i, a := range m.items {
		if a.ID == id {
			return i
		}
	}
	return -1
}
