// Package favorites owns the process-wide set of favorited movies.
package favorites

import (
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"github.com/mmcdole/cinelist/internal/domain"
)

// StorageKey is the key the serialized set is persisted under
const StorageKey = "favoriteMovies"

type subscription struct {
	id int
	fn func(items []domain.CatalogItem)
}

// Store is the single source of truth for favorite status.
// Mutations are serialized; listeners run in mutation order, outside the data lock,
// and may read from the store but must not mutate it synchronously.
type Store struct {
	kv     domain.KeyValueStore
	logger *slog.Logger

	writeMu sync.Mutex // Serializes mutate + persist + notify

	mu     sync.RWMutex // Protects items and subs
	items  []domain.CatalogItem
	subs   []subscription
	nextID int
}

// NewStore loads the persisted set from kv. A nil kv keeps the set in memory only.
func NewStore(kv domain.KeyValueStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{kv: kv, logger: logger}
	s.items = s.load()
	return s
}

func (s *Store) load() []domain.CatalogItem {
	if s.kv == nil {
		return nil
	}
	data, err := s.kv.Get(StorageKey)
	if err != nil {
		s.logger.Error("failed to read favorites", "error", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var items []domain.CatalogItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Error("failed to decode favorites, starting empty", "error", err)
		return nil
	}

	// Drop duplicate ids left by older files
	seen := make(map[int]bool, len(items))
	out := items[:0]
	for _, item := range items {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		item.IsFavorite = true
		out = append(out, item)
	}
	s.logger.Info("loaded favorites", "count", len(out))
	return out
}

// IsFavorite reports whether id is in the set
func (s *Store) IsFavorite(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

// All returns a copy of the set in insertion order
func (s *Store) All() []domain.CatalogItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Len returns the number of favorites
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Add appends item to the set. Adding a present id is a no-op.
func (s *Store) Add(item domain.CatalogItem) {
	s.mutate(func(items []domain.CatalogItem) ([]domain.CatalogItem, bool) {
		if slices.ContainsFunc(items, func(m domain.CatalogItem) bool { return m.ID == item.ID }) {
			return items, false
		}
		item.IsFavorite = true
		item.GenreIDs = slices.Clone(item.GenreIDs)
		return append(items, item), true
	})
}

// Remove deletes id from the set. Removing an absent id is a no-op.
func (s *Store) Remove(id int) {
	s.mutate(func(items []domain.CatalogItem) ([]domain.CatalogItem, bool) {
		idx := slices.IndexFunc(items, func(m domain.CatalogItem) bool { return m.ID == id })
		if idx < 0 {
			return items, false
		}
		return slices.Delete(items, idx, idx+1), true
	})
}

// Toggle adds item if absent, removes it otherwise. Returns the new membership.
func (s *Store) Toggle(item domain.CatalogItem) bool {
	if s.IsFavorite(item.ID) {
		s.Remove(item.ID)
		return false
	}
	s.Add(item)
	return true
}

// Clear empties the set
func (s *Store) Clear() {
	s.mutate(func(items []domain.CatalogItem) ([]domain.CatalogItem, bool) {
		return nil, true
	})
}

// Subscribe registers fn to receive the full set after every mutation. It does
// not replay the current set; callers read All() for that. The returned func
// unsubscribes.
func (s *Store) Subscribe(fn func(items []domain.CatalogItem)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.subs = slices.DeleteFunc(s.subs, func(sub subscription) bool { return sub.id == id })
		})
	}
}

// mutate applies fn under the write lock, then persists and notifies when
// fn reports a change.
func (s *Store) mutate(fn func([]domain.CatalogItem) ([]domain.CatalogItem, bool)) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	next, changed := fn(slices.Clone(s.items))
	if !changed {
		s.mu.Unlock()
		return
	}
	s.items = next
	snapshot := slices.Clone(next)
	subs := slices.Clone(s.subs)
	s.mu.Unlock()

	s.persist(snapshot)

	for _, sub := range subs {
		sub.fn(slices.Clone(snapshot))
	}
}

// persist writes the set; failures are logged and the in-memory set stays authoritative
func (s *Store) persist(items []domain.CatalogItem) {
	if s.kv == nil {
		return
	}
	if items == nil {
		items = []domain.CatalogItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		s.logger.Error("failed to encode favorites", "error", err)
		return
	}
	if err := s.kv.Set(StorageKey, data); err != nil {
		s.logger.Error("failed to persist favorites", "error", err, "count", len(items))
	}
}

func (s *Store) indexOf(id int) int {
	return slices.IndexFunc(s.items, func(m domain.CatalogItem) bool { return m.ID == id })
}
