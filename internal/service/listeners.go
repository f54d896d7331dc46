package service

import (
	"slices"
	"sync"

	"github.com/mmcdole/cinelist/internal/domain"
)

// FavoritesStore is the favorites API the controllers depend on
type FavoritesStore interface {
	IsFavorite(id int) bool
	All() []domain.CatalogItem
	Add(item domain.CatalogItem)
	Remove(id int)
	Subscribe(fn func(items []domain.CatalogItem)) func()
}

type listener[T any] struct {
	id int
	fn func(T)
}

// listeners is a small subscriber registry shared by the controllers
type listeners[T any] struct {
	mu     sync.Mutex
	subs   []listener[T]
	nextID int
}

func (l *listeners[T]) add(fn func(T)) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subs = append(l.subs, listener[T]{id: id, fn: fn})
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.subs = slices.DeleteFunc(l.subs, func(s listener[T]) bool { return s.id == id })
		})
	}
}

func (l *listeners[T]) emit(v T) {
	l.mu.Lock()
	subs := slices.Clone(l.subs)
	l.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

func (l *listeners[T]) clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subs = nil
}

// stampFavorites returns items with IsFavorite derived from isFav, and whether
// any item changed.
func stampFavorites(items []domain.CatalogItem, isFav func(id int) bool) ([]domain.CatalogItem, bool) {
	out := make([]domain.CatalogItem, len(items))
	changed := false
	for i, item := range items {
		fav := isFav(item.ID)
		if item.IsFavorite != fav {
			changed = true
		}
		item.IsFavorite = fav
		out[i] = item
	}
	return out, changed
}

// membership builds an id lookup for a favorites snapshot
func membership(items []domain.CatalogItem) func(id int) bool {
	set := make(map[int]struct{}, len(items))
	for _, item := range items {
		set[item.ID] = struct{}{}
	}
	return func(id int) bool {
		_, ok := set[id]
		return ok
	}
}
