package service

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/cinelist/internal/domain"
)

// EmptyFavoritesMessage is shown when there are no favorites at all
const EmptyFavoritesMessage = "You haven't added any movies to your favorites yet."

// NoMatchesMessage is shown when a filter hides every favorite
const NoMatchesMessage = "No favorites match your search."

// FavoritesListState is a snapshot of the favorites view
type FavoritesListState struct {
	Items      []domain.CatalogItem // Filtered, in the store's order
	Total      int                  // Unfiltered count
	SearchText string
}

// FavoritesList mirrors the favorites store with an optional title filter
type FavoritesList struct {
	favs   FavoritesStore
	logger *slog.Logger

	notifyMu sync.Mutex
	mu       sync.Mutex
	all      []domain.CatalogItem
	search   string

	listeners      listeners[FavoritesListState]
	unsubscribeFav func()
}

// NewFavoritesList creates a favorites list following favs
func NewFavoritesList(favs FavoritesStore, logger *slog.Logger) *FavoritesList {
	if logger == nil {
		logger = slog.Default()
	}
	l := &FavoritesList{favs: favs, logger: logger, all: favs.All()}
	l.unsubscribeFav = favs.Subscribe(func(items []domain.CatalogItem) {
		l.update(func() { l.all = items })
	})
	return l
}

// State returns the current snapshot
func (l *FavoritesList) State() FavoritesListState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// SetSearchText filters favorites by title, case-insensitively
func (l *FavoritesList) SetSearchText(text string) {
	l.update(func() { l.search = text })
}

// EmptyMessage returns the placeholder for an empty view, or "" when items are shown
func (l *FavoritesList) EmptyMessage() string {
	s := l.State()
	switch {
	case len(s.Items) > 0:
		return ""
	case s.Total == 0:
		return EmptyFavoritesMessage
	default:
		return NoMatchesMessage
	}
}

// ToggleFavorite flips item's membership
func (l *FavoritesList) ToggleFavorite(item domain.CatalogItem) {
	if l.favs.IsFavorite(item.ID) {
		l.favs.Remove(item.ID)
		return
	}
	l.favs.Add(item)
}

// Subscribe registers fn for state changes. The returned func unsubscribes.
func (l *FavoritesList) Subscribe(fn func(FavoritesListState)) func() {
	return l.listeners.add(fn)
}

// Close detaches from the favorites store
func (l *FavoritesList) Close() {
	l.unsubscribeFav()
	l.listeners.clear()
}

func (l *FavoritesList) update(fn func()) {
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()

	l.mu.Lock()
	fn()
	snap := l.snapshotLocked()
	l.mu.Unlock()

	l.listeners.emit(snap)
}

func (l *FavoritesList) snapshotLocked() FavoritesListState {
	return FavoritesListState{
		Items:      filterByTitle(l.all, l.search),
		Total:      len(l.all),
		SearchText: l.search,
	}
}

// filterByTitle keeps items whose title fuzzily contains query
func filterByTitle(items []domain.CatalogItem, query string) []domain.CatalogItem {
	query = strings.TrimSpace(query)
	if query == "" {
		return slices.Clone(items)
	}
	var out []domain.CatalogItem
	for _, item := range items {
		if fuzzy.MatchNormalizedFold(query, item.Title) {
			out = append(out, item)
		}
	}
	return out
}
