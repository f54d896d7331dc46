package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmcdole/cinelist/internal/domain"
)

// DetailState is a snapshot of a detail view
type DetailState struct {
	Item         domain.CatalogItem // Item.IsFavorite always equals IsFavorite
	IsFavorite   bool
	IsLoading    bool
	ErrorMessage string
	Err          error
}

// DetailController tracks a single item's live favorite status
type DetailController struct {
	favs   FavoritesStore
	repo   domain.CatalogRepository // Optional, used by Refresh
	logger *slog.Logger

	notifyMu sync.Mutex
	mu       sync.Mutex
	state    DetailState

	listeners      listeners[DetailState]
	unsubscribeFav func()
}

// NewDetailController derives the favorite flag for item from favs and
// follows every later store change until Close.
func NewDetailController(item domain.CatalogItem, favs FavoritesStore, repo domain.CatalogRepository, logger *slog.Logger) *DetailController {
	if logger == nil {
		logger = slog.Default()
	}
	c := &DetailController{favs: favs, repo: repo, logger: logger}

	fav := favs.IsFavorite(item.ID)
	item.IsFavorite = fav
	c.state = DetailState{Item: item, IsFavorite: fav}

	c.unsubscribeFav = favs.Subscribe(func(items []domain.CatalogItem) {
		c.setFavorite(membership(items)(c.itemID()))
	})
	return c
}

func (c *DetailController) itemID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Item.ID
}

// State returns the current snapshot
func (c *DetailController) State() DetailState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Item returns the tracked item with its current favorite flag
func (c *DetailController) Item() domain.CatalogItem {
	return c.State().Item
}

// IsFavorite reports the tracked item's favorite status
func (c *DetailController) IsFavorite() bool {
	return c.State().IsFavorite
}

// Subscribe registers fn for state changes. The returned func unsubscribes.
func (c *DetailController) Subscribe(fn func(DetailState)) func() {
	return c.listeners.add(fn)
}

// ToggleFavorite adds or removes the item; state follows via the store notification
func (c *DetailController) ToggleFavorite() {
	item := c.Item()
	if c.favs.IsFavorite(item.ID) {
		c.favs.Remove(item.ID)
		return
	}
	c.favs.Add(item)
}

// Refresh reloads the item's details from the catalog, keeping the favorite
// flag derived from the store.
func (c *DetailController) Refresh(ctx context.Context) error {
	if c.repo == nil {
		return nil
	}
	id := c.itemID()
	c.update(func(s *DetailState) bool {
		s.IsLoading = true
		s.ErrorMessage = ""
		s.Err = nil
		return true
	})

	item, err := c.repo.GetDetails(ctx, id)

	c.update(func(s *DetailState) bool {
		s.IsLoading = false
		if err != nil {
			s.ErrorMessage = domain.UserMessage(err)
			s.Err = err
			return true
		}
		item.IsFavorite = c.favs.IsFavorite(item.ID)
		s.Item = item
		s.IsFavorite = item.IsFavorite
		return true
	})
	if err != nil {
		c.logger.Warn("failed to refresh details", "id", id, "error", err)
	}
	return err
}

// Close detaches from the favorites store
func (c *DetailController) Close() {
	c.unsubscribeFav()
	c.listeners.clear()
}

func (c *DetailController) setFavorite(fav bool) {
	c.update(func(s *DetailState) bool {
		if s.IsFavorite == fav && s.Item.IsFavorite == fav {
			return false
		}
		s.IsFavorite = fav
		s.Item.IsFavorite = fav
		return true
	})
}

func (c *DetailController) update(fn func(s *DetailState) bool) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	changed := fn(&c.state)
	snap := c.state
	c.mu.Unlock()

	if changed {
		c.listeners.emit(snap)
	}
}
