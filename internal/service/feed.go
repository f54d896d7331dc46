package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/mmcdole/cinelist/internal/domain"
)

const (
	DefaultDebounce        = 800 * time.Millisecond
	defaultGenreAttempts   = 3
	defaultGenreRetryDelay = 500 * time.Millisecond
)

// FeedStatus is the feed's loading state
type FeedStatus int

const (
	FeedIdle FeedStatus = iota
	FeedLoadingFirstPage
	FeedLoaded
	FeedLoadingNextPage
	FeedError
)

func (s FeedStatus) String() string {
	switch s {
	case FeedIdle:
		return "idle"
	case FeedLoadingFirstPage:
		return "loading-first-page"
	case FeedLoaded:
		return "loaded"
	case FeedLoadingNextPage:
		return "loading-next-page"
	case FeedError:
		return "error"
	default:
		return "unknown"
	}
}

// FeedState is an immutable snapshot of the feed
type FeedState struct {
	Status        FeedStatus
	Items         []domain.CatalogItem // Unique by id, in insertion order
	CurrentPage   int
	TotalPages    int
	SelectedGenre domain.Genre
	SearchQuery   string // Committed, trimmed query; empty means genre/popular mode
	SearchText    string // Raw text as typed
	Genres        []domain.Genre
	IsLoading     bool // Spinner-worthy first page load; search edits load quietly
	ErrorMessage  string
	Err           error
}

// HasMore reports whether another page can be requested
func (s FeedState) HasMore() bool {
	return s.CurrentPage < s.TotalPages
}

// FeedOptions tunes a FeedController
type FeedOptions struct {
	Debounce        time.Duration // Search input quiet window
	GenreAttempts   uint
	GenreRetryDelay time.Duration
}

// feedRequest is one of the three mutually exclusive request modes
type feedRequest struct {
	query   string
	genreID int
}

func (r feedRequest) mode() string {
	switch {
	case r.query != "":
		return "search"
	case r.genreID != domain.AllGenres.ID:
		return "discover-genre"
	default:
		return "discover"
	}
}

// FeedController drives the paginated, searchable, genre-filtered movie list
// and keeps every displayed item's favorite flag in sync with the store.
//
// Listeners receive snapshots in mutation order. They may call State but must
// not call other controller methods synchronously.
type FeedController struct {
	repo   domain.CatalogRepository
	favs   FavoritesStore
	logger *slog.Logger
	opts   FeedOptions

	ctx       context.Context // Parent for debounced fetches
	cancel    context.CancelFunc
	debouncer *Debouncer

	notifyMu sync.Mutex // Serializes mutate + notify; always taken before mu
	mu       sync.Mutex
	state    FeedState

	generation    uint64 // Bumped by every first-page fetch
	firstInFlight bool
	nextInFlight  bool
	lastQuery     string // Last value released by the debouncer

	listeners      listeners[FeedState]
	unsubscribeFav func()
}

// NewFeedController creates a feed controller and subscribes it to favorites changes
func NewFeedController(repo domain.CatalogRepository, favs FavoritesStore, opts FeedOptions, logger *slog.Logger) *FeedController {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.GenreAttempts == 0 {
		opts.GenreAttempts = defaultGenreAttempts
	}
	if opts.GenreRetryDelay <= 0 {
		opts.GenreRetryDelay = defaultGenreRetryDelay
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &FeedController{
		repo:      repo,
		favs:      favs,
		logger:    logger,
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
		debouncer: NewDebouncer(opts.Debounce),
		state: FeedState{
			Status:        FeedIdle,
			CurrentPage:   1,
			TotalPages:    1,
			SelectedGenre: domain.AllGenres,
			Genres:        []domain.Genre{domain.AllGenres},
		},
	}
	c.unsubscribeFav = favs.Subscribe(c.onFavoritesChanged)
	return c
}

// State returns the current snapshot
func (c *FeedController) State() FeedState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn for state changes. The returned func unsubscribes.
func (c *FeedController) Subscribe(fn func(FeedState)) func() {
	return c.listeners.add(fn)
}

// Close stops pending debounced searches and detaches from the favorites store
func (c *FeedController) Close() {
	c.debouncer.Stop()
	c.cancel()
	c.unsubscribeFav()
	c.listeners.clear()
}

func (c *FeedController) snapshotLocked() FeedState {
	s := c.state
	s.Items = slices.Clone(c.state.Items)
	s.Genres = slices.Clone(c.state.Genres)
	return s
}

// update applies fn to the state and notifies listeners when fn reports a change
func (c *FeedController) update(fn func(s *FeedState) bool) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	changed := fn(&c.state)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if changed {
		c.listeners.emit(snap)
	}
}

// SetSearchText records raw search input. The committed query follows once
// input has been quiet for the debounce window.
func (c *FeedController) SetSearchText(text string) {
	c.update(func(s *FeedState) bool {
		if s.SearchText == text {
			return false
		}
		s.SearchText = text
		return true
	})
	c.debouncer.Trigger(func() { c.commitSearch(text) })
}

func (c *FeedController) commitSearch(text string) {
	query := strings.TrimSpace(text)

	c.mu.Lock()
	if query == c.lastQuery {
		c.mu.Unlock()
		return
	}
	c.lastQuery = query
	c.mu.Unlock()

	c.update(func(s *FeedState) bool {
		s.SearchQuery = query
		return true
	})
	c.logger.Debug("search committed", "query", query)

	if err := c.FetchFirstPage(c.ctx, true); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Warn("search fetch failed", "query", query, "error", err)
	}
}

// SetSelectedGenre switches the genre filter. Re-selecting the current genre
// is a no-op; any other genre restarts from page 1.
func (c *FeedController) SetSelectedGenre(ctx context.Context, genre domain.Genre) error {
	changed := false
	c.update(func(s *FeedState) bool {
		if s.SelectedGenre.ID == genre.ID {
			return false
		}
		s.SelectedGenre = genre
		changed = true
		return true
	})
	if !changed {
		c.logger.Debug("genre unchanged", "genre", genre.Name)
		return nil
	}
	return c.FetchFirstPage(ctx, false)
}

// FetchInitial resets search and genre and loads the first page
func (c *FeedController) FetchInitial(ctx context.Context) error {
	c.debouncer.Stop()
	c.mu.Lock()
	c.lastQuery = ""
	c.mu.Unlock()

	c.update(func(s *FeedState) bool {
		s.SearchQuery = ""
		s.SearchText = ""
		s.SelectedGenre = domain.AllGenres
		return true
	})
	return c.FetchFirstPage(ctx, false)
}

// FetchFirstPage replaces the displayed items with page 1 of the current mode.
// fromSearchEdit suppresses the loading indicator. A completion superseded by
// a newer first-page fetch is discarded.
func (c *FeedController) FetchFirstPage(ctx context.Context, fromSearchEdit bool) error {
	var (
		gen uint64
		req feedRequest
	)
	c.update(func(s *FeedState) bool {
		c.generation++
		gen = c.generation
		c.firstInFlight = true
		c.nextInFlight = false

		s.CurrentPage = 1
		s.Status = FeedLoadingFirstPage
		s.IsLoading = !fromSearchEdit
		s.ErrorMessage = ""
		s.Err = nil
		req = requestFor(*s)
		return true
	})

	c.logger.Debug("fetching first page", "mode", req.mode(), "query", req.query, "genre", req.genreID, "generation", gen)
	page, err := c.load(ctx, req, 1)

	c.update(func(s *FeedState) bool {
		if gen != c.generation {
			c.logger.Debug("discarding stale first page", "generation", gen, "current", c.generation)
			return false
		}
		c.firstInFlight = false
		s.IsLoading = false
		s.CurrentPage = 1

		if err != nil {
			s.Status = FeedError
			s.Items = nil
			s.TotalPages = 1
			s.ErrorMessage = domain.UserMessage(err)
			s.Err = err
			return true
		}

		items, _ := stampFavorites(uniqueByID(nil, page.Items), c.favs.IsFavorite)
		s.Items = items
		s.TotalPages = max(1, page.TotalPages)
		s.Status = FeedLoaded
		return true
	})

	if err != nil {
		c.logger.Error("first page fetch failed", "mode", req.mode(), "error", err)
		return err
	}
	return nil
}

// FetchNextPage appends the next page. It is a no-op while any page fetch is
// in flight or when the last page is displayed. On failure the page counter
// rolls back and displayed items are kept.
func (c *FeedController) FetchNextPage(ctx context.Context) error {
	var (
		gen     uint64
		req     feedRequest
		page    int
		started bool
	)
	c.update(func(s *FeedState) bool {
		if c.firstInFlight || c.nextInFlight || s.CurrentPage >= s.TotalPages {
			return false
		}
		c.nextInFlight = true
		gen = c.generation

		s.CurrentPage++
		page = s.CurrentPage
		s.Status = FeedLoadingNextPage
		req = requestFor(*s)
		started = true
		return true
	})
	if !started {
		return nil
	}

	c.logger.Debug("fetching next page", "mode", req.mode(), "page", page)
	result, err := c.load(ctx, req, page)

	c.update(func(s *FeedState) bool {
		if gen != c.generation {
			c.logger.Debug("discarding stale next page", "page", page)
			return false
		}
		c.nextInFlight = false
		s.Status = FeedLoaded

		if err != nil {
			s.CurrentPage--
			s.ErrorMessage = domain.UserMessage(err)
			s.Err = err
			return true
		}

		fresh, _ := stampFavorites(uniqueByID(s.Items, result.Items), c.favs.IsFavorite)
		s.Items = append(s.Items, fresh...)
		s.TotalPages = max(1, result.TotalPages, s.CurrentPage)
		s.ErrorMessage = ""
		s.Err = nil
		return true
	})

	if err != nil {
		c.logger.Warn("next page fetch failed", "page", page, "error", err)
		return err
	}
	return nil
}

// ToggleFavorite flips item's membership in the favorites store. The displayed
// list follows through reconciliation.
func (c *FeedController) ToggleFavorite(item domain.CatalogItem) {
	if c.favs.IsFavorite(item.ID) {
		c.favs.Remove(item.ID)
		return
	}
	c.favs.Add(item)
}

// Reconcile re-stamps every displayed item from the store. Listeners are only
// notified when at least one item changed.
func (c *FeedController) Reconcile() {
	c.reconcile(c.favs.IsFavorite)
}

func (c *FeedController) onFavoritesChanged(items []domain.CatalogItem) {
	c.reconcile(membership(items))
}

func (c *FeedController) reconcile(isFav func(id int) bool) {
	c.update(func(s *FeedState) bool {
		items, changed := stampFavorites(s.Items, isFav)
		if !changed {
			return false
		}
		s.Items = items
		return true
	})
}

// LoadGenres fetches the genre catalogue, retrying transient failures. The
// "All Genres" sentinel is always first; on failure the list stays [All].
func (c *FeedController) LoadGenres(ctx context.Context) error {
	genres, err := retry.DoWithData(
		func() ([]domain.Genre, error) {
			return c.repo.ListGenres(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(c.opts.GenreAttempts),
		retry.Delay(c.opts.GenreRetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying genre load", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		c.logger.Warn("failed to load genres", "error", err)
		return err
	}

	if !slices.ContainsFunc(genres, func(g domain.Genre) bool { return g.IsAll() }) {
		genres = append([]domain.Genre{domain.AllGenres}, genres...)
	}
	c.update(func(s *FeedState) bool {
		s.Genres = genres
		return true
	})
	c.logger.Info("loaded genres", "count", len(genres))
	return nil
}

func (c *FeedController) load(ctx context.Context, req feedRequest, page int) (domain.CatalogPage, error) {
	if req.query != "" {
		return c.repo.Search(ctx, req.query, page)
	}
	return c.repo.Discover(ctx, req.genreID, page)
}

// requestFor picks the request mode: search wins over a genre filter
func requestFor(s FeedState) feedRequest {
	if s.SearchQuery != "" {
		return feedRequest{query: s.SearchQuery}
	}
	return feedRequest{genreID: s.SelectedGenre.ID}
}

// uniqueByID returns the items of incoming whose id is not in existing and
// not repeated earlier in incoming, in order.
func uniqueByID(existing, incoming []domain.CatalogItem) []domain.CatalogItem {
	seen := make(map[int]struct{}, len(existing)+len(incoming))
	for _, item := range existing {
		seen[item.ID] = struct{}{}
	}
	out := make([]domain.CatalogItem, 0, len(incoming))
	for _, item := range incoming {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}
