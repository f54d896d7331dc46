package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/cinelist/internal/adapter"
	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/favorites"
)

var action = domain.Genre{ID: 28, Name: "Action"}

func newTestFeed(t *testing.T, repo *fakeRepo, favs *favorites.Store, debounce time.Duration) *FeedController {
	t.Helper()
	if favs == nil {
		favs = favorites.NewStore(nil, adapter.NullLogger())
	}
	c := NewFeedController(repo, favs, FeedOptions{
		Debounce:        debounce,
		GenreAttempts:   3,
		GenreRetryDelay: time.Millisecond,
	}, adapter.NullLogger())
	t.Cleanup(c.Close)
	return c
}

func countSearches(repo *fakeRepo) int {
	n := 0
	for _, c := range repo.callLog() {
		if c.method == "search" {
			n++
		}
	}
	return n
}

func TestFeed_InitialState(t *testing.T) {
	c := newTestFeed(t, newFakeRepo(), nil, 0)
	s := c.State()

	assert.Equal(t, FeedIdle, s.Status)
	assert.Equal(t, 1, s.CurrentPage)
	assert.Equal(t, 1, s.TotalPages)
	assert.True(t, s.SelectedGenre.IsAll())
	assert.Equal(t, []domain.Genre{domain.AllGenres}, s.Genres)
}

func TestFeed_FirstPageUsesUnfilteredDiscover(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage(1, 4, 10, 11)
	c := newTestFeed(t, repo, nil, 0)

	require.NoError(t, c.FetchFirstPage(context.Background(), false))

	assert.Equal(t, repoCall{method: "discover", genreID: 0, page: 1}, repo.lastCall())
	s := c.State()
	assert.Equal(t, FeedLoaded, s.Status)
	assert.Equal(t, []int{10, 11}, itemIDs(s.Items))
	assert.Equal(t, 4, s.TotalPages)
	assert.False(t, s.IsLoading)
	assert.True(t, s.HasMore())
}

func TestFeed_PaginationDeduplicates(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage(1, 3, 1, 2, 3)
	repo.setPage(2, 3, 3, 4, 5)
	c := newTestFeed(t, repo, nil, 0)

	require.NoError(t, c.FetchFirstPage(context.Background(), false))
	require.NoError(t, c.FetchNextPage(context.Background()))

	s := c.State()
	assert.Equal(t, []int{1, 2, 3, 4, 5}, itemIDs(s.Items))
	assert.Equal(t, 2, s.CurrentPage)
}

func TestFeed_NextPageStopsAtLastPage(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage(1, 1, 1, 2)
	c := newTestFeed(t, repo, nil, 0)

	require.NoError(t, c.FetchFirstPage(context.Background(), false))
	require.NoError(t, c.FetchNextPage(context.Background()))

	assert.Len(t, repo.callLog(), 1)
	assert.Equal(t, 1, c.State().CurrentPage)
}

func TestFeed_NextPageIgnoredBeforeFirstPage(t *testing.T) {
	repo := newFakeRepo()
	c := newTestFeed(t, repo, nil, 0)

	require.NoError(t, c.FetchNextPage(context.Background()))
	assert.Empty(t, repo.callLog())
}

func TestFeed_NextPageFailureRollsBack(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage(1, 5, 1, 2)
	repo.setPage(2, 5, 3, 4)
	repo.setError(3, domain.NewServerError(503, nil))
	c := newTestFeed(t, repo, nil, 0)
	ctx := context.Background()

	require.NoError(t, c.FetchFirstPage(ctx, false))
	require.NoError(t, c.FetchNextPage(ctx))

	err := c.FetchNextPage(ctx)
	require.ErrorIs(t, err, domain.ErrServerError)

	s := c.State()
	assert.Equal(t, 2, s.CurrentPage)
	assert.Equal(t, []int{1, 2, 3, 4}, itemIDs(s.Items))
	assert.Equal(t, FeedLoaded, s.Status)
	assert.Equal(t, "Failed to fetch movies: server returned 503.", s.ErrorMessage)
	assert.ErrorIs(t, s.Err, domain.ErrServerError)

	// A retry requests the same page again
	repo.setError(3, nil)
	repo.setPage(3, 5, 5)
	require.NoError(t, c.FetchNextPage(ctx))
	assert.Equal(t, repoCall{method: "discover", page: 3}, repo.lastCall())
	assert.Equal(t, 3, c.State().CurrentPage)
	assert.Empty(t, c.State().ErrorMessage)
}

func TestFeed_FirstPageFailureClearsItems(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage(1, 3, 1, 2)
	c := newTestFeed(t, repo, nil, 0)
	ctx := context.Background()
	require.NoError(t, c.FetchFirstPage(ctx, false))

	repo.setError(1, domain.NewServerError(500, []byte("boom")))
	err := c.FetchFirstPage(ctx, false)
	require.Error(t, err)

	s := c.State()
	assert.Equal(t, FeedError, s.Status)
	assert.Empty(t, s.Items)
	assert.Equal(t, 1, s.CurrentPage)
	assert.Equal(t, "Failed to fetch movies: server returned 500.", s.ErrorMessage)
}

func TestFeed_UnexpectedErrorMessage(t *testing.T) {
	repo := newFakeRepo()
	repo.setError(1, errors.New("disk on fire"))
	c := newTestFeed(t, repo, nil, 0)

	require.Error(t, c.FetchFirstPage(context.Background(), false))
	assert.Equal(t, "An unexpected error occurred: disk on fire", c.State().ErrorMessage)
}

func TestFeed_GenreSelection(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage(1, 2, 1)
	c := newTestFeed(t, repo, nil, 0)
	ctx := context.Background()

	// Re-selecting the current genre does nothing
	require.NoError(t, c.SetSelectedGenre(ctx, domain.AllGenres))
	assert.Empty(t, repo.callLog())

	require.NoError(t, c.SetSelectedGenre(ctx, action))
	assert.Equal(t, repoCall{method: "discover", genreID: 28, page: 1}, repo.lastCall())

	require.NoError(t, c.SetSelectedGenre(ctx, domain.Genre{ID: 28, Name: "renamed"}))
	assert.Len(t, repo.callLog(), 1)
}

func TestFeed_SearchTakesPrecedenceOverGenre(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage(1, 3, 1)
	c := newTestFeed(t, repo, nil, 10*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, c.SetSelectedGenre(ctx, action))
	c.SetSearchText("matrix")
	require.Eventually(t, func() bool { return countSearches(repo) == 1 }, time.Second, time.Millisecond)

	require.NoError(t, c.FetchFirstPage(ctx, false))
	require.NoError(t, c.FetchNextPage(ctx))

	calls := repo.callLog()
	for _, call := range calls[1:] {
		assert.Equal(t, "search", call.method)
		assert.Equal(t, "matrix", call.query)
	}
	assert.Equal(t, action, c.State().SelectedGenre)
}

func TestFeed_SearchDebounce(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage(1, 1, 1)
	c := newTestFeed(t, repo, nil, 50*time.Millisecond)

	c.SetSearchText("m")
	c.SetSearchText("ma")
	c.SetSearchText("mat")

	require.Eventually(t, func() bool { return countSearches(repo) == 1 }, time.Second, time.Millisecond)
	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, 1, countSearches(repo))
	assert.Equal(t, "mat", repo.lastCall().query)
	s := c.State()
	assert.Equal(t, "mat", s.SearchQuery)
	assert.False(t, s.IsLoading)
}

func TestFeed_SearchIgnoresRepeatedQuery(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage(1, 1, 1)
	c := newTestFeed(t, repo, nil, 10*time.Millisecond)

	c.SetSearchText("alien")
	require.Eventually(t, func() bool { return countSearches(repo) == 1 }, time.Second, time.Millisecond)

	c.SetSearchText("alien ")
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, countSearches(repo))
}

func TestFeed_ClearingSearchFallsBackToDiscover(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage(1, 1, 1)
	c := newTestFeed(t, repo, nil, 10*time.Millisecond)

	c.SetSearchText("alien")
	require.Eventually(t, func() bool { return countSearches(repo) == 1 }, time.Second, time.Millisecond)

	c.SetSearchText("   ")
	require.Eventually(t, func() bool { return repo.lastCall().method == "discover" }, time.Second, time.Millisecond)
	assert.Empty(t, c.State().SearchQuery)
}

func TestFeed_FavoritesStampedAndReconciled(t *testing.T) {
	repo := newFakeRepo()
	repo.pages[1] = domain.CatalogPage{Page: 1, TotalPages: 2, Items: []domain.CatalogItem{{ID: 1, Title: "A"}}}
	favs := favorites.NewStore(nil, adapter.NullLogger())
	favs.Add(domain.CatalogItem{ID: 1, Title: "A"})
	c := newTestFeed(t, repo, favs, 0)

	require.NoError(t, c.FetchFirstPage(context.Background(), false))
	assert.True(t, c.State().Items[0].IsFavorite)

	favs.Remove(1)
	assert.False(t, c.State().Items[0].IsFavorite)
}

func TestFeed_ToggleFavoriteGoesThroughStore(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage(1, 1, 1, 2)
	favs := favorites.NewStore(nil, adapter.NullLogger())
	c := newTestFeed(t, repo, favs, 0)
	require.NoError(t, c.FetchFirstPage(context.Background(), false))

	item := c.State().Items[1]
	c.ToggleFavorite(item)
	assert.True(t, favs.IsFavorite(2))
	assert.Equal(t, []bool{false, true}, []bool{c.State().Items[0].IsFavorite, c.State().Items[1].IsFavorite})

	c.ToggleFavorite(c.State().Items[1])
	assert.False(t, favs.IsFavorite(2))
	assert.False(t, c.State().Items[1].IsFavorite)
}

func TestFeed_ReconcileIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage(1, 1, 1, 2)
	favs := favorites.NewStore(nil, adapter.NullLogger())
	c := newTestFeed(t, repo, favs, 0)
	require.NoError(t, c.FetchFirstPage(context.Background(), false))

	var notifications atomic.Int32
	c.Subscribe(func(FeedState) { notifications.Add(1) })

	favs.Add(domain.CatalogItem{ID: 2})
	assert.Equal(t, int32(1), notifications.Load())

	c.Reconcile()
	c.Reconcile()
	assert.Equal(t, int32(1), notifications.Load())

	// Changes to favorites that are not displayed do not notify either
	favs.Add(domain.CatalogItem{ID: 99})
	assert.Equal(t, int32(1), notifications.Load())
}

func TestFeed_StaleFirstPageIsDiscarded(t *testing.T) {
	repo := newFakeRepo()
	repo.byGenre[28] = domain.CatalogPage{Page: 1, TotalPages: 9, Items: items(100, 101)}
	repo.byGenre[18] = domain.CatalogPage{Page: 1, TotalPages: 2, Items: items(200)}
	gate := make(chan struct{})
	repo.gates[28] = gate
	c := newTestFeed(t, repo, nil, 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = c.SetSelectedGenre(ctx, action)
	}()
	require.Eventually(t, func() bool { return len(repo.callLog()) == 1 }, time.Second, time.Millisecond)

	require.NoError(t, c.SetSelectedGenre(ctx, domain.Genre{ID: 18, Name: "Drama"}))
	close(gate)
	wg.Wait()

	s := c.State()
	assert.Equal(t, []int{200}, itemIDs(s.Items))
	assert.Equal(t, 2, s.TotalPages)
	assert.Equal(t, 18, s.SelectedGenre.ID)
	assert.Equal(t, FeedLoaded, s.Status)
}

func TestFeed_FetchInitialResetsFilters(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage(1, 1, 1)
	c := newTestFeed(t, repo, nil, 0)
	ctx := context.Background()
	require.NoError(t, c.SetSelectedGenre(ctx, action))

	require.NoError(t, c.FetchInitial(ctx))

	s := c.State()
	assert.True(t, s.SelectedGenre.IsAll())
	assert.Empty(t, s.SearchQuery)
	assert.Equal(t, repoCall{method: "discover", page: 1}, repo.lastCall())
}

func TestFeed_LoadGenres(t *testing.T) {
	t.Run("prepends all genres after retrying", func(t *testing.T) {
		repo := newFakeRepo()
		repo.genres = []domain.Genre{action}
		repo.genreErrs = 2
		c := newTestFeed(t, repo, nil, 0)

		require.NoError(t, c.LoadGenres(context.Background()))
		assert.Equal(t, []domain.Genre{domain.AllGenres, action}, c.State().Genres)
		assert.Len(t, repo.callLog(), 3)
	})

	t.Run("keeps existing sentinel", func(t *testing.T) {
		repo := newFakeRepo()
		repo.genres = []domain.Genre{domain.AllGenres, action}
		c := newTestFeed(t, repo, nil, 0)

		require.NoError(t, c.LoadGenres(context.Background()))
		assert.Equal(t, []domain.Genre{domain.AllGenres, action}, c.State().Genres)
	})

	t.Run("failure keeps only all genres", func(t *testing.T) {
		repo := newFakeRepo()
		repo.genreErrs = 10
		c := newTestFeed(t, repo, nil, 0)

		err := c.LoadGenres(context.Background())
		assert.ErrorIs(t, err, domain.ErrRequestFailed)
		assert.Equal(t, []domain.Genre{domain.AllGenres}, c.State().Genres)
	})
}

func TestFeed_ListenersSeeLoadingTransition(t *testing.T) {
	repo := newFakeRepo()
	repo.setPage(1, 1, 1)
	c := newTestFeed(t, repo, nil, 0)

	var statuses []FeedStatus
	c.Subscribe(func(s FeedState) { statuses = append(statuses, s.Status) })

	require.NoError(t, c.FetchFirstPage(context.Background(), false))
	assert.Equal(t, []FeedStatus{FeedLoadingFirstPage, FeedLoaded}, statuses)
}
