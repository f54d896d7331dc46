package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/cinelist/internal/adapter"
	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/favorites"
	"github.com/mmcdole/cinelist/internal/service"
)

// stubCatalog serves two pages of ten movies for every listing
type stubCatalog struct{}

func (stubCatalog) page(page int) domain.CatalogPage {
	items := make([]domain.CatalogItem, 10)
	for i := range items {
		id := (page-1)*10 + i + 1
		items[i] = domain.CatalogItem{ID: id, Title: fmt.Sprintf("Movie %d", id)}
	}
	return domain.CatalogPage{Page: page, TotalPages: 2, TotalResults: 20, Items: items}
}

func (s stubCatalog) ListPopular(_ context.Context, page int) (domain.CatalogPage, error) {
	return s.page(page), nil
}

func (s stubCatalog) GetDetails(_ context.Context, id int) (domain.CatalogItem, error) {
	return domain.CatalogItem{ID: id, Title: fmt.Sprintf("Movie %d", id), Overview: "details"}, nil
}

func (s stubCatalog) Search(_ context.Context, _ string, page int) (domain.CatalogPage, error) {
	return s.page(page), nil
}

func (stubCatalog) ListGenres(context.Context) ([]domain.Genre, error) {
	return []domain.Genre{{ID: 28, Name: "Action"}, {ID: 18, Name: "Drama"}}, nil
}

func (s stubCatalog) Discover(_ context.Context, _ int, page int) (domain.CatalogPage, error) {
	return s.page(page), nil
}

func newTestModel(t *testing.T) (Model, *favorites.Store) {
	t.Helper()
	logger := adapter.NullLogger()
	catalog := stubCatalog{}
	favs := favorites.NewStore(nil, logger)

	feed := service.NewFeedController(catalog, favs, service.FeedOptions{}, logger)
	list := service.NewFavoritesList(favs, logger)
	t.Cleanup(feed.Close)
	t.Cleanup(list.Close)

	m := NewModel(Deps{
		Feed:           feed,
		Favorites:      list,
		FavoritesStore: favs,
		Catalog:        catalog,
		Logger:         logger,
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	require.NoError(t, feed.FetchInitial(context.Background()))
	m = update(t, m, StateChangedMsg{})
	return m, favs
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_ShowsFirstPage(t *testing.T) {
	m, _ := newTestModel(t)

	assert.Equal(t, 10, m.FeedList.Len())
	assert.Contains(t, m.View(), "Movie 1")
	assert.Contains(t, m.View(), "page 1 of 2")
}

func TestModel_FavoriteToggleReachesBothTabs(t *testing.T) {
	m, favs := newTestModel(t)

	m = update(t, m, keyMsg("f"))
	assert.True(t, favs.IsFavorite(1))

	m = update(t, m, StateChangedMsg{})
	item, ok := m.FeedList.SelectedItem()
	require.True(t, ok)
	assert.True(t, item.IsFavorite)
	assert.Equal(t, 1, m.FavList.Len())

	m = update(t, m, keyMsg("tab"))
	assert.Equal(t, TabFavorites, m.Tab)
	assert.Contains(t, m.View(), "Movie 1")

	// Unfavorite from the favorites tab
	m = update(t, m, keyMsg("f"))
	m = update(t, m, StateChangedMsg{})
	assert.False(t, favs.IsFavorite(1))
	assert.Equal(t, 0, m.FavList.Len())
	assert.Contains(t, m.View(), service.EmptyFavoritesMessage)
}

func TestModel_DetailFollowsFavorites(t *testing.T) {
	m, favs := newTestModel(t)

	m = update(t, m, keyMsg("j"))
	m = update(t, m, keyMsg("enter"))
	require.Equal(t, StateDetail, m.State)
	require.NotNil(t, m.detail)
	assert.Equal(t, 2, m.detail.Item().ID)

	favs.Add(domain.CatalogItem{ID: 2, Title: "Movie 2"})
	m = update(t, m, StateChangedMsg{})
	assert.True(t, m.detail.IsFavorite())

	require.NoError(t, m.detail.Refresh(context.Background()))
	m = update(t, m, DetailRefreshedMsg{ID: 2})
	assert.Contains(t, m.View(), "details")

	m = update(t, m, keyMsg("esc"))
	assert.Equal(t, StateBrowsing, m.State)
	assert.Nil(t, m.detail)
}

func TestModel_ScrollingToEndRequestsNextPage(t *testing.T) {
	m, _ := newTestModel(t)

	next, cmd := m.Update(keyMsg("G"))
	m = next.(Model)
	require.NotNil(t, cmd)

	msg := cmd()
	done, ok := msg.(FetchDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.Err)

	m = update(t, m, StateChangedMsg{})
	assert.Equal(t, 20, m.FeedList.Len())
	assert.False(t, m.feedState.HasMore())
}

func TestModel_SearchEditsForwardToFeed(t *testing.T) {
	m, _ := newTestModel(t)

	m = update(t, m, keyMsg("/"))
	require.Equal(t, StateSearching, m.State)

	m = update(t, m, keyMsg("h"))
	m = update(t, m, keyMsg("i"))
	assert.Equal(t, "hi", m.deps.Feed.State().SearchText)

	m = update(t, m, keyMsg("enter"))
	assert.Equal(t, StateBrowsing, m.State)
}

func TestModel_HelpOverlay(t *testing.T) {
	m, _ := newTestModel(t)

	m = update(t, m, keyMsg("?"))
	assert.Equal(t, StateHelp, m.State)
	assert.True(t, strings.Contains(m.View(), "Keys"))

	m = update(t, m, keyMsg("?"))
	assert.Equal(t, StateBrowsing, m.State)
}

func TestWritePlainList(t *testing.T) {
	var sb strings.Builder
	err := WritePlainList(&sb, []domain.CatalogItem{
		{ID: 603, Title: "The Matrix", VoteAverage: 8.2, ReleaseDate: domain.ParseReleaseDate("1999-03-30"), IsFavorite: true},
		{ID: 7, Title: "Unknown"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "1999")
	assert.Contains(t, lines[0], "The Matrix")
	assert.Contains(t, lines[0], "8.2")
	assert.Contains(t, lines[1], "----")
}
