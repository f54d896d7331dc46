package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/cinelist/internal/adapter"
	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/imagecache"
	"github.com/mmcdole/cinelist/internal/service"
)

const fetchTimeout = 30 * time.Second

// Command factories for async operations

// FetchInitialCmd resets filters and loads the first feed page
func FetchInitialCmd(feed *service.FeedController) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		return FetchDoneMsg{Err: feed.FetchInitial(ctx)}
	}
}

// FetchFirstPageCmd reloads the first page of the current mode
func FetchFirstPageCmd(feed *service.FeedController) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		return FetchDoneMsg{Err: feed.FetchFirstPage(ctx, false)}
	}
}

// FetchNextPageCmd appends the next feed page
func FetchNextPageCmd(feed *service.FeedController) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		return FetchDoneMsg{Err: feed.FetchNextPage(ctx)}
	}
}

// SelectGenreCmd switches the feed's genre filter
func SelectGenreCmd(feed *service.FeedController, genre domain.Genre) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		return FetchDoneMsg{Err: feed.SetSelectedGenre(ctx, genre)}
	}
}

// LoadGenresCmd loads the genre catalogue
func LoadGenresCmd(feed *service.FeedController) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		return GenresLoadedMsg{Err: feed.LoadGenres(ctx)}
	}
}

// RefreshDetailCmd fetches full details for the open detail view
func RefreshDetailCmd(detail *service.DetailController) tea.Cmd {
	id := detail.Item().ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		return DetailRefreshedMsg{ID: id, Err: detail.Refresh(ctx)}
	}
}

// LoadPosterCmd fetches and decodes a poster through the image cache
func LoadPosterCmd(cache *imagecache.Cache, url string) tea.Cmd {
	if cache == nil || url == "" {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		img, err := cache.Fetch(ctx, url)
		return PosterLoadedMsg{URL: url, Image: img, Err: err}
	}
}

// OpenInBrowserCmd opens the movie's web page
func OpenInBrowserCmd(launcher *adapter.Launcher, item domain.CatalogItem) tea.Cmd {
	return func() tea.Msg {
		if err := launcher.OpenMovie(item.ID); err != nil {
			return ErrMsg{Err: err, Context: "opening browser"}
		}
		return BrowserOpenedMsg{Item: item}
	}
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
