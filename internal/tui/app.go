package tui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/cinelist/internal/adapter"
	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/imagecache"
	"github.com/mmcdole/cinelist/internal/service"
	"github.com/mmcdole/cinelist/internal/tui/components"
	"github.com/mmcdole/cinelist/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateSearching
	StateDetail
	StateHelp
)

// Tab selects which list is shown
type Tab int

const (
	TabFeed Tab = iota
	TabFavorites
)

// Layout proportions
const (
	ListColumnPercent = 45 // List width while the detail pane is open
	MinColumnWidth    = 20

	// Header (tabs + search) and footer lines
	ChromeHeight = 2

	// Rows from the end of the feed at which the next page is requested
	prefetchThreshold = 3

	statusTimeout = 3 * time.Second
)

// Deps holds everything the model drives
type Deps struct {
	Feed           *service.FeedController
	Favorites      *service.FavoritesList
	FavoritesStore service.FavoritesStore
	Catalog        domain.CatalogRepository
	Images         *imagecache.Cache
	Launcher       *adapter.Launcher
	ImageBaseURL   string
	Logger         *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool
	Tab   Tab

	deps     Deps
	logger   *slog.Logger
	observer *ChannelObserver

	// Detail view
	detail      *service.DetailController
	detailUnsub func()

	// UI Components
	FeedList    *components.MovieList
	FavList     *components.MovieList
	Inspector   components.Inspector
	GenrePicker components.GenrePicker
	SearchInput textinput.Model
	Spinner     spinner.Model
	Help        help.Model

	// Latest controller snapshots
	feedState service.FeedState
	favState  service.FavoritesListState

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg   string
	StatusIsErr bool
}

// NewModel creates a new application model and subscribes it to the controllers
func NewModel(deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	observer := NewChannelObserver()
	deps.Feed.Subscribe(func(service.FeedState) { observer.Notify() })
	deps.Favorites.Subscribe(func(service.FavoritesListState) { observer.Notify() })

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search movies"
	search.CharLimit = 100
	search.PromptStyle = styles.FilterPromptStyle
	search.TextStyle = styles.FilterStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	h := help.New()
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpDescStyle
	h.Styles.FullKey = styles.HelpKeyStyle
	h.Styles.FullDesc = styles.HelpDescStyle

	m := Model{
		State:       StateBrowsing,
		Tab:         TabFeed,
		deps:        deps,
		logger:      logger,
		observer:    observer,
		FeedList:    components.NewMovieList("Discover"),
		FavList:     components.NewMovieList("Favorites"),
		Inspector:   components.NewInspector(),
		GenrePicker: components.NewGenrePicker(),
		SearchInput: search,
		Spinner:     sp,
		Help:        h,
	}
	m.FeedList.SetFocused(true)
	m.syncFromControllers()
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		FetchInitialCmd(m.deps.Feed),
		LoadGenresCmd(m.deps.Feed),
		m.observer.WaitCmd(),
		m.Spinner.Tick,
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case StateChangedMsg:
		m.syncFromControllers()
		return m, tea.Batch(m.observer.WaitCmd(), m.maybeFetchNext())

	case FetchDoneMsg:
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.logger.Debug("feed fetch finished with error", "error", msg.Err)
		}
		return m, m.maybeFetchNext()

	case GenresLoadedMsg:
		if msg.Err != nil {
			return m, m.setStatus("Could not load genres: "+domain.UserMessage(msg.Err), true)
		}
		return m, nil

	case DetailRefreshedMsg:
		if m.detail == nil || m.detail.Item().ID != msg.ID {
			return m, nil
		}
		m.syncDetail()
		if msg.Err == nil {
			return m, m.loadPoster()
		}
		return m, nil

	case PosterLoadedMsg:
		if m.detail == nil || msg.URL != m.detail.Item().PosterURL(m.deps.ImageBaseURL) {
			return m, nil
		}
		if msg.Err != nil {
			m.logger.Debug("poster unavailable", "url", msg.URL, "error", msg.Err)
			return m, nil
		}
		m.Inspector.SetPoster(msg.Image)
		return m, nil

	case BrowserOpenedMsg:
		return m, m.setStatus(fmt.Sprintf("Opened %s in browser", msg.Item.Title), false)

	case StatusMsg:
		return m, m.setStatus(msg.Message, msg.IsError)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil

	case ErrMsg:
		m.logger.Error("tui error", "error", msg.Err, "context", msg.Context)
		return m, m.setStatus(domain.UserMessage(msg.Err), true)
	}

	return m, nil
}

// syncFromControllers re-reads every controller snapshot into the components
func (m *Model) syncFromControllers() {
	m.feedState = m.deps.Feed.State()
	m.FeedList.SetItems(m.feedState.Items)
	m.FeedList.SetTitle(feedTitle(m.feedState))
	m.FeedList.SetEmptyMessage(feedEmptyMessage(m.feedState))
	m.FeedList.SetFooter(feedFooter(m.feedState))
	m.Inspector.SetGenres(m.feedState.Genres)

	m.favState = m.deps.Favorites.State()
	m.FavList.SetItems(m.favState.Items)
	m.FavList.SetTitle(fmt.Sprintf("Favorites (%d)", m.favState.Total))
	m.FavList.SetEmptyMessage(m.deps.Favorites.EmptyMessage())

	m.syncDetail()
}

func (m *Model) syncDetail() {
	if m.detail == nil {
		return
	}
	ds := m.detail.State()
	m.Inspector.SetItem(ds.Item, ds.IsFavorite)
	m.Inspector.SetStatus(ds.IsLoading, ds.ErrorMessage)
}

// maybeFetchNext requests the next feed page when the cursor nears the end
func (m Model) maybeFetchNext() tea.Cmd {
	if m.Tab != TabFeed || m.feedState.Status != service.FeedLoaded || !m.feedState.HasMore() {
		return nil
	}
	// A failed page waits for an explicit retry
	if m.feedState.ErrorMessage != "" {
		return nil
	}
	if !m.FeedList.AtEnd(prefetchThreshold) {
		return nil
	}
	return FetchNextPageCmd(m.deps.Feed)
}

func (m *Model) openDetail(item domain.CatalogItem) tea.Cmd {
	m.closeDetail()

	m.detail = service.NewDetailController(item, m.deps.FavoritesStore, m.deps.Catalog, m.logger)
	observer := m.observer
	m.detailUnsub = m.detail.Subscribe(func(service.DetailState) { observer.Notify() })
	m.State = StateDetail
	m.syncDetail()
	m.updateLayout()

	return tea.Batch(RefreshDetailCmd(m.detail), m.loadPoster())
}

func (m *Model) closeDetail() {
	if m.detail == nil {
		return
	}
	if m.detailUnsub != nil {
		m.detailUnsub()
	}
	m.detail.Close()
	m.detail = nil
	m.detailUnsub = nil
	m.Inspector.Clear()
	if m.State == StateDetail {
		m.State = StateBrowsing
	}
	m.updateLayout()
}

func (m Model) loadPoster() tea.Cmd {
	if m.detail == nil {
		return nil
	}
	url := m.detail.Item().PosterURL(m.deps.ImageBaseURL)
	if img, ok := m.peekPoster(url); ok {
		return func() tea.Msg { return PosterLoadedMsg{URL: url, Image: img} }
	}
	return LoadPosterCmd(m.deps.Images, url)
}

func (m Model) peekPoster(url string) (image.Image, bool) {
	if m.deps.Images == nil || url == "" {
		return nil, false
	}
	return m.deps.Images.Peek(url)
}

func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.StatusMsg = msg
	m.StatusIsErr = isErr
	return ClearStatusCmd(statusTimeout)
}

// activeList returns the list for the current tab
func (m Model) activeList() *components.MovieList {
	if m.Tab == TabFavorites {
		return m.FavList
	}
	return m.FeedList
}

// updateLayout sizes the components for the current window and state
func (m *Model) updateLayout() {
	if !m.Ready {
		return
	}
	contentHeight := max(m.Height-ChromeHeight, 3)

	listWidth := m.Width
	if m.detail != nil {
		listWidth = max(m.Width*ListColumnPercent/100, MinColumnWidth)
		m.Inspector.SetSize(m.Width-listWidth, contentHeight)
	}
	m.FeedList.SetSize(listWidth, contentHeight)
	m.FavList.SetSize(listWidth, contentHeight)
	m.SearchInput.Width = max(m.Width/3, 10)
	m.Help.Width = m.Width
}

func feedTitle(s service.FeedState) string {
	if s.SearchQuery != "" {
		return fmt.Sprintf("Search: %q", s.SearchQuery)
	}
	if !s.SelectedGenre.IsAll() {
		return "Discover · " + s.SelectedGenre.Name
	}
	return "Discover"
}

func feedEmptyMessage(s service.FeedState) string {
	switch s.Status {
	case service.FeedIdle, service.FeedLoadingFirstPage:
		return "Loading..."
	case service.FeedError:
		return s.ErrorMessage + "  (r to retry)"
	}
	if s.SearchQuery != "" {
		return "No movies match your search."
	}
	return "No movies"
}

func feedFooter(s service.FeedState) string {
	switch {
	case s.Status == service.FeedLoadingNextPage:
		return styles.DimStyle.Render("Loading more...")
	case s.ErrorMessage != "" && s.Status != service.FeedError:
		return styles.ErrorStyle.Render(s.ErrorMessage)
	case len(s.Items) > 0:
		return styles.DimStyle.Render(fmt.Sprintf("page %d of %d", s.CurrentPage, s.TotalPages))
	}
	return ""
}
