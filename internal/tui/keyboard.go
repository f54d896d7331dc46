package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/service"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle state-specific keys
	switch m.State {
	case StateHelp:
		if key.Matches(msg, Keys.Back, Keys.Help, Keys.Quit) {
			m.State = StateBrowsing
			if m.detail != nil {
				m.State = StateDetail
			}
		}
		return m, nil

	case StateSearching:
		return m.handleSearchKey(msg)
	}

	// Route to the genre picker if open
	if handled, selection := m.GenrePicker.HandleKey(msg); handled {
		if selection != nil {
			return m, SelectGenreCmd(m.deps.Feed, *selection)
		}
		return m, nil
	}

	// Global keys
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit

	case key.Matches(msg, Keys.Quit):
		if m.State == StateDetail {
			m.closeDetail()
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.NextTab):
		m.switchTab()
		return m, m.maybeFetchNext()

	case key.Matches(msg, Keys.Search):
		m.closeDetail()
		m.State = StateSearching
		m.SearchInput.SetValue(m.searchText())
		m.SearchInput.CursorEnd()
		return m, m.SearchInput.Focus()

	case key.Matches(msg, Keys.Back):
		if m.State == StateDetail {
			m.closeDetail()
		}
		return m, nil

	case key.Matches(msg, Keys.Genres):
		if m.Tab == TabFeed {
			m.GenrePicker.Show(m.feedState.Genres, m.feedState.SelectedGenre)
		}
		return m, nil

	case key.Matches(msg, Keys.NextGenre):
		return m, m.cycleGenre(1)

	case key.Matches(msg, Keys.PrevGenre):
		return m, m.cycleGenre(-1)

	case key.Matches(msg, Keys.Favorite):
		m.toggleFavorite()
		return m, nil

	case key.Matches(msg, Keys.Open):
		if item, ok := m.currentItem(); ok && m.deps.Launcher != nil {
			return m, OpenInBrowserCmd(m.deps.Launcher, item)
		}
		return m, nil

	case key.Matches(msg, Keys.Retry):
		return m, m.retry()

	case key.Matches(msg, Keys.Enter):
		if m.State == StateDetail {
			return m, nil
		}
		if item, ok := m.activeList().SelectedItem(); ok {
			return m, m.openDetail(item)
		}
		return m, nil
	}

	return m.handleNavigation(msg)
}

// handleSearchKey edits the search box; every edit is forwarded to the controller
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.SearchInput.Blur()
		m.State = StateBrowsing
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	before := m.SearchInput.Value()
	m.SearchInput, cmd = m.SearchInput.Update(msg)
	if text := m.SearchInput.Value(); text != before {
		if m.Tab == TabFavorites {
			m.deps.Favorites.SetSearchText(text)
		} else {
			m.deps.Feed.SetSearchText(text)
		}
	}
	return m, cmd
}

// handleNavigation moves the cursor in the list or scrolls the detail pane
func (m Model) handleNavigation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := m.activeList()

	// Page keys scroll the detail pane while it is open
	if m.State == StateDetail {
		switch {
		case key.Matches(msg, Keys.PageUp):
			m.Inspector.ScrollUp(m.Height / 2)
			return m, nil
		case key.Matches(msg, Keys.PageDown):
			m.Inspector.ScrollDown(m.Height / 2)
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, Keys.Up):
		list.MoveUp(1)
	case key.Matches(msg, Keys.Down):
		list.MoveDown(1)
	case key.Matches(msg, Keys.PageUp):
		list.MoveUp(list.PageSize())
	case key.Matches(msg, Keys.PageDown):
		list.MoveDown(list.PageSize())
	case key.Matches(msg, Keys.Home):
		list.Top()
	case key.Matches(msg, Keys.End):
		list.Bottom()
	default:
		return m, nil
	}

	// Follow the cursor while the detail pane is open
	if m.State == StateDetail {
		if item, ok := list.SelectedItem(); ok && item.ID != m.detail.Item().ID {
			return m, tea.Batch(m.openDetail(item), m.maybeFetchNext())
		}
	}
	return m, m.maybeFetchNext()
}

func (m *Model) switchTab() {
	m.closeDetail()
	if m.Tab == TabFeed {
		m.Tab = TabFavorites
	} else {
		m.Tab = TabFeed
	}
	m.FeedList.SetFocused(m.Tab == TabFeed)
	m.FavList.SetFocused(m.Tab == TabFavorites)
}

func (m Model) searchText() string {
	if m.Tab == TabFavorites {
		return m.favState.SearchText
	}
	return m.feedState.SearchText
}

// currentItem returns the movie in the detail pane, or the list selection
func (m Model) currentItem() (domain.CatalogItem, bool) {
	if m.detail != nil {
		return m.detail.Item(), true
	}
	return m.activeList().SelectedItem()
}

func (m *Model) toggleFavorite() {
	if m.detail != nil {
		m.detail.ToggleFavorite()
		return
	}
	item, ok := m.activeList().SelectedItem()
	if !ok {
		return
	}
	if m.Tab == TabFavorites {
		m.deps.Favorites.ToggleFavorite(item)
	} else {
		m.deps.Feed.ToggleFavorite(item)
	}
}

func (m Model) cycleGenre(step int) tea.Cmd {
	genres := m.feedState.Genres
	if m.Tab != TabFeed || len(genres) < 2 {
		return nil
	}
	idx := 0
	for i, g := range genres {
		if g.ID == m.feedState.SelectedGenre.ID {
			idx = i
			break
		}
	}
	idx = (idx + step + len(genres)) % len(genres)
	return SelectGenreCmd(m.deps.Feed, genres[idx])
}

func (m Model) retry() tea.Cmd {
	if m.Tab != TabFeed {
		return nil
	}
	var cmds []tea.Cmd
	if len(m.feedState.Genres) <= 1 {
		cmds = append(cmds, LoadGenresCmd(m.deps.Feed))
	}
	if m.feedState.Status == service.FeedLoaded && m.feedState.ErrorMessage != "" {
		cmds = append(cmds, FetchNextPageCmd(m.deps.Feed))
	} else {
		cmds = append(cmds, FetchFirstPageCmd(m.deps.Feed))
	}
	return tea.Batch(cmds...)
}
