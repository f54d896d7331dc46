package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/service"
	"github.com/mmcdole/cinelist/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	if m.GenrePicker.IsVisible() {
		return lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.GenrePicker.View())
	}

	list := m.activeList()
	content := list.View()
	if m.detail != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, m.Inspector.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		content,
		m.renderFooter(),
	)
}

// renderHeader renders tabs, the active genre and the search box
func (m Model) renderHeader() string {
	tabs := []string{
		renderTab("Discover", m.Tab == TabFeed),
		renderTab(fmt.Sprintf("Favorites %d", m.favState.Total), m.Tab == TabFavorites),
	}
	left := strings.Join(tabs, " ")

	if m.Tab == TabFeed {
		left += "  " + styles.SubtitleStyle.Render(m.feedState.SelectedGenre.Name)
	}

	var right string
	switch {
	case m.State == StateSearching:
		right = m.SearchInput.View()
	case m.searchText() != "":
		right = styles.FilterPromptStyle.Render("/ ") + styles.FilterStyle.Render(m.searchText())
	}

	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func renderTab(label string, active bool) string {
	if active {
		return styles.ActiveTabStyle.Render(label)
	}
	return styles.InactiveTabStyle.Render(label)
}

// renderFooter renders the status line and key hints
func (m Model) renderFooter() string {
	var left string
	switch {
	case m.feedState.IsLoading || m.feedState.Status == service.FeedLoadingNextPage:
		left = m.Spinner.View() + " " + styles.DimStyle.Render("Loading...")
	case m.StatusMsg != "" && m.StatusIsErr:
		left = styles.ErrorStyle.Render(m.StatusMsg)
	case m.StatusMsg != "":
		left = styles.SuccessStyle.Render(m.StatusMsg)
	}

	right := m.Help.ShortHelpView(Keys.ShortHelp())

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		// Not enough space - keep the status and the help hint
		right = styles.HelpKeyStyle.Render("?") + styles.HelpDescStyle.Render(" help")
		gap = max(m.Width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	body := styles.ModalTitleStyle.Render("Keys") + "\n" +
		m.Help.FullHelpView(Keys.FullHelp()) + "\n\n" +
		styles.DimStyle.Render("Press ? or esc to return...")

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(body))
}

// WritePlainList prints items as aligned plain text, one movie per line
func WritePlainList(w io.Writer, items []domain.CatalogItem) error {
	for _, item := range items {
		fav := " "
		if item.IsFavorite {
			fav = styles.FavoriteChar
		}
		year := item.Year()
		if year == "" {
			year = "----"
		}
		title := styles.Pad(styles.Truncate(item.Title, 50), 50)
		if _, err := fmt.Fprintf(w, "%s %8d  %s  %s  %4.1f\n", fav, item.ID, year, title, item.VoteAverage); err != nil {
			return err
		}
	}
	return nil
}
