package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/tui/styles"
)

// Layout constants for list rendering
const (
	BorderWidth          = 2
	BorderHeight         = 2
	ScrollIndicatorLines = 2
)

// MovieList is a scrollable list of catalog items.
// Items are replaced wholesale from controller snapshots; the cursor is kept
// on the same movie id when possible.
type MovieList struct {
	title      string
	items      []domain.CatalogItem
	cursor     int
	offset     int
	width      int
	height     int
	maxVisible int
	focused    bool
	emptyMsg   string
	footer     string
}

// NewMovieList creates a new list
func NewMovieList(title string) *MovieList {
	return &MovieList{title: title, emptyMsg: "No movies"}
}

// SetItems replaces the list contents, keeping the selection on the same id
func (l *MovieList) SetItems(items []domain.CatalogItem) {
	selectedID := -1
	if item, ok := l.SelectedItem(); ok {
		selectedID = item.ID
	}

	l.items = items
	l.cursor = 0
	for i, item := range items {
		if item.ID == selectedID {
			l.cursor = i
			break
		}
	}
	l.clamp()
}

// SetTitle sets the list title
func (l *MovieList) SetTitle(title string) {
	l.title = title
}

// SetEmptyMessage sets the placeholder shown when there are no items
func (l *MovieList) SetEmptyMessage(msg string) {
	l.emptyMsg = msg
}

// SetFooter sets an extra status line rendered under the items
func (l *MovieList) SetFooter(footer string) {
	l.footer = footer
}

// SetSize updates the component dimensions
func (l *MovieList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.maxVisible = height - BorderHeight - ScrollIndicatorLines - 2 // title + footer
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
	l.clamp()
}

// SetFocused sets whether the list has focus
func (l *MovieList) SetFocused(focused bool) {
	l.focused = focused
}

// Len returns the number of items
func (l *MovieList) Len() int {
	return len(l.items)
}

// SelectedIndex returns the cursor position
func (l *MovieList) SelectedIndex() int {
	return l.cursor
}

// SelectedItem returns the item under the cursor
func (l *MovieList) SelectedItem() (domain.CatalogItem, bool) {
	if l.cursor < 0 || l.cursor >= len(l.items) {
		return domain.CatalogItem{}, false
	}
	return l.items[l.cursor], true
}

// AtEnd reports whether the cursor is within threshold rows of the last item
func (l *MovieList) AtEnd(threshold int) bool {
	return len(l.items) > 0 && l.cursor >= len(l.items)-1-threshold
}

// MoveUp moves the cursor up by n rows
func (l *MovieList) MoveUp(n int) {
	l.cursor -= n
	l.clamp()
}

// MoveDown moves the cursor down by n rows
func (l *MovieList) MoveDown(n int) {
	l.cursor += n
	l.clamp()
}

// Top moves the cursor to the first item
func (l *MovieList) Top() {
	l.cursor = 0
	l.clamp()
}

// Bottom moves the cursor to the last item
func (l *MovieList) Bottom() {
	l.cursor = len(l.items) - 1
	l.clamp()
}

// PageSize returns the number of visible rows
func (l *MovieList) PageSize() int {
	return l.maxVisible
}

func (l *MovieList) clamp() {
	if l.cursor >= len(l.items) {
		l.cursor = len(l.items) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	l.ensureVisible()
}

func (l *MovieList) ensureVisible() {
	if l.maxVisible <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
	if l.offset < 0 {
		l.offset = 0
	}
}

// View renders the list
func (l *MovieList) View() string {
	style := styles.InactiveBorder
	if l.focused {
		style = styles.ActiveBorder
	}
	return style.
		Width(max(l.width-BorderWidth, 1)).
		Height(max(l.height-BorderHeight, 1)).
		Render(l.renderContent())
}

func (l *MovieList) renderContent() string {
	itemWidth := l.width - BorderWidth
	if itemWidth < 10 {
		itemWidth = 10
	}

	titleLine := styles.AccentStyle.Render(styles.Truncate(l.title, itemWidth))
	footer := l.footer
	if footer == "" {
		footer = " "
	}

	if len(l.items) == 0 {
		return titleLine + "\n \n" + styles.DimStyle.Render(l.emptyMsg) + "\n \n" + footer
	}

	end := min(l.offset+l.maxVisible, len(l.items))
	lines := make([]string, 0, end-l.offset)
	for i := l.offset; i < end; i++ {
		lines = append(lines, renderMovieRow(l.items[i], i == l.cursor, itemWidth))
	}

	// Always reserve the indicator lines to prevent layout shifts
	header := " "
	if l.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	more := " "
	if end < len(l.items) {
		more = styles.DimStyle.Render("↓ more")
	}

	return titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + more + "\n" + footer
}

func renderMovieRow(item domain.CatalogItem, selected bool, width int) string {
	favChar := styles.NotFavoriteChar
	favFg := styles.DimGray
	if item.IsFavorite {
		favChar = styles.FavoriteChar
		favFg = styles.Red
	}

	rating := fmt.Sprintf("%4.1f", item.VoteAverage)
	ratingFg := styles.Gold

	title := item.Title
	if year := item.Year(); year != "" {
		title = fmt.Sprintf("%s (%s)", item.Title, year)
	}

	// Available space: width - indicator(1) - spaces(2) - rating(4) - margins(2)
	availableForTitle := width - lipgloss.Width(rating) - 5
	if availableForTitle < 5 {
		availableForTitle = 5
	}
	title = styles.Pad(styles.Truncate(title, availableForTitle), availableForTitle)

	parts := []styles.RowPart{
		{Text: favChar, Foreground: &favFg},
		{Text: " " + title + " ", Foreground: nil},
		{Text: rating, Foreground: &ratingFg},
	}
	return styles.RenderListRow(parts, selected, width)
}
