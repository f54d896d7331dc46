package components

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/tui/styles"
)

// Layout constants for inspector
const (
	InspectorBorderHeight     = 2
	InspectorScrollIndicators = 2
	posterMaxWidth            = 24
)

// Inspector displays the detail view of one movie
type Inspector struct {
	item       domain.CatalogItem
	hasItem    bool
	isFavorite bool
	loading    bool
	errMsg     string
	poster     image.Image
	genreNames map[int]string
	width      int
	height     int
	offset     int // scroll offset
	maxVisible int // max visible body lines
}

// NewInspector creates a new inspector component
func NewInspector() Inspector {
	return Inspector{}
}

// SetItem sets the movie to display, resetting poster and scroll when it changes
func (i *Inspector) SetItem(item domain.CatalogItem, isFavorite bool) {
	if !i.hasItem || i.item.ID != item.ID {
		i.poster = nil
		i.offset = 0
	}
	i.item = item
	i.hasItem = true
	i.isFavorite = isFavorite
}

// Clear removes the displayed movie
func (i *Inspector) Clear() {
	*i = Inspector{genreNames: i.genreNames, width: i.width, height: i.height, maxVisible: i.maxVisible}
}

// SetStatus sets the refresh status line
func (i *Inspector) SetStatus(loading bool, errMsg string) {
	i.loading = loading
	i.errMsg = errMsg
}

// SetPoster sets the decoded poster image
func (i *Inspector) SetPoster(img image.Image) {
	i.poster = img
}

// SetGenres sets the id to name table used for genre labels
func (i *Inspector) SetGenres(genres []domain.Genre) {
	i.genreNames = make(map[int]string, len(genres))
	for _, g := range genres {
		if !g.IsAll() {
			i.genreNames[g.ID] = g.Name
		}
	}
}

// SetSize updates the component dimensions
func (i *Inspector) SetSize(width, height int) {
	i.width = width
	i.height = height
	i.maxVisible = height - InspectorBorderHeight - InspectorScrollIndicators - 2 // title + blank line
	if i.maxVisible < 1 {
		i.maxVisible = 1
	}
}

// HasItem returns true if there is an item to display
func (i Inspector) HasItem() bool {
	return i.hasItem
}

// Item returns the displayed movie
func (i Inspector) Item() domain.CatalogItem {
	return i.item
}

// ScrollUp scrolls the body up
func (i *Inspector) ScrollUp(n int) {
	i.offset = max(i.offset-n, 0)
}

// ScrollDown scrolls the body down; View clamps the offset
func (i *Inspector) ScrollDown(n int) {
	i.offset += n
}

// View renders the component
func (i Inspector) View() string {
	style := styles.ActiveBorder

	// Border takes 2 chars (1 each side), leave 1 char safety margin
	contentWidth := max(i.width-3, 10)

	titleLine := styles.AccentStyle.Render(styles.Truncate("Details", contentWidth))

	if !i.hasItem {
		return i.frame(style, titleLine+"\n\n"+styles.DimStyle.Render("No movie selected"))
	}

	bodyLines := splitLines(i.renderBody(contentWidth))

	maxOffset := max(len(bodyLines)-i.maxVisible, 0)
	offset := min(i.offset, maxOffset)
	end := min(offset+i.maxVisible, len(bodyLines))

	up := " "
	if offset > 0 {
		up = styles.DimStyle.Render("↑ more")
	}
	down := " "
	if end < len(bodyLines) {
		down = styles.DimStyle.Render("↓ more")
	}

	parts := []string{titleLine, "", up}
	parts = append(parts, bodyLines[offset:end]...)
	for j := end - offset; j < i.maxVisible; j++ {
		parts = append(parts, "")
	}
	parts = append(parts, down)

	return i.frame(style, strings.Join(parts, "\n"))
}

func (i Inspector) frame(style lipgloss.Style, content string) string {
	// Subtract frame (border) size so total rendered size equals i.width x i.height
	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(i.width-frameW, 1)).
		Height(max(i.height-frameH, 1)).
		Render(content)
}

func (i Inspector) renderBody(width int) string {
	item := i.item
	var lines []string

	title := item.Title
	if title == "" {
		title = domain.UntitledPlaceholder
	}
	lines = append(lines, styles.TitleStyle.Render(wordWrap(title, width)))

	var meta []string
	if year := item.Year(); year != "" {
		meta = append(meta, year)
	}
	meta = append(meta, styles.RatingStyle.Render(fmt.Sprintf("★ %.1f", item.VoteAverage)))
	meta = append(meta, styles.RenderFavorite(i.isFavorite))
	lines = append(lines, strings.Join(meta, "  "))

	if item.HasReleaseDate() {
		lines = append(lines, styles.SubtitleStyle.Render("Released "+item.ReleaseDate.Format("January 2, 2006")))
	}
	if genres := i.genreLabel(); genres != "" {
		lines = append(lines, styles.SubtitleStyle.Render(wordWrap(genres, width)))
	}

	switch {
	case i.loading:
		lines = append(lines, styles.DimStyle.Render("Loading details..."))
	case i.errMsg != "":
		lines = append(lines, styles.ErrorStyle.Render(wordWrap(i.errMsg, width)))
	}

	if i.poster != nil {
		lines = append(lines, "", RenderPoster(i.poster, min(width, posterMaxWidth)))
	}

	overview := item.Overview
	if overview == "" {
		overview = domain.OverviewPlaceholder
	}
	lines = append(lines, "", styles.SubtitleStyle.Render(wordWrap(overview, width)))

	return strings.Join(lines, "\n")
}

func (i Inspector) genreLabel() string {
	var names []string
	for _, id := range i.item.GenreIDs {
		if name, ok := i.genreNames[id]; ok {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// wordWrap wraps text to the specified width
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wordLen := len([]rune(word))

		if lineLen+wordLen+1 > width && lineLen > 0 {
			result.WriteString("\n")
			lineLen = 0
		}

		if i > 0 && lineLen > 0 {
			result.WriteString(" ")
			lineLen++
		}

		result.WriteString(word)
		lineLen += wordLen
	}

	return result.String()
}
