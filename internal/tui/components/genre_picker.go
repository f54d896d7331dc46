package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/tui/styles"
)

const genrePickerWidth = 28

// GenrePicker is a popup for choosing the feed's genre, with type-to-filter
type GenrePicker struct {
	visible     bool
	genres      []domain.Genre
	filteredIdx []int // nil when no filter is applied
	cursor      int
	activeID    int
	input       textinput.Model
}

// NewGenrePicker creates a new genre picker
func NewGenrePicker() GenrePicker {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter"
	ti.CharLimit = 32
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle
	return GenrePicker{input: ti}
}

// Show displays the picker with the cursor on the active genre
func (p *GenrePicker) Show(genres []domain.Genre, active domain.Genre) {
	p.visible = true
	p.genres = genres
	p.activeID = active.ID
	p.filteredIdx = nil
	p.input.SetValue("")
	p.input.Focus()
	p.cursor = 0
	for i, g := range genres {
		if g.ID == active.ID {
			p.cursor = i
			break
		}
	}
}

// Hide dismisses the picker
func (p *GenrePicker) Hide() {
	p.visible = false
	p.input.Blur()
}

// IsVisible returns whether the picker is shown
func (p GenrePicker) IsVisible() bool {
	return p.visible
}

// HandleKey processes a key press, returns (handled, selection).
// If selection is non-nil, the user confirmed a choice.
func (p *GenrePicker) HandleKey(msg tea.KeyMsg) (handled bool, selection *domain.Genre) {
	if !p.visible {
		return false, nil
	}

	switch msg.String() {
	case "down", "ctrl+n":
		if p.cursor < p.count()-1 {
			p.cursor++
		}
		return true, nil
	case "up", "ctrl+p":
		if p.cursor > 0 {
			p.cursor--
		}
		return true, nil
	case "enter":
		if p.count() == 0 {
			return true, nil
		}
		chosen := p.genres[p.mapIndex(p.cursor)]
		p.Hide()
		return true, &chosen
	case "esc":
		p.Hide()
		return true, nil
	}

	// Everything else edits the filter
	p.input, _ = p.input.Update(msg)
	p.applyFilter()
	return true, nil
}

func (p *GenrePicker) applyFilter() {
	query := strings.TrimSpace(p.input.Value())
	if query == "" {
		p.filteredIdx = nil
		return
	}

	names := make([]string, len(p.genres))
	for i, g := range p.genres {
		names[i] = strings.ToLower(g.Name)
	}
	matches := fuzzy.Find(strings.ToLower(query), names)

	p.filteredIdx = make([]int, len(matches))
	for i, match := range matches {
		p.filteredIdx[i] = match.Index
	}
	p.cursor = 0
}

func (p GenrePicker) count() int {
	if p.filteredIdx != nil {
		return len(p.filteredIdx)
	}
	return len(p.genres)
}

func (p GenrePicker) mapIndex(i int) int {
	if p.filteredIdx != nil {
		return p.filteredIdx[i]
	}
	return i
}

// View renders the picker
func (p GenrePicker) View() string {
	if !p.visible {
		return ""
	}

	var lines []string
	for i := 0; i < p.count(); i++ {
		g := p.genres[p.mapIndex(i)]
		prefix := "  "
		if g.ID == p.activeID {
			prefix = "✓ "
		}
		text := styles.Pad(prefix+g.Name, genrePickerWidth)

		switch {
		case i == p.cursor:
			lines = append(lines, lipgloss.NewStyle().
				Foreground(styles.White).
				Background(styles.SlateLight).
				Render(text))
		case g.ID == p.activeID:
			lines = append(lines, lipgloss.NewStyle().Foreground(styles.Teal).Render(text))
		default:
			lines = append(lines, lipgloss.NewStyle().Foreground(styles.LightGray).Render(text))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, styles.DimStyle.Render(styles.Pad("No matches", genrePickerWidth)))
	}

	return styles.ModalStyle.Render(
		styles.ModalTitleStyle.Render("Genre") + "\n" +
			p.input.View() + "\n" +
			strings.Join(lines, "\n"),
	)
}
