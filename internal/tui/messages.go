package tui

import (
	"image"

	"github.com/mmcdole/cinelist/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// StateChangedMsg signals that a controller published new state
type StateChangedMsg struct{}

// FetchDoneMsg signals that a feed fetch finished. Feed state itself arrives
// through StateChangedMsg; Err is only used for the status line.
type FetchDoneMsg struct {
	Err error
}

// GenresLoadedMsg signals that the genre catalogue request finished
type GenresLoadedMsg struct {
	Err error
}

// PosterLoadedMsg carries a decoded poster for a detail view
type PosterLoadedMsg struct {
	URL   string
	Image image.Image
	Err   error
}

// DetailRefreshedMsg signals that full details were fetched
type DetailRefreshedMsg struct {
	ID  int
	Err error
}

// BrowserOpenedMsg signals that a movie page was opened
type BrowserOpenedMsg struct {
	Item domain.CatalogItem
}

// StatusMsg represents a status message to display
type StatusMsg struct {
	Message string
	IsError bool
}

// ClearStatusMsg signals to clear the status message
type ClearStatusMsg struct{}
