package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// Launcher opens a movie's web page in a browser
type Launcher struct {
	command    string   // configured browser command, empty for system default
	args       []string // additional arguments for the browser
	webBaseURL string   // movie page prefix, the movie id is appended
	logger     *slog.Logger
}

// NewLauncher creates a new Launcher
func NewLauncher(command string, args []string, webBaseURL string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:    command,
		args:       args,
		webBaseURL: webBaseURL,
		logger:     logger,
	}
}

// MovieURL returns the web page for a movie id
func (l *Launcher) MovieURL(id int) string {
	base := l.webBaseURL
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + strconv.Itoa(id)
}

// OpenMovie opens the web page of a movie
func (l *Launcher) OpenMovie(id int) error {
	if l.webBaseURL == "" {
		return fmt.Errorf("no web base url configured")
	}
	return l.Open(l.MovieURL(id))
}

// Open opens url in the configured browser or the system default
func (l *Launcher) Open(url string) error {
	name, args := l.commandFor(url, runtime.GOOS)
	if l.command != "" {
		if _, err := exec.LookPath(name); err != nil {
			return fmt.Errorf("browser %q not found: %w", name, err)
		}
	}
	l.logger.Info("opening url", "command", name, "args", args)
	return exec.Command(name, args...).Start() // Start async, don't wait
}

// commandFor resolves the command line for url on goos
func (l *Launcher) commandFor(url, goos string) (string, []string) {
	if l.command != "" {
		args := append([]string{}, l.args...)
		return l.command, append(args, url)
	}

	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", "", url}
	default:
		// Linux and other Unix-like systems
		return "xdg-open", []string{url}
	}
}
