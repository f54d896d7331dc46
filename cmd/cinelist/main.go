package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/cinelist/internal/adapter"
	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/favorites"
	"github.com/mmcdole/cinelist/internal/imagecache"
	"github.com/mmcdole/cinelist/internal/mediaserver"
	"github.com/mmcdole/cinelist/internal/service"
	"github.com/mmcdole/cinelist/internal/store"
	"github.com/mmcdole/cinelist/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion, listOnly bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&listOnly, "list", false, "print the first page of popular movies and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("cinelist %s\n", Version)
		return
	}

	if err := run(listOnly); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(listOnly bool) error {
	// Load configuration
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting cinelist", "version", Version)

	interactive := term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))

	// Check if configured
	if !cfg.IsConfigured() {
		if !interactive {
			return fmt.Errorf("%w: set CINELIST_API_TOKEN or api.token in config.yaml", domain.ErrNotConfigured)
		}
		if err := runSetupFlow(cfg, logger); err != nil {
			return err
		}
	}

	// Open favorites storage
	kv, err := store.Open(cfg.Storage.Path, cfg.API.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer kv.Close()
	favs := favorites.NewStore(kv, logger)

	// Create catalog client
	client, err := mediaserver.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create catalog client: %w", err)
	}

	// Create controllers
	feed := service.NewFeedController(client, favs, service.FeedOptions{Debounce: cfg.Feed.Debounce}, logger)
	defer feed.Close()
	favList := service.NewFavoritesList(favs, logger)
	defer favList.Close()

	if listOnly || !interactive {
		return printFeed(feed)
	}

	images, err := imagecache.New(imagecache.NewHTTPFetcher(cfg.Images.Timeout), cfg.Images.CacheSize, logger)
	if err != nil {
		return fmt.Errorf("failed to create image cache: %w", err)
	}
	launcher := adapter.NewLauncher(cfg.Browser.Command, cfg.Browser.Args, cfg.API.WebBaseURL, logger)

	// Create TUI model
	model := tui.NewModel(tui.Deps{
		Feed:           feed,
		Favorites:      favList,
		FavoritesStore: favs,
		Catalog:        client,
		Images:         images,
		Launcher:       launcher,
		ImageBaseURL:   cfg.API.ImageBaseURL,
		Logger:         logger,
	})

	// Run the TUI
	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// printFeed writes the first feed page to stdout
func printFeed(feed *service.FeedController) error {
	if err := feed.FetchInitial(context.Background()); err != nil {
		return errors.New(feed.State().ErrorMessage)
	}
	return tui.WritePlainList(os.Stdout, feed.State().Items)
}

// runSetupFlow prompts for an API token and saves it
func runSetupFlow(cfg *adapter.Config, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to cinelist!")

	token, err := mediaserver.NewTokenFlow(cfg.API, logger).Run(context.Background())
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	cfg.API.Token = token
	if err := adapter.SaveToken(token); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	return nil
}
