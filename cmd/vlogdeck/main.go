package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vlogdeck/vlogdeck/internal/api"
	"github.com/vlogdeck/vlogdeck/internal/cache"
	"github.com/vlogdeck/vlogdeck/internal/config"
	"github.com/vlogdeck/vlogdeck/internal/domain"
	"github.com/vlogdeck/vlogdeck/internal/feed"
	"github.com/vlogdeck/vlogdeck/internal/log"
	"github.com/vlogdeck/vlogdeck/internal/mutate"
	"github.com/vlogdeck/vlogdeck/internal/notify"
	"github.com/vlogdeck/vlogdeck/internal/session"
	"github.com/vlogdeck/vlogdeck/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("vlogdeck %s\n", Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting vlogdeck", "version", Version)

	if !cfg.IsConfigured() {
		if err := runSetupFlow(cfg); err != nil {
			return err
		}
	}

	store, err := cache.NewStore(cfg.Cache.Dir, cfg.Server.URL, logger)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer store.Close()

	sessions := session.NewManager(store, cfg.Server.Token, logger)
	sessions.PersistToken = func(token string) error {
		if token == "" {
			return config.ClearToken()
		}
		return config.SaveToken(token)
	}

	client := api.NewClient(cfg.Server.URL, sessions.Token, logger)

	router := tui.NewRouter(domain.RouteFeed)
	client.SetAuthExpiredHook(func() {
		sessions.Clear()
		origin := router.Current()
		sessions.SetReturnRoute(origin)
		router.Navigate(domain.LoginRoute(origin))
	})

	toasts := notify.NewChannelNotifier()
	feedSvc := feed.NewService(client, store, logger)
	engine := mutate.NewEngine(client, store, sessions, toasts, router, logger)

	if sessions.IsAuthenticated() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := sessions.Bootstrap(ctx, client); err != nil {
			logger.Warn("session bootstrap failed", "error", err)
		}
		cancel()
	}

	app := tui.NewApp(feedSvc, engine, sessions, client, router, toasts, cfg.UI.Theme, logger)

	p := tea.NewProgram(app, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow prompts for the server URL on first run.
func runSetupFlow(cfg *config.Config) error {
	fmt.Println()
	fmt.Println("Welcome to vlogdeck!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("Enter your server URL (e.g., https://vlogs.example.com): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		url := strings.TrimSpace(input)
		if url == "" {
			fmt.Println("Server URL cannot be empty. Please try again.")
			continue
		}
		cfg.Server.URL = url
		break
	}

	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	return nil
}
