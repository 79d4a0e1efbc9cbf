package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/vlogdeck/vlogdeck/internal/api"
	"github.com/vlogdeck/vlogdeck/internal/cache"
	"github.com/vlogdeck/vlogdeck/internal/config"
	"github.com/vlogdeck/vlogdeck/internal/domain"
	"github.com/vlogdeck/vlogdeck/internal/feed"
	"github.com/vlogdeck/vlogdeck/internal/log"
	"github.com/vlogdeck/vlogdeck/internal/mutate"
	"github.com/vlogdeck/vlogdeck/internal/session"
)

const commandTimeout = 30 * time.Second

// commandContext wires the client stack lazily, so commands that fail
// flag parsing never open the cache or read config.
type commandContext struct {
	serverFlag *string

	once sync.Once
	err  error

	cfg      *config.Config
	store    *cache.Store
	sessions *session.Manager
	client   *api.Client
	feedSvc  *feed.Service
	engine   *mutate.Engine
}

func newCommandContext(serverFlag *string) *commandContext {
	return &commandContext{serverFlag: serverFlag}
}

func (c *commandContext) ensure() error {
	c.once.Do(func() {
		cfg, err := config.LoadConfig()
		if err != nil {
			c.err = err
			return
		}
		if c.serverFlag != nil && strings.TrimSpace(*c.serverFlag) != "" {
			cfg.Server.URL = strings.TrimSpace(*c.serverFlag)
		}
		if cfg.Server.URL == "" {
			c.err = fmt.Errorf("no server configured; pass --server or run vlogdeck once")
			return
		}
		c.cfg = cfg

		logger, err := log.SetupLogger(&cfg.Logging)
		if err != nil {
			logger = log.NullLogger()
		}

		store, err := cache.NewStore(cfg.Cache.Dir, cfg.Server.URL, logger)
		if err != nil {
			c.err = fmt.Errorf("failed to open cache: %w", err)
			return
		}
		c.store = store

		c.sessions = session.NewManager(store, cfg.Server.Token, logger)
		c.sessions.PersistToken = func(token string) error {
			if token == "" {
				return config.ClearToken()
			}
			return config.SaveToken(token)
		}

		c.client = api.NewClient(cfg.Server.URL, c.sessions.Token, logger)
		c.client.SetAuthExpiredHook(func() {
			c.sessions.Clear()
		})

		c.feedSvc = feed.NewService(c.client, store, logger)
		c.engine = mutate.NewEngine(c.client, store, c.sessions, &printNotifier{}, cliNavigator{}, logger)
	})
	return c.err
}

func (c *commandContext) close() {
	if c.store != nil {
		c.store.Close()
	}
}

// run executes fn with the stack wired and a bounded context.
func (c *commandContext) run(fn func(ctx context.Context) error) error {
	if err := c.ensure(); err != nil {
		return err
	}
	defer c.close()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return fn(ctx)
}

// printNotifier surfaces mutation outcomes on the terminal.
type printNotifier struct{}

var _ domain.Notifier = (*printNotifier)(nil)

func (printNotifier) Info(msg string)    { fmt.Println(msg) }
func (printNotifier) Success(msg string) { fmt.Println("✓ " + msg) }
func (printNotifier) Error(msg string)   { fmt.Fprintln(os.Stderr, "✗ "+msg) }

// cliNavigator satisfies domain.Navigator for a surface with no routes.
// Auth-required redirects degrade to the notifier's message.
type cliNavigator struct{}

var _ domain.Navigator = cliNavigator{}

func (cliNavigator) Current() string { return domain.RouteFeed }
func (cliNavigator) Navigate(string) {}
