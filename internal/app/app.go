// Package app initializes and holds the long-lived services of the
// navigator, acting as a dependency injection container.
package app

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/webnav/navigator/internal/api"
	archivegcs "github.com/webnav/navigator/internal/archive/gcs"
	archivelocal "github.com/webnav/navigator/internal/archive/local"
	"github.com/webnav/navigator/internal/browser"
	"github.com/webnav/navigator/internal/clock/system"
	"github.com/webnav/navigator/internal/config"
	historymemory "github.com/webnav/navigator/internal/history/memory"
	historypostgres "github.com/webnav/navigator/internal/history/postgres"
	"github.com/webnav/navigator/internal/logging"
	"github.com/webnav/navigator/internal/memory"
	"github.com/webnav/navigator/internal/navigator"
	"github.com/webnav/navigator/internal/provider/duckduckgo"
	"github.com/webnav/navigator/internal/provider/serpapi"
	"github.com/webnav/navigator/internal/provider/serper"
	"github.com/webnav/navigator/internal/provider/tavily"
	pubmemory "github.com/webnav/navigator/internal/publisher/memory"
	pubpubsub "github.com/webnav/navigator/internal/publisher/pubsub"
	"github.com/webnav/navigator/internal/verify"
)

// App holds the wired services for one navigator process.
type App struct {
	Logger     *zap.Logger
	Config     config.Config
	Controller *navigator.Controller
	Server     *api.Server

	history   navigator.JobStore
	publisher navigator.Publisher
}

// New wires every collaborator from the loaded configuration. It
// fails fast when a backing service cannot be initialized.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	mem, err := memory.Open(cfg.Memory.Path)
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}

	providers := buildProviders(cfg, logger)
	orchestrator := navigator.NewOrchestrator(
		providers,
		navigator.NewExponentialRetryPolicy(),
		logging.Named(logger, "search"),
	)
	engine := navigator.NewDecisionEngine(mem, logging.Named(logger, "decision"))

	runner := browser.NewRunner(
		sessionFactory(cfg, logger),
		cfg.StepDelay(),
		logging.Named(logger, "browser"),
	)

	verifier := verify.New(
		cfg.Verifier.GeminiKey,
		cfg.Verifier.GeminiURL,
		logging.Named(logger, "verify"),
	)

	history, err := buildHistory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize history store: %w", err)
	}

	archive, err := buildArchive(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize archive store: %w", err)
	}

	publisher, err := buildPublisher(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize publisher: %w", err)
	}

	controller := navigator.NewController(
		orchestrator,
		engine,
		mem,
		runner,
		verifier,
		history,
		archive,
		publisher,
		system.New(),
		navigator.ControllerConfig{
			Topic:         cfg.Events.Topic,
			ArchivePrefix: cfg.Archive.Prefix,
		},
		logging.Named(logger, "controller"),
	)

	server := api.NewServer(controller, history, logging.Named(logger, "api"))

	return &App{
		Logger:     logger,
		Config:     cfg,
		Controller: controller,
		Server:     server,
		history:    history,
		publisher:  publisher,
	}, nil
}

// Close releases external connections held by the container.
func (a *App) Close() {
	if closer, ok := a.publisher.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.Logger.Warn("close publisher failed", zap.Error(err))
		}
	}
	if closer, ok := a.history.(interface{ Close() }); ok {
		closer.Close()
	}
	_ = a.Logger.Sync()
}

// buildProviders assembles the search chain in priority order. The
// keyless scrape provider always goes last so it only serves as the
// fallback of last resort.
func buildProviders(cfg config.Config, logger *zap.Logger) []navigator.Provider {
	return []navigator.Provider{
		tavily.New(cfg.Search.TavilyKey, logging.Named(logger, "tavily")),
		serpapi.New(cfg.Search.SerpAPIKey, logging.Named(logger, "serpapi")),
		serper.New(cfg.Search.SerperKey, logging.Named(logger, "serper")),
		duckduckgo.New(cfg.Search.UserAgent, logging.Named(logger, "duckduckgo")),
	}
}

func sessionFactory(cfg config.Config, logger *zap.Logger) browser.SessionFactory {
	if !cfg.Browser.Enabled {
		return func(context.Context) (browser.Session, error) {
			return browser.NoopSession{}, nil
		}
	}
	sessionCfg := browser.Config{
		Headless:        cfg.Browser.Headless,
		UserDataDir:     cfg.Browser.UserDataDir,
		DebuggerAddress: cfg.Browser.DebuggerAddress,
		UserAgent:       cfg.Search.UserAgent,
		ActionTimeout:   cfg.ActionTimeout(),
	}
	return func(context.Context) (browser.Session, error) {
		return browser.NewSession(sessionCfg, logger)
	}
}

func buildHistory(ctx context.Context, cfg config.Config) (navigator.JobStore, error) {
	switch cfg.History.Provider {
	case "memory":
		return historymemory.NewStore(), nil
	case "postgres":
		return historypostgres.NewStore(ctx, historypostgres.StoreConfig{
			DSN:   cfg.History.DSN,
			Table: cfg.History.Table,
		})
	default:
		return nil, fmt.Errorf("unknown history provider %q", cfg.History.Provider)
	}
}

func buildArchive(ctx context.Context, cfg config.Config) (navigator.BlobStore, error) {
	switch cfg.Archive.Provider {
	case "none":
		return nil, nil
	case "local":
		return archivelocal.New(archivelocal.Config{BaseDir: cfg.Archive.BaseDir})
	case "gcs":
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create storage client: %w", err)
		}
		return archivegcs.New(client, archivegcs.Config{Bucket: cfg.Archive.Bucket})
	default:
		return nil, fmt.Errorf("unknown archive provider %q", cfg.Archive.Provider)
	}
}

func buildPublisher(ctx context.Context, cfg config.Config) (navigator.Publisher, error) {
	switch cfg.Events.Provider {
	case "none":
		return nil, nil
	case "memory":
		return pubmemory.New(), nil
	case "pubsub":
		return pubpubsub.New(ctx, cfg.Events.ProjectID, cfg.Events.Topic)
	default:
		return nil, fmt.Errorf("unknown events provider %q", cfg.Events.Provider)
	}
}
