package app

import (
	"context"
	"fmt"
	"os"

	"github.com/khrees2412/levelup/internal/catalog"
	"github.com/khrees2412/levelup/internal/config"
	"github.com/khrees2412/levelup/internal/delay"
	"github.com/khrees2412/levelup/internal/ledger"
	"github.com/khrees2412/levelup/internal/logger"
	"github.com/khrees2412/levelup/internal/store"
	"github.com/khrees2412/levelup/internal/workflow"
	"github.com/khrees2412/levelup/pkg/models"
)

// App is the dependency container for the CLI application
type App struct {
	Store    store.Store
	Config   *config.Config
	Logger   *logger.Logger
	Catalog  *catalog.Catalog
	Ledger   *ledger.Ledger
	Workflow *workflow.Workflow
}

// NewApp initializes and returns a new App instance
func NewApp(ctx context.Context) (*App, error) {
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	cfg := config.AppConfig
	log := logger.New(os.Stderr, logger.ParseLevel(cfg.LogLevel))

	st, err := store.Open(ctx, store.Options{
		Backend:     cfg.StoreBackend,
		Path:        cfg.StorePath,
		PostgresDSN: cfg.PostgresDSN,
		Browser: store.BrowserOptions{
			Origin:    cfg.BrowserOrigin,
			KeyPrefix: cfg.BrowserKeyPrefix,
			Headless:  true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreBackend, err)
	}
	log.Debug("opened %s store", cfg.StoreBackend)

	return New(cfg, st, log), nil
}

// New wires the services around an already opened store.
func New(cfg *config.Config, st store.Store, log *logger.Logger) *App {
	if log == nil {
		log = logger.Discard()
	}
	wfOpts := []workflow.Option{
		workflow.WithLatency(delay.Fixed(cfg.SubmitDelay)),
		workflow.WithLogger(log),
	}
	if cfg.DateFormat != "" {
		wfOpts = append(wfOpts, workflow.WithDateFormat(cfg.DateFormat))
	}

	l := ledger.New(st, ledger.WithLogger(log))
	return &App{
		Store:    st,
		Config:   cfg,
		Logger:   log,
		Catalog:  catalog.New(st, catalog.WithLogger(log)),
		Ledger:   l,
		Workflow: workflow.New(l, wfOpts...),
	}
}

func (a *App) ListOffers(ctx context.Context) ([]models.Offer, error) {
	return a.Catalog.ListOffers(ctx)
}

func (a *App) ListApplications(ctx context.Context) ([]models.Application, error) {
	return a.Ledger.ListApplications(ctx)
}

// SubmitApplication runs a full submission and returns the stored record.
func (a *App) SubmitApplication(ctx context.Context, offer models.Offer, letter, cvFilename string) (models.Application, error) {
	return a.Workflow.Submit(ctx, workflow.Request{
		Offer:            offer,
		MotivationLetter: letter,
		CVFilename:       cvFilename,
	})
}

// ReviewApplication applies a company decision. changed is false when the
// application is missing or already decided.
func (a *App) ReviewApplication(ctx context.Context, id int64, decision models.Status) (bool, error) {
	return a.Ledger.SetStatus(ctx, id, decision)
}

func (a *App) PublishOffer(ctx context.Context, offer models.Offer) (models.Offer, error) {
	return a.Catalog.Publish(ctx, offer)
}

// Stats returns application counts plus the number of offers.
func (a *App) Stats(ctx context.Context) (models.Stats, error) {
	stats, err := a.Ledger.Stats(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	offers, err := a.Catalog.ListOffers(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	stats.Offers = len(offers)
	return stats, nil
}

// Close closes all resources
func (a *App) Close() error {
	if a.Store != nil {
		return store.Close(a.Store)
	}
	return nil
}
