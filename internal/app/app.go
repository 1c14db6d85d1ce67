package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	dbpkg "github.com/yungbote/researchtrack-backend/internal/data/db"
	"github.com/yungbote/researchtrack-backend/internal/http"
	"github.com/yungbote/researchtrack-backend/internal/observability"
	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics

	store        *dbpkg.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New loads config, opens and migrates the store and wires every layer.
func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := OpenStore(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	theDB := store.DB()

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel())
	metrics := observability.Init(log, cfg.MetricsEnabled)

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = store.Close()
		log.Sync()
		return nil, err
	}
	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, clients, reposet, metrics)
	handlerset := wireHandlers(log, theDB, serviceset)
	router := wireRouter(log, cfg, handlerset, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Metrics:      metrics,
		store:        store,
		otelShutdown: otelShutdown,
	}, nil
}

// OpenStore connects to the configured driver and migrates the schema.
func OpenStore(log *logger.Logger, cfg Config) (*dbpkg.Service, error) {
	store, err := dbpkg.Open(log, cfg.DB())
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	if err := store.AutoMigrateAll(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return store, nil
}

// Start launches background collectors.
func (a *App) Start(ctx context.Context) {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.Metrics.StartDBCollector(ctx, a.Log, a.DB, a.Cfg.DBStatsInterval())
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("Serving HTTP", "addr", addr)
	return (&http.Server{Engine: a.Router}).Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Log.Warn("store close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
