package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/kgcontent-backend/internal/data/db"
	"github.com/yungbote/kgcontent-backend/internal/observability"
	"github.com/yungbote/kgcontent-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *db.Service
	Clients  Clients
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics

	shutdownOtel func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	shutdownOtel := observability.InitOTel(ctx, log, observability.OtelConfigFromEnv(cfg.ServiceName, cfg.Environment))
	metrics := observability.Init(log)

	var database *db.Service
	if !strings.EqualFold(strings.TrimSpace(cfg.GraphStore.Driver), db.DriverMemory) {
		database, err = db.Open(log, cfg.GraphStore)
		if err != nil {
			log.Sync()
			return nil, fmt.Errorf("init graph store: %w", err)
		}
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		closeDB(database)
		log.Sync()
		return nil, err
	}

	reposet, err := wireRepos(ctx, log, cfg, database, clients, metrics)
	if err != nil {
		clients.Close(ctx)
		closeDB(database)
		log.Sync()
		return nil, err
	}

	serviceset, err := wireServices(log, cfg, reposet, metrics)
	if err != nil {
		clients.Close(ctx)
		closeDB(database)
		log.Sync()
		return nil, err
	}

	return &App{
		Log:          log,
		Cfg:          cfg,
		DB:           database,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Metrics:      metrics,
		shutdownOtel: shutdownOtel,
	}, nil
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	a.Clients.Close(ctx)
	closeDB(a.DB)
	if a.shutdownOtel != nil {
		if err := a.shutdownOtel(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}

func closeDB(database *db.Service) {
	if database != nil {
		_ = database.Close()
	}
}
