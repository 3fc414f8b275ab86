package main

import (
	"log"
	"os"
	"time"

	"github.com/farxc/mgnrega-goa/internal/env"
	"github.com/farxc/mgnrega-goa/internal/logger"
	"github.com/farxc/mgnrega-goa/internal/mgnrega"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/downloader"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/files"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/generator"
	"github.com/farxc/mgnrega-goa/internal/store"
)

const version = "1.0.0"

func main() {
	if err := env.Load(".env"); err != nil {
		log.Printf("Could not read .env: %v", err)
	}

	cfg := loadConfig()
	appLogger := logger.New(logger.ParseLevel(cfg.logLevel), os.Stdout)

	storage, closeStore, err := store.Open(cfg.store, appLogger)
	if err != nil {
		appLogger.Warn("Main", "Persistent store degraded: driver=%s wired=%t err=%v", cfg.store.Driver, storage != nil, err)
	}
	defer closeStore()

	remote := downloader.NewClient(downloader.Config{
		BaseURL:     cfg.remote.baseURL,
		ResourceID:  cfg.remote.resourceID,
		APIKey:      cfg.remote.apiKey,
		StateFilter: cfg.remote.stateFilter,
		Timeout:     cfg.remote.timeout,
		CacheTTL:    cfg.remote.cacheTTL,
	}, appLogger)
	if !remote.Configured() {
		appLogger.Warn("Main", "Remote source disabled: MGNREGA_RESOURCE_ID or DATA_GOV_API_KEY not set")
	}

	csvCache := files.NewCSVCache(cfg.csv.path, cfg.csv.ttl,
		files.WithCharset(cfg.csv.encoding),
		files.WithLogger(appLogger),
	)

	orchestrator := mgnrega.NewOrchestrator(mgnrega.Options{
		Remote:    remote,
		CSV:       csvCache,
		Storage:   storage,
		Generator: generator.New(),
		Logger:    appLogger,
	})
	appLogger.Info("Main", "Data tiers: %v", orchestrator.TierNames())

	app := &application{
		config:  cfg,
		mgnrega: orchestrator,
		store:   storage,
		remote:  remote,
		logger:  appLogger,
		now:     time.Now,
	}

	mux := app.mount()

	log.Fatal(app.run(mux))
}

func loadConfig() config {
	return config{
		addr:        env.GetString("ADDR", ":8080"),
		logLevel:    env.GetString("LOG_LEVEL", "info"),
		corsOrigins: env.GetStrings("CORS_ORIGINS", []string{"*"}),
		csv: csvConfig{
			path:     env.GetString("CSV_PATH", "data/mgnrega_goa.csv"),
			ttl:      env.GetDuration("CSV_CACHE_TTL", files.DefaultFreshness),
			encoding: env.GetString("CSV_ENCODING", files.EncodingUTF8),
		},
		remote: remoteConfig{
			baseURL:     env.GetString("DATA_GOV_API_URL", downloader.DataGovURL),
			resourceID:  env.GetString("MGNREGA_RESOURCE_ID", ""),
			apiKey:      env.GetString("DATA_GOV_API_KEY", ""),
			stateFilter: env.GetString("MGNREGA_STATE_FILTER", ""),
			timeout:     env.GetDuration("REMOTE_TIMEOUT", downloader.DefaultTimeout),
			cacheTTL:    env.GetDuration("REMOTE_CACHE_TTL", time.Minute),
		},
		store: store.ConfigFromEnv(),
	}
}
