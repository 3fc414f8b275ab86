package main

import (
	"log"
	"net/http"
	"time"

	"github.com/farxc/mgnrega-goa/internal/logger"
	"github.com/farxc/mgnrega-goa/internal/mgnrega"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/downloader"
	"github.com/farxc/mgnrega-goa/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

type application struct {
	config  config
	mgnrega *mgnrega.Orchestrator
	store   *store.Storage
	remote  *downloader.Client
	logger  *logger.Logger
	now     func() time.Time
}

type config struct {
	addr        string
	logLevel    string
	corsOrigins []string
	csv         csvConfig
	remote      remoteConfig
	store       store.Config
}

type csvConfig struct {
	path     string
	ttl      time.Duration
	encoding string
}

type remoteConfig struct {
	baseURL     string
	resourceID  string
	apiKey      string
	stateFilter string
	timeout     time.Duration
	cacheTTL    time.Duration
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: app.config.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Origin", "X-Requested-With"},
		MaxAge:         300,
	}).Handler)

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	r.Use(middleware.Timeout(60 * time.Second))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		r.Route("/mgnrega", func(r chi.Router) {
			r.Get("/", app.handleGetAllData)
			r.Get("/districts", app.handleGetDistricts)
			r.Get("/district", app.handleGetDistrictData)
			r.Get("/district/{district}", app.handleGetDistrictData)
			r.Get("/summary", app.handleGetSummary)
			r.Post("/cache/clear", app.handleClearCache)
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 120,
		ReadTimeout:  time.Second * 40,
		IdleTimeout:  time.Minute,
	}

	log.Printf("Server started on %s", app.config.addr)
	return srv.ListenAndServe()
}
