package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dvloznov/hikmacash/internal/api/handlers"
	"github.com/dvloznov/hikmacash/internal/api/middleware"
	"github.com/dvloznov/hikmacash/internal/app"
	"github.com/dvloznov/hikmacash/internal/auth"
	"github.com/dvloznov/hikmacash/internal/config"
	"github.com/dvloznov/hikmacash/internal/logger"
	"github.com/dvloznov/hikmacash/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Parse command-line flags
	var (
		port    = flag.Int("port", 0, "HTTP server port (overrides PORT)")
		bucket  = flag.String("bucket", "", "Export bucket name (overrides EXPORT_BUCKET)")
		envFile = flag.String("env-file", ".env", "Optional dotenv file loaded before the environment")
	)
	flag.Parse()

	bootLog := logger.New()

	if err := config.LoadDotEnv(*envFile); err != nil {
		bootLog.Fatal().Err(err).Str("path", *envFile).Msg("Failed to load env file")
	}
	overrides := map[string]string{}
	if *port != 0 {
		overrides["PORT"] = strconv.Itoa(*port)
	}
	if *bucket != "" {
		overrides["EXPORT_BUCKET"] = *bucket
	}
	cfg, err := config.LoadFrom(func(key string) (string, bool) {
		if v, ok := overrides[key]; ok {
			return v, true
		}
		return os.LookupEnv(key)
	})
	if err != nil {
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.NewFromConfig(cfg.Logging.Level, cfg.Logging.Format)
	log.Info().Str("config", cfg.String()).Msg("Configuration loaded")

	ctx := context.Background()

	backends, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open stores")
	}
	defer func() {
		if err := backends.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close stores")
		}
	}()

	resolver, err := auth.NewJWTResolver(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create credential resolver")
	}

	exporter := pipeline.NewExporter(resolver, backends.Records, backends.Objects, pipeline.WithTempDir(cfg.Transfer.TempDir))
	importer := pipeline.NewImporter(resolver, backends.Records)

	// Initialize handlers
	exportHandler := handlers.NewExportHandler(exporter)
	importHandler := handlers.NewImportHandler(importer, cfg.Transfer.MaxImportBytes)
	recordsHandler := handlers.NewRecordsHandler(resolver, backends.Records)

	// Create router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CORS)

	r.Get("/health", handlers.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireBearer)

		r.Post("/export", exportHandler.Export)
		r.Post("/import", importHandler.Import)
		r.Get("/transactions", recordsHandler.ListTransactions)
		r.Get("/categories", recordsHandler.ListCategories)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", server.Addr).Str("store", cfg.Store.Backend).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
