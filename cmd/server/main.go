package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/BerylCAtieno/financial-analyzer/internal/analyzer"
	"github.com/BerylCAtieno/financial-analyzer/internal/config"
	"github.com/BerylCAtieno/financial-analyzer/internal/db"
	"github.com/BerylCAtieno/financial-analyzer/internal/handlers"
	"github.com/BerylCAtieno/financial-analyzer/internal/llm"
	"github.com/BerylCAtieno/financial-analyzer/internal/metrics"
	"github.com/BerylCAtieno/financial-analyzer/internal/repository"
	"github.com/BerylCAtieno/financial-analyzer/internal/router"
	"github.com/BerylCAtieno/financial-analyzer/internal/services"
	"github.com/BerylCAtieno/financial-analyzer/internal/storage"
	"github.com/BerylCAtieno/financial-analyzer/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	if err := cfg.RequireCredential(); err != nil {
		logger.Fatal("Invalid configuration", "error", err)
	}

	ctx := context.Background()

	// Authenticate once; the session is shared by every request
	session, err := llm.Authenticate(ctx, cfg.LLM())
	if err != nil {
		logger.Fatal("Failed to authenticate with the model provider", "error", err)
	}
	logger.Info("Model client ready", "model", session.Model(), "base_url", cfg.OpenAIBaseURL)

	// Upload staging
	store, err := storage.New(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize upload storage", "error", err, "type", cfg.StorageType)
	}

	// Optional analysis history
	var repo repository.Repository
	if cfg.HistoryDriver != "" {
		database, err := db.Open(cfg.HistoryDriver, cfg.HistoryDSN)
		if err != nil {
			logger.Fatal("Failed to connect to database", "error", err, "driver", cfg.HistoryDriver)
		}
		defer database.Close()

		if err := db.RunMigrations(database, cfg.HistoryDriver); err != nil {
			logger.Fatal("Failed to run migrations", "error", err)
		}

		repo = repository.NewRepository(database)
		logger.Info("Analysis history enabled", "driver", cfg.HistoryDriver)
	}

	opts := router.Options{
		MaxFileSize:        cfg.MaxFileSize,
		RenderHTML:         cfg.RenderHTML,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		SessionStore:       handlers.NewSessionStore(cfg.SessionSecret, cfg.UploadTTL),
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m = metrics.New(reg)
		opts.Metrics = reg
	}

	docService := services.NewService(services.Deps{
		Analyzer: analyzer.New(session, logger),
		Storage:  store,
		Repo:     repo,
		Metrics:  m,
		Model:    session.Model(),
		Logger:   logger,
	})

	// Setup HTTP router
	handler := router.NewRouter(docService, opts, logger)

	// Analyses wait on the model, so the write timeout is generous
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
