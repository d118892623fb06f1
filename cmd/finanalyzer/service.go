package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BerylCAtieno/financial-analyzer/internal/analyzer"
	"github.com/BerylCAtieno/financial-analyzer/internal/config"
	"github.com/BerylCAtieno/financial-analyzer/internal/db"
	"github.com/BerylCAtieno/financial-analyzer/internal/llm"
	"github.com/BerylCAtieno/financial-analyzer/internal/repository"
	"github.com/BerylCAtieno/financial-analyzer/internal/services"
	"github.com/BerylCAtieno/financial-analyzer/internal/utils"
)

// serviceFactory builds the document service for a command run. The returned
// func releases whatever the service holds open.
type serviceFactory func(ctx context.Context, logger *utils.Logger) (services.DocumentService, func(), error)

// newDocumentService authenticates with the configured model and, when
// HISTORY_DRIVER is set, records each run in the history database.
func newDocumentService(ctx context.Context, logger *utils.Logger) (services.DocumentService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.RequireCredential(); err != nil {
		return nil, nil, err
	}

	session, err := llm.Authenticate(ctx, cfg.LLM())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	cleanup := func() {}

	var repo repository.Repository
	if cfg.HistoryDriver != "" {
		database, err := db.Open(cfg.HistoryDriver, cfg.HistoryDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(database, cfg.HistoryDriver); err != nil {
			database.Close()
			return nil, nil, err
		}
		repo = repository.NewRepository(database)
		cleanup = func() { database.Close() }
	}

	svc := services.NewService(services.Deps{
		Analyzer: analyzer.New(session, logger),
		Repo:     repo,
		Model:    session.Model(),
		Logger:   logger,
	})

	return svc, cleanup, nil
}

// commandLogger writes JSON logs to stderr; --verbose lowers the level to
// debug.
func commandLogger(cmd *cobra.Command) *utils.Logger {
	level := "warn"
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	return utils.NewLoggerWithWriter(os.Stderr, level)
}
