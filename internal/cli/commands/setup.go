// Package commands implements the townledger CLI subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/townworks/townledger/internal/auth"
	"github.com/townworks/townledger/internal/cli/config"
	"github.com/townworks/townledger/internal/ledger"
	"github.com/townworks/townledger/internal/store"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Store  *store.SQLiteStore
	Ledger *ledger.Service
	Auth   *auth.Manager
}

// NewCommandContext opens the ledger database and wires the service
// layer. Returns the context and a cleanup function that must be called
// (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	st, err := openStore(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = st.Close()
	}

	return &CommandContext{
		Cfg:    cfg,
		Logger: logger,
		Store:  st,
		Ledger: ledger.NewService(st, ledgerConfig(cfg), logger),
		Auth:   auth.NewManager(st),
	}, cleanup, nil
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	database := getEnvOrDefault("TOWNLEDGER_DATABASE", config.DefaultDatabase)
	verbose := os.Getenv("TOWNLEDGER_VERBOSE") == "true"

	return &config.Config{
		Database:      database,
		SessionSecret: os.Getenv("TOWNLEDGER_SESSION_SECRET"),
		Verbose:       verbose,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// ledgerConfig maps the CLI configuration onto the service tunables.
func ledgerConfig(cfg *config.Config) ledger.Config {
	dues := cfg.GetDues()
	return ledger.Config{
		Dues: ledger.Dues{
			Water:      dues.Water,
			Security:   dues.Security,
			Sanitation: dues.Sanitation,
		},
		Streets: cfg.Streets,
	}
}

// openStore opens the ledger database and applies pending migrations.
func openStore(cfg *config.Config, logger *slog.Logger) (*store.SQLiteStore, error) {
	if cfg.Database != ":memory:" {
		dir := filepath.Dir(cfg.Database)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	st := store.NewSQLiteStore(logger)
	if err := st.Open(cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}
	if err := st.Migrate(); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to migrate ledger database: %w", err)
	}
	return st, nil
}
