// Command civiq runs the civic data-quality engine: scan materializes
// issues, resolve applies approved patches, serve exposes the HTTP API.
package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"civiq/internal/dq/catalog"
	"civiq/internal/dq/scan"
	issuestore "civiq/internal/dq/store/issue"
	patchstore "civiq/internal/dq/store/patch"
	"civiq/internal/entity"
	"civiq/internal/platform/config"
	"civiq/internal/platform/logger"
	platformredis "civiq/internal/platform/redis"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:           "civiq",
	Short:         "Data-quality engine for scraped civic data",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Missing .env is fine; production sets real environment variables.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(serveCmd)
}

// app bundles the wired dependencies every subcommand needs.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	db       *sql.DB
	redis    *platformredis.Client
	catalog  *catalog.Catalog
	entities entity.Store
	issues   *issuestore.PostgresStore
	issueTx  *issuestore.PostgresTx
	patches  *patchstore.PostgresStore
	scanners scan.Registry
}

func newApp() (*app, error) {
	cfg := config.FromEnv()
	log := logger.New(parseLevel(logLevel))

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	rdb, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, report caching disabled", "error", err)
		rdb = nil
	}

	entities := entity.NewPostgres(db)
	return &app{
		cfg:      cfg,
		logger:   log,
		db:       db,
		redis:    rdb,
		catalog:  catalog.Default(),
		entities: entities,
		issues:   issuestore.NewPostgres(db),
		issueTx:  issuestore.NewPostgresTx(db),
		patches:  patchstore.NewPostgres(db),
		scanners: scan.NewRegistry(entities),
	}, nil
}

func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	a.db.Close()
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
