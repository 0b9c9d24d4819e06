// Package main provides the hix CLI entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/scholarboard/hix/internal/analytics"
	"github.com/scholarboard/hix/internal/cache"
	"github.com/scholarboard/hix/internal/config"
	"github.com/scholarboard/hix/internal/logging"
	"github.com/scholarboard/hix/internal/openalex"
	"github.com/scholarboard/hix/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

// Global flags.
var (
	humanOutput bool
	dbFlag      string
	logLevel    string
)

// derivedCache holds history and trend values for the life of the process.
// Batch commands invalidate it as they rewrite researchers.
var derivedCache = cache.New(cache.DefaultTTL)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		// SilenceErrors is set, so cobra errors (bad flags, missing args)
		// must be printed here.
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hix",
	Short: "Researcher h-index history, trends and rankings",
	Long: `hix tracks researchers from OpenAlex and analyzes their impact over time.

Core features:
  - Institution sync of researcher snapshots (metrics, topics, affiliations)
  - Year-by-year h-index reconstruction from per-work citation counts
  - Trend slopes, rising researchers and multi-key rankings
  - Category percentiles and anomaly flags (spikes, bad author merges)

Data is stored in a local SQLite database.
All commands output JSON by default; use --human for readable output.

Environment Variables:
  HIX_DB            Database path (overrides db_path in config.yml)
  OPENALEX_EMAIL    Contact email for the OpenAlex polite pool
  HIX_OPENALEX_URL  Alternative OpenAlex API base URL`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env file if present (for OPENALEX_EMAIL, HIX_DB)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "Database path (overrides config and HIX_DB)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.Version = Version
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if dbFlag != "" {
		cfg.DBPath = config.ExpandPath(dbFlag)
	}
	return cfg
}

// mustOpenDatabase opens the SQLite database, creating its directory if
// needed, and exits on error. The caller is responsible for calling Close().
func mustOpenDatabase(cfg *config.Config) *storage.DB {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		exitWithError(ExitError, "creating database directory: %v", err)
	}
	db, err := storage.OpenDB(cfg.DBPath)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// newLogger returns the stderr logger for batch commands.
func newLogger(cfg *config.Config) *slog.Logger {
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	return logging.New(os.Stderr, level, cfg.LogFormat)
}

// newOpenAlexClient builds a rate-limited client from the config.
func newOpenAlexClient(cfg *config.Config) *openalex.Client {
	opts := []openalex.ClientOption{
		openalex.WithRateLimit(cfg.RequestsPerSecond),
		openalex.WithUserAgent("hix/" + Version),
	}
	if cfg.OpenAlexEmail != "" {
		opts = append(opts, openalex.WithMailto(cfg.OpenAlexEmail))
	}
	if cfg.OpenAlexURL != "" {
		opts = append(opts, openalex.WithBaseURL(cfg.OpenAlexURL))
	}
	return openalex.NewClient(opts...)
}

// newService builds the read-side service over db.
func newService(cfg *config.Config, db *storage.DB) *analytics.Service {
	return analytics.New(db, analytics.Options{
		Cache:        derivedCache,
		HistoryStart: cfg.HistoryStart,
		HistoryEnd:   cfg.HistoryEnd,
	})
}
