package main

import (
	"github.com/spf13/cobra"

	"github.com/scholarboard/hix/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration in effect after reading the config file and
applying environment overrides and defaults.

Config file: $XDG_CONFIG_HOME/hix/config.yml (default ~/.config/hix/config.yml)

Keys:
  db_path              SQLite database path
  openalex_email       Contact email for the OpenAlex polite pool
  openalex_url         Alternative API base URL
  requests_per_second  OpenAlex request rate (default 9)
  workers              Concurrent workers for batch jobs (default 4)
  history_start        First history year (default 2015)
  history_end          Last history year (default 2025)
  log_level            debug, info, warn or error
  log_format           text or json
  institutions         Extra institutions: key -> {name, ror}`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// ConfigResponse is the output of 'hix config'.
type ConfigResponse struct {
	Path string `json:"config_path"`
	*config.Config
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	if humanOutput {
		outputHuman("config_path:          %s\n", config.GlobalConfigPath())
		outputHuman("db_path:              %s\n", cfg.DBPath)
		outputHuman("openalex_email:       %s\n", cfg.OpenAlexEmail)
		if cfg.OpenAlexURL != "" {
			outputHuman("openalex_url:         %s\n", cfg.OpenAlexURL)
		}
		outputHuman("requests_per_second:  %g\n", cfg.RequestsPerSecond)
		outputHuman("workers:              %d\n", cfg.Workers)
		outputHuman("history:              %d-%d\n", cfg.HistoryStart, cfg.HistoryEnd)
		outputHuman("log:                  %s (%s)\n", cfg.LogLevel, cfg.LogFormat)
		outputHuman("institutions:         %d known\n", len(cfg.InstitutionKeys()))
		return nil
	}
	return outputJSON(ConfigResponse{Path: config.GlobalConfigPath(), Config: cfg})
}
