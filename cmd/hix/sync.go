package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scholarboard/hix/internal/batch"
	"github.com/scholarboard/hix/internal/config"
)

var (
	syncInstitutions []string
	syncAll          bool
	syncList         bool
	syncLimit        int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync researcher snapshots from OpenAlex by institution",
	Long: `Fetch every author whose last known institution matches the given
institutions and store a snapshot of their metrics, topics and affiliations.

A researcher found at several institutions is stored once. When a
researcher's yearly counts change, their h-index history is reset and
recomputed by the next 'hix history' run.

Examples:
  hix sync --list
  hix sync --institution hms --institution berkeley
  hix sync --all --limit 500`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringSliceVarP(&syncInstitutions, "institution", "i", nil, "Institution key to sync (repeatable or comma-separated)")
	syncCmd.Flags().BoolVar(&syncAll, "all", false, "Sync every known institution")
	syncCmd.Flags().BoolVar(&syncList, "list", false, "List known institutions and exit")
	syncCmd.Flags().IntVar(&syncLimit, "limit", 0, "Maximum authors per institution (0 = all)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	if syncList {
		return listInstitutions(cfg)
	}

	targets, err := resolveTargets(cfg, syncInstitutions, syncAll)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	db := mustOpenDatabase(cfg)
	defer db.Close()

	summary, err := batch.RunSync(cmd.Context(), newOpenAlexClient(cfg), db, targets, batch.SyncOptions{
		Limit:  syncLimit,
		Cache:  derivedCache,
		Logger: newLogger(cfg),
	})
	if err != nil {
		db.Close()
		exitWithError(ExitError, "sync: %v", err)
	}

	if humanOutput {
		for _, r := range summary.Institutions {
			status := fmt.Sprintf("%d researchers, %d new", r.Processed, r.Added)
			if r.Error != "" {
				status += ", failed: " + r.Error
			}
			outputHuman("%-14s %s\n", r.Key, status)
		}
		outputHuman("\nSynced %d researchers (%d new, %d errors) in %s%s\n",
			summary.Processed, summary.Added, summary.Errors,
			formatDuration(summary.Duration), interruptedNote(summary.Interrupted))
	} else {
		mustOutputJSON(summary)
	}

	if summary.Interrupted {
		db.Close()
		os.Exit(ExitInterrupted)
	}
	return nil
}

// resolveTargets turns institution keys into sync targets.
func resolveTargets(cfg *config.Config, keys []string, all bool) ([]batch.Target, error) {
	if all {
		keys = cfg.InstitutionKeys()
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("specify --institution KEY, --all or --list")
	}

	seen := make(map[string]bool)
	var targets []batch.Target
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		inst, err := cfg.LookupInstitution(k)
		if err != nil {
			return nil, err
		}
		targets = append(targets, batch.Target{Key: k, Name: inst.Name, ROR: inst.ROR})
	}
	return targets, nil
}

// InstitutionEntry is one row of 'hix sync --list'.
type InstitutionEntry struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	ROR  string `json:"ror"`
}

func listInstitutions(cfg *config.Config) error {
	all := cfg.AllInstitutions()
	entries := make([]InstitutionEntry, 0, len(all))
	for _, k := range cfg.InstitutionKeys() {
		entries = append(entries, InstitutionEntry{Key: k, Name: all[k].Name, ROR: all[k].ROR})
	}

	if humanOutput {
		for _, e := range entries {
			outputHuman("%-14s %-32s %s\n", e.Key, e.Name, e.ROR)
		}
		return nil
	}
	return outputJSON(entries)
}
