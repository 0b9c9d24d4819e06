package main

import (
	"github.com/spf13/cobra"

	"github.com/scholarboard/hix/internal/storage"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	Long: `Show aggregate figures over all researchers: totals, h-index average and
maximum, researchers per category and the last sync time.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// StatsResponse is the output of 'hix stats'.
type StatsResponse struct {
	*storage.Stats
	LastSync string `json:"last_sync,omitempty"`
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	stats, err := db.Stats(cmd.Context())
	if err != nil {
		exitWithError(ExitError, "computing stats: %v", err)
	}
	lastSync, err := db.Meta(cmd.Context(), "last_sync")
	if err != nil {
		exitWithError(ExitError, "reading last sync: %v", err)
	}

	if humanOutput {
		outputHuman("Researchers:        %d\n", stats.TotalResearchers)
		outputHuman("With history:       %d\n", stats.WithHistory)
		outputHuman("Average h-index:    %.1f\n", stats.AvgHIndex)
		outputHuman("Max h-index:        %d\n", stats.MaxHIndex)
		outputHuman("Total citations:    %d\n", stats.TotalCitations)
		outputHuman("Likely bad merges:  %d\n", stats.LikelyBadMerges)
		if lastSync == "" {
			lastSync = "never"
		}
		outputHuman("Last sync:          %s\n", lastSync)
		if len(stats.Categories) > 0 {
			outputHuman("\nCategories:\n")
			for _, c := range stats.Categories {
				outputHuman("  %-36s %d\n", c.Category, c.Researchers)
			}
		}
		return nil
	}
	return outputJSON(StatsResponse{Stats: stats, LastSync: lastSync})
}
