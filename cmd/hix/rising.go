package main

import (
	"github.com/spf13/cobra"

	"github.com/scholarboard/hix/internal/analytics"
)

var (
	risingStart    int
	risingEnd      int
	risingLimit    int
	risingCategory string
)

var risingCmd = &cobra.Command{
	Use:   "rising",
	Short: "List researchers whose h-index is rising fastest",
	Long: `List researchers with computed history and a positive h-index slope,
steepest first.

Without --start/--end the slopes stored by 'hix history' are used. With a
narrower range each slope is re-estimated from stored history.

Examples:
  hix rising --limit 20 --human
  hix rising --start 2021 --end 2025 --category Physics`,
	Args: cobra.NoArgs,
	RunE: runRising,
}

func init() {
	risingCmd.Flags().IntVar(&risingStart, "start", 0, "First year of the trend window")
	risingCmd.Flags().IntVar(&risingEnd, "end", 0, "Last year of the trend window")
	risingCmd.Flags().IntVarP(&risingLimit, "limit", "n", analytics.DefaultRisingLimit, "Maximum researchers to show")
	risingCmd.Flags().StringVarP(&risingCategory, "category", "c", "", "Filter by primary category")
	rootCmd.AddCommand(risingCmd)
}

func runRising(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	rs, err := newService(cfg, db).Rising(cmd.Context(), analytics.RisingOptions{
		Start:    risingStart,
		End:      risingEnd,
		Category: risingCategory,
		Limit:    risingLimit,
	})
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		if len(rs) == 0 {
			outputHuman("No rising researchers. Run 'hix history' first.\n")
			return nil
		}
		printResearcherTable(rs, 0)
		return nil
	}
	return outputJSON(rs)
}
