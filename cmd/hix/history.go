package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/scholarboard/hix/internal/batch"
)

var (
	historyLimit   int
	historyWorkers int
	historyStart   int
	historyEnd     int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Reconstruct yearly h-index history for pending researchers",
	Long: `Fetch the works of every researcher whose history has not been computed,
reconstruct their h-index at the end of each year and fit a trend slope.

Researchers are processed highest two-year citedness first. Each researcher
is committed on its own, so an interrupted run keeps everything finished so
far and the next run picks up the rest.

Examples:
  hix history --limit 100
  hix history --workers 8 --start 2018 --end 2025`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Maximum researchers to process (0 = all pending)")
	historyCmd.Flags().IntVarP(&historyWorkers, "workers", "w", 0, "Concurrent workers (default from config)")
	historyCmd.Flags().IntVar(&historyStart, "start", 0, "First year (default from config)")
	historyCmd.Flags().IntVar(&historyEnd, "end", 0, "Last year (default from config)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	opts := batch.HistoryOptions{
		Limit:   historyLimit,
		Workers: cfg.Workers,
		Start:   cfg.HistoryStart,
		End:     cfg.HistoryEnd,
		Cache:   derivedCache,
		Logger:  newLogger(cfg),
	}
	if historyWorkers > 0 {
		opts.Workers = historyWorkers
	}
	if historyStart > 0 {
		opts.Start = historyStart
	}
	if historyEnd > 0 {
		opts.End = historyEnd
	}

	summary, err := batch.RunHistory(cmd.Context(), newOpenAlexClient(cfg), db, opts)
	if err != nil {
		db.Close()
		exitWithError(ExitError, "history: %v", err)
	}

	if humanOutput {
		if summary.Candidates == 0 {
			outputHuman("No researchers pending history.\n")
			return nil
		}
		for _, r := range summary.Results {
			if r.Error != "" {
				outputHuman("%-12s %-32s failed: %s\n", r.ID, truncateString(r.Name, NameMaxLen), r.Error)
				continue
			}
			outputHuman("%-12s %-32s h=%-4d %s (%d works)\n",
				r.ID, truncateString(r.Name, NameMaxLen), r.FinalHIndex, formatSlope(r.Slope), r.Works)
		}
		outputHuman("\nProcessed %d/%d researchers (%d errors) for %d-%d in %s%s\n",
			summary.Processed, summary.Candidates, summary.Errors,
			summary.StartYear, summary.EndYear,
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
