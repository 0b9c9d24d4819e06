package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/scholarboard/hix/internal/anomaly"
	"github.com/scholarboard/hix/internal/batch"
	"github.com/scholarboard/hix/internal/storage"
)

var (
	mergesLimit   int
	mergesWorkers int
	mergesReport  bool
)

var mergesCmd = &cobra.Command{
	Use:   "merges",
	Short: "Flag researcher profiles that likely merge several people",
	Long: `Look up how many institutions OpenAlex attributes to each researcher whose
count is unknown. Profiles listing many institutions usually merge
several people and are flagged as likely bad merges.

With --report, only print the researchers already flagged.

Examples:
  hix merges --limit 1000
  hix merges --report --human`,
	Args: cobra.NoArgs,
	RunE: runMerges,
}

func init() {
	mergesCmd.Flags().IntVarP(&mergesLimit, "limit", "n", 0, "Maximum researchers to check or report (0 = all)")
	mergesCmd.Flags().IntVarP(&mergesWorkers, "workers", "w", 0, "Concurrent workers (default from config)")
	mergesCmd.Flags().BoolVar(&mergesReport, "report", false, "Report flagged researchers without fetching")
	rootCmd.AddCommand(mergesCmd)
}

func runMerges(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	if mergesReport {
		return reportMerges(cmd, db)
	}

	workers := cfg.Workers
	if mergesWorkers > 0 {
		workers = mergesWorkers
	}

	summary, err := batch.RunMerges(cmd.Context(), newOpenAlexClient(cfg), db, batch.MergeOptions{
		Limit:   mergesLimit,
		Workers: workers,
		Logger:  newLogger(cfg),
	})
	if err != nil {
		db.Close()
		exitWithError(ExitError, "merge check: %v", err)
	}

	if humanOutput {
		for _, s := range summary.Suspects {
			outputHuman("%-12s %-32s %3d institutions  h=%d\n",
				s.ID, truncateString(s.Name, NameMaxLen), s.Institutions, s.HIndex)
		}
		outputHuman("\nChecked %d/%d researchers, %d flagged (>= %d institutions), %d errors in %s%s\n",
			summary.Processed, summary.Candidates, summary.Flagged, anomaly.MergeInstitutionThreshold,
			summary.Errors, formatDuration(summary.Duration), interruptedNote(summary.Interrupted))
	} else {
		mustOutputJSON(summary)
	}

	if summary.Interrupted {
		db.Close()
		os.Exit(ExitInterrupted)
	}
	return nil
}

func reportMerges(cmd *cobra.Command, db *storage.DB) error {
	rs, err := db.LikelyBadMerges(cmd.Context(), mergesLimit)
	if err != nil {
		exitWithError(ExitError, "listing flagged researchers: %v", err)
	}

	suspects := make([]batch.Suspect, 0, len(rs))
	for _, r := range rs {
		s := batch.Suspect{ID: r.ID, Name: r.Name, HIndex: r.HIndex}
		if r.InstitutionCount != nil {
			s.Institutions = *r.InstitutionCount
		}
		suspects = append(suspects, s)
	}

	if humanOutput {
		if len(suspects) == 0 {
			outputHuman("No likely bad merges recorded.\n")
			return nil
		}
		for _, s := range suspects {
			outputHuman("%-12s %-32s %3d institutions  h=%d\n",
				s.ID, truncateString(s.Name, NameMaxLen), s.Institutions, s.HIndex)
		}
		return nil
	}
	return outputJSON(suspects)
}
