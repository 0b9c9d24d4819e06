package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scholarboard/hix/internal/analytics"
	"github.com/scholarboard/hix/internal/openalex"
	"github.com/scholarboard/hix/internal/storage"
)

var (
	showStart  int
	showEnd    int
	showMetric string
)

var showCmd = &cobra.Command{
	Use:   "show <researcher-id>",
	Short: "Show a researcher's history, trend, standing and anomalies",
	Long: `Show everything known about one researcher: the current snapshot, the
reconstructed h-index history and its trend, the percentile standing among
researchers in the same category, monthly snapshots and anomaly flags.

The ID may be a bare OpenAlex ID (A5023888391) or its full URL.

Examples:
  hix show A5023888391 --human
  hix show https://openalex.org/A5023888391 --metric cited_by_count
  hix show A5023888391 --start 2020 --end 2025`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().IntVar(&showStart, "start", 0, "First year of history and trend")
	showCmd.Flags().IntVar(&showEnd, "end", 0, "Last year of history and trend")
	showCmd.Flags().StringVarP(&showMetric, "metric", "m", "h_index", "Metric for the category percentile")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	id := openalex.NormalizeID(args[0])

	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	d, err := newService(cfg, db).Detail(cmd.Context(), id, analytics.DetailOptions{
		Start:  showStart,
		End:    showEnd,
		Metric: showMetric,
	})
	if err != nil {
		db.Close()
		switch {
		case errors.Is(err, storage.ErrNotFound):
			exitWithError(ExitNotFound, "researcher %s not found", id)
		case errors.Is(err, analytics.ErrUnknownMetric):
			exitWithError(ExitDataError, "%v", err)
		default:
			exitWithError(ExitError, "%v", err)
		}
	}

	if humanOutput {
		printDetailHuman(d)
		return nil
	}
	return outputJSON(d)
}

func printDetailHuman(d *analytics.Detail) {
	r := d.Researcher
	outputHuman("%s (%s)\n", r.Name, r.ID)
	if r.ORCID != "" {
		outputHuman("  ORCID:       %s\n", r.ORCID)
	}
	outputHuman("  Category:    %s\n", r.Category)
	outputHuman("  h-index:     %d (i10 %d)\n", r.HIndex, r.I10Index)
	outputHuman("  Works:       %d, cited %d times\n", r.WorksCount, r.CitedByCount)
	outputHuman("  Sources:     %s\n", joinOr(r.SyncedFrom, ", ", "none"))
	if len(r.Topics) > 0 {
		topics := make([]string, len(r.Topics))
		for i, t := range r.Topics {
			topics[i] = t.Name
		}
		outputHuman("  Topics:      %s\n", strings.Join(topics, "; "))
	}

	s := d.Standing
	outputHuman("\nStanding (%s within %s):\n", s.Metric, s.Category)
	if s.Rank == nil {
		outputHuman("  no peers\n")
	} else {
		outputHuman("  rank %d of %d, percentile %s", *s.Rank, s.PeerTotal, formatPercentile(s.Percentile))
		if s.Label != "" {
			outputHuman(" (%s)", s.Label)
		}
		outputHuman("\n")
	}

	outputHuman("\nTrend %d-%d: %s (h %.0f -> %.0f)\n",
		d.Trend.StartYear, d.Trend.EndYear, formatSlope(d.Trend.Slope), d.Trend.StartValue, d.Trend.EndValue)
	if len(d.History) == 0 {
		outputHuman("  history not computed; run 'hix history'\n")
	}
	for _, p := range d.History {
		outputHuman("  %d  %3d  %s\n", p.Year, p.HIndex, strings.Repeat("#", min(p.HIndex, 60)))
	}

	if len(d.Snapshots) > 0 {
		outputHuman("\nMonthly snapshots:\n")
		for _, sn := range d.Snapshots {
			outputHuman("  %s  h=%d works=%d cited=%d\n", sn.Month, sn.HIndex, sn.WorksCount, sn.CitedByCount)
		}
	}

	outputHuman("\nAnomalies:\n")
	if len(d.Anomalies.Flags) == 0 {
		outputHuman("  none\n")
	}
	for _, f := range d.Anomalies.Flags {
		outputHuman("  [%s] %s\n", f.Kind, f.Message)
	}
}
