package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scholarboard/hix/internal/analytics"
	"github.com/scholarboard/hix/internal/rank"
	"github.com/scholarboard/hix/internal/researcher"
)

var (
	listSort     string
	listSearch   string
	listCategory string
	listPage     int
	listPerPage  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List researchers ranked by one or more metrics",
	Long: `List researchers, optionally filtered by name or category, ranked by a
comma-separated list of metric:direction keys. The whole result set is
ranked before it is paginated.

Metrics: h_index, i10_index, works_count, cited_by_count, two_yr_citedness,
slope, institution_count, name, id, category, orcid

Examples:
  hix list --sort h_index:desc,name:asc
  hix list --category "Oncology & Cancer" --page 2 --per-page 25
  hix list --search smith --human`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listSort, "sort", "s", "h_index:desc,name:asc", "Sort keys (metric[:asc|desc], comma-separated)")
	listCmd.Flags().StringVarP(&listSearch, "search", "q", "", "Filter by name substring")
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Filter by primary category")
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "Page number (1-based)")
	listCmd.Flags().IntVar(&listPerPage, "per-page", analytics.DefaultPerPage, "Researchers per page")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	keys := mustParseSortKeys(listSort)

	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	result, err := newService(cfg, db).List(cmd.Context(), analytics.ListOptions{
		Search:   listSearch,
		Category: listCategory,
		Sort:     keys,
		Page:     listPage,
		PerPage:  listPerPage,
	})
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		if result.Total == 0 {
			outputHuman("No researchers found.\n")
			return nil
		}
		printResearcherTable(result.Researchers, (result.Page-1)*result.PerPage)
		outputHuman("\nPage %d of %d (%d researchers)\n", result.Page, result.TotalPages, result.Total)
		return nil
	}
	return outputJSON(result)
}

// mustParseSortKeys parses --sort, exits on a malformed key and warns about
// metrics that will not affect the order.
func mustParseSortKeys(spec string) []rank.SortKey {
	keys, err := rank.ParseSortKeys(spec)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	for _, k := range keys {
		if !rank.IsKnownMetric(k.Metric) {
			fmt.Fprintf(os.Stderr, "warning: unknown sort metric %q is ignored\n", k.Metric)
		}
	}
	return keys
}

// printResearcherTable prints one line per researcher, numbered from offset+1.
func printResearcherTable(rs []researcher.Researcher, offset int) {
	outputHuman("%5s  %-12s %-32s %-28s %5s %8s %10s\n", "#", "ID", "NAME", "CATEGORY", "H", "CITES", "SLOPE")
	for i, r := range rs {
		outputHuman("%5d  %-12s %-32s %-28s %5d %8d %10s\n",
			offset+i+1,
			r.ID,
			truncateString(r.Name, NameMaxLen),
			truncateString(r.Category, CategoryMaxLen),
			r.HIndex,
			r.CitedByCount,
			formatSlope(r.Slope))
	}
}
