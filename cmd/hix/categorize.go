package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scholarboard/hix/internal/category"
)

var categorizeFile string

var categorizeCmd = &cobra.Command{
	Use:   "categorize [topic...]",
	Short: "Map research topics to broad categories",
	Long: `Map research topic names to one of the broad categories used for
percentiles, and report how the topics distribute over categories.

Topics come from the arguments or from --file, which holds either a JSON
array of strings or one topic per line.

Examples:
  hix categorize "Breast Cancer Research" "Deep Learning"
  hix categorize --file topics.json --human`,
	RunE: runCategorize,
}

func init() {
	categorizeCmd.Flags().StringVarP(&categorizeFile, "file", "f", "", "Read topics from a JSON array or a line-per-topic file")
	rootCmd.AddCommand(categorizeCmd)
}

// CategorizeResponse is the output of 'hix categorize'.
type CategorizeResponse struct {
	Total        int               `json:"total"`
	Mapping      map[string]string `json:"mapping"`
	Distribution []category.Count  `json:"distribution"`
}

func runCategorize(cmd *cobra.Command, args []string) error {
	topics := args
	if categorizeFile != "" {
		fromFile, err := readTopics(categorizeFile)
		if err != nil {
			exitWithError(ExitDataError, "reading topics: %v", err)
		}
		topics = append(topics, fromFile...)
	}
	if len(topics) == 0 {
		exitWithError(ExitError, "no topics given; pass topics as arguments or use --file")
	}

	mapping, dist := category.Distribution(topics)

	if humanOutput {
		for _, t := range topics {
			outputHuman("%-48s %s\n", truncateString(t, 48), mapping[t])
		}
		outputHuman("\n")
		for _, c := range dist {
			outputHuman("%-36s %4d  %5.1f%%\n", c.Category, c.Topics, c.Percent)
		}
		return nil
	}
	return outputJSON(CategorizeResponse{Total: len(topics), Mapping: mapping, Distribution: dist})
}

// readTopics reads a JSON array of strings, falling back to one topic per
// non-blank line.
func readTopics(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var topics []string
		if err := json.Unmarshal(trimmed, &topics); err != nil {
			return nil, err
		}
		return topics, nil
	}

	var topics []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			topics = append(topics, line)
		}
	}
	return topics, sc.Err()
}
