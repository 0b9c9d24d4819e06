package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Constants for output formatting.
const (
	NameMaxLen     = 32 // Researcher name column in tables
	CategoryMaxLen = 28 // Category column in tables
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// mustOutputJSON writes v as JSON and exits if encoding fails.
func mustOutputJSON(v any) {
	if err := outputJSON(v); err != nil {
		exitWithError(ExitError, "encoding JSON: %v", err)
	}
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...any) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

// formatSlope renders a slope with an explicit sign, e.g. "+1.250/yr".
func formatSlope(slope float64) string {
	return fmt.Sprintf("%+.3f/yr", slope)
}

// formatPercentile renders an optional percentile, "n/a" when absent.
func formatPercentile(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *p)
}

// interruptedNote returns a suffix for summaries of interrupted runs.
func interruptedNote(interrupted bool) string {
	if interrupted {
		return " (interrupted)"
	}
	return ""
}

// joinOr returns strings.Join(items, sep), or fallback for an empty list.
func joinOr(items []string, sep, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, sep)
}
