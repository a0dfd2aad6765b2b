// Package cli provides output writers for the findex command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sableworks/findex/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one result per line, for piping.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat maps a flag value to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch s {
	case "text", "":
		return OutputText, nil
	case "compact":
		return OutputCompact, nil
	case "json":
		return OutputJSON, nil
	default:
		return OutputText, fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

// WriteSearchResults writes consolidated search results to w in the given
// format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		for _, result := range response.Results {
			fmt.Fprintf(w, "%.4f\t%s\t%s\n", result.Score, result.MatchType, result.FilePath)
		}
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	if response.Metrics != nil {
		fmt.Fprintf(w, "\nFound %d results in %dms\n\n", response.Total, response.Metrics.TotalTime.Milliseconds())
	} else {
		fmt.Fprintf(w, "\nFound %d results\n\n", response.Total)
	}
	if response.Status != "" && response.Status != "ok" {
		fmt.Fprintf(w, "Status: %s\n\n", response.Status)
	}
	for i, result := range response.Results {
		writeOneResult(w, i+1, result)
	}
}

func writeOneResult(w io.Writer, rank int, result *models.ConsolidatedResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Rank: %d | Score: %.4f | Match: %s\n", rank, result.Score, result.MatchType)
	fmt.Fprintf(w, "File: %s\n", result.FilePath)
	if levels := result.Metadata[models.MetaSearchLevels]; levels != "" {
		fmt.Fprintf(w, "Levels: %s\n", levels)
	}
	if len(result.EntityMatches) > 0 {
		fmt.Fprintf(w, "Entities: %s\n", strings.Join(result.EntityMatches, ", "))
	}
	for _, snippet := range result.Snippets {
		fmt.Fprintf(w, "  • %s\n", snippet)
	}
	fmt.Fprintln(w)
}

// WriteAnswer writes an answer with its search metadata to w.
func WriteAnswer(w io.Writer, result *models.AnswerResult, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Fprintf(w, "\n%s\n\n", result.Answer)
	fmt.Fprintf(w, "Searched %d file(s) via %s; top score %.2f; %d generation call(s)\n",
		result.ResultCount, strings.Join(result.SearchTypes, ", "), result.TopScore, result.GenerateCalls)
	for _, f := range result.RelevantFiles {
		fmt.Fprintf(w, "  %.4f  %s\n", f.Score, f.FileName)
	}
	return nil
}
