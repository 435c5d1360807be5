// detail.go provides the detail_level parameter shared by the read-heavy
// tools (analyze_code_structure, list_exported_features).
//
// Three verbosity levels enable progressive disclosure:
//   - summary: counts and identifiers only
//   - standard: default, the most relevant entries
//   - full: the complete structured payload
package tools

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Detail level constants.
const (
	DetailSummary  = "summary"
	DetailStandard = "standard"
	DetailFull     = "full"
)

// DetailLevelValues returns the enum values for MCP tool definitions.
func DetailLevelValues() []string {
	return []string{DetailSummary, DetailStandard, DetailFull}
}

// ParseDetailLevel normalizes a detail_level string, defaulting to
// "standard" for empty or unrecognized values.
func ParseDetailLevel(s string) string {
	switch s {
	case DetailSummary, DetailFull:
		return s
	default:
		return DetailStandard
	}
}

// SummaryFooter is appended to summary-mode responses.
const SummaryFooter = "\n---\nUse detail_level: standard or full for more detail."

// NavigationHint returns a one-line footer when results are capped by a
// limit. It is empty when everything fits or total is 0.
func NavigationHint(showing, total int, hint string) string {
	if total <= 0 || showing >= total {
		return ""
	}
	if hint != "" {
		return fmt.Sprintf("\nShowing %d of %d. %s", showing, total, hint)
	}
	return fmt.Sprintf("\nShowing %d of %d.", showing, total)
}

// EstimateTokens approximates the token count of text with the chars/4
// heuristic. Non-empty text counts at least 1.
func EstimateTokens(text string) int {
	n := len(text)
	if n == 0 {
		return 0
	}
	if n/4 == 0 {
		return 1
	}
	return n / 4
}

// TokenFooter returns a one-line footer with the estimated token count.
func TokenFooter(estimatedTokens int) string {
	return fmt.Sprintf("\n~%s tokens", humanize.Comma(int64(estimatedTokens)))
}
