package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/feature-replicator/internal/catalog"
)

// ExportLister reads the export catalog. *catalog.Store satisfies it.
type ExportLister interface {
	List(featureID string, limit int) ([]catalog.Entry, error)
	Count(featureID string) (int, error)
}

// maxListLimit bounds the limit argument of list_exported_features.
const maxListLimit = 200

// ListExportedTool handles the list_exported_features MCP tool.
type ListExportedTool struct {
	lister ExportLister
}

// NewListExportedTool creates a ListExportedTool. A nil lister makes the
// tool report that the catalog is unavailable.
func NewListExportedTool(lister ExportLister) *ListExportedTool {
	return &ListExportedTool{lister: lister}
}

// Definition returns the MCP tool definition for registration.
func (t *ListExportedTool) Definition() mcp.Tool {
	return mcp.NewTool("list_exported_features",
		mcp.WithDescription(
			"List the feature specifications already exported with export_feature_markdown, "+
				"newest first: file location, tables touched and export time. "+
				"Use it to avoid replicating the same feature twice.",
		),
		mcp.WithString("feature_id",
			mcp.Description("Only list exports of this feature."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum entries to return (1-200)."),
			mcp.Min(1),
			mcp.Max(maxListLimit),
			mcp.DefaultNumber(catalog.DefaultListLimit),
		),
		mcp.WithString("detail_level",
			mcp.Description("summary: one line per export. standard: adds files and tables. full: JSON entries."),
			mcp.Enum(DetailLevelValues()...),
			mcp.DefaultString(DetailStandard),
		),
	)
}

// Handle processes the list_exported_features tool call.
func (t *ListExportedTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.lister == nil {
		return mcp.NewToolResultError("the export catalog is not available; check the server log"), nil
	}
	args := req.GetArguments()

	featureID, err := stringArg(args, "feature_id", "", false)
	if err != nil {
		return toolError(err)
	}
	limit, err := intArg(args, "limit", catalog.DefaultListLimit, 1, maxListLimit)
	if err != nil {
		return toolError(err)
	}
	level, err := stringArg(args, "detail_level", DetailStandard, false)
	if err != nil {
		return toolError(err)
	}
	level = ParseDetailLevel(level)

	entries, err := t.lister.List(featureID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing exports: %w", err)
	}
	total, err := t.lister.Count(featureID)
	if err != nil {
		return nil, fmt.Errorf("counting exports: %w", err)
	}

	if len(entries) == 0 {
		if featureID != "" {
			return mcp.NewToolResultText(fmt.Sprintf("No exports recorded for feature %q.", featureID)), nil
		}
		return mcp.NewToolResultText("No exports recorded yet."), nil
	}

	hint := NavigationHint(len(entries), total, "Increase limit to see older exports.")
	if level == DetailFull {
		text, err := jsonText(entries)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(text + hint + TokenFooter(EstimateTokens(text))), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Exported features (%d)\n\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(&sb, "- **%s** %s (%s)\n", e.FeatureID, e.Name, humanize.Time(e.ExportedAt))
		if level == DetailStandard {
			fmt.Fprintf(&sb, "  - File: %s\n", e.FilePath)
			if len(e.Tables) > 0 {
				fmt.Fprintf(&sb, "  - Tables: %s\n", strings.Join(e.Tables, ", "))
			}
		}
	}
	sb.WriteString(hint)
	if level == DetailSummary {
		sb.WriteString(SummaryFooter)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
