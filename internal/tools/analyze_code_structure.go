package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/feature-replicator/internal/model"
	"github.com/HendryAvila/feature-replicator/internal/phpast"
	"github.com/HendryAvila/feature-replicator/internal/repo"
	"github.com/HendryAvila/feature-replicator/internal/sqlinfo"
)

// standardEntries caps each list of a standard-detail structure report.
const standardEntries = 20

// AnalyzeStructureTool handles the analyze_code_structure MCP tool.
// It runs the PHP syntax-tree analyzer over a file or an inline snippet.
type AnalyzeStructureTool struct {
	maxBytes int
}

// NewAnalyzeStructureTool creates an AnalyzeStructureTool. Sources longer
// than maxBytes are truncated before parsing; 0 disables the cap.
func NewAnalyzeStructureTool(maxBytes int) *AnalyzeStructureTool {
	return &AnalyzeStructureTool{maxBytes: maxBytes}
}

// Definition returns the MCP tool definition for registration.
func (t *AnalyzeStructureTool) Definition() mcp.Tool {
	return mcp.NewTool("analyze_code_structure",
		mcp.WithDescription(
			"Parse PHP code and report its structure: validations (if/switch), "+
				"calculations, error handling, state transitions, function calls and "+
				"variable assignments, each with its line number. "+
				"Pass either code or file. Invalid code returns empty lists with parse_error set.",
		),
		mcp.WithString("code",
			mcp.Description("PHP source to analyze. The <?php tag is optional."),
		),
		mcp.WithString("file",
			mcp.Description("PHP file to analyze, relative to path. Ignored when code is given."),
		),
		mcp.WithString("path",
			mcp.Description("Base directory for file. Defaults to the working directory."),
			mcp.DefaultString("."),
		),
		mcp.WithString("detail_level",
			mcp.Description("summary: counts only. standard: first 20 entries per list. full: everything."),
			mcp.Enum(DetailLevelValues()...),
			mcp.DefaultString(DetailStandard),
		),
	)
}

// Handle processes the analyze_code_structure tool call.
func (t *AnalyzeStructureTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	code, err := stringArg(args, "code", "", false)
	if err != nil {
		return toolError(err)
	}
	file, err := stringArg(args, "file", "", false)
	if err != nil {
		return toolError(err)
	}
	base, err := stringArg(args, "path", ".", false)
	if err != nil {
		return toolError(err)
	}
	level, err := stringArg(args, "detail_level", DetailStandard, false)
	if err != nil {
		return toolError(err)
	}
	level = ParseDetailLevel(level)

	source := code
	label := "inline code"
	if source == "" {
		if file == "" {
			return mcp.NewToolResultError("either 'code' or 'file' is required"), nil
		}
		full := filepath.Join(base, filepath.FromSlash(file))
		if info, statErr := os.Stat(full); statErr != nil || info.IsDir() {
			return mcp.NewToolResultError(fmt.Sprintf("file not found: %s", full)), nil
		}
		source, err = repo.ReadSource(full)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", full, err)
		}
		label = filepath.ToSlash(file)
	}
	if t.maxBytes > 0 {
		source = sqlinfo.Clip(source, t.maxBytes)
	}

	report := phpast.Analyze(ctx, []byte(source))

	switch level {
	case DetailSummary:
		return mcp.NewToolResultText(summarizeStructure(label, report) + SummaryFooter), nil
	case DetailFull:
		return structureResult(report, "")
	default:
		capped := report.Capped(standardEntries)
		return structureResult(capped, NavigationHint(capped.Len(), report.Len(), "Use detail_level: full for every entry."))
	}
}

func structureResult(report model.StructureReport, footer string) (*mcp.CallToolResult, error) {
	text, err := jsonText(report)
	if err != nil {
		return nil, err
	}
	text += footer + TokenFooter(EstimateTokens(text))
	return mcp.NewToolResultText(text), nil
}

// summarizeStructure renders the per-list counts of report.
func summarizeStructure(label string, report model.StructureReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Code structure: %s\n\n", label)
	if report.ParseError != "" {
		fmt.Fprintf(&sb, "Parse error: %s\n", report.ParseError)
		return sb.String()
	}
	fmt.Fprintf(&sb, "- Validations: %d\n", len(report.Validations))
	fmt.Fprintf(&sb, "- Calculations: %d\n", len(report.Calculations))
	fmt.Fprintf(&sb, "- Error handling: %d\n", len(report.ErrorHandling))
	fmt.Fprintf(&sb, "- State transitions: %d\n", len(report.StateTransitions))
	fmt.Fprintf(&sb, "- Function calls: %d\n", len(report.FunctionCalls))
	fmt.Fprintf(&sb, "- Variable assignments: %d\n", len(report.VariableAssignments))
	return sb.String()
}
