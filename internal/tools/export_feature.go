package tools

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/feature-replicator/internal/catalog"
	"github.com/HendryAvila/feature-replicator/internal/feature"
	"github.com/HendryAvila/feature-replicator/internal/model"
	"github.com/HendryAvila/feature-replicator/internal/templates"
)

// ExportRecorder records successful exports. *catalog.Store satisfies it.
type ExportRecorder interface {
	Record(spec *model.FeatureSpec, filePath string) (*catalog.Entry, error)
}

// ExportFeatureTool handles the export_feature_markdown MCP tool.
type ExportFeatureTool struct {
	renderer templates.Renderer
	recorder ExportRecorder
	logger   *slog.Logger
}

// NewExportFeatureTool creates an ExportFeatureTool. A nil recorder
// disables the export catalog.
func NewExportFeatureTool(renderer templates.Renderer, recorder ExportRecorder, logger *slog.Logger) *ExportFeatureTool {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ExportFeatureTool{renderer: renderer, recorder: recorder, logger: logger}
}

// Definition returns the MCP tool definition for registration.
func (t *ExportFeatureTool) Definition() mcp.Tool {
	return mcp.NewTool("export_feature_markdown",
		mcp.WithDescription(
			"Write a feature specification returned by scan_feature as a Markdown "+
				"document named {feature_id}_{name}.md inside output_path. "+
				"The directory is created when it does not exist.",
		),
		mcp.WithObject("feature_spec",
			mcp.Required(),
			mcp.Description("The FeatureSpec object returned by scan_feature."),
		),
		mcp.WithString("output_path",
			mcp.Required(),
			mcp.Description("Directory to write the Markdown file into."),
		),
	)
}

// Handle processes the export_feature_markdown tool call.
func (t *ExportFeatureTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	var spec model.FeatureSpec
	present, err := objectArg(args, "feature_spec", &spec)
	if err != nil {
		return toolError(err)
	}
	if !present {
		return mcp.NewToolResultError("'feature_spec' is required"), nil
	}
	outputPath, err := stringArg(args, "output_path", "", true)
	if err != nil {
		return toolError(err)
	}

	result, err := feature.Export(t.renderer, &spec, outputPath)
	if err != nil {
		return nil, fmt.Errorf("exporting feature %s: %w", spec.FeatureID, err)
	}
	t.logger.Info("feature exported", "feature_id", spec.FeatureID, "file", result.FilePath)

	if t.recorder != nil {
		if _, err := t.recorder.Record(&spec, result.FilePath); err != nil {
			t.logger.Warn("export not recorded in catalog", "file", result.FilePath, "error", err)
		}
	}
	return jsonResult(result)
}
