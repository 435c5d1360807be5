package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/feature-replicator/internal/feature"
)

// ScanFeatureTool handles the scan_feature MCP tool.
// It analyzes the entry files of one feature and returns its FeatureSpec.
type ScanFeatureTool struct {
	svc *feature.Service
}

// NewScanFeatureTool creates a ScanFeatureTool with its dependencies.
func NewScanFeatureTool(svc *feature.Service) *ScanFeatureTool {
	return &ScanFeatureTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *ScanFeatureTool) Definition() mcp.Tool {
	return mcp.NewTool("scan_feature",
		mcp.WithDescription(
			"Analyze the entry files of one feature and return its specification: "+
				"inputs, outputs, data sources (tables, columns, filters, joins), file system "+
				"operations, external services and business rules. PHP features are enriched "+
				"with process flow, business context, example scenarios and code insights. "+
				"Pass the result to export_feature_markdown to write it as Markdown.",
		),
		mcp.WithString("feature_id",
			mcp.Required(),
			mcp.Description("Feature identifier, usually the id returned by list_features."),
		),
		mcp.WithArray("entry_files",
			mcp.Required(),
			mcp.Description("Entry files of the feature, relative to path."),
			mcp.WithStringItems(),
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Repository root the entry files are relative to."),
		),
		mcp.WithObject("tech_stack",
			mcp.Description("Tech stack of the repository: {language, framework, databases}. "+
				"Overrides the descriptor file."),
			mcp.Properties(techStackSchema),
		),
		mcp.WithNumber("max_depth",
			mcp.Description("Call depth to follow (1-10). Analysis currently covers the entry files only."),
			mcp.Min(feature.MinMaxDepth),
			mcp.Max(feature.MaxMaxDepth),
			mcp.DefaultNumber(feature.DefaultMaxDepth),
		),
	)
}

// Handle processes the scan_feature tool call.
func (t *ScanFeatureTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	id, err := stringArg(args, "feature_id", "", true)
	if err != nil {
		return toolError(err)
	}
	entryFiles, err := stringListArg(args, "entry_files")
	if err != nil {
		return toolError(err)
	}
	path, err := stringArg(args, "path", "", true)
	if err != nil {
		return toolError(err)
	}
	stack, err := techStackArg(args)
	if err != nil {
		return toolError(err)
	}
	maxDepth, err := intArg(args, "max_depth", feature.DefaultMaxDepth, feature.MinMaxDepth, feature.MaxMaxDepth)
	if err != nil {
		return toolError(err)
	}

	spec, err := t.svc.Scan(ctx, feature.ScanRequest{
		FeatureID:  id,
		EntryFiles: entryFiles,
		Path:       path,
		TechStack:  stack,
		MaxDepth:   maxDepth,
	})
	switch {
	case errors.Is(err, feature.ErrNoEntryFiles), errors.Is(err, feature.ErrAllEntryFilesFailed):
		return mcp.NewToolResultError(err.Error()), nil
	case err != nil:
		return nil, fmt.Errorf("scanning feature %s: %w", id, err)
	}
	return jsonResult(spec)
}
