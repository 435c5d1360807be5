package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/feature-replicator/internal/feature"
)

// ListFeaturesTool handles the list_features MCP tool.
// It walks a repository and returns the feature candidates found by the
// detector of the repository's language.
type ListFeaturesTool struct {
	svc *feature.Service
}

// NewListFeaturesTool creates a ListFeaturesTool with its dependencies.
func NewListFeaturesTool(svc *feature.Service) *ListFeaturesTool {
	return &ListFeaturesTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *ListFeaturesTool) Definition() mcp.Tool {
	return mcp.NewTool("list_features",
		mcp.WithDescription(
			"List the candidate features of a legacy repository: controllers, pages, "+
				"services, scripts and other units that look like user-facing functionality. "+
				"The language comes from tech_stack, or from docs/TECH_STACK_STATUS.json "+
				"under path when tech_stack is omitted. "+
				"Use scan_feature on a candidate's files to get its full specification.",
		),
		mcp.WithString("path",
			mcp.Description("Repository root to scan. Defaults to the working directory."),
			mcp.DefaultString("."),
		),
		mcp.WithObject("tech_stack",
			mcp.Description("Tech stack of the repository: {language, framework, databases}. "+
				"Overrides the descriptor file."),
			mcp.Properties(techStackSchema),
		),
		mcp.WithNumber("max_files",
			mcp.Description("Maximum number of source files to scan (1-5000)."),
			mcp.Min(feature.MinMaxFiles),
			mcp.Max(feature.MaxMaxFiles),
			mcp.DefaultNumber(feature.DefaultMaxFiles),
		),
	)
}

// Handle processes the list_features tool call.
func (t *ListFeaturesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	path, err := stringArg(args, "path", ".", false)
	if err != nil {
		return toolError(err)
	}
	stack, err := techStackArg(args)
	if err != nil {
		return toolError(err)
	}
	maxFiles, err := intArg(args, "max_files", feature.DefaultMaxFiles, feature.MinMaxFiles, feature.MaxMaxFiles)
	if err != nil {
		return toolError(err)
	}

	result, err := t.svc.List(ctx, feature.ListRequest{
		Path:      path,
		TechStack: stack,
		MaxFiles:  maxFiles,
	})
	if errors.Is(err, feature.ErrPathNotFound) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing features: %w", err)
	}
	return jsonResult(result)
}
