// Package prompts implements MCP prompt handlers for the feature replicator.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ReplicatePrompt handles the replicate-feature MCP prompt.
// It walks the AI through list, scan and export for one legacy repository.
type ReplicatePrompt struct{}

// NewReplicatePrompt creates a ReplicatePrompt.
func NewReplicatePrompt() *ReplicatePrompt {
	return &ReplicatePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ReplicatePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("replicate-feature",
		mcp.WithPromptDescription(
			"Document a feature of a legacy repository so it can be rebuilt: "+
				"find the candidate features, scan the chosen one and export its "+
				"specification as Markdown.",
		),
		mcp.WithArgument("path",
			mcp.ArgumentDescription("Root of the legacy repository. Default: current directory"),
		),
		mcp.WithArgument("feature_id",
			mcp.ArgumentDescription("Feature to replicate. When omitted, list the candidates and ask"),
		),
		mcp.WithArgument("output_path",
			mcp.ArgumentDescription("Directory for the Markdown specification. Default: docs/features"),
		),
	)
}

// Handle processes the replicate-feature prompt request.
func (p *ReplicatePrompt) Handle(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	path := promptArg(req, "path", ".")
	featureID := promptArg(req, "feature_id", "")
	outputPath := promptArg(req, "output_path", "docs/features")

	pick := "3. Show me the candidates grouped by type and ask which one to replicate\n"
	if featureID != "" {
		pick = fmt.Sprintf("3. Pick the candidate with id '%s'; stop and tell me if it is not listed\n", featureID)
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Replicate a feature from %s", path),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to replicate a feature of the legacy repository at '%s'.\n\n"+
						"Please:\n"+
						"1. Run `list_exported_features` to see what was already documented\n"+
						"2. Run `list_features` with path='%s'\n"+
						"%s"+
						"4. Run `scan_feature` with the candidate's id and files\n"+
						"5. Review the data sources and business rules with me before exporting\n"+
						"6. Run `export_feature_markdown` with output_path='%s'",
					path, path, pick, outputPath,
				)),
			},
		},
	}, nil
}

// promptArg returns a prompt argument or def when it is absent or empty.
func promptArg(req mcp.GetPromptRequest, name, def string) string {
	if args := req.Params.Arguments; args != nil {
		if v, ok := args[name]; ok && v != "" {
			return v
		}
	}
	return def
}
