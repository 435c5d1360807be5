package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the replication-status MCP prompt.
// It instructs the AI to summarize what has been exported so far.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("replication-status",
		mcp.WithPromptDescription(
			"Summarize the features already exported as Markdown specifications "+
				"and the tables they touch.",
		),
	)
}

// Handle processes the replication-status prompt request.
func (p *StatusPrompt) Handle(_ context.Context, _ mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Feature Replication Status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `list_exported_features` with detail_level='standard'.\n\n" +
						"Then:\n" +
						"1. List the exported features with where their Markdown lives\n" +
						"2. Point out tables shared by more than one feature\n" +
						"3. Suggest which feature to replicate next",
				),
			},
		},
	}, nil
}
