package cli

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	rserver "github.com/HendryAvila/feature-replicator/internal/server"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: `Start the MCP server on stdin/stdout.

Add it to your AI tool's MCP config:

  {
    "mcpServers": {
      "feature-replicator": {
        "command": "feature-replicator",
        "args": ["serve"]
      }
    }
  }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, closeLog, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			s, cleanup, err := rserver.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			defer cleanup()

			// stdout belongs to the protocol; logs go to stderr or the log file.
			return server.ServeStdio(s)
		},
	}
}
