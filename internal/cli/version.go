package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	rserver "github.com/HendryAvila/feature-replicator/internal/server"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "feature-replicator v%s\n", rserver.Version)
		},
	}
}
