// feature-replicator: legacy feature extraction MCP server
//
// Scans legacy codebases for candidate features and extracts their
// specification (inputs, outputs, SQL data sources, side effects and
// business rules) so an AI coding tool can rebuild them on a new stack.
//
// Usage:
//
//	feature-replicator serve     # Start MCP server (stdio transport)
//	feature-replicator list .    # Print candidate features as JSON
package main

import "github.com/HendryAvila/feature-replicator/internal/cli"

func main() {
	cli.Execute()
}
