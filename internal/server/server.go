// Package server wires all MCP components and creates the server instance.
//
// This is the composition root (DIP): it creates concrete implementations
// and injects them into the tools/prompts/resources that depend on abstractions.
// No business logic lives here, only wiring.
package server

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/feature-replicator/internal/catalog"
	"github.com/HendryAvila/feature-replicator/internal/config"
	"github.com/HendryAvila/feature-replicator/internal/feature"
	"github.com/HendryAvila/feature-replicator/internal/lang"
	"github.com/HendryAvila/feature-replicator/internal/prompts"
	"github.com/HendryAvila/feature-replicator/internal/resources"
	"github.com/HendryAvila/feature-replicator/internal/templates"
	"github.com/HendryAvila/feature-replicator/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function closes the catalog database and must be
// called on shutdown. It is always non-nil and safe to call even if the
// catalog failed to open.
func New(cfg *config.Config, logger *slog.Logger) (*server.MCPServer, func(), error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	// --- Create shared dependencies ---

	registry := lang.NewRegistry(cfg)
	svc := feature.NewService(cfg, registry, logger)

	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, noop, fmt.Errorf("creating template renderer: %w", err)
	}

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"feature-replicator",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register analysis tools ---

	listTool := tools.NewListFeaturesTool(svc)
	s.AddTool(listTool.Definition(), listTool.Handle)

	scanTool := tools.NewScanFeatureTool(svc)
	s.AddTool(scanTool.Definition(), scanTool.Handle)

	structureTool := tools.NewAnalyzeStructureTool(cfg.MaxContentBytes)
	s.AddTool(structureTool.Definition(), structureTool.Handle)

	// --- Register export tools ---
	//
	// The catalog is an independent subsystem: if it fails to open, the
	// export tool still writes Markdown and simply skips recording.

	cleanup := noop
	var (
		recorder tools.ExportRecorder
		lister   tools.ExportLister
		exports  resources.ExportLister
	)
	store, catErr := catalog.New(catalog.Config{DataDir: cfg.CatalogDir})
	if catErr != nil {
		logger.Warn("export catalog disabled", "dir", cfg.CatalogDir, "error", catErr)
	} else {
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Warn("catalog close", "error", err)
			}
		}
		recorder, lister, exports = store, store, store
	}

	exportTool := tools.NewExportFeatureTool(renderer, recorder, logger)
	s.AddTool(exportTool.Definition(), exportTool.Handle)

	listExportedTool := tools.NewListExportedTool(lister)
	s.AddTool(listExportedTool.Definition(), listExportedTool.Handle)

	// --- Register prompts ---

	replicatePrompt := prompts.NewReplicatePrompt()
	s.AddPrompt(replicatePrompt.Definition(), replicatePrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(registry, exports)
	s.AddResource(resourceHandler.LanguagesResource(), resourceHandler.HandleLanguages)
	s.AddResource(resourceHandler.ExportsResource(), resourceHandler.HandleExports)

	logger.Info("server ready", "version", Version,
		"languages", len(registry.IDs()), "catalog", catErr == nil)
	return s, cleanup, nil
}

// noop is a no-op cleanup function used when the catalog is disabled.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use the replicator.
func serverInstructions() string {
	return `You have access to feature-replicator, an MCP server that documents features of legacy codebases (C#, Java, PHP, Python, JavaScript/TypeScript) so they can be rebuilt on a new stack.

## WORKFLOW

1. list_features(path): find candidate features. The language comes from tech_stack or from docs/TECH_STACK_STATUS.json in the repository.
2. scan_feature(feature_id, entry_files, path): build the feature specification: inputs, outputs, data sources, file system operations, external services and business rules.
3. export_feature_markdown(feature_spec, output_path): write the specification as Markdown.

## OTHER TOOLS

- analyze_code_structure(code | file): validations, calculations, error handling and state transitions of PHP code.
- list_exported_features(): what was already exported, newest first.

## RULES

- Pass the scan_feature result to export_feature_markdown unchanged.
- Data sources come from literal SQL in the code. Queries built at runtime are not visible; say so when a feature has none.
- Check list_exported_features before scanning to avoid duplicate work.`
}
