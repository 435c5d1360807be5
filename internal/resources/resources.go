// Package resources implements MCP resource handlers for the feature
// replicator.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (replicator://...) following MCP conventions.
package resources

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/feature-replicator/internal/catalog"
	"github.com/HendryAvila/feature-replicator/internal/lang"
)

// Resource URIs.
const (
	LanguagesURI = "replicator://config/languages"
	ExportsURI   = "replicator://catalog/exports"
)

// ExportLister reads the export catalog. *catalog.Store satisfies it.
type ExportLister interface {
	List(featureID string, limit int) ([]catalog.Entry, error)
}

// Handler manages replicator resource endpoints.
type Handler struct {
	registry *lang.Registry
	exports  ExportLister
}

// NewHandler creates a resource Handler. A nil exports lister makes the
// exports resource report that the catalog is unavailable.
func NewHandler(registry *lang.Registry, exports ExportLister) *Handler {
	return &Handler{registry: registry, exports: exports}
}

// LanguageInfo describes one supported language.
type LanguageInfo struct {
	ID         string   `json:"id"`
	Extensions []string `json:"extensions"`
	Framework  string   `json:"framework,omitempty"`
	Enriched   bool     `json:"enriched"`
}

// LanguagesResource returns the MCP resource definition for the language list.
func (h *Handler) LanguagesResource() mcp.Resource {
	return mcp.NewResource(
		LanguagesURI,
		"Supported Languages",
		mcp.WithResourceDescription("Languages the replicator can detect and analyze, with their file extensions"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleLanguages returns the configured languages as JSON.
func (h *Handler) HandleLanguages(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	infos := []LanguageInfo{}
	for _, id := range h.registry.IDs() {
		l, ok := h.registry.Lookup(id)
		if !ok {
			continue
		}
		infos = append(infos, LanguageInfo{
			ID:         l.ID,
			Extensions: l.Extensions,
			Framework:  l.Framework,
			Enriched:   l.Enrich,
		})
	}
	return jsonResource(req.Params.URI, infos)
}

// ExportsResource returns the MCP resource definition for recent exports.
func (h *Handler) ExportsResource() mcp.Resource {
	return mcp.NewResource(
		ExportsURI,
		"Exported Features",
		mcp.WithResourceDescription("The most recent feature specifications written as Markdown"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleExports returns the most recent catalog entries as JSON.
func (h *Handler) HandleExports(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if h.exports == nil {
		return errorResource(req.Params.URI, "export catalog is not available"), nil
	}
	entries, err := h.exports.List("", catalog.DefaultListLimit)
	if err != nil {
		return nil, fmt.Errorf("listing exports: %w", err)
	}
	return jsonResource(req.Params.URI, entries)
}
