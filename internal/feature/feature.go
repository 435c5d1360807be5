// Package feature runs the two repository operations behind the tool
// surface: listing feature candidates (walk + per-language detection) and
// scanning one feature into a FeatureSpec (read entry files, extract,
// analyze, enrich). Both the MCP tools and the CLI call into a Service.
package feature

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/HendryAvila/feature-replicator/internal/config"
	"github.com/HendryAvila/feature-replicator/internal/lang"
	"github.com/HendryAvila/feature-replicator/internal/model"
	"github.com/HendryAvila/feature-replicator/internal/repo"
)

// Argument defaults and ranges shared by the tools and the CLI.
const (
	DefaultMaxFiles = 300
	MinMaxFiles     = 1
	MaxMaxFiles     = 5000

	DefaultMaxDepth = 4
	MinMaxDepth     = 1
	MaxMaxDepth     = 10
)

// FallbackLanguage is analyzed when neither the tech stack nor the entry
// file extensions name a language.
const FallbackLanguage = lang.CSharp

var (
	// ErrPathNotFound is returned when the repository path does not exist.
	ErrPathNotFound = errors.New("repository path does not exist")
	// ErrNoEntryFiles is returned when none of the entry files exist.
	ErrNoEntryFiles = errors.New("no valid entry files found")
	// ErrAllEntryFilesFailed is returned when every existing entry file
	// failed to read.
	ErrAllEntryFilesFailed = errors.New("all entry files failed to read")
)

// Service lists and scans features. It holds only read-only state and may
// be shared between calls.
type Service struct {
	cfg      *config.Config
	registry *lang.Registry
	logger   *slog.Logger
}

// NewService creates a Service. A nil logger discards output.
func NewService(cfg *config.Config, registry *lang.Registry, logger *slog.Logger) *Service {
	if cfg == nil {
		cfg = config.Default()
	}
	if registry == nil {
		registry = lang.NewRegistry(cfg)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{cfg: cfg, registry: registry, logger: logger}
}

// --- List ---

// ListRequest holds the list_features arguments.
type ListRequest struct {
	Path string
	// TechStack overrides the repository's descriptor when set.
	TechStack *model.TechStack
	MaxFiles  int
}

// ListResult is the list_features response.
type ListResult struct {
	Features          []model.FeatureCandidate `json:"features"`
	TechStack         model.TechStack          `json:"tech_stack"`
	ScannedPath       string                   `json:"scanned_path"`
	TotalFilesScanned int                      `json:"total_files_scanned"`
}

// List walks the repository and runs the detector of the stack's language.
// An unknown or unset language yields an empty list and a warning.
func (s *Service) List(ctx context.Context, req ListRequest) (*ListResult, error) {
	root := req.Path
	if root == "" {
		root = "."
	}
	if err := checkDir(root); err != nil {
		return nil, err
	}
	stack := s.resolveStack(root, req.TechStack)
	maxFiles := req.MaxFiles
	if maxFiles == 0 {
		maxFiles = DefaultMaxFiles
	}

	s.logger.Info("list_features", "path", root, "max_files", maxFiles, "language", stack.Language)

	result := &ListResult{
		Features:    []model.FeatureCandidate{},
		TechStack:   stack,
		ScannedPath: root,
	}

	l, ok := s.registry.Lookup(stack.Language)
	if !ok {
		s.logger.Warn("language not configured, nothing to detect",
			"language", stack.Language, "supported", strings.Join(s.registry.IDs(), ","))
		return result, nil
	}

	files, err := repo.Walk(ctx, root, repo.Options{
		Extensions:       l.Extensions,
		MaxFiles:         maxFiles,
		IgnoreDirs:       s.cfg.IgnoreDirs,
		RespectGitignore: s.cfg.RespectGitignore,
		Logger:           s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	s.logger.Info("files found", "count", len(files), "extensions", strings.Join(l.Extensions, ","))

	result.Features = l.Detect(lang.NewDetection(root, files, s.cfg, s.logger))
	result.TotalFilesScanned = len(files)

	s.logger.Info("list_features completed", "features", len(result.Features))
	return result, nil
}

// --- Scan ---

// ScanRequest holds the scan_feature arguments.
type ScanRequest struct {
	FeatureID  string
	EntryFiles []string
	Path       string
	// TechStack overrides the repository's descriptor when set.
	TechStack *model.TechStack
	// MaxDepth is accepted and logged. Analysis covers the entry files only.
	MaxDepth int
}

// entryFile is one entry file that exists under the scan root.
type entryFile struct {
	rel     string
	full    string
	content string
}

// Scan analyzes the entry files of one feature. Missing entry files and
// entries resolving outside the root are skipped with a warning; ErrNoEntryFiles is returned when none exist and
// ErrAllEntryFilesFailed when none of the existing ones can be read.
// A language without an analyzer yields a placeholder spec.
func (s *Service) Scan(ctx context.Context, req ScanRequest) (*model.FeatureSpec, error) {
	root := req.Path
	if root == "" {
		root = "."
	}
	stack := s.resolveStack(root, req.TechStack)
	maxDepth := req.MaxDepth
	if maxDepth == 0 {
		maxDepth = DefaultMaxDepth
	}

	s.logger.Info("scan_feature", "feature_id", req.FeatureID,
		"entry_files", len(req.EntryFiles), "max_depth", maxDepth)

	var existing []entryFile
	for _, rel := range req.EntryFiles {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if !insideRoot(root, full) {
			s.logger.Warn("entry file outside scan root", "file", rel, "root", root)
			continue
		}
		if _, err := os.Stat(full); err != nil {
			s.logger.Warn("entry file not found", "file", full)
			continue
		}
		existing = append(existing, entryFile{rel: filepath.ToSlash(rel), full: full})
	}
	if len(existing) == 0 {
		return nil, ErrNoEntryFiles
	}

	language := stack.NormalizedLanguage()
	if language == "" {
		language = s.languageFromExtension(existing[0].rel)
	}
	l, ok := s.registry.Lookup(language)
	if !ok {
		s.logger.Warn("no analyzer for language, returning placeholder spec", "language", language)
		return placeholderSpec(req.FeatureID, existing, language, stack), nil
	}

	var readable []entryFile
	for _, f := range existing {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", req.FeatureID, err)
		}
		content, err := repo.ReadSource(f.full)
		if err != nil {
			s.logger.Warn("skipping unreadable entry file", "file", f.rel, "error", err)
			continue
		}
		f.content = content
		readable = append(readable, f)
	}
	if len(readable) == 0 {
		return nil, fmt.Errorf("%w: %d file(s) under %s", ErrAllEntryFilesFailed, len(existing), root)
	}

	spec := s.analyze(ctx, l, req.FeatureID, readable, stack)
	s.logger.Info("scan_feature completed", "feature_id", req.FeatureID,
		"files", len(spec.FilesInvolved), "data_sources", len(spec.DataSources))
	return spec, nil
}

// languageFromExtension picks the registered language that claims rel's
// extension, else FallbackLanguage.
func (s *Service) languageFromExtension(rel string) string {
	ext := strings.ToLower(path.Ext(rel))
	for _, id := range s.registry.IDs() {
		l, _ := s.registry.Lookup(id)
		for _, e := range l.Extensions {
			if e == ext {
				return id
			}
		}
	}
	return FallbackLanguage
}

// placeholderSpec is returned for languages without an analyzer.
func placeholderSpec(id string, files []entryFile, language string, stack model.TechStack) *model.FeatureSpec {
	spec := &model.FeatureSpec{
		FeatureID:     id,
		Name:          "Detected feature (analysis not available)",
		DomainPurpose: fmt.Sprintf("Detailed analysis is not available for language %q", language),
		TechStack:     stack,
	}
	for _, f := range files {
		spec.FilesInvolved = append(spec.FilesInvolved, f.rel)
	}
	spec.Normalize()
	return spec
}

// --- Helpers ---

// resolveStack returns the caller's stack, else the repository descriptor,
// else an empty stack.
func (s *Service) resolveStack(root string, given *model.TechStack) model.TechStack {
	if given != nil && !given.IsZero() {
		return *given
	}
	stack, err := config.LoadTechStack(root)
	if err != nil {
		s.logger.Info("no tech stack descriptor", "path", config.TechStackPath(root), "reason", err)
		return model.TechStack{}
	}
	s.logger.Info("tech stack loaded", "language", stack.Language, "framework", stack.Framework)
	return stack
}

func checkDir(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPathNotFound, root)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrPathNotFound, root)
	}
	return nil
}

// insideRoot reports whether full, a path joined onto root, stays under it.
func insideRoot(root, full string) bool {
	rel, err := filepath.Rel(root, full)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
