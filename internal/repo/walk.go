// Package repo enumerates source files under a repository root and reads
// them back as text.
//
// Walk visits directories depth-first in lexical order so that repeated
// scans of an unchanged tree return identical results.
package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/HendryAvila/feature-replicator/internal/model"
)

// DefaultMaxDepth bounds recursion below the scan root.
const DefaultMaxDepth = 10

// DefaultIgnoreDirs are never descended into.
var DefaultIgnoreDirs = []string{
	"node_modules", "bin", "obj", ".git", ".svn", ".hg", ".vs", ".idea",
	".vscode", "packages", "vendor", "__pycache__", "venv", ".venv",
}

// Options controls a Walk.
type Options struct {
	// Extensions is the allow-list, matched case-insensitively.
	Extensions []string
	// MaxFiles stops the walk once reached. Zero means unlimited.
	MaxFiles int
	// MaxDepth is the deepest directory level visited. Zero means DefaultMaxDepth.
	MaxDepth int
	// IgnoreDirs replaces DefaultIgnoreDirs when non-nil.
	IgnoreDirs []string
	// RespectGitignore skips paths matched by the root .gitignore.
	RespectGitignore bool
	Logger           *slog.Logger
}

// Walk returns the files under root whose extension is allowed.
// Unreadable directories are logged and skipped; only a failure on root
// itself or a cancelled context aborts the walk.
func Walk(ctx context.Context, root string, opts Options) ([]model.FileRef, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	ignoreDirs := opts.IgnoreDirs
	if ignoreDirs == nil {
		ignoreDirs = DefaultIgnoreDirs
	}
	skip := make(map[string]bool, len(ignoreDirs))
	for _, d := range ignoreDirs {
		skip[d] = true
	}
	exts := make(map[string]bool, len(opts.Extensions))
	for _, e := range opts.Extensions {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}

	var gi *ignore.GitIgnore
	if opts.RespectGitignore {
		gi = loadGitignore(root, logger)
	}

	files := []model.FileRef{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if rel == "." {
			return nil
		}
		slashRel := filepath.ToSlash(rel)

		if d.IsDir() {
			if skip[d.Name()] {
				return filepath.SkipDir
			}
			if strings.Count(slashRel, "/")+1 > maxDepth {
				return filepath.SkipDir
			}
			if gi != nil && (gi.MatchesPath(slashRel) || gi.MatchesPath(slashRel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}

		if !exts[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}
		if gi != nil && gi.MatchesPath(slashRel) {
			return nil
		}

		files = append(files, model.FileRef{FullPath: path, RelativePath: slashRel})
		if opts.MaxFiles > 0 && len(files) >= opts.MaxFiles {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

func loadGitignore(root string, logger *slog.Logger) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("cannot stat .gitignore", "path", path, "error", err)
		}
		return nil
	}
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		logger.Warn("cannot parse .gitignore", "path", path, "error", err)
		return nil
	}
	return gi
}
