package feature

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/HendryAvila/feature-replicator/internal/model"
	"github.com/HendryAvila/feature-replicator/internal/templates"
)

var (
	nameWhitespace = regexp.MustCompile(`\s+`)
	nameDisallowed = regexp.MustCompile(`[^a-zA-Z0-9_]`)
	idSeparators   = strings.NewReplacer("/", "-", `\`, "-")
)

// ExportResult is the export_feature_markdown response.
type ExportResult struct {
	FilePath string `json:"file_path"`
	FileName string `json:"file_name"`
	Success  bool   `json:"success"`
}

// ExportFileName returns "{feature_id}_{sanitized name}.md", using
// "feature" and "spec" for missing values. Path separators in the id
// become dashes.
func ExportFileName(spec *model.FeatureSpec) string {
	id := spec.FeatureID
	if id == "" {
		id = "feature"
	}
	id = idSeparators.Replace(id)
	name := spec.Name
	if name == "" {
		name = "spec"
	}
	name = nameWhitespace.ReplaceAllString(name, "_")
	name = nameDisallowed.ReplaceAllString(name, "")
	return id + "_" + name + ".md"
}

// Export renders spec as Markdown into dir, creating dir when absent.
func Export(r templates.Renderer, spec *model.FeatureSpec, dir string) (*ExportResult, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	md, err := r.Render(templates.FeatureSpec, templates.NewFeatureData(spec))
	if err != nil {
		return nil, fmt.Errorf("rendering feature spec: %w", err)
	}

	name := ExportFileName(spec)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", name, err)
	}
	return &ExportResult{FilePath: path, FileName: name, Success: true}, nil
}
