package lang

import (
	"path"
	"regexp"
	"strings"

	"github.com/HendryAvila/feature-replicator/internal/model"
)

var (
	pythonDef   = regexp.MustCompile(`(?m)^[ \t]*(?:async[ \t]+)?def[ \t]+(\w+)\s*\(`)
	pythonClass = regexp.MustCompile(`(?m)^class[ \t]+(\w+)\s*[(:]`)
	pythonRoute = regexp.MustCompile(`(?m)^[ \t]*@(?:app|router|api|bp|blueprint)\.(?:get|post|put|delete|patch|route)\b`)
)

// detectPython reports Django view functions and model classes one per
// symbol, then Flask/FastAPI route modules one per file.
func detectPython(d *Detection) []model.FeatureCandidate {
	set := newCandidateSet()

	// Views.
	for _, f := range d.Files {
		if path.Base(f.RelativePath) != "views.py" && !inDir(f.RelativePath, "views") {
			continue
		}
		content, ok := d.Read(f)
		if !ok {
			continue
		}
		for _, m := range pythonDef.FindAllStringSubmatch(content, -1) {
			name := m[1]
			if strings.HasPrefix(name, "_") {
				continue
			}
			set.addSymbol(model.FeatureCandidate{
				ID:          "python-view-" + strings.ToLower(name),
				Type:        model.TypeEndpoint,
				Language:    Python,
				Files:       []string{f.RelativePath},
				Description: "Python View: " + name,
			}, name)
		}
	}

	// Models.
	for _, f := range d.Files {
		if path.Base(f.RelativePath) != "models.py" {
			continue
		}
		content, ok := d.Read(f)
		if !ok {
			continue
		}
		for _, m := range pythonClass.FindAllStringSubmatch(content, -1) {
			name := m[1]
			if name == "Meta" {
				continue
			}
			set.addSymbol(model.FeatureCandidate{
				ID:          "python-model-" + strings.ToLower(name),
				Type:        model.TypeDataAccess,
				Language:    Python,
				Files:       []string{f.RelativePath},
				Description: "Python Model: " + name,
			}, name)
		}
	}

	// Route modules.
	for _, f := range d.Files {
		content, ok := d.Read(f)
		if !ok || !pythonRoute.MatchString(content) {
			continue
		}
		name := stem(f.RelativePath)
		set.addIfUnclaimed(model.FeatureCandidate{
			ID:          "python-api-" + strings.ToLower(name),
			Type:        model.TypeEndpoint,
			Language:    Python,
			Files:       []string{f.RelativePath},
			Description: "Python API: " + name,
		})
	}

	d.Logger.Info("detected features", "language", Python, "count", len(set.list))
	return set.candidates()
}
