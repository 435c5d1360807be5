package lang

import (
	"path"
	"regexp"
	"strings"

	"github.com/HendryAvila/feature-replicator/internal/model"
)

var (
	phpControllerClass = regexp.MustCompile(`\bclass\s+\w+Controller\b`)
	phpModel           = regexp.MustCompile(`\bextends\s+Model\b|\buse\s+HasFactory\b`)
	phpClass           = regexp.MustCompile(`(?mi)^\s*(?:abstract\s+|final\s+)?class\s+\w+`)
	phpFunction        = regexp.MustCompile(`(?i)\bfunction\s+\w+\s*\(`)
	phpSQLAPI          = regexp.MustCompile(`(?i)\bmysqli_\w+\s*\(|\bmysql_query\s*\(|\bnew\s+PDO\b|->prepare\s*\(|->query\s*\(|\bodbc_\w+\s*\(|\bsqlsrv_\w+\s*\(|\bpg_query\s*\(`)
	phpRequestRead     = regexp.MustCompile(`\$_(?:GET|POST|REQUEST)\s*\[`)
)

// detectPHP runs the framework passes (controllers, models, services)
// followed by the legacy passes: files under the configured legacy
// directories are classified by content, and any remaining script that
// reads request parameters is a page endpoint.
func detectPHP(d *Detection) []model.FeatureCandidate {
	set := newCandidateSet()

	// Controllers.
	for _, f := range d.Files {
		if !strings.Contains(path.Base(f.RelativePath), "Controller") && !inDir(f.RelativePath, "Controllers") {
			continue
		}
		content, ok := d.Read(f)
		if !ok || !phpControllerClass.MatchString(content) {
			continue
		}
		set.addIfUnclaimed(phpCandidate("controller", model.TypeEndpoint, "PHP Controller", f.RelativePath))
	}

	// Eloquent models.
	for _, f := range d.Files {
		if !inDir(f.RelativePath, "Models") && !inDir(f.RelativePath, "app") {
			continue
		}
		content, ok := d.Read(f)
		if !ok || !phpModel.MatchString(content) {
			continue
		}
		set.addIfUnclaimed(phpCandidate("model", model.TypeDataAccess, "PHP Model", f.RelativePath))
	}

	// Services are recognized by location or name alone.
	for _, f := range d.Files {
		if !inDir(f.RelativePath, "Services") && !strings.Contains(path.Base(f.RelativePath), "Service") {
			continue
		}
		set.addIfUnclaimed(phpCandidate("service", model.TypeBusinessLogic, "PHP Service", f.RelativePath))
	}

	// Legacy include directories.
	for _, f := range d.Files {
		if !inAnyDir(f.RelativePath, d.Config.Legacy.LegacyDirs) {
			continue
		}
		content, ok := d.Read(f)
		if !ok {
			continue
		}
		var c model.FeatureCandidate
		switch {
		case phpSQLAPI.MatchString(content):
			c = phpLegacyCandidate(model.TypeDataAccess, "Legacy data access", f.RelativePath)
		case phpClass.MatchString(content):
			c = phpLegacyCandidate(model.TypeBusinessLogic, "Legacy class", f.RelativePath)
		case phpFunction.MatchString(content):
			c = phpLegacyCandidate(model.TypeUtility, "Legacy function library", f.RelativePath)
		default:
			continue
		}
		set.addIfUnclaimed(c)
	}

	// Legacy pages.
	for _, f := range d.Files {
		content, ok := d.Read(f)
		if !ok || !phpRequestRead.MatchString(content) {
			continue
		}
		set.addIfUnclaimed(model.FeatureCandidate{
			ID:          "php-page-" + slug(f.RelativePath),
			Type:        model.TypeEndpoint,
			Language:    PHP,
			Files:       []string{f.RelativePath},
			Description: "PHP page: " + f.RelativePath,
		})
	}

	d.Logger.Info("detected features", "language", PHP, "count", len(set.list))
	return set.candidates()
}

func phpCandidate(kind, typ, label, rel string) model.FeatureCandidate {
	name := stem(rel)
	return model.FeatureCandidate{
		ID:          "php-" + kind + "-" + strings.ToLower(name),
		Type:        typ,
		Language:    PHP,
		Files:       []string{rel},
		Description: label + ": " + name,
	}
}

func phpLegacyCandidate(typ, label, rel string) model.FeatureCandidate {
	return model.FeatureCandidate{
		ID:          "php-legacy-" + slug(rel),
		Type:        typ,
		Language:    PHP,
		Files:       []string{rel},
		Description: label + ": " + rel,
		Metadata:    map[string]any{"legacy": true},
	}
}

func inAnyDir(rel string, dirs []string) bool {
	for _, dir := range dirs {
		if inDir(rel, dir) {
			return true
		}
	}
	return false
}
