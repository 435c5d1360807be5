package lang

import (
	"path"
	"regexp"
	"strings"

	"github.com/HendryAvila/feature-replicator/internal/model"
)

var (
	jsRouteCall  = regexp.MustCompile(`\b(?:app|router)\.(?:get|post|put|delete|patch|use)\s*\(`)
	jsRoutePath  = regexp.MustCompile("\\b(?:app|router)\\.(get|post|put|delete|patch)\\s*\\(\\s*['\"`]([^'\"`]+)['\"`]")
	jsController = regexp.MustCompile(`\bclass\s+\w+Controller\b|\bexport\b[^\n]*Controller|@Controller\b`)
	jsModel      = regexp.MustCompile(`\bsequelize\.define\s*\(|\bnew\s+(?:mongoose\.)?Schema\b|@Entity\b|\bModel\.init\s*\(|\bmongoose\.model\s*\(`)
)

// detectJavaScript serves both JavaScript and TypeScript. The candidate
// language follows the file extension.
func detectJavaScript(d *Detection) []model.FeatureCandidate {
	set := newCandidateSet()

	// Express routes.
	for _, f := range d.Files {
		content, ok := d.Read(f)
		if !ok || !jsRouteCall.MatchString(content) {
			continue
		}
		c := jsCandidate("route", model.TypeEndpoint, "Express Route", f.RelativePath)
		if routes := jsRoutes(content); len(routes) > 0 {
			c.Metadata = map[string]any{"routes": routes}
		}
		set.addIfUnclaimed(c)
	}

	// Controllers.
	for _, f := range d.Files {
		if !strings.Contains(strings.ToLower(f.RelativePath), "controller") {
			continue
		}
		content, ok := d.Read(f)
		if !ok || !jsController.MatchString(content) {
			continue
		}
		set.addIfUnclaimed(jsCandidate("controller", model.TypeEndpoint, "Controller", f.RelativePath))
	}

	// Services are recognized by path alone.
	for _, f := range d.Files {
		if !strings.Contains(strings.ToLower(f.RelativePath), "service") {
			continue
		}
		set.addIfUnclaimed(jsCandidate("service", model.TypeBusinessLogic, "Service", f.RelativePath))
	}

	// ORM models.
	for _, f := range d.Files {
		if !strings.Contains(strings.ToLower(f.RelativePath), "model") {
			continue
		}
		content, ok := d.Read(f)
		if !ok || !jsModel.MatchString(content) {
			continue
		}
		set.addIfUnclaimed(jsCandidate("model", model.TypeDataAccess, "Model", f.RelativePath))
	}

	d.Logger.Info("detected features", "language", "javascript/typescript", "count", len(set.list))
	return set.candidates()
}

func jsCandidate(kind, typ, label, rel string) model.FeatureCandidate {
	name := stem(rel)
	return model.FeatureCandidate{
		ID:          "js-" + kind + "-" + strings.ToLower(name),
		Type:        typ,
		Language:    jsLanguage(rel),
		Files:       []string{rel},
		Description: label + ": " + name,
	}
}

func jsLanguage(rel string) string {
	switch strings.ToLower(path.Ext(rel)) {
	case ".ts", ".tsx", ".mts", ".cts":
		return TypeScript
	}
	return JavaScript
}

// jsRoutes lists literal route registrations as "VERB /path", at most ten.
func jsRoutes(content string) []string {
	var out []string
	for _, m := range jsRoutePath.FindAllStringSubmatch(content, -1) {
		out = append(out, strings.ToUpper(m[1])+" "+m[2])
		if len(out) == 10 {
			break
		}
	}
	return out
}
