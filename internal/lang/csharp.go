package lang

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/HendryAvila/feature-replicator/internal/model"
)

var (
	csharpControllerClass = regexp.MustCompile(`\bclass\s+(\w+Controller)\b`)
	csharpAction          = regexp.MustCompile(`public\s+(?:virtual\s+|override\s+)?(?:async\s+)?(?:Task\s*<\s*)?(?:ActionResult|IActionResult|JsonResult|ViewResult|PartialViewResult|FileResult|RedirectToRouteResult|ContentResult)(?:\s*<[^>]*>)?\s*>?\s+(\w+)\s*\(`)
)

// detectCSharp enumerates MVC controllers. Each controller becomes one
// endpoint candidate numbered LEGACY-F-001, LEGACY-F-002, ... in walk
// order, bundled with its <Name>Service and <Name>Repository files.
func detectCSharp(d *Detection) []model.FeatureCandidate {
	set := newCandidateSet()
	framework := d.Config.Languages[CSharp].Framework
	index := 1

	for _, f := range d.Files {
		if !strings.Contains(path.Base(f.RelativePath), "Controller") {
			continue
		}
		content, ok := d.Read(f)
		if !ok {
			continue
		}

		controller := stem(f.RelativePath)
		if m := csharpControllerClass.FindStringSubmatch(content); m != nil {
			controller = m[1]
		} else if !strings.HasSuffix(controller, "Controller") {
			continue
		}
		baseName := strings.TrimSuffix(controller, "Controller")
		if baseName == "" {
			continue
		}

		var actions []string
		for _, m := range csharpAction.FindAllStringSubmatch(content, -1) {
			actions = append(actions, m[1])
		}

		files := []string{f.RelativePath}
		for _, suffix := range []string{"Service", "Repository"} {
			if rel := findRelated(d.Files, baseName+suffix); rel != "" {
				files = append(files, rel)
			}
		}

		desc := fmt.Sprintf("Controller with %d actions", len(actions))
		if len(actions) > 0 {
			desc += ": " + strings.Join(firstN(actions, 3), ", ")
		}

		c := model.FeatureCandidate{
			ID:          fmt.Sprintf("LEGACY-F-%03d", index),
			Type:        model.TypeEndpoint,
			Language:    CSharp,
			Files:       files,
			Description: desc,
			Metadata: map[string]any{
				"name":       splitCamel(baseName),
				"controller": controller,
				"actions":    firstN(actions, 10),
				"framework":  framework,
			},
		}
		if set.addIfUnclaimed(c) {
			index++
		}
	}

	d.Logger.Info("detected features", "language", CSharp, "count", len(set.list))
	return set.candidates()
}

// findRelated returns the first file whose base name contains token.
func findRelated(files []model.FileRef, token string) string {
	for _, f := range files {
		if strings.Contains(path.Base(f.RelativePath), token) {
			return f.RelativePath
		}
	}
	return ""
}

func firstN(list []string, n int) []string {
	if list == nil {
		return []string{}
	}
	if len(list) > n {
		return list[:n]
	}
	return list
}
