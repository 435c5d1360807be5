package lang

import (
	"regexp"
	"strings"

	"github.com/HendryAvila/feature-replicator/internal/model"
)

var (
	javaController = regexp.MustCompile(`(?m)^\s*@(?:Rest)?Controller\b`)
	javaService    = regexp.MustCompile(`(?m)^\s*@Service\b`)
	javaRepository = regexp.MustCompile(`(?m)^\s*@Repository\b|\bextends\s+(?:JpaRepository|CrudRepository|PagingAndSortingRepository)\b`)
	javaMapping    = regexp.MustCompile(`@(Get|Post|Put|Delete|Patch|Request)Mapping\b(?:\s*\(\s*(?:(?:value|path)\s*=\s*)?\{?\s*"([^"]*)")?`)
)

type javaPass struct {
	kind     string
	typ      string
	label    string
	pattern  *regexp.Regexp
	mappings bool
}

var javaPasses = []javaPass{
	{kind: "controller", typ: model.TypeEndpoint, label: "Java Controller", pattern: javaController, mappings: true},
	{kind: "service", typ: model.TypeBusinessLogic, label: "Java Service", pattern: javaService},
	{kind: "repository", typ: model.TypeDataAccess, label: "Java Repository", pattern: javaRepository},
}

// detectJava classifies Spring classes by their stereotype annotations.
// Controllers are found first, so a file is reported under the first
// stereotype it carries.
func detectJava(d *Detection) []model.FeatureCandidate {
	set := newCandidateSet()
	for _, p := range javaPasses {
		for _, f := range d.Files {
			content, ok := d.Read(f)
			if !ok || !p.pattern.MatchString(content) {
				continue
			}
			className := stem(f.RelativePath)
			c := model.FeatureCandidate{
				ID:          "java-" + p.kind + "-" + strings.ToLower(className),
				Type:        p.typ,
				Language:    Java,
				Files:       []string{f.RelativePath},
				Description: p.label + ": " + className,
			}
			if p.mappings {
				if m := javaMappings(content); len(m) > 0 {
					c.Metadata = map[string]any{"mappings": m}
				}
			}
			set.addIfUnclaimed(c)
		}
	}
	d.Logger.Info("detected features", "language", Java, "count", len(set.list))
	return set.candidates()
}

// javaMappings lists request mappings as "VERB /path", at most ten.
func javaMappings(content string) []string {
	var out []string
	for _, m := range javaMapping.FindAllStringSubmatch(content, -1) {
		verb := strings.ToUpper(m[1])
		if verb == "REQUEST" {
			verb = "ANY"
		}
		route := m[2]
		if route == "" {
			route = "/"
		}
		out = append(out, verb+" "+route)
		if len(out) == 10 {
			break
		}
	}
	return out
}
