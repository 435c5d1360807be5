// Package lang maps a language id to the capability bundle used by the
// feature detector and the feature analyzer: which files belong to the
// language, how features are detected, how SQL and file paths are pulled
// out of source text, and the analysis profile (defaults, naming).
//
// Adding a language means adding one Language value to NewRegistry.
// Nothing else switches on the language string.
package lang

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/HendryAvila/feature-replicator/internal/config"
	"github.com/HendryAvila/feature-replicator/internal/extract"
	"github.com/HendryAvila/feature-replicator/internal/model"
)

// Language ids.
const (
	CSharp     = "csharp"
	Java       = "java"
	PHP        = "php"
	Python     = "python"
	JavaScript = "javascript"
	TypeScript = "typescript"
)

// Profile holds the per-language analysis defaults.
type Profile struct {
	DefaultEngine string
	DefaultSchema string
	// SplitSchema splits schema.table identifiers into separate fields.
	SplitSchema bool
	// Output is the fixed output descriptor reported for the language.
	Output model.Output
	// NameSuffixes are stripped from the entry file's base name.
	NameSuffixes []string
	// Humanize turns the stripped base name into a display name.
	Humanize func(string) string
	// MethodInputs reports public method names as inputs.
	MethodInputs bool
}

// Language is the capability bundle for one language id.
type Language struct {
	ID               string
	Extensions       []string
	Framework        string
	Detect           func(d *Detection) []model.FeatureCandidate
	ExtractQueries   func(content string) []string
	ExtractFilePaths func(content string) []model.FileSystemTouch
	Rules            extract.RuleStyle
	Profile          Profile
	// Enrich turns on the structured inputs/outputs, business context and
	// code-insight path of the analyzer.
	Enrich bool
}

// Registry resolves language ids, including a few common aliases.
type Registry struct {
	langs   map[string]*Language
	aliases map[string]string
}

// NewRegistry builds the registry for the languages configured in cfg.
// Languages without a configuration entry are not registered.
func NewRegistry(cfg *config.Config) *Registry {
	r := &Registry{
		langs: make(map[string]*Language),
		aliases: map[string]string{
			"c#":   CSharp,
			"cs":   CSharp,
			"node": JavaScript,
			"js":   JavaScript,
			"ts":   TypeScript,
			"py":   Python,
		},
	}

	jsProfile := Profile{
		DefaultEngine: "postgresql",
		DefaultSchema: "public",
		Output:        model.Output{Type: "Response", Description: "Express/HTTP response", Structure: []string{}},
		NameSuffixes:  []string{"Controller", "Routes", "Route", "Router"},
		Humanize:      identity,
	}

	builtins := []Language{
		{
			ID:               CSharp,
			Detect:           detectCSharp,
			ExtractQueries:   extract.CSharpQueries,
			ExtractFilePaths: extract.CSharpFilePaths,
			Rules:            extract.CStyleRules,
			Profile: Profile{
				DefaultEngine: "sql_server",
				DefaultSchema: "dbo",
				SplitSchema:   true,
				Output:        model.Output{Type: "ActionResult", Description: "MVC action result (view, JSON or file)", Structure: []string{}},
				NameSuffixes:  []string{"Controller"},
				Humanize:      splitCamel,
				MethodInputs:  true,
			},
		},
		{
			ID:               Java,
			Detect:           detectJava,
			ExtractQueries:   extract.JavaQueries,
			ExtractFilePaths: extract.JavaFilePaths,
			Rules:            extract.CStyleRules,
			Profile: Profile{
				DefaultEngine: "postgresql",
				DefaultSchema: "public",
				SplitSchema:   true,
				Output:        model.Output{Type: "ResponseEntity", Description: "Spring HTTP response", Structure: []string{}},
				NameSuffixes:  []string{"Controller", "Service", "Repository"},
				Humanize:      identity,
			},
		},
		{
			ID:               PHP,
			Detect:           detectPHP,
			ExtractQueries:   extract.PHPQueries,
			ExtractFilePaths: extract.PHPFilePaths,
			Rules:            extract.PHPRules,
			Profile: Profile{
				DefaultEngine: "mysql",
				NameSuffixes:  []string{"Controller"},
				Humanize:      identity,
			},
			Enrich: true,
		},
		{
			ID:               Python,
			Detect:           detectPython,
			ExtractQueries:   extract.PythonQueries,
			ExtractFilePaths: extract.PythonFilePaths,
			Rules:            extract.PythonRules,
			Profile: Profile{
				DefaultEngine: "postgresql",
				DefaultSchema: "public",
				Output:        model.Output{Type: "JsonResponse", Description: "Django/Flask HTTP response", Structure: []string{}},
				NameSuffixes:  []string{"_views", "_view", "_api"},
				Humanize:      titleSnake,
			},
		},
		{
			ID:               JavaScript,
			Detect:           detectJavaScript,
			ExtractQueries:   extract.JavaScriptQueries,
			ExtractFilePaths: extract.JavaScriptFilePaths,
			Rules:            extract.CStyleRules,
			Profile:          jsProfile,
		},
		{
			ID:               TypeScript,
			Detect:           detectJavaScript,
			ExtractQueries:   extract.JavaScriptQueries,
			ExtractFilePaths: extract.JavaScriptFilePaths,
			Rules:            extract.CStyleRules,
			Profile:          jsProfile,
		},
	}

	for i := range builtins {
		l := builtins[i]
		lc, ok := cfg.Languages[l.ID]
		if !ok {
			continue
		}
		l.Extensions = lc.Extensions
		l.Framework = lc.Framework
		r.langs[l.ID] = &l
	}
	return r
}

// Lookup returns the language registered under id or one of its aliases.
func (r *Registry) Lookup(id string) (*Language, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	if alias, ok := r.aliases[id]; ok {
		id = alias
	}
	l, ok := r.langs[id]
	return l, ok
}

// IDs returns the registered language ids, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.langs))
	for id := range r.langs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// --- Display names ---

var (
	camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	acronymEnd    = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
)

func identity(s string) string { return s }

// splitCamel inserts spaces at camel-case boundaries: "OrderHistory"
// becomes "Order History" and "PDFExport" becomes "PDF Export".
func splitCamel(s string) string {
	s = acronymEnd.ReplaceAllString(s, "$1 $2")
	return camelBoundary.ReplaceAllString(s, "$1 $2")
}

// titleSnake turns "order_history" into "Order History".
func titleSnake(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' })
	for i, p := range parts {
		r, size := utf8.DecodeRuneInString(p)
		parts[i] = string(unicode.ToUpper(r)) + p[size:]
	}
	return strings.Join(parts, " ")
}
