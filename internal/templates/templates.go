// Package templates renders feature specs as Markdown documents using
// text/template files embedded in the binary.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/HendryAvila/feature-replicator/internal/model"
)

// Template names.
const (
	FeatureSpec = "feature.md.tmpl"
)

//go:embed files/*.tmpl
var files embed.FS

// Renderer renders a named template with the given data.
type Renderer interface {
	Render(name string, data any) (string, error)
}

// TextRenderer is the embedded text/template Renderer.
type TextRenderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*TextRenderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"join":    strings.Join,
		"orNA":    orNA,
		"inline":  inline,
		"inc":     func(i int) int { return i + 1 },
		"hasText": func(s string) bool { return strings.TrimSpace(s) != "" },
	}).ParseFS(files, "files/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &TextRenderer{tmpl: tmpl}, nil
}

// Render executes the named template.
func (r *TextRenderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// inline makes s safe inside a single-backtick code span.
func inline(s string) string {
	return strings.ReplaceAll(strings.Join(strings.Fields(s), " "), "`", "'")
}

// --- Feature spec view ---

// InputGroup is one labeled bucket of inputs.
type InputGroup struct {
	Label  string
	Inputs []model.Input
}

// InsightSummary counts the entries of one code insight report.
type InsightSummary struct {
	File             string
	Validations      int
	Calculations     int
	ErrorHandling    int
	StateTransitions int
	FunctionCalls    int
	Assignments      int
	ParseError       string
	Highlights       []string
}

// FeatureData is the view passed to the FeatureSpec template.
type FeatureData struct {
	Spec        *model.FeatureSpec
	InputGroups []InputGroup
	Outputs     []model.Output
	Insights    []InsightSummary
	Databases   string
}

// maxHighlights is how many validations are quoted per insight.
const maxHighlights = 5

// NewFeatureData prepares spec for rendering.
func NewFeatureData(spec *model.FeatureSpec) FeatureData {
	d := FeatureData{Spec: spec, Outputs: spec.Outputs.All()}

	in := spec.Inputs
	if in.Structured {
		for _, g := range []InputGroup{
			{Label: "HTTP parameters", Inputs: in.HTTPParams},
			{Label: "Form fields", Inputs: in.FormFields},
			{Label: "Other sources", Inputs: in.OtherSources},
		} {
			if len(g.Inputs) > 0 {
				d.InputGroups = append(d.InputGroups, g)
			}
		}
	} else if len(in.List) > 0 {
		d.InputGroups = []InputGroup{{Inputs: in.List}}
	}

	for _, ci := range spec.CodeInsights {
		r := ci.Report
		s := InsightSummary{
			File:             ci.File,
			Validations:      len(r.Validations),
			Calculations:     len(r.Calculations),
			ErrorHandling:    len(r.ErrorHandling),
			StateTransitions: len(r.StateTransitions),
			FunctionCalls:    len(r.FunctionCalls),
			Assignments:      len(r.VariableAssignments),
			ParseError:       r.ParseError,
		}
		for _, v := range r.Validations {
			if len(s.Highlights) == maxHighlights {
				break
			}
			if v.Kind == model.ValidationSwitch {
				s.Highlights = append(s.Highlights, fmt.Sprintf("line %d: switch on %s (%d cases)", v.Line, v.Condition, len(v.Cases)))
				continue
			}
			s.Highlights = append(s.Highlights, fmt.Sprintf("line %d: if %s", v.Line, v.Condition))
		}
		d.Insights = append(d.Insights, s)
	}

	dbs := make([]string, 0, len(spec.TechStack.Databases))
	for _, db := range spec.TechStack.Databases {
		if db.Name != "" {
			dbs = append(dbs, fmt.Sprintf("%s (%s)", db.Engine, db.Name))
		} else {
			dbs = append(dbs, db.Engine)
		}
	}
	d.Databases = strings.Join(dbs, ", ")
	return d
}
