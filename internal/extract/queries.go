// Package extract pulls structured facts out of raw source text with
// regular expressions: SQL query literals, file paths, outbound URLs,
// business-rule hints and the PHP request/output signals.
//
// Every function is pure: text in, values out. None of them return errors;
// no match means an empty result.
package extract

import (
	"regexp"
	"sort"
	"strings"
)

const sqlVerbs = `(?:SELECT|INSERT|UPDATE|DELETE|EXEC|EXECUTE)`

// queryPass is one regex pass over the (folded) source. The query text is
// the first non-empty capture group. Matches overlapping a span already
// claimed by an earlier pass are ignored, so annotation and call forms win
// over the generic quoted-literal scan.
type queryPass struct {
	re *regexp.Regexp
	// verbOnly drops captures that do not start with an SQL verb.
	verbOnly bool
	unescape func(string) string
}

type queryMatch struct {
	start, end int
	text       string
}

var (
	startsWithVerb = regexp.MustCompile(`(?i)^\s*` + sqlVerbs + `\b`)
	escapedBreaks  = regexp.MustCompile(`\\r\\n|\\n|\\r|\\t`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// Concatenation folds, applied before matching: "a" + "b" becomes "a b".
var (
	foldPlusDouble   = regexp.MustCompile(`"\s*\+\s*"`)
	foldPlusSingle   = regexp.MustCompile(`'\s*\+\s*'`)
	foldPlusBacktick = regexp.MustCompile("`\\s*\\+\\s*`")
	foldCSharp       = regexp.MustCompile(`"\s*\+\s*@?"`)
	foldDotDouble    = regexp.MustCompile(`"\s*\.\s*"`)
	foldDotSingle    = regexp.MustCompile(`'\s*\.\s*'`)
)

func doubleQuoted() *regexp.Regexp {
	return regexp.MustCompile(`(?i)"\s*(` + sqlVerbs + `\s+[^"]+)"`)
}

func singleQuoted() *regexp.Regexp {
	return regexp.MustCompile(`(?i)'\s*(` + sqlVerbs + `\s+[^']+)'`)
}

var (
	csharpPasses = []queryPass{
		{re: regexp.MustCompile(`(?i)@"\s*(` + sqlVerbs + `\s+(?:[^"]|"")+)"`), unescape: func(s string) string {
			return strings.ReplaceAll(s, `""`, `"`)
		}},
		{re: doubleQuoted()},
	}

	javaPasses = []queryPass{
		{re: regexp.MustCompile(`(?i)@(?:Query|NativeQuery)\s*\(\s*(?:value\s*=\s*)?"([^"]+)"`)},
		{re: regexp.MustCompile(`(?i)@Named(?:Native)?Query\s*\([^)]*?query\s*=\s*"([^"]+)"`)},
		{re: doubleQuoted()},
	}

	phpPasses = []queryPass{
		{re: doubleQuoted()},
		{re: singleQuoted()},
	}

	pythonPasses = []queryPass{
		{re: regexp.MustCompile(`(?is)\bexecute(?:many)?\s*\(\s*[rRuUbBfF]{0,2}(?:"""(.*?)"""|'''(.*?)'''|"([^"]*)"|'([^']*)')`), verbOnly: true},
		{re: regexp.MustCompile(`(?is)"""\s*(` + sqlVerbs + `\s.*?)"""`)},
		{re: regexp.MustCompile(`(?is)'''\s*(` + sqlVerbs + `\s.*?)'''`)},
		{re: doubleQuoted()},
		{re: singleQuoted()},
	}

	javascriptPasses = []queryPass{
		{re: regexp.MustCompile("(?i)`\\s*(" + sqlVerbs + "\\s+[^`]+)`")},
		{re: doubleQuoted()},
		{re: singleQuoted()},
	}

	heredocOpen = regexp.MustCompile(`<<<\s*['"]?([A-Za-z_]\w*)['"]?\r?\n`)
)

// CSharpQueries extracts SQL from regular and verbatim (@"...") literals.
func CSharpQueries(content string) []string {
	folded := foldCSharp.ReplaceAllString(content, " ")
	return runQueryPasses(folded, csharpPasses, nil)
}

// JavaQueries extracts SQL from JDBC literals and @Query/@NamedQuery arguments.
func JavaQueries(content string) []string {
	folded := foldPlusDouble.ReplaceAllString(content, " ")
	return runQueryPasses(folded, javaPasses, nil)
}

// PHPQueries extracts SQL from quoted literals and heredoc/nowdoc bodies.
func PHPQueries(content string) []string {
	folded := foldDotDouble.ReplaceAllString(content, " ")
	folded = foldDotSingle.ReplaceAllString(folded, " ")
	return runQueryPasses(folded, phpPasses, phpHeredocs(folded))
}

// PythonQueries extracts SQL from execute() arguments, triple-quoted and
// quoted literals.
func PythonQueries(content string) []string {
	folded := foldPlusDouble.ReplaceAllString(content, " ")
	folded = foldPlusSingle.ReplaceAllString(folded, " ")
	return runQueryPasses(folded, pythonPasses, nil)
}

// JavaScriptQueries extracts SQL from template, double and single quoted
// literals. It serves TypeScript as well.
func JavaScriptQueries(content string) []string {
	folded := foldPlusDouble.ReplaceAllString(content, " ")
	folded = foldPlusSingle.ReplaceAllString(folded, " ")
	folded = foldPlusBacktick.ReplaceAllString(folded, " ")
	return runQueryPasses(folded, javascriptPasses, nil)
}

// runQueryPasses returns the queries in source order. seed holds matches
// found outside the regex passes, which claim their spans first.
func runQueryPasses(content string, passes []queryPass, seed []queryMatch) []string {
	var found []queryMatch
	for _, m := range seed {
		if q := normalizeQuery(m.text); q != "" {
			m.text = q
			found = append(found, m)
		}
	}

	for _, p := range passes {
		for _, loc := range p.re.FindAllStringSubmatchIndex(content, -1) {
			if overlapsAny(found, loc[0], loc[1]) {
				continue
			}
			text := firstGroup(content, loc)
			if p.verbOnly && !startsWithVerb.MatchString(text) {
				continue
			}
			if p.unescape != nil {
				text = p.unescape(text)
			}
			q := normalizeQuery(text)
			if q == "" {
				continue
			}
			found = append(found, queryMatch{start: loc[0], end: loc[1], text: q})
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].start < found[j].start })
	queries := make([]string, 0, len(found))
	for _, m := range found {
		queries = append(queries, m.text)
	}
	return queries
}

// phpHeredocs returns heredoc bodies that start with an SQL verb.
func phpHeredocs(content string) []queryMatch {
	var out []queryMatch
	for _, loc := range heredocOpen.FindAllStringSubmatchIndex(content, -1) {
		label := content[loc[2]:loc[3]]
		bodyStart := loc[1]
		end := findHeredocEnd(content[bodyStart:], label)
		if end < 0 {
			continue
		}
		body := content[bodyStart : bodyStart+end]
		if !startsWithVerb.MatchString(body) {
			continue
		}
		out = append(out, queryMatch{start: loc[0], end: bodyStart + end + len(label), text: body})
	}
	return out
}

// findHeredocEnd finds the closing label at the start of a line.
func findHeredocEnd(body, label string) int {
	offset := 0
	for _, line := range strings.SplitAfter(body, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, label) {
			rest := trimmed[len(label):]
			if rest == "" || !isIdentByte(rest[0]) {
				return offset
			}
		}
		offset += len(line)
	}
	return -1
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func firstGroup(content string, loc []int) string {
	for i := 2; i+1 < len(loc); i += 2 {
		if loc[i] >= 0 && loc[i+1] > loc[i] {
			return content[loc[i]:loc[i+1]]
		}
	}
	return ""
}

func overlapsAny(found []queryMatch, start, end int) bool {
	for _, m := range found {
		if start < m.end && m.start < end {
			return true
		}
	}
	return false
}

// normalizeQuery collapses escaped line breaks and whitespace runs.
func normalizeQuery(q string) string {
	q = escapedBreaks.ReplaceAllString(q, " ")
	q = whitespaceRun.ReplaceAllString(q, " ")
	return strings.TrimSpace(q)
}
