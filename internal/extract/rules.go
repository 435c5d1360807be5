package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxTaggedRules caps the tagged comments reported per feature.
const MaxTaggedRules = 10

// RuleStyle describes how guards and comments look in one language.
type RuleStyle struct {
	guards []*regexp.Regexp
	tagged *regexp.Regexp
}

var (
	cGuard      = regexp.MustCompile(`(?i)\bif\s*\([^)]+\)\s*\{?\s*(?:throw|return)\b`)
	pythonGuard = regexp.MustCompile(`(?m)^\s*if\s+[^\n:]+:\s*(?:\n\s*)?(?:raise|return)\b`)
)

// Comment styles per language family.
var (
	CStyleRules = NewRuleStyle([]*regexp.Regexp{cGuard}, "//", "*")
	PHPRules    = NewRuleStyle([]*regexp.Regexp{cGuard}, "//", "#", "*")
	PythonRules = NewRuleStyle([]*regexp.Regexp{pythonGuard}, "#")
)

// NewRuleStyle builds a style from guard patterns and comment prefixes.
func NewRuleStyle(guards []*regexp.Regexp, commentPrefixes ...string) RuleStyle {
	quoted := make([]string, 0, len(commentPrefixes))
	for _, p := range commentPrefixes {
		quoted = append(quoted, regexp.QuoteMeta(p))
	}
	tagged := regexp.MustCompile(`(?im)(?:` + strings.Join(quoted, "|") +
		`)\s*(BUSINESS(?:\s+RULE)?|RULE|VALIDATION|TODO|NOTE)\s*:\s*([^\n]+)`)
	return RuleStyle{guards: guards, tagged: tagged}
}

// GuardCount counts if (...) throw|return shaped validations.
func (s RuleStyle) GuardCount(content string) int {
	n := 0
	for _, g := range s.guards {
		n += len(g.FindAllStringIndex(content, -1))
	}
	return n
}

// BusinessRules returns a guard-count summary (when any guard exists)
// followed by up to MaxTaggedRules tagged comments, verbatim.
func BusinessRules(content string, style RuleStyle) []string {
	rules := []string{}
	if n := style.GuardCount(content); n > 0 {
		rules = append(rules, fmt.Sprintf("Contains %d validations in code (if ... throw/return guards)", n))
	}
	if style.tagged == nil {
		return rules
	}
	for i, m := range style.tagged.FindAllStringSubmatch(content, -1) {
		if i == MaxTaggedRules {
			break
		}
		tag := strings.ToUpper(whitespaceRun.ReplaceAllString(m[1], " "))
		text := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(m[2]), "*/"))
		rules = append(rules, tag+": "+text)
	}
	return rules
}
