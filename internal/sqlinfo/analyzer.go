// Package sqlinfo derives a normalized QueryInfo from a candidate SQL text.
//
// It is a fixed sequence of regular-expression passes, not a SQL parser.
// Nested subqueries, keywords inside comments and dialect-specific syntax
// can produce spurious or missing table names.
package sqlinfo

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/HendryAvila/feature-replicator/internal/model"
)

// Limits applied to analyzer output.
const (
	MaxColumns    = 30
	MaxFilterLen  = 300
	MaxJoinsLen   = 400
	filtersPrefix = "WHERE "
)

var (
	leadingWord = regexp.MustCompile(`^\s*([A-Za-z]+)`)

	// Each pattern runs over the whole text; a query can match several.
	tablePatterns = []*regexp.Regexp{
		regexp.MustCompile("(?i)\\bFROM\\s+([\\[\\]\\.\\w`]+)"),
		regexp.MustCompile("(?i)\\bJOIN\\s+([\\[\\]\\.\\w`]+)"),
		regexp.MustCompile("(?i)\\bUPDATE\\s+([\\[\\]\\.\\w`]+)"),
		regexp.MustCompile("(?i)\\bINSERT\\s+INTO\\s+([\\[\\]\\.\\w`]+)"),
	}

	selectList = regexp.MustCompile(`(?is)\bSELECT\s+(.*?)\s+FROM\b`)
	aliasSplit = regexp.MustCompile(`(?i)\s+as\s+`)
	whereBody  = regexp.MustCompile(`(?is)\bWHERE\s+(.*?)(?:\bORDER\s+BY\b|\bGROUP\s+BY\b|\bLIMIT\b|$)`)

	joinKeyword = regexp.MustCompile(`(?i)\b(?:(?:INNER|LEFT|RIGHT|FULL|CROSS)(?:\s+OUTER)?\s+)?JOIN\b`)
	joinStop    = regexp.MustCompile(`(?i)\b(?:WHERE|ORDER\s+BY|GROUP\s+BY)\b`)
	onKeyword   = regexp.MustCompile(`(?i)\bON\b`)

	identQuoting = strings.NewReplacer("[", "", "]", "", "`", "")
)

// Analyze runs the type, table, column, filter and join passes over query.
func Analyze(query string) model.QueryInfo {
	info := model.QueryInfo{
		Type:    DetectType(query),
		Tables:  Tables(query),
		Columns: []string{},
	}
	if info.Type == model.QuerySelect {
		info.Columns = Columns(query)
	}
	info.Filters = Filters(query)
	info.Joins = Joins(query)
	return info
}

// DetectType classifies the statement by its leading token.
func DetectType(query string) string {
	m := leadingWord.FindStringSubmatch(query)
	if m == nil {
		return model.QueryUnknown
	}
	switch strings.ToUpper(m[1]) {
	case "SELECT":
		return model.QuerySelect
	case "INSERT":
		return model.QueryInsert
	case "UPDATE":
		return model.QueryUpdate
	case "DELETE":
		return model.QueryDelete
	case "EXEC", "EXECUTE":
		return model.QueryStoredProc
	default:
		return model.QueryUnknown
	}
}

// Tables returns the distinct identifiers following FROM, JOIN, UPDATE and
// INSERT INTO, in the order the patterns find them, with quoting removed.
func Tables(query string) []string {
	seen := make(map[string]bool)
	tables := []string{}
	for _, p := range tablePatterns {
		for _, m := range p.FindAllStringSubmatch(query, -1) {
			name := strings.Trim(identQuoting.Replace(m[1]), ".")
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			tables = append(tables, name)
		}
	}
	return tables
}

// Columns splits the select list on commas, keeping alias names.
// A bare "*" yields no columns.
func Columns(query string) []string {
	m := selectList.FindStringSubmatch(query)
	if m == nil {
		return []string{}
	}
	list := strings.TrimSpace(m[1])
	if list == "" || list == "*" {
		return []string{}
	}
	cols := []string{}
	for _, piece := range strings.Split(list, ",") {
		parts := aliasSplit.Split(strings.TrimSpace(piece), -1)
		col := strings.TrimSpace(identQuoting.Replace(parts[len(parts)-1]))
		if col == "" {
			continue
		}
		cols = append(cols, col)
		if len(cols) == MaxColumns {
			break
		}
	}
	return cols
}

// Filters returns "WHERE <condition>" capped at MaxFilterLen, or "".
func Filters(query string) string {
	m := whereBody.FindStringSubmatch(query)
	if m == nil {
		return ""
	}
	cond := strings.TrimSpace(m[1])
	if cond == "" {
		return ""
	}
	return Clip(filtersPrefix+cond, MaxFilterLen)
}

// Joins returns every JOIN ... ON span, each ending at the next join,
// WHERE, ORDER BY, GROUP BY or end of text, joined by spaces.
func Joins(query string) string {
	locs := joinKeyword.FindAllStringIndex(query, -1)
	var spans []string
	for i, loc := range locs {
		end := len(query)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		if stop := joinStop.FindStringIndex(query[loc[1]:end]); stop != nil {
			end = loc[1] + stop[0]
		}
		span := strings.TrimSpace(query[loc[0]:end])
		if onKeyword.MatchString(span) {
			spans = append(spans, span)
		}
	}
	if len(spans) == 0 {
		return ""
	}
	return Clip(strings.Join(spans, " "), MaxJoinsLen)
}

// SplitQualified splits "schema.table" into its parts. When the name has
// no qualifier the default schema is returned. Names with more than two
// parts keep the last two.
func SplitQualified(name, defaultSchema string) (schema, table string) {
	parts := strings.Split(name, ".")
	if len(parts) < 2 {
		return defaultSchema, name
	}
	return parts[len(parts)-2], parts[len(parts)-1]
}

// Role describes how a query uses its tables.
func Role(info model.QueryInfo) string {
	switch info.Type {
	case model.QuerySelect:
		if info.Filters != "" {
			return "lookup (filtered read)"
		}
		return "listing (full read)"
	case model.QueryInsert:
		return "write (insert)"
	case model.QueryUpdate:
		if info.Filters != "" {
			return "write (targeted update)"
		}
		return "write (bulk update)"
	case model.QueryDelete:
		return "write (delete)"
	case model.QueryStoredProc:
		return "stored procedure call"
	default:
		return "unknown"
	}
}

// Clip truncates s to at most n bytes without splitting a UTF-8 sequence.
func Clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
