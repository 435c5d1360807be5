package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/HendryAvila/feature-replicator/internal/model"
)

// Method search windows around the first occurrence of a URL.
const (
	methodWindowBefore = 200
	methodWindowAfter  = 100
)

var (
	urlPattern = regexp.MustCompile("https?://[^\\s\"'`<>)]+")
	// Verb tokens, including client method names such as GetAsync,
	// postForObject or requests.get.
	methodToken = regexp.MustCompile(`(?i)\b(GET|POST|PUT|DELETE|PATCH)(?:Async|Json|ForObject|ForEntity|Request)?\b`)
)

// ExternalAPIs returns the distinct http(s) URLs in content whose host is
// not on the denylist. Each URL gets the nearest HTTP verb token of its
// own statement, else "unknown".
func ExternalAPIs(content string, denylist []string) []model.ExternalServiceCall {
	calls := []model.ExternalServiceCall{}
	seen := make(map[string]bool)
	for _, loc := range urlPattern.FindAllStringIndex(content, -1) {
		raw := strings.TrimRight(content[loc[0]:loc[1]], ".,;:")
		if seen[raw] || Denied(raw, denylist) {
			continue
		}
		seen[raw] = true
		calls = append(calls, model.ExternalServiceCall{
			Kind:      "api_call",
			URLOrHost: raw,
			Method:    nearestMethod(content, loc[0], loc[0]+len(raw)),
		})
	}
	return calls
}

// Denied reports whether rawURL's host equals or is a subdomain of a
// denylisted domain.
func Denied(rawURL string, denylist []string) bool {
	host := hostOf(rawURL)
	if host == "" {
		return false
	}
	for _, d := range denylist {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		return strings.ToLower(u.Hostname())
	}
	rest := rawURL[strings.Index(rawURL, "://")+3:]
	if i := strings.IndexAny(rest, "/:?#"); i >= 0 {
		rest = rest[:i]
	}
	return strings.ToLower(rest)
}

// nearestMethod picks the verb for the URL at content[start:end]. The
// search never crosses a ';' into a neighbouring statement. Order: the
// same line before the URL, then after the URL, then earlier lines of the
// same statement (a call split across lines).
func nearestMethod(content string, start, end int) string {
	from := start - methodWindowBefore
	if from < 0 {
		from = 0
	}
	before := content[from:start]
	if i := strings.LastIndexByte(before, ';'); i >= 0 {
		before = before[i+1:]
	}
	line := before
	if i := strings.LastIndexByte(line, '\n'); i >= 0 {
		line = line[i+1:]
	}
	if m := lastMethod(line); m != "" {
		return m
	}

	to := end + methodWindowAfter
	if to > len(content) {
		to = len(content)
	}
	after := content[end:to]
	if i := strings.IndexByte(after, ';'); i >= 0 {
		after = after[:i]
	}
	if m := methodToken.FindStringSubmatch(after); m != nil {
		return strings.ToUpper(m[1])
	}

	if m := lastMethod(before); m != "" {
		return m
	}
	return "unknown"
}

func lastMethod(s string) string {
	ms := methodToken.FindAllStringSubmatch(s, -1)
	if len(ms) == 0 {
		return ""
	}
	return strings.ToUpper(ms[len(ms)-1][1])
}
