package extract

import (
	"regexp"
	"strings"

	"github.com/HendryAvila/feature-replicator/internal/model"
)

// pathRule matches one file-I/O call shape. resolve returns the literal
// path and the operation, or ok=false to drop the match.
type pathRule struct {
	re      *regexp.Regexp
	resolve func(m []string) (path, op string, ok bool)
}

// uncPath matches \\server\share paths, either raw or with escaped
// backslashes as written inside a regular string literal.
var uncPath = regexp.MustCompile(`(?:\\\\){1,2}[A-Za-z0-9_.\-]+(?:\\{1,2}[A-Za-z0-9_$.\-]+)+`)

var readOrOpen = regexp.MustCompile(`(?i)read|open`)

// opFromName applies the read|open keyword test: read when it matches,
// write otherwise.
func opFromName(name string) string {
	if readOrOpen.MatchString(name) {
		return model.OpRead
	}
	return model.OpWrite
}

func groupPath(idx int, op string) func(m []string) (string, string, bool) {
	return func(m []string) (string, string, bool) {
		return m[idx], op, true
	}
}

var csharpPathRules = []pathRule{
	{
		re: regexp.MustCompile(`\bFile\.(\w+)\s*\(\s*@?"([^"]+)"`),
		resolve: func(m []string) (string, string, bool) {
			return m[2], opFromName(m[1]), true
		},
	},
	{
		re: regexp.MustCompile(`\bnew\s+(StreamReader|StreamWriter|FileStream)\s*\(\s*@?"([^"]+)"`),
		resolve: func(m []string) (string, string, bool) {
			switch m[1] {
			case "StreamReader":
				return m[2], model.OpRead, true
			case "StreamWriter":
				return m[2], model.OpWrite, true
			}
			return m[2], model.OpUnknown, true
		},
	},
}

var javaPathRules = []pathRule{
	{
		re: regexp.MustCompile(`\bnew\s+(File|FileInputStream|FileOutputStream|FileReader|FileWriter)\s*\(\s*"([^"]+)"`),
		resolve: func(m []string) (string, string, bool) {
			switch m[1] {
			case "FileInputStream", "FileReader":
				return m[2], model.OpRead, true
			case "FileOutputStream", "FileWriter":
				return m[2], model.OpWrite, true
			}
			return m[2], model.OpUnknown, true
		},
	},
	{
		re: regexp.MustCompile(`\bFiles\.(\w+)\s*\(\s*(?:Paths\.get\s*\(\s*|Path\.of\s*\(\s*)?"([^"]+)"`),
		resolve: func(m []string) (string, string, bool) {
			return m[2], opFromName(m[1]), true
		},
	},
	{
		re:      regexp.MustCompile(`\b(?:Paths\.get|Path\.of)\s*\(\s*"([^"]+)"`),
		resolve: groupPath(1, model.OpUnknown),
	},
}

var phpPathRules = []pathRule{
	{
		re: regexp.MustCompile(`\bfopen\s*\(\s*['"]([^'"]+)['"](?:\s*,\s*['"]([^'"]*)['"])?`),
		resolve: func(m []string) (string, string, bool) {
			return m[1], fopenMode(m[2]), true
		},
	},
	{re: regexp.MustCompile(`\bfile_get_contents\s*\(\s*['"]([^'"]+)['"]`), resolve: groupPath(1, model.OpRead)},
	{re: regexp.MustCompile(`\bfile_put_contents\s*\(\s*['"]([^'"]+)['"]`), resolve: groupPath(1, model.OpWrite)},
	{re: regexp.MustCompile(`\bStorage::get\s*\(\s*['"]([^'"]+)['"]`), resolve: groupPath(1, model.OpRead)},
	{re: regexp.MustCompile(`\bStorage::put\s*\(\s*['"]([^'"]+)['"]`), resolve: groupPath(1, model.OpWrite)},
}

var pythonPathRules = []pathRule{
	{
		re: regexp.MustCompile(`\bopen\s*\(\s*[rRfFbBuU]{0,2}(?:"([^"]+)"|'([^']+)')(?:\s*,\s*(?:mode\s*=\s*)?(?:"([^"]*)"|'([^']*)'))?`),
		resolve: func(m []string) (string, string, bool) {
			path := m[1] + m[2]
			mode := m[3] + m[4]
			if strings.ContainsAny(mode, "wax+") {
				return path, model.OpWrite, true
			}
			return path, model.OpRead, true
		},
	},
	{
		re: regexp.MustCompile(`\bPath\s*\(\s*[rRfF]?(?:"([^"]+)"|'([^']+)')`),
		resolve: func(m []string) (string, string, bool) {
			return m[1] + m[2], model.OpUnknown, true
		},
	},
}

var javascriptPathRules = []pathRule{
	{
		re: regexp.MustCompile("\\bfs(?:\\.promises)?\\.(readFile|readFileSync|writeFile|writeFileSync|appendFile|appendFileSync|createReadStream|createWriteStream)\\s*\\(\\s*[`'\"]([^`'\"]+)[`'\"]"),
		resolve: func(m []string) (string, string, bool) {
			return m[2], opFromName(m[1]), true
		},
	},
}

// fopenMode maps a PHP fopen mode to an operation.
func fopenMode(mode string) string {
	switch {
	case mode == "":
		return model.OpUnknown
	case strings.ContainsAny(mode, "waxc+"):
		return model.OpWrite
	case strings.Contains(mode, "r"):
		return model.OpRead
	}
	return model.OpUnknown
}

// CSharpFilePaths finds UNC paths plus File.*, StreamReader/Writer and
// FileStream literals.
func CSharpFilePaths(content string) []model.FileSystemTouch {
	return filePaths(content, csharpPathRules)
}

// JavaFilePaths finds UNC paths plus java.io and java.nio file literals.
func JavaFilePaths(content string) []model.FileSystemTouch {
	return filePaths(content, javaPathRules)
}

// PHPFilePaths finds UNC paths plus fopen/file_*_contents/Storage literals.
func PHPFilePaths(content string) []model.FileSystemTouch {
	return filePaths(content, phpPathRules)
}

// PythonFilePaths finds UNC paths plus open() and Path() literals.
func PythonFilePaths(content string) []model.FileSystemTouch {
	return filePaths(content, pythonPathRules)
}

// JavaScriptFilePaths finds UNC paths plus fs.* literals.
func JavaScriptFilePaths(content string) []model.FileSystemTouch {
	return filePaths(content, javascriptPathRules)
}

// touchSet deduplicates touches by (kind, path). A later match with a known
// operation upgrades an earlier "unknown" one.
type touchSet struct {
	order []string
	byKey map[string]*model.FileSystemTouch
}

func newTouchSet() *touchSet {
	return &touchSet{byKey: make(map[string]*model.FileSystemTouch)}
}

func (s *touchSet) add(t model.FileSystemTouch) {
	key := t.Key()
	if existing, ok := s.byKey[key]; ok {
		if existing.Operation == model.OpUnknown && t.Operation != model.OpUnknown {
			existing.Operation = t.Operation
		}
		return
	}
	s.byKey[key] = &t
	s.order = append(s.order, key)
}

func (s *touchSet) list() []model.FileSystemTouch {
	out := make([]model.FileSystemTouch, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, *s.byKey[k])
	}
	return out
}

func filePaths(content string, rules []pathRule) []model.FileSystemTouch {
	set := newTouchSet()
	for _, loc := range uncPath.FindAllStringIndex(content, -1) {
		// C:\\dir\\file in an escaped literal is a drive path, not a share.
		if loc[0] > 0 && (content[loc[0]-1] == ':' || isIdentByte(content[loc[0]-1])) {
			continue
		}
		m := content[loc[0]:loc[1]]
		set.add(model.FileSystemTouch{Kind: model.FSNetworkShare, PathPattern: normalizeUNC(m), Operation: model.OpUnknown})
	}
	for _, r := range rules {
		for _, m := range r.re.FindAllStringSubmatch(content, -1) {
			path, op, ok := r.resolve(m)
			if !ok || path == "" || strings.Contains(path, "://") {
				continue
			}
			kind := model.FSLocal
			if strings.HasPrefix(path, `\\`) {
				kind = model.FSNetworkShare
				path = normalizeUNC(path)
			}
			set.add(model.FileSystemTouch{Kind: kind, PathPattern: path, Operation: op})
		}
	}
	return set.list()
}

// normalizeUNC turns an escaped \\\\server\\share into \\server\share.
func normalizeUNC(p string) string {
	if strings.HasPrefix(p, `\\\\`) {
		return strings.ReplaceAll(p, `\\`, `\`)
	}
	return p
}
