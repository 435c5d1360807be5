package lang

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/HendryAvila/feature-replicator/internal/config"
	"github.com/HendryAvila/feature-replicator/internal/model"
	"github.com/HendryAvila/feature-replicator/internal/repo"
)

// Detection is the input of one detector run: the walked files plus the
// read-only configuration. File contents are read lazily and cached, so
// detection passes that look at the same file read it once.
type Detection struct {
	Root   string
	Files  []model.FileRef
	Config *config.Config
	Logger *slog.Logger

	cache  map[string]string
	failed map[string]bool
}

// NewDetection prepares a detection over files.
func NewDetection(root string, files []model.FileRef, cfg *config.Config, logger *slog.Logger) *Detection {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &Detection{
		Root:   root,
		Files:  files,
		Config: cfg,
		Logger: logger,
		cache:  make(map[string]string),
		failed: make(map[string]bool),
	}
}

// Read returns the content of f. Unreadable files and files larger than
// the configured content cap are logged once and reported as ok=false.
func (d *Detection) Read(f model.FileRef) (string, bool) {
	if c, ok := d.cache[f.FullPath]; ok {
		return c, true
	}
	if d.failed[f.FullPath] {
		return "", false
	}

	info, err := os.Stat(f.FullPath)
	if err != nil {
		d.Logger.Warn("skipping unreadable file", "file", f.RelativePath, "error", err)
		d.failed[f.FullPath] = true
		return "", false
	}
	if limit := d.Config.MaxContentBytes; limit > 0 && info.Size() > int64(limit) {
		d.Logger.Warn("skipping large file", "file", f.RelativePath,
			"size", humanize.Bytes(uint64(info.Size())), "limit", humanize.Bytes(uint64(limit)))
		d.failed[f.FullPath] = true
		return "", false
	}

	content, err := repo.ReadSource(f.FullPath)
	if err != nil {
		d.Logger.Warn("skipping unreadable file", "file", f.RelativePath, "error", err)
		d.failed[f.FullPath] = true
		return "", false
	}
	d.cache[f.FullPath] = content
	return content, true
}

// WithExt returns the files whose extension is one of exts.
func (d *Detection) WithExt(exts ...string) []model.FileRef {
	var out []model.FileRef
	for _, f := range d.Files {
		ext := strings.ToLower(path.Ext(f.RelativePath))
		for _, e := range exts {
			if ext == e {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// --- Candidate set ---

// candidateSet accumulates candidates for one language. A file belongs to
// at most one candidate unless the pass enumerates symbols inside a file,
// in which case uniqueness is by file and symbol. Ids are always unique:
// a clashing id is qualified with the candidate's directory.
type candidateSet struct {
	list    []model.FeatureCandidate
	ids     map[string]bool
	claimed map[string]bool
	symbols map[string]bool
}

func newCandidateSet() *candidateSet {
	return &candidateSet{
		ids:     make(map[string]bool),
		claimed: make(map[string]bool),
		symbols: make(map[string]bool),
	}
}

func (s *candidateSet) add(c model.FeatureCandidate) {
	c.ID = s.uniqueID(c.ID, c.Files)
	s.list = append(s.list, c)
	s.ids[c.ID] = true
	for _, f := range c.Files {
		s.claimed[f] = true
	}
}

// uniqueID returns id, or id suffixed with the slug of the primary file's
// directory when id is taken ("php-controller-usercontroller-api"). A
// numeric suffix settles whatever still clashes.
func (s *candidateSet) uniqueID(id string, files []string) string {
	if !s.ids[id] {
		return id
	}
	if len(files) > 0 {
		if dir := path.Dir(files[0]); dir != "." && dir != "/" {
			if q := id + "-" + slugify(dir); !s.ids[q] {
				return q
			}
		}
	}
	for n := 2; ; n++ {
		if q := fmt.Sprintf("%s-%d", id, n); !s.ids[q] {
			return q
		}
	}
}

// addIfUnclaimed adds c unless its primary file is already claimed.
func (s *candidateSet) addIfUnclaimed(c model.FeatureCandidate) bool {
	if len(c.Files) > 0 && s.claimed[c.Files[0]] {
		return false
	}
	s.add(c)
	return true
}

// addSymbol adds c, the candidate for symbol in c.Files[0], unless that
// symbol of that file was already added.
func (s *candidateSet) addSymbol(c model.FeatureCandidate, symbol string) bool {
	key := symbol
	if len(c.Files) > 0 {
		key = c.Files[0] + "#" + symbol
	}
	if s.symbols[key] {
		return false
	}
	s.symbols[key] = true
	s.add(c)
	return true
}

func (s *candidateSet) candidates() []model.FeatureCandidate {
	if s.list == nil {
		return []model.FeatureCandidate{}
	}
	return s.list
}

// --- Helpers ---

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// slug lower-cases rel without its extension and joins alphanumeric runs
// with dashes: "admin/Ventas_Mes.php" becomes "admin-ventas-mes".
func slug(rel string) string {
	return slugify(strings.TrimSuffix(rel, path.Ext(rel)))
}

// slugify is slug without the extension handling, for directory names.
func slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// stem returns the base name of a relative path without its extension.
func stem(rel string) string {
	base := path.Base(rel)
	return strings.TrimSuffix(base, path.Ext(base))
}

// inDir reports whether rel has a directory component equal to dir,
// compared case-insensitively.
func inDir(rel, dir string) bool {
	parts := strings.Split(rel, "/")
	for _, p := range parts[:len(parts)-1] {
		if strings.EqualFold(p, dir) {
			return true
		}
	}
	return false
}
