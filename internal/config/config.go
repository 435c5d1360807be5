// Package config holds the read-only tool configuration: supported
// languages and their extensions, walker settings, the external-API
// denylist and the legacy-domain lookup tables used by PHP enrichment.
//
// A Config is built once at startup (Default, then optionally merged with a
// JSON or YAML file by Load) and passed explicitly to every component.
// Nothing in this package keeps global state.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that points at a config file.
const EnvConfigPath = "FEATURE_REPLICATOR_CONFIG"

// DefaultConfigFile is looked up in the working directory when no path is given.
const DefaultConfigFile = "tech-stack-config.json"

// DefaultMaxContentBytes caps the concatenated source handed to extractors.
const DefaultMaxContentBytes = 2 << 20

// LanguageConfig configures one supported language.
type LanguageConfig struct {
	Extensions []string `json:"extensions" yaml:"extensions"`
	Framework  string   `json:"framework,omitempty" yaml:"framework,omitempty"`
}

// LegacyConfig holds the lookups used only by the PHP enrichment path.
type LegacyConfig struct {
	// ParamMeanings maps request/session parameter names to descriptions.
	ParamMeanings map[string]string `json:"param_meanings" yaml:"param_meanings"`
	// TableBlocks maps table names to the business block they belong to.
	TableBlocks map[string]string `json:"table_blocks" yaml:"table_blocks"`
	// FeaturePurposes maps feature ids to a known domain purpose.
	FeaturePurposes map[string]string `json:"feature_purposes" yaml:"feature_purposes"`
	// LegacyDirs are directory names whose PHP files are classified by content.
	LegacyDirs []string `json:"legacy_dirs" yaml:"legacy_dirs"`
}

// Config is the process-wide, read-only configuration.
type Config struct {
	Languages        map[string]LanguageConfig `json:"supported_languages" yaml:"supported_languages"`
	Legacy           LegacyConfig              `json:"legacy" yaml:"legacy"`
	IgnoreDirs       []string                  `json:"ignore_dirs" yaml:"ignore_dirs"`
	RespectGitignore bool                      `json:"respect_gitignore" yaml:"respect_gitignore"`
	MaxContentBytes  int                       `json:"max_content_bytes" yaml:"max_content_bytes"`
	APIDenylist      []string                  `json:"api_denylist" yaml:"api_denylist"`
	LogFile          string                    `json:"log_file" yaml:"log_file"`
	CatalogDir       string                    `json:"catalog_dir" yaml:"catalog_dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Languages: map[string]LanguageConfig{
			"csharp":     {Extensions: []string{".cs"}, Framework: "aspnet-mvc"},
			"java":       {Extensions: []string{".java"}, Framework: "spring"},
			"php":        {Extensions: []string{".php", ".inc"}, Framework: "laravel"},
			"python":     {Extensions: []string{".py"}, Framework: "django"},
			"javascript": {Extensions: []string{".js", ".jsx", ".mjs", ".cjs"}, Framework: "express"},
			"typescript": {Extensions: []string{".ts", ".tsx"}, Framework: "express"},
		},
		Legacy: LegacyConfig{
			ParamMeanings:   map[string]string{},
			TableBlocks:     map[string]string{},
			FeaturePurposes: map[string]string{},
			LegacyDirs: []string{
				"includes", "include", "inc", "lib", "libs", "classes", "clases",
				"modulos", "modules", "funciones", "functions", "legacy",
			},
		},
		IgnoreDirs: []string{
			"node_modules", "bin", "obj", ".git", ".svn", ".hg", ".vs", ".idea",
			".vscode", "packages", "vendor", "__pycache__", "venv", ".venv",
		},
		MaxContentBytes: DefaultMaxContentBytes,
		APIDenylist: []string{
			"microsoft.com", "w3.org", "xmlsoap.org", "php.net", "python.org",
			"mozilla.org", "apache.org", "oracle.com", "springframework.org",
			"schema.org", "example.com", "localhost", "127.0.0.1", "0.0.0.0",
		},
		CatalogDir: filepath.Join(home, ".feature-replicator"),
	}
}

// ResolvePath picks the config file to load: the explicit path, then the
// environment variable, then DefaultConfigFile if it exists. An empty
// result means "use defaults".
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}
	return ""
}

// Load reads path and merges it over Default. YAML is used for .yaml/.yml
// files, JSON otherwise. A missing file yields the defaults and a warning.
func Load(path string, logger *slog.Logger) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if logger != nil {
				logger.Warn("config file not found, using defaults", "path", path)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	// Language entries merge field by field: an entry that only sets
	// extensions keeps the default framework.
	defaults := cfg.Languages
	var overlay struct {
		Languages map[string]languageOverlay `json:"supported_languages" yaml:"supported_languages"`
	}
	if err := decode(path, data, cfg); err != nil {
		return nil, err
	}
	if err := decode(path, data, &overlay); err != nil {
		return nil, err
	}
	cfg.Languages = mergeLanguages(defaults, overlay.Languages)

	cfg.normalize()
	return cfg, nil
}

// languageOverlay is a LanguageConfig as written in a file. Nil fields
// were not set.
type languageOverlay struct {
	Extensions []string `json:"extensions" yaml:"extensions"`
	Framework  *string  `json:"framework" yaml:"framework"`
}

// decode parses data as YAML for .yaml/.yml paths, JSON otherwise.
func decode(path string, data []byte, v any) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// mergeLanguages applies overlay entries to a copy of base. Ids are
// compared case-insensitively; new ids are added.
func mergeLanguages(base map[string]LanguageConfig, overlay map[string]languageOverlay) map[string]LanguageConfig {
	out := make(map[string]LanguageConfig, len(base)+len(overlay))
	for id, lc := range base {
		out[strings.ToLower(id)] = lc
	}
	ids := make([]string, 0, len(overlay))
	for id := range overlay {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		o := overlay[id]
		key := strings.ToLower(id)
		lc := out[key]
		if o.Extensions != nil {
			lc.Extensions = o.Extensions
		}
		if o.Framework != nil {
			lc.Framework = *o.Framework
		}
		out[key] = lc
	}
	return out
}

// normalize lower-cases language ids and extensions and fills zero values.
func (c *Config) normalize() {
	langs := make(map[string]LanguageConfig, len(c.Languages))
	// Mixed-case ids come from the file and win over same-named defaults.
	ids := c.LanguageIDs()
	sort.SliceStable(ids, func(i, j int) bool {
		return ids[i] == strings.ToLower(ids[i]) && ids[j] != strings.ToLower(ids[j])
	})
	for _, id := range ids {
		lc := c.Languages[id]
		exts := make([]string, 0, len(lc.Extensions))
		for _, e := range lc.Extensions {
			e = strings.ToLower(strings.TrimSpace(e))
			if e == "" {
				continue
			}
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			exts = append(exts, e)
		}
		lc.Extensions = exts
		langs[strings.ToLower(id)] = lc
	}
	c.Languages = langs

	if c.MaxContentBytes <= 0 {
		c.MaxContentBytes = DefaultMaxContentBytes
	}
	if c.Legacy.ParamMeanings == nil {
		c.Legacy.ParamMeanings = map[string]string{}
	}
	if c.Legacy.TableBlocks == nil {
		c.Legacy.TableBlocks = map[string]string{}
	}
	if c.Legacy.FeaturePurposes == nil {
		c.Legacy.FeaturePurposes = map[string]string{}
	}
}

// Extensions returns the configured extensions for a language id.
func (c *Config) Extensions(language string) ([]string, bool) {
	lc, ok := c.Languages[strings.ToLower(language)]
	if !ok {
		return nil, false
	}
	return lc.Extensions, true
}

// LanguageIDs returns the configured language ids, sorted.
func (c *Config) LanguageIDs() []string {
	ids := make([]string, 0, len(c.Languages))
	for id := range c.Languages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
