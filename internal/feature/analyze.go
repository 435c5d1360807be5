package feature

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/HendryAvila/feature-replicator/internal/extract"
	"github.com/HendryAvila/feature-replicator/internal/lang"
	"github.com/HendryAvila/feature-replicator/internal/model"
	"github.com/HendryAvila/feature-replicator/internal/sqlinfo"
)

// MaxSnippetLen bounds DataSource.SourceCodeSnippet.
const MaxSnippetLen = 600

// maxMethodInputs is how many public methods are reported as inputs.
const maxMethodInputs = 5

var publicMethod = regexp.MustCompile(`\bpublic\s+(?:(?:static|virtual|override|async)\s+)*(?:Task<)?(\w+)>?\s+(\w+)\s*\(([^)]*)\)`)

// analyze builds the FeatureSpec from the readable entry files.
func (s *Service) analyze(ctx context.Context, l *lang.Language, id string, files []entryFile, stack model.TechStack) *model.FeatureSpec {
	contents := make([]string, 0, len(files))
	rels := make([]string, 0, len(files))
	for _, f := range files {
		contents = append(contents, f.content)
		rels = append(rels, f.rel)
	}
	content := strings.Join(contents, "\n\n")
	if limit := s.cfg.MaxContentBytes; limit > 0 && len(content) > limit {
		s.logger.Warn("analysis content truncated", "feature_id", id, "bytes", len(content), "limit", limit)
		content = sqlinfo.Clip(content, limit)
	}

	queries := l.ExtractQueries(content)
	sources, infos := dataSources(queries, l.Profile, stack, l.Enrich)

	name := featureName(rels[0], l.Profile)
	spec := &model.FeatureSpec{
		FeatureID:        id,
		Name:             name,
		DomainPurpose:    fmt.Sprintf("Functionality of %s, analyzed from %d %s file(s).", name, len(files), l.ID),
		DataSources:      sources,
		FileSystem:       l.ExtractFilePaths(content),
		ExternalServices: extract.ExternalAPIs(content, s.cfg.APIDenylist),
		BusinessRules:    extract.BusinessRules(content, l.Rules),
		FilesInvolved:    rels,
		TechStack:        stack,
	}
	if l.Profile.Output.Type != "" {
		spec.Outputs = model.Outputs{List: []model.Output{l.Profile.Output}}
	}
	if l.Profile.MethodInputs {
		spec.Inputs = model.Inputs{List: methodInputs(content)}
	}

	s.logger.Info("feature analysis", "language", l.ID, "queries", len(queries),
		"file_paths", len(spec.FileSystem), "apis", len(spec.ExternalServices))

	if l.Enrich {
		s.enrich(ctx, spec, files, content, infos, l.Rules.GuardCount(content))
	}

	spec.Normalize()
	return spec
}

// dataSources emits one DataSource per query and table. All sources of one
// query share its snippet. withRole annotates each source with the query's
// role.
func dataSources(queries []string, p lang.Profile, stack model.TechStack, withRole bool) ([]model.DataSource, []model.QueryInfo) {
	engine, database := p.DefaultEngine, model.DefaultDatabaseName
	if db, ok := stack.PrimaryDatabase(); ok {
		if db.Engine != "" {
			engine = db.Engine
		}
		if db.Name != "" {
			database = db.Name
		}
	}

	sources := []model.DataSource{}
	infos := make([]model.QueryInfo, 0, len(queries))
	for _, q := range queries {
		info := sqlinfo.Analyze(q)
		infos = append(infos, info)

		columns := info.Columns
		if len(columns) == 0 {
			columns = []string{"*"}
		}
		snippet := sqlinfo.Clip(q, MaxSnippetLen)
		role := ""
		if withRole {
			role = sqlinfo.Role(info)
		}
		for _, t := range info.Tables {
			schema, table := p.DefaultSchema, t
			if p.SplitSchema {
				schema, table = sqlinfo.SplitQualified(t, p.DefaultSchema)
			}
			sources = append(sources, model.DataSource{
				Kind:              "database",
				Engine:            engine,
				Database:          database,
				Schema:            schema,
				Table:             table,
				Role:              role,
				Columns:           columns,
				Filters:           info.Filters,
				Joins:             info.Joins,
				SourceCodeSnippet: snippet,
			})
		}
	}
	return sources, infos
}

// featureName strips the extension and the first matching suffix from the
// entry file's base name, then humanizes it.
func featureName(rel string, p lang.Profile) string {
	base := path.Base(rel)
	base = strings.TrimSuffix(base, path.Ext(base))
	stripped := base
	for _, suffix := range p.NameSuffixes {
		if strings.HasSuffix(stripped, suffix) && stripped != suffix {
			stripped = strings.TrimSuffix(stripped, suffix)
			break
		}
	}
	if p.Humanize != nil {
		stripped = p.Humanize(stripped)
	}
	if strings.TrimSpace(stripped) == "" {
		return base
	}
	return stripped
}

// methodInputs reports the first public methods as inputs.
func methodInputs(content string) []model.Input {
	inputs := []model.Input{}
	for _, m := range publicMethod.FindAllStringSubmatch(content, maxMethodInputs) {
		desc := strings.TrimSpace(m[3])
		if desc == "" {
			desc = "no parameters"
		}
		inputs = append(inputs, model.Input{Name: m[2], Type: m[1], Description: desc})
	}
	return inputs
}
