package feature

import (
	"context"
	"path"
	"strings"

	"github.com/HendryAvila/feature-replicator/internal/extract"
	"github.com/HendryAvila/feature-replicator/internal/model"
	"github.com/HendryAvila/feature-replicator/internal/phpast"
)

// MaxInsightEntries caps each list of a code insight report.
const MaxInsightEntries = 50

// enrich adds the structured inputs and output, business context, process
// flow, catalog structure, example scenarios and code insights.
func (s *Service) enrich(ctx context.Context, spec *model.FeatureSpec, files []entryFile, content string, infos []model.QueryInfo, guards int) {
	legacy := s.cfg.Legacy

	spec.Inputs = extract.PHPParams(content, legacy.ParamMeanings)
	output := extract.ClassifyOutput(content)
	spec.Outputs = model.Outputs{Primary: &output}

	blocks := extract.GroupQueryBlocks(infos, legacy.TableBlocks)
	spec.CatalogStructure = blocks
	spec.ProcessFlow = extract.ProcessFlow(content, blocks, output)

	purpose := extract.InferPurpose(spec.FeatureID, content, legacy.FeaturePurposes)
	if purpose != "" {
		spec.DomainPurpose = purpose
	} else {
		purpose = spec.DomainPurpose
	}
	spec.BusinessContext = &model.BusinessContext{
		Purpose:     purpose,
		Actors:      extract.InferActors(content),
		EntryPoints: extract.EntryPoints(spec.FilesInvolved, content),
	}
	spec.ExampleScenarios = extract.ExampleScenarios(spec.Inputs, output, spec.Tables(), guards)

	for _, f := range files {
		if !isPHPSource(f.rel) {
			continue
		}
		report := phpast.Analyze(ctx, []byte(f.content)).Capped(MaxInsightEntries)
		if report.ParseError != "" {
			s.logger.Warn("code structure analysis failed", "file", f.rel, "error", report.ParseError)
		}
		spec.CodeInsights = append(spec.CodeInsights, model.CodeInsight{File: f.rel, Report: report})
	}

	s.logger.Info("php enrichment", "feature_id", spec.FeatureID,
		"inputs", spec.Inputs.Len(), "output", output.Type,
		"blocks", len(blocks), "insights", len(spec.CodeInsights))
}

func isPHPSource(rel string) bool {
	switch strings.ToLower(path.Ext(rel)) {
	case ".php", ".inc", ".phtml":
		return true
	}
	return false
}
