package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FeatureSpec is the terminal aggregate produced by scan_feature.
//
// Inputs and Outputs have two wire shapes: a flat list for most languages
// and a structured object for the PHP enrichment path.
type FeatureSpec struct {
	FeatureID        string                `json:"feature_id"`
	Name             string                `json:"name"`
	DomainPurpose    string                `json:"domain_purpose"`
	BusinessContext  *BusinessContext      `json:"business_context,omitempty"`
	Inputs           Inputs                `json:"inputs"`
	Outputs          Outputs               `json:"outputs"`
	ProcessFlow      []string              `json:"process_flow,omitempty"`
	DataSources      []DataSource          `json:"data_sources"`
	FileSystem       []FileSystemTouch     `json:"file_system"`
	ExternalServices []ExternalServiceCall `json:"external_services"`
	BusinessRules    []string              `json:"business_rules"`
	FilesInvolved    []string              `json:"files_involved"`
	TechStack        TechStack             `json:"tech_stack"`
	CatalogStructure []CatalogBlock        `json:"catalog_structure,omitempty"`
	ExampleScenarios []ExampleScenario     `json:"example_scenarios,omitempty"`
	CodeInsights     []CodeInsight         `json:"code_insights,omitempty"`
}

// Normalize replaces nil list fields with empty lists so the JSON form
// always carries arrays.
func (s *FeatureSpec) Normalize() {
	if s.DataSources == nil {
		s.DataSources = []DataSource{}
	}
	if s.FileSystem == nil {
		s.FileSystem = []FileSystemTouch{}
	}
	if s.ExternalServices == nil {
		s.ExternalServices = []ExternalServiceCall{}
	}
	if s.BusinessRules == nil {
		s.BusinessRules = []string{}
	}
	if s.FilesInvolved == nil {
		s.FilesInvolved = []string{}
	}
}

// Tables returns the distinct table names referenced by the data sources.
func (s *FeatureSpec) Tables() []string {
	seen := make(map[string]bool)
	var out []string
	for _, ds := range s.DataSources {
		if ds.Table == "" || seen[ds.Table] {
			continue
		}
		seen[ds.Table] = true
		out = append(out, ds.Table)
	}
	return out
}

// BusinessContext is the PHP-path summary of who uses a feature and how.
type BusinessContext struct {
	Purpose     string   `json:"purpose"`
	Actors      []string `json:"actors"`
	EntryPoints []string `json:"entry_points"`
}

// Input is one feature input: a method, an HTTP parameter or a session value.
type Input struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Source      string `json:"source,omitempty"`
	Description string `json:"description,omitempty"`
}

// Inputs holds either a flat list or PHP-style buckets.
type Inputs struct {
	List []Input

	Structured   bool
	HTTPParams   []Input
	FormFields   []Input
	OtherSources []Input
}

// Len returns the number of inputs across all buckets.
func (in Inputs) Len() int {
	return len(in.List) + len(in.HTTPParams) + len(in.FormFields) + len(in.OtherSources)
}

type structuredInputs struct {
	HTTPParams   []Input `json:"http_params"`
	FormFields   []Input `json:"form_fields"`
	OtherSources []Input `json:"other_sources"`
}

// MarshalJSON emits an object for structured inputs and an array otherwise.
func (in Inputs) MarshalJSON() ([]byte, error) {
	if in.Structured {
		return json.Marshal(structuredInputs{
			HTTPParams:   nonNilInputs(in.HTTPParams),
			FormFields:   nonNilInputs(in.FormFields),
			OtherSources: nonNilInputs(in.OtherSources),
		})
	}
	return json.Marshal(nonNilInputs(in.List))
}

// UnmarshalJSON accepts both wire shapes.
func (in *Inputs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*in = Inputs{}
		return nil
	case data[0] == '[':
		var list []Input
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("inputs: %w", err)
		}
		*in = Inputs{List: list}
		return nil
	default:
		var s structuredInputs
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("inputs: %w", err)
		}
		*in = Inputs{
			Structured:   true,
			HTTPParams:   s.HTTPParams,
			FormFields:   s.FormFields,
			OtherSources: s.OtherSources,
		}
		return nil
	}
}

func nonNilInputs(in []Input) []Input {
	if in == nil {
		return []Input{}
	}
	return in
}

// Output describes what a feature produces.
type Output struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Structure   []string `json:"structure,omitempty"`
}

// Outputs holds either a flat list or a single classified output.
type Outputs struct {
	List    []Output
	Primary *Output
}

// All returns every output regardless of shape.
func (o Outputs) All() []Output {
	if o.Primary != nil {
		return []Output{*o.Primary}
	}
	return o.List
}

// MarshalJSON emits an object when a primary output is set.
func (o Outputs) MarshalJSON() ([]byte, error) {
	if o.Primary != nil {
		return json.Marshal(*o.Primary)
	}
	if o.List == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(o.List)
}

// UnmarshalJSON accepts both wire shapes.
func (o *Outputs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*o = Outputs{}
		return nil
	case data[0] == '[':
		var list []Output
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("outputs: %w", err)
		}
		*o = Outputs{List: list}
		return nil
	default:
		var one Output
		if err := json.Unmarshal(data, &one); err != nil {
			return fmt.Errorf("outputs: %w", err)
		}
		*o = Outputs{Primary: &one}
		return nil
	}
}

// CatalogBlock groups the tables a feature touches under one business block.
type CatalogBlock struct {
	Block       string   `json:"block"`
	Description string   `json:"description"`
	Tables      []string `json:"tables"`
	Queries     int      `json:"queries"`
}

// ExampleScenario is a sample invocation derived from detected inputs.
type ExampleScenario struct {
	Title    string            `json:"title"`
	Inputs   map[string]string `json:"inputs,omitempty"`
	Expected string            `json:"expected"`
}

// CodeInsight is the tree-based analysis of one entry file.
type CodeInsight struct {
	File   string          `json:"file"`
	Report StructureReport `json:"report"`
}
