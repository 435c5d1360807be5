// Package model defines the records that flow through the feature
// replicator: file references, tech-stack descriptors, feature candidates,
// query analysis results and the terminal FeatureSpec.
//
// Types here carry JSON tags matching the tool-call wire format. They hold
// no behavior beyond small normalization helpers so every analyzer can
// share them without import cycles.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Feature candidate type tags.
const (
	TypeEndpoint      = "endpoint"
	TypeBusinessLogic = "business_logic"
	TypeDataAccess    = "data_access"
	TypeUtility       = "utility"
)

// DefaultDatabaseName is used when the tech stack names no database.
const DefaultDatabaseName = "DATABASE_NAME"

// FileRef is a file found by the repository walker.
// RelativePath is always relative to the scan root and uses forward slashes.
type FileRef struct {
	FullPath     string `json:"full_path"`
	RelativePath string `json:"relative_path"`
}

// Database names a database engine the analyzed code talks to.
type Database struct {
	Engine string `json:"engine" yaml:"engine"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
}

// UnmarshalJSON accepts either {"engine": ..., "name": ...} or a bare
// engine string such as "mysql".
func (d *Database) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var engine string
		if err := json.Unmarshal(data, &engine); err != nil {
			return fmt.Errorf("database engine: %w", err)
		}
		*d = Database{Engine: engine}
		return nil
	}
	type plain Database
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	*d = Database(p)
	return nil
}

// TechStack describes the implementation stack of the analyzed repository.
type TechStack struct {
	Language  string     `json:"language,omitempty" yaml:"language,omitempty"`
	Framework string     `json:"framework,omitempty" yaml:"framework,omitempty"`
	Databases []Database `json:"databases,omitempty" yaml:"databases,omitempty"`
}

// IsZero reports whether no field of the tech stack is set.
func (t TechStack) IsZero() bool {
	return t.Language == "" && t.Framework == "" && len(t.Databases) == 0
}

// PrimaryDatabase returns the first configured database, or ok=false.
func (t TechStack) PrimaryDatabase() (Database, bool) {
	if len(t.Databases) == 0 {
		return Database{}, false
	}
	return t.Databases[0], true
}

// NormalizedLanguage returns the lower-cased, trimmed language id.
func (t TechStack) NormalizedLanguage() string {
	return strings.ToLower(strings.TrimSpace(t.Language))
}

// FeatureCandidate is one detected unit of functionality.
type FeatureCandidate struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Language    string         `json:"language"`
	Files       []string       `json:"files"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// HasFile reports whether rel is one of the candidate's files.
func (c FeatureCandidate) HasFile(rel string) bool {
	for _, f := range c.Files {
		if f == rel {
			return true
		}
	}
	return false
}
