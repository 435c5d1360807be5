package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/HendryAvila/feature-replicator/internal/model"
)

// TechStackFile is the descriptor location relative to a repository root.
const TechStackFile = "docs/TECH_STACK_STATUS.json"

// TechStackPath returns the descriptor path for a repository root.
func TechStackPath(repoRoot string) string {
	return filepath.Join(repoRoot, filepath.FromSlash(TechStackFile))
}

// LoadTechStack reads the repository's tech-stack descriptor.
// Callers treat any error as "no descriptor" and fall back to an empty stack.
func LoadTechStack(repoRoot string) (model.TechStack, error) {
	path := TechStackPath(repoRoot)
	data, err := os.ReadFile(path)
	if err != nil {
		return model.TechStack{}, fmt.Errorf("reading %s: %w", TechStackFile, err)
	}
	var ts model.TechStack
	if err := json.Unmarshal(data, &ts); err != nil {
		return model.TechStack{}, fmt.Errorf("parsing %s: %w", TechStackFile, err)
	}
	return ts, nil
}
