package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileSchema is the yaml shape of a catalog override file. Every section is
// optional; absent sections keep the built-in defaults.
type fileSchema struct {
	CodeWords  []string `yaml:"codeWords,omitempty"`
	Units      []string `yaml:"units,omitempty"`
	Categories []string `yaml:"categories,omitempty"`
	Avatars    []string `yaml:"avatars,omitempty"`
}

// Load returns the default catalog merged with the overrides found in
// filePath. An empty path returns the defaults untouched.
func Load(filePath string) (*Catalog, error) {
	cat := Default()
	if filePath == "" {
		return cat, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var overrides fileSchema
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}

	if len(overrides.CodeWords) > 0 {
		cat.CodeWords = overrides.CodeWords
	}
	if len(overrides.Units) > 0 {
		cat.Units = overrides.Units
	}
	if len(overrides.Categories) > 0 {
		cat.Categories = overrides.Categories
	}
	if len(overrides.Avatars) > 0 {
		cat.Avatars = overrides.Avatars
	}

	return cat, nil
}
