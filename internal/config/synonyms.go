package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadSynonyms reads a synonym table from a YAML file mapping a term to its
// equivalents, e.g.
//
//	ethanol: [biofuel, e15]
//	corn: [maize]
//
// An empty path means no file is configured and the caller should use its
// built-in table.
func LoadSynonyms(path string) (map[string][]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonyms file: %w", err)
	}
	var table map[string][]string
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse synonyms file %s: %w", path, err)
	}
	return table, nil
}
