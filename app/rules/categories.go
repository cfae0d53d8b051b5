package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AliasTable maps curated pseudo-category keys (e.g. "automotive.tools")
// to the concrete marketplace category ids they expand to.
type AliasTable map[string][]string

type aliasFile struct {
	Aliases map[string][]string `yaml:"aliases"`
}

// LoadAliases reads the category alias table from a YAML file. A missing
// file yields an empty table: pseudo-keys then pass through unresolved,
// which the upstream simply ignores.
func LoadAliases(path string) (AliasTable, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return AliasTable{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read alias file: %w", err)
	}

	var f aliasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse alias file: %w", err)
	}
	if f.Aliases == nil {
		return AliasTable{}, nil
	}
	return AliasTable(f.Aliases), nil
}

// Resolve maps an ordered list of category keys to a deduplicated list of
// concrete marketplace category ids, preserving first-seen order. Numeric
// keys are already concrete ids; known pseudo-keys expand through the
// alias table; unknown keys pass through unchanged.
func (t AliasTable) Resolve(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	emit := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	for _, key := range keys {
		if isNumeric(key) {
			emit(key)
			continue
		}
		if ids, ok := t[key]; ok {
			for _, id := range ids {
				emit(id)
			}
			continue
		}
		emit(key)
	}
	return out
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
