package project

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// manifestNames are the dependency/manifest files folded into context, in
// fixed order.
var manifestNames = []string{
	"package.json", "requirements.txt", "Pipfile", "pyproject.toml",
	"Cargo.toml", "go.mod",
}

// packageJSONExcerpt keeps only the fields worth showing from a
// package.json. Field order is fixed by the struct.
type packageJSONExcerpt struct {
	Name            string            `json:"name,omitempty"`
	Version         string            `json:"version,omitempty"`
	Scripts         map[string]string `json:"scripts,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
}

// loadManifests concatenates manifest files. package.json gets structured
// field extraction; everything else is included raw.
func (a *Aggregator) loadManifests() string {
	var sections []string
	for _, name := range manifestNames {
		path := filepath.Join(a.projectRoot, name)
		content := readTrimmed(path)
		if content == "" {
			continue
		}
		if name == "package.json" {
			if excerpt := extractPackageJSON(content); excerpt != "" {
				content = excerpt
			}
		}
		sections = append(sections, "--- "+name+" ---\n"+content)
	}
	return strings.Join(sections, "\n\n")
}

// extractPackageJSON reduces a package.json to its key sections. Returns ""
// when the file is not valid JSON, in which case the raw content is kept.
func extractPackageJSON(content string) string {
	var excerpt packageJSONExcerpt
	if err := json.Unmarshal([]byte(content), &excerpt); err != nil {
		return ""
	}
	data, err := json.MarshalIndent(excerpt, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
