package project

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// interestingPatterns select the files worth showing in the structure
// snapshot.
var interestingPatterns = []string{
	"*.py", "*.js", "*.ts", "*.jsx", "*.tsx", "*.go", "*.rs", "*.java",
	"*.md", "*.yml", "*.yaml", "*.json", "*.toml", "*.ini",
	"Dockerfile", "docker-compose.yml", "Makefile", "CMakeLists.txt",
}

// skippedDirs are generated or dependency directories excluded from the
// snapshot, in addition to hidden directories.
var skippedDirs = map[string]bool{
	"node_modules": true,
	"__pycache__":  true,
	"venv":         true,
	"env":          true,
	"target":       true,
	"vendor":       true,
}

const (
	structureMaxDepth = 3
	structureMaxLines = 50
)

// structureSnapshot renders a depth-limited directory tree filtered to
// interesting files. Output is capped at structureMaxLines with an explicit
// truncation marker. WalkDir visits entries lexically, so the snapshot is
// deterministic.
func (a *Aggregator) structureSnapshot() string {
	var lines []string
	truncated := false

	err := filepath.WalkDir(a.projectRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if truncated {
			return filepath.SkipAll
		}

		rel, relErr := filepath.Rel(a.projectRoot, path)
		if relErr != nil {
			return nil
		}
		depth := 0
		if rel != "." {
			depth = strings.Count(rel, string(filepath.Separator)) + 1
		}

		if d.IsDir() {
			name := d.Name()
			if rel != "." && (strings.HasPrefix(name, ".") || skippedDirs[name]) {
				return filepath.SkipDir
			}
			if depth > structureMaxDepth {
				return filepath.SkipDir
			}
			indent := strings.Repeat("  ", depth)
			lines = append(lines, indent+rel+"/")
		} else {
			if depth > structureMaxDepth || !interesting(d.Name()) {
				return nil
			}
			indent := strings.Repeat("  ", depth)
			lines = append(lines, indent+d.Name())
		}

		if len(lines) > structureMaxLines {
			lines = append(lines, "... (truncated)")
			truncated = true
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "Unable to generate project structure"
	}

	return strings.Join(lines, "\n")
}

func interesting(name string) bool {
	for _, pattern := range interestingPatterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
