// Package project aggregates project knowledge (notes, config, structure,
// docs, manifests, git state, memory) into one deterministic context string
// for prompt injection.
package project

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zkhudr/gemini-agent/domain/memory"
)

// Aggregator gathers labeled context sections in a fixed order. Sections
// with no content are omitted; the order of present sections never changes.
type Aggregator struct {
	projectRoot string
	workDir     string
	store       memory.Store
}

// Option configures the aggregator.
type Option func(*Aggregator)

// WithWorkDir sets the directory the upward notes walk starts from.
// Defaults to the project root.
func WithWorkDir(dir string) Option {
	return func(a *Aggregator) {
		a.workDir = dir
	}
}

// WithMemory attaches a memory store whose project and user scopes are
// excerpted into the context.
func WithMemory(store memory.Store) Option {
	return func(a *Aggregator) {
		a.store = store
	}
}

// NewAggregator creates an aggregator rooted at projectRoot.
func NewAggregator(projectRoot string, opts ...Option) *Aggregator {
	a := &Aggregator{
		projectRoot: filepath.Clean(projectRoot),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.workDir == "" {
		a.workDir = a.projectRoot
	}
	return a
}

// Root returns the project root directory.
func (a *Aggregator) Root() string {
	return a.projectRoot
}

// notesPatterns are the project note files collected while walking upward.
var notesPatterns = []string{"gemini.md", filepath.Join(".gemini", "context.md")}

// configPatterns are the project configuration files.
var configPatterns = []string{
	filepath.Join(".gemini", "config.yaml"),
	filepath.Join(".gemini", "project.yaml"),
}

// readmeNames are tried in order; only the first match is loaded.
var readmeNames = []string{"README.md", "readme.md", "README.txt"}

// readmeLimit caps the README excerpt length.
const readmeLimit = 3000

// Load concatenates every non-empty context section. Repeated calls against
// an unchanged filesystem produce identical output.
func (a *Aggregator) Load(ctx context.Context) string {
	var parts []string

	if notes := a.loadNotes(); notes != "" {
		parts = append(parts, "=== PROJECT CONTEXT (gemini.md) ===\n"+notes)
	}
	if cfg := a.loadConfig(); cfg != "" {
		parts = append(parts, "=== PROJECT CONFIGURATION ===\n"+cfg)
	}
	if structure := a.structureSnapshot(); structure != "" {
		parts = append(parts, "=== PROJECT STRUCTURE ===\n"+structure)
	}
	if docs := a.loadReadme(); docs != "" {
		parts = append(parts, "=== DOCUMENTATION ===\n"+docs)
	}
	if manifests := a.loadManifests(); manifests != "" {
		parts = append(parts, "=== DEPENDENCIES & CONFIGURATION ===\n"+manifests)
	}
	if gitCtx := a.loadGitContext(); gitCtx != "" {
		parts = append(parts, "=== GIT CONTEXT ===\n"+gitCtx)
	}
	if mem := a.loadMemory(ctx); mem != "" {
		parts = append(parts, "=== MEMORY ===\n"+mem)
	}

	return strings.Join(parts, "\n\n")
}

// Summary reports aggregate context size and presence flags. It recomputes
// the aggregation: callers should treat it as expensive as a full Load.
type Summary struct {
	ProjectPath   string `json:"project_path"`
	ContextSize   int    `json:"context_size"`
	MemoryEntries int    `json:"memory_entries"`
	HasNotes      bool   `json:"has_notes"`
	HasReadme     bool   `json:"has_readme"`
	HasManifest   bool   `json:"has_manifest"`
}

// Summarize recomputes the aggregation and reports its shape.
func (a *Aggregator) Summarize(ctx context.Context) Summary {
	full := a.Load(ctx)

	entries := 0
	if a.store != nil {
		if all, err := a.store.All(ctx); err == nil {
			for _, records := range all {
				entries += len(records)
			}
		}
	}

	return Summary{
		ProjectPath:   a.projectRoot,
		ContextSize:   len(full),
		MemoryEntries: entries,
		HasNotes:      a.loadNotes() != "",
		HasReadme:     a.loadReadme() != "",
		HasManifest:   a.loadManifests() != "",
	}
}

// loadNotes collects every project note file from workDir up to the project
// root, nearest directory first.
func (a *Aggregator) loadNotes() string {
	var sections []string

	dir := filepath.Clean(a.workDir)
	for {
		// A string prefix is not containment: /proj-extra is not under /proj.
		rel, err := filepath.Rel(a.projectRoot, dir)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			break
		}
		for _, pattern := range notesPatterns {
			path := filepath.Join(dir, pattern)
			content := readTrimmed(path)
			if content == "" {
				continue
			}
			rel, err := filepath.Rel(a.projectRoot, path)
			if err != nil {
				rel = path
			}
			sections = append(sections, "--- "+rel+" ---\n"+content)
		}
		if dir == a.projectRoot {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return strings.Join(sections, "\n\n")
}

// loadConfig concatenates the project configuration files.
func (a *Aggregator) loadConfig() string {
	var sections []string
	for _, pattern := range configPatterns {
		path := filepath.Join(a.projectRoot, pattern)
		content := readTrimmed(path)
		if content == "" {
			continue
		}
		sections = append(sections, "--- "+filepath.Base(path)+" ---\n"+content)
	}
	return strings.Join(sections, "\n\n")
}

// loadReadme loads the first README-like file, truncated to readmeLimit.
func (a *Aggregator) loadReadme() string {
	for _, name := range readmeNames {
		path := filepath.Join(a.projectRoot, name)
		content := readTrimmed(path)
		if content == "" {
			continue
		}
		if len(content) > readmeLimit {
			content = content[:readmeLimit] + "\n... (truncated)"
		}
		return "--- " + name + " ---\n" + content
	}
	return ""
}

// loadMemory excerpts the project and user memory scopes with sorted keys.
func (a *Aggregator) loadMemory(ctx context.Context) string {
	if a.store == nil {
		return ""
	}

	var sections []string
	for _, scope := range []memory.Scope{memory.ScopeProject, memory.ScopeUser} {
		all, err := a.store.All(ctx, scope)
		if err != nil {
			continue
		}
		records := all[scope]
		if len(records) == 0 {
			continue
		}
		keys := make([]string, 0, len(records))
		for k := range records {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, k+": "+records[k].Content)
		}
		title := strings.ToUpper(string(scope)[:1]) + string(scope)[1:]
		sections = append(sections, "--- "+title+" Memory ---\n"+strings.Join(lines, "\n"))
	}
	return strings.Join(sections, "\n\n")
}

func readTrimmed(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
