// Package workflow provides named prompt templates that pre-configure a tool
// policy for common task shapes.
package workflow

import (
	"errors"
	"fmt"
	"sort"
)

// ErrTemplateNotFound indicates an unknown template name.
var ErrTemplateNotFound = errors.New("workflow template not found")

// Template is an inert record: a prompt plus the tool policy the caller
// should apply to the dispatcher before routing.
type Template struct {
	// Name is the unique template identifier.
	Name string

	// Prompt is the boilerplate instruction text prepended to the task.
	Prompt string

	// Tools is the tool allowlist for this workflow.
	Tools []string

	// AutoApprove lists tools pre-approved for this workflow.
	AutoApprove []string
}

// Registry holds the known templates.
type Registry struct {
	templates map[string]Template
}

// NewRegistry creates a registry seeded with the built-in templates.
func NewRegistry() *Registry {
	r := &Registry{templates: make(map[string]Template)}
	for _, t := range builtins() {
		r.templates[t.Name] = t
	}
	return r
}

// Register adds or replaces a template.
func (r *Registry) Register(t Template) {
	r.templates[t.Name] = t
}

// Get retrieves a template by name.
func (r *Registry) Get(name string) (Template, error) {
	t, ok := r.templates[name]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	return t, nil
}

// Names returns the registered template names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compose concatenates the template prompt with optional custom text.
func (t Template) Compose(custom string) string {
	if custom == "" {
		return t.Prompt
	}
	return t.Prompt + "\n\nSpecific requirements:\n" + custom
}

func builtins() []Template {
	return []Template{
		{
			Name: "code_review",
			Prompt: `Please review this code for:
1. Bugs and potential issues
2. Code quality and best practices
3. Performance optimizations
4. Security concerns
5. Maintainability improvements

First, understand the codebase structure and purpose, then provide detailed feedback.`,
			Tools:       []string{"file_operations", "git_operations"},
			AutoApprove: []string{"file_operations"},
		},
		{
			Name: "feature_implementation",
			Prompt: `I need to implement a new feature. Please:
1. Analyze the existing codebase to understand the architecture
2. Create a detailed implementation plan
3. Break down the work into manageable steps
4. Implement the feature following project conventions
5. Add appropriate tests
6. Update documentation if needed

Always ask for confirmation before making significant changes.`,
			Tools:       []string{"file_operations", "bash_commands", "git_operations"},
			AutoApprove: []string{"file_operations"},
		},
		{
			Name: "debug_assistance",
			Prompt: `Help me debug this issue. Please:
1. Understand the problem by examining error logs and symptoms
2. Analyze the relevant code and recent changes
3. Check git history for related changes
4. Identify the root cause
5. Propose and implement fixes
6. Suggest preventive measures

Use all available tools to investigate thoroughly.`,
			Tools:       []string{"file_operations", "bash_commands", "git_operations", "web_search"},
			AutoApprove: []string{"file_operations", "git_operations"},
		},
		{
			Name: "refactoring",
			Prompt: `Help me refactor this code to improve:
1. Code organization and structure
2. Performance and efficiency
3. Readability and maintainability
4. Adherence to best practices
5. Test coverage

Please analyze the current state, propose improvements, and implement them carefully.`,
			Tools:       []string{"file_operations", "bash_commands"},
			AutoApprove: []string{"file_operations"},
		},
		{
			Name: "documentation",
			Prompt: `Help me improve the documentation for this project:
1. Review existing documentation for completeness and accuracy
2. Identify missing documentation
3. Create or update README, API docs, and code comments
4. Ensure documentation follows project standards
5. Add examples and usage instructions

Focus on making the project accessible to new contributors.`,
			Tools:       []string{"file_operations", "web_search"},
			AutoApprove: []string{"file_operations"},
		},
	}
}
