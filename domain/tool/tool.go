package tool

import (
	"context"
	"encoding/json"
)

// Tool represents a registered capability the assistant can invoke.
type Tool interface {
	// Name returns the stable string identifier for the tool.
	Name() string

	// Description returns a one-line description of what the tool does.
	Description() string

	// Usage returns the help text injected into the routing prompt.
	Usage() string

	// Safety returns the tool's risk classification.
	Safety() SafetyLevel

	// Execute runs the tool with the given JSON parameters.
	Execute(ctx context.Context, params json.RawMessage) (Result, error)
}

// Handler is the function signature for tool execution.
type Handler func(ctx context.Context, params json.RawMessage) (Result, error)

// Definition is a concrete implementation of Tool.
type Definition struct {
	name        string
	description string
	usage       string
	safety      SafetyLevel
	handler     Handler
}

// Name returns the tool name.
func (d *Definition) Name() string {
	return d.name
}

// Description returns the tool description.
func (d *Definition) Description() string {
	return d.description
}

// Usage returns the tool usage text.
func (d *Definition) Usage() string {
	return d.usage
}

// Safety returns the tool safety level.
func (d *Definition) Safety() SafetyLevel {
	return d.safety
}

// Execute runs the tool handler.
func (d *Definition) Execute(ctx context.Context, params json.RawMessage) (Result, error) {
	if d.handler == nil {
		return Result{}, ErrNoHandler
	}
	return d.handler(ctx, params)
}

// Builder provides a fluent API for constructing tools.
type Builder struct {
	def *Definition
}

// NewBuilder creates a new tool builder with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{
		def: &Definition{
			name:   name,
			safety: SafetySafe,
		},
	}
}

// WithDescription sets the tool description.
func (b *Builder) WithDescription(desc string) *Builder {
	b.def.description = desc
	return b
}

// WithUsage sets the tool usage text.
func (b *Builder) WithUsage(usage string) *Builder {
	b.def.usage = usage
	return b
}

// Safe marks the tool as safe.
func (b *Builder) Safe() *Builder {
	b.def.safety = SafetySafe
	return b
}

// Moderate marks the tool as moderate risk.
func (b *Builder) Moderate() *Builder {
	b.def.safety = SafetyModerate
	return b
}

// Dangerous marks the tool as dangerous.
func (b *Builder) Dangerous() *Builder {
	b.def.safety = SafetyDangerous
	return b
}

// WithHandler sets the tool handler function.
func (b *Builder) WithHandler(handler Handler) *Builder {
	b.def.handler = handler
	return b
}

// Build constructs the tool definition.
func (b *Builder) Build() (Tool, error) {
	if b.def.name == "" {
		return nil, ErrEmptyName
	}
	if b.def.handler == nil {
		return nil, ErrNoHandler
	}
	return b.def, nil
}

// MustBuild constructs the tool definition or panics on error.
func (b *Builder) MustBuild() Tool {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}
