package tool

// Registry defines the interface for tool registration and lookup.
// This is a repository interface - implementations are in infrastructure.
type Registry interface {
	// Register adds a tool to the registry, overwriting any tool with the
	// same name.
	Register(tool Tool)

	// Get retrieves a tool by name.
	Get(name string) (Tool, bool)

	// List returns all registered tools ordered by name.
	List() []Tool

	// Names returns all registered tool names in sorted order.
	Names() []string

	// Has checks if a tool is registered.
	Has(name string) bool
}
