// Package tools provides a metadata-driven registry for MCP tool definitions.
// Tools are defined declaratively and registered through type-safe handlers.
package tools

// ToolSpec defines a tool's metadata for declarative registration.
// Each spec maps to a wikidot client method with matching Args/Result types.
type ToolSpec struct {
	// Name is the MCP tool name (e.g., "wikidot_get_page_id")
	Name string

	// Method is the client method name (e.g., "GetPageID")
	Method string

	// Description is the tool description shown to LLMs
	Description string

	// Title is the human-readable tool title for annotations
	Title string

	// Category groups tools logically (read, lookup, write)
	Category string

	// Backend names the upstream surface the tool talks to:
	// module (ajax-module-connector), graphql (mirror), page (HTML), quickmodule
	Backend string

	// ReadOnly indicates the tool doesn't modify site state
	ReadOnly bool

	// Destructive indicates the tool can delete or overwrite data
	Destructive bool

	// Idempotent indicates repeated calls have the same effect
	Idempotent bool

	// OpenWorld indicates the tool accesses external resources
	OpenWorld bool

	// RequiresAuth indicates the tool needs a logged-in session
	RequiresAuth bool
}

// ToolsByCategory returns the specs in category, in definition order.
func ToolsByCategory(category string) []ToolSpec {
	return filterTools(func(s ToolSpec) bool { return s.Category == category })
}

// ToolsByBackend returns the specs served by backend, in definition order.
func ToolsByBackend(backend string) []ToolSpec {
	return filterTools(func(s ToolSpec) bool { return s.Backend == backend })
}

func filterTools(keep func(ToolSpec) bool) []ToolSpec {
	var out []ToolSpec
	for _, spec := range AllTools {
		if keep(spec) {
			out = append(out, spec)
		}
	}
	return out
}

// ptr is a helper to create a pointer to a value.
func ptr[T any](v T) *T {
	return &v
}
