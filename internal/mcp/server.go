// Package mcp provides a Model Context Protocol server for rustme.
// It exposes generation, drift checks and reference lookups as MCP tools
// that any MCP-capable agent can use.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/rustme/internal/generate"
)

// GeneratorFactory builds the Generator for one tool call. Every call is a
// separate run with its own cache.
type GeneratorFactory func(opts ...generate.Option) *generate.Generator

// NewServer creates an MCP server with all rustme tools registered.
func NewServer(version string, newGenerator GeneratorFactory) *mcp.Server {
	if newGenerator == nil {
		newGenerator = generate.New
	}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "rustme",
		Version: version,
	}, nil)
	registerTools(server, newGenerator)
	return server
}

func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for tools that never write.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(true),
	}
}

// writeAnnotations returns annotations for generate, which replaces files
// but converges on the same output when repeated.
func writeAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(true),
		IdempotentHint:  true,
		OpenWorldHint:   boolPtr(true),
	}
}

func registerTools(server *mcp.Server, newGenerator GeneratorFactory) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate",
		Description: "Regenerate every document configured below a directory (default: the working directory). Returns the files written and whether each changed.",
		Annotations: writeAnnotations(),
	}, handleGenerate(newGenerator))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check",
		Description: "Render every configured document without writing and report which ones are stale, with the headings whose content differs.",
		Annotations: readOnlyAnnotations(),
	}, handleCheck(newGenerator))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "snippet",
		Description: "Resolve one reference the way a $reference$ token would: a glossary term name or a file:snippet reference.",
		Annotations: readOnlyAnnotations(),
	}, handleSnippet(newGenerator))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "glossary",
		Description: "List the merged glossary of a configuration (optionally for one configured file) with every term rendered for the requested context.",
		Annotations: readOnlyAnnotations(),
	}, handleGlossary(newGenerator))
}
