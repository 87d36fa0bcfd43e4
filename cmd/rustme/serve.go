package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	rustmemcp "github.com/gorewood/rustme/internal/mcp"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run rustme as a Model Context Protocol (MCP) server over stdio.

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "rustme": {
        "command": "rustme",
        "args": ["serve"]
      }
    }
  }

Available tools: generate, check, snippet, glossary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			server := rustmemcp.NewServer(buildVersion(), newGenerator)
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
