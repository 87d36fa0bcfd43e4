package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/rustme/internal/cache"
	"github.com/gorewood/rustme/internal/config"
	"github.com/gorewood/rustme/internal/generate"
	"github.com/gorewood/rustme/internal/glossary"
)

// FileSummary describes one rendered document.
type FileSummary struct {
	Config          string   `json:"config"                     jsonschema:"configuration file the document belongs to"`
	Name            string   `json:"name"                       jsonschema:"document name as configured"`
	Path            string   `json:"path"                       jsonschema:"absolute output path"`
	Bytes           int      `json:"bytes"                      jsonschema:"size of the rendered document"`
	Changed         bool     `json:"changed"                    jsonschema:"whether the rendered document differs from the file on disk"`
	ChangedHeadings []string `json:"changed_headings,omitempty" jsonschema:"headings whose content differs"`
}

// --- Generate tool ---

// GenerateInput is the input for the generate tool.
type GenerateInput struct {
	Dir     string `json:"dir,omitempty"     jsonschema:"directory to search for configurations (default .)"`
	Release bool   `json:"release,omitempty" jsonschema:"render the release facet of conditional terms"`
}

// GenerateOutput is the output for the generate tool.
type GenerateOutput struct {
	RunID string        `json:"run_id" jsonschema:"identifier of this run"`
	Files []FileSummary `json:"files"  jsonschema:"documents written"`
	Cache cache.Stats   `json:"cache"  jsonschema:"resource cache counters"`
}

func handleGenerate(newGenerator GeneratorFactory) mcp.ToolHandlerFor[GenerateInput, GenerateOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GenerateInput) (*mcp.CallToolResult, GenerateOutput, error) {
		g := newGenerator(generate.WithRelease(input.Release))
		report, err := g.GenerateInDirectory(ctx, dirOrDefault(input.Dir))
		if err != nil {
			return nil, GenerateOutput{}, fmt.Errorf("generating: %w", err)
		}
		return nil, GenerateOutput{
			RunID: report.RunID,
			Files: toFileSummaries(report, false),
			Cache: report.Cache,
		}, nil
	}
}

// --- Check tool ---

// CheckInput is the input for the check tool.
type CheckInput struct {
	Dir     string `json:"dir,omitempty"     jsonschema:"directory to search for configurations (default .)"`
	Release bool   `json:"release,omitempty" jsonschema:"render the release facet of conditional terms"`
}

// CheckOutput is the output for the check tool.
type CheckOutput struct {
	Stale   bool          `json:"stale"   jsonschema:"whether any document is out of date"`
	Checked int           `json:"checked" jsonschema:"number of documents rendered"`
	Drifted []FileSummary `json:"drifted" jsonschema:"documents that would change"`
}

func handleCheck(newGenerator GeneratorFactory) mcp.ToolHandlerFor[CheckInput, CheckOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CheckInput) (*mcp.CallToolResult, CheckOutput, error) {
		g := newGenerator(generate.WithCheck(true), generate.WithRelease(input.Release))
		report, err := g.GenerateInDirectory(ctx, dirOrDefault(input.Dir))
		if err != nil {
			return nil, CheckOutput{}, fmt.Errorf("checking: %w", err)
		}
		drifted := toFileSummaries(report, true)
		return nil, CheckOutput{
			Stale:   len(drifted) > 0,
			Checked: report.FileCount(),
			Drifted: drifted,
		}, nil
	}
}

// --- Snippet tool ---

// SnippetInput is the input for the snippet tool.
type SnippetInput struct {
	Reference string `json:"reference"         jsonschema:"glossary term name or file:snippet reference"`
	Config    string `json:"config,omitempty"  jsonschema:"configuration file (default: first one found below dir)"`
	Dir       string `json:"dir,omitempty"     jsonschema:"directory to search when config is not given (default .)"`
	File      string `json:"file,omitempty"    jsonschema:"configured document whose glossary and context apply"`
	Release   bool   `json:"release,omitempty" jsonschema:"render the release facet of conditional terms"`
}

// SnippetOutput is the output for the snippet tool.
type SnippetOutput struct {
	Reference string `json:"reference" jsonschema:"the reference that was resolved"`
	Value     string `json:"value"     jsonschema:"resolved text"`
}

func handleSnippet(newGenerator GeneratorFactory) mcp.ToolHandlerFor[SnippetInput, SnippetOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SnippetInput) (*mcp.CallToolResult, SnippetOutput, error) {
		if input.Reference == "" {
			return nil, SnippetOutput{}, errors.New("reference is required")
		}
		cfg, err := config.Find(input.Config, dirOrDefault(input.Dir))
		if err != nil {
			return nil, SnippetOutput{}, fmt.Errorf("loading configuration: %w", err)
		}
		g := newGenerator(generate.WithRelease(input.Release))
		value, err := g.Resolve(ctx, cfg, input.File, input.Reference)
		if err != nil {
			return nil, SnippetOutput{}, err
		}
		return nil, SnippetOutput{Reference: input.Reference, Value: value}, nil
	}
}

// --- Glossary tool ---

// GlossaryInput is the input for the glossary tool.
type GlossaryInput struct {
	Config  string `json:"config,omitempty"   jsonschema:"configuration file (default: first one found below dir)"`
	Dir     string `json:"dir,omitempty"      jsonschema:"directory to search when config is not given (default .)"`
	File    string `json:"file,omitempty"     jsonschema:"include the glossaries of this configured document"`
	Release bool   `json:"release,omitempty"  jsonschema:"render the release facet of conditional terms"`
	ForDocs bool   `json:"for_docs,omitempty" jsonschema:"render the for_docs facet of conditional terms"`
}

// TermValue is one rendered glossary term.
type TermValue struct {
	Name        string `json:"name"        jsonschema:"term name"`
	Value       string `json:"value"       jsonschema:"value in the requested context"`
	Conditional bool   `json:"conditional" jsonschema:"whether the value depends on the context"`
}

// GlossaryOutput is the output for the glossary tool.
type GlossaryOutput struct {
	Config string      `json:"config" jsonschema:"configuration file used"`
	Terms  []TermValue `json:"terms"  jsonschema:"terms in merge order"`
}

func handleGlossary(newGenerator GeneratorFactory) mcp.ToolHandlerFor[GlossaryInput, GlossaryOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GlossaryInput) (*mcp.CallToolResult, GlossaryOutput, error) {
		cfg, err := config.Find(input.Config, dirOrDefault(input.Dir))
		if err != nil {
			return nil, GlossaryOutput{}, fmt.Errorf("loading configuration: %w", err)
		}
		g := newGenerator()
		terms, err := g.Terms(ctx, cfg, input.File)
		if err != nil {
			return nil, GlossaryOutput{}, err
		}

		renderCtx := glossary.Context{ForDocs: input.ForDocs, Release: input.Release}
		out := GlossaryOutput{Config: cfg.Path, Terms: make([]TermValue, 0, terms.Len())}
		for _, name := range terms.Names() {
			term, _ := terms.Get(name)
			out.Terms = append(out.Terms, TermValue{
				Name:        name,
				Value:       term.Render(renderCtx),
				Conditional: !term.IsStatic(),
			})
		}
		return nil, out, nil
	}
}
