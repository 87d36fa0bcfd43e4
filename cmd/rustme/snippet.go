package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/rustme/internal/config"
	"github.com/gorewood/rustme/internal/generate"
	"github.com/gorewood/rustme/internal/glossary"
)

// lookupFlags are shared by snippet and glossary.
type lookupFlags struct {
	config  string
	dir     string
	file    string
	release bool
}

func (f *lookupFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.config, "config", "", "Configuration file (default: first one found below --dir)")
	cmd.Flags().StringVar(&f.dir, "dir", ".", "Directory to search for a configuration")
	cmd.Flags().StringVar(&f.file, "file", "", "Configured document whose glossaries and context apply")
	cmd.Flags().BoolVar(&f.release, "release", false, "Render the release facet of conditional terms")
}

// newSnippetCmd creates the snippet command.
func newSnippetCmd() *cobra.Command {
	var flags lookupFlags

	cmd := &cobra.Command{
		Use:   "snippet <reference>",
		Short: "Resolve a single glossary term or snippet reference",
		Long: `Resolve one reference exactly as a $reference$ token in a section would be
resolved: glossary terms first, then file:name snippet references.

Examples:
  rustme snippet name                       # A glossary term
  rustme snippet src/lib.rs:example         # A tagged snippet
  rustme snippet docs --file src/docs.md    # Term as rendered for that document`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnippet(cmd, args[0], flags)
		},
	}
	flags.register(cmd)

	return cmd
}

// runSnippet executes the snippet command.
func runSnippet(cmd *cobra.Command, reference string, flags lookupFlags) error {
	printer := newPrinter(cmd)

	cfg, err := config.Find(flags.config, flags.dir)
	if err != nil {
		return fail(printer, err)
	}

	g := newGenerator(generate.WithRelease(flags.release))
	value, err := g.Resolve(cmd.Context(), cfg, flags.file, reference)
	if err != nil {
		return fail(printer, err)
	}

	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{
			"reference": reference,
			"value":     value,
			"config":    cfg.Path,
		})
	}
	printer.Println(value)
	return nil
}

// newGlossaryCmd creates the glossary command.
func newGlossaryCmd() *cobra.Command {
	var flags lookupFlags
	var forDocs bool

	cmd := &cobra.Command{
		Use:   "glossary",
		Short: "List merged glossary terms",
		Long: `List the glossary of a configuration with every term rendered for the
requested context. With --file, the document's own glossaries are merged in
after the configuration-level ones.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGlossary(cmd, flags, forDocs)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&forDocs, "for-docs", false, "Render the for_docs facet of conditional terms")

	return cmd
}

// termRow is one glossary term in JSON output.
type termRow struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Conditional bool   `json:"conditional"`
}

// runGlossary executes the glossary command.
func runGlossary(cmd *cobra.Command, flags lookupFlags, forDocs bool) error {
	printer := newPrinter(cmd)

	cfg, err := config.Find(flags.config, flags.dir)
	if err != nil {
		return fail(printer, err)
	}

	terms, err := newGenerator().Terms(cmd.Context(), cfg, flags.file)
	if err != nil {
		return fail(printer, err)
	}

	ctx := glossary.Context{ForDocs: forDocs, Release: flags.release}
	rows := make([]termRow, 0, terms.Len())
	for _, name := range terms.Names() {
		term, _ := terms.Get(name)
		rows = append(rows, termRow{Name: name, Value: term.Render(ctx), Conditional: !term.IsStatic()})
	}

	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{"config": cfg.Path, "terms": rows})
	}

	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		kind := "static"
		if row.Conditional {
			kind = "conditional"
		}
		table = append(table, []string{row.Name, kind, row.Value})
	}
	printer.Table([]string{"NAME", "KIND", "VALUE"}, table)
	return nil
}
