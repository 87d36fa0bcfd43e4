// Package render turns section text into final document text: it expands
// $name$ references and tidies fenced Rust code blocks.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gorewood/rustme/internal/glossary"
	"github.com/gorewood/rustme/internal/scan"
	"github.com/gorewood/rustme/internal/snippet"
)

var (
	// ErrMalformedReference is returned when a reference has no closing $.
	ErrMalformedReference = errors.New("a snippet reference is missing its closing $")
	// ErrMalformedCodeBlock is returned when a rust code block is never closed.
	ErrMalformedCodeBlock = errors.New("a rust code block was not closed")
)

const (
	rustFence   = "```rust"
	closeFence  = "```"
	hiddenLine  = "# "
	delimiter   = '$'
	fenceOpener = '`'
)

// Context selects which facet of a conditional term is rendered.
type Context = glossary.Context

// Resolver expands references for one output file. Glossary is consulted
// before Snippets, and relative snippet references are anchored at BaseDir.
type Resolver struct {
	Glossary *glossary.Terms
	Snippets *snippet.Store
	BaseDir  string
	Context  Context
}

// ReplaceReferences substitutes every $name$ token in text. $$ yields a
// literal dollar sign. A name bound in the glossary renders the term for the
// resolver's context; any other name is loaded as a snippet reference.
func (r *Resolver) ReplaceReferences(text string) (string, error) {
	var out strings.Builder
	out.Grow(len(text))

	s := scan.New(text)
	for {
		skipped, err := s.ReadUntilByte(delimiter)
		if err != nil {
			return "", err
		}
		out.WriteString(skipped)
		if _, ok := s.NextByte(); !ok {
			break
		}

		name, err := s.ReadUntilByte(delimiter)
		if err != nil {
			return "", err
		}
		if _, ok := s.NextByte(); !ok {
			return "", fmt.Errorf("%w: $%s", ErrMalformedReference, name)
		}

		if name == "" {
			out.WriteByte(delimiter)
			continue
		}
		resolved, err := r.Lookup(name)
		if err != nil {
			return "", err
		}
		out.WriteString(resolved)
	}

	return out.String(), nil
}

// Lookup resolves a single reference name: a glossary term if one is bound,
// otherwise a snippet reference relative to BaseDir.
func (r *Resolver) Lookup(name string) (string, error) {
	if term, ok := r.Glossary.Get(name); ok {
		return term.Render(r.Context), nil
	}
	if r.Snippets == nil {
		return "", &snippet.NotFoundError{Reference: name}
	}
	return r.Snippets.Load(name, r.BaseDir)
}

// Process expands references and then rewrites code blocks.
func (r *Resolver) Process(text string) (string, error) {
	replaced, err := r.ReplaceReferences(text)
	if err != nil {
		return "", err
	}
	return RewriteCodeBlocks(replaced)
}

// RewriteCodeBlocks drops hidden lines ("# " after indentation) from fenced
// rust code blocks, the way rustdoc hides them. The fence lines and every
// other line are kept verbatim. Other fences pass through unchanged.
func RewriteCodeBlocks(text string) (string, error) {
	var out strings.Builder
	out.Grow(len(text))

	s := scan.New(text)
	for {
		b, ok := s.NextByte()
		if !ok {
			break
		}
		if b != fenceOpener || !s.TryMatch(rustFence[1:]) {
			out.WriteByte(b)
			continue
		}

		out.WriteString(rustFence)
		rest, err := s.ReadLine()
		if err != nil {
			return "", err
		}
		out.WriteString(rest)

		if err := copyRustBlock(s, &out); err != nil {
			return "", err
		}
	}

	return out.String(), nil
}

func copyRustBlock(s *scan.Scanner, out *strings.Builder) error {
	for {
		line, err := s.ReadLine()
		if err != nil {
			return err
		}
		if line == "" {
			return ErrMalformedCodeBlock
		}
		trimmed := strings.TrimLeft(line, " \t\r\n\f\v")
		switch {
		case strings.HasPrefix(trimmed, closeFence):
			out.WriteString(line)
			return nil
		case strings.HasPrefix(trimmed, hiddenLine):
		default:
			out.WriteString(line)
		}
	}
}
