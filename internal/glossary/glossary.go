// Package glossary merges glossary sources into one table of named terms.
//
// Sources are applied left to right. Later sources override earlier ones a
// facet at a time (see Term.MergedWith), so a file-level glossary can change
// just the release value of a term the configuration defines.
package glossary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/gorewood/rustme/internal/logfields"
)

// InlineLocation is reported as the location of inline glossaries.
const InlineLocation = "(inline)"

// Terms is an insertion-ordered table of terms.
type Terms struct {
	names []string
	terms map[string]Term
}

// NewTerms returns an empty table.
func NewTerms() *Terms {
	return &Terms{terms: make(map[string]Term)}
}

// Get returns the term bound to name.
func (t *Terms) Get(name string) (Term, bool) {
	if t == nil {
		return Term{}, false
	}
	term, ok := t.terms[name]
	return term, ok
}

// Merge layers term over whatever name is currently bound to.
func (t *Terms) Merge(name string, term Term) {
	existing, ok := t.terms[name]
	if !ok {
		t.names = append(t.names, name)
		t.terms[name] = term
		return
	}
	t.terms[name] = existing.MergedWith(term)
}

// MergeAll merges every term of other, in other's order.
func (t *Terms) MergeAll(other *Terms) {
	if other == nil {
		return
	}
	for _, name := range other.names {
		t.Merge(name, other.terms[name])
	}
}

// Names returns term names in first-definition order.
func (t *Terms) Names() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.names...)
}

// Len returns the number of terms.
func (t *Terms) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// Clone returns an independent copy.
func (t *Terms) Clone() *Terms {
	clone := NewTerms()
	clone.MergeAll(t)
	return clone
}

// UnmarshalYAML decodes a mapping of name to Term, keeping document order.
// A name may appear only once in a mapping.
func (t *Terms) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: a glossary must be a mapping of names to terms", node.Line)
	}
	*t = *NewTerms()
	seen := make(map[string]int, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if first, ok := seen[key.Value]; ok {
			return fmt.Errorf("line %d: duplicate term %q (first defined on line %d)", key.Line, key.Value, first)
		}
		seen[key.Value] = key.Line
		var term Term
		if err := node.Content[i+1].Decode(&term); err != nil {
			return fmt.Errorf("term %q: %w", key.Value, err)
		}
		t.Merge(key.Value, term)
	}
	return nil
}

// Decode parses serialized glossary text. An empty document yields no terms.
func Decode(data []byte) (*Terms, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return NewTerms(), nil
	}
	terms := NewTerms()
	if err := doc.Content[0].Decode(terms); err != nil {
		return nil, err
	}
	return terms, nil
}

// Glossary is one source of terms: either inline terms or the location
// (URL or path) of a serialized table.
type Glossary struct {
	External string
	Inline   *Terms
}

// IsExternal reports whether the glossary must be fetched.
func (g Glossary) IsExternal() bool {
	return g.Inline == nil
}

// Location names the glossary in diagnostics.
func (g Glossary) Location() string {
	if g.IsExternal() {
		return g.External
	}
	return InlineLocation
}

// UnmarshalYAML accepts a string (external) or a mapping (inline).
func (g *Glossary) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" {
			return fmt.Errorf("line %d: empty glossary location", node.Line)
		}
		*g = Glossary{External: node.Value}
		return nil
	case yaml.MappingNode:
		terms := NewTerms()
		if err := node.Decode(terms); err != nil {
			return err
		}
		*g = Glossary{Inline: terms}
		return nil
	default:
		return fmt.Errorf("line %d: a glossary must be a location string or a mapping of terms", node.Line)
	}
}

// Error wraps any failure to load a glossary with its location.
type Error struct {
	Location string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("glossary %s error: %v", e.Location, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fetcher returns the text of a resource relative to a base directory.
type Fetcher interface {
	Get(ctx context.Context, resource, baseDir string) (string, error)
}

// Resolver loads and merges glossaries for one configuration directory.
type Resolver struct {
	fetcher Fetcher
	baseDir string
	logger  *slog.Logger
}

// NewResolver returns a Resolver that fetches external glossaries through
// fetcher, resolving relative locations against baseDir.
func NewResolver(fetcher Fetcher, baseDir string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{fetcher: fetcher, baseDir: baseDir, logger: logger}
}

// Load merges glossaries into a fresh table.
func (r *Resolver) Load(ctx context.Context, glossaries []Glossary) (*Terms, error) {
	combined := NewTerms()
	if err := r.MergeInto(ctx, combined, glossaries); err != nil {
		return nil, err
	}
	return combined, nil
}

// Combine layers extra over a copy of base. With no extra glossaries base
// itself is returned.
func (r *Resolver) Combine(ctx context.Context, base *Terms, extra []Glossary) (*Terms, error) {
	if len(extra) == 0 {
		return base, nil
	}
	combined := base.Clone()
	if err := r.MergeInto(ctx, combined, extra); err != nil {
		return nil, err
	}
	return combined, nil
}

// MergeInto merges glossaries into dst in order.
func (r *Resolver) MergeInto(ctx context.Context, dst *Terms, glossaries []Glossary) error {
	for _, g := range glossaries {
		terms, err := r.terms(ctx, g)
		if err != nil {
			return &Error{Location: g.Location(), Err: err}
		}
		dst.MergeAll(terms)
		r.logger.Debug("merged glossary", logfields.Glossary(g.Location()), slog.Int("terms", terms.Len()))
	}
	return nil
}

func (r *Resolver) terms(ctx context.Context, g Glossary) (*Terms, error) {
	if !g.IsExternal() {
		return g.Inline, nil
	}
	if r.fetcher == nil {
		return nil, errors.New("no fetcher configured for external glossaries")
	}
	text, err := r.fetcher.Get(ctx, g.External, r.baseDir)
	if err != nil {
		return nil, err
	}
	return Decode([]byte(text))
}
