package glossary

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Context selects which facet of a conditional term is rendered.
type Context struct {
	ForDocs bool
	Release bool
}

// Term is the value bound to a glossary name. A static term renders the same
// text everywhere; a conditional term carries up to three optional facets.
type Term struct {
	conditional bool
	value       string

	ForDocs *string
	Release *string
	Default *string
}

// Static returns a term that renders value in every context.
func Static(value string) Term {
	return Term{value: value}
}

// Conditional returns a term whose rendering depends on the Context.
// Any facet may be nil.
func Conditional(forDocs, release, def *string) Term {
	return Term{conditional: true, ForDocs: forDocs, Release: release, Default: def}
}

// String returns a pointer to s, for building conditional terms.
func String(s string) *string {
	return &s
}

// IsStatic reports whether the term is static.
func (t Term) IsStatic() bool {
	return !t.conditional
}

// Value returns the text of a static term.
func (t Term) Value() string {
	return t.value
}

// Render returns the text for ctx. For a conditional term the for-docs facet
// wins when ctx.ForDocs is set, then the release facet when ctx.Release is
// set, then the default; a term with no usable facet renders as "".
func (t Term) Render(ctx Context) string {
	if !t.conditional {
		return t.value
	}
	switch {
	case ctx.ForDocs && t.ForDocs != nil:
		return *t.ForDocs
	case ctx.Release && t.Release != nil:
		return *t.Release
	case t.Default != nil:
		return *t.Default
	default:
		return ""
	}
}

// MergedWith returns the result of layering incoming over t.
//
//   - a static incoming term replaces t outright;
//   - a conditional incoming term over a static t keeps t's value as the
//     default unless incoming names its own default;
//   - over a conditional t, each facet comes from incoming when set and
//     from t otherwise.
func (t Term) MergedWith(incoming Term) Term {
	if !incoming.conditional {
		return incoming
	}
	if !t.conditional {
		merged := incoming
		if merged.Default == nil {
			merged.Default = String(t.value)
		}
		return merged
	}
	return Conditional(
		firstSet(incoming.ForDocs, t.ForDocs),
		firstSet(incoming.Release, t.Release),
		firstSet(incoming.Default, t.Default),
	)
}

func firstSet(a, b *string) *string {
	if a != nil {
		return a
	}
	return b
}

// errTermShape is returned for YAML that is neither a scalar nor a facet mapping.
var errTermShape = errors.New("a term must be a string or a mapping of for_docs, release and default")

// UnmarshalYAML accepts either a plain scalar (static) or a mapping with any
// of the keys for_docs, release and default (conditional).
func (t *Term) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*t = Static(node.Value)
		return nil
	case yaml.MappingNode:
		var facets struct {
			ForDocs *string `yaml:"for_docs"`
			Release *string `yaml:"release"`
			Default *string `yaml:"default"`
		}
		for i := 0; i < len(node.Content); i += 2 {
			switch key := node.Content[i].Value; key {
			case "for_docs", "release", "default":
			default:
				return fmt.Errorf("line %d: unknown term field %q: %w", node.Content[i].Line, key, errTermShape)
			}
		}
		if err := node.Decode(&facets); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*t = Conditional(facets.ForDocs, facets.Release, facets.Default)
		return nil
	default:
		return fmt.Errorf("line %d: %w", node.Line, errTermShape)
	}
}

// MarshalYAML writes a static term as a scalar and a conditional term as a
// mapping of its set facets.
func (t Term) MarshalYAML() (any, error) {
	if !t.conditional {
		return t.value, nil
	}
	facets := make(map[string]string, 3)
	if t.ForDocs != nil {
		facets["for_docs"] = *t.ForDocs
	}
	if t.Release != nil {
		facets["release"] = *t.Release
	}
	if t.Default != nil {
		facets["default"] = *t.Default
	}
	return facets, nil
}
