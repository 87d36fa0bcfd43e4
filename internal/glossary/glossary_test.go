package glossary

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type fakeFetcher struct {
	docs  map[string]string
	calls []string
}

func (f *fakeFetcher) Get(_ context.Context, resource, baseDir string) (string, error) {
	f.calls = append(f.calls, baseDir+"|"+resource)
	doc, ok := f.docs[resource]
	if !ok {
		return "", errors.New("not found")
	}
	return doc, nil
}

func TestRender(t *testing.T) {
	term := Conditional(String("D"), String("R"), String("X"))

	tests := []struct {
		name string
		ctx  Context
		want string
	}{
		{name: "for docs", ctx: Context{ForDocs: true}, want: "D"},
		{name: "for docs beats release", ctx: Context{ForDocs: true, Release: true}, want: "D"},
		{name: "release only", ctx: Context{Release: true}, want: "R"},
		{name: "neither", ctx: Context{}, want: "X"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, term.Render(tt.ctx))
		})
	}
}

func TestRender_Fallbacks(t *testing.T) {
	assert.Equal(t, "", Conditional(nil, nil, nil).Render(Context{ForDocs: true, Release: true}))
	assert.Equal(t, "R", Conditional(nil, String("R"), nil).Render(Context{ForDocs: true, Release: true}))
	assert.Equal(t, "X", Conditional(String("D"), nil, String("X")).Render(Context{Release: true}))
	assert.Equal(t, "S", Static("S").Render(Context{ForDocs: true}))
}

func TestMergedWith(t *testing.T) {
	t.Run("static over anything replaces", func(t *testing.T) {
		got := Conditional(String("D"), nil, nil).MergedWith(Static("S"))
		assert.True(t, got.IsStatic())
		assert.Equal(t, "S", got.Value())
	})

	t.Run("conditional over static keeps static as default", func(t *testing.T) {
		got := Static("A").MergedWith(Conditional(nil, String("B"), nil))
		require.False(t, got.IsStatic())
		assert.Equal(t, Conditional(nil, String("B"), String("A")), got)
	})

	t.Run("conditional default wins over static", func(t *testing.T) {
		got := Static("A").MergedWith(Conditional(nil, nil, String("C")))
		assert.Equal(t, "C", *got.Default)
	})

	t.Run("conditional over conditional merges facets", func(t *testing.T) {
		base := Conditional(String("D1"), String("R1"), String("X1"))
		got := base.MergedWith(Conditional(nil, String("R2"), nil))
		assert.Equal(t, Conditional(String("D1"), String("R2"), String("X1")), got)
	})
}

func TestTermsMergeKeepsOrder(t *testing.T) {
	terms := NewTerms()
	terms.Merge("b", Static("1"))
	terms.Merge("a", Static("2"))
	terms.Merge("b", Conditional(nil, String("r"), nil))

	assert.Equal(t, []string{"b", "a"}, terms.Names())
	b, ok := terms.Get("b")
	require.True(t, ok)
	assert.Equal(t, "1", b.Render(Context{}))
	assert.Equal(t, "r", b.Render(Context{Release: true}))
}

func TestDecode(t *testing.T) {
	terms, err := Decode([]byte(`
homepage: https://example.com
docs:
  for_docs: "crate::docs"
  release: https://docs.rs/rustme
  default: ./docs
empty: {}
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"homepage", "docs", "empty"}, terms.Names())

	docs, _ := terms.Get("docs")
	assert.Equal(t, "crate::docs", docs.Render(Context{ForDocs: true}))
	assert.Equal(t, "https://docs.rs/rustme", docs.Render(Context{Release: true}))
	assert.Equal(t, "./docs", docs.Render(Context{}))

	empty, _ := terms.Get("empty")
	assert.False(t, empty.IsStatic())
	assert.Equal(t, "", empty.Render(Context{}))
}

func TestDecode_Empty(t *testing.T) {
	terms, err := Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, terms.Len())
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte("- a\n- b\n"))
	assert.Error(t, err)

	_, err = Decode([]byte("term:\n  colour: red\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestDecode_DuplicateTerm(t *testing.T) {
	_, err := Decode([]byte("name: one\nversion: dev\nname: two\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `line 3: duplicate term "name" (first defined on line 1)`)
}

func TestGlossaryUnmarshal_DuplicateInlineTerm(t *testing.T) {
	var glossaries []Glossary
	err := yaml.Unmarshal([]byte(`
- name: one
  name: two
`), &glossaries)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate term "name"`)
}

func TestGlossaryUnmarshal(t *testing.T) {
	var glossaries []Glossary
	require.NoError(t, yaml.Unmarshal([]byte(`
- https://example.com/glossary.yaml
- TEST: SUCCESS
  other:
    release: R
`), &glossaries))

	require.Len(t, glossaries, 2)
	assert.True(t, glossaries[0].IsExternal())
	assert.Equal(t, "https://example.com/glossary.yaml", glossaries[0].Location())
	assert.False(t, glossaries[1].IsExternal())
	assert.Equal(t, InlineLocation, glossaries[1].Location())
	assert.Equal(t, []string{"TEST", "other"}, glossaries[1].Inline.Names())
}

func TestTermMarshalYAML(t *testing.T) {
	out, err := yaml.Marshal(map[string]Term{
		"a": Static("x"),
		"b": Conditional(nil, String("r"), nil),
	})
	require.NoError(t, err)
	assert.Equal(t, "a: x\nb:\n    release: r\n", string(out))
}

func TestResolver_LoadAndCombine(t *testing.T) {
	fetcher := &fakeFetcher{docs: map[string]string{
		"https://example.com/g.yaml": "name: remote\nversion:\n  release: \"1.0\"\n",
		"local.yaml":                 "version: dev\n",
	}}
	r := NewResolver(fetcher, "/project", nil)
	ctx := context.Background()

	var glossaries []Glossary
	require.NoError(t, yaml.Unmarshal([]byte(`
- https://example.com/g.yaml
- name: inline
`), &glossaries))

	base, err := r.Load(ctx, glossaries)
	require.NoError(t, err)
	name, _ := base.Get("name")
	assert.Equal(t, "inline", name.Render(Context{}))

	same, err := r.Combine(ctx, base, nil)
	require.NoError(t, err)
	assert.Same(t, base, same)

	combined, err := r.Combine(ctx, base, []Glossary{{External: "local.yaml"}})
	require.NoError(t, err)
	version, _ := combined.Get("version")
	assert.True(t, version.IsStatic())
	assert.Equal(t, "dev", version.Render(Context{Release: true}))

	// base is untouched by the file-level layer.
	version, _ = base.Get("version")
	assert.Equal(t, "1.0", version.Render(Context{Release: true}))

	assert.Equal(t, []string{"/project|https://example.com/g.yaml", "/project|local.yaml"}, fetcher.calls)
}

func TestResolver_ErrorCarriesLocation(t *testing.T) {
	r := NewResolver(&fakeFetcher{docs: map[string]string{"bad.yaml": "[unclosed"}}, ".", nil)

	_, err := r.Load(context.Background(), []Glossary{{External: "missing.yaml"}})
	var gErr *Error
	require.True(t, errors.As(err, &gErr))
	assert.Equal(t, "missing.yaml", gErr.Location)
	assert.Contains(t, err.Error(), "glossary missing.yaml error: not found")

	_, err = r.Load(context.Background(), []Glossary{{External: "bad.yaml"}})
	require.True(t, errors.As(err, &gErr))
	assert.Equal(t, "bad.yaml", gErr.Location)
}
