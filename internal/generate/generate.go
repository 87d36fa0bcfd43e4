// Package generate drives a rustme run: it loads configurations, resolves
// every section of every configured file, and writes (or, in check mode,
// compares) the resulting documents.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gorewood/rustme/internal/cache"
	"github.com/gorewood/rustme/internal/config"
	"github.com/gorewood/rustme/internal/glossary"
	"github.com/gorewood/rustme/internal/logfields"
	"github.com/gorewood/rustme/internal/markdown"
	"github.com/gorewood/rustme/internal/render"
	"github.com/gorewood/rustme/internal/snippet"
)

// SectionSeparator is written between consecutive sections of a file.
const SectionSeparator = "\n"

// Generator performs one run. The resource cache and snippet store it holds
// are shared by every configuration it processes, so create a new Generator
// for each run. A Generator is not safe for concurrent use.
type Generator struct {
	cache    *cache.Cache
	snippets *snippet.Store
	logger   *slog.Logger
	release  bool
	check    bool
	runID    string
}

// Option configures a Generator.
type Option func(*Generator)

// WithRelease renders the release facet of conditional terms.
func WithRelease(release bool) Option {
	return func(g *Generator) { g.release = release }
}

// WithCheck renders without writing and records which files would change.
func WithCheck(check bool) Option {
	return func(g *Generator) { g.check = check }
}

// WithCache supplies the resource cache, e.g. one with a custom HTTP client.
func WithCache(c *cache.Cache) Option {
	return func(g *Generator) {
		if c != nil {
			g.cache = c
		}
	}
}

// WithLogger sets the run logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New returns a Generator for a fresh run.
func New(opts ...Option) *Generator {
	g := &Generator{runID: uuid.NewString(), logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With(logfields.RunID(g.runID))
	if g.cache == nil {
		g.cache = cache.New(cache.WithLogger(g.logger))
	}
	g.snippets = snippet.NewStore(snippet.WithLogger(g.logger))
	return g
}

// RunID identifies the run in logs and reports.
func (g *Generator) RunID() string {
	return g.runID
}

// Report describes what a run produced.
type Report struct {
	RunID   string         `json:"run_id"`
	Check   bool           `json:"check"`
	Release bool           `json:"release"`
	Configs []ConfigReport `json:"configs"`
	Cache   cache.Stats    `json:"cache"`
}

// ConfigReport covers one configuration.
type ConfigReport struct {
	Path  string       `json:"path,omitempty"`
	Dir   string       `json:"dir"`
	Files []FileReport `json:"files"`
}

// FileReport covers one generated document.
type FileReport struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Bytes    int    `json:"bytes"`
	Sections int    `json:"sections"`
	// Changed is set when the rendered document differs from what was on
	// disk before the run (a missing file counts as changed).
	Changed bool `json:"changed"`
	// ChangedHeadings lists the headings whose content differs.
	ChangedHeadings []string `json:"changed_headings,omitempty"`
}

// Drifted returns the files whose content changed.
func (r *Report) Drifted() []FileReport {
	var drifted []FileReport
	for _, c := range r.Configs {
		for _, f := range c.Files {
			if f.Changed {
				drifted = append(drifted, f)
			}
		}
	}
	return drifted
}

// FileCount returns the number of files rendered.
func (r *Report) FileCount() int {
	n := 0
	for _, c := range r.Configs {
		n += len(c.Files)
	}
	return n
}

func (g *Generator) newReport() *Report {
	return &Report{RunID: g.runID, Check: g.check, Release: g.release}
}

// Generate renders every file of cfg. In check mode nothing is written.
// Files written before a failure stay written; the returned report covers
// them.
func (g *Generator) Generate(ctx context.Context, cfg *config.Configuration) (*Report, error) {
	report := g.newReport()
	cr, err := g.generateConfig(ctx, cfg)
	report.Configs = append(report.Configs, cr)
	report.Cache = g.cache.Stats()
	return report, err
}

// GenerateInDirectory finds every configuration below dir and generates
// each in walk order. It returns config.ErrNoConfiguration when none exist.
func (g *Generator) GenerateInDirectory(ctx context.Context, dir string) (*Report, error) {
	paths, err := config.Discover(dir)
	if err != nil {
		return nil, err
	}

	report := g.newReport()
	defer func() { report.Cache = g.cache.Stats() }()

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		g.logger.Info("Processing", logfields.Config(path))
		cfg, err := config.Load(path)
		if err != nil {
			return report, err
		}
		cr, err := g.generateConfig(ctx, cfg)
		report.Configs = append(report.Configs, cr)
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

func (g *Generator) generateConfig(ctx context.Context, cfg *config.Configuration) (ConfigReport, error) {
	cr := ConfigReport{Path: cfg.Path, Dir: cfg.Dir}
	logger := g.logger.With(logfields.Config(cfg.Path))

	resolver := glossary.NewResolver(g.cache, cfg.Dir, logger)
	base, err := resolver.Load(ctx, cfg.Glossaries)
	if err != nil {
		return cr, err
	}

	for _, entry := range cfg.Files {
		start := time.Now()
		fr, err := g.generateFile(ctx, cfg, resolver, base, entry)
		if err != nil {
			return cr, fmt.Errorf("%s: %w", entry.Name, err)
		}
		cr.Files = append(cr.Files, fr)

		verb := "generated"
		if g.check {
			verb = "checked"
		}
		logger.Info(verb, logfields.File(fr.Path), logfields.Bytes(fr.Bytes),
			logfields.Changed(fr.Changed), logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	}
	return cr, nil
}

func (g *Generator) generateFile(
	ctx context.Context,
	cfg *config.Configuration,
	resolver *glossary.Resolver,
	base *glossary.Terms,
	entry config.FileEntry,
) (FileReport, error) {
	outputPath := entry.OutputPath(cfg.Dir)
	fr := FileReport{Name: entry.Name, Path: outputPath, Sections: len(entry.File.Sections)}

	terms, err := resolver.Combine(ctx, base, entry.File.Glossaries)
	if err != nil {
		return fr, err
	}
	r := &render.Resolver{
		Glossary: terms,
		Snippets: g.snippets,
		BaseDir:  cfg.Dir,
		Context:  render.Context{ForDocs: entry.File.ForDocs, Release: g.release},
	}

	rendered := make([]string, 0, len(entry.File.Sections))
	for _, section := range entry.File.Sections {
		if err := ctx.Err(); err != nil {
			return fr, err
		}
		g.logger.Debug("resolving section", logfields.File(entry.Name), logfields.Section(section))
		text, err := g.section(ctx, section, cfg.Dir)
		if err != nil {
			return fr, err
		}
		processed, err := r.Process(text)
		if err != nil {
			return fr, fmt.Errorf("section %s: %w", section, err)
		}
		rendered = append(rendered, processed)
	}
	contents := strings.Join(rendered, SectionSeparator)
	fr.Bytes = len(contents)

	previous, err := os.ReadFile(outputPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		fr.Changed = true
	case err != nil:
		return fr, fmt.Errorf("reading %s: %w", outputPath, err)
	default:
		fr.Changed = string(previous) != contents
	}
	if fr.Changed {
		fr.ChangedHeadings = markdown.ChangedSections(previous, []byte(contents))
	}

	if g.check {
		return fr, nil
	}
	if err := atomicWrite(outputPath, []byte(contents)); err != nil {
		return fr, fmt.Errorf("writing %s: %w", outputPath, err)
	}
	return fr, nil
}

// section fetches the raw text of one section. A local reference that does
// not name a file but carries a ":name" suffix is loaded as a snippet.
func (g *Generator) section(ctx context.Context, reference, dir string) (string, error) {
	text, err := g.cache.Get(ctx, reference, dir)
	if err == nil {
		return text, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		return "", err
	}
	if !cache.IsRemote(reference) && strings.Contains(reference, ":") {
		return g.snippets.Load(reference, dir)
	}
	return "", &snippet.NotFoundError{Reference: reference}
}

// Terms returns the glossary in effect for fileName within cfg, or just the
// configuration-level glossary when fileName is empty.
func (g *Generator) Terms(ctx context.Context, cfg *config.Configuration, fileName string) (*glossary.Terms, error) {
	resolver := glossary.NewResolver(g.cache, cfg.Dir, g.logger)
	base, err := resolver.Load(ctx, cfg.Glossaries)
	if err != nil {
		return nil, err
	}
	if fileName == "" {
		return base, nil
	}
	for _, entry := range cfg.Files {
		if entry.Name == fileName {
			return resolver.Combine(ctx, base, entry.File.Glossaries)
		}
	}
	return nil, fmt.Errorf("file %q is not configured in %s", fileName, cfg.Path)
}

// Resolve resolves a single reference the way a $reference$ token inside
// fileName would be resolved.
func (g *Generator) Resolve(ctx context.Context, cfg *config.Configuration, fileName, reference string) (string, error) {
	terms, err := g.Terms(ctx, cfg, fileName)
	if err != nil {
		return "", err
	}
	forDocs := false
	for _, entry := range cfg.Files {
		if entry.Name == fileName {
			forDocs = entry.File.ForDocs
		}
	}
	r := &render.Resolver{
		Glossary: terms,
		Snippets: g.snippets,
		BaseDir:  cfg.Dir,
		Context:  render.Context{ForDocs: forDocs, Release: g.release},
	}
	return r.Lookup(reference)
}

// Release reports whether the run renders release facets.
func (g *Generator) Release() bool {
	return g.release
}

// atomicWrite writes data to a temp file and renames it over path, creating
// the parent directory if needed.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, ".rustme-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
