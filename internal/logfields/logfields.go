// Package logfields holds the canonical slog attribute keys used across rustme.
package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID    = "run_id"
	KeyConfig   = "config"
	KeyFile     = "file"
	KeySection  = "section"
	KeySnippet  = "snippet"
	KeySource   = "source"
	KeyURL      = "url"
	KeyGlossary = "glossary"
	KeyBytes    = "bytes"
	KeyChanged  = "changed"
	KeyDuration = "duration_ms"
	KeyError    = "error"
)

// Granular helpers returning slog.Attr so callers can compose them.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Config(path string) slog.Attr    { return slog.String(KeyConfig, path) }
func File(name string) slog.Attr      { return slog.String(KeyFile, name) }
func Section(ref string) slog.Attr    { return slog.String(KeySection, ref) }
func Snippet(name string) slog.Attr   { return slog.String(KeySnippet, name) }
func Source(path string) slog.Attr    { return slog.String(KeySource, path) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Glossary(loc string) slog.Attr   { return slog.String(KeyGlossary, loc) }
func Bytes(n int) slog.Attr           { return slog.Int(KeyBytes, n) }
func Changed(c bool) slog.Attr        { return slog.Bool(KeyChanged, c) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDuration, ms) }

// Error returns an error attribute; a nil error yields an empty value.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
