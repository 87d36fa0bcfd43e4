package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Printer handles formatted output to a writer.
type Printer struct {
	w      io.Writer
	errW   io.Writer
	json   bool
	styles styles
}

type styles struct {
	err     lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	bold    lipgloss.Style
	title   lipgloss.Style
	muted   lipgloss.Style
	key     lipgloss.Style
	changed lipgloss.Style
}

// NewPrinter creates a Printer. jsonMode selects JSON output; color enables
// lipgloss styling of human output.
func NewPrinter(writer io.Writer, jsonMode bool, color bool) *Printer {
	plain := lipgloss.NewStyle()
	s := styles{
		err:     plain,
		success: plain,
		warning: plain,
		bold:    plain,
		title:   plain,
		muted:   plain,
		key:     plain,
		changed: plain,
	}
	if color {
		s = styles{
			err:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true), // red
			success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),           // green
			warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),           // yellow
			bold:    lipgloss.NewStyle().Bold(true),
			title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")), // blue
			muted:   lipgloss.NewStyle().Faint(true),
			key:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")), // cyan
			changed: lipgloss.NewStyle().Foreground(lipgloss.Color("13")), // magenta
		}
	}

	return &Printer{w: writer, errW: writer, json: jsonMode, styles: s}
}

// WithStderr sets a separate writer for errors and warnings in human mode.
// In JSON mode errors still go to the main writer.
func (p *Printer) WithStderr(w io.Writer) *Printer {
	p.errW = w
	return p
}

// IsJSON returns true if the printer is in JSON mode.
func (p *Printer) IsJSON() bool {
	return p.json
}

// Success outputs a result. In human mode a "message" key is printed on its
// own; otherwise keys are printed in sorted order.
func (p *Printer) Success(data map[string]any) error {
	if p.json {
		return p.WriteJSON(data)
	}

	if msg, ok := data["message"].(string); ok {
		mustWrite(fmt.Fprintln(p.w, p.styles.success.Render(msg)))
		return nil
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		p.KeyValue(k, fmt.Sprint(data[k]))
	}
	return nil
}

// Error outputs err. JSON mode writes {"error": "...", "code": N} to the main
// writer; human mode writes a styled line to the error writer.
func (p *Printer) Error(err error) {
	exitErr := &ExitError{}
	if !errors.As(err, &exitErr) {
		exitErr = &ExitError{Code: ExitUserError, Message: err.Error()}
	}

	if p.json {
		mustWrite(p.w.Write(ErrorJSON(exitErr.Message, exitErr.Code)))
		mustWrite(fmt.Fprintln(p.w))
		return
	}

	mustWrite(fmt.Fprintf(p.errW, "%s: %s\n", p.styles.err.Render("Error"), exitErr.Message))
}

// Warn outputs a warning. Suppressed in JSON mode.
func (p *Printer) Warn(format string, args ...any) {
	if p.json {
		return
	}
	msg := fmt.Sprintf(format, args...)
	mustWrite(fmt.Fprintf(p.errW, "%s: %s\n", p.styles.warning.Render("Warning"), msg))
}

// Print formats and writes to the output without a newline.
func (p *Printer) Print(format string, args ...any) {
	mustWrite(fmt.Fprintf(p.w, format, args...))
}

// Println writes a line to the output.
func (p *Printer) Println(args ...any) {
	mustWrite(fmt.Fprintln(p.w, args...))
}

// WriteJSON encodes data as indented JSON.
func (p *Printer) WriteJSON(data any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ErrorJSON returns JSON-formatted error bytes: {"code": N, "error": "..."}.
func ErrorJSON(message string, code int) []byte {
	result, _ := json.Marshal(map[string]any{"error": message, "code": code})
	return result
}

// Section prints a title underlined to its width, preceded by a blank line.
func (p *Printer) Section(title string) {
	mustWrite(fmt.Fprintln(p.w))
	mustWrite(fmt.Fprintln(p.w, p.styles.title.Render(title)))
	mustWrite(fmt.Fprintln(p.w, p.styles.muted.Render(strings.Repeat("─", lipgloss.Width(title)))))
}

// KeyValue prints "key: value".
func (p *Printer) KeyValue(key, value string) {
	mustWrite(fmt.Fprintf(p.w, "%s %s\n", p.styles.key.Render(key+":"), value))
}

// Status prints a file path with a marker: "~" in the changed style when
// changed is set, "=" muted otherwise.
func (p *Printer) Status(path string, changed bool, detail string) {
	marker := p.styles.muted.Render("=")
	if changed {
		marker = p.styles.changed.Render("~")
	}
	line := marker + " " + path
	if detail != "" {
		line += " " + p.styles.muted.Render(detail)
	}
	mustWrite(fmt.Fprintln(p.w, line))
}

// Bullet prints an indented list item.
func (p *Printer) Bullet(text string) {
	mustWrite(fmt.Fprintf(p.w, "    - %s\n", text))
}

// Table renders rows under bold headers with columns padded to the widest
// cell. Cells beyond the header count are dropped.
func (p *Printer) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	p.tableRow(headers, widths, p.styles.bold)
	for _, row := range rows {
		p.tableRow(row, widths, lipgloss.NewStyle())
	}
}

func (p *Printer) tableRow(cells []string, widths []int, style lipgloss.Style) {
	var b strings.Builder
	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		if i > 0 {
			b.WriteString("  ")
		}
		padded := cell
		if i < len(cells)-1 && i < len(widths)-1 {
			padded += strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		}
		b.WriteString(style.Render(padded))
	}
	mustWrite(fmt.Fprintln(p.w, b.String()))
}

// mustWrite panics if a write to stdout, stderr or a buffer fails.
func mustWrite(_ int, err error) {
	if err != nil {
		panic(fmt.Sprintf("write failed: %v", err))
	}
}
