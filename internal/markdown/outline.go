// Package markdown summarizes generated documents by heading so a drift
// report can say which parts of a document changed.
package markdown

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// PreambleTitle names the text that precedes the first heading.
const PreambleTitle = "(preamble)"

// Section is a heading and everything up to the next heading of any level.
type Section struct {
	Level int
	Title string
	Body  string
}

// Heading renders the section title the way it appears in Markdown.
func (s Section) Heading() string {
	if s.Level == 0 {
		return s.Title
	}
	return strings.Repeat("#", s.Level) + " " + s.Title
}

// Outline splits body at each heading. Headings inside code blocks are not
// headings. Text before the first heading becomes a level-0 section titled
// PreambleTitle; it is omitted when blank.
func Outline(body []byte) []Section {
	root := goldmark.New().Parser().Parse(text.NewReader(body))

	type mark struct {
		level int
		title string
		start int
	}
	var marks []mark
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*gmast.Heading)
		if !ok || heading.Lines().Len() == 0 {
			continue
		}
		marks = append(marks, mark{
			level: heading.Level,
			title: headingText(heading, body),
			start: lineStart(body, heading.Lines().At(0).Start),
		})
	}

	var sections []Section
	end := len(body)
	if len(marks) > 0 {
		end = marks[0].start
	}
	if preamble := string(body[:end]); strings.TrimSpace(preamble) != "" {
		sections = append(sections, Section{Title: PreambleTitle, Body: preamble})
	}
	for i, m := range marks {
		end := len(body)
		if i+1 < len(marks) {
			end = marks[i+1].start
		}
		sections = append(sections, Section{Level: m.level, Title: m.title, Body: string(body[m.start:end])})
	}
	return sections
}

// ChangedSections compares two versions of a document and returns the
// headings of sections that were added or edited in updated, followed by
// those that no longer exist. Repeated headings are matched by occurrence.
func ChangedSections(previous, updated []byte) []string {
	before := keyed(Outline(previous))

	var changed []string
	seen := make(map[string]bool)
	for _, ks := range keyedList(Outline(updated)) {
		seen[ks.key] = true
		if old, ok := before[ks.key]; !ok || old.Body != ks.section.Body {
			changed = append(changed, ks.section.Heading())
		}
	}
	for _, ks := range keyedList(Outline(previous)) {
		if !seen[ks.key] {
			changed = append(changed, ks.section.Heading()+" (removed)")
		}
	}
	return changed
}

type keyedSection struct {
	key     string
	section Section
}

func keyedList(sections []Section) []keyedSection {
	counts := make(map[string]int)
	out := make([]keyedSection, 0, len(sections))
	for _, s := range sections {
		h := s.Heading()
		counts[h]++
		out = append(out, keyedSection{key: fmt.Sprintf("%s#%d", h, counts[h]), section: s})
	}
	return out
}

func keyed(sections []Section) map[string]Section {
	m := make(map[string]Section, len(sections))
	for _, ks := range keyedList(sections) {
		m[ks.key] = ks.section
	}
	return m
}

func headingText(heading *gmast.Heading, source []byte) string {
	var b strings.Builder
	_ = gmast.Walk(heading, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(node.Value)
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func lineStart(source []byte, offset int) int {
	for offset > 0 && source[offset-1] != '\n' {
		offset--
	}
	return offset
}
