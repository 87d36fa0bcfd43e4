// Package snippet extracts named regions from arbitrary source files.
//
// A region opens on any line containing the phrase
//
//	begin rustme snippet: <name>
//
// and closes on the next line containing
//
//	end rustme snippet
//
// The marker lines themselves are not part of the region, and the phrases are
// recognised regardless of the comment syntax around them. After collection,
// the column every line shares (indentation, or a comment leader followed by
// a space such as "# ") is stripped so snippets can be embedded verbatim.
// Attributes, headings and doc comments ("#[derive]", "## Usage", "/// Adds")
// keep their leading characters.
//
// A Store loads each file once, keeps every region under "<path>:<name>" and
// the whole file under "<path>", and answers lookups for the rest of a run.
package snippet
