package doctree

import "strings"

// Section is a heading-delimited slice of a document.
type Section struct {
	Title   *string `json:"title"`   // nil only for the untitled lead section
	Content string  `json:"content"` // trimmed body text, heading line excluded
	Level   int     `json:"level"`   // delimiter count; 0 for the lead section
}

// HasTitle reports whether the section came from a heading line.
func (s Section) HasTitle() bool {
	return s.Title != nil
}

// TitleText returns the heading text, or "" for an untitled section.
func (s Section) TitleText() string {
	if s.Title == nil {
		return ""
	}
	return *s.Title
}

// Titled builds a section for a heading line.
func Titled(title, content string, level int) Section {
	return Section{Title: &title, Content: content, Level: level}
}

// Untitled builds the lead section that precedes the first heading.
func Untitled(content string) Section {
	return Section{Content: content}
}

// Document is a parsed document: a title plus its flat list of sections.
type Document struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Text concatenates all section content, separated by blank lines.
func (d *Document) Text() string {
	var n int
	for _, s := range d.Sections {
		n += len(s.Content) + 2
	}
	buf := make([]byte, 0, n)
	for _, s := range d.Sections {
		if s.Content == "" {
			continue
		}
		if len(buf) > 0 {
			buf = append(buf, '\n', '\n')
		}
		buf = append(buf, s.Content...)
	}
	return string(buf)
}

// Chunk is a bounded piece of text. Index is dense within one split and is
// the join key for reassembly.
type Chunk struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// ChunkResult is the outcome of translating one chunk. When OK is false,
// Text holds the chunk's original, untranslated text.
type ChunkResult struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	OK    bool   `json:"ok"`
}

// Wikitext reassembles sections into "== Heading ==" markup that
// parser.SplitSections reads back into the same sections. Headings are
// written at least two levels deep.
func Wikitext(sections []Section) string {
	var b strings.Builder
	for _, s := range sections {
		if s.HasTitle() {
			if b.Len() > 0 {
				b.WriteString("\n\n")
			}
			marks := strings.Repeat("=", min(max(s.Level, 2), 6))
			b.WriteString(marks + " " + s.TitleText() + " " + marks)
			if s.Content != "" {
				b.WriteString("\n" + s.Content)
			}
			continue
		}
		if s.Content == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(s.Content)
	}
	return b.String()
}
