package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/wikidoc/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Each ATX or setext
// heading opens a section whose level is the heading depth.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	out := &doctree.Document{Title: baseTitle(filename)}
	var b sectionBuilder
	firstH1 := true

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := strings.TrimSpace(extractText(node, src))
			if node.Level == 1 && firstH1 && title != "" {
				out.Title = title
				firstH1 = false
			}
			b.heading(title, node.Level)
		default:
			b.text(extractText(n, src))
		}
	}

	out.Sections = b.done()
	return out, nil
}

// extractText flattens a block node to plain text. Code blocks keep their
// raw lines; paragraphs and headings keep only inline text, dropping markup.
func extractText(n ast.Node, src []byte) string {
	switch n.(type) {
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		var buf bytes.Buffer
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	case *ast.ThematicBreak:
		return ""
	}

	if c := n.FirstChild(); c != nil && c.Type() == ast.TypeInline {
		var buf bytes.Buffer
		inlineText(n, src, &buf)
		return strings.TrimSpace(buf.String())
	}

	// Container blocks such as lists and blockquotes.
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := extractText(c, src); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

func inlineText(n ast.Node, src []byte, buf *bytes.Buffer) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			inlineText(c, src, buf)
		}
	}
}
