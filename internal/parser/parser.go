package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/wikidoc/internal/doctree"
)

// Parser converts raw document bytes into a sectioned Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// SupportedExtensions lists file extensions this service can translate.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".wiki":     true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Options tunes parsers that have settings.
type Options struct {
	PDFFallbackPdftotext bool
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".wiki":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// baseTitle strips the extension from a filename.
func baseTitle(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// sectionBuilder accumulates headings and body text into flat sections.
// Text seen before the first heading becomes the untitled lead section.
type sectionBuilder struct {
	sections []doctree.Section
	title    *string
	level    int
	body     strings.Builder
}

func (b *sectionBuilder) heading(title string, level int) {
	b.flush()
	t := title
	b.title = &t
	b.level = level
}

func (b *sectionBuilder) text(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	if b.body.Len() > 0 {
		b.body.WriteString("\n\n")
	}
	b.body.WriteString(t)
}

func (b *sectionBuilder) flush() {
	content := strings.TrimSpace(b.body.String())
	if b.title != nil || content != "" {
		b.sections = append(b.sections, doctree.Section{Title: b.title, Content: content, Level: b.level})
	}
	b.title = nil
	b.level = 0
	b.body.Reset()
}

func (b *sectionBuilder) done() []doctree.Section {
	b.flush()
	return b.sections
}
