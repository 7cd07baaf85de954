package parser

import (
	"io"

	"github.com/dgallion1/wikidoc/internal/doctree"
)

// TextParser handles plain text, treating "== Heading ==" lines as
// section markers.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &doctree.Document{
		Title:    baseTitle(filename),
		Sections: SplitSections(string(src)),
	}, nil
}
