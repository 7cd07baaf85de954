// Package render writes articles and translated documents as Word files.
package render

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/wikidoc/internal/doctree"
	"github.com/dgallion1/wikidoc/internal/langs"
)

// Document is everything that goes into an exported file.
type Document struct {
	Title    string
	Lang     string
	Source   string // e.g. "Wikipedia"; empty omits the source line
	URL      string
	Summary  string
	Sections []doctree.Section
	Content  string // used only when Sections is empty
}

// Font sizes in half-points, indexed by heading level.
var headingSizes = []string{"56", "32", "28", "26", "24", "24", "22", "22", "22", "22"}

const bodySize = "22"

// DOCX writes doc as a .docx file to w. Layout: centered title, source and
// URL lines, a rule, a Summary heading, then a Full Content heading
// followed by every section. Section headings sit two levels below their
// wiki level, capped at 9.
func DOCX(w io.Writer, doc Document) error {
	d := docx.New().WithDefaultTheme()

	title := d.AddParagraph().Justification("center")
	title.AddText(doc.Title).Bold().Size(headingSizes[0])

	if doc.Source != "" {
		src := d.AddParagraph().Justification("center")
		src.AddText(fmt.Sprintf("Source: %s (%s)", doc.Source, langs.Name(doc.Lang))).Italic().Color("595959")
	}
	if doc.URL != "" {
		u := d.AddParagraph().Justification("center")
		u.AddText(doc.URL).Italic().Color("595959")
	}
	d.AddParagraph().AddText(strings.Repeat("_", 50))

	if doc.Summary != "" {
		addHeading(d, "Summary", 1)
		addBody(d, doc.Summary)
		addHeading(d, "Full Content", 1)
	}

	if len(doc.Sections) > 0 {
		for _, s := range doc.Sections {
			if s.HasTitle() {
				addHeading(d, s.TitleText(), min(s.Level+2, 9))
			}
			addBody(d, s.Content)
		}
	} else {
		addBody(d, doc.Content)
	}

	if _, err := d.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func addHeading(d *docx.Docx, text string, level int) {
	if level < 0 {
		level = 0
	}
	if level >= len(headingSizes) {
		level = len(headingSizes) - 1
	}
	d.AddParagraph().AddText(text).Bold().Size(headingSizes[level])
}

// addBody writes one paragraph per non-blank line.
func addBody(d *docx.Docx, text string) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		d.AddParagraph().AddText(line).Size(bodySize)
	}
}

// Filename builds a download name like "Albert_Einstein_de.docx" from a
// title, replacing anything but letters, digits, space, '-' and '_'.
func Filename(title, lang string) string {
	safe := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, strings.TrimSpace(title))
	if safe == "" {
		safe = "document"
	}
	if lang == "" {
		return safe + ".docx"
	}
	return fmt.Sprintf("%s_%s.docx", safe, lang)
}
