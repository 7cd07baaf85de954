package parser

import (
	"sort"
	"strings"
	"unicode"

	"github.com/dgallion1/wikidoc/internal/doctree"
)

const (
	minHeadingLevel = 2
	maxHeadingLevel = 6
)

type heading struct {
	start int // offset of the heading line
	end   int // offset just past the heading line (newline excluded)
	level int
	title string
}

// SplitSections breaks wiki-style plain text into heading-delimited sections.
//
// A heading is a whole line of the form "== Title ==": between 2 and 6 '='
// characters, a title, and the same run of '=' closing the line. Trailing
// blanks after the closing run are ignored. Text before the first heading
// becomes an untitled level-0 section when it is non-empty. A document with
// no headings yields exactly one untitled section holding the trimmed input.
func SplitSections(content string) []doctree.Section {
	heads := findHeadings(content)
	if len(heads) == 0 {
		return []doctree.Section{doctree.Untitled(strings.TrimSpace(content))}
	}
	sort.SliceStable(heads, func(i, j int) bool { return heads[i].start < heads[j].start })

	sections := make([]doctree.Section, 0, len(heads)+1)
	if lead := strings.TrimSpace(content[:heads[0].start]); lead != "" {
		sections = append(sections, doctree.Untitled(lead))
	}
	for i, h := range heads {
		stop := len(content)
		if i+1 < len(heads) {
			stop = heads[i+1].start
		}
		body := strings.TrimSpace(content[h.end:stop])
		sections = append(sections, doctree.Titled(h.title, body, h.level))
	}
	return sections
}

// findHeadings scans content line by line and returns every heading line.
func findHeadings(content string) []heading {
	var heads []heading
	pos := 0
	for pos < len(content) {
		end := len(content)
		next := len(content)
		if nl := strings.IndexByte(content[pos:], '\n'); nl >= 0 {
			end = pos + nl
			next = end + 1
		}
		if level, title, ok := parseHeadingLine(content[pos:end]); ok {
			heads = append(heads, heading{start: pos, end: end, level: level, title: title})
		}
		pos = next
	}
	return heads
}

// parseHeadingLine reports whether line is a heading. The level is the
// longest delimiter run (capped at 6) that both opens and closes the line.
// A line made only of delimiters, such as "====", is a heading with an
// empty title at half its length.
func parseHeadingLine(line string) (int, string, bool) {
	line = strings.TrimRightFunc(line, unicode.IsSpace)
	n := len(line)

	lead := 0
	for lead < n && line[lead] == '=' {
		lead++
	}
	if lead < minHeadingLevel {
		return 0, "", false
	}
	trail := 0
	for trail < n && line[n-1-trail] == '=' {
		trail++
	}

	level := min(lead, trail, maxHeadingLevel, n/2)
	if level < minHeadingLevel {
		return 0, "", false
	}
	return level, strings.TrimSpace(line[level : n-level]), true
}
