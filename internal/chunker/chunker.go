package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/wikidoc/internal/doctree"
)

// DefaultMaxSize is the chunk ceiling, in characters, used when the caller
// passes a non-positive size.
const DefaultMaxSize = 800

// Split breaks text into chunks of at most maxSize characters, cutting at
// sentence boundaries where possible. Sentences are packed greedily. A
// sentence that cannot fit on its own is split on whitespace, and a single
// word longer than maxSize is cut into maxSize pieces. Every chunk is
// trimmed and non-empty; blank input yields no chunks.
func Split(text string, maxSize int) []string {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if t := strings.TrimSpace(current.String()); t != "" {
			chunks = append(chunks, t)
		}
		current.Reset()
		currentLen = 0
	}

	for _, sent := range splitSentences(text) {
		sentLen := utf8.RuneCountInString(sent)

		if sentLen > maxSize {
			// Keep source order: whatever was accumulated goes out first.
			flush()
			chunks = append(chunks, packWords(sent, maxSize)...)
			continue
		}

		if currentLen > 0 && currentLen+1+sentLen > maxSize {
			flush()
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(sent)
		currentLen += sentLen
	}
	flush()

	return chunks
}

// Chunks is Split with each piece tagged by its position.
func Chunks(text string, maxSize int) []doctree.Chunk {
	parts := Split(text, maxSize)
	if len(parts) == 0 {
		return nil
	}
	chunks := make([]doctree.Chunk, len(parts))
	for i, p := range parts {
		chunks[i] = doctree.Chunk{Index: i, Text: p}
	}
	return chunks
}

// splitSentences cuts after '.', '!' or '?' when followed by whitespace. The
// whitespace run between sentences is dropped. There is no abbreviation
// handling, so "Dr. Smith" splits after "Dr.".
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		j := i
		for j < len(text) {
			ws, wsSize := utf8.DecodeRuneInString(text[j:])
			if !unicode.IsSpace(ws) {
				break
			}
			j += wsSize
		}
		if j == i {
			continue
		}
		if s := strings.TrimSpace(text[start:i]); s != "" {
			sentences = append(sentences, s)
		}
		start = j
		i = j
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// packWords greedily packs the words of an oversized sentence into pieces
// of at most maxSize characters.
func packWords(sentence string, maxSize int) []string {
	var pieces []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			pieces = append(pieces, current.String())
		}
		current.Reset()
		currentLen = 0
	}

	for _, word := range strings.Fields(sentence) {
		wordLen := utf8.RuneCountInString(word)

		if wordLen > maxSize {
			flush()
			pieces = append(pieces, hardSplit(word, maxSize)...)
			continue
		}

		if currentLen > 0 && currentLen+1+wordLen > maxSize {
			flush()
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(word)
		currentLen += wordLen
	}
	flush()

	return pieces
}

// hardSplit cuts s into pieces of maxSize runes; the last piece may be shorter.
func hardSplit(s string, maxSize int) []string {
	runes := []rune(s)
	pieces := make([]string, 0, (len(runes)+maxSize-1)/maxSize)
	for len(runes) > 0 {
		n := min(maxSize, len(runes))
		pieces = append(pieces, string(runes[:n]))
		runes = runes[n:]
	}
	return pieces
}
