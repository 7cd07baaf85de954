package chunker

import (
	"strings"
	"unicode"
)

// Scripts written without spaces between words. Each character costs
// about one token, so a word count badly undercounts them.
var unspacedScripts = []*unicode.RangeTable{
	unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul,
	unicode.Thai, unicode.Lao, unicode.Khmer, unicode.Myanmar,
}

// EstimateTokens gives a rough token count for sizing LLM responses.
// Spaced words count about 1.33 tokens each and characters of unspaced
// scripts count one each; exact tokenization is not needed for a budget.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	var words, dense int
	for _, field := range strings.Fields(text) {
		n := 0
		for _, r := range field {
			if unicode.In(r, unspacedScripts...) {
				n++
			}
		}
		if n > 0 {
			dense += n
		} else {
			words++
		}
	}
	tokens := int(float64(words)*1.33) + dense
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}
