package translate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/wikidoc/internal/chunker"
	"github.com/dgallion1/wikidoc/internal/langs"
)

const maxCompletionTokens = 8192

const SystemPrompt = `You are a professional translator working on encyclopedia articles.

Rules:
- Translate the user's text faithfully; do not summarize, explain or add notes
- Keep proper nouns, numbers, dates and units intact
- Preserve line breaks and paragraph structure
- Keep the neutral, factual register of an encyclopedia
- If the text is already in the target language, return it unchanged

Respond with ONLY the translated text, no other text.`

// BuildPrompt creates the user message for an LLM translation of one chunk.
func BuildPrompt(text, targetLang, sourceLang string) string {
	var sb strings.Builder
	if sourceLang == "" || sourceLang == "auto" {
		sb.WriteString(fmt.Sprintf("Translate the following text into %s.\n", langs.Name(targetLang)))
	} else {
		sb.WriteString(fmt.Sprintf("Translate the following text from %s into %s.\n",
			langs.Name(sourceLang), langs.Name(targetLang)))
	}
	sb.WriteString("---\n")
	sb.WriteString(text)
	return sb.String()
}

// completionBudget sizes max_tokens for translating text. Translations
// can run several times longer than the source in tokens, and the budget
// never drops below one token per source character.
func completionBudget(text string) int {
	budget := max(chunker.EstimateTokens(text)*3, utf8.RuneCountInString(text)) + 256
	return min(budget, maxCompletionTokens)
}

// cleanLLMOutput strips wrapping a model sometimes adds around the answer.
func cleanLLMOutput(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") && strings.HasSuffix(s, "```") && len(s) >= 6 {
		inner := s[3 : len(s)-3]
		// The opening fence line may carry a language tag such as ```text.
		if nl := strings.IndexByte(inner, '\n'); nl >= 0 && !strings.ContainsAny(inner[:nl], " \t") {
			inner = inner[nl+1:]
		}
		s = strings.TrimSpace(inner)
	}
	s = strings.TrimPrefix(s, "---\n")
	return s
}
