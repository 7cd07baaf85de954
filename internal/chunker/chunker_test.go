package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplit_EmptyAndBlank(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t \n"} {
		if got := Split(in, 800); len(got) != 0 {
			t.Errorf("Split(%q) = %v, want no chunks", in, got)
		}
	}
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	got := Split("  Hello there. How are you?  ", 800)
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
	if got[0] != "Hello there. How are you?" {
		t.Errorf("unexpected chunk %q", got[0])
	}
}

func TestSplit_LongUnbrokenWord(t *testing.T) {
	input := strings.Repeat("a", 1000)
	got := Split(input, 800)
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got))
	}
	if len(got[0]) != 800 || len(got[1]) != 200 {
		t.Errorf("unexpected chunk sizes %d, %d", len(got[0]), len(got[1]))
	}
	if strings.Join(got, "") != input {
		t.Error("characters were lost or reordered")
	}
}

func TestSplit_RespectsMaxSize(t *testing.T) {
	sentence := "The quick brown fox jumps over the lazy dog. "
	input := strings.Repeat(sentence, 100)

	got := Split(input, 200)
	if len(got) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(got))
	}
	for i, c := range got {
		if n := utf8.RuneCountInString(c); n > 200 {
			t.Errorf("chunk %d has %d characters, max 200", i, n)
		}
		if c != strings.TrimSpace(c) || c == "" {
			t.Errorf("chunk %d is not trimmed or is empty: %q", i, c)
		}
		if !strings.HasSuffix(c, ".") {
			t.Errorf("chunk %d should end on a sentence boundary: %q", i, c)
		}
	}
}

func TestSplit_PreservesWordOrder(t *testing.T) {
	input := "Alpha beta gamma. Delta epsilon! Zeta eta theta? " +
		strings.Repeat("iota kappa lambda mu ", 30) + "nu xi. Omicron pi rho."

	got := Split(input, 60)
	want := strings.Fields(input)
	have := strings.Fields(strings.Join(got, " "))
	if len(have) != len(want) {
		t.Fatalf("word count changed: got %d, want %d", len(have), len(want))
	}
	for i := range want {
		if have[i] != want[i] {
			t.Fatalf("word %d: got %q, want %q", i, have[i], want[i])
		}
	}
}

func TestSplit_OversizedSentenceFlushesAccumulatorFirst(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("word ", 40)) + "."
	input := "Short one. " + long + " Tail."

	got := Split(input, 50)
	if got[0] != "Short one." {
		t.Errorf("expected first chunk to be the preceding sentence, got %q", got[0])
	}
	if got[len(got)-1] != "Tail." {
		t.Errorf("expected last chunk to be the trailing sentence, got %q", got[len(got)-1])
	}
}

func TestSplit_NoBreakWithoutWhitespace(t *testing.T) {
	got := Split("Version 1.2.3 shipped.Next line", 800)
	if len(got) != 1 || got[0] != "Version 1.2.3 shipped.Next line" {
		t.Errorf("unexpected split %v", got)
	}
}

func TestSplit_MultibyteCountsCharacters(t *testing.T) {
	input := strings.Repeat("ж", 900)
	got := Split(input, 800)
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got))
	}
	if utf8.RuneCountInString(got[0]) != 800 {
		t.Errorf("expected first chunk of 800 characters, got %d", utf8.RuneCountInString(got[0]))
	}
}

func TestSplit_DefaultSize(t *testing.T) {
	input := strings.Repeat("b", DefaultMaxSize+1)
	if got := Split(input, 0); len(got) != 2 {
		t.Errorf("expected default size to apply, got %d chunks", len(got))
	}
}

func TestChunks_DenseIndices(t *testing.T) {
	input := strings.Repeat("One sentence here. ", 200)
	chunks := Chunks(input, 100)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	if EstimateTokens("") != 0 {
		t.Error("expected 0 tokens for empty text")
	}
	if got := EstimateTokens("x"); got != 1 {
		t.Errorf("expected 1 token, got %d", got)
	}
	if got := EstimateTokens(strings.Repeat("word ", 100)); got != 133 {
		t.Errorf("expected 133 tokens, got %d", got)
	}
	if got := EstimateTokens(strings.Repeat("漢", 800)); got != 800 {
		t.Errorf("unspaced text should count per character, got %d", got)
	}
	if got := EstimateTokens("Go 言語 です"); got != 5 {
		t.Errorf("expected 1 word plus 4 characters, got %d", got)
	}
}
