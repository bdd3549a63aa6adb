// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chunker partitions repaired text into sentence-aligned,
// size-bounded chunks. Sentences are the atomic unit: a chunk boundary
// always coincides with a sentence boundary, and a sentence is never split
// mid-word, whatever the size bounds say.
package chunker

import (
	"strings"
	"unicode"

	"github.com/pdiddy/dataset-engine/pkg/types"
)

// sentenceEnd reports whether r terminates a sentence.
func sentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// trailer reports whether r may follow sentence-final punctuation while
// still belonging to the sentence (closing quotes and brackets).
func trailer(r rune) bool {
	return r == '"' || r == '\'' || r == ')' || r == ']'
}

// SplitSentences splits text into sentences at runs of sentence-final
// punctuation followed by whitespace. The scanner replaces the regex
// lookbehind split of the usual NLP toolkits; it never cuts inside a word
// because a boundary requires punctuation plus whitespace.
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		if !sentenceEnd(runes[i]) {
			continue
		}
		// Absorb the punctuation run and any closing quotes/brackets.
		end := i + 1
		for end < len(runes) && (sentenceEnd(runes[end]) || trailer(runes[end])) {
			end++
		}
		if end < len(runes) && !unicode.IsSpace(runes[end]) {
			// Mid-token punctuation (e.g. "U.S.A" or "3.14"): no boundary.
			i = end - 1
			continue
		}
		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			sentences = append(sentences, s)
		}
		for end < len(runes) && unicode.IsSpace(runes[end]) {
			end++
		}
		start = end
		i = end - 1
	}

	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// FilterSentences drops sentences that are too short to be prose or too
// symbol-heavy to be anything but OCR garbage. Thresholds come from the
// chunk configuration; zero values disable the corresponding filter.
func FilterSentences(sentences []string, cfg types.ChunkConfig) []string {
	var kept []string
	for _, s := range sentences {
		if cfg.MinSentenceChars > 0 && len(s) < cfg.MinSentenceChars {
			continue
		}
		if cfg.MaxSymbolRatio > 0 && symbolRatio(s) > cfg.MaxSymbolRatio {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

// symbolRatio is the fraction of characters that are neither alphanumeric
// nor whitespace.
func symbolRatio(s string) float64 {
	if s == "" {
		return 0
	}
	var symbols, total int
	for _, r := range s {
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			symbols++
		}
	}
	return float64(symbols) / float64(total)
}
