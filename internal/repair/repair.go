// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package repair implements dictionary-guided repair of OCR artifacts.
// Two rules run once each per document: a split-word join over the whole
// token stream, then a per-sentence drop-cap fix. Both are conservative:
// they need corroborating dictionary evidence or a narrow structural
// pattern, and neither is applied iteratively, so a repaired token is never
// reconsidered and merges cannot cascade.
package repair

import (
	"strings"
	"unicode"

	"github.com/pdiddy/dataset-engine/internal/diag"
	"github.com/pdiddy/dataset-engine/internal/dict"
	"github.com/pdiddy/dataset-engine/pkg/types"
)

const stage = "REPAIR"

// Result summarizes one repair pass.
type Result struct {
	// Text is the repaired document, tokens joined by single spaces.
	Text string

	// Joins counts split-word merges applied.
	Joins int
	// DropCaps counts drop-cap merges applied.
	DropCaps int
	// Splits counts in-token splits applied (only with EnableTokenSplit).
	Splits int

	// DictionaryUsed reports whether the dictionary rules ran. False means
	// the run was degraded to the structural drop-cap rule only.
	DictionaryUsed bool
}

// Fixes returns the total number of repairs applied.
func (r Result) Fixes() int { return r.Joins + r.DropCaps + r.Splits }

// Repair applies the repair rules to text. d may be nil, in which case the
// dictionary-dependent rules are skipped with a warning and only the
// drop-cap rule runs.
func Repair(text string, d dict.Dictionary, cfg types.RepairConfig, sink diag.Sink) Result {
	tokens := strings.Fields(text)
	result := Result{DictionaryUsed: d != nil}

	if d == nil {
		sink.Emit(stage, "dictionary unavailable - split-word join skipped")
	} else {
		tokens = joinSplitWords(tokens, d, cfg.MinJoinFrequency, &result.Joins)
		if cfg.EnableTokenSplit {
			tokens = splitFusedTokens(tokens, d, &result.Splits)
		}
	}

	tokens = fixDropCaps(tokens, &result.DropCaps)

	result.Text = strings.Join(tokens, " ")
	return result
}

// lookupKey strips surrounding punctuation and lowercases, leaving the form
// a dictionary would hold. Returns "" for tokens with no letters.
func lookupKey(token string) string {
	key := strings.TrimFunc(token, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if key == "" || strings.ContainsFunc(key, func(r rune) bool { return !unicode.IsLetter(r) }) {
		return ""
	}
	return strings.ToLower(key)
}

// endsSentence reports whether a token carries sentence-final punctuation.
// Such a token is never merged with its successor.
func endsSentence(token string) bool {
	return strings.ContainsAny(token, ".!?")
}

// joinSplitWords is the split-word join rule: for adjacent tokens (w1, w2)
// where neither half is a dictionary word but the concatenation is, with
// frequency above minFreq, the pair becomes one token. One left-to-right
// pass; a merged token is not reconsidered as the left half of another merge.
func joinSplitWords(tokens []string, d dict.Dictionary, minFreq int64, joins *int) []string {
	fixed := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		if i+1 < len(tokens) && !endsSentence(tokens[i]) {
			k1, k2 := lookupKey(tokens[i]), lookupKey(tokens[i+1])
			if k1 != "" && k2 != "" {
				_, ok1 := d.Lookup(k1)
				_, ok2 := d.Lookup(k2)
				if !ok1 && !ok2 {
					if freq, ok := d.Lookup(k1 + k2); ok && freq > minFreq {
						fixed = append(fixed, tokens[i]+tokens[i+1])
						*joins++
						i++
						continue
					}
				}
			}
		}
		fixed = append(fixed, tokens[i])
	}
	return fixed
}

// splitFusedTokens is the optional in-token split rule: an alphabetic token
// of at least 4 runes absent from the dictionary is split at the first cut
// where both halves are dictionary words ("ashe" -> "as he"). The original
// casing is preserved by cutting the token text itself.
func splitFusedTokens(tokens []string, d dict.Dictionary, splits *int) []string {
	fixed := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		key := lookupKey(tok)
		if key == "" || len(key) < 4 || len(key) != len(tok) {
			fixed = append(fixed, tok)
			continue
		}
		if _, ok := d.Lookup(key); ok {
			fixed = append(fixed, tok)
			continue
		}

		done := false
		for cut := 1; cut < len(key); cut++ {
			_, okL := d.Lookup(key[:cut])
			_, okR := d.Lookup(key[cut:])
			if okL && okR {
				fixed = append(fixed, tok[:cut], tok[cut:])
				*splits++
				done = true
				break
			}
		}
		if !done {
			fixed = append(fixed, tok)
		}
	}
	return fixed
}

// fixDropCaps merges a sentence-leading single uppercase letter onto the
// following token ("T he cat" -> "The cat"). A sentence starts at the
// stream head or after a token carrying sentence-final punctuation; the
// rule needs at least two tokens in the sentence.
func fixDropCaps(tokens []string, dropCaps *int) []string {
	fixed := make([]string, 0, len(tokens))
	atStart := true
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if atStart && isSingleUpper(tok) && i+1 < len(tokens) {
			next := tokens[i+1]
			fixed = append(fixed, tok+next)
			*dropCaps++
			atStart = endsSentence(next)
			i++
			continue
		}
		fixed = append(fixed, tok)
		atStart = endsSentence(tok)
	}
	return fixed
}

// isSingleUpper reports whether token is exactly one uppercase letter.
func isSingleUpper(token string) bool {
	runes := []rune(token)
	return len(runes) == 1 && unicode.IsUpper(runes[0])
}
