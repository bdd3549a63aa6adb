// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize implements the stateless text cleanup stage: ligature
// expansion, quote and dash normalization, invisible-character removal, and
// whitespace collapsing. Every exported function is a pure transform and is
// idempotent; none deletes visible words or reorders text. The one exception
// is Scrub, which removes URL and page-number artifacts and is therefore
// kept separate and optional.
package normalize

import (
	"regexp"
	"strings"

	"github.com/pdiddy/dataset-engine/pkg/types"
)

// charMap expands ligature glyphs and folds typographic quotes, dashes and
// the ellipsis to plain ASCII.
var charMap = strings.NewReplacer(
	"ﬁ", "fi",
	"ﬂ", "fl",
	"ﬀ", "ff",
	"ﬃ", "ffi",
	"ﬄ", "ffl",
	"’", "'",
	"‘", "'",
	"“", `"`,
	"”", `"`,
	"–", "-",
	"—", "-",
	"−", "-",
	"…", "...",
)

var (
	invisibleRe  = regexp.MustCompile("[​‌‍⁠\uFEFF]")
	hspaceRe     = regexp.MustCompile(`[ \t]+`)
	newlinePadRe = regexp.MustCompile(` *\n *`)
	hyphenWrapRe = regexp.MustCompile(`([a-z])-\n([a-z])`)
	urlRe        = regexp.MustCompile(`https?://\S+`)
	wwwRe        = regexp.MustCompile(`www\.\S+`)
	pageNumRe    = regexp.MustCompile(`(?i)Page \d+`)
)

// Normalize performs the character-level cleanup: ligatures and typographic
// punctuation to ASCII, zero-width characters removed, CRLF folded to LF,
// runs of horizontal whitespace collapsed, and spaces trimmed around
// newlines. Normalize(Normalize(x)) == Normalize(x) for all x.
func Normalize(text string) string {
	text = charMap.Replace(text)
	text = invisibleRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = hspaceRe.ReplaceAllString(text, " ")
	text = newlinePadRe.ReplaceAllString(text, "\n")
	return text
}

// JoinHyphenBreaks repairs words hyphenated across a line break
// ("associ-\nation" -> "association"). Only lowercase-to-lowercase joins
// fire, so genuine hyphenated compounds at line ends survive more often
// than they break.
func JoinHyphenBreaks(text string) string {
	return hyphenWrapRe.ReplaceAllString(text, "$1$2")
}

// Scrub removes extraction artifacts that are noise for training data:
// URLs, bare www hosts, and "Page N" running headers.
func Scrub(text string) string {
	text = urlRe.ReplaceAllString(text, "")
	text = wwwRe.ReplaceAllString(text, "")
	text = pageNumRe.ReplaceAllString(text, "")
	return text
}

// Clean is the full normalization stage: optional artifact scrub, character
// and whitespace normalization, then hyphen line-break repair. The hyphen
// pass runs last so collapsed whitespace cannot hide a wrapped word from it.
func Clean(text string, cfg types.CleanConfig) string {
	if cfg.StripArtifacts {
		text = Scrub(text)
	}
	text = Normalize(text)
	return JoinHyphenBreaks(text)
}
