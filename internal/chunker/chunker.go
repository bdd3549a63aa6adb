// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chunker

import (
	"strings"

	"github.com/pdiddy/dataset-engine/pkg/types"
)

// Chunk accumulates whole sentences into chunks honoring the configured
// size policy: close at the target word count, overflow past the target
// (up to the max) rather than emit an undersized chunk, and close early
// when absorbing the next sentence would break the max. A single sentence
// longer than the max becomes its own chunk, unsplit. The final leftover
// follows cfg.Tail: emitted as-is, or merged into the previous chunk when
// the merged size stays within the max.
func Chunk(sentences []string, cfg types.ChunkConfig) []types.Chunk {
	var chunks []types.Chunk
	var current []string
	var words int

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, types.Chunk{
			ID:        len(chunks),
			Text:      strings.Join(current, " "),
			WordCount: words,
		})
		current = current[:0]
		words = 0
	}

	for _, s := range sentences {
		w := len(strings.Fields(s))
		if w == 0 {
			continue
		}

		if len(current) > 0 && words+w > cfg.MaxWords {
			flush()
		}

		current = append(current, s)
		words += w

		if words >= cfg.TargetWords && words >= cfg.MinWords {
			flush()
		}
	}

	if len(current) > 0 {
		if cfg.Tail == types.TailMerge && len(chunks) > 0 &&
			chunks[len(chunks)-1].WordCount+words <= cfg.MaxWords {
			last := &chunks[len(chunks)-1]
			last.Text += " " + strings.Join(current, " ")
			last.WordCount += words
		} else {
			flush()
		}
	}

	return chunks
}
