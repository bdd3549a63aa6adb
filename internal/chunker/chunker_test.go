// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pdiddy/dataset-engine/pkg/types"
)

func chunkCfg() types.ChunkConfig {
	return types.ChunkConfig{
		TargetWords: 150,
		MinWords:    100,
		MaxWords:    300,
		Tail:        types.TailEmit,
	}
}

// sentenceOfWords builds a sentence with exactly n words.
func sentenceOfWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(words, " ") + "."
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "basic three",
			in:   "One sentence here. Another one! And a third?",
			want: []string{"One sentence here.", "Another one!", "And a third?"},
		},
		{
			name: "abbreviation digits kept whole",
			in:   "Pi is 3.14 roughly. The U.S.A is large.",
			want: []string{"Pi is 3.14 roughly.", "The U.S.A is large."},
		},
		{
			name: "closing quote stays with sentence",
			in:   `He said "stop." Then he left.`,
			want: []string{`He said "stop."`, "Then he left."},
		},
		{
			name: "trailing fragment without punctuation",
			in:   "Complete sentence. trailing fragment",
			want: []string{"Complete sentence.", "trailing fragment"},
		},
		{
			name: "empty",
			in:   "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d sentences %q, want %d %q", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFilterSentences(t *testing.T) {
	cfg := types.ChunkConfig{MinSentenceChars: 40, MaxSymbolRatio: 0.25}
	in := []string{
		"Too short.",
		"This sentence is comfortably long enough to pass the filter.",
		"@@@ ### $$$ %%% ^^^ &&& *** ((( ))) @@@ ### $$$ some words",
	}
	got := FilterSentences(in, cfg)
	if len(got) != 1 || !strings.Contains(got[0], "comfortably") {
		t.Errorf("FilterSentences = %q, want only the prose sentence", got)
	}
}

func TestChunk_ClosesAtTargetOnSentenceBoundary(t *testing.T) {
	// 12 sentences x 15 words = 180 words: first chunk closes at 10
	// sentences (150 words), the 30-word remainder forms the final chunk.
	sentences := make([]string, 12)
	for i := range sentences {
		sentences[i] = sentenceOfWords(15)
	}

	chunks := Chunk(sentences, chunkCfg())
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].WordCount != 150 {
		t.Errorf("chunk 0 words = %d, want 150", chunks[0].WordCount)
	}
	if chunks[1].WordCount != 30 {
		t.Errorf("chunk 1 words = %d, want 30", chunks[1].WordCount)
	}
	if chunks[0].ID != 0 || chunks[1].ID != 1 {
		t.Errorf("ids = %d,%d, want 0,1", chunks[0].ID, chunks[1].ID)
	}
}

func TestChunk_BoundsHoldExceptLast(t *testing.T) {
	cfg := chunkCfg()
	var sentences []string
	for _, n := range []int{40, 80, 90, 20, 60, 110, 30, 45, 70, 25, 15} {
		sentences = append(sentences, sentenceOfWords(n))
	}

	chunks := Chunk(sentences, cfg)
	if len(chunks) == 0 {
		t.Fatal("no chunks emitted")
	}
	for i, c := range chunks {
		if i == len(chunks)-1 {
			if c.WordCount > cfg.MaxWords {
				t.Errorf("final chunk words = %d, exceeds max %d", c.WordCount, cfg.MaxWords)
			}
			continue
		}
		if c.WordCount < cfg.MinWords || c.WordCount > cfg.MaxWords {
			t.Errorf("chunk %d words = %d, outside [%d,%d]", i, c.WordCount, cfg.MinWords, cfg.MaxWords)
		}
	}
}

func TestChunk_MaxClosesEarly(t *testing.T) {
	cfg := chunkCfg()
	// 90 words accumulated (under min), next sentence of 250 would break
	// the max: the 90-word chunk closes regardless of being under min.
	chunks := Chunk([]string{sentenceOfWords(90), sentenceOfWords(250)}, cfg)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].WordCount != 90 {
		t.Errorf("chunk 0 words = %d, want 90", chunks[0].WordCount)
	}
	if chunks[1].WordCount != 250 {
		t.Errorf("chunk 1 words = %d, want 250", chunks[1].WordCount)
	}
}

func TestChunk_OversizedSentenceEmittedAlone(t *testing.T) {
	cfg := chunkCfg()
	chunks := Chunk([]string{sentenceOfWords(20), sentenceOfWords(400), sentenceOfWords(20)}, cfg)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if chunks[1].WordCount != 400 {
		t.Errorf("oversized chunk words = %d, want 400 unsplit", chunks[1].WordCount)
	}
}

func TestChunk_TailPolicies(t *testing.T) {
	sentences := []string{sentenceOfWords(150), sentenceOfWords(30)}

	t.Run("emit", func(t *testing.T) {
		cfg := chunkCfg()
		chunks := Chunk(sentences, cfg)
		if len(chunks) != 2 {
			t.Fatalf("got %d chunks, want 2", len(chunks))
		}
		if chunks[1].WordCount != 30 {
			t.Errorf("tail words = %d, want 30", chunks[1].WordCount)
		}
	})

	t.Run("merge", func(t *testing.T) {
		cfg := chunkCfg()
		cfg.Tail = types.TailMerge
		chunks := Chunk(sentences, cfg)
		if len(chunks) != 1 {
			t.Fatalf("got %d chunks, want 1", len(chunks))
		}
		if chunks[0].WordCount != 180 {
			t.Errorf("merged words = %d, want 180", chunks[0].WordCount)
		}
	})

	t.Run("merge refused past max", func(t *testing.T) {
		cfg := chunkCfg()
		cfg.Tail = types.TailMerge
		chunks := Chunk([]string{sentenceOfWords(290), sentenceOfWords(30)}, cfg)
		if len(chunks) != 2 {
			t.Fatalf("got %d chunks, want 2 (merge would exceed max)", len(chunks))
		}
	})
}

func TestChunk_Empty(t *testing.T) {
	if chunks := Chunk(nil, chunkCfg()); len(chunks) != 0 {
		t.Errorf("got %d chunks from no sentences, want 0", len(chunks))
	}
}
