// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Chunk is one emitted unit of training text. Chunks are immutable once the
// chunker emits them; every downstream artifact is a pure transform of the
// chunk sequence.
type Chunk struct {
	// ID is the sequential ordinal, starting at 0.
	ID int `json:"id"`

	// Text is the chunk content, sentence-aligned at both ends.
	Text string `json:"text"`

	// WordCount is the whitespace-delimited word count of Text.
	WordCount int `json:"word_count"`
}

// InstructRecord is one instruction-tuning example wrapping a chunk.
type InstructRecord struct {
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Output      string `json:"output"`
}

// Pair is a similarity-training example: label 1 marks sequentially adjacent
// chunks, label 0 a sampled non-adjacent pairing.
type Pair struct {
	TextA string `json:"text_a"`
	TextB string `json:"text_b"`
	Label int    `json:"label"`
}

// Split holds the train/val/test partition of the chunk records. The three
// slices are disjoint and together cover every chunk exactly once.
type Split struct {
	Train []Chunk `json:"train"`
	Val   []Chunk `json:"val"`
	Test  []Chunk `json:"test"`
}

// WordStats summarizes per-chunk word counts.
type WordStats struct {
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// CharStats summarizes per-chunk character counts.
type CharStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
}

// Report is the quality/statistics summary computed over the final artifacts.
// It is read-only with respect to the chunks it describes.
type Report struct {
	TotalChunks int       `json:"total_chunks"`
	WordStats   WordStats `json:"word_stats"`
	CharStats   CharStats `json:"char_stats"`

	// ShortChunks counts chunks under the 80-word quality threshold.
	ShortChunks int `json:"short_chunks_under_80w"`

	// DuplicateChunks counts exact-text duplicates beyond the first copy.
	DuplicateChunks int `json:"duplicate_chunks"`

	// VocabSize is the case-normalized unique token count.
	VocabSize int `json:"vocab_size_estimate"`

	// PairBalance maps pair label (0 or 1) to pair count.
	PairBalance map[int]int `json:"pair_label_balance"`

	// Splits maps partition name to record count.
	Splits map[string]int `json:"splits"`
}
