// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the configuration and data types shared across the
// dataset-engine pipeline stages.
package types

import "time"

// WorkspaceConfig locates the directories a run reads and writes.
// The engine owns cache/, datasets/ and outputs/ under Dir; the source
// document may live anywhere.
type WorkspaceConfig struct {
	// Dir is the workspace root (contains cache/, datasets/, outputs/).
	Dir string `json:"dir" yaml:"dir"`
}

// ExtractionConfig holds settings for the text extraction stage.
type ExtractionConfig struct {
	// ThresholdChars is the minimum digital-layer character count below
	// which the OCR fallback is attempted (default 1200).
	ThresholdChars int `json:"threshold_chars" yaml:"threshold_chars"`

	// OCRConfidenceMin is the word-level recognition confidence cutoff in
	// [0,1]; words below it are discarded (default 0.6).
	OCRConfidenceMin float64 `json:"ocr_confidence_min" yaml:"ocr_confidence_min"`

	// OCRTimeout bounds the wall time of the OCR fallback; expiry aborts
	// the run (default 5m).
	OCRTimeout time.Duration `json:"ocr_timeout" yaml:"ocr_timeout"`
}

// CleanConfig holds settings for the normalization stage.
type CleanConfig struct {
	// StripArtifacts removes URLs and "Page N" markers before character
	// normalization (default true).
	StripArtifacts bool `json:"strip_artifacts" yaml:"strip_artifacts"`
}

// RepairConfig holds settings for the dictionary-guided repair stage.
type RepairConfig struct {
	// MinJoinFrequency is the dictionary frequency a joined word must
	// exceed for the split-word rule to fire (default 100).
	MinJoinFrequency int64 `json:"min_join_frequency" yaml:"min_join_frequency"`

	// EnableTokenSplit turns on the in-token split rule ("ina" -> "in a").
	// Off by default; it is the most aggressive of the repairs.
	EnableTokenSplit bool `json:"enable_token_split" yaml:"enable_token_split"`
}

// TailPolicy selects what happens to a document's final chunk when it falls
// below the minimum word count.
type TailPolicy string

const (
	// TailEmit emits the undersized final chunk as-is.
	TailEmit TailPolicy = "emit"
	// TailMerge folds the undersized final chunk into the previous chunk
	// when the merged size stays within the maximum.
	TailMerge TailPolicy = "merge"
)

// ChunkConfig holds settings for the sentence-aware chunking stage.
type ChunkConfig struct {
	// TargetWords is the word count at which a chunk closes (default 150).
	TargetWords int `json:"target_words" yaml:"target_words"`

	// MinWords is the smallest acceptable chunk size; a chunk under it keeps
	// absorbing sentences past the target (default 100).
	MinWords int `json:"min_words" yaml:"min_words"`

	// MaxWords is the hard upper bound a chunk may not exceed by absorbing
	// another sentence (default 300). A single oversized sentence still
	// becomes its own chunk, unsplit.
	MaxWords int `json:"max_words" yaml:"max_words"`

	// Tail selects the undersized-final-chunk policy (default TailEmit).
	Tail TailPolicy `json:"tail_policy" yaml:"tail_policy"`

	// MinSentenceChars drops sentences shorter than this before chunking
	// (default 40).
	MinSentenceChars int `json:"min_sentence_chars" yaml:"min_sentence_chars"`

	// MaxSymbolRatio drops sentences whose non-alphanumeric, non-space
	// character ratio exceeds it (default 0.25). Filters OCR garbage.
	MaxSymbolRatio float64 `json:"max_symbol_ratio" yaml:"max_symbol_ratio"`
}

// ExportConfig holds settings for dataset export.
type ExportConfig struct {
	// SplitRatios are the train/val/test fractions; they must sum to 1
	// (default 0.8, 0.1, 0.1). Rounding remainders accrue to test.
	SplitRatios [3]float64 `json:"split_ratios" yaml:"split_ratios"`

	// RandomSeed seeds pair sampling and split shuffling. The effective
	// seed is combined with the document signature so identical inputs
	// reproduce identical datasets (default 42).
	RandomSeed int64 `json:"random_seed" yaml:"random_seed"`
}

// DictionaryConfig locates the word-frequency data source.
type DictionaryConfig struct {
	// Path is either a plain "word frequency" list or a SQLite store built
	// by `dataset-engine dict import` (selected by .db/.sqlite extension).
	// Empty means no dictionary: the split-word repair is skipped.
	Path string `json:"path" yaml:"path"`
}

// Config is the full configuration bundle for one engine invocation.
type Config struct {
	Workspace  WorkspaceConfig  `json:"workspace" yaml:"workspace"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Clean      CleanConfig      `json:"clean" yaml:"clean"`
	Repair     RepairConfig     `json:"repair" yaml:"repair"`
	Chunk      ChunkConfig      `json:"chunk" yaml:"chunk"`
	Export     ExportConfig     `json:"export" yaml:"export"`
	Dictionary DictionaryConfig `json:"dictionary" yaml:"dictionary"`
}

// DefaultConfig returns the built-in policy constants.
func DefaultConfig() Config {
	return Config{
		Workspace: WorkspaceConfig{Dir: "."},
		Extraction: ExtractionConfig{
			ThresholdChars:   1200,
			OCRConfidenceMin: 0.6,
			OCRTimeout:       5 * time.Minute,
		},
		Clean:  CleanConfig{StripArtifacts: true},
		Repair: RepairConfig{MinJoinFrequency: 100},
		Chunk: ChunkConfig{
			TargetWords:      150,
			MinWords:         100,
			MaxWords:         300,
			Tail:             TailEmit,
			MinSentenceChars: 40,
			MaxSymbolRatio:   0.25,
		},
		Export: ExportConfig{
			SplitRatios: [3]float64{0.8, 0.1, 0.1},
			RandomSeed:  42,
		},
	}
}
