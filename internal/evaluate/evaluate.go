// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evaluate computes the dataset quality report from the exported
// artifacts. It is strictly read-only over the dataset directory: chunks
// are never touched, only measured.
package evaluate

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/dataset-engine/internal/diag"
	"github.com/pdiddy/dataset-engine/internal/export"
	"github.com/pdiddy/dataset-engine/pkg/types"
)

const stage = "REPORT"

// shortChunkWords is the quality threshold under which a chunk counts as
// short.
const shortChunkWords = 80

// Report file names under the outputs directory.
const (
	FileReportJSON = "dataset_report.json"
	FileReportText = "dataset_report.txt"
)

// Evaluator reads dataset artifacts and renders the quality report.
type Evaluator struct {
	datasetsDir string
	outputsDir  string
	sink        diag.Sink
}

// New returns an Evaluator over the given artifact directories.
func New(datasetsDir, outputsDir string, sink diag.Sink) *Evaluator {
	return &Evaluator{datasetsDir: datasetsDir, outputsDir: outputsDir, sink: sink}
}

// Evaluate computes the report from the written artifacts and persists
// both the structured and the human-readable rendering.
func (e *Evaluator) Evaluate() (types.Report, error) {
	var chunks []types.Chunk
	if err := e.readJSON(export.FileChunksWithID, &chunks); err != nil {
		return types.Report{}, err
	}
	var pairs []types.Pair
	if err := e.readJSON(export.FilePairs, &pairs); err != nil {
		return types.Report{}, err
	}

	report := Compute(chunks, pairs)
	for _, part := range []struct {
		name string
		file string
	}{
		{"train", export.FileTrain},
		{"val", export.FileVal},
		{"test", export.FileTest},
	} {
		var records []types.Chunk
		if err := e.readJSON(part.file, &records); err != nil {
			return types.Report{}, err
		}
		report.Splits[part.name] = len(records)
	}

	if err := e.write(report, chunks); err != nil {
		return types.Report{}, err
	}

	e.sink.Emit(stage, "chunks=%d short=%d duplicates=%d vocab=%d",
		report.TotalChunks, report.ShortChunks, report.DuplicateChunks, report.VocabSize)
	return report, nil
}

// Compute builds the statistics portion of the report from the chunk and
// pair sets. Split sizes are filled in by the caller.
func Compute(chunks []types.Chunk, pairs []types.Pair) types.Report {
	report := types.Report{
		TotalChunks: len(chunks),
		PairBalance: map[int]int{},
		Splits:      map[string]int{},
	}

	wordCounts := make([]int, 0, len(chunks))
	charCounts := make([]int, 0, len(chunks))
	seen := make(map[string]int)
	vocab := make(map[string]struct{})

	for _, c := range chunks {
		words := strings.Fields(c.Text)
		wordCounts = append(wordCounts, len(words))
		charCounts = append(charCounts, len(c.Text))
		seen[c.Text]++
		for _, w := range words {
			vocab[strings.ToLower(w)] = struct{}{}
		}
		if len(words) < shortChunkWords {
			report.ShortChunks++
		}
	}

	for _, n := range seen {
		if n > 1 {
			report.DuplicateChunks += n - 1
		}
	}
	report.VocabSize = len(vocab)

	if len(wordCounts) > 0 {
		report.WordStats = types.WordStats{
			Min:    minInt(wordCounts),
			Max:    maxInt(wordCounts),
			Mean:   round2(mean(wordCounts)),
			Median: median(wordCounts),
		}
		report.CharStats = types.CharStats{
			Min:  minInt(charCounts),
			Max:  maxInt(charCounts),
			Mean: round2(mean(charCounts)),
		}
	}

	for _, p := range pairs {
		report.PairBalance[p.Label]++
	}
	return report
}

func (e *Evaluator) readJSON(name string, v any) error {
	path := filepath.Join(e.datasetsDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading artifact %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing artifact %s: %w", path, err)
	}
	return nil
}

// write persists the structured report and its text rendering.
func (e *Evaluator) write(report types.Report, chunks []types.Chunk) error {
	jsonPath := filepath.Join(e.outputsDir, FileReportJSON)
	f, err := os.Create(jsonPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", jsonPath, err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", jsonPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", jsonPath, err)
	}

	textPath := filepath.Join(e.outputsDir, FileReportText)
	if err := os.WriteFile(textPath, []byte(Render(report, chunks)), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", textPath, err)
	}
	return nil
}

// Render formats the human-readable report, ending with up to three chunk
// previews.
func Render(report types.Report, chunks []types.Chunk) string {
	var sb strings.Builder
	sb.WriteString("DATASET QUALITY REPORT\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	fmt.Fprintf(&sb, "Total Chunks   : %d\n\n", report.TotalChunks)

	sb.WriteString("WORD STATS (per chunk)\n")
	fmt.Fprintf(&sb, "  Min    : %d\n", report.WordStats.Min)
	fmt.Fprintf(&sb, "  Max    : %d\n", report.WordStats.Max)
	fmt.Fprintf(&sb, "  Mean   : %.2f\n", report.WordStats.Mean)
	fmt.Fprintf(&sb, "  Median : %g\n\n", report.WordStats.Median)

	sb.WriteString("CHARACTER STATS\n")
	fmt.Fprintf(&sb, "  Min    : %d\n", report.CharStats.Min)
	fmt.Fprintf(&sb, "  Max    : %d\n", report.CharStats.Max)
	fmt.Fprintf(&sb, "  Mean   : %.2f\n\n", report.CharStats.Mean)

	sb.WriteString("QUALITY CHECKS\n")
	fmt.Fprintf(&sb, "  Short Chunks (<%dw) : %d\n", shortChunkWords, report.ShortChunks)
	fmt.Fprintf(&sb, "  Duplicates          : %d\n", report.DuplicateChunks)
	fmt.Fprintf(&sb, "  Vocab Size          : %d\n\n", report.VocabSize)

	sb.WriteString("PAIR LABEL BALANCE\n")
	fmt.Fprintf(&sb, "  Positive : %d\n", report.PairBalance[1])
	fmt.Fprintf(&sb, "  Negative : %d\n\n", report.PairBalance[0])

	sb.WriteString("DATA SPLITS\n")
	for _, name := range []string{"train", "val", "test"} {
		fmt.Fprintf(&sb, "  %-5s : %d\n", name, report.Splits[name])
	}

	sb.WriteString("\nSAMPLE CHUNKS\n")
	sb.WriteString(strings.Repeat("-", 50) + "\n")
	for i, c := range chunks {
		if i == 3 {
			break
		}
		preview := c.Text
		if runes := []rune(preview); len(runes) > 400 {
			preview = string(runes[:400])
		}
		fmt.Fprintf(&sb, "\n--- Sample %d ---\n%s\n", i, preview)
	}
	return sb.String()
}

func minInt(xs []int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxInt(xs []int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func mean(xs []int) float64 {
	var sum int
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}

func median(xs []int) float64 {
	sorted := make([]int, len(xs))
	copy(sorted, xs)
	sort.Ints(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
