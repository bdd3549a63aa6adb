// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evaluate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dataset-engine/internal/diag"
	"github.com/pdiddy/dataset-engine/internal/export"
	"github.com/pdiddy/dataset-engine/pkg/types"
)

func chunkOf(id int, text string) types.Chunk {
	return types.Chunk{ID: id, Text: text, WordCount: len(strings.Fields(text))}
}

func TestComputeStats(t *testing.T) {
	chunks := []types.Chunk{
		chunkOf(0, "alpha beta gamma"),
		chunkOf(1, "delta epsilon"),
		chunkOf(2, "alpha beta gamma"),
	}
	pairs := []types.Pair{
		{TextA: "a", TextB: "b", Label: 1},
		{TextA: "a", TextB: "c", Label: 0},
		{TextA: "b", TextB: "d", Label: 0},
	}

	report := Compute(chunks, pairs)

	assert.Equal(t, 3, report.TotalChunks)
	assert.Equal(t, 2, report.WordStats.Min)
	assert.Equal(t, 3, report.WordStats.Max)
	assert.InDelta(t, 2.67, report.WordStats.Mean, 0.001)
	assert.Equal(t, 3.0, report.WordStats.Median)
	assert.Equal(t, 13, report.CharStats.Min)
	assert.Equal(t, 16, report.CharStats.Max)
	assert.Equal(t, 3, report.ShortChunks)
	assert.Equal(t, 1, report.DuplicateChunks)
	assert.Equal(t, 5, report.VocabSize)
	assert.Equal(t, 1, report.PairBalance[1])
	assert.Equal(t, 2, report.PairBalance[0])
}

func TestComputeVocabCaseInsensitive(t *testing.T) {
	chunks := []types.Chunk{
		chunkOf(0, "The cat saw the Cat"),
	}
	report := Compute(chunks, nil)
	assert.Equal(t, 3, report.VocabSize)
}

func TestComputeMedianEven(t *testing.T) {
	chunks := []types.Chunk{
		chunkOf(0, "one two"),
		chunkOf(1, "one two three four"),
	}
	report := Compute(chunks, nil)
	assert.Equal(t, 3.0, report.WordStats.Median)
}

func TestComputeEmpty(t *testing.T) {
	report := Compute(nil, nil)
	assert.Equal(t, 0, report.TotalChunks)
	assert.Equal(t, 0, report.WordStats.Min)
	assert.Equal(t, 0, report.ShortChunks)
}

func writeArtifact(t *testing.T, dir, name string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestEvaluateEndToEnd(t *testing.T) {
	datasets := t.TempDir()
	outputs := t.TempDir()

	chunks := []types.Chunk{
		chunkOf(0, "the quick brown fox jumps over the lazy dog"),
		chunkOf(1, "pack my box with five dozen liquor jugs"),
		chunkOf(2, "sphinx of black quartz judge my vow"),
	}
	pairs := []types.Pair{
		{TextA: chunks[0].Text, TextB: chunks[1].Text, Label: 1},
		{TextA: chunks[0].Text, TextB: chunks[2].Text, Label: 0},
	}
	writeArtifact(t, datasets, export.FileChunksWithID, chunks)
	writeArtifact(t, datasets, export.FilePairs, pairs)
	writeArtifact(t, datasets, export.FileTrain, chunks[:2])
	writeArtifact(t, datasets, export.FileVal, []types.Chunk{})
	writeArtifact(t, datasets, export.FileTest, chunks[2:])

	capture := &diag.Capture{}
	report, err := New(datasets, outputs, capture).Evaluate()
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalChunks)
	assert.Equal(t, 2, report.Splits["train"])
	assert.Equal(t, 0, report.Splits["val"])
	assert.Equal(t, 1, report.Splits["test"])
	assert.True(t, capture.Has("chunks=3"))

	data, err := os.ReadFile(filepath.Join(outputs, FileReportJSON))
	require.NoError(t, err)
	var roundTrip types.Report
	require.NoError(t, json.Unmarshal(data, &roundTrip))
	assert.Equal(t, report.TotalChunks, roundTrip.TotalChunks)

	text, err := os.ReadFile(filepath.Join(outputs, FileReportText))
	require.NoError(t, err)
	rendered := string(text)
	assert.Contains(t, rendered, "DATASET QUALITY REPORT")
	assert.Contains(t, rendered, "Total Chunks   : 3")
	assert.Contains(t, rendered, "--- Sample 0 ---")
	assert.Contains(t, rendered, "sphinx of black quartz")
}

func TestEvaluateMissingArtifact(t *testing.T) {
	datasets := t.TempDir()
	outputs := t.TempDir()

	_, err := New(datasets, outputs, diag.Discard).Evaluate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), export.FileChunksWithID)
}

func TestRenderTruncatesPreviews(t *testing.T) {
	long := strings.Repeat("abcd ", 200)
	chunks := []types.Chunk{chunkOf(0, long)}
	report := Compute(chunks, nil)
	report.Splits = map[string]int{"train": 1, "val": 0, "test": 0}

	rendered := Render(report, chunks)
	start := strings.Index(rendered, "--- Sample 0 ---\n")
	require.GreaterOrEqual(t, start, 0)
	body := rendered[start+len("--- Sample 0 ---\n"):]
	body = strings.TrimRight(body, "\n")
	assert.Len(t, body, 400)
}

func TestRenderAtMostThreeSamples(t *testing.T) {
	chunks := make([]types.Chunk, 5)
	for i := range chunks {
		chunks[i] = chunkOf(i, "sample text number")
	}
	rendered := Render(Compute(chunks, nil), chunks)
	assert.Contains(t, rendered, "--- Sample 2 ---")
	assert.NotContains(t, rendered, "--- Sample 3 ---")
}
