// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dataset-engine/internal/diag"
	"github.com/pdiddy/dataset-engine/internal/export"
	"github.com/pdiddy/dataset-engine/internal/state"
	"github.com/pdiddy/dataset-engine/pkg/types"
)

// sampleText builds a document with n well-formed sentences, long enough to
// survive the sentence quality filter.
func sampleText(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "Sentence number %d carries enough ordinary words to pass every quality filter comfortably. ", i)
	}
	return sb.String()
}

func writeDoc(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func testConfig(workspace string) types.Config {
	cfg := types.DefaultConfig()
	cfg.Workspace.Dir = workspace
	return cfg
}

func TestRunFreshProducesArtifacts(t *testing.T) {
	workspace := t.TempDir()
	doc := writeDoc(t, t.TempDir(), "book.txt", sampleText(60))
	capture := &diag.Capture{}

	result, err := New(testConfig(workspace), nil, capture).Run(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, state.Fresh, result.Decision)
	assert.Equal(t, types.MethodDigital, result.Method)
	assert.Greater(t, result.ChunkCount, 0)
	assert.Equal(t, result.ChunkCount, result.Report.TotalChunks)

	datasets := filepath.Join(workspace, "datasets")
	for _, name := range []string{
		export.FileChunks, export.FileChunksWithID, export.FileCorpus,
		export.FileInstruct, export.FilePairs,
		export.FileTrain, export.FileVal, export.FileTest,
		export.FileManifest,
	} {
		_, err := os.Stat(filepath.Join(datasets, name))
		assert.NoError(t, err, name)
	}
	_, err = os.Stat(filepath.Join(workspace, "outputs", "dataset_report.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(workspace, "cache", "pipeline_state.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(workspace, "cache", "run.lock"))
	assert.True(t, os.IsNotExist(err), "lock should be released")

	assert.True(t, capture.Has("[GUARD] new or changed document"))
	assert.True(t, capture.Has("[CHUNK]"))
	assert.True(t, capture.Has("run committed"))
}

func TestRunSecondTimeIsCached(t *testing.T) {
	workspace := t.TempDir()
	doc := writeDoc(t, t.TempDir(), "book.txt", sampleText(60))
	cfg := testConfig(workspace)

	first, err := New(cfg, nil, diag.Discard).Run(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, state.Fresh, first.Decision)

	before := readArtifacts(t, filepath.Join(workspace, "datasets"))

	capture := &diag.Capture{}
	second, err := New(cfg, nil, capture).Run(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, state.Cached, second.Decision)
	assert.Equal(t, first.Signature, second.Signature)
	assert.Equal(t, first.Report.TotalChunks, second.Report.TotalChunks)
	assert.True(t, capture.Has("reusing cached artifacts"))

	after := readArtifacts(t, filepath.Join(workspace, "datasets"))
	assert.Equal(t, before, after, "cached run must not touch artifacts")
}

func TestRunChangedDocumentReprocesses(t *testing.T) {
	workspace := t.TempDir()
	docDir := t.TempDir()
	doc := writeDoc(t, docDir, "book.txt", sampleText(60))
	cfg := testConfig(workspace)

	first, err := New(cfg, nil, diag.Discard).Run(context.Background(), doc)
	require.NoError(t, err)

	writeDoc(t, docDir, "book.txt", sampleText(80))
	second, err := New(cfg, nil, diag.Discard).Run(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, state.Fresh, second.Decision)
	assert.NotEqual(t, first.Signature, second.Signature)
}

func TestRunEmptyDocumentExportsEmptyDataset(t *testing.T) {
	workspace := t.TempDir()
	doc := writeDoc(t, t.TempDir(), "noise.txt", "@@ ## !! ** &&")
	capture := &diag.Capture{}

	result, err := New(testConfig(workspace), nil, capture).Run(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, 0, result.ChunkCount)
	assert.True(t, capture.Has("exporting empty dataset"))

	data, err := os.ReadFile(filepath.Join(workspace, "datasets", export.FileChunks))
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))
}

func TestRunMissingDocumentFails(t *testing.T) {
	workspace := t.TempDir()

	_, err := New(testConfig(workspace), nil, diag.Discard).Run(context.Background(), filepath.Join(workspace, "absent.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestRunWorkspaceLocked(t *testing.T) {
	workspace := t.TempDir()
	doc := writeDoc(t, t.TempDir(), "book.txt", sampleText(10))

	guard := state.NewGuard(workspace)
	release, err := guard.Acquire()
	require.NoError(t, err)
	defer release()

	_, err = New(testConfig(workspace), nil, diag.Discard).Run(context.Background(), doc)
	assert.ErrorIs(t, err, state.ErrLocked)
}

func TestRunFailureLeavesNoCommittedState(t *testing.T) {
	workspace := t.TempDir()
	cfg := testConfig(workspace)

	_, err := New(cfg, nil, diag.Discard).Run(context.Background(), filepath.Join(workspace, "absent.txt"))
	require.Error(t, err)

	doc := writeDoc(t, t.TempDir(), "book.txt", sampleText(60))
	result, err := New(cfg, nil, diag.Discard).Run(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, state.Fresh, result.Decision)
}

func TestRunDictionaryRepairApplied(t *testing.T) {
	workspace := t.TempDir()
	dictPath := filepath.Join(t.TempDir(), "freq.txt")
	require.NoError(t, os.WriteFile(dictPath, []byte("computer 5000\n"), 0o644))

	text := "The com puter quietly hummed along while everyone in the office kept typing their reports. " +
		sampleText(40)
	doc := writeDoc(t, t.TempDir(), "book.txt", text)

	cfg := testConfig(workspace)
	cfg.Dictionary.Path = dictPath

	capture := &diag.Capture{}
	_, err := New(cfg, nil, capture).Run(context.Background(), doc)
	require.NoError(t, err)

	corpus, err := os.ReadFile(filepath.Join(workspace, "datasets", export.FileCorpus))
	require.NoError(t, err)
	assert.Contains(t, string(corpus), "computer")
	assert.NotContains(t, string(corpus), "com puter")
}

func readArtifacts(t *testing.T, dir string) map[string]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	files := make(map[string]string, len(entries))
	for _, entry := range entries {
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		require.NoError(t, err)
		files[entry.Name()] = string(data)
	}
	return files
}
