// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the document-to-dataset stages in order: guard,
// extract, clean, repair, chunk, export, report. It owns stage sequencing
// and the fatal/recoverable error split; the stages themselves stay
// ignorant of each other.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/dataset-engine/internal/chunker"
	"github.com/pdiddy/dataset-engine/internal/diag"
	"github.com/pdiddy/dataset-engine/internal/dict"
	"github.com/pdiddy/dataset-engine/internal/evaluate"
	"github.com/pdiddy/dataset-engine/internal/export"
	"github.com/pdiddy/dataset-engine/internal/extract"
	"github.com/pdiddy/dataset-engine/internal/normalize"
	"github.com/pdiddy/dataset-engine/internal/repair"
	"github.com/pdiddy/dataset-engine/internal/state"
	"github.com/pdiddy/dataset-engine/pkg/types"
)

// Intermediate text snapshots kept under cache/ for inspection between runs.
const (
	cacheExtracted = "extracted.txt"
	cacheRepaired  = "repaired.txt"
)

// finalStage is the stage label recorded in the committed state.
const finalStage = "report"

// Result summarizes one Run.
type Result struct {
	// Decision is the guard verdict (fresh or cached).
	Decision state.Decision

	// Signature identifies the processed document.
	Signature string

	// Method is how text was obtained on a fresh run; empty on cached.
	Method types.ExtractionMethod

	// ChunkCount is the number of chunks exported on a fresh run.
	ChunkCount int

	// Report is the quality report (recomputed on fresh, reloaded on
	// cached).
	Report types.Report
}

// Pipeline wires the stages together for one workspace.
type Pipeline struct {
	cfg    types.Config
	engine extract.Engine
	sink   diag.Sink
}

// New returns a Pipeline. engine may be nil, in which case scanned
// documents fall back to the digital layer with a warning.
func New(cfg types.Config, engine extract.Engine, sink diag.Sink) *Pipeline {
	return &Pipeline{cfg: cfg, engine: engine, sink: sink}
}

// Run processes one document end to end. A cached verdict short-circuits
// after the guard; a fresh verdict runs every stage and commits state only
// after the report is on disk.
func (p *Pipeline) Run(ctx context.Context, docPath string) (Result, error) {
	guard := state.NewGuard(p.cfg.Workspace.Dir)

	release, err := guard.Acquire()
	if err != nil {
		return Result{}, err
	}
	defer release()

	doc, err := state.ReadDocument(docPath)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	signature := state.Signature(doc)

	decision, err := guard.Check(signature)
	if err != nil {
		return Result{}, err
	}
	if decision == state.Cached {
		p.sink.Emit("GUARD", "signature unchanged - reusing cached artifacts")
		report, _ := p.loadReport(guard)
		return Result{Decision: state.Cached, Signature: signature, Report: report}, nil
	}
	p.sink.Emit("GUARD", "new or changed document - processing from scratch")

	extracted, err := p.extractStage(ctx, guard, doc)
	if err != nil {
		return Result{}, err
	}

	cleaned := normalize.Clean(extracted.Text, p.cfg.Clean)
	p.sink.Emit("CLEAN", "normalized %d chars to %d", len(extracted.Text), len(cleaned))

	repaired := p.repairStage(cleaned)
	if err := p.snapshot(guard, cacheRepaired, repaired); err != nil {
		return Result{}, err
	}

	chunks := p.chunkStage(repaired)

	exporter := export.New(guard.DatasetsDir(), p.cfg.Export, p.sink)
	if err := exporter.Export(doc, extracted.Method, chunks, signature); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrArtifactWrite, err)
	}

	evaluator := evaluate.New(guard.DatasetsDir(), guard.OutputsDir(), p.sink)
	report, err := evaluator.Evaluate()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrArtifactWrite, err)
	}

	if err := guard.Commit(signature, finalStage); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrArtifactWrite, err)
	}
	p.sink.Emit("GUARD", "run committed for signature %s", signature)

	return Result{
		Decision:   state.Fresh,
		Signature:  signature,
		Method:     extracted.Method,
		ChunkCount: len(chunks),
		Report:     report,
	}, nil
}

func (p *Pipeline) extractStage(ctx context.Context, guard *state.Guard, doc types.SourceDocument) (types.ExtractedText, error) {
	extractor := extract.New(p.cfg.Extraction, p.engine, p.sink)
	extracted, err := extractor.Extract(ctx, doc)
	if err != nil {
		return types.ExtractedText{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if err := p.snapshot(guard, cacheExtracted, extracted.Text); err != nil {
		return types.ExtractedText{}, err
	}
	return extracted, nil
}

// repairStage opens the configured dictionary and applies the token
// repairs. A missing or unreadable dictionary degrades the stage instead
// of failing the run.
func (p *Pipeline) repairStage(text string) string {
	var d dict.Dictionary
	if p.cfg.Dictionary.Path != "" {
		opened, err := dict.Open(p.cfg.Dictionary.Path)
		if err != nil {
			p.sink.Emit("REPAIR", "dictionary %s unusable (%v) - continuing without it",
				p.cfg.Dictionary.Path, err)
		} else {
			d = opened
			defer opened.Close()
		}
	}
	result := repair.Repair(text, d, p.cfg.Repair, p.sink)
	return result.Text
}

func (p *Pipeline) chunkStage(text string) []types.Chunk {
	sentences := chunker.SplitSentences(text)
	kept := chunker.FilterSentences(sentences, p.cfg.Chunk)
	chunks := chunker.Chunk(kept, p.cfg.Chunk)
	p.sink.Emit("CHUNK", "%d sentences (%d kept) -> %d chunks",
		len(sentences), len(kept), len(chunks))
	if len(chunks) == 0 {
		p.sink.Emit("CHUNK", "no usable sentences - exporting empty dataset")
	}
	return chunks
}

// snapshot writes an intermediate text artifact into the cache store.
func (p *Pipeline) snapshot(guard *state.Guard, name, text string) error {
	path := filepath.Join(guard.CacheDir(), name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrArtifactWrite, err)
	}
	return nil
}

// loadReport reloads the persisted report for a cached run. Absence is not
// an error; the zero report is returned.
func (p *Pipeline) loadReport(guard *state.Guard) (types.Report, error) {
	data, err := os.ReadFile(filepath.Join(guard.OutputsDir(), evaluate.FileReportJSON))
	if err != nil {
		return types.Report{}, err
	}
	var report types.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return types.Report{}, err
	}
	return report, nil
}
