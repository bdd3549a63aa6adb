// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract produces ordered raw text from a source document. PDFs
// go through digital-layer block extraction first; when that yields fewer
// characters than the configured threshold, the OCR engine takes over at
// word level with a confidence cutoff. A missing OCR engine downgrades to
// the digital text with a warning rather than failing the run.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/dataset-engine/internal/diag"
	"github.com/pdiddy/dataset-engine/pkg/types"
)

const stage = "EXTRACT"

// Extractor chooses the extraction path for a document.
type Extractor struct {
	cfg    types.ExtractionConfig
	engine Engine // nil means no OCR capability
	sink   diag.Sink
}

// New returns an Extractor. engine may be nil when no OCR capability
// exists on the host.
func New(cfg types.ExtractionConfig, engine Engine, sink diag.Sink) *Extractor {
	return &Extractor{cfg: cfg, engine: engine, sink: sink}
}

// Extract produces the document's raw text and records which method made
// it. Plain-text documents read directly; PDFs follow the
// digital-then-OCR policy. An unreadable document is a fatal extraction
// failure.
func (e *Extractor) Extract(ctx context.Context, doc types.SourceDocument) (types.ExtractedText, error) {
	if strings.ToLower(filepath.Ext(doc.Path)) != ".pdf" {
		data, err := os.ReadFile(doc.Path)
		if err != nil {
			return types.ExtractedText{}, fmt.Errorf("reading text file %s: %w", doc.Path, err)
		}
		e.sink.Emit(stage, "text file read: %d characters", len(data))
		return types.ExtractedText{Text: string(data), Method: types.MethodDigital}, nil
	}

	digital, err := DigitalText(doc.Path)
	if err != nil {
		return types.ExtractedText{}, fmt.Errorf("digital extraction: %w", err)
	}
	e.sink.Emit(stage, "digital text length: %d characters", len(digital))

	if len(digital) >= e.cfg.ThresholdChars {
		e.sink.Emit(stage, "using digital block extraction")
		return types.ExtractedText{Text: digital, Method: types.MethodDigital}, nil
	}

	if e.engine == nil || !e.engine.Available() {
		e.sink.Emit(stage, "digital text under %d chars but OCR unavailable - keeping digital text",
			e.cfg.ThresholdChars)
		return types.ExtractedText{Text: digital, Method: types.MethodDigitalFallbackWarned}, nil
	}

	e.sink.Emit(stage, "digital text weak - switching to OCR fallback")
	octx := ctx
	if e.cfg.OCRTimeout > 0 {
		var cancel context.CancelFunc
		octx, cancel = context.WithTimeout(ctx, e.cfg.OCRTimeout)
		defer cancel()
	}

	words, err := e.engine.Recognize(octx, doc.Path)
	if err != nil {
		// A timeout is a hang cut short: abort the run. Any other OCR
		// failure downgrades to the digital text.
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return types.ExtractedText{}, fmt.Errorf("OCR: %w", err)
		}
		e.sink.Emit(stage, "OCR failed (%v) - keeping digital text", err)
		return types.ExtractedText{Text: digital, Method: types.MethodDigitalFallbackWarned}, nil
	}

	text := AssembleWords(words, e.cfg.OCRConfidenceMin)
	e.sink.Emit(stage, "OCR recognized %d words, kept text length %d", len(words), len(text))
	return types.ExtractedText{Text: text, Method: types.MethodOCR}, nil
}
