// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Word is one OCR-recognized word with its confidence in [0,1] and page
// position (raster coordinates, origin top-left).
type Word struct {
	Text string
	Conf float64
	Page int
	X, Y float64
}

// Engine is the OCR capability the extractor falls back to when the
// digital text layer is too thin. The production engine shells out to
// external tools; tests inject fakes.
type Engine interface {
	// Available reports whether the engine can run on this host.
	Available() bool

	// Recognize performs word-level recognition over every page of the
	// PDF at path. The context bounds total wall time.
	Recognize(ctx context.Context, path string) ([]Word, error)
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunPiped(ctx context.Context, name string, args []string, stdout *bytes.Buffer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) RunPiped(ctx context.Context, name string, args []string, stdout *bytes.Buffer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	return cmd.Run()
}

const (
	binPdftoppm  = "pdftoppm"
	binTesseract = "tesseract"
)

// TesseractEngine rasterizes PDF pages with pdftoppm and recognizes each
// page with tesseract's TSV output, which carries per-word confidences.
type TesseractEngine struct {
	exec executor
}

// NewTesseractEngine returns the production OCR engine.
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{exec: osExecutor{}}
}

// Available reports whether both pdftoppm and tesseract are on PATH.
func (e *TesseractEngine) Available() bool {
	if _, err := e.exec.LookPath(binPdftoppm); err != nil {
		return false
	}
	_, err := e.exec.LookPath(binTesseract)
	return err == nil
}

// Recognize rasterizes the PDF into per-page PNGs under a temp directory
// and runs tesseract over each, collecting word-level results. Tesseract
// reports confidence 0-100; it is scaled to [0,1] here.
func (e *TesseractEngine) Recognize(ctx context.Context, path string) ([]Word, error) {
	tmp, err := os.MkdirTemp("", "dataset-engine-ocr-")
	if err != nil {
		return nil, fmt.Errorf("creating OCR temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	prefix := filepath.Join(tmp, "page")
	var discard bytes.Buffer
	if err := e.exec.RunPiped(ctx, binPdftoppm,
		[]string{"-r", "300", "-png", path, prefix}, &discard); err != nil {
		return nil, fmt.Errorf("rasterizing %s: %w", path, err)
	}

	pages, err := filepath.Glob(prefix + "*.png")
	if err != nil {
		return nil, err
	}
	sort.Strings(pages)
	if len(pages) == 0 {
		return nil, fmt.Errorf("rasterizing %s produced no pages", path)
	}

	var words []Word
	for i, img := range pages {
		var out bytes.Buffer
		if err := e.exec.RunPiped(ctx, binTesseract,
			[]string{img, "stdout", "--psm", "3", "tsv"}, &out); err != nil {
			return nil, fmt.Errorf("recognizing page %d: %w", i+1, err)
		}
		words = append(words, parseTSV(out.Bytes(), i+1)...)
	}
	return words, nil
}

// tsv column indices of tesseract's TSV output.
const (
	tsvLevel = 0
	tsvLeft  = 6
	tsvTop   = 7
	tsvConf  = 10
	tsvText  = 11
	tsvCols  = 12
)

// parseTSV extracts word-level rows (level 5) from tesseract TSV output.
func parseTSV(data []byte, page int) []Word {
	var words []Word
	for i, line := range strings.Split(string(data), "\n") {
		if i == 0 { // header row
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < tsvCols || cols[tsvLevel] != "5" {
			continue
		}
		text := strings.TrimSpace(cols[tsvText])
		if text == "" {
			continue
		}
		conf, err := strconv.ParseFloat(cols[tsvConf], 64)
		if err != nil || conf < 0 {
			continue
		}
		left, _ := strconv.ParseFloat(cols[tsvLeft], 64)
		top, _ := strconv.ParseFloat(cols[tsvTop], 64)
		words = append(words, Word{
			Text: text,
			Conf: conf / 100,
			Page: page,
			X:    left,
			Y:    top,
		})
	}
	return words
}

// AssembleWords filters words below the confidence cutoff and joins the
// rest in reading order: page, then top-to-bottom, then left-to-right
// within a row band (raster coordinates grow downward). Pages separate
// with a blank line.
func AssembleWords(words []Word, confMin float64) string {
	kept := make([]Word, 0, len(words))
	for _, w := range words {
		if w.Conf >= confMin {
			kept = append(kept, w)
		}
	}

	// OCR rasters are ~10px of baseline jitter at 300dpi.
	const band = 10.0
	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		ba, bb := int(a.Y/band), int(b.Y/band)
		if ba != bb {
			return ba < bb
		}
		return a.X < b.X
	})

	var sb strings.Builder
	lastPage := 0
	for _, w := range kept {
		if sb.Len() > 0 {
			if w.Page != lastPage {
				sb.WriteString("\n\n")
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(w.Text)
		lastPage = w.Page
	}
	return sb.String()
}
