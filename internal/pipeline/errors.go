// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "errors"

// Fatal error categories. Recoverable conditions (dictionary missing, OCR
// engine unavailable, empty chunk set) never surface as errors; the stages
// log them and the run continues degraded.
var (
	// ErrExtraction marks an unreadable or unparseable source document.
	ErrExtraction = errors.New("text extraction failed")

	// ErrArtifactWrite marks a failed write of a dataset artifact or report.
	// The run aborts without committing state, so the next run reprocesses.
	ErrArtifactWrite = errors.New("artifact write failed")
)
