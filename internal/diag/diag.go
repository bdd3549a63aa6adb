// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package diag provides the line-oriented progress sink the pipeline stages
// report through. The CLI wires it to stdout so an external orchestrator can
// relay log lines in real time; tests capture them in memory.
package diag

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Sink receives one progress message per call, tagged with the emitting
// pipeline stage.
type Sink interface {
	Emit(stage, format string, args ...any)
}

// LineSink renders messages as "LOG: [STAGE] message" lines, one per Emit.
// The line shape is the contract with the orchestration layer that tails the
// process's stdout.
type LineSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLineSink returns a Sink writing log lines to w.
func NewLineSink(w io.Writer) *LineSink {
	return &LineSink{w: w}
}

func (s *LineSink) Emit(stage, format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "LOG: [%s] %s\n", stage, fmt.Sprintf(format, args...))
}

// Discard drops all messages.
var Discard Sink = discard{}

type discard struct{}

func (discard) Emit(string, string, ...any) {}

// Capture records emitted lines for test assertions.
type Capture struct {
	mu    sync.Mutex
	Lines []string
}

func (c *Capture) Emit(stage, format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Lines = append(c.Lines, fmt.Sprintf("[%s] %s", stage, fmt.Sprintf(format, args...)))
}

// Has reports whether any captured line contains substr.
func (c *Capture) Has(substr string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.Lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}
