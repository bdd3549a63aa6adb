// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package state implements the pipeline guard: the run-level decision
// between reprocessing a document and reusing cached output. The guard owns
// the persisted PipelineState record and the cache/datasets/outputs
// lifecycle; nothing else writes either. A new signature clears all three
// stores; an unchanged signature short-circuits the run. The state record
// is committed only on successful completion, so a failed or interrupted
// run is indistinguishable from no run at all.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pdiddy/dataset-engine/pkg/types"
)

// Decision is the guard's verdict for a run.
type Decision string

const (
	// Fresh means the document is new or changed: stores were cleared and
	// the full pipeline must run.
	Fresh Decision = "fresh"
	// Cached means the document matches the last successful run: existing
	// artifacts are returned unchanged.
	Cached Decision = "cached"
)

const (
	cacheDir    = "cache"
	datasetsDir = "datasets"
	outputsDir  = "outputs"
	stateFile   = "pipeline_state.json"
	lockFile    = "run.lock"

	// statusOK is the only LastRunStatus ever persisted; a run that fails
	// leaves the previous record untouched.
	statusOK = "ok"
)

// PipelineState is the persisted record comparing one run to the next.
type PipelineState struct {
	// Signature is the identity tuple of the last successfully processed
	// document.
	Signature string `json:"signature"`

	// LastRunStatus is the terminal status of that run (always "ok";
	// failures are never persisted).
	LastRunStatus string `json:"last_run_status"`

	// Stage is the last completed stage label, for diagnostics.
	Stage string `json:"stage"`

	// Timestamp is the completion time of that run.
	Timestamp time.Time `json:"timestamp"`
}

// Guard decides fresh-vs-cached for a workspace and owns its artifact
// directory lifecycle.
type Guard struct {
	root string
}

// NewGuard returns a Guard over the workspace root directory.
func NewGuard(workspaceDir string) *Guard {
	return &Guard{root: workspaceDir}
}

// CacheDir returns the cache directory path.
func (g *Guard) CacheDir() string { return filepath.Join(g.root, cacheDir) }

// DatasetsDir returns the dataset artifact directory path.
func (g *Guard) DatasetsDir() string { return filepath.Join(g.root, datasetsDir) }

// OutputsDir returns the report output directory path.
func (g *Guard) OutputsDir() string { return filepath.Join(g.root, outputsDir) }

func (g *Guard) statePath() string { return filepath.Join(g.CacheDir(), stateFile) }
func (g *Guard) lockPath() string  { return filepath.Join(g.CacheDir(), lockFile) }

// ReadDocument resolves a document's identity tuple: path, byte size, and
// content hash. The tuple is immutable once read; everything downstream
// keys off it.
func ReadDocument(path string) (types.SourceDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.SourceDocument{}, fmt.Errorf("opening document %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return types.SourceDocument{}, fmt.Errorf("stat document %s: %w", path, err)
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return types.SourceDocument{}, fmt.Errorf("hashing document %s: %w", path, err)
	}

	return types.SourceDocument{
		Path:   path,
		Size:   info.Size(),
		SHA256: hex.EncodeToString(h.Sum(nil)),
	}, nil
}

// Signature renders the document identity tuple as the run signature.
func Signature(doc types.SourceDocument) string {
	return fmt.Sprintf("%s:%d:%s", filepath.Base(doc.Path), doc.Size, doc.SHA256)
}

// EnsureDirs creates the cache, datasets and outputs directories.
func (g *Guard) EnsureDirs() error {
	for _, dir := range []string{g.CacheDir(), g.DatasetsDir(), g.OutputsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// Check compares signature against the persisted state. A match with a
// successful last run yields Cached. Anything else yields Fresh after
// clearing the cache, datasets and outputs stores (the state record itself
// survives until Commit overwrites it).
func (g *Guard) Check(signature string) (Decision, error) {
	if err := g.EnsureDirs(); err != nil {
		return Fresh, err
	}

	prev, err := g.read()
	if err == nil && prev.Signature == signature && prev.LastRunStatus == statusOK {
		return Cached, nil
	}

	if err := g.clear(); err != nil {
		return Fresh, err
	}
	return Fresh, nil
}

// Commit persists the new state record. Called exactly once, after every
// artifact of a fresh run has been written.
func (g *Guard) Commit(signature, stage string) error {
	st := PipelineState{
		Signature:     signature,
		LastRunStatus: statusOK,
		Stage:         stage,
		Timestamp:     time.Now().UTC(),
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling pipeline state: %w", err)
	}
	if err := os.WriteFile(g.statePath(), data, 0o644); err != nil {
		return fmt.Errorf("writing pipeline state: %w", err)
	}
	return nil
}

// read loads the persisted state record.
func (g *Guard) read() (PipelineState, error) {
	data, err := os.ReadFile(g.statePath())
	if err != nil {
		return PipelineState{}, err
	}
	var st PipelineState
	if err := json.Unmarshal(data, &st); err != nil {
		return PipelineState{}, fmt.Errorf("parsing pipeline state: %w", err)
	}
	return st, nil
}

// clear empties the three artifact stores, keeping the state record and
// lock file so the guard's own bookkeeping survives.
func (g *Guard) clear() error {
	for _, dir := range []string{g.CacheDir(), g.DatasetsDir(), g.OutputsDir()} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("reading %s: %w", dir, err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if dir == g.CacheDir() && (name == stateFile || name == lockFile) {
				continue
			}
			if err := os.RemoveAll(filepath.Join(dir, name)); err != nil {
				return fmt.Errorf("clearing %s: %w", filepath.Join(dir, name), err)
			}
		}
	}
	return nil
}

// ErrLocked is returned when another run holds the workspace.
var ErrLocked = errors.New("workspace locked by another run")

// Acquire takes the workspace lock. Only one run may hold the cache and
// output stores at a time; a second concurrent run fails fast instead of
// interleaving writes. The returned release function removes the lock.
func (g *Guard) Acquire() (release func() error, err error) {
	if err := g.EnsureDirs(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(g.lockPath(), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			holder := "unknown pid"
			if data, readErr := os.ReadFile(g.lockPath()); readErr == nil && len(data) > 0 {
				holder = "pid " + string(data)
			}
			return nil, fmt.Errorf("%w (%s): remove %s if that run is dead",
				ErrLocked, holder, g.lockPath())
		}
		return nil, fmt.Errorf("acquiring workspace lock: %w", err)
	}

	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		f.Close()
		os.Remove(g.lockPath())
		return nil, fmt.Errorf("writing workspace lock: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(g.lockPath())
		return nil, fmt.Errorf("closing workspace lock: %w", err)
	}

	return func() error { return os.Remove(g.lockPath()) }, nil
}
