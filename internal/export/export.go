// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders the ordered chunk sequence into the dataset
// artifacts: raw chunk list, id records, concatenated corpus, instruction
// records, similarity pairs, and the train/val/test split. Every artifact
// is a deterministic transform of the chunk sequence; the only randomness
// is an explicitly seeded generator keyed by the run signature, so reruns
// of the same input reproduce byte-identical datasets.
package export

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/pdiddy/dataset-engine/internal/diag"
	"github.com/pdiddy/dataset-engine/pkg/types"
)

const stage = "EXPORT"

// Artifact file names, stable across runs.
const (
	FileChunks       = "chunks.json"
	FileChunksWithID = "chunks_with_id.json"
	FileCorpus       = "corpus.txt"
	FileInstruct     = "instruct.json"
	FilePairs        = "pairs.json"
	FileTrain        = "train.json"
	FileVal          = "val.json"
	FileTest         = "test.json"
	FileManifest     = "manifest.yaml"
)

// instruction is the fixed prompt wrapped around every chunk in the
// instruction-format dataset.
const instruction = "Study the following passage and learn its content."

// Exporter writes dataset artifacts into one directory.
type Exporter struct {
	dir  string
	cfg  types.ExportConfig
	sink diag.Sink
}

// New returns an Exporter writing into dir.
func New(dir string, cfg types.ExportConfig, sink diag.Sink) *Exporter {
	return &Exporter{dir: dir, cfg: cfg, sink: sink}
}

// Seed derives the effective RNG seed from the configured seed and the run
// signature. Identical documents reproduce identical datasets; different
// documents decorrelate even under the default seed.
func Seed(configured int64, signature string) int64 {
	h := sha256.Sum256([]byte(signature))
	return configured ^ int64(binary.BigEndian.Uint64(h[:8]))
}

// Export writes every dataset artifact plus the run manifest. Any write
// failure is fatal to the run; there is no partial-artifact state worth
// keeping.
func (e *Exporter) Export(doc types.SourceDocument, method types.ExtractionMethod, chunks []types.Chunk, signature string) error {
	seed := Seed(e.cfg.RandomSeed, signature)

	if chunks == nil {
		chunks = []types.Chunk{}
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	if err := e.writeJSON(FileChunks, texts); err != nil {
		return err
	}
	if err := e.writeJSON(FileChunksWithID, chunks); err != nil {
		return err
	}
	if err := e.writeCorpus(texts); err != nil {
		return err
	}

	instruct := make([]types.InstructRecord, len(chunks))
	for i, c := range chunks {
		instruct[i] = types.InstructRecord{Instruction: instruction, Output: c.Text}
	}
	if err := e.writeJSON(FileInstruct, instruct); err != nil {
		return err
	}

	pairs := BuildPairs(chunks, seed)
	if err := e.writeJSON(FilePairs, pairs); err != nil {
		return err
	}

	split := BuildSplit(chunks, e.cfg.SplitRatios, seed)
	if err := e.writeJSON(FileTrain, split.Train); err != nil {
		return err
	}
	if err := e.writeJSON(FileVal, split.Val); err != nil {
		return err
	}
	if err := e.writeJSON(FileTest, split.Test); err != nil {
		return err
	}

	e.sink.Emit(stage, "%d chunks, %d pairs, split %d/%d/%d",
		len(chunks), len(pairs), len(split.Train), len(split.Val), len(split.Test))

	if err := e.writeManifest(doc, method, signature); err != nil {
		return err
	}
	return nil
}

// BuildPairs produces the similarity pair set: one positive pair per
// adjacent chunk pair, and for each chunk one negative pair against a
// seeded-random distinct, non-adjacent partner. A chunk with no eligible
// partner (possible only for very small chunk sets) contributes no
// negative pair rather than a weakened one.
func BuildPairs(chunks []types.Chunk, seed int64) []types.Pair {
	pairs := make([]types.Pair, 0, 2*len(chunks))

	for i := 0; i+1 < len(chunks); i++ {
		pairs = append(pairs, types.Pair{
			TextA: chunks[i].Text,
			TextB: chunks[i+1].Text,
			Label: 1,
		})
	}

	rng := rand.New(rand.NewSource(seed))
	for i := range chunks {
		var eligible []int
		for j := range chunks {
			if j != i && abs(i-j) >= 2 {
				eligible = append(eligible, j)
			}
		}
		if len(eligible) == 0 {
			continue
		}
		j := eligible[rng.Intn(len(eligible))]
		pairs = append(pairs, types.Pair{
			TextA: chunks[i].Text,
			TextB: chunks[j].Text,
			Label: 0,
		})
	}
	return pairs
}

// BuildSplit shuffles the chunk records with the seeded generator and cuts
// at floor(r0*N) and floor((r0+r1)*N); the rounding remainder accrues to
// the test partition.
func BuildSplit(chunks []types.Chunk, ratios [3]float64, seed int64) types.Split {
	shuffled := make([]types.Chunk, len(chunks))
	copy(shuffled, chunks)

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	n := len(shuffled)
	trainEnd := int(math.Floor(ratios[0] * float64(n)))
	valEnd := int(math.Floor((ratios[0] + ratios[1]) * float64(n)))

	return types.Split{
		Train: shuffled[:trainEnd],
		Val:   shuffled[trainEnd:valEnd],
		Test:  shuffled[valEnd:],
	}
}

// writeJSON writes v as indented UTF-8 JSON without HTML escaping, keeping
// real unicode characters readable in the artifacts.
func (e *Exporter) writeJSON(name string, v any) error {
	path := filepath.Join(e.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	e.sink.Emit(stage, "%s saved", name)
	return nil
}

// writeCorpus writes the blank-line separated corpus text.
func (e *Exporter) writeCorpus(texts []string) error {
	path := filepath.Join(e.dir, FileCorpus)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	for _, t := range texts {
		if _, err := fmt.Fprintf(f, "%s\n\n", t); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	e.sink.Emit(stage, "%s saved", FileCorpus)
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
