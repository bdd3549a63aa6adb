// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/dataset-engine/pkg/types"
)

// ArtifactMeta describes one written dataset artifact.
type ArtifactMeta struct {
	Name   string `yaml:"name"`
	Bytes  int64  `yaml:"bytes"`
	SHA256 string `yaml:"sha256"`
}

// Manifest inventories one export run: the source document identity, the
// extraction method, and a hash per artifact so downstream consumers can
// verify integrity.
type Manifest struct {
	Document  types.SourceDocument   `yaml:"document"`
	Signature string                 `yaml:"signature"`
	Method    types.ExtractionMethod `yaml:"method"`
	CreatedAt string                 `yaml:"created_at"`
	Artifacts []ArtifactMeta         `yaml:"artifacts"`
}

// writeManifest hashes every artifact in the dataset directory and writes
// manifest.yaml beside them.
func (e *Exporter) writeManifest(doc types.SourceDocument, method types.ExtractionMethod, signature string) error {
	names := []string{
		FileChunks, FileChunksWithID, FileCorpus, FileInstruct,
		FilePairs, FileTrain, FileVal, FileTest,
	}

	m := Manifest{
		Document:  doc,
		Signature: signature,
		Method:    method,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	for _, name := range names {
		path := filepath.Join(e.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("hashing artifact %s: %w", path, err)
		}
		sum := sha256.Sum256(data)
		m.Artifacts = append(m.Artifacts, ArtifactMeta{
			Name:   name,
			Bytes:  int64(len(data)),
			SHA256: hex.EncodeToString(sum[:]),
		})
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	path := filepath.Join(e.dir, FileManifest)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	e.sink.Emit(stage, "%s saved", FileManifest)
	return nil
}
