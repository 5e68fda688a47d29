package cache

import (
	"bytes"
	"fmt"
	"os"

	"github.com/DataDog/zstd"
	"github.com/kelindar/binary"
	"github.com/natefinch/atomic"

	"github.com/m4ra-routing/m4ra/pkg/datastructure"
)

// Artifacts are stored as a kelindar/binary payload behind zstd
// compression and replaced as whole files, so a reader never observes a
// partial write.

func writeArtifact(path string, v any) error {
	encoded, err := binary.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding artifact %s: %w", path, err)
	}
	compressed, err := zstd.Compress(nil, encoded)
	if err != nil {
		return fmt.Errorf("compressing artifact %s: %w", path, err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(compressed)); err != nil {
		return fmt.Errorf("writing artifact %s: %w", path, err)
	}
	return nil
}

func readArtifact(path string, v any) error {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading artifact %s: %w", path, err)
	}
	encoded, err := zstd.Decompress(nil, compressed)
	if err != nil {
		return fmt.Errorf("decompressing artifact %s: %w", path, err)
	}
	if err := binary.Unmarshal(encoded, v); err != nil {
		return fmt.Errorf("decoding artifact %s: %w", path, err)
	}
	return nil
}

// WriteNetwork persists a raw network. Used by ingestion tooling and
// tests; the weighting pipeline itself never writes raw networks.
func WriteNetwork(path string, n *datastructure.Network) error {
	return writeArtifact(path, n)
}

// ReadNetwork loads a raw per-city network file.
func ReadNetwork(path string) (*datastructure.Network, error) {
	var n datastructure.Network
	if err := readArtifact(path, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// WriteWeightedNetwork persists a weighted network artifact.
func WriteWeightedNetwork(path string, w *datastructure.WeightedNetwork) error {
	return writeArtifact(path, w)
}

// ReadWeightedNetwork loads a weighted network artifact.
func ReadWeightedNetwork(path string) (*datastructure.WeightedNetwork, error) {
	var w datastructure.WeightedNetwork
	if err := readArtifact(path, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// WriteVertexIndex persists a pairwise vertex index artifact.
func WriteVertexIndex(path string, idx *datastructure.VertexIndex) error {
	return writeArtifact(path, idx)
}

// ReadVertexIndex loads a pairwise vertex index artifact.
func ReadVertexIndex(path string) (*datastructure.VertexIndex, error) {
	var idx datastructure.VertexIndex
	if err := readArtifact(path, &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}
