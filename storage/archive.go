package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/snappy"

	"executive-analytics/models"
)

// SnapshotArchive keeps snappy-compressed JSON copies of snapshots on disk.
type SnapshotArchive struct {
	dir string
}

// NewSnapshotArchive creates the archive directory if needed.
func NewSnapshotArchive(dir string) (*SnapshotArchive, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("archive: create dir: %w", err)
	}
	return &SnapshotArchive{dir: dir}, nil
}

// Path returns where the snapshot of a run is stored.
func (a *SnapshotArchive) Path(runID string) string {
	return filepath.Join(a.dir, "snapshot-"+runID+".json.sz")
}

// Write stores snap and returns the file path.
func (a *SnapshotArchive) Write(snap *models.KpiSnapshot) (string, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("archive: encode: %w", err)
	}
	path := a.Path(snap.RunID)
	if err := os.WriteFile(path, snappy.Encode(nil, data), 0644); err != nil {
		return "", fmt.Errorf("archive: write %s: %w", path, err)
	}
	return path, nil
}

// Read loads an archived snapshot by run id.
func (a *SnapshotArchive) Read(runID string) (*models.KpiSnapshot, error) {
	compressed, err := os.ReadFile(a.Path(runID))
	if err != nil {
		return nil, fmt.Errorf("archive: read: %w", err)
	}
	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("archive: decompress: %w", err)
	}
	snap := &models.KpiSnapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("archive: decode: %w", err)
	}
	return snap, nil
}
