package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"executive-analytics/models"
)

func TestSnapshotArchiveRoundTrip(t *testing.T) {
	a, err := NewSnapshotArchive(filepath.Join(t.TempDir(), "archive"))
	require.NoError(t, err)

	snap := &models.KpiSnapshot{
		RunID:       "3f1c",
		GeneratedAt: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		Financial:   models.FinancialMetrics{Available: true, TotalRaised: 1_250_000, Top10Concentration: 42.5},
		Insights:    []models.Insight{{Type: models.InsightDonorDiversification, Confidence: 0.85}},
	}
	path, err := a.Write(snap)
	require.NoError(t, err)
	assert.Equal(t, "snapshot-3f1c.json.sz", filepath.Base(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	_, err = snappy.Decode(nil, raw)
	assert.NoError(t, err, "archive should be snappy block encoded")

	got, err := a.Read("3f1c")
	require.NoError(t, err)
	assert.Equal(t, snap.RunID, got.RunID)
	assert.True(t, snap.GeneratedAt.Equal(got.GeneratedAt))
	assert.Equal(t, snap.Financial, got.Financial)
	assert.Equal(t, snap.Insights, got.Insights)
}

func TestSnapshotArchiveReadMissing(t *testing.T) {
	a, err := NewSnapshotArchive(t.TempDir())
	require.NoError(t, err)
	_, err = a.Read("nope")
	assert.Error(t, err)
}
