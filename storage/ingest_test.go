package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"executive-analytics/models"
	"executive-analytics/utils"
)

type fakeWriter struct {
	recordingInserter
	cleared   []string
	snapshots []*models.KpiSnapshot
	alerts    []Alert
	clearErr  error
}

func (f *fakeWriter) Clear(_ context.Context, table string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared = append(f.cleared, table)
	return nil
}

func (f *fakeWriter) SaveSnapshot(_ context.Context, snap *models.KpiSnapshot) error {
	f.snapshots = append(f.snapshots, snap)
	return nil
}

func (f *fakeWriter) SaveAlert(_ context.Context, a Alert) error {
	f.alerts = append(f.alerts, a)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func donorRecords(n int) models.RecordSet {
	var rs models.RecordSet
	for i := 0; i < n; i++ {
		gift := float64(10_000 + i)
		rs.Donors = append(rs.Donors, models.DerivedDonor{Record: models.Donor{GiftAmount: &gift}})
	}
	return rs
}

func TestIngestWritesEveryTableAndRecordsAlert(t *testing.T) {
	w := &fakeWriter{recordingInserter: recordingInserter{failAt: map[int]bool{}}}
	snap := &models.KpiSnapshot{RunID: "run-1"}

	reports, err := Ingest(context.Background(), w, donorRecords(1500), snap, 1000, utils.NewNopLogger())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{TableApplicants, TableVolunteers, TableBloodDrives, TableDonors}, w.cleared)
	require.Len(t, reports, 4)
	for _, r := range reports {
		assert.True(t, r.OK(), r.String())
	}
	assert.Equal(t, 2, w.calls, "1500 donor rows make two batches; empty tables make none")

	require.Len(t, w.snapshots, 1)
	assert.Same(t, snap, w.snapshots[0])

	require.Len(t, w.alerts, 1)
	assert.Equal(t, AlertIngestionComplete, w.alerts[0].Type)
	assert.Equal(t, "Successfully processed 1,500 records", w.alerts[0].Message)
	assert.Equal(t, 1500, w.alerts[0].Data.(map[string]int)[TableDonors])
}

func TestIngestReportsFailedBatches(t *testing.T) {
	w := &fakeWriter{recordingInserter: recordingInserter{failAt: map[int]bool{0: true}}}

	reports, err := Ingest(context.Background(), w, donorRecords(1500), &models.KpiSnapshot{}, 1000, utils.NewNopLogger())
	require.NoError(t, err)

	var donors BatchReport
	for _, r := range reports {
		if r.Table == TableDonors {
			donors = r
		}
	}
	assert.Equal(t, 1, donors.Failed)
	assert.Equal(t, 500, donors.RowsWritten)
	assert.Equal(t, "Successfully processed 500 records", w.alerts[0].Message)
}

func TestIngestStopsWhenClearFails(t *testing.T) {
	boom := errors.New("permission denied")
	w := &fakeWriter{clearErr: boom}

	_, err := Ingest(context.Background(), w, donorRecords(3), &models.KpiSnapshot{}, 10, utils.NewNopLogger())
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, w.calls)
	assert.Empty(t, w.snapshots)
}
