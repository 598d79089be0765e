package storage

import (
	"context"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"executive-analytics/models"
	"executive-analytics/utils"
)

// AlertIngestionComplete is recorded after every ingest.
const AlertIngestionComplete = "data_ingestion_complete"

var printer = message.NewPrinter(language.English)

// Ingest replaces the stored records with records, batch by batch, then
// records snap and an ingestion alert. Failed batches are reported, not
// returned; err is set only when the store itself cannot be prepared or the
// snapshot cannot be saved.
func Ingest(ctx context.Context, w RecordWriter, records models.RecordSet, snap *models.KpiSnapshot, batchSize int, logger *utils.Logger) ([]BatchReport, error) {
	tables := Tables(records)

	for _, t := range tables {
		if err := w.Clear(ctx, t.Name); err != nil {
			return nil, fmt.Errorf("ingest: clear %s: %w", t.Name, err)
		}
	}

	reports := make([]BatchReport, 0, len(tables))
	written := make(map[string]int, len(tables))
	total := 0
	for _, t := range tables {
		report := WriteBatches(ctx, w, t, batchSize)
		reports = append(reports, report)
		written[t.Name] = report.RowsWritten
		total += report.RowsWritten
		if report.OK() {
			logger.Info("[ingest] %s", report)
		} else {
			logger.Error("[ingest] %s", report)
		}
	}

	if err := w.SaveSnapshot(ctx, snap); err != nil {
		return reports, fmt.Errorf("ingest: save snapshot: %w", err)
	}

	alert := Alert{
		Type:    AlertIngestionComplete,
		Message: printer.Sprintf("Successfully processed %d records", total),
		Data:    written,
	}
	if err := w.SaveAlert(ctx, alert); err != nil {
		logger.Warn("[ingest] save alert: %v", err)
	}
	return reports, nil
}
