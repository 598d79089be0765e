package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"executive-analytics/export"
	"executive-analytics/models"
	"executive-analytics/services"
)

var (
	snapshotFormat string
	snapshotOut    string
	snapshotPretty bool
	snapshotStored bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Run the pipeline once and print the KPI snapshot",
	Long: `Runs the pipeline once over the CSV extracts and writes the snapshot in the
chosen export format. --pretty prints the colored terminal summary instead;
--stored reads the most recent snapshot saved by ingest.`,
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotFormat, "format", "f", "json", "csv, json, yaml, xlsx or pdf")
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "", "Output file (default: stdout)")
	snapshotCmd.Flags().BoolVar(&snapshotPretty, "pretty", false, "Print the terminal summary")
	snapshotCmd.Flags().BoolVar(&snapshotStored, "stored", false, "Read the latest snapshot from the SQL store")
}

// latestSnapshot is implemented by the SQL writers.
type latestSnapshot interface {
	LatestSnapshot(ctx context.Context) (*models.KpiSnapshot, error)
}

func loadStoredSnapshot(ctx context.Context) (*models.KpiSnapshot, error) {
	writer, err := openWriter(ctx, cfg.StorageDriver)
	if err != nil {
		return nil, err
	}
	defer writer.Close()

	store, ok := writer.(latestSnapshot)
	if !ok {
		return nil, fmt.Errorf("%s store cannot read snapshots", cfg.StorageDriver)
	}
	snap, err := store.LatestSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("no snapshot stored yet")
	}
	return snap, nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var snap *models.KpiSnapshot
	if snapshotStored {
		s, err := loadStoredSnapshot(ctx)
		if err != nil {
			return err
		}
		snap = s
	} else {
		snap = runOnce().Snapshot
	}

	var w io.Writer = os.Stdout
	if snapshotOut != "" {
		f, err := os.Create(snapshotOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", snapshotOut, err)
		}
		defer f.Close()
		w = f
	}

	if snapshotPretty {
		services.NewInsightService(logger).Print(w, snap)
		return nil
	}

	format, err := export.ParseFormat(snapshotFormat)
	if err != nil {
		return err
	}
	exporter := export.New(export.NewChromePrinter(cfg.ChromeBin, logger), logger)
	return exporter.KPIs(ctx, w, format, snap)
}
