package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"executive-analytics/storage"
	"executive-analytics/utils"
)

var (
	ingestDriver    string
	ingestBatchSize int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Write normalized records and the KPI snapshot to a SQL store",
	Long: `Runs the pipeline once and replaces the record tables of the configured
SQL store (postgres or mysql) in batches. A failed batch is reported and
skipped; the remaining batches are still written.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDriver, "driver", "", "postgres or mysql (default: STORAGE_DRIVER)")
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", 0, "Rows per insert statement (default: BATCH_SIZE)")
}

func openWriter(ctx context.Context, driver string) (storage.RecordWriter, error) {
	retry := utils.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: time.Second, Logger: logger}
	switch driver {
	case "postgres", "postgresql":
		return storage.NewPostgresWriter(ctx, cfg.PostgresDSN(), retry, logger)
	case "mysql":
		return storage.NewMySQLWriter(ctx, cfg.MySQLDSN(), retry, logger)
	}
	return nil, fmt.Errorf("storage driver %q not supported (use postgres or mysql)", driver)
}

func runIngest(cmd *cobra.Command, args []string) error {
	driver := cfg.StorageDriver
	if ingestDriver != "" {
		driver = ingestDriver
	}
	batchSize := cfg.BatchSize
	if ingestBatchSize > 0 {
		batchSize = ingestBatchSize
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("=== Executive Analytics ingest starting ===")
	logger.Info("Config: data=%s | driver=%s | batch=%d", cfg.DataPath, driver, batchSize)

	writer, err := openWriter(ctx, driver)
	if err != nil {
		logger.Error("Failed to open %s store: %v", driver, err)
		return err
	}
	defer writer.Close()

	result := runOnce()
	for _, note := range result.Snapshot.Notes {
		logger.Warn("%s", note)
	}

	reports, err := storage.Ingest(ctx, writer, result.Records, result.Snapshot, batchSize, logger)
	for _, r := range reports {
		fmt.Printf("  %s\n", r)
		for _, e := range r.Errors {
			fmt.Printf("    ! %v\n", e)
		}
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range reports {
		failed += r.Failed
	}
	if failed > 0 {
		return fmt.Errorf("%d batch(es) failed", failed)
	}
	fmt.Printf("\n  Done. Run %s stored in %s\n\n", result.Snapshot.RunID, driver)
	return nil
}
