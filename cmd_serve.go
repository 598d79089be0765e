package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"executive-analytics/ai"
	"executive-analytics/api"
	"executive-analytics/export"
	"executive-analytics/storage"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve KPIs, charts, exports and live updates over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: HTTP_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.HTTPAddr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== Executive Analytics API starting ===")
	logger.Info("Config: data=%s | refresh=%v | ws push=%v | ai=%s",
		cfg.DataPath, cfg.RefreshInterval, cfg.WSPushInterval, cfg.AIProvider)

	var opts []api.Option
	if cfg.ArchiveDir != "" {
		archive, err := storage.NewSnapshotArchive(cfg.ArchiveDir)
		if err != nil {
			return err
		}
		opts = append(opts, api.WithArchive(archive))
	}

	exporter := export.New(export.NewChromePrinter(cfg.ChromeBin, logger), logger)
	analyzer := ai.FromConfig(ctx, cfg, logger)

	srv := api.NewServer(cfg, newLoader(), exporter, analyzer, logger, opts...)
	return srv.ListenAndServe(ctx)
}
