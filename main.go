package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"executive-analytics/config"
	"executive-analytics/models"
	"executive-analytics/services"
	"executive-analytics/storage"
	"executive-analytics/utils"
)

var (
	cfg      *config.Config
	logger   *utils.Logger
	dataPath string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "executive-analytics",
	Short: "Executive KPI pipeline over volunteer, donor and blood drive extracts",
	Long: `Reads the four operational CSV extracts (applicants, volunteers, blood
drives, major donors), normalizes them, derives per-record scores and
aggregates executive KPIs, chart datasets and rule-based insights.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		if dataPath != "" {
			cfg.DataPath = dataPath
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		logger = utils.NewLoggerWithLevel(cfg.LogLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "Directory holding the CSV extracts (default: DATA_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default: LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLoader() *storage.Loader {
	return storage.NewLoader(cfg.DataPath, map[models.Dataset]string{
		models.DatasetApplicants:  cfg.ApplicantsFile,
		models.DatasetVolunteers:  cfg.VolunteersFile,
		models.DatasetBloodDrives: cfg.BloodDrivesFile,
		models.DatasetDonors:      cfg.DonorsFile,
	}, logger)
}

// runOnce loads every dataset and runs the pipeline a single time.
func runOnce() *services.Result {
	rows, errs := newLoader().LoadAll()
	rc := &services.RunContext{Now: time.Now(), Datasets: rows, LoadErrors: errs}
	return services.NewPipeline(logger).Run(rc)
}
