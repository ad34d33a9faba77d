package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"reactorviz/internal"
	"reactorviz/internal/config"
	"reactorviz/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// globalFlags override the matching environment variables
type globalFlags struct {
	dataFile    string
	sheet       string
	presetsFile string
	now         string
	logLevel    string
}

func main() {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "reactorviz",
		Short:         "Charts of European nuclear reactor lifetimes from a spreadsheet",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.dataFile, "data", "", "Spreadsheet to read (.xlsx or .csv); overrides DATA_FILE")
	rootCmd.PersistentFlags().StringVar(&flags.sheet, "sheet", "", "Worksheet name; defaults to the first sheet")
	rootCmd.PersistentFlags().StringVar(&flags.presetsFile, "presets", "", "YAML file overriding the chart presets")
	rootCmd.PersistentFlags().StringVar(&flags.now, "now", "", "Reference date for operational ages (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "ERROR, WARN, INFO or DEBUG")

	rootCmd.AddCommand(
		newBucketsCmd(flags),
		newTimelineCmd(flags),
		newRenderCmd(flags),
		newExportCmd(flags),
		newReportCmd(flags),
		newPublishCmd(flags),
		newServeCmd(flags),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the environment, applies flag overrides and wires the
// container.
func setup(flags *globalFlags) (*container.Container, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flags.dataFile != "" {
		cfg.Data.File = flags.dataFile
	}
	if flags.sheet != "" {
		cfg.Data.Sheet = flags.sheet
	}
	if flags.presetsFile != "" {
		cfg.Data.PresetsFile = flags.presetsFile
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.now != "" {
		now, err := time.Parse("2006-01-02", flags.now)
		if err != nil {
			return nil, fmt.Errorf("invalid --now %q (use YYYY-MM-DD): %w", flags.now, err)
		}
		cfg.Now = now
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))
	return container.New(cfg, logger)
}

// withDatabase attaches DATABASE_URL when it is set
func withDatabase(ctx context.Context, c *container.Container) error {
	if c.Config.Database.URL == "" {
		return nil
	}
	return c.InitWithDatabase(ctx)
}
