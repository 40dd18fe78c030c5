package cli

import (
	"log/slog"
	"os"

	"github.com/ogulcanaydogan/aws-spend-reporter/internal/config"
	"github.com/ogulcanaydogan/aws-spend-reporter/internal/job"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "spendreport",
	Short: "AWS Spend Reporter - linked-account cost reports for Slack",
	Long: `AWS Spend Reporter queries AWS Cost Explorer for month-to-date, yesterday and
last-month spend per linked account, renders a fixed-width table and posts it
to a Slack incoming webhook. It can run once, or as a scheduled service with
run history and Prometheus metrics.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./spendreport.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	return job.NewLogger(cfg.Logging)
}
