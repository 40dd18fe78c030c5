package cli

import (
	"fmt"

	"github.com/ogulcanaydogan/aws-spend-reporter/internal/job"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/alerts"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate the cost report once and post it",
	Long: `Query AWS Cost Explorer, build the report and post it to the configured
webhooks. With --dry-run the report is printed instead of posted.`,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("dry-run", false, "Print the report instead of posting it")
	runCmd.Flags().String("layout", "", "Report layout: split or ranked (default from config)")
}

func runOnce(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if layout, _ := cmd.Flags().GetString("layout"); layout != "" {
		cfg.Report.Layout = layout
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger := newLogger(cfg)

	c, err := job.Build(cmd.Context(), cfg, nil, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	res, err := c.Job.Run(cmd.Context(), job.Options{DryRun: dryRun})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dryRun {
		fmt.Fprintln(out, alerts.ReportText(res.Report))
		if len(res.Report.Callouts) > 0 {
			fmt.Fprintln(out, alerts.CalloutText(res.Report.Callouts))
		}
		return nil
	}

	fmt.Fprintf(out, "Run %s\n", res.Run.ID)
	fmt.Fprintf(out, "  Layout:       %s\n", res.Run.Layout)
	fmt.Fprintf(out, "  Metric:       %s\n", res.Run.Metric)
	fmt.Fprintf(out, "  Accounts:     %d\n", len(res.Run.Rows))
	fmt.Fprintf(out, "  Notified:     %t\n", res.Run.Notified)
	fmt.Fprintf(out, "  Callout sent: %t\n", res.Run.CalloutSent)
	return nil
}
