package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/format"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/storage"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show archived report runs",
	Long:  `List recent runs from the run archive, or show the account rows of one run.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", storage.DefaultListLimit, "Number of runs to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Storage.Path == "" {
		return errors.New("run archive disabled: set storage.path")
	}

	store, err := storage.NewSQLite(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	if len(args) == 1 {
		run, err := store.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Run %s (%s, %s) at %s\n\n", run.ID, run.Layout, run.Metric,
			run.StartedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(w, "  ACCOUNT\tSECTION\tMTD\tYESTERDAY\tLAST MONTH\tLISTED\n")
		for _, r := range run.Rows {
			fmt.Fprintf(w, "  %s\t%s\t$%s\t$%s\t$%s\t%t\n",
				r.Account.Label(), r.Section,
				format.Money(r.MonthToDate), format.Money(r.Yesterday), format.Money(r.LastMonth),
				r.Listed,
			)
		}
		return w.Flush()
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs archived.")
		return nil
	}

	fmt.Fprintf(w, "  ID\tSTARTED\tLAYOUT\tMETRIC\tTOTAL MTD\tNOTIFIED\tCALLOUT\n")
	for _, r := range runs {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t$%s\t%t\t%t\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.Layout, r.Metric,
			format.Money(r.TotalMTD), r.Notified, r.CalloutSent,
		)
	}
	return w.Flush()
}
