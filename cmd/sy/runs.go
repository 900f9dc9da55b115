package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/swapyard/internal/db"
	"github.com/zulandar/swapyard/internal/ledger"
)

func newRunsCmd() *cobra.Command {
	var (
		configPath string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded matching rounds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd, configPath, limit)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "swapyard.yaml", "path to Swapyard config file")
	cmd.Flags().IntVarP(&limit, "limit", "n", ledger.DefaultLimit, "maximum number of runs to show")
	return cmd
}

func runRuns(cmd *cobra.Command, configPath string, limit int) error {
	out := cmd.OutOrStdout()

	cfg, err := ledgerConfig(configPath)
	if err != nil {
		return err
	}
	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close(gormDB)
	runs, err := ledger.New(gormDB).ListRuns(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tTRIGGER\tSTARTED\tCYCLES\tTRADES\tDIRECT")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
			r.ID, r.Trigger, r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.CycleCount, r.TradeCount, r.DirectCount)
	}
	return w.Flush()
}
