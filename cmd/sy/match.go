package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/swapyard/internal/matching"
	"github.com/zulandar/swapyard/internal/models"
	"github.com/zulandar/swapyard/internal/roster"
)

func newMatchCmd() *cobra.Command {
	var (
		rosterPath string
		configPath string
		execute    bool
		maxLength  int
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match a roster file offline",
		Long: `Loads participants from a roster file, rebuilds the trade graph and prints
direct swaps and trade cycles. With --execute every cycle is settled and the
round is recorded in the ledger when a database is configured.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, rosterPath, configPath, execute, maxLength)
		},
	}

	cmd.Flags().StringVarP(&rosterPath, "file", "f", "", "roster file (required)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to Swapyard config file (defaults when empty)")
	cmd.Flags().BoolVar(&execute, "execute", false, "settle every cycle found")
	cmd.Flags().IntVar(&maxLength, "max-length", 0, "longest cycle to search (overrides matching.max_cycle_length)")
	cmd.MarkFlagRequired("file")
	return cmd
}

// seedRoster registers every participant of the roster at path.
func seedRoster(svc *matching.Service, path string) (int, error) {
	ps, err := roster.Load(path)
	if err != nil {
		return 0, err
	}
	for _, p := range ps {
		if err := svc.RegisterParticipant(p); err != nil {
			return 0, fmt.Errorf("seed %s: %w", path, err)
		}
	}
	return len(ps), nil
}

func runMatch(cmd *cobra.Command, rosterPath, configPath string, execute bool, maxLength int) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if maxLength != 0 {
		if maxLength < 2 {
			return fmt.Errorf("--max-length must be at least 2")
		}
		cfg.Matching.MaxCycleLength = maxLength
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	svc := newService(cfg, logger)
	n, err := seedRoster(svc, rosterPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Loaded %d participants from %s\n", n, rosterPath)

	if !execute {
		r := svc.Matches(0)
		printDirect(out, r.DirectTrades)
		printCycles(out, r.Cycles, cfg.Matching.MaxCycleLength)
		return nil
	}

	l, err := openLedger(cfg)
	if err != nil {
		return err
	}
	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		return err
	}
	res, err := newRound(svc, l, notifier, logger).Run(context.Background(), matching.TriggerCLI)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Run %s\n", res.RunID)
	printDirect(out, res.DirectTrades)
	printCycles(out, res.Cycles, cfg.Matching.MaxCycleLength)
	fmt.Fprintf(out, "\nHand-overs (%d):\n", len(res.CycleTrades))
	for _, t := range res.CycleTrades {
		fmt.Fprintf(out, "  participant %d gives item %d to participant %d\n", t.GiverID, t.ItemID, t.ReceiverID)
	}
	return nil
}

func printDirect(out io.Writer, trades []models.DirectTrade) {
	fmt.Fprintf(out, "\nDirect swaps (%d):\n", len(trades))
	if len(trades) == 0 {
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  USER A\tITEM A\tUSER B\tITEM B")
	for _, d := range trades {
		fmt.Fprintf(w, "  %d\t%d\t%d\t%d\n", d.UserA, d.ItemA, d.UserB, d.ItemB)
	}
	w.Flush()
}

func printCycles(out io.Writer, cycles []models.Cycle, maxLength int) {
	fmt.Fprintf(out, "\nCycles up to %d participants (%d):\n", maxLength, len(cycles))
	for _, c := range cycles {
		fmt.Fprintf(out, "  %s\n", formatCycle(c))
	}
}

// formatCycle renders a cycle closed on its first participant, e.g. "1 -> 2 -> 1".
func formatCycle(c models.Cycle) string {
	if len(c) == 0 {
		return ""
	}
	parts := make([]string, 0, len(c)+1)
	for _, id := range c {
		parts = append(parts, fmt.Sprint(id))
	}
	parts = append(parts, fmt.Sprint(c[0]))
	return strings.Join(parts, " -> ")
}
