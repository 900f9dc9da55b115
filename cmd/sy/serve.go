package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/swapyard/internal/api"
	"github.com/zulandar/swapyard/internal/matching"
	"github.com/zulandar/swapyard/internal/schedule"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		seedPath   string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the matching API server",
		Long: `Starts the HTTP API. Participants live in memory only; --seed loads an
initial roster. When schedule.match_cron is set, matching rounds also run on
that schedule.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, seedPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "swapyard.yaml", "path to Swapyard config file")
	cmd.Flags().StringVar(&seedPath, "seed", "", "roster file to register at startup")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides server.port)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath, seedPath string, port int) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	svc := newService(cfg, logger)
	if seedPath != "" {
		n, err := seedRoster(svc, seedPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Seeded %d participants from %s\n", n, seedPath)
	}

	l, err := openLedger(cfg)
	if err != nil {
		return err
	}
	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		return err
	}
	round := newRound(svc, l, notifier, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(out, "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	if expr := cfg.Schedule.MatchCron; expr != "" {
		sched, err := schedule.New(expr, func(ctx context.Context) error {
			_, err := round.Run(ctx, matching.TriggerSchedule)
			return err
		}, logger)
		if err != nil {
			return err
		}
		go sched.Run(ctx)
		fmt.Fprintf(out, "Matching rounds scheduled on %q\n", expr)
	}

	opts := api.StartOpts{
		Service: svc,
		Round:   round,
		Logger:  logger,
		Port:    cfg.Server.Port,
		Out:     out,
	}
	if port > 0 {
		opts.Port = port
	}
	if l != nil {
		opts.Ledger = l
	}
	logger.Info("starting api", zap.Int("port", opts.Port), zap.Bool("ledger", l != nil))
	return api.Start(ctx, opts)
}
