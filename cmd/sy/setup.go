package main

import (
	"fmt"

	"github.com/zulandar/swapyard/internal/config"
	"github.com/zulandar/swapyard/internal/db"
	"github.com/zulandar/swapyard/internal/ledger"
	"github.com/zulandar/swapyard/internal/logging"
	"github.com/zulandar/swapyard/internal/matching"
	"github.com/zulandar/swapyard/internal/notify"
	"go.uber.org/zap"
)

// loadConfig reads configPath, or returns the defaults when it is empty.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Format)
}

func newService(cfg *config.Config, logger *zap.Logger) *matching.Service {
	return matching.New(matching.Options{
		RadiusMiles:    cfg.Matching.RadiusMiles,
		Tolerance:      cfg.Matching.Tolerance,
		MaxCycleLength: cfg.Matching.MaxCycleLength,
		AutoValue:      cfg.Matching.AutoValue,
		Logger:         logger,
	})
}

// openLedger connects to and migrates the configured ledger database. It
// returns nil when no database is configured.
func openLedger(cfg *config.Config) (*ledger.Ledger, error) {
	if !cfg.Database.Enabled() {
		return nil, nil
	}
	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		db.Close(gormDB)
		return nil, err
	}
	return ledger.New(gormDB), nil
}

// newNotifier builds a notifier for every configured chat platform, or nil
// when none is configured.
func newNotifier(cfg *config.Config, logger *zap.Logger) (notify.Notifier, error) {
	var multi notify.Multi
	if s := cfg.Notify.Slack; s.Enabled() {
		n, err := notify.NewSlack(notify.SlackOpts{BotToken: s.BotToken, ChannelID: s.ChannelID})
		if err != nil {
			return nil, err
		}
		multi = append(multi, n)
	}
	if d := cfg.Notify.Discord; d.Enabled() {
		n, err := notify.NewDiscord(notify.DiscordOpts{BotToken: d.BotToken, ChannelID: d.ChannelID, Logger: logger})
		if err != nil {
			return nil, err
		}
		multi = append(multi, n)
	}
	if len(multi) == 0 {
		return nil, nil
	}
	return multi, nil
}

// newRound wires the service to the optional ledger and notifiers. Nil
// collaborators are left as untyped nil interfaces.
func newRound(svc *matching.Service, l *ledger.Ledger, n notify.Notifier, logger *zap.Logger) *matching.Round {
	r := &matching.Round{Service: svc, Notifier: n, Logger: logger}
	if l != nil {
		r.Ledger = l
	}
	return r
}
