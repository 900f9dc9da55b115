package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zulandar/swapyard/internal/metrics"
	"github.com/zulandar/swapyard/internal/models"
	"github.com/zulandar/swapyard/internal/notify"
	"go.uber.org/zap"
)

// Round triggers.
const (
	TriggerAPI      = "api"
	TriggerSchedule = "schedule"
	TriggerCLI      = "cli"
)

// Recorder persists executed rounds. ledger.Ledger implements it.
type Recorder interface {
	RecordRun(ctx context.Context, run *models.MatchRun) error
}

// Round executes every cycle once and reports the outcome to the ledger and
// the notifiers. Ledger and Notifier are optional.
type Round struct {
	Service  *Service
	Ledger   Recorder
	Notifier notify.Notifier
	Logger   *zap.Logger

	now func() time.Time
}

// RoundResult is one executed round.
type RoundResult struct {
	RunID string `json:"run_id"`
	*ExecuteResult
}

// Run executes a round started by trigger. When the ledger write fails the
// trades have already been settled, so the result is returned together with
// the error. Notification failures are only logged.
func (r *Round) Run(ctx context.Context, trigger string) (*RoundResult, error) {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := r.now
	if now == nil {
		now = time.Now
	}

	runID := uuid.NewString()
	log = log.With(zap.String("run", runID), zap.String("trigger", trigger))
	started := now()

	res, err := r.Service.ExecuteAll()
	if err != nil {
		metrics.Rounds.WithLabelValues(trigger, "error").Inc()
		return nil, fmt.Errorf("round %s: %w", runID, err)
	}
	out := &RoundResult{RunID: runID, ExecuteResult: res}

	if r.Ledger != nil {
		run := &models.MatchRun{
			ID:          runID,
			Trigger:     trigger,
			DirectCount: len(res.DirectTrades),
			CycleCount:  len(res.Cycles),
			TradeCount:  len(res.CycleTrades),
			StartedAt:   started,
			FinishedAt:  now(),
		}
		for _, t := range res.CycleTrades {
			run.Trades = append(run.Trades, models.TradeRecord{
				GiverID:    t.GiverID,
				ReceiverID: t.ReceiverID,
				ItemID:     t.ItemID,
			})
		}
		if err := r.Ledger.RecordRun(ctx, run); err != nil {
			metrics.Rounds.WithLabelValues(trigger, "ledger_error").Inc()
			log.Error("record run", zap.Error(err))
			return out, fmt.Errorf("round %s: %w", runID, err)
		}
	}
	metrics.Rounds.WithLabelValues(trigger, "ok").Inc()

	summary := notify.Summary{
		RunID:        runID,
		Trigger:      trigger,
		DirectTrades: res.DirectTrades,
		CycleTrades:  res.CycleTrades,
		Cycles:       len(res.Cycles),
	}
	if r.Notifier != nil && !summary.Empty() {
		if err := r.Notifier.Notify(ctx, summary); err != nil {
			log.Warn("notify round", zap.Error(err))
		}
	}

	log.Info("round finished",
		zap.Int("cycles", len(res.Cycles)),
		zap.Int("trades", len(res.CycleTrades)),
		zap.Duration("took", now().Sub(started)))
	return out, nil
}
