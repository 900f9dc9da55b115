// Package ledger records executed matching rounds in the database.
//
// The ledger is append-only. It is never read back into the trade graph.
package ledger

import (
	"context"
	"fmt"

	"github.com/zulandar/swapyard/internal/models"
	"gorm.io/gorm"
)

// DefaultLimit caps ListRuns when no limit is given.
const DefaultLimit = 20

// Ledger stores match runs and their trades.
type Ledger struct {
	db *gorm.DB
}

// New wraps an open, migrated database.
func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// RecordRun inserts run together with its trade records in one transaction.
func (l *Ledger) RecordRun(ctx context.Context, run *models.MatchRun) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("ledger: record run: missing run id")
	}
	for i := range run.Trades {
		run.Trades[i].RunID = run.ID
	}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(run).Error
	})
	if err != nil {
		return fmt.Errorf("ledger: record run %s: %w", run.ID, err)
	}
	return nil
}

// ListRuns returns the newest runs first, each with its trades.
func (l *Ledger) ListRuns(ctx context.Context, limit int) ([]models.MatchRun, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var runs []models.MatchRun
	err := l.db.WithContext(ctx).
		Preload("Trades", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("ledger: list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run by id, or gorm.ErrRecordNotFound wrapped.
func (l *Ledger) GetRun(ctx context.Context, id string) (*models.MatchRun, error) {
	var run models.MatchRun
	err := l.db.WithContext(ctx).Preload("Trades").Where("id = ?", id).First(&run).Error
	if err != nil {
		return nil, fmt.Errorf("ledger: get run %s: %w", id, err)
	}
	return &run, nil
}

// TradesFor returns every recorded hand-over where participantID gave or
// received an item, oldest first.
func (l *Ledger) TradesFor(ctx context.Context, participantID int) ([]models.TradeRecord, error) {
	var trades []models.TradeRecord
	err := l.db.WithContext(ctx).
		Where("giver_id = ? OR receiver_id = ?", participantID, participantID).
		Order("id").
		Find(&trades).Error
	if err != nil {
		return nil, fmt.Errorf("ledger: trades for participant %d: %w", participantID, err)
	}
	return trades, nil
}
