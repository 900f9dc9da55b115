package models

import "time"

// MatchRun is one ExecuteAll round recorded in the ledger.
type MatchRun struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Trigger     string    `gorm:"size:16;index" json:"trigger"` // api, schedule, cli
	DirectCount int       `json:"direct_count"`
	CycleCount  int       `json:"cycle_count"`
	TradeCount  int       `json:"trade_count"`
	StartedAt   time.Time `gorm:"index" json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`

	Trades []TradeRecord `gorm:"foreignKey:RunID" json:"trades,omitempty"`
}

// TradeRecord is a single executed hand-over within a run.
type TradeRecord struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID      string    `gorm:"size:36;index" json:"run_id"`
	GiverID    int       `gorm:"index" json:"giver_id"`
	ReceiverID int       `gorm:"index" json:"receiver_id"`
	ItemID     int       `json:"item_id"`
	CreatedAt  time.Time `json:"created_at"`
}
