package db

import (
	"fmt"

	"github.com/zulandar/swapyard/internal/config"
	"github.com/zulandar/swapyard/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the ledger GORM models in dependency order.
func AllModels() []interface{} {
	return []interface{}{
		&models.MatchRun{},
		&models.TradeRecord{},
	}
}

// AutoMigrate creates or updates the ledger tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// DropTables removes the ledger tables, children first.
func DropTables(db *gorm.DB) error {
	all := AllModels()
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("db: drop table: %w", err)
		}
	}
	return nil
}

// Init prepares the ledger database: for MySQL it first creates the database
// itself, then migrates the tables.
func Init(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.Driver == "mysql" {
		admin, err := ConnectAdmin(cfg)
		if err != nil {
			return nil, err
		}
		err = CreateDatabase(admin, cfg.Name)
		Close(admin)
		if err != nil {
			return nil, err
		}
	}
	gdb, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(gdb); err != nil {
		Close(gdb)
		return nil, err
	}
	return gdb, nil
}
