package db

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zulandar/swapyard/internal/config"
	"github.com/zulandar/swapyard/internal/models"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		password string
		host     string
		port     int
		database string
		want     string
	}{
		{
			name:     "default local",
			user:     "root",
			host:     "127.0.0.1",
			port:     3306,
			database: "swapyard",
			want:     "root@tcp(127.0.0.1:3306)/swapyard?parseTime=true",
		},
		{
			name:     "with password",
			user:     "swap",
			password: "s3cret",
			host:     "10.0.0.5",
			port:     3307,
			database: "ledger",
			want:     "swap:s3cret@tcp(10.0.0.5:3307)/ledger?parseTime=true",
		},
		{
			name: "admin without database",
			user: "root",
			host: "db.vpc.internal",
			port: 3306,
			want: "root@tcp(db.vpc.internal:3306)/?parseTime=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DSN(tt.user, tt.password, tt.host, tt.port, tt.database)
			if got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAllModels_Count(t *testing.T) {
	if n := len(AllModels()); n != 2 {
		t.Errorf("AllModels() returned %d models, want 2", n)
	}
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(config.DatabaseConfig{Driver: "postgres"})
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	if !strings.Contains(err.Error(), `db: unsupported driver "postgres"`) {
		t.Errorf("error = %q", err.Error())
	}
}

func TestConnect_MysqlError(t *testing.T) {
	// Port 1 is unlikely to have a MySQL server; expect connection error.
	_, err := Connect(config.DatabaseConfig{Driver: "mysql", User: "root", Host: "127.0.0.1", Port: 1, Name: "nonexistent"})
	if err == nil {
		t.Fatal("expected error connecting to invalid port")
	}
	if !strings.Contains(err.Error(), "db: connect to mysql 127.0.0.1:1/nonexistent") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "db: connect to mysql")
	}
}

func TestConnectAdmin_Error(t *testing.T) {
	_, err := ConnectAdmin(config.DatabaseConfig{User: "root", Host: "127.0.0.1", Port: 1})
	if err == nil {
		t.Fatal("expected error connecting to invalid port")
	}
	if !strings.Contains(err.Error(), "db: admin connect to") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "db: admin connect to")
	}
}

func TestInit_Sqlite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	gdb, err := Init(config.DatabaseConfig{Driver: "sqlite", Path: path})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	for _, m := range AllModels() {
		if !gdb.Migrator().HasTable(m) {
			t.Errorf("table for %T missing after Init", m)
		}
	}

	run := models.MatchRun{
		ID:        "run-1",
		Trigger:   "cli",
		StartedAt: time.Now(),
		Trades:    []models.TradeRecord{{GiverID: 1, ReceiverID: 2, ItemID: 10}},
	}
	if err := gdb.Create(&run).Error; err != nil {
		t.Fatalf("create run: %v", err)
	}
	var count int64
	gdb.Model(&models.TradeRecord{}).Where("run_id = ?", "run-1").Count(&count)
	if count != 1 {
		t.Errorf("trade records = %d, want 1", count)
	}
}

func TestClose(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Errorf("Close(nil) = %v, want nil", err)
	}
	gdb, err := Connect(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := Close(gdb); err != nil {
		t.Fatalf("Close: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("DB: %v", err)
	}
	if err := sqlDB.Ping(); err == nil {
		t.Error("Ping after Close succeeded, want closed pool")
	}
}

func TestDropTables(t *testing.T) {
	gdb, err := Connect(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := AutoMigrate(gdb); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	if err := DropTables(gdb); err != nil {
		t.Fatalf("DropTables: %v", err)
	}
	for _, m := range AllModels() {
		if gdb.Migrator().HasTable(m) {
			t.Errorf("table for %T still present after DropTables", m)
		}
	}
	// Migrating again restores a clean schema.
	if err := AutoMigrate(gdb); err != nil {
		t.Fatalf("AutoMigrate after drop: %v", err)
	}
}
