//go:build integration

package db

import (
	"os"
	"strconv"
	"testing"

	"github.com/zulandar/swapyard/internal/config"
)

// mysqlConfig reads a throwaway MySQL server from SWAPYARD_TEST_MYSQL_HOST
// and SWAPYARD_TEST_MYSQL_PORT, skipping the test when unset.
func mysqlConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()
	host := os.Getenv("SWAPYARD_TEST_MYSQL_HOST")
	if host == "" {
		t.Skip("SWAPYARD_TEST_MYSQL_HOST not set")
	}
	port, err := strconv.Atoi(os.Getenv("SWAPYARD_TEST_MYSQL_PORT"))
	if err != nil {
		port = 3306
	}
	return config.DatabaseConfig{
		Driver:   "mysql",
		Host:     host,
		Port:     port,
		User:     "root",
		Password: os.Getenv("SWAPYARD_TEST_MYSQL_PASSWORD"),
		Name:     "swapyard_test",
	}
}

func TestIntegration_InitMysql(t *testing.T) {
	cfg := mysqlConfig(t)
	gdb, err := Init(cfg)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { DropTables(gdb) })

	for _, m := range AllModels() {
		if !gdb.Migrator().HasTable(m) {
			t.Errorf("table for %T missing", m)
		}
	}
	// Init is idempotent.
	if _, err := Init(cfg); err != nil {
		t.Fatalf("second Init: %v", err)
	}
}
