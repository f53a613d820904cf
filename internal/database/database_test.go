package database

import (
	"testing"

	"github.com/limistah/bank-reconciliation/internal/config"
	"github.com/limistah/bank-reconciliation/internal/models"
)

func TestInitWithConfig_SQLite(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite"},
		App:      config.AppConfig{Environment: "test"},
	}

	db, err := InitWithConfig(cfg)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	for _, m := range Models() {
		if !db.Migrator().HasTable(m) {
			t.Errorf("Expected table for %T to exist", m)
		}
	}

	if err := db.Create(&models.ChartAccount{TenantID: 1, Code: "1110", Name: "Bank"}).Error; err != nil {
		t.Errorf("Expected insert to succeed, got: %v", err)
	}
}

func TestInitWithConfig_UnsupportedDriver(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: "oracle"}}
	if _, err := InitWithConfig(cfg); err == nil {
		t.Error("Expected error for unsupported driver")
	}
}
