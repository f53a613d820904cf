package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.Import.MaxRows != 10000 {
		t.Errorf("expected import row cap 10000, got %d", cfg.Import.MaxRows)
	}
	if cfg.Matching.AutoApplyScore != 0.7 {
		t.Errorf("expected auto-apply score 0.7, got %v", cfg.Matching.AutoApplyScore)
	}
	if cfg.Matching.DateToleranceDays != 3 {
		t.Errorf("expected 3 days of date tolerance, got %d", cfg.Matching.DateToleranceDays)
	}
	if cfg.Adjustment.MaterialityThresholdMinor != 100000 {
		t.Errorf("expected materiality threshold of 100000 minor units, got %v", cfg.Adjustment.MaterialityThresholdMinor)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("MATCH_MIN_SCORE", "0.6")
	t.Setenv("IMPORT_SKIP_DUPLICATES", "true")
	t.Setenv("SERVER_READ_TIMEOUT", "5s")
	t.Setenv("IMPORT_MAX_ROWS", "not-a-number")

	cfg := LoadConfig()

	if cfg.Matching.MinScore != 0.6 {
		t.Errorf("expected min score 0.6, got %v", cfg.Matching.MinScore)
	}
	if !cfg.Import.SkipDuplicates {
		t.Error("expected duplicates to be skipped")
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("expected 5s read timeout, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Import.MaxRows != 10000 {
		t.Errorf("expected invalid value to fall back to default, got %d", cfg.Import.MaxRows)
	}
}
