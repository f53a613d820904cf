package usecases

import (
	"time"

	"github.com/limistah/bank-reconciliation/internal/adjustments"
	"github.com/limistah/bank-reconciliation/internal/config"
	"github.com/limistah/bank-reconciliation/internal/matching"
	"github.com/limistah/bank-reconciliation/internal/statement"
	"github.com/shopspring/decimal"
)

// Options carries the tunables shared by the use cases
type Options struct {
	Policy               matching.Policy
	MaterialityThreshold decimal.Decimal
	MaxRows              int
	SampleRows           int
	PreviewRows          int
	SkipDuplicates       bool
}

// DefaultOptions returns the production defaults
func DefaultOptions() Options {
	return Options{
		Policy:               matching.DefaultPolicy(),
		MaterialityThreshold: adjustments.DefaultMaterialityThreshold,
		MaxRows:              statement.DefaultMaxRows,
		SampleRows:           statement.DefaultSampleSize,
		PreviewRows:          50,
	}
}

// OptionsFromConfig builds Options from the environment configuration
func OptionsFromConfig(cfg *config.Config) Options {
	m := cfg.Matching
	return Options{
		Policy: matching.Policy{
			DateWeight:        m.DateWeight,
			AmountWeight:      m.AmountWeight,
			DescriptionWeight: m.DescriptionWeight,
			AmountTolerance:   decimal.NewFromFloat(m.AmountTolerance),
			DateToleranceDays: m.DateToleranceDays,
			MaxAmountVariance: m.MaxAmountVariance,
			FullSimilarity:    m.FullSimilarity,
			PartialSimilarity: m.PartialSimilarity,
			MinScore:          m.MinScore,
			AutoApplyScore:    m.AutoApplyScore,
			MaxSuggestions:    m.MaxSuggestions,
		},
		MaterialityThreshold: adjustments.FromMinorUnits(cfg.Adjustment.MaterialityThresholdMinor),
		MaxRows:              cfg.Import.MaxRows,
		SampleRows:           cfg.Import.SampleRows,
		PreviewRows:          cfg.Import.PreviewRows,
		SkipDuplicates:       cfg.Import.SkipDuplicates,
	}
}

// DateRange is an inclusive range of calendar days
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// bounds returns the range as optional query limits, widened by pad days
func (r *DateRange) bounds(pad int) (*time.Time, *time.Time) {
	if r == nil {
		return nil, nil
	}
	var from, to *time.Time
	if !r.From.IsZero() {
		f := statement.DateOnly(r.From).AddDate(0, 0, -pad)
		from = &f
	}
	if !r.To.IsZero() {
		t := statement.DateOnly(r.To).AddDate(0, 0, pad)
		to = &t
	}
	return from, to
}
