// Package matching scores bank movements against ledger movements and decides
// which pairs can be reconciled automatically.
package matching

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Policy holds every tunable of the matching algorithm
type Policy struct {
	DateWeight        float64
	AmountWeight      float64
	DescriptionWeight float64

	// AmountTolerance is the absolute difference still treated as equal amounts
	AmountTolerance decimal.Decimal
	// DateToleranceDays is the window over which the date score decays to zero
	DateToleranceDays int
	// MaxAmountVariance is the relative difference at which the amount score reaches zero
	MaxAmountVariance float64

	FullSimilarity    float64
	PartialSimilarity float64

	MinScore       float64
	AutoApplyScore float64
	MaxSuggestions int
}

// DefaultPolicy returns the production weights and thresholds
func DefaultPolicy() Policy {
	return Policy{
		DateWeight:        0.4,
		AmountWeight:      0.4,
		DescriptionWeight: 0.2,
		AmountTolerance:   decimal.NewFromFloat(0.01),
		DateToleranceDays: 3,
		MaxAmountVariance: 0.05,
		FullSimilarity:    0.8,
		PartialSimilarity: 0.5,
		MinScore:          0.5,
		AutoApplyScore:    0.7,
		MaxSuggestions:    3,
	}
}

// Validate checks that the policy is internally consistent
func (p Policy) Validate() error {
	var errs []error
	for name, w := range map[string]float64{
		"date weight":        p.DateWeight,
		"amount weight":      p.AmountWeight,
		"description weight": p.DescriptionWeight,
	} {
		if w < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}
	if sum := p.DateWeight + p.AmountWeight + p.DescriptionWeight; math.Abs(sum-1) > 1e-9 {
		errs = append(errs, fmt.Errorf("weights must add up to 1, got %.4f", sum))
	}
	if p.AmountTolerance.IsNegative() {
		errs = append(errs, errors.New("amount tolerance must not be negative"))
	}
	if p.DateToleranceDays < 0 {
		errs = append(errs, errors.New("date tolerance must not be negative"))
	}
	if p.MaxAmountVariance <= 0 {
		errs = append(errs, errors.New("max amount variance must be positive"))
	}
	if p.PartialSimilarity > p.FullSimilarity {
		errs = append(errs, errors.New("partial similarity must not exceed full similarity"))
	}
	if p.MinScore < 0 || p.MinScore > 1 || p.AutoApplyScore < 0 || p.AutoApplyScore > 1 {
		errs = append(errs, errors.New("score thresholds must be between 0 and 1"))
	}
	if p.AutoApplyScore < p.MinScore {
		errs = append(errs, errors.New("auto-apply score must not be below the minimum score"))
	}
	if p.MaxSuggestions < 1 {
		errs = append(errs, errors.New("max suggestions must be at least 1"))
	}
	return errors.Join(errs...)
}
