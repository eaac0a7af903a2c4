package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaceStatus classifies spending velocity against the budget's daily target.
type PaceStatus string

const (
	PaceUnder        PaceStatus = "under-pace"
	PaceOn           PaceStatus = "on-pace"
	PaceSlightlyOver PaceStatus = "slightly-over"
	PaceOver         PaceStatus = "over-pace"
	PaceNoBudget     PaceStatus = "no-budget"
	PaceNoSpending   PaceStatus = "no-spending"
	PaceInsufficient PaceStatus = "insufficient-data"
)

// PaceThresholds are the velocity-ratio boundaries between pace statuses.
// Valid thresholds satisfy 0 < Under < Over < Critical.
type PaceThresholds struct {
	Under    float64 // ratio below this is under-pace
	Over     float64 // ratio above this is slightly-over
	Critical float64 // ratio above this is over-pace
}

// DefaultPaceThresholds returns the stock boundaries.
func DefaultPaceThresholds() PaceThresholds {
	return PaceThresholds{Under: 0.85, Over: 1.15, Critical: 1.3}
}

// PaceReport is the velocity projection for one budget period.
type PaceReport struct {
	PeriodStart   time.Time
	PeriodEnd     time.Time
	PeriodDays    int
	DaysElapsed   int
	DaysRemaining int

	Budget      decimal.Decimal
	Spent       decimal.Decimal
	DailyActual decimal.Decimal
	DailyTarget decimal.Decimal

	// Ratio is DailyActual/DailyTarget. Money stays decimal; the ratio is a
	// dimensionless classification input only.
	Ratio          float64
	Status         PaceStatus
	Projected      decimal.Decimal // linear end-of-period spend estimate
	ProjectedDelta decimal.Decimal // Projected - Budget; positive means overshoot
}
