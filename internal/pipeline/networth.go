package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"cashburn/internal/model"
)

// MaxNetWorthMonths bounds the reconstructed series length.
const MaxNetWorthMonths = 12

// ReconstructNetWorth rebuilds month-end net worth for the last n months,
// oldest first. It walks backward from each account's live balance,
// subtracting that month's net transaction sum to reach the previous
// month-end. The newest point is the live position for the current month.
//
// Tracking-only accounts contribute nothing. Assets sum the positive
// balances, debt sums the absolute negative balances, so net worth equals
// assets minus debt at every point. The series is capped at
// MaxNetWorthMonths and never extends past the month before the earliest
// covered total.
func ReconstructNetWorth(accounts []model.Account, totals []model.MonthlyAccountTotal, n int, now time.Time) []model.NetWorthPoint {
	if n <= 0 {
		return nil
	}
	if n > MaxNetWorthMonths {
		n = MaxNetWorthMonths
	}

	// Per-account month sums, keyed by the month label. Tracking-only
	// accounts are dropped here so the walk below never sees them.
	tracked := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		if !a.TrackingOnly {
			tracked[a.Name] = true
		}
	}

	sums := make(map[string]map[string]decimal.Decimal)
	var earliest time.Time
	for _, mt := range totals {
		if !tracked[mt.Account] {
			continue
		}
		byMonth, ok := sums[mt.Account]
		if !ok {
			byMonth = make(map[string]decimal.Decimal)
			sums[mt.Account] = byMonth
		}
		key := mt.Month.Format("2006-01")
		byMonth[key] = byMonth[key].Add(mt.Net)
		if earliest.IsZero() || mt.Month.Before(earliest) {
			earliest = mt.Month
		}
	}

	current := model.MonthOf(now)

	// Data availability: the walk can reach the month-end before the
	// earliest covered month, nothing older.
	limit := current.AddDate(0, -(n - 1), 0)
	if !earliest.IsZero() {
		if floor := earliest.AddDate(0, -1, 0); floor.After(limit) {
			limit = floor
		}
	} else {
		limit = current
	}

	months := 0
	for m := limit; !m.After(current); m = m.AddDate(0, 1, 0) {
		months++
	}

	points := make([]model.NetWorthPoint, months)
	for i := range points {
		points[i] = model.NetWorthPoint{
			Month:    limit.AddDate(0, i, 0),
			Assets:   decimal.Zero,
			Debt:     decimal.Zero,
			NetWorth: decimal.Zero,
		}
	}

	for _, a := range accounts {
		if a.TrackingOnly {
			continue
		}
		balance := a.Balance
		for i := months - 1; i >= 0; i-- {
			pt := &points[i]
			if balance.IsNegative() {
				pt.Debt = pt.Debt.Add(balance.Neg())
			} else {
				pt.Assets = pt.Assets.Add(balance)
			}
			if i > 0 {
				key := points[i].Month.Format("2006-01")
				if byMonth, ok := sums[a.Name]; ok {
					balance = balance.Sub(byMonth[key])
				}
			}
		}
	}

	for i := range points {
		points[i].NetWorth = points[i].Assets.Sub(points[i].Debt)
	}

	return points
}

// NetWorthDeltas returns the month-over-month change for each point after
// the first.
func NetWorthDeltas(points []model.NetWorthPoint) []decimal.Decimal {
	if len(points) < 2 {
		return nil
	}
	deltas := make([]decimal.Decimal, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		deltas = append(deltas, points[i].NetWorth.Sub(points[i-1].NetWorth))
	}
	return deltas
}

// LiveNetWorth sums current balances into an assets/debt/net snapshot
// without any historical walk. Tracking-only accounts are excluded.
func LiveNetWorth(accounts []model.Account) model.NetWorthPoint {
	pt := model.NetWorthPoint{
		Assets: decimal.Zero,
		Debt:   decimal.Zero,
	}
	for _, a := range accounts {
		if a.TrackingOnly {
			continue
		}
		if a.Balance.IsNegative() {
			pt.Debt = pt.Debt.Add(a.Balance.Neg())
		} else {
			pt.Assets = pt.Assets.Add(a.Balance)
		}
	}
	pt.NetWorth = pt.Assets.Sub(pt.Debt)
	return pt
}
