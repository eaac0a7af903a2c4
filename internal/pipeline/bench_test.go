package pipeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"cashburn/internal/model"
)

// benchLedger builds a year of synthetic transactions across payees and
// categories, roughly the shape of a heavily used personal ledger.
func benchLedger(n int) []model.Transaction {
	categories := []string{"Groceries", "Rent", "Transport", "Fun", "Health", ""}
	payees := []string{"Whole Foods", "Shell", "Landlord Inc", "Cinema City", "Pharmacy", "Corner Shop"}

	txns := make([]model.Transaction, 0, n)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		amount := decimal.NewFromInt(int64(-5 - i%120))
		if i%20 == 0 {
			amount = decimal.NewFromInt(2500) // payday
		}
		txns = append(txns, model.Transaction{
			ID:       fmt.Sprintf("bench-%d", i),
			Date:     start.AddDate(0, 0, i%365),
			Payee:    payees[i%len(payees)],
			Amount:   amount,
			Kind:     model.KindStandard,
			Category: categories[i%len(categories)],
		})
	}
	return txns
}

func BenchmarkAggregatePeriod(b *testing.B) {
	txns := benchLedger(10_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = AggregatePeriod(txns, time.Time{}, time.Time{})
	}
}

func BenchmarkAggregateCategories(b *testing.B) {
	txns := benchLedger(10_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = AggregateCategories(txns, time.Time{}, time.Time{})
	}
}

func BenchmarkAggregatePayees(b *testing.B) {
	txns := benchLedger(10_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = AggregatePayees(txns, time.Time{}, time.Time{})
	}
}

func BenchmarkReconstructNetWorth(b *testing.B) {
	accounts := []model.Account{
		{Name: "Checking", Type: model.AccountAsset, Balance: decimal.NewFromInt(4200)},
		{Name: "Savings", Type: model.AccountAsset, Balance: decimal.NewFromInt(12000)},
		{Name: "Card", Type: model.AccountDebt, Balance: decimal.NewFromInt(-900)},
	}
	var totals []model.MonthlyAccountTotal
	for m := 0; m < 12; m++ {
		month := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, m, 0)
		for _, a := range accounts {
			totals = append(totals, model.MonthlyAccountTotal{
				Account: a.Name,
				Month:   month,
				Net:     decimal.NewFromInt(int64(50 + m)),
			})
		}
	}
	now := time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ReconstructNetWorth(accounts, totals, 12, now)
	}
}

func BenchmarkBuildInsights(b *testing.B) {
	txns := benchLedger(10_000)
	summary := AggregatePeriod(txns, time.Time{}, time.Time{})
	in := InsightInput{
		Summary:      summary,
		Categories:   AggregateCategories(txns, time.Time{}, time.Time{}),
		Budgets:      []model.Category{{Name: "Groceries", Budget: decimal.NewFromInt(300)}},
		Transactions: txns,
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = BuildInsights(in)
	}
}
