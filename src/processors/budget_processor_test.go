package processors

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/dompetku/backend/src/model"
	"github.com/username/dompetku/backend/src/models"
)

func newBudget(category string, amount int64, period model.BudgetPeriod) model.Budget {
	return model.Budget{Category: category, Amount: decimal.NewFromInt(amount), Period: period}
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2024, time.March, 15, 13, 45, 0, 0, time.UTC)

	monthly := PeriodStart(model.BudgetMonthly, now)
	if monthly.Format("2006-01-02") != "2024-03-01" {
		t.Fatalf("monthly period start: got %s", monthly.Format("2006-01-02"))
	}

	yearly := PeriodStart(model.BudgetYearly, now)
	if yearly.Format("2006-01-02") != "2024-01-01" {
		t.Fatalf("yearly period start: got %s", yearly.Format("2006-01-02"))
	}
}

func TestEvaluateBudgetExceeded(t *testing.T) {
	now := time.Date(2024, time.March, 20, 10, 0, 0, 0, time.UTC)
	budget := newBudget("Transportasi", 500000, model.BudgetMonthly)
	transactions := []model.Transaction{
		tx(200000, model.TransactionExpense, "Transportasi", "2024-03-02"),
		tx(220000, model.TransactionExpense, "Transportasi", "2024-03-10"),
		tx(200000, model.TransactionExpense, "Transportasi", "2024-03-18"),
		tx(100000, model.TransactionExpense, "Transportasi", "2024-02-25"), // previous period
		tx(900000, model.TransactionIncome, "Transportasi", "2024-03-05"),  // wrong type
	}

	report := NewBudgetProcessor(NewTransactionAggregator()).Evaluate(budget, transactions, now)

	if !report.Spent.Equal(decimal.NewFromInt(620000)) {
		t.Fatalf("spent: got %s, want 620000", report.Spent)
	}
	if !report.Remaining.IsZero() {
		t.Fatalf("remaining: got %s, want 0", report.Remaining)
	}
	if report.Percentage != 124.0 {
		t.Fatalf("percentage: got %v, want 124.0", report.Percentage)
	}
	if report.Status != models.BudgetExceeded {
		t.Fatalf("status: got %s, want exceeded", report.Status)
	}
}

func TestEvaluateBudgetRemainingNeverNegative(t *testing.T) {
	now := time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC)
	budget := newBudget("Makanan & Minuman", 100000, model.BudgetMonthly)
	transactions := []model.Transaction{
		tx(300000, model.TransactionExpense, "Makanan & Minuman", "2024-06-01"),
	}

	report := NewBudgetProcessor(NewTransactionAggregator()).Evaluate(budget, transactions, now)

	want := budget.Amount.Sub(report.Spent)
	if want.IsNegative() {
		want = decimal.Zero
	}
	if !report.Remaining.Equal(want) {
		t.Fatalf("remaining: got %s, want %s", report.Remaining, want)
	}
	if report.Remaining.IsNegative() {
		t.Fatalf("remaining must never be negative, got %s", report.Remaining)
	}
}

func TestEvaluateBudgetStatusBoundaries(t *testing.T) {
	now := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		spent int64
		want  models.BudgetStatus
	}{
		{"zero spend is safe", 0, models.BudgetSafe},
		{"just under 80", 79999, models.BudgetSafe},
		{"exactly 80.0", 80000, models.BudgetNearLimit},
		{"between 80 and 100", 95000, models.BudgetNearLimit},
		{"exactly 100.0", 100000, models.BudgetExceeded},
		{"over 100", 124000, models.BudgetExceeded},
	}

	processor := NewBudgetProcessor(NewTransactionAggregator())
	budget := newBudget("Tagihan", 100000, model.BudgetMonthly)

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var transactions []model.Transaction
			if tc.spent > 0 {
				transactions = []model.Transaction{
					tx(tc.spent, model.TransactionExpense, "Tagihan", "2024-03-05"),
				}
			}
			report := processor.Evaluate(budget, transactions, now)
			if report.Status != tc.want {
				t.Fatalf("spent=%d: got status %s, want %s (percentage %v)",
					tc.spent, report.Status, tc.want, report.Percentage)
			}
		})
	}
}

func TestEvaluateBudgetZeroAmount(t *testing.T) {
	now := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	budget := model.Budget{Category: "Lainnya", Amount: decimal.Zero, Period: model.BudgetMonthly}

	report := NewBudgetProcessor(NewTransactionAggregator()).Evaluate(budget, nil, now)
	if report.Percentage != 0 {
		t.Fatalf("zero-ceiling budget: got percentage %v, want 0", report.Percentage)
	}
}

func TestEvaluateBudgetYearlyWindow(t *testing.T) {
	now := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	budget := newBudget("Liburan", 1000000, model.BudgetYearly)
	transactions := []model.Transaction{
		tx(100000, model.TransactionExpense, "Liburan", "2024-01-15"),
		tx(200000, model.TransactionExpense, "Liburan", "2023-12-31"), // previous year
	}

	report := NewBudgetProcessor(NewTransactionAggregator()).Evaluate(budget, transactions, now)
	if !report.Spent.Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("yearly spent: got %s, want 100000", report.Spent)
	}
}
