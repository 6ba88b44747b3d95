package processors

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/dompetku/backend/src/model"
)

func TestMonthlyRollup(t *testing.T) {
	now := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	transactions := []model.Transaction{
		tx(2000000, model.TransactionIncome, "Gaji", "2024-01-25"),
		tx(500000, model.TransactionExpense, "Makanan & Minuman", "2024-01-10"),
		tx(2000000, model.TransactionIncome, "Gaji", "2024-02-25"),
		tx(1000000, model.TransactionExpense, "Makanan & Minuman", "2024-02-12"),
		tx(250000, model.TransactionExpense, "Transportasi", "2024-03-05"),
		tx(999999, model.TransactionExpense, "Lama", "2023-11-11"), // outside the window
	}

	points := NewReportProcessor().Monthly(transactions, 3, now)

	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if points[0].Month != "2024-01" || points[1].Month != "2024-02" || points[2].Month != "2024-03" {
		t.Fatalf("months out of order: %s %s %s", points[0].Month, points[1].Month, points[2].Month)
	}

	if !points[0].Net.Equal(decimal.NewFromInt(1500000)) {
		t.Fatalf("january net: got %s, want 1500000", points[0].Net)
	}
	if !points[1].Expense.Equal(decimal.NewFromInt(1000000)) {
		t.Fatalf("february expense: got %s, want 1000000", points[1].Expense)
	}
	if !points[2].Net.Equal(decimal.NewFromInt(-250000)) {
		t.Fatalf("march net: got %s, want -250000", points[2].Net)
	}

	// February spend doubled January's.
	if points[1].ExpenseGrowth == nil || *points[1].ExpenseGrowth != 100.0 {
		t.Fatalf("february growth: got %v, want 100.0", points[1].ExpenseGrowth)
	}
	// First point has no previous month to compare against.
	if points[0].ExpenseGrowth != nil {
		t.Fatalf("first month must have no growth, got %v", *points[0].ExpenseGrowth)
	}
}

func TestMonthlyGrowthAbsentWhenPreviousZero(t *testing.T) {
	now := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	transactions := []model.Transaction{
		tx(100000, model.TransactionExpense, "Transportasi", "2024-03-05"),
	}

	points := NewReportProcessor().Monthly(transactions, 2, now)
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	// February expense is zero, so March growth is undefined, not infinity.
	if points[1].ExpenseGrowth != nil {
		t.Fatalf("growth over a zero month must be absent, got %v", *points[1].ExpenseGrowth)
	}
}

func TestMonthlyEmptyWindow(t *testing.T) {
	points := NewReportProcessor().Monthly(nil, 0, time.Now())
	if len(points) != 0 {
		t.Fatalf("monthCount=0 should yield no points, got %d", len(points))
	}
}

func TestByCategory(t *testing.T) {
	transactions := []model.Transaction{
		tx(150000, model.TransactionExpense, "Makanan & Minuman", "2024-03-01"),
		tx(100000, model.TransactionExpense, "Makanan & Minuman", "2024-03-02"),
		tx(2000000, model.TransactionIncome, "Gaji", "2024-03-01"),
		tx(50000, model.TransactionExpense, "Transportasi", "2024-03-03"),
	}

	breakdown := NewReportProcessor().ByCategory(transactions)

	if len(breakdown) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(breakdown))
	}
	if breakdown[0].Category != "Gaji" {
		t.Fatalf("expected Gaji first (largest total), got %s", breakdown[0].Category)
	}
	if breakdown[1].Category != "Makanan & Minuman" {
		t.Fatalf("expected Makanan & Minuman second, got %s", breakdown[1].Category)
	}
	if !breakdown[1].Expense.Equal(decimal.NewFromInt(250000)) {
		t.Fatalf("food expense: got %s, want 250000", breakdown[1].Expense)
	}
	if !breakdown[1].Total.Equal(decimal.NewFromInt(250000)) {
		t.Fatalf("food total: got %s, want 250000", breakdown[1].Total)
	}
}
