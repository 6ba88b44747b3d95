package processors

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/dompetku/backend/src/model"
)

func newDebt(debtType model.DebtType, amount, remaining int64, status model.DebtStatus, dueDate string) model.Debt {
	return model.Debt{
		CounterpartyName: "Budi",
		Amount:           decimal.NewFromInt(amount),
		RemainingAmount:  decimal.NewFromInt(remaining),
		Status:           status,
		Type:             debtType,
		DueDate:          dueDate,
	}
}

func TestSummarizeBuckets(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	debts := []model.Debt{
		newDebt(model.DebtOwed, 1000000, 1000000, model.DebtPending, ""),
		newDebt(model.DebtOwed, 500000, 200000, model.DebtPartial, ""),
		newDebt(model.DebtOwed, 300000, 0, model.DebtPaid, ""),
		newDebt(model.DebtReceivable, 800000, 800000, model.DebtPending, ""),
		newDebt(model.DebtReceivable, 400000, 0, model.DebtPaid, ""),
	}

	summary := NewDebtProcessor().Summarize(debts, now)

	// Totals sum the original principal by type.
	if !summary.TotalDebts.Equal(decimal.NewFromInt(1800000)) {
		t.Fatalf("total debts: got %s, want 1800000", summary.TotalDebts)
	}
	if !summary.TotalReceivables.Equal(decimal.NewFromInt(1200000)) {
		t.Fatalf("total receivables: got %s, want 1200000", summary.TotalReceivables)
	}

	// Pending sums remaining_amount where status != paid.
	if !summary.PendingDebts.Equal(decimal.NewFromInt(1200000)) {
		t.Fatalf("pending debts: got %s, want 1200000", summary.PendingDebts)
	}
	if !summary.PendingReceivables.Equal(decimal.NewFromInt(800000)) {
		t.Fatalf("pending receivables: got %s, want 800000", summary.PendingReceivables)
	}

	// Paid sums the principal where status = paid. No debt appears in both buckets.
	if !summary.PaidDebts.Equal(decimal.NewFromInt(300000)) {
		t.Fatalf("paid debts: got %s, want 300000", summary.PaidDebts)
	}
	if !summary.PaidReceivables.Equal(decimal.NewFromInt(400000)) {
		t.Fatalf("paid receivables: got %s, want 400000", summary.PaidReceivables)
	}
}

func TestSummarizeOverdue(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	yesterday := "2024-03-14"
	tomorrow := "2024-03-16"

	cases := []struct {
		name        string
		debt        model.Debt
		wantOverdue int64
	}{
		{"partial past due is overdue", newDebt(model.DebtOwed, 500000, 200000, model.DebtPartial, yesterday), 200000},
		{"paid past due is excluded", newDebt(model.DebtOwed, 500000, 0, model.DebtPaid, yesterday), 0},
		{"due today is not overdue", newDebt(model.DebtOwed, 500000, 500000, model.DebtPending, "2024-03-15"), 0},
		{"future due is not overdue", newDebt(model.DebtOwed, 500000, 500000, model.DebtPending, tomorrow), 0},
		{"no due date is never overdue", newDebt(model.DebtOwed, 500000, 500000, model.DebtPending, ""), 0},
	}

	processor := NewDebtProcessor()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			summary := processor.Summarize([]model.Debt{tc.debt}, now)
			if !summary.OverdueDebts.Equal(decimal.NewFromInt(tc.wantOverdue)) {
				t.Fatalf("overdue: got %s, want %d", summary.OverdueDebts, tc.wantOverdue)
			}
		})
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := NewDebtProcessor().Summarize(nil, time.Now())
	if !summary.TotalDebts.IsZero() || !summary.PendingReceivables.IsZero() || !summary.OverdueDebts.IsZero() {
		t.Fatalf("empty collection should sum to zero: %+v", summary)
	}
}
