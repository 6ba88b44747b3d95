package services

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/dompetku/backend/src/model"
	"github.com/username/dompetku/backend/src/processors"
	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		t.Fatalf("enabling foreign keys: %v", err)
	}

	schema := `
	CREATE TABLE debts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		counterparty_name TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		remaining_amount NUMERIC NOT NULL,
		description TEXT,
		due_date TEXT,
		status TEXT NOT NULL,
		type TEXT NOT NULL,
		interest_rate NUMERIC NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE TABLE debt_payments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		debt_id INTEGER NOT NULL REFERENCES debts(id) ON DELETE CASCADE,
		amount NUMERIC NOT NULL,
		payment_date TEXT NOT NULL,
		notes TEXT,
		created_at TIMESTAMP NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}
	return db
}

func newTestDebtService(t *testing.T) (DebtService, *sql.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewDebtService(db, processors.NewDebtProcessor()), db
}

func createTestDebt(t *testing.T, svc DebtService, userID int64, amount string) *model.Debt {
	t.Helper()
	debt := &model.Debt{
		UserID:           userID,
		CounterpartyName: "Budi Santoso",
		Amount:           decimal.RequireFromString(amount),
		Description:      "pinjaman modal usaha",
		Type:             model.DebtOwed,
	}
	if err := svc.CreateDebt(debt); err != nil {
		t.Fatalf("creating debt: %v", err)
	}
	return debt
}

func TestCreateDebtInitialState(t *testing.T) {
	svc, _ := newTestDebtService(t)
	debt := createTestDebt(t, svc, 1, "2500000")

	if !debt.RemainingAmount.Equal(debt.Amount) {
		t.Errorf("remaining = %s, want %s", debt.RemainingAmount, debt.Amount)
	}
	if debt.Status != model.DebtPending {
		t.Errorf("status = %s, want %s", debt.Status, model.DebtPending)
	}
}

func TestApplyPaymentSequence(t *testing.T) {
	svc, _ := newTestDebtService(t)
	debt := createTestDebt(t, svc, 1, "1000000")

	steps := []struct {
		pay           string
		wantRemaining string
		wantStatus    model.DebtStatus
	}{
		{"400000", "600000", model.DebtPartial},
		{"100000", "500000", model.DebtPartial},
		{"500000", "0", model.DebtPaid},
	}

	for i, step := range steps {
		updated, payment, err := svc.ApplyPayment(1, debt.ID, decimal.RequireFromString(step.pay), "2026-03-10", "")
		if err != nil {
			t.Fatalf("step %d: ApplyPayment: %v", i, err)
		}
		if !updated.RemainingAmount.Equal(decimal.RequireFromString(step.wantRemaining)) {
			t.Errorf("step %d: remaining = %s, want %s", i, updated.RemainingAmount, step.wantRemaining)
		}
		if updated.Status != step.wantStatus {
			t.Errorf("step %d: status = %s, want %s", i, updated.Status, step.wantStatus)
		}
		if payment.ID == 0 {
			t.Errorf("step %d: payment row not assigned an ID", i)
		}
	}

	payments, err := model.ListDebtPayments(svcDB(t, svc), debt.ID)
	if err != nil {
		t.Fatalf("listing payments: %v", err)
	}
	if len(payments) != len(steps) {
		t.Errorf("payment count = %d, want %d", len(payments), len(steps))
	}
}

// svcDB digs the *sql.DB back out of the service for verification queries.
func svcDB(t *testing.T, svc DebtService) *sql.DB {
	t.Helper()
	impl, ok := svc.(*debtServiceImpl)
	if !ok {
		t.Fatalf("unexpected service implementation %T", svc)
	}
	return impl.db
}

func TestApplyPaymentOverpaymentRejected(t *testing.T) {
	svc, _ := newTestDebtService(t)
	debt := createTestDebt(t, svc, 1, "300000")

	_, _, err := svc.ApplyPayment(1, debt.ID, decimal.RequireFromString("300001"), "2026-03-10", "")
	var exceedsErr *PaymentExceedsRemainingError
	if !errors.As(err, &exceedsErr) {
		t.Fatalf("err = %v, want PaymentExceedsRemainingError", err)
	}
	if !exceedsErr.MaxAllowed.Equal(decimal.RequireFromString("300000")) {
		t.Errorf("MaxAllowed = %s, want 300000", exceedsErr.MaxAllowed)
	}

	// Nothing may have changed.
	after, err := model.GetDebtByID(svcDB(t, svc), debt.ID, 1)
	if err != nil {
		t.Fatalf("re-reading debt: %v", err)
	}
	if !after.RemainingAmount.Equal(debt.Amount) {
		t.Errorf("remaining mutated to %s after rejected payment", after.RemainingAmount)
	}
	if after.Status != model.DebtPending {
		t.Errorf("status mutated to %s after rejected payment", after.Status)
	}

	payments, err := model.ListDebtPayments(svcDB(t, svc), debt.ID)
	if err != nil {
		t.Fatalf("listing payments: %v", err)
	}
	if len(payments) != 0 {
		t.Errorf("payment count = %d after rejected payment, want 0", len(payments))
	}
}

func TestApplyPaymentExactRemaining(t *testing.T) {
	svc, _ := newTestDebtService(t)
	debt := createTestDebt(t, svc, 1, "750000")

	updated, _, err := svc.ApplyPayment(1, debt.ID, decimal.RequireFromString("750000"), "2026-03-10", "pelunasan")
	if err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}
	if !updated.RemainingAmount.IsZero() {
		t.Errorf("remaining = %s, want 0", updated.RemainingAmount)
	}
	if updated.Status != model.DebtPaid {
		t.Errorf("status = %s, want %s", updated.Status, model.DebtPaid)
	}
}

func TestApplyPaymentDebtNotFound(t *testing.T) {
	svc, _ := newTestDebtService(t)

	_, _, err := svc.ApplyPayment(1, 9999, decimal.RequireFromString("100"), "2026-03-10", "")
	if !errors.Is(err, ErrDebtNotFound) {
		t.Errorf("err = %v, want ErrDebtNotFound", err)
	}
}

func TestApplyPaymentWrongUser(t *testing.T) {
	svc, _ := newTestDebtService(t)
	debt := createTestDebt(t, svc, 1, "500000")

	_, _, err := svc.ApplyPayment(2, debt.ID, decimal.RequireFromString("100"), "2026-03-10", "")
	if !errors.Is(err, ErrDebtNotFound) {
		t.Errorf("err = %v, want ErrDebtNotFound for another user's debt", err)
	}
}

func TestDeleteDebtCascadesPayments(t *testing.T) {
	svc, db := newTestDebtService(t)
	debt := createTestDebt(t, svc, 1, "200000")

	if _, _, err := svc.ApplyPayment(1, debt.ID, decimal.RequireFromString("50000"), "2026-03-10", ""); err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}

	if err := svc.DeleteDebt(1, debt.ID); err != nil {
		t.Fatalf("DeleteDebt: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM debt_payments WHERE debt_id = ?`, debt.ID).Scan(&count); err != nil {
		t.Fatalf("counting payments: %v", err)
	}
	if count != 0 {
		t.Errorf("payment count = %d after debt deletion, want 0", count)
	}
}

func TestDeleteDebtNotFound(t *testing.T) {
	svc, _ := newTestDebtService(t)

	if err := svc.DeleteDebt(1, 42); !errors.Is(err, ErrDebtNotFound) {
		t.Errorf("err = %v, want ErrDebtNotFound", err)
	}
}

func TestDebtSummaryOverService(t *testing.T) {
	svc, _ := newTestDebtService(t)
	debt := createTestDebt(t, svc, 1, "1000000")

	receivable := &model.Debt{
		UserID:           1,
		CounterpartyName: "Siti Rahayu",
		Amount:           decimal.RequireFromString("400000"),
		Type:             model.DebtReceivable,
	}
	if err := svc.CreateDebt(receivable); err != nil {
		t.Fatalf("creating receivable: %v", err)
	}

	if _, _, err := svc.ApplyPayment(1, debt.ID, decimal.RequireFromString("250000"), "2026-03-10", ""); err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}

	summary, err := svc.Summary(1, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !summary.TotalDebts.Equal(decimal.RequireFromString("1000000")) {
		t.Errorf("TotalDebts = %s, want 1000000", summary.TotalDebts)
	}
	if !summary.PendingDebts.Equal(decimal.RequireFromString("750000")) {
		t.Errorf("PendingDebts = %s, want 750000", summary.PendingDebts)
	}
	if !summary.TotalReceivables.Equal(decimal.RequireFromString("400000")) {
		t.Errorf("TotalReceivables = %s, want 400000", summary.TotalReceivables)
	}
}
