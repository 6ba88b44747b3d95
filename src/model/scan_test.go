package model

import (
	"bytes"
	"database/sql"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/username/dompetku/backend/src/logger"
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

	schema := `
	CREATE TABLE transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		amount NUMERIC NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		subcategory TEXT,
		type TEXT NOT NULL,
		date TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]',
		notes TEXT,
		location TEXT,
		is_recurring BOOLEAN NOT NULL DEFAULT 0,
		recurring_frequency TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
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
	);`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}
	return db
}

// captureLogs redirects the package logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := logger.L
	logger.L = slog.New(slog.NewJSONHandler(&buf, nil))
	t.Cleanup(func() { logger.L = prev })
	return &buf
}

func TestListTransactionsMalformedAmount(t *testing.T) {
	db := newTestDB(t)
	logs := captureLogs(t)

	now := time.Now()
	res, err := db.Exec(`
		INSERT INTO transactions (user_id, amount, description, category, type, date,
			payment_method, tags, created_at, updated_at)
		VALUES (1, 'tiga puluh ribu', 'makan siang', 'Makanan & Minuman', 'expense',
			'2026-03-10', 'cash', '[]', ?, ?)`, now, now)
	if err != nil {
		t.Fatalf("inserting transaction: %v", err)
	}
	id, _ := res.LastInsertId()

	list, err := ListTransactions(db, 1, TransactionFilter{})
	if err != nil {
		t.Fatalf("listing transactions: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d transactions, want 1", len(list))
	}
	if !list[0].Amount.IsZero() {
		t.Errorf("malformed amount = %s, want 0", list[0].Amount)
	}

	out := logs.String()
	if !strings.Contains(out, "Malformed stored amount") {
		t.Errorf("no warning logged for malformed amount, log output: %s", out)
	}
	if !strings.Contains(out, `"transactionID":`+strconv.FormatInt(id, 10)) {
		t.Errorf("warning does not name the row, log output: %s", out)
	}
}

func TestListDebtsMalformedAmounts(t *testing.T) {
	db := newTestDB(t)
	logs := captureLogs(t)

	now := time.Now()
	if _, err := db.Exec(`
		INSERT INTO debts (user_id, counterparty_name, amount, remaining_amount,
			description, status, type, interest_rate, created_at, updated_at)
		VALUES (1, 'Budi Santoso', 'sejuta', 'setengah juta', 'pinjaman', 'pending', 'debt', 'nol', ?, ?)`,
		now, now); err != nil {
		t.Fatalf("inserting debt: %v", err)
	}

	debts, err := ListDebts(db, 1)
	if err != nil {
		t.Fatalf("listing debts: %v", err)
	}
	if len(debts) != 1 {
		t.Fatalf("got %d debts, want 1", len(debts))
	}
	d := debts[0]
	if !d.Amount.IsZero() || !d.RemainingAmount.IsZero() || !d.InterestRate.IsZero() {
		t.Errorf("malformed amounts not coerced to zero: amount=%s remaining=%s interest=%s",
			d.Amount, d.RemainingAmount, d.InterestRate)
	}

	out := logs.String()
	for _, field := range []string{"amount", "remaining_amount", "interest_rate"} {
		if !strings.Contains(out, `"field":"`+field+`"`) {
			t.Errorf("no warning logged for field %s, log output: %s", field, out)
		}
	}
}
