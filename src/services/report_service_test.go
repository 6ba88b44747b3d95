package services

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/dompetku/backend/src/model"
	"github.com/username/dompetku/backend/src/processors"
	_ "modernc.org/sqlite"
)

func newReportTestDB(t *testing.T) *sql.DB {
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
		is_recurring INTEGER NOT NULL DEFAULT 0,
		recurring_frequency TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE TABLE budgets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		category TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		period TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE TABLE goals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		target_amount NUMERIC NOT NULL,
		current_amount NUMERIC NOT NULL DEFAULT 0,
		deadline TEXT NOT NULL,
		category TEXT,
		priority TEXT NOT NULL,
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

func newTestReportService(t *testing.T) (ReportService, *sql.DB) {
	t.Helper()
	db := newReportTestDB(t)
	aggregator := processors.NewTransactionAggregator()
	svc := NewReportService(
		db,
		cache.New(DefaultCacheExpiration, CacheCleanupInterval),
		aggregator,
		processors.NewBudgetProcessor(aggregator),
		processors.NewGoalProcessor(),
		processors.NewDebtProcessor(),
		processors.NewReportProcessor(),
	)
	return svc, db
}

func insertTestTransaction(t *testing.T, db *sql.DB, userID int64, amount, txType, category, date, description string) {
	t.Helper()
	tx := &model.Transaction{
		UserID:        userID,
		Amount:        decimal.RequireFromString(amount),
		Description:   description,
		Category:      category,
		Type:          model.TransactionType(txType),
		Date:          date,
		PaymentMethod: model.PaymentCash,
	}
	if err := tx.CreateTransaction(db); err != nil {
		t.Fatalf("creating transaction: %v", err)
	}
}

func TestExportTransactionsCSV(t *testing.T) {
	svc, db := newTestReportService(t)

	insertTestTransaction(t, db, 1, "50000", "expense", "Makanan & Minuman", "2026-03-10", "makan siang")
	insertTestTransaction(t, db, 1, "120000", "expense", "Transportasi", "2026-03-11", "=HYPERLINK(\"http://evil\")")
	insertTestTransaction(t, db, 2, "99999", "expense", "Lainnya", "2026-03-12", "other user's row")

	var buf bytes.Buffer
	if err := svc.ExportTransactionsCSV(&buf, 1, model.TransactionFilter{}); err != nil {
		t.Fatalf("ExportTransactionsCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parsing exported CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("record count = %d, want header + 2 rows", len(records))
	}
	if records[0][0] != "date" || records[0][5] != "amount" {
		t.Errorf("unexpected header row: %v", records[0])
	}

	// Rows come newest first.
	if !strings.HasPrefix(records[1][4], "'=") {
		t.Errorf("formula description not sanitized: %q", records[1][4])
	}
	if records[2][4] != "makan siang" {
		t.Errorf("description = %q, want 'makan siang'", records[2][4])
	}
	for _, rec := range records[1:] {
		if rec[4] == "other user's row" {
			t.Error("export leaked another user's transaction")
		}
	}
}

func TestExportTransactionsCSVHonorsFilter(t *testing.T) {
	svc, db := newTestReportService(t)

	insertTestTransaction(t, db, 1, "50000", "expense", "Makanan & Minuman", "2026-03-10", "dalam rentang")
	insertTestTransaction(t, db, 1, "80000", "expense", "Makanan & Minuman", "2026-04-02", "di luar rentang")

	var buf bytes.Buffer
	filter := model.TransactionFilter{DateFrom: "2026-03-01", DateTo: "2026-03-31"}
	if err := svc.ExportTransactionsCSV(&buf, 1, filter); err != nil {
		t.Fatalf("ExportTransactionsCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parsing exported CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("record count = %d, want header + 1 row", len(records))
	}
	if records[1][4] != "dalam rentang" {
		t.Errorf("exported row = %q, want the in-range transaction", records[1][4])
	}
}

func TestDashboardSummaryCaching(t *testing.T) {
	svc, db := newTestReportService(t)
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	insertTestTransaction(t, db, 1, "1000000", "income", "Gaji", "2026-03-01", "gaji bulanan")
	insertTestTransaction(t, db, 1, "250000", "expense", "Makanan & Minuman", "2026-03-05", "belanja mingguan")

	first, err := svc.DashboardSummary(1, now)
	if err != nil {
		t.Fatalf("DashboardSummary: %v", err)
	}
	if !first.Balance.Equal(decimal.RequireFromString("750000")) {
		t.Errorf("Balance = %s, want 750000", first.Balance)
	}
	if !first.MonthNet.Equal(decimal.RequireFromString("750000")) {
		t.Errorf("MonthNet = %s, want 750000", first.MonthNet)
	}

	// A write that bypasses cache invalidation is not visible yet.
	insertTestTransaction(t, db, 1, "100000", "expense", "Transportasi", "2026-03-14", "bensin")
	cached, err := svc.DashboardSummary(1, now)
	if err != nil {
		t.Fatalf("DashboardSummary (cached): %v", err)
	}
	if !cached.Balance.Equal(first.Balance) {
		t.Errorf("cached Balance = %s, want %s", cached.Balance, first.Balance)
	}

	// After invalidation the new transaction shows up.
	svc.InvalidateUserCache(1)
	refreshed, err := svc.DashboardSummary(1, now)
	if err != nil {
		t.Fatalf("DashboardSummary (refreshed): %v", err)
	}
	if !refreshed.Balance.Equal(decimal.RequireFromString("650000")) {
		t.Errorf("refreshed Balance = %s, want 650000", refreshed.Balance)
	}
}
