package services

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/dompetku/backend/src/model"
	"github.com/username/dompetku/backend/src/models"
)

// Common service errors.
var (
	ErrDebtNotFound           = errors.New("debt not found")
	ErrConcurrentModification = errors.New("the debt was modified concurrently, please retry")
)

// PaymentExceedsRemainingError rejects a payment larger than the debt's
// remaining balance. It carries the maximum allowed amount so the user can
// correct the input.
type PaymentExceedsRemainingError struct {
	MaxAllowed decimal.Decimal
}

func (e *PaymentExceedsRemainingError) Error() string {
	return fmt.Sprintf("payment exceeds remaining balance; maximum allowed is %s", e.MaxAllowed)
}

// DebtService owns the debt ledger: it is the only path that mutates a debt's
// remaining_amount and status.
type DebtService interface {
	CreateDebt(debt *model.Debt) error
	ApplyPayment(userID, debtID int64, amount decimal.Decimal, paymentDate, notes string) (*model.Debt, *model.DebtPayment, error)
	DeleteDebt(userID, debtID int64) error
	Summary(userID int64, now time.Time) (models.DebtSummary, error)
}

// ReportService assembles derived views over the user's data and exports
// transaction reports.
type ReportService interface {
	DashboardSummary(userID int64, now time.Time) (*models.DashboardSummary, error)
	MonthlyReport(userID int64, monthCount int, now time.Time) ([]models.MonthlyPoint, error)
	CategoryReport(userID int64, dateFrom, dateTo string) ([]models.CategoryBreakdown, error)
	BudgetReports(userID int64, now time.Time) ([]models.BudgetReport, error)
	GoalReports(userID int64, now time.Time) ([]models.GoalReport, error)
	ExportTransactionsCSV(w io.Writer, userID int64, filter model.TransactionFilter) error
	InvalidateUserCache(userID int64)
}

// BlobStore is an opaque put/get store for binary blobs such as avatar
// images. The database keeps only the key.
type BlobStore interface {
	Put(key string, r io.Reader) error
	Get(key string) (io.ReadCloser, error)
	Delete(key string) error
}
