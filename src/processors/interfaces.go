package processors

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/dompetku/backend/src/model"
	"github.com/username/dompetku/backend/src/models"
)

// TransactionAggregator is the pure summation core: it filters a transaction
// collection by type/category/date window and reduces it to a sum. It never
// errors; an empty or fully filtered-out collection sums to zero.
type TransactionAggregator interface {
	Sum(transactions []model.Transaction, filter model.TransactionFilter) decimal.Decimal
}

// BudgetProcessor derives the spent/remaining/percentage/status view of a
// budget for the period containing now.
type BudgetProcessor interface {
	Evaluate(budget model.Budget, transactions []model.Transaction, now time.Time) models.BudgetReport
}

// GoalProcessor derives progress and deadline figures for a savings goal.
type GoalProcessor interface {
	Evaluate(goal model.Goal, now time.Time) models.GoalReport
}

// DebtProcessor reduces a debt collection to per-type totals.
type DebtProcessor interface {
	Summarize(debts []model.Debt, now time.Time) models.DebtSummary
}

// ReportProcessor groups transactions into month and category rollups.
type ReportProcessor interface {
	Monthly(transactions []model.Transaction, monthCount int, now time.Time) []models.MonthlyPoint
	ByCategory(transactions []model.Transaction) []models.CategoryBreakdown
}
