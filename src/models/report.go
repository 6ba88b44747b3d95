package models

import (
	"github.com/shopspring/decimal"
	"github.com/username/dompetku/backend/src/model"
)

// MonthlyPoint is one calendar month of a trend report.
type MonthlyPoint struct {
	Month   string          `json:"month"` // "YYYY-MM"
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
	// ExpenseGrowth is the percent change of expense versus the previous
	// month. Absent (nil) for the first month and whenever the previous
	// month's expense is zero.
	ExpenseGrowth *float64 `json:"expense_growth,omitempty"`
}

// CategoryBreakdown aggregates a single category across the report window.
type CategoryBreakdown struct {
	Category string          `json:"category"`
	Income   decimal.Decimal `json:"income"`
	Expense  decimal.Decimal `json:"expense"`
	Total    decimal.Decimal `json:"total"`
}

// DashboardSummary is the payload behind the dashboard screen.
type DashboardSummary struct {
	Balance            decimal.Decimal     `json:"balance"` // all-time income minus expense
	MonthIncome        decimal.Decimal     `json:"month_income"`
	MonthExpense       decimal.Decimal     `json:"month_expense"`
	MonthNet           decimal.Decimal     `json:"month_net"`
	Budgets            []BudgetReport      `json:"budgets"`
	Goals              []GoalReport        `json:"goals"`
	Debts              DebtSummary         `json:"debts"`
	MonthlyTrend       []MonthlyPoint      `json:"monthly_trend"`
	CategoryBreakdown  []CategoryBreakdown `json:"category_breakdown"`
	RecentTransactions []model.Transaction `json:"recent_transactions"`
}
