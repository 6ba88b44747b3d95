package models

import (
	"github.com/shopspring/decimal"
	"github.com/username/dompetku/backend/src/model"
)

// BudgetStatus classifies how much of a budget's ceiling has been consumed.
type BudgetStatus string

const (
	BudgetSafe      BudgetStatus = "safe"
	BudgetNearLimit BudgetStatus = "near-limit"
	BudgetExceeded  BudgetStatus = "exceeded"
)

// Thresholds for budget status classification, in percent of the ceiling.
const (
	BudgetNearLimitThreshold = 80.0
	BudgetExceededThreshold  = 100.0
)

// BudgetReport is a budget together with its derived figures for the current
// period. The derived fields are recomputed on every read and never stored.
type BudgetReport struct {
	model.Budget
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage float64         `json:"percentage"` // unclamped so "exceeded" stays detectable
	Status     BudgetStatus    `json:"status"`
}
