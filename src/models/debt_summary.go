package models

import "github.com/shopspring/decimal"

// DebtSummary aggregates across all of a user's debts and receivables.
// Totals and paid figures sum the original principal; pending and overdue
// figures sum the remaining balance, so the two buckets never double count.
type DebtSummary struct {
	TotalDebts         decimal.Decimal `json:"total_debts"`
	TotalReceivables   decimal.Decimal `json:"total_receivables"`
	PendingDebts       decimal.Decimal `json:"pending_debts"`
	PendingReceivables decimal.Decimal `json:"pending_receivables"`
	PaidDebts          decimal.Decimal `json:"paid_debts"`
	PaidReceivables    decimal.Decimal `json:"paid_receivables"`
	OverdueDebts       decimal.Decimal `json:"overdue_debts"`
	OverdueReceivables decimal.Decimal `json:"overdue_receivables"`
}
