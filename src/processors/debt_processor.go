package processors

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/dompetku/backend/src/model"
	"github.com/username/dompetku/backend/src/models"
)

type debtProcessorImpl struct{}

func NewDebtProcessor() DebtProcessor {
	return &debtProcessorImpl{}
}

// Summarize reduces the debt collection to per-type totals. Overdue is a pure
// calendar-date comparison against the evaluation date: due_date strictly
// before today and not yet paid.
func (p *debtProcessorImpl) Summarize(debts []model.Debt, now time.Time) models.DebtSummary {
	today := now.Format("2006-01-02")

	summary := models.DebtSummary{
		TotalDebts:         decimal.Zero,
		TotalReceivables:   decimal.Zero,
		PendingDebts:       decimal.Zero,
		PendingReceivables: decimal.Zero,
		PaidDebts:          decimal.Zero,
		PaidReceivables:    decimal.Zero,
		OverdueDebts:       decimal.Zero,
		OverdueReceivables: decimal.Zero,
	}

	for _, d := range debts {
		isReceivable := d.Type == model.DebtReceivable
		paid := d.Status == model.DebtPaid
		overdue := !paid && d.DueDate != "" && d.DueDate < today

		if isReceivable {
			summary.TotalReceivables = summary.TotalReceivables.Add(d.Amount)
			if paid {
				summary.PaidReceivables = summary.PaidReceivables.Add(d.Amount)
			} else {
				summary.PendingReceivables = summary.PendingReceivables.Add(d.RemainingAmount)
			}
			if overdue {
				summary.OverdueReceivables = summary.OverdueReceivables.Add(d.RemainingAmount)
			}
		} else {
			summary.TotalDebts = summary.TotalDebts.Add(d.Amount)
			if paid {
				summary.PaidDebts = summary.PaidDebts.Add(d.Amount)
			} else {
				summary.PendingDebts = summary.PendingDebts.Add(d.RemainingAmount)
			}
			if overdue {
				summary.OverdueDebts = summary.OverdueDebts.Add(d.RemainingAmount)
			}
		}
	}
	return summary
}
