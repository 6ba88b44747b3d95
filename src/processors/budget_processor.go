package processors

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/dompetku/backend/src/model"
	"github.com/username/dompetku/backend/src/models"
)

type budgetProcessorImpl struct {
	aggregator TransactionAggregator
}

func NewBudgetProcessor(aggregator TransactionAggregator) BudgetProcessor {
	return &budgetProcessorImpl{aggregator: aggregator}
}

var oneHundred = decimal.NewFromInt(100)

// PeriodStart returns the first day of the period containing now: the first
// calendar day of the month for monthly budgets, January 1 for yearly ones.
func PeriodStart(period model.BudgetPeriod, now time.Time) time.Time {
	if period == model.BudgetYearly {
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	}
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// Evaluate computes the budget's spent/remaining/percentage/status for the
// current period. The window always tracks evaluation time; there is no
// historical period selection.
func (p *budgetProcessorImpl) Evaluate(budget model.Budget, transactions []model.Transaction, now time.Time) models.BudgetReport {
	spent := p.aggregator.Sum(transactions, model.TransactionFilter{
		Type:     model.TransactionExpense,
		Category: budget.Category,
		DateFrom: PeriodStart(budget.Period, now).Format("2006-01-02"),
	})

	remaining := budget.Amount.Sub(spent)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	percentage := 0.0
	if budget.Amount.IsPositive() {
		percentage = spent.Mul(oneHundred).Div(budget.Amount).InexactFloat64()
	}

	status := models.BudgetSafe
	switch {
	case percentage >= models.BudgetExceededThreshold:
		status = models.BudgetExceeded
	case percentage >= models.BudgetNearLimitThreshold:
		status = models.BudgetNearLimit
	}

	return models.BudgetReport{
		Budget:     budget,
		Spent:      spent,
		Remaining:  remaining,
		Percentage: percentage,
		Status:     status,
	}
}
