package processors

import (
	"github.com/shopspring/decimal"
	"github.com/username/dompetku/backend/src/model"
)

type transactionAggregatorImpl struct{}

func NewTransactionAggregator() TransactionAggregator {
	return &transactionAggregatorImpl{}
}

// Sum reduces the collection to the total amount of transactions matching the
// filter. Date bounds are inclusive; an empty bound leaves that side open.
// Dates are "YYYY-MM-DD" strings so plain string comparison orders them.
func (a *transactionAggregatorImpl) Sum(transactions []model.Transaction, filter model.TransactionFilter) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range transactions {
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		if filter.Category != "" && tx.Category != filter.Category {
			continue
		}
		if filter.DateFrom != "" && tx.Date < filter.DateFrom {
			continue
		}
		if filter.DateTo != "" && tx.Date > filter.DateTo {
			continue
		}
		total = total.Add(tx.Amount)
	}
	return total
}
