package processors

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/dompetku/backend/src/model"
	"github.com/username/dompetku/backend/src/models"
)

type reportProcessorImpl struct{}

func NewReportProcessor() ReportProcessor {
	return &reportProcessorImpl{}
}

// Monthly returns one point per calendar month for the most recent monthCount
// months ending at the month containing now, oldest first. Growth is the
// percent change of expense against the previous month, omitted when the
// previous month's expense is zero.
func (p *reportProcessorImpl) Monthly(transactions []model.Transaction, monthCount int, now time.Time) []models.MonthlyPoint {
	if monthCount <= 0 {
		return []models.MonthlyPoint{}
	}

	type bucket struct {
		income  decimal.Decimal
		expense decimal.Decimal
	}
	buckets := make(map[string]*bucket, monthCount)

	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	months := make([]string, 0, monthCount)
	for i := monthCount - 1; i >= 0; i-- {
		key := currentMonth.AddDate(0, -i, 0).Format("2006-01")
		months = append(months, key)
		buckets[key] = &bucket{income: decimal.Zero, expense: decimal.Zero}
	}

	for _, tx := range transactions {
		if len(tx.Date) < 7 {
			continue
		}
		b, ok := buckets[tx.Date[:7]]
		if !ok {
			continue
		}
		switch tx.Type {
		case model.TransactionIncome:
			b.income = b.income.Add(tx.Amount)
		case model.TransactionExpense:
			b.expense = b.expense.Add(tx.Amount)
		}
	}

	points := make([]models.MonthlyPoint, 0, monthCount)
	for i, key := range months {
		b := buckets[key]
		point := models.MonthlyPoint{
			Month:   key,
			Income:  b.income,
			Expense: b.expense,
			Net:     b.income.Sub(b.expense),
		}
		if i > 0 {
			prev := buckets[months[i-1]].expense
			if prev.IsPositive() {
				growth := b.expense.Sub(prev).Mul(oneHundred).Div(prev).InexactFloat64()
				point.ExpenseGrowth = &growth
			}
		}
		points = append(points, point)
	}
	return points
}

// ByCategory groups the collection by category, summing income and expense
// separately. Total is the combined volume of the category, and the result is
// sorted by it, largest first.
func (p *reportProcessorImpl) ByCategory(transactions []model.Transaction) []models.CategoryBreakdown {
	byCategory := make(map[string]*models.CategoryBreakdown)
	for _, tx := range transactions {
		entry, ok := byCategory[tx.Category]
		if !ok {
			entry = &models.CategoryBreakdown{
				Category: tx.Category,
				Income:   decimal.Zero,
				Expense:  decimal.Zero,
			}
			byCategory[tx.Category] = entry
		}
		switch tx.Type {
		case model.TransactionIncome:
			entry.Income = entry.Income.Add(tx.Amount)
		case model.TransactionExpense:
			entry.Expense = entry.Expense.Add(tx.Amount)
		}
	}

	result := make([]models.CategoryBreakdown, 0, len(byCategory))
	for _, entry := range byCategory {
		entry.Total = entry.Income.Add(entry.Expense)
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Total.Equal(result[j].Total) {
			return result[i].Category < result[j].Category
		}
		return result[i].Total.GreaterThan(result[j].Total)
	})
	return result
}
