package services

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/dompetku/backend/src/logger"
	"github.com/username/dompetku/backend/src/model"
	"github.com/username/dompetku/backend/src/models"
	"github.com/username/dompetku/backend/src/processors"
	"github.com/username/dompetku/backend/src/security/validation"
)

const (
	DefaultCacheExpiration = 5 * time.Minute
	CacheCleanupInterval   = 10 * time.Minute

	dashboardTrendMonths = 6
	recentTransactionMax = 5
)

type reportServiceImpl struct {
	db              *sql.DB
	cache           *cache.Cache
	aggregator      processors.TransactionAggregator
	budgetProcessor processors.BudgetProcessor
	goalProcessor   processors.GoalProcessor
	debtProcessor   processors.DebtProcessor
	reportProcessor processors.ReportProcessor
}

func NewReportService(
	db *sql.DB,
	reportCache *cache.Cache,
	aggregator processors.TransactionAggregator,
	budgetProcessor processors.BudgetProcessor,
	goalProcessor processors.GoalProcessor,
	debtProcessor processors.DebtProcessor,
	reportProcessor processors.ReportProcessor,
) ReportService {
	return &reportServiceImpl{
		db:              db,
		cache:           reportCache,
		aggregator:      aggregator,
		budgetProcessor: budgetProcessor,
		goalProcessor:   goalProcessor,
		debtProcessor:   debtProcessor,
		reportProcessor: reportProcessor,
	}
}

func dashboardCacheKey(userID int64) string {
	return fmt.Sprintf("dashboard:%d", userID)
}

// DashboardSummary assembles the whole dashboard payload from the user's
// collections. The result is cached briefly; every mutation path calls
// InvalidateUserCache so a stale dashboard never outlives its data for long.
func (s *reportServiceImpl) DashboardSummary(userID int64, now time.Time) (*models.DashboardSummary, error) {
	if cached, found := s.cache.Get(dashboardCacheKey(userID)); found {
		if summary, ok := cached.(*models.DashboardSummary); ok {
			return summary, nil
		}
	}

	transactions, err := model.ListTransactions(s.db, userID, model.TransactionFilter{})
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
	monthIncome := s.aggregator.Sum(transactions, model.TransactionFilter{Type: model.TransactionIncome, DateFrom: monthStart})
	monthExpense := s.aggregator.Sum(transactions, model.TransactionFilter{Type: model.TransactionExpense, DateFrom: monthStart})
	totalIncome := s.aggregator.Sum(transactions, model.TransactionFilter{Type: model.TransactionIncome})
	totalExpense := s.aggregator.Sum(transactions, model.TransactionFilter{Type: model.TransactionExpense})

	budgetReports, err := s.budgetReportsFor(userID, transactions, now)
	if err != nil {
		return nil, err
	}
	goalReports, err := s.GoalReports(userID, now)
	if err != nil {
		return nil, err
	}

	debts, err := model.ListDebts(s.db, userID)
	if err != nil {
		return nil, err
	}

	recent := transactions
	if len(recent) > recentTransactionMax {
		recent = recent[:recentTransactionMax]
	}

	summary := &models.DashboardSummary{
		Balance:            totalIncome.Sub(totalExpense),
		MonthIncome:        monthIncome,
		MonthExpense:       monthExpense,
		MonthNet:           monthIncome.Sub(monthExpense),
		Budgets:            budgetReports,
		Goals:              goalReports,
		Debts:              s.debtProcessor.Summarize(debts, now),
		MonthlyTrend:       s.reportProcessor.Monthly(transactions, dashboardTrendMonths, now),
		CategoryBreakdown:  s.reportProcessor.ByCategory(transactions),
		RecentTransactions: recent,
	}

	s.cache.Set(dashboardCacheKey(userID), summary, cache.DefaultExpiration)
	return summary, nil
}

func (s *reportServiceImpl) MonthlyReport(userID int64, monthCount int, now time.Time) ([]models.MonthlyPoint, error) {
	transactions, err := model.ListTransactions(s.db, userID, model.TransactionFilter{})
	if err != nil {
		return nil, err
	}
	return s.reportProcessor.Monthly(transactions, monthCount, now), nil
}

func (s *reportServiceImpl) CategoryReport(userID int64, dateFrom, dateTo string) ([]models.CategoryBreakdown, error) {
	transactions, err := model.ListTransactions(s.db, userID, model.TransactionFilter{DateFrom: dateFrom, DateTo: dateTo})
	if err != nil {
		return nil, err
	}
	return s.reportProcessor.ByCategory(transactions), nil
}

func (s *reportServiceImpl) BudgetReports(userID int64, now time.Time) ([]models.BudgetReport, error) {
	transactions, err := model.ListTransactions(s.db, userID, model.TransactionFilter{Type: model.TransactionExpense})
	if err != nil {
		return nil, err
	}
	return s.budgetReportsFor(userID, transactions, now)
}

func (s *reportServiceImpl) budgetReportsFor(userID int64, transactions []model.Transaction, now time.Time) ([]models.BudgetReport, error) {
	budgets, err := model.ListBudgets(s.db, userID)
	if err != nil {
		return nil, err
	}
	reports := make([]models.BudgetReport, 0, len(budgets))
	for _, b := range budgets {
		reports = append(reports, s.budgetProcessor.Evaluate(b, transactions, now))
	}
	return reports, nil
}

func (s *reportServiceImpl) GoalReports(userID int64, now time.Time) ([]models.GoalReport, error) {
	goals, err := model.ListGoals(s.db, userID)
	if err != nil {
		return nil, err
	}
	reports := make([]models.GoalReport, 0, len(goals))
	for _, g := range goals {
		reports = append(reports, s.goalProcessor.Evaluate(g, now))
	}
	return reports, nil
}

// ExportTransactionsCSV streams the user's transactions as CSV. Text fields
// pass through the formula-injection sanitizer so a hostile description can
// not execute when the export is opened in a spreadsheet.
func (s *reportServiceImpl) ExportTransactionsCSV(w io.Writer, userID int64, filter model.TransactionFilter) error {
	transactions, err := model.ListTransactions(s.db, userID, filter)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	header := []string{"date", "type", "category", "subcategory", "description", "amount", "payment_method", "tags", "notes", "location"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, t := range transactions {
		record := []string{
			t.Date,
			string(t.Type),
			validation.SanitizeForFormulaInjection(t.Category),
			validation.SanitizeForFormulaInjection(t.Subcategory),
			validation.SanitizeForFormulaInjection(t.Description),
			t.Amount.String(),
			string(t.PaymentMethod),
			validation.SanitizeForFormulaInjection(strings.Join(t.Tags, "|")),
			validation.SanitizeForFormulaInjection(t.Notes),
			validation.SanitizeForFormulaInjection(t.Location),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func (s *reportServiceImpl) InvalidateUserCache(userID int64) {
	s.cache.Delete(dashboardCacheKey(userID))
	logger.L.Debug("User report cache invalidated", "userID", userID)
}
