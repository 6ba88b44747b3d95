package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/username/dompetku/backend/src/database"
	"github.com/username/dompetku/backend/src/logger"
	"github.com/username/dompetku/backend/src/model"
	"github.com/username/dompetku/backend/src/security/validation"
	"github.com/username/dompetku/backend/src/services"
)

type BudgetHandler struct {
	reportService services.ReportService
}

func NewBudgetHandler(reportService services.ReportService) *BudgetHandler {
	return &BudgetHandler{reportService: reportService}
}

type budgetRequest struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Period   string          `json:"period"`
}

func (req *budgetRequest) validate() error {
	req.Category = validation.SanitizeText(strings.TrimSpace(req.Category))

	if err := validation.ValidateStringNotEmpty(req.Category, "Category"); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(req.Category, 100, "Category"); err != nil {
		return err
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", validation.ErrValidationFailed)
	}
	if err := validation.ValidateEnum(req.Period, "Period",
		string(model.BudgetMonthly), string(model.BudgetYearly)); err != nil {
		return err
	}
	return nil
}

// HandleListBudgets returns every budget with its derived spending report for
// the current period.
func (h *BudgetHandler) HandleListBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	reports, err := h.reportService.BudgetReports(userID, time.Now())
	if err != nil {
		logger.L.Error("Failed to build budget reports", "userID", userID, "error", err)
		sendJSONError(w, "Failed to retrieve budgets", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reports)
}

func (h *BudgetHandler) HandleCreateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	exists, err := model.BudgetExists(database.DB, userID, req.Category, model.BudgetPeriod(req.Period), 0)
	if err != nil {
		logger.L.Error("Failed to check budget uniqueness", "userID", userID, "error", err)
		sendJSONError(w, "Failed to create budget", http.StatusInternalServerError)
		return
	}
	if exists {
		sendJSONError(w, model.ErrDuplicateBudget.Error(), http.StatusConflict)
		return
	}

	budget := &model.Budget{
		UserID:   userID,
		Category: req.Category,
		Amount:   req.Amount,
		Period:   model.BudgetPeriod(req.Period),
	}
	if err := budget.CreateBudget(database.DB); err != nil {
		logger.L.Error("Failed to create budget", "userID", userID, "error", err)
		sendJSONError(w, "Failed to create budget", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserCache(userID)

	logger.L.Info("Budget created", "userID", userID, "budgetID", budget.ID, "category", budget.Category)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(budget)
}

func (h *BudgetHandler) HandleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		sendJSONError(w, "Invalid budget ID", http.StatusBadRequest)
		return
	}

	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	budget, err := model.GetBudgetByID(database.DB, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sendJSONError(w, "Budget not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to get budget for update", "userID", userID, "budgetID", id, "error", err)
		sendJSONError(w, "Failed to retrieve budget", http.StatusInternalServerError)
		return
	}

	exists, err := model.BudgetExists(database.DB, userID, req.Category, model.BudgetPeriod(req.Period), id)
	if err != nil {
		logger.L.Error("Failed to check budget uniqueness", "userID", userID, "error", err)
		sendJSONError(w, "Failed to update budget", http.StatusInternalServerError)
		return
	}
	if exists {
		sendJSONError(w, model.ErrDuplicateBudget.Error(), http.StatusConflict)
		return
	}

	budget.Category = req.Category
	budget.Amount = req.Amount
	budget.Period = model.BudgetPeriod(req.Period)

	if err := budget.UpdateBudget(database.DB); err != nil {
		logger.L.Error("Failed to update budget", "userID", userID, "budgetID", id, "error", err)
		sendJSONError(w, "Failed to update budget", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserCache(userID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(budget)
}

func (h *BudgetHandler) HandleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		sendJSONError(w, "Invalid budget ID", http.StatusBadRequest)
		return
	}

	if err := model.DeleteBudget(database.DB, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sendJSONError(w, "Budget not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete budget", "userID", userID, "budgetID", id, "error", err)
		sendJSONError(w, "Failed to delete budget", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserCache(userID)

	logger.L.Info("Budget deleted", "userID", userID, "budgetID", id)
	w.WriteHeader(http.StatusNoContent)
}
