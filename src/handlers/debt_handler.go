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

type DebtHandler struct {
	debtService   services.DebtService
	reportService services.ReportService
}

func NewDebtHandler(debtService services.DebtService, reportService services.ReportService) *DebtHandler {
	return &DebtHandler{debtService: debtService, reportService: reportService}
}

type debtRequest struct {
	CounterpartyName string          `json:"counterparty_name"`
	Amount           decimal.Decimal `json:"amount"`
	Description      string          `json:"description"`
	DueDate          string          `json:"due_date"`
	Type             string          `json:"type"`
	InterestRate     decimal.Decimal `json:"interest_rate"`
}

func (req *debtRequest) validate() error {
	req.CounterpartyName = validation.SanitizeText(strings.TrimSpace(req.CounterpartyName))
	req.Description = validation.SanitizeText(strings.TrimSpace(req.Description))

	if err := validation.ValidateStringNotEmpty(req.CounterpartyName, "Counterparty name"); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(req.CounterpartyName, 100, "Counterparty name"); err != nil {
		return err
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", validation.ErrValidationFailed)
	}
	if err := validation.ValidateStringNotEmpty(req.Description, "Description"); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(req.Description, 500, "Description"); err != nil {
		return err
	}
	if req.DueDate != "" {
		if _, err := validation.ValidateDateString(req.DueDate, "Due date"); err != nil {
			return err
		}
	}
	if err := validation.ValidateEnum(req.Type, "Type",
		string(model.DebtOwed), string(model.DebtReceivable)); err != nil {
		return err
	}
	if req.InterestRate.IsNegative() {
		return fmt.Errorf("%w: interest rate cannot be negative", validation.ErrValidationFailed)
	}
	return nil
}

func (h *DebtHandler) HandleListDebts(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	debts, err := model.ListDebts(database.DB, userID)
	if err != nil {
		logger.L.Error("Failed to list debts", "userID", userID, "error", err)
		sendJSONError(w, "Failed to retrieve debts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(debts)
}

func (h *DebtHandler) HandleGetDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		sendJSONError(w, "Invalid debt ID", http.StatusBadRequest)
		return
	}

	debt, err := model.GetDebtByID(database.DB, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sendJSONError(w, "Debt not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to get debt", "userID", userID, "debtID", id, "error", err)
		sendJSONError(w, "Failed to retrieve debt", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(debt)
}

func (h *DebtHandler) HandleCreateDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req debtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	debt := &model.Debt{
		UserID:           userID,
		CounterpartyName: req.CounterpartyName,
		Amount:           req.Amount,
		Description:      req.Description,
		DueDate:          req.DueDate,
		Type:             model.DebtType(req.Type),
		InterestRate:     req.InterestRate,
	}
	if err := h.debtService.CreateDebt(debt); err != nil {
		logger.L.Error("Failed to create debt", "userID", userID, "error", err)
		sendJSONError(w, "Failed to create debt", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserCache(userID)

	logger.L.Info("Debt created", "userID", userID, "debtID", debt.ID, "type", debt.Type)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(debt)
}

// HandleUpdateDebt changes descriptive fields only. The balance and status are
// owned by the payment path.
func (h *DebtHandler) HandleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		sendJSONError(w, "Invalid debt ID", http.StatusBadRequest)
		return
	}

	var req struct {
		CounterpartyName string          `json:"counterparty_name"`
		Description      string          `json:"description"`
		DueDate          string          `json:"due_date"`
		InterestRate     decimal.Decimal `json:"interest_rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.CounterpartyName = validation.SanitizeText(strings.TrimSpace(req.CounterpartyName))
	req.Description = validation.SanitizeText(strings.TrimSpace(req.Description))

	if err := validation.ValidateStringNotEmpty(req.CounterpartyName, "Counterparty name"); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.DueDate != "" {
		if _, err := validation.ValidateDateString(req.DueDate, "Due date"); err != nil {
			sendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.InterestRate.IsNegative() {
		sendJSONError(w, "Interest rate cannot be negative", http.StatusBadRequest)
		return
	}

	debt, err := model.GetDebtByID(database.DB, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sendJSONError(w, "Debt not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to get debt for update", "userID", userID, "debtID", id, "error", err)
		sendJSONError(w, "Failed to retrieve debt", http.StatusInternalServerError)
		return
	}

	debt.CounterpartyName = req.CounterpartyName
	debt.Description = req.Description
	debt.DueDate = req.DueDate
	debt.InterestRate = req.InterestRate

	if err := debt.UpdateDebt(database.DB); err != nil {
		logger.L.Error("Failed to update debt", "userID", userID, "debtID", id, "error", err)
		sendJSONError(w, "Failed to update debt", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserCache(userID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(debt)
}

func (h *DebtHandler) HandleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		sendJSONError(w, "Invalid debt ID", http.StatusBadRequest)
		return
	}

	if err := h.debtService.DeleteDebt(userID, id); err != nil {
		if errors.Is(err, services.ErrDebtNotFound) {
			sendJSONError(w, "Debt not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete debt", "userID", userID, "debtID", id, "error", err)
		sendJSONError(w, "Failed to delete debt", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserCache(userID)

	logger.L.Info("Debt deleted", "userID", userID, "debtID", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *DebtHandler) HandleListDebtPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		sendJSONError(w, "Invalid debt ID", http.StatusBadRequest)
		return
	}

	// Ownership check before touching the payments table.
	if _, err := model.GetDebtByID(database.DB, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sendJSONError(w, "Debt not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to get debt for payment listing", "userID", userID, "debtID", id, "error", err)
		sendJSONError(w, "Failed to retrieve debt", http.StatusInternalServerError)
		return
	}

	payments, err := model.ListDebtPayments(database.DB, id)
	if err != nil {
		logger.L.Error("Failed to list debt payments", "userID", userID, "debtID", id, "error", err)
		sendJSONError(w, "Failed to retrieve payments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payments)
}

// HandleApplyPayment records a payment against a debt. The service applies it
// atomically; a concurrent writer loses with 409 and may simply retry.
func (h *DebtHandler) HandleApplyPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		sendJSONError(w, "Invalid debt ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Amount      decimal.Decimal `json:"amount"`
		PaymentDate string          `json:"payment_date"`
		Notes       string          `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Notes = validation.SanitizeText(strings.TrimSpace(req.Notes))

	if !req.Amount.IsPositive() {
		sendJSONError(w, "Payment amount must be greater than zero", http.StatusBadRequest)
		return
	}
	if req.PaymentDate == "" {
		req.PaymentDate = time.Now().Format("2006-01-02")
	} else if _, err := validation.ValidateDateString(req.PaymentDate, "Payment date"); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringMaxLength(req.Notes, 500, "Notes"); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	debt, payment, err := h.debtService.ApplyPayment(userID, id, req.Amount, req.PaymentDate, req.Notes)
	if err != nil {
		var exceedsErr *services.PaymentExceedsRemainingError
		switch {
		case errors.Is(err, services.ErrDebtNotFound):
			sendJSONError(w, "Debt not found", http.StatusNotFound)
		case errors.As(err, &exceedsErr):
			sendJSONError(w, exceedsErr.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrConcurrentModification):
			sendJSONError(w, err.Error(), http.StatusConflict)
		default:
			logger.L.Error("Failed to apply debt payment", "userID", userID, "debtID", id, "error", err)
			sendJSONError(w, "Failed to apply payment", http.StatusInternalServerError)
		}
		return
	}

	h.reportService.InvalidateUserCache(userID)

	logger.L.Info("Debt payment applied", "userID", userID, "debtID", id, "paymentID", payment.ID, "newStatus", debt.Status)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"debt":    debt,
		"payment": payment,
	})
}

func (h *DebtHandler) HandleDebtSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	summary, err := h.debtService.Summary(userID, time.Now())
	if err != nil {
		logger.L.Error("Failed to build debt summary", "userID", userID, "error", err)
		sendJSONError(w, "Failed to retrieve debt summary", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
