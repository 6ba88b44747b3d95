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

type TransactionHandler struct {
	reportService services.ReportService
}

func NewTransactionHandler(reportService services.ReportService) *TransactionHandler {
	return &TransactionHandler{reportService: reportService}
}

type transactionRequest struct {
	Amount             decimal.Decimal `json:"amount"`
	Description        string          `json:"description"`
	Category           string          `json:"category"`
	Subcategory        string          `json:"subcategory"`
	Type               string          `json:"type"`
	Date               string          `json:"date"`
	PaymentMethod      string          `json:"payment_method"`
	Tags               []string        `json:"tags"`
	Notes              string          `json:"notes"`
	Location           string          `json:"location"`
	IsRecurring        bool            `json:"is_recurring"`
	RecurringFrequency string          `json:"recurring_frequency"`
}

// validate sanitizes the request in place and reports the first problem found.
func (req *transactionRequest) validate() error {
	req.Description = validation.SanitizeText(strings.TrimSpace(req.Description))
	req.Category = validation.SanitizeText(strings.TrimSpace(req.Category))
	req.Subcategory = validation.SanitizeText(strings.TrimSpace(req.Subcategory))
	req.Notes = validation.SanitizeText(strings.TrimSpace(req.Notes))
	req.Location = validation.SanitizeText(strings.TrimSpace(req.Location))
	for i, tag := range req.Tags {
		req.Tags[i] = validation.SanitizeText(strings.TrimSpace(tag))
	}

	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", validation.ErrValidationFailed)
	}
	if err := validation.ValidateStringNotEmpty(req.Description, "Description"); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(req.Description, 255, "Description"); err != nil {
		return err
	}
	if err := validation.ValidateStringNotEmpty(req.Category, "Category"); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(req.Category, 100, "Category"); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(req.Subcategory, 100, "Subcategory"); err != nil {
		return err
	}
	if !model.TransactionType(req.Type).IsValid() {
		return fmt.Errorf("%w: type must be income or expense", validation.ErrValidationFailed)
	}
	if _, err := validation.ValidateDateString(req.Date, "Date"); err != nil {
		return err
	}
	if !model.PaymentMethod(req.PaymentMethod).IsValid() {
		return fmt.Errorf("%w: invalid payment method", validation.ErrValidationFailed)
	}
	if err := validation.ValidateTags(req.Tags); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(req.Notes, 1000, "Notes"); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(req.Location, 255, "Location"); err != nil {
		return err
	}
	if req.IsRecurring {
		if !model.RecurringFrequency(req.RecurringFrequency).IsValid() {
			return fmt.Errorf("%w: invalid recurring frequency", validation.ErrValidationFailed)
		}
	} else if req.RecurringFrequency != "" {
		return fmt.Errorf("%w: recurring frequency given for a non-recurring transaction", validation.ErrValidationFailed)
	}
	return nil
}

func (req *transactionRequest) apply(t *model.Transaction) {
	t.Amount = req.Amount
	t.Description = req.Description
	t.Category = req.Category
	t.Subcategory = req.Subcategory
	t.Type = model.TransactionType(req.Type)
	t.Date = req.Date
	t.PaymentMethod = model.PaymentMethod(req.PaymentMethod)
	t.Tags = req.Tags
	t.Notes = req.Notes
	t.Location = req.Location
	t.IsRecurring = req.IsRecurring
	t.RecurringFrequency = model.RecurringFrequency(req.RecurringFrequency)
}

// filterFromQuery builds a listing filter from query parameters. Invalid
// values are reported rather than silently dropped.
func filterFromQuery(r *http.Request) (model.TransactionFilter, error) {
	var filter model.TransactionFilter
	q := r.URL.Query()

	if t := q.Get("type"); t != "" {
		if !model.TransactionType(t).IsValid() {
			return filter, fmt.Errorf("%w: type must be income or expense", validation.ErrValidationFailed)
		}
		filter.Type = model.TransactionType(t)
	}
	filter.Category = validation.SanitizeText(strings.TrimSpace(q.Get("category")))
	if from := q.Get("date_from"); from != "" {
		if _, err := validation.ValidateDateString(from, "date_from"); err != nil {
			return filter, err
		}
		filter.DateFrom = from
	}
	if to := q.Get("date_to"); to != "" {
		if _, err := validation.ValidateDateString(to, "date_to"); err != nil {
			return filter, err
		}
		filter.DateTo = to
	}
	return filter, nil
}

func (h *TransactionHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	transactions, err := model.ListTransactions(database.DB, userID, filter)
	if err != nil {
		logger.L.Error("Failed to list transactions", "userID", userID, "error", err)
		sendJSONError(w, "Failed to retrieve transactions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transactions)
}

func (h *TransactionHandler) HandleGetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		sendJSONError(w, "Invalid transaction ID", http.StatusBadRequest)
		return
	}

	transaction, err := model.GetTransactionByID(database.DB, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sendJSONError(w, "Transaction not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to get transaction", "userID", userID, "transactionID", id, "error", err)
		sendJSONError(w, "Failed to retrieve transaction", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transaction)
}

func (h *TransactionHandler) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	transaction := &model.Transaction{UserID: userID}
	req.apply(transaction)

	if err := transaction.CreateTransaction(database.DB); err != nil {
		logger.L.Error("Failed to create transaction", "userID", userID, "error", err)
		sendJSONError(w, "Failed to create transaction", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserCache(userID)

	logger.L.Info("Transaction created", "userID", userID, "transactionID", transaction.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(transaction)
}

func (h *TransactionHandler) HandleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		sendJSONError(w, "Invalid transaction ID", http.StatusBadRequest)
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	transaction, err := model.GetTransactionByID(database.DB, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sendJSONError(w, "Transaction not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to get transaction for update", "userID", userID, "transactionID", id, "error", err)
		sendJSONError(w, "Failed to retrieve transaction", http.StatusInternalServerError)
		return
	}

	req.apply(transaction)

	if err := transaction.UpdateTransaction(database.DB); err != nil {
		logger.L.Error("Failed to update transaction", "userID", userID, "transactionID", id, "error", err)
		sendJSONError(w, "Failed to update transaction", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserCache(userID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transaction)
}

func (h *TransactionHandler) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		sendJSONError(w, "Invalid transaction ID", http.StatusBadRequest)
		return
	}

	if err := model.DeleteTransaction(database.DB, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sendJSONError(w, "Transaction not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete transaction", "userID", userID, "transactionID", id, "error", err)
		sendJSONError(w, "Failed to delete transaction", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserCache(userID)

	logger.L.Info("Transaction deleted", "userID", userID, "transactionID", id)
	w.WriteHeader(http.StatusNoContent)
}

// HandleExportTransactions streams the filtered transaction list as a CSV
// attachment.
func (h *TransactionHandler) HandleExportTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	filename := fmt.Sprintf("transactions_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.reportService.ExportTransactionsCSV(w, userID, filter); err != nil {
		// Headers are already out; all we can do is log.
		logger.L.Error("Failed to export transactions CSV", "userID", userID, "error", err)
	}
}
