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

type GoalHandler struct {
	reportService services.ReportService
}

func NewGoalHandler(reportService services.ReportService) *GoalHandler {
	return &GoalHandler{reportService: reportService}
}

type goalRequest struct {
	Title         string          `json:"title"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Deadline      string          `json:"deadline"`
	Category      string          `json:"category"`
	Priority      string          `json:"priority"`
}

func (req *goalRequest) validate() error {
	req.Title = validation.SanitizeText(strings.TrimSpace(req.Title))
	req.Category = validation.SanitizeText(strings.TrimSpace(req.Category))

	if err := validation.ValidateStringNotEmpty(req.Title, "Title"); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(req.Title, 255, "Title"); err != nil {
		return err
	}
	if !req.TargetAmount.IsPositive() {
		return fmt.Errorf("%w: target amount must be greater than zero", validation.ErrValidationFailed)
	}
	if req.CurrentAmount.IsNegative() {
		return fmt.Errorf("%w: current amount cannot be negative", validation.ErrValidationFailed)
	}
	if err := validation.ValidateStringNotEmpty(req.Category, "Category"); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(req.Category, 100, "Category"); err != nil {
		return err
	}
	if req.Priority == "" {
		req.Priority = string(model.PriorityMedium)
	}
	if err := validation.ValidateEnum(req.Priority, "Priority",
		string(model.PriorityLow), string(model.PriorityMedium), string(model.PriorityHigh)); err != nil {
		return err
	}
	return nil
}

// HandleListGoals returns every goal with its derived progress report.
func (h *GoalHandler) HandleListGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	reports, err := h.reportService.GoalReports(userID, time.Now())
	if err != nil {
		logger.L.Error("Failed to build goal reports", "userID", userID, "error", err)
		sendJSONError(w, "Failed to retrieve goals", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reports)
}

func (h *GoalHandler) HandleCreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Creation-only constraints: the deadline must lie in the future and the
	// starting amount cannot already exceed the target. Later updates are
	// exempt so an existing goal can be corrected after the fact.
	if _, err := validation.ValidateDateNotPast(req.Deadline, "Deadline", time.Now()); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.CurrentAmount.GreaterThan(req.TargetAmount) {
		sendJSONError(w, "Current amount cannot exceed the target amount", http.StatusBadRequest)
		return
	}

	goal := &model.Goal{
		UserID:        userID,
		Title:         req.Title,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Deadline:      req.Deadline,
		Category:      req.Category,
		Priority:      model.GoalPriority(req.Priority),
	}
	if err := goal.CreateGoal(database.DB); err != nil {
		logger.L.Error("Failed to create goal", "userID", userID, "error", err)
		sendJSONError(w, "Failed to create goal", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserCache(userID)

	logger.L.Info("Goal created", "userID", userID, "goalID", goal.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(goal)
}

func (h *GoalHandler) HandleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		sendJSONError(w, "Invalid goal ID", http.StatusBadRequest)
		return
	}

	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := validation.ValidateDateString(req.Deadline, "Deadline"); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	goal, err := model.GetGoalByID(database.DB, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sendJSONError(w, "Goal not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to get goal for update", "userID", userID, "goalID", id, "error", err)
		sendJSONError(w, "Failed to retrieve goal", http.StatusInternalServerError)
		return
	}

	goal.Title = req.Title
	goal.TargetAmount = req.TargetAmount
	goal.CurrentAmount = req.CurrentAmount
	goal.Deadline = req.Deadline
	goal.Category = req.Category
	goal.Priority = model.GoalPriority(req.Priority)

	if err := goal.UpdateGoal(database.DB); err != nil {
		logger.L.Error("Failed to update goal", "userID", userID, "goalID", id, "error", err)
		sendJSONError(w, "Failed to update goal", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserCache(userID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(goal)
}

func (h *GoalHandler) HandleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		sendJSONError(w, "Invalid goal ID", http.StatusBadRequest)
		return
	}

	if err := model.DeleteGoal(database.DB, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sendJSONError(w, "Goal not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete goal", "userID", userID, "goalID", id, "error", err)
		sendJSONError(w, "Failed to delete goal", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserCache(userID)

	logger.L.Info("Goal deleted", "userID", userID, "goalID", id)
	w.WriteHeader(http.StatusNoContent)
}
